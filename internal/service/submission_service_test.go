package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tenantkyc/kycdesk/internal/models"
	"github.com/tenantkyc/kycdesk/internal/repository"
	"github.com/tenantkyc/kycdesk/internal/submissions"
)

func validBasicData() map[string]any {
	return map[string]any{
		"fullName":    "Jane Smith",
		"email":       "jane@example.com",
		"phone":       "+1 555 123 4567",
		"address":     "12 Elm Street",
		"dateOfBirth": "1990-05-01",
	}
}

func TestSubmissionService_Submit(t *testing.T) {
	f := newFixture(t)
	form := f.newForm(t)

	sub, err := f.subSvc.Submit(context.Background(), form.ID, validBasicData())
	require.NoError(t, err)
	assert.NotEmpty(t, sub.ID)
	assert.Equal(t, models.StatusPending, sub.Status)
	assert.Equal(t, "2024-03-01T12:00:00Z", sub.SubmittedAt)
	assert.Equal(t, "owner@example.com", sub.LandlordEmail)
	assert.Equal(t, "+15550100", sub.LandlordPhone)

	stored, err := f.subs.FindByID(context.Background(), sub.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", stored.Field("fullName"))
}

func TestSubmissionService_SubmitValidation(t *testing.T) {
	f := newFixture(t)
	form := f.newForm(t)
	ctx := context.Background()

	cases := map[string]func(map[string]any){
		"missing required": func(d map[string]any) { delete(d, "address") },
		"blank required":   func(d map[string]any) { d["fullName"] = "   " },
		"too short":        func(d map[string]any) { d["fullName"] = "J" },
		"bad email":        func(d map[string]any) { d["email"] = "jane" },
		"bad phone":        func(d map[string]any) { d["phone"] = "call me" },
		"bad date":         func(d map[string]any) { d["dateOfBirth"] = "01/05/1990" },
		"wrong type":       func(d map[string]any) { d["address"] = 42.0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			data := validBasicData()
			mutate(data)
			_, err := f.subSvc.Submit(ctx, form.ID, data)
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestSubmissionService_SubmitTypedFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	form, err := f.formSvc.Create(ctx, owner, FormInput{Type: models.EditorTemplate, TemplateID: "property-manager"})
	require.NoError(t, err)

	data := map[string]any{
		"fullName":         "Jane Smith",
		"email":            "jane@example.com",
		"phone":            "5551234567",
		"employmentStatus": "Student",
		"monthlyIncome":    "1200.50",
		"hasPets":          "No",
		"consent":          true,
	}
	_, err = f.subSvc.Submit(ctx, form.ID, data)
	require.NoError(t, err)

	data["employmentStatus"] = "Astronaut"
	_, err = f.subSvc.Submit(ctx, form.ID, data)
	assert.Error(t, err)

	data["employmentStatus"] = "Student"
	data["consent"] = false
	_, err = f.subSvc.Submit(ctx, form.ID, data)
	assert.Error(t, err)

	data["consent"] = true
	data["monthlyIncome"] = -5.0
	_, err = f.subSvc.Submit(ctx, form.ID, data)
	assert.Error(t, err)
}

func TestSubmissionService_SubmitInactiveForm(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	form, err := f.formSvc.Create(ctx, owner, FormInput{Title: "Closed", IsActive: boolPtr(false)})
	require.NoError(t, err)

	_, err = f.subSvc.Submit(ctx, form.ID, map[string]any{})
	assert.ErrorIs(t, err, ErrFormInactive)

	_, err = f.subSvc.Submit(ctx, "missing", nil)
	assert.ErrorIs(t, err, ErrFormNotFound)
}

func TestSubmissionService_ListAppliesCriteria(t *testing.T) {
	f := newFixture(t)
	form := f.newForm(t)
	ctx := context.Background()
	f.seed(t, form.ID, "1", "Zoe", "2024-02-29T12:00:00Z")
	f.seed(t, form.ID, "2", "anna", "2024-01-01T12:00:00Z")
	f.seed(t, form.ID, "3", "Bruno", "2024-02-20T12:00:00Z")

	c := submissions.ParseCriteria("", "30days", "name", "asc", nil)
	got, err := f.subSvc.List(ctx, owner, form.ID, c)
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "1"}, ids(got))

	all, err := f.subSvc.List(ctx, owner, form.ID, submissions.DefaultCriteria())
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3", "2"}, ids(all))

	_, err = f.subSvc.List(ctx, stranger, form.ID, c)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSubmissionService_GetChecksForm(t *testing.T) {
	f := newFixture(t)
	a := f.newForm(t)
	b := f.newForm(t)
	f.seed(t, a.ID, "1", "Jane", "2024-02-29T12:00:00Z")

	_, err := f.subSvc.Get(context.Background(), owner, b.ID, "1")
	assert.ErrorIs(t, err, ErrSubmissionNotFound)

	got, err := f.subSvc.Get(context.Background(), owner, a.ID, "1")
	require.NoError(t, err)
	assert.Equal(t, "Jane", got.Field("fullName"))
}

func TestSubmissionService_SetStatus(t *testing.T) {
	f := newFixture(t)
	form := f.newForm(t)
	ctx := context.Background()
	f.seed(t, form.ID, "1", "Jane", "2024-02-29T12:00:00Z")

	sub, err := f.subSvc.SetStatus(ctx, owner, form.ID, "1", models.StatusRejected)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, sub.Status)

	_, err = f.subSvc.SetStatus(ctx, owner, form.ID, "1", "maybe")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestSubmissionService_Recommend(t *testing.T) {
	f := newFixture(t)
	form := f.newForm(t)
	ctx := context.Background()
	f.seed(t, form.ID, "1", "Jane", "2024-02-29T12:00:00Z")
	f.seed(t, form.ID, "2", "John", "2024-02-29T12:00:00Z")

	first, err := f.subSvc.Recommend(ctx, owner, form.ID, "1", "Good references")
	require.NoError(t, err)
	second, err := f.subSvc.Recommend(ctx, owner, form.ID, "1", "Good references")
	require.NoError(t, err)
	assert.Equal(t, first.Recommendation, second.Recommendation)
	assert.Equal(t, "2024-03-01T12:00:00Z", second.Recommendation.RecommendedAt)

	other, err := f.subs.FindByID(ctx, "2")
	require.NoError(t, err)
	assert.Nil(t, other.Recommendation)

	_, err = f.subSvc.Recommend(ctx, owner, form.ID, "nope", "x")
	assert.ErrorIs(t, err, ErrSubmissionNotFound)

	_, err = f.subSvc.Recommend(ctx, owner, form.ID, "1", "  ")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestSubmissionService_ArchiveMovesRecords(t *testing.T) {
	f := newFixture(t)
	form := f.newForm(t)
	ctx := context.Background()
	f.seed(t, form.ID, "1", "Jane", "2024-02-29T12:00:00Z")
	f.seed(t, form.ID, "2", "John", "2024-02-28T12:00:00Z")
	f.seed(t, form.ID, "3", "Jill", "2024-02-27T12:00:00Z")

	archived, err := f.subSvc.Archive(ctx, owner, form.ID, []string{"3", "1", "unknown"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3"}, ids(archived))
	for _, s := range archived {
		assert.True(t, s.Archived)
		assert.Equal(t, "2024-03-01T12:00:00Z", s.ArchivedAt)
	}

	active, err := f.subSvc.List(ctx, owner, form.ID, submissions.DefaultCriteria())
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, ids(active))

	inArchive, err := f.subSvc.Archived(ctx, owner, form.ID, submissions.DefaultCriteria())
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3"}, ids(inArchive))

	_, err = f.subSvc.Archive(ctx, owner, form.ID, []string{"1"})
	assert.ErrorIs(t, err, ErrNothingSelected)
	_, err = f.subSvc.Archive(ctx, owner, form.ID, nil)
	assert.ErrorIs(t, err, ErrNothingSelected)

	_, err = f.subSvc.Recommend(ctx, owner, form.ID, "1", "late note")
	assert.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestSubmissionService_ExportSelectedInViewOrder(t *testing.T) {
	f := newFixture(t)
	form := f.newForm(t)
	ctx := context.Background()
	f.seed(t, form.ID, "1", "Zoe", "2024-02-29T12:00:00Z")
	f.seed(t, form.ID, "2", "Anna", "2024-02-28T12:00:00Z")
	f.seed(t, form.ID, "3", "Old", "2023-01-01T12:00:00Z")

	c := submissions.ParseCriteria("", "90days", "name", "asc", []string{"1", "2", "3"})
	report, err := f.subSvc.Export(ctx, owner, form.ID, c)
	require.NoError(t, err)
	assert.Equal(t, "submissions_report_2024-03-01.csv", report.Filename)
	assert.Equal(t, 2, report.Count)

	lines := strings.Split(string(report.Body), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], `"2",`))
	assert.True(t, strings.HasPrefix(lines[2], `"1",`))

	_, err = f.subSvc.Export(ctx, owner, form.ID, submissions.DefaultCriteria())
	assert.ErrorIs(t, err, ErrNothingSelected)

	c.SelectedIDs = submissions.NewIDSet("3")
	_, err = f.subSvc.Export(ctx, owner, form.ID, c)
	assert.ErrorIs(t, err, ErrNothingSelected)
}

// interleavingSubs runs a hook once, straight after the first read a
// service call makes, so a second request lands between that read and the
// write that follows it.
type interleavingSubs struct {
	*repository.MemorySubmissionRepo
	afterCount func()
	afterList  func()
	fired      bool
}

func (r *interleavingSubs) CountByFormID(ctx context.Context, formID string) (int, error) {
	n, err := r.MemorySubmissionRepo.CountByFormID(ctx, formID)
	r.fire(r.afterCount)
	return n, err
}

func (r *interleavingSubs) FindByFormID(ctx context.Context, formID string, archived bool) ([]models.Submission, error) {
	subs, err := r.MemorySubmissionRepo.FindByFormID(ctx, formID, archived)
	r.fire(r.afterList)
	return subs, err
}

func (r *interleavingSubs) fire(hook func()) {
	if hook == nil || r.fired {
		return
	}
	r.fired = true
	hook()
}

func (f *fixture) interleaved(t *testing.T) (*SubmissionService, *interleavingSubs) {
	t.Helper()
	subs := &interleavingSubs{MemorySubmissionRepo: f.subs}
	return NewSubmissionService(subs, f.forms, f.users, f.subSvc.proc, zaptest.NewLogger(t)), subs
}

func TestSubmissionService_SubmitCapHoldsUnderInterleaving(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	form, err := f.formSvc.Create(ctx, owner, FormInput{
		Type:          models.EditorTemplate,
		TemplateID:    "basic-kyc",
		SubmissionCap: intPtr(1),
	})
	require.NoError(t, err)

	svc, subs := f.interleaved(t)
	var inner error
	subs.afterCount = func() { _, inner = svc.Submit(ctx, form.ID, validBasicData()) }

	_, err = svc.Submit(ctx, form.ID, validBasicData())
	require.NoError(t, inner)
	assert.ErrorIs(t, err, ErrFormInactive)

	n, err := f.subs.CountByFormID(ctx, form.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSubmissionService_RecommendDoesNotRestoreArchived(t *testing.T) {
	f := newFixture(t)
	form := f.newForm(t)
	ctx := context.Background()
	f.seed(t, form.ID, "1", "Jane", "2024-02-29T12:00:00Z")

	svc, subs := f.interleaved(t)
	var archiveErr error
	subs.afterList = func() { _, archiveErr = svc.Archive(ctx, owner, form.ID, []string{"1"}) }

	_, err := svc.Recommend(ctx, owner, form.ID, "1", "Good references")
	require.NoError(t, archiveErr)
	assert.ErrorIs(t, err, ErrSubmissionNotFound)

	got, err := f.subs.FindByID(ctx, "1")
	require.NoError(t, err)
	assert.True(t, got.Archived)
	assert.Nil(t, got.Recommendation)

	active, err := f.subSvc.List(ctx, owner, form.ID, submissions.DefaultCriteria())
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestSubmissionService_ArchiveKeepsConcurrentRecommendation(t *testing.T) {
	f := newFixture(t)
	form := f.newForm(t)
	ctx := context.Background()
	f.seed(t, form.ID, "1", "Jane", "2024-02-29T12:00:00Z")

	svc, subs := f.interleaved(t)
	var recErr error
	subs.afterList = func() { _, recErr = svc.Recommend(ctx, owner, form.ID, "1", "Good references") }

	archived, err := svc.Archive(ctx, owner, form.ID, []string{"1"})
	require.NoError(t, err)
	require.NoError(t, recErr)
	require.Len(t, archived, 1)
	require.NotNil(t, archived[0].Recommendation)
	assert.Equal(t, "Good references", archived[0].Recommendation.Note)
}

func TestSubmissionService_SetStatusKeepsArchiveFlag(t *testing.T) {
	f := newFixture(t)
	form := f.newForm(t)
	ctx := context.Background()
	f.seed(t, form.ID, "1", "Jane", "2024-02-29T12:00:00Z")
	_, err := f.subSvc.Archive(ctx, owner, form.ID, []string{"1"})
	require.NoError(t, err)

	sub, err := f.subSvc.SetStatus(ctx, owner, form.ID, "1", models.StatusApproved)
	require.NoError(t, err)
	assert.True(t, sub.Archived)
	assert.Equal(t, models.StatusApproved, sub.Status)

	_, err = f.subSvc.SetStatus(ctx, owner, form.ID, "missing", models.StatusApproved)
	assert.ErrorIs(t, err, ErrSubmissionNotFound)
}

func ids(subs []models.Submission) []string {
	out := make([]string, len(subs))
	for i, s := range subs {
		out[i] = s.ID
	}
	return out
}
