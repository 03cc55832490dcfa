package service

import (
	"context"
	"errors"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/tenantkyc/kycdesk/internal/metrics"
	"github.com/tenantkyc/kycdesk/internal/models"
	"github.com/tenantkyc/kycdesk/internal/repository"
	"github.com/tenantkyc/kycdesk/internal/submissions"
)

type SubmissionService struct {
	subs   repository.SubmissionRepository
	forms  repository.FormRepository
	users  repository.UserRepository
	proc   *submissions.Processor
	logger *zap.Logger
}

func NewSubmissionService(subs repository.SubmissionRepository, forms repository.FormRepository, users repository.UserRepository, proc *submissions.Processor, logger *zap.Logger) *SubmissionService {
	return &SubmissionService{subs: subs, forms: forms, users: users, proc: proc, logger: logger}
}

// Submit stores a public submission against an active form. The form
// owner's email and phone become the landlord contacts used when reports
// are shared.
func (s *SubmissionService) Submit(ctx context.Context, formID string, data map[string]any) (*models.Submission, error) {
	form, err := s.forms.FindByID(ctx, formID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrFormNotFound
	}
	if err != nil {
		return nil, err
	}
	count, err := s.subs.CountByFormID(ctx, formID)
	if err != nil {
		return nil, err
	}
	now := s.proc.Now()
	if !form.LinkActive(now, count) {
		return nil, ErrFormInactive
	}
	if data == nil {
		data = map[string]any{}
	}
	if err := validateSubmission(form.Fields, data); err != nil {
		return nil, err
	}

	ts := models.Timestamp(now)
	sub := &models.Submission{
		FormID:      formID,
		SubmittedAt: ts,
		Status:      models.StatusPending,
		Data:        data,
		UpdatedAt:   ts,
	}
	if s.users != nil && form.OwnerID != "" {
		owner, err := s.users.FindByID(ctx, form.OwnerID)
		switch {
		case err == nil:
			sub.LandlordEmail = owner.Email
			sub.LandlordPhone = owner.Phone
		case !errors.Is(err, repository.ErrNotFound):
			return nil, err
		}
	}

	limit := 0
	if form.SubmissionCap != nil {
		limit = *form.SubmissionCap
	}
	if err := s.subs.CreateWithinCap(ctx, sub, limit); err != nil {
		if errors.Is(err, repository.ErrLimitReached) {
			return nil, ErrFormInactive
		}
		return nil, err
	}
	metrics.SubmissionsReceivedTotal.Inc()
	s.logger.Info("submission received", zap.String("formId", formID), zap.String("submissionId", sub.ID))
	return sub, nil
}

// List returns the form's active submissions filtered and ordered by c.
func (s *SubmissionService) List(ctx context.Context, actor Actor, formID string, c submissions.Criteria) ([]models.Submission, error) {
	return s.view(ctx, actor, formID, false, c)
}

// Archived returns the form's archived submissions filtered and ordered by c.
func (s *SubmissionService) Archived(ctx context.Context, actor Actor, formID string, c submissions.Criteria) ([]models.Submission, error) {
	return s.view(ctx, actor, formID, true, c)
}

func (s *SubmissionService) view(ctx context.Context, actor Actor, formID string, archived bool, c submissions.Criteria) ([]models.Submission, error) {
	if _, err := loadForm(ctx, s.forms, formID, actor); err != nil {
		return nil, err
	}
	records, err := s.subs.FindByFormID(ctx, formID, archived)
	if err != nil {
		return nil, err
	}
	return s.proc.View(records, c), nil
}

func (s *SubmissionService) Get(ctx context.Context, actor Actor, formID, id string) (*models.Submission, error) {
	if _, err := loadForm(ctx, s.forms, formID, actor); err != nil {
		return nil, err
	}
	sub, err := s.subs.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && sub.FormID != formID) {
		return nil, ErrSubmissionNotFound
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *SubmissionService) SetStatus(ctx context.Context, actor Actor, formID, id string, status models.Status) (*models.Submission, error) {
	if !status.Valid() {
		return nil, invalid("status", "unknown status %q", status)
	}
	if _, err := loadForm(ctx, s.forms, formID, actor); err != nil {
		return nil, err
	}
	sub, err := s.subs.SetStatus(ctx, formID, id, status, models.Timestamp(s.proc.Now()))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSubmissionNotFound
	}
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("status").Inc()
		return nil, err
	}
	return sub, nil
}

// Recommend attaches a recommendation note to an active submission,
// replacing any earlier one.
func (s *SubmissionService) Recommend(ctx context.Context, actor Actor, formID, id, note string) (*models.Submission, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, invalid("note", "recommendation note is required")
	}
	if _, err := loadForm(ctx, s.forms, formID, actor); err != nil {
		return nil, err
	}
	active, err := s.subs.FindByFormID(ctx, formID, false)
	if err != nil {
		return nil, err
	}

	now := s.proc.Now()
	updated := submissions.ApplyRecommendation(active, id, note, now)
	i := slices.IndexFunc(updated, func(r models.Submission) bool { return r.ID == id })
	if i < 0 {
		return nil, ErrSubmissionNotFound
	}
	sub, err := s.subs.SetRecommendation(ctx, formID, id, *updated[i].Recommendation, models.Timestamp(now))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSubmissionNotFound
	}
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("recommend").Inc()
		return nil, err
	}
	metrics.RecommendationsTotal.Inc()
	return sub, nil
}

// Archive moves the selected active submissions to the archive and returns
// them. Ids that are not active submissions of the form are ignored,
// including ids a concurrent request archived first.
func (s *SubmissionService) Archive(ctx context.Context, actor Actor, formID string, ids []string) ([]models.Submission, error) {
	if len(ids) == 0 {
		return nil, ErrNothingSelected
	}
	if _, err := loadForm(ctx, s.forms, formID, actor); err != nil {
		return nil, err
	}
	active, err := s.subs.FindByFormID(ctx, formID, false)
	if err != nil {
		return nil, err
	}

	selected, _ := submissions.Archive(active, submissions.NewIDSet(ids...))
	if len(selected) == 0 {
		return nil, ErrNothingSelected
	}
	selectedIDs := make([]string, len(selected))
	for i := range selected {
		selectedIDs[i] = selected[i].ID
	}
	archived, err := s.subs.Archive(ctx, formID, selectedIDs, models.Timestamp(s.proc.Now()))
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("archive").Inc()
		return nil, err
	}
	if len(archived) == 0 {
		return nil, ErrNothingSelected
	}
	metrics.SubmissionsArchivedTotal.Add(float64(len(archived)))
	s.logger.Info("submissions archived", zap.String("formId", formID), zap.Int("count", len(archived)))
	return archived, nil
}

// Export renders the selected records of the current view as a CSV report,
// in view order.
func (s *SubmissionService) Export(ctx context.Context, actor Actor, formID string, c submissions.Criteria) (*submissions.Report, error) {
	selected, err := s.selection(ctx, actor, formID, c)
	if err != nil {
		return nil, err
	}
	report := s.proc.Report(selected)
	metrics.ReportsExportedTotal.Inc()
	return report, nil
}

// selection returns the view's records whose id is in c.SelectedIDs.
func (s *SubmissionService) selection(ctx context.Context, actor Actor, formID string, c submissions.Criteria) ([]models.Submission, error) {
	if len(c.SelectedIDs) == 0 {
		return nil, ErrNothingSelected
	}
	view, err := s.List(ctx, actor, formID, c)
	if err != nil {
		return nil, err
	}
	selected := submissions.Select(view, c.SelectedIDs)
	if len(selected) == 0 {
		return nil, ErrNothingSelected
	}
	return selected, nil
}
