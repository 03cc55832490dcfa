package repository

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenantkyc/kycdesk/internal/db"
	"github.com/tenantkyc/kycdesk/internal/models"
)

// testPool connects to KYC_TEST_DATABASE_URL or skips the test.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("KYC_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("KYC_TEST_DATABASE_URL not set")
	}
	pool, err := db.NewPool(context.Background(), url, 2)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestPgRepos_RoundTrip(t *testing.T) {
	ctx := context.Background()
	pool := testPool(t)

	users := NewPgUserRepo(pool)
	forms := NewPgFormRepo(pool)
	subs := NewPgSubmissionRepo(pool)
	require.NoError(t, users.EnsureSchema(ctx))
	require.NoError(t, forms.EnsureSchema(ctx))
	require.NoError(t, subs.EnsureSchema(ctx))

	u := &models.User{Email: "pg-" + t.Name() + "@example.com", Phone: "+15550100", PasswordHash: "h", Name: "PG", Role: models.RoleUser}
	require.NoError(t, users.Create(ctx, u))
	gotUser, err := users.FindByEmail(ctx, strings.ToUpper(u.Email))
	require.NoError(t, err)
	assert.Equal(t, "+15550100", gotUser.Phone)
	all, err := users.List(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, all)
	assert.ErrorIs(t, users.Create(ctx, &models.User{Email: u.Email, PasswordHash: "h", Name: "x", Role: "user"}), ErrDuplicate)

	days := 7
	f := &models.Form{OwnerID: u.ID, Title: "PG form", Type: models.EditorNew, IsActive: true,
		ExpirationDays: &days, Fields: []models.Field{{ID: "a", Name: "fullName", Type: models.FieldText}}}
	require.NoError(t, forms.Create(ctx, f))
	t.Cleanup(func() {
		_ = subs.DeleteByFormID(ctx, f.ID)
		_ = forms.Delete(ctx, f.ID)
	})

	gotForm, err := forms.FindByID(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, *gotForm.ExpirationDays)
	assert.Nil(t, gotForm.SubmissionCap)
	assert.Equal(t, "fullName", gotForm.Fields[0].Name)

	s := &models.Submission{FormID: f.ID, Status: models.StatusPending, SubmittedAt: "2024-01-01T00:00:00Z",
		Data: map[string]any{"fullName": "Jane"}}
	require.NoError(t, subs.Create(ctx, s))

	rec := models.Recommendation{Note: "ok", RecommendedAt: "2024-01-02T00:00:00Z"}
	_, err = subs.SetRecommendation(ctx, f.ID, s.ID, rec, "2024-01-02T00:00:00Z")
	require.NoError(t, err)

	moved, err := subs.Archive(ctx, f.ID, []string{s.ID, "ghost"}, "2024-01-03T00:00:00Z")
	require.NoError(t, err)
	require.Len(t, moved, 1)

	archived, err := subs.FindByFormID(ctx, f.ID, true)
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, "ok", archived[0].Recommendation.Note)
	assert.Equal(t, "Jane", archived[0].Field("fullName"))
	assert.Equal(t, "2024-01-03T00:00:00Z", archived[0].ArchivedAt)

	_, err = subs.SetRecommendation(ctx, f.ID, s.ID, rec, "")
	assert.ErrorIs(t, err, ErrNotFound)
	stat, err := subs.SetStatus(ctx, f.ID, s.ID, models.StatusApproved, "2024-01-04T00:00:00Z")
	require.NoError(t, err)
	assert.True(t, stat.Archived)

	require.NoError(t, subs.CreateWithinCap(ctx, &models.Submission{FormID: f.ID, Status: models.StatusPending, SubmittedAt: "x"}, 2))
	err = subs.CreateWithinCap(ctx, &models.Submission{FormID: f.ID, Status: models.StatusPending, SubmittedAt: "x"}, 2)
	assert.ErrorIs(t, err, ErrLimitReached)

	counts, err := subs.CountByStatus(ctx, []string{f.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, counts[models.StatusPending])
	assert.Equal(t, 1, counts[models.StatusApproved])
}
