package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tenantkyc/kycdesk/internal/auth"
	"github.com/tenantkyc/kycdesk/internal/models"
	"github.com/tenantkyc/kycdesk/internal/repository"
	"github.com/tenantkyc/kycdesk/internal/submissions"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

var testTokens = auth.NewTokens("secret", time.Hour)

var (
	owner    = Actor{UserID: "u-owner", Role: models.RoleUser}
	stranger = Actor{UserID: "u-other", Role: models.RoleUser}
	admin    = Actor{UserID: "u-admin", Role: models.RoleAdmin}
)

type fixture struct {
	users   *repository.MemoryUserRepo
	forms   *repository.MemoryFormRepo
	subs    *repository.MemorySubmissionRepo
	formSvc *FormService
	subSvc  *SubmissionService
	share   *ShareService
	sent    *recordingProducer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users: repository.NewMemoryUserRepo(),
		forms: repository.NewMemoryFormRepo(),
		subs:  repository.NewMemorySubmissionRepo(),
		sent:  &recordingProducer{},
	}
	logger := zaptest.NewLogger(t)
	proc := submissions.NewProcessor(submissions.WithClock(func() time.Time { return fixedNow }))

	f.formSvc = NewFormService(f.forms, f.subs, "https://kyc.example.com/", proc.Locale())
	f.formSvc.now = proc.Now
	f.subSvc = NewSubmissionService(f.subs, f.forms, f.users, proc, logger)
	f.share = NewShareService(f.subSvc, f.sent, "kyc.report-shares", logger)

	require.NoError(t, f.users.Create(context.Background(), &models.User{
		ID: owner.UserID, Email: "owner@example.com", Phone: "+15550100", Name: "Owner", Role: models.RoleUser,
	}))
	return f
}

// newForm creates an active basic-kyc form owned by owner.
func (f *fixture) newForm(t *testing.T) *models.Form {
	t.Helper()
	form, err := f.formSvc.Create(context.Background(), owner, FormInput{
		Type:       models.EditorTemplate,
		TemplateID: "basic-kyc",
	})
	require.NoError(t, err)
	return form
}

// seed stores a submission directly, bypassing field validation.
func (f *fixture) seed(t *testing.T, formID, id, name, submittedAt string) {
	t.Helper()
	require.NoError(t, f.subs.Create(context.Background(), &models.Submission{
		ID:            id,
		FormID:        formID,
		SubmittedAt:   submittedAt,
		Status:        models.StatusPending,
		Data:          map[string]any{"fullName": name, "address": "1 Main St"},
		LandlordEmail: "owner@example.com",
	}))
}

type sentMessage struct {
	topic string
	key   string
	value []byte
}

type recordingProducer struct {
	mu   sync.Mutex
	msgs []sentMessage
	err  error
}

func (p *recordingProducer) SendMessage(_ context.Context, topic string, key, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, sentMessage{topic: topic, key: string(key), value: value})
	return nil
}

func (p *recordingProducer) Close() error { return nil }
