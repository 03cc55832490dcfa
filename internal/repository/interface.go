package repository

import (
	"context"

	"github.com/tenantkyc/kycdesk/internal/models"
)

// UserRepository persists accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
}

// FormRepository persists KYC forms.
type FormRepository interface {
	Create(ctx context.Context, form *models.Form) error
	FindByID(ctx context.Context, id string) (*models.Form, error)
	FindByOwner(ctx context.Context, ownerID string) ([]models.Form, error)
	FindAll(ctx context.Context) ([]models.Form, error)
	Update(ctx context.Context, form *models.Form) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// SubmissionRepository persists submissions. FindByFormID returns either the
// active or the archived submissions of a form, in insertion order.
//
// Writes after creation touch only the columns they own. SetRecommendation
// and Archive apply to active submissions only and report ErrNotFound (or
// an empty result) when the record left the active list in the meantime.
type SubmissionRepository interface {
	Create(ctx context.Context, sub *models.Submission) error
	// CreateWithinCap stores sub unless its form already holds limit
	// submissions, in which case it returns ErrLimitReached. The count and
	// the insert are atomic per form. limit <= 0 means no cap.
	CreateWithinCap(ctx context.Context, sub *models.Submission, limit int) error
	FindByID(ctx context.Context, id string) (*models.Submission, error)
	FindByFormID(ctx context.Context, formID string, archived bool) ([]models.Submission, error)
	SetStatus(ctx context.Context, formID, id string, status models.Status, updatedAt string) (*models.Submission, error)
	SetRecommendation(ctx context.Context, formID, id string, rec models.Recommendation, updatedAt string) (*models.Submission, error)
	// Archive flags the given active submissions of the form as archived
	// and returns them in insertion order. Unknown or already archived ids
	// are skipped.
	Archive(ctx context.Context, formID string, ids []string, archivedAt string) ([]models.Submission, error)
	DeleteByFormID(ctx context.Context, formID string) error
	CountByFormID(ctx context.Context, formID string) (int, error)
	CountByStatus(ctx context.Context, formIDs []string) (map[models.Status]int, error)
}
