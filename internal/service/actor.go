package service

import (
	"context"
	"errors"

	"github.com/tenantkyc/kycdesk/internal/models"
	"github.com/tenantkyc/kycdesk/internal/repository"
)

// Actor is the authenticated account a call is made on behalf of.
type Actor struct {
	UserID string
	Role   string
}

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

// CanAccess reports whether a may read and change form f.
func (a Actor) CanAccess(f *models.Form) bool {
	return a.IsAdmin() || f.OwnerID == a.UserID
}

// loadForm fetches a form and checks the actor may use it.
func loadForm(ctx context.Context, forms repository.FormRepository, id string, actor Actor) (*models.Form, error) {
	form, err := forms.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrFormNotFound
	}
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(form) {
		return nil, ErrForbidden
	}
	return form, nil
}
