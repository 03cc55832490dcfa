package repository

import (
	"context"
	"slices"
	"sync"

	"github.com/tenantkyc/kycdesk/internal/models"
)

type MemoryFormRepo struct {
	mu    sync.RWMutex
	order []string
	items map[string]models.Form
}

var _ FormRepository = (*MemoryFormRepo)(nil)

func NewMemoryFormRepo() *MemoryFormRepo {
	return &MemoryFormRepo{items: make(map[string]models.Form)}
}

func (r *MemoryFormRepo) Create(_ context.Context, form *models.Form) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ensureID(&form.ID)
	if _, exists := r.items[form.ID]; exists {
		return ErrDuplicate
	}
	r.items[form.ID] = cloneForm(*form)
	r.order = append(r.order, form.ID)
	return nil
}

func (r *MemoryFormRepo) FindByID(_ context.Context, id string) (*models.Form, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	f = cloneForm(f)
	return &f, nil
}

func (r *MemoryFormRepo) FindByOwner(_ context.Context, ownerID string) ([]models.Form, error) {
	return r.filter(func(f *models.Form) bool { return f.OwnerID == ownerID }), nil
}

func (r *MemoryFormRepo) FindAll(_ context.Context) ([]models.Form, error) {
	return r.filter(func(*models.Form) bool { return true }), nil
}

func (r *MemoryFormRepo) filter(keep func(*models.Form) bool) []models.Form {
	r.mu.RLock()
	defer r.mu.RUnlock()
	forms := make([]models.Form, 0)
	for _, id := range r.order {
		f := r.items[id]
		if keep(&f) {
			forms = append(forms, cloneForm(f))
		}
	}
	return forms
}

func (r *MemoryFormRepo) Update(_ context.Context, form *models.Form) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[form.ID]; !ok {
		return ErrNotFound
	}
	r.items[form.ID] = cloneForm(*form)
	return nil
}

func (r *MemoryFormRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	r.order = slices.DeleteFunc(r.order, func(v string) bool { return v == id })
	return nil
}

func (r *MemoryFormRepo) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items), nil
}
