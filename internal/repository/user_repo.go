package repository

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/tenantkyc/kycdesk/internal/models"
)

// MemoryUserRepo stores users keyed by id with a case-insensitive email index.
type MemoryUserRepo struct {
	mu      sync.RWMutex
	byID    map[string]models.User
	byEmail map[string]string
}

var _ UserRepository = (*MemoryUserRepo)(nil)

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{
		byID:    make(map[string]models.User),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(user.Email)
	if _, taken := r.byEmail[key]; taken {
		return ErrDuplicate
	}
	ensureID(&user.ID)
	r.byID[user.ID] = *user
	r.byEmail[key] = user.ID
	return nil
}

func (r *MemoryUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *MemoryUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	u := r.byID[id]
	return &u, nil
}

// List returns every account, oldest first.
func (r *MemoryUserRepo) List(_ context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, u)
	}
	slices.SortFunc(out, func(a, b models.User) int {
		return cmp.Or(
			cmp.Compare(a.CreatedAt, b.CreatedAt),
			cmp.Compare(strings.ToLower(a.Email), strings.ToLower(b.Email)),
		)
	})
	return out, nil
}
