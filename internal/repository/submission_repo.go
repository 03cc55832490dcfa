package repository

import (
	"context"
	"slices"
	"sync"

	"github.com/tenantkyc/kycdesk/internal/models"
)

// MemorySubmissionRepo keeps submissions in process memory. It is the
// default store when no database is configured.
type MemorySubmissionRepo struct {
	mu    sync.RWMutex
	order []string
	items map[string]models.Submission
}

var _ SubmissionRepository = (*MemorySubmissionRepo)(nil)

func NewMemorySubmissionRepo() *MemorySubmissionRepo {
	return &MemorySubmissionRepo{items: make(map[string]models.Submission)}
}

func (r *MemorySubmissionRepo) Create(_ context.Context, sub *models.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertLocked(sub)
}

func (r *MemorySubmissionRepo) CreateWithinCap(_ context.Context, sub *models.Submission, limit int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit > 0 && r.countLocked(sub.FormID) >= limit {
		return ErrLimitReached
	}
	return r.insertLocked(sub)
}

func (r *MemorySubmissionRepo) insertLocked(sub *models.Submission) error {
	ensureID(&sub.ID)
	if _, exists := r.items[sub.ID]; exists {
		return ErrDuplicate
	}
	r.items[sub.ID] = cloneSubmission(*sub)
	r.order = append(r.order, sub.ID)
	return nil
}

func (r *MemorySubmissionRepo) FindByID(_ context.Context, id string) (*models.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	s = cloneSubmission(s)
	return &s, nil
}

func (r *MemorySubmissionRepo) FindByFormID(_ context.Context, formID string, archived bool) ([]models.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	subs := make([]models.Submission, 0)
	for _, id := range r.order {
		s := r.items[id]
		if s.FormID == formID && s.Archived == archived {
			subs = append(subs, cloneSubmission(s))
		}
	}
	return subs, nil
}

func (r *MemorySubmissionRepo) SetStatus(_ context.Context, formID, id string, status models.Status, updatedAt string) (*models.Submission, error) {
	return r.modify(formID, id, false, func(s *models.Submission) {
		s.Status = status
		s.UpdatedAt = updatedAt
	})
}

func (r *MemorySubmissionRepo) SetRecommendation(_ context.Context, formID, id string, rec models.Recommendation, updatedAt string) (*models.Submission, error) {
	return r.modify(formID, id, true, func(s *models.Submission) {
		s.Recommendation = &rec
		s.UpdatedAt = updatedAt
	})
}

// modify applies fn to the stored record under the write lock.
func (r *MemorySubmissionRepo) modify(formID, id string, activeOnly bool, fn func(*models.Submission)) (*models.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[id]
	if !ok || s.FormID != formID || (activeOnly && s.Archived) {
		return nil, ErrNotFound
	}
	s = cloneSubmission(s)
	fn(&s)
	r.items[id] = s
	out := cloneSubmission(s)
	return &out, nil
}

func (r *MemorySubmissionRepo) Archive(_ context.Context, formID string, ids []string, archivedAt string) ([]models.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	archived := make([]models.Submission, 0, len(ids))
	for _, id := range r.order {
		s := r.items[id]
		if s.FormID != formID || s.Archived || !slices.Contains(ids, id) {
			continue
		}
		s.Archived = true
		s.ArchivedAt = archivedAt
		s.UpdatedAt = archivedAt
		r.items[id] = s
		archived = append(archived, cloneSubmission(s))
	}
	return archived, nil
}

func (r *MemorySubmissionRepo) DeleteByFormID(_ context.Context, formID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = slices.DeleteFunc(r.order, func(id string) bool {
		if r.items[id].FormID != formID {
			return false
		}
		delete(r.items, id)
		return true
	})
	return nil
}

// CountByFormID counts active and archived submissions alike, since both
// count towards a form's submission cap.
func (r *MemorySubmissionRepo) CountByFormID(_ context.Context, formID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.countLocked(formID), nil
}

func (r *MemorySubmissionRepo) countLocked(formID string) int {
	n := 0
	for _, s := range r.items {
		if s.FormID == formID {
			n++
		}
	}
	return n
}

func (r *MemorySubmissionRepo) CountByStatus(_ context.Context, formIDs []string) (map[models.Status]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[models.Status]int)
	for _, s := range r.items {
		if slices.Contains(formIDs, s.FormID) {
			counts[s.Status]++
		}
	}
	return counts, nil
}
