// Package submission provides the form-submission store implementations.
// Execute holds the store lock across its validate-then-mutate pair, which is
// how the PENDING status check and the terminal status write stay atomic.
package submission

import (
	"context"
	"sort"
	"sync"

	"talentgate/internal/submission/models"
	id "talentgate/pkg/domain"
	"talentgate/pkg/platform/sentinel"
)

// InMemoryStore keeps submissions in a map guarded by one RWMutex.
type InMemoryStore struct {
	mu   sync.RWMutex
	subs map[id.SubmissionID]*models.FormSubmission
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{subs: make(map[id.SubmissionID]*models.FormSubmission)}
}

func (s *InMemoryStore) Create(_ context.Context, sub *models.FormSubmission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.subs[sub.ID]; exists {
		return sentinel.ErrConflict
	}
	cp := *sub
	s.subs[cp.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, subID id.SubmissionID) (*models.FormSubmission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.subs[subID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *sub
	return &cp, nil
}

func (s *InMemoryStore) ListByStatus(_ context.Context, status models.Status) ([]*models.FormSubmission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.FormSubmission
	for _, sub := range s.subs {
		if sub.Status == status {
			cp := *sub
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*models.FormSubmission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.FormSubmission, 0, len(s.subs))
	for _, sub := range s.subs {
		cp := *sub
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out, nil
}

// Execute runs an atomic validate-then-mutate on one submission.
func (s *InMemoryStore) Execute(_ context.Context, subID id.SubmissionID, validate func(*models.FormSubmission) error, mutate func(*models.FormSubmission)) (*models.FormSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subs[subID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(sub); err != nil {
		return nil, err
	}
	mutate(sub)
	cp := *sub
	return &cp, nil
}

func (s *InMemoryStore) Delete(_ context.Context, subID id.SubmissionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subs[subID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.subs, subID)
	return nil
}
