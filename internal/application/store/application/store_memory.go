// Package application provides the application store implementations.
package application

import (
	"context"
	"sort"
	"sync"

	"talentgate/internal/application/models"
	id "talentgate/pkg/domain"
	"talentgate/pkg/platform/sentinel"
)

// InMemoryStore keeps applications in a map guarded by one RWMutex.
type InMemoryStore struct {
	mu   sync.RWMutex
	apps map[id.ApplicationID]*models.Application
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{apps: make(map[id.ApplicationID]*models.Application)}
}

func (s *InMemoryStore) Create(_ context.Context, a *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.apps[a.ID]; exists {
		return sentinel.ErrConflict
	}
	cp := *a
	s.apps[cp.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, appID id.ApplicationID) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.apps[appID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

// FindBySubmission returns the application created from a submission, if any.
// This lookup makes application creation idempotent per submission id.
func (s *InMemoryStore) FindBySubmission(_ context.Context, submissionID id.SubmissionID) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.apps {
		if a.SubmissionID == submissionID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) ListByPerson(_ context.Context, personID id.PersonID) ([]*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Application
	for _, a := range s.apps {
		if a.PersonID == personID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Execute runs an atomic validate-then-mutate on one application.
func (s *InMemoryStore) Execute(_ context.Context, appID id.ApplicationID, validate func(*models.Application) error, mutate func(*models.Application)) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.apps[appID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(a); err != nil {
		return nil, err
	}
	mutate(a)
	cp := *a
	return &cp, nil
}

// DeleteByPerson removes all applications owned by a person. Used by the
// administrative person-deletion cascade.
func (s *InMemoryStore) DeleteByPerson(_ context.Context, personID id.PersonID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for appID, a := range s.apps {
		if a.PersonID == personID {
			delete(s.apps, appID)
		}
	}
	return nil
}
