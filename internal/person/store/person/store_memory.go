// Package person provides the person store implementations. The store owns
// the email uniqueness invariant: check-then-create is atomic under the store
// lock (memory) or the unique index (Postgres).
package person

import (
	"context"
	"sync"

	"talentgate/internal/person/models"
	id "talentgate/pkg/domain"
	"talentgate/pkg/platform/sentinel"
)

// InMemoryStore keeps persons in maps guarded by one RWMutex, so the
// email-availability check and the insert happen under a single lock
// acquisition.
type InMemoryStore struct {
	mu      sync.RWMutex
	byID    map[id.PersonID]*models.Person
	byEmail map[string]id.PersonID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:    make(map[id.PersonID]*models.Person),
		byEmail: make(map[string]id.PersonID),
	}
}

func (s *InMemoryStore) FindByID(_ context.Context, personID id.PersonID) (*models.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[personID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (*models.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	personID, ok := s.byEmail[email]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.byID[personID]
	return &cp, nil
}

// CreateIfEmailAvailable inserts the person unless the email is taken.
// Returns sentinel.ErrConflict when another person already owns the email.
func (s *InMemoryStore) CreateIfEmailAvailable(_ context.Context, p *models.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byEmail[p.Email]; taken {
		return sentinel.ErrConflict
	}
	cp := *p
	s.byID[cp.ID] = &cp
	s.byEmail[cp.Email] = cp.ID
	return nil
}

// Execute runs an atomic validate-then-mutate on one person. The store lock
// is held for the whole callback pair, mirroring FOR UPDATE semantics.
func (s *InMemoryStore) Execute(_ context.Context, personID id.PersonID, validate func(*models.Person) error, mutate func(*models.Person)) (*models.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[personID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(p); err != nil {
		return nil, err
	}
	mutate(p)
	cp := *p
	return &cp, nil
}

// Delete removes a person. Owned applications are cascaded by the caller.
func (s *InMemoryStore) Delete(_ context.Context, personID id.PersonID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[personID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byEmail, p.Email)
	delete(s.byID, personID)
	return nil
}
