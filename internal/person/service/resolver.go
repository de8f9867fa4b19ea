// Package service implements identity resolution: one person row per
// normalized email, no matter how many submissions arrive or how
// concurrently they arrive.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"talentgate/internal/person/models"
	"talentgate/internal/platform/lock"
	id "talentgate/pkg/domain"
	dErrors "talentgate/pkg/domain-errors"
	"talentgate/pkg/email"
	"talentgate/pkg/platform/sentinel"
	"talentgate/pkg/requestcontext"
)

// Store is the persistence the resolver needs. Implementations own the
// email-uniqueness constraint; the resolver owns normalization and the
// conflict-then-reread discipline.
type Store interface {
	FindByID(ctx context.Context, personID id.PersonID) (*models.Person, error)
	FindByEmail(ctx context.Context, email string) (*models.Person, error)
	CreateIfEmailAvailable(ctx context.Context, p *models.Person) error
	Execute(ctx context.Context, personID id.PersonID, validate func(*models.Person) error, mutate func(*models.Person)) (*models.Person, error)
	Delete(ctx context.Context, personID id.PersonID) error
}

const emailLockPrefix = "person-email:"

// Resolver finds or creates persons by normalized email.
type Resolver struct {
	store  Store
	locks  lock.Locker
	logger *slog.Logger
}

type Option func(*Resolver)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithLocker swaps the per-email lock, e.g. for the Redis locker in
// multi-process deployments.
func WithLocker(locks lock.Locker) Option {
	return func(r *Resolver) {
		r.locks = locks
	}
}

func New(store Store, opts ...Option) (*Resolver, error) {
	if store == nil {
		return nil, fmt.Errorf("person store is required")
	}
	r := &Resolver{
		store: store,
		locks: lock.NewKeyedMutex(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// FindOrCreate returns the person owning the attributes' email, creating one
// on first sighting. An existing person is returned unchanged: later
// submissions never overwrite verified fields with untrusted form input.
//
// The check-then-create runs under a per-email lock, and the store's
// uniqueness constraint backstops it: a conflicting create is resolved by
// re-reading the winner, so two concurrent submissions for a brand-new email
// converge on one row.
func (r *Resolver) FindOrCreate(ctx context.Context, attrs models.Attributes) (*models.Person, bool, error) {
	if err := attrs.Validate(); err != nil {
		return nil, false, err
	}
	normalized := email.Normalize(attrs.Email)

	release, err := r.locks.Acquire(ctx, emailLockPrefix+normalized)
	if err != nil {
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to lock email")
	}
	defer release()

	existing, err := r.store.FindByEmail(ctx, normalized)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up person")
	}

	p, err := models.NewPerson(id.NewPersonID(), attrs, requestcontext.Now(ctx))
	if err != nil {
		return nil, false, err
	}
	if err := r.store.CreateIfEmailAvailable(ctx, p); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			// Lost a cross-process race; the winner's row is authoritative.
			winner, rerr := r.store.FindByEmail(ctx, normalized)
			if rerr != nil {
				return nil, false, dErrors.Wrap(rerr, dErrors.CodeInternal, "failed to reread person after conflict")
			}
			return winner, false, nil
		}
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create person")
	}

	if r.logger != nil {
		r.logger.InfoContext(ctx, "person created",
			"person_id", p.ID,
			"email", p.Email,
		)
	}
	return p, true, nil
}

// Get returns a person by id.
func (r *Resolver) Get(ctx context.Context, personID id.PersonID) (*models.Person, error) {
	if personID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "person id is required")
	}
	p, err := r.store.FindByID(ctx, personID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "person not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load person")
	}
	return p, nil
}

// GetByEmail returns a person by (normalized) email.
func (r *Resolver) GetByEmail(ctx context.Context, addr string) (*models.Person, error) {
	normalized := email.Normalize(addr)
	if normalized == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "email is required")
	}
	p, err := r.store.FindByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "person not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load person")
	}
	return p, nil
}
