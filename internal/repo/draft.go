package repo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// DraftRepo defines the storage operations for Drafts.
type DraftRepo interface {
	// Create stores a new draft. Returns domain.ErrConflict if the ID is taken.
	Create(ctx context.Context, draft domain.Draft) (domain.Draft, error)

	// GetByID returns a draft by ID.
	// Returns domain.ErrNotFound if no draft with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Draft, error)

	// Update runs fn against the current draft and stores its result.
	// fn runs while the store is locked, so concurrent updates to the same
	// draft are applied one after another. If fn returns an error nothing is
	// stored and the error is returned unchanged.
	// Returns domain.ErrNotFound if no draft with that ID exists.
	Update(ctx context.Context, id uuid.UUID, fn func(domain.Draft) (domain.Draft, error)) (domain.Draft, error)

	// Delete removes a draft by ID.
	// Returns domain.ErrNotFound if no draft with that ID exists.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteIdleSince removes every draft last updated before cutoff and
	// returns how many were removed.
	DeleteIdleSince(ctx context.Context, cutoff time.Time) (int, error)

	// Count returns the number of stored drafts.
	Count(ctx context.Context) (int, error)
}

// memDraftRepo is the in-memory implementation of DraftRepo.
// Drafts are values and every domain operation copies before it changes
// anything, so stored drafts can be handed out without deep copies.
type memDraftRepo struct {
	mu     sync.Mutex
	drafts map[uuid.UUID]domain.Draft
}

// NewDraftRepo constructs an empty in-memory DraftRepo.
func NewDraftRepo() DraftRepo {
	return &memDraftRepo{drafts: make(map[uuid.UUID]domain.Draft)}
}

func (r *memDraftRepo) Create(_ context.Context, draft domain.Draft) (domain.Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.drafts[draft.ID]; ok {
		return domain.Draft{}, fmt.Errorf("repo.DraftRepo.Create: draft %s: %w", draft.ID, domain.ErrConflict)
	}
	r.drafts[draft.ID] = draft
	return draft, nil
}

func (r *memDraftRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.drafts[id]
	if !ok {
		return domain.Draft{}, fmt.Errorf("repo.DraftRepo.GetByID: %w", domain.ErrNotFound)
	}
	return d, nil
}

func (r *memDraftRepo) Update(_ context.Context, id uuid.UUID, fn func(domain.Draft) (domain.Draft, error)) (domain.Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.drafts[id]
	if !ok {
		return domain.Draft{}, fmt.Errorf("repo.DraftRepo.Update: %w", domain.ErrNotFound)
	}
	next, err := fn(current)
	if err != nil {
		return domain.Draft{}, err
	}
	next.ID = id
	r.drafts[id] = next
	return next, nil
}

func (r *memDraftRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.drafts[id]; !ok {
		return fmt.Errorf("repo.DraftRepo.Delete: %w", domain.ErrNotFound)
	}
	delete(r.drafts, id)
	return nil
}

func (r *memDraftRepo) DeleteIdleSince(_ context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, d := range r.drafts {
		if d.UpdatedAt.Before(cutoff) {
			delete(r.drafts, id)
			n++
		}
	}
	return n, nil
}

func (r *memDraftRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.drafts), nil
}
