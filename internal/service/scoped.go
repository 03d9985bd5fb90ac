package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ritesshguptaa/recipy-app-api/internal/metrics"
	"github.com/ritesshguptaa/recipy-app-api/internal/model"
	"github.com/ritesshguptaa/recipy-app-api/internal/repository"
)

// OwnedRepository stores entities that belong to a single user.
type OwnedRepository[T any] interface {
	ListByOwner(ctx context.Context, ownerID string) ([]*T, error)
	Create(ctx context.Context, item *T) error
}

// Builder validates a payload and builds the entity owned by ownerID.
type Builder[T, In any] func(ownerID string, in In) (*T, error)

// ScopedStore lists and creates entities on behalf of their owner only.
type ScopedStore[T, In any] struct {
	kind    string
	repo    OwnedRepository[T]
	build   Builder[T, In]
	metrics metrics.Recorder
}

// NewScopedStore composes a repository with an entity-specific builder.
func NewScopedStore[T, In any](kind string, repo OwnedRepository[T], build Builder[T, In], recorder metrics.Recorder) *ScopedStore[T, In] {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ScopedStore[T, In]{
		kind:    kind,
		repo:    repo,
		build:   build,
		metrics: recorder,
	}
}

// Kind names the entity, e.g. "tag".
func (s *ScopedStore[T, In]) Kind() string {
	return s.kind
}

// List returns the owner's entities.
func (s *ScopedStore[T, In]) List(ctx context.Context, owner *model.AuthContext) ([]*T, error) {
	if owner == nil || owner.UserID == "" {
		return nil, ErrNoOwner
	}

	items, err := s.repo.ListByOwner(ctx, owner.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list %ss: %w", s.kind, err)
	}
	return items, nil
}

// Create validates the payload, stamps the owner and persists the entity.
func (s *ScopedStore[T, In]) Create(ctx context.Context, owner *model.AuthContext, in In) (*T, error) {
	if owner == nil || owner.UserID == "" {
		return nil, ErrNoOwner
	}

	item, err := s.build(owner.UserID, in)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, item); err != nil {
		var refErr *repository.UnknownReferenceError
		if errors.As(err, &refErr) {
			verr := &ValidationError{}
			for _, id := range refErr.IDs {
				verr.Add(refErr.Field, fmt.Sprintf("Invalid pk %q - object does not exist.", id))
			}
			return nil, verr
		}
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to create %s: %w", s.kind, err)
	}

	s.metrics.IncResourceCreated(s.kind)
	return item, nil
}
