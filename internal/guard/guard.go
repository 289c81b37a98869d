// Package guard implements the ownership check shared by every mutating endpoint.
package guard

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/apierrors"
	"github.com/vidtube/backend/internal/repositories"
)

// Owned is implemented by every resource with a single owning user.
type Owned interface {
	Owner() string
}

// Loader fetches a resource by id, returning repositories.ErrNotFound when absent.
type Loader[T Owned] func(ctx context.Context, id string) (T, error)

// Mutator applies a change to a loaded resource and returns its post-mutation state.
type Mutator[T Owned] func(ctx context.Context, current T) (T, error)

// ValidID reports whether id is a well-formed resource identifier.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Mutate validates id, loads the resource, checks that actorID owns it and only
// then applies mutate. kind names the resource in error messages.
func Mutate[T Owned](ctx context.Context, kind, id, actorID string, load Loader[T], mutate Mutator[T]) (T, error) {
	current, err := Load(ctx, kind, id, load)
	if err != nil {
		var zero T
		return zero, err
	}

	if actorID == "" || current.Owner() != actorID {
		var zero T
		return zero, apierrors.Forbidden("you do not have permission to modify this " + kind)
	}

	updated, err := mutate(ctx, current)
	if err != nil {
		var zero T
		if errors.Is(err, repositories.ErrNotFound) {
			return zero, apierrors.NotFound(kind + " not found")
		}
		if errors.Is(err, repositories.ErrConflict) {
			return zero, apierrors.Conflict(kind + " conflicts with an existing record")
		}
		var apiErr *apierrors.Error
		if errors.As(err, &apiErr) {
			return zero, apiErr
		}
		return zero, apierrors.Internal("failed to update "+kind, err)
	}
	return updated, nil
}

// Load performs the validation and existence steps without an ownership check.
func Load[T Owned](ctx context.Context, kind, id string, load Loader[T]) (T, error) {
	var zero T
	if !ValidID(id) {
		return zero, apierrors.Invalid("invalid " + kind + " id")
	}

	current, err := load(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return zero, apierrors.NotFound(kind + " not found")
		}
		return zero, apierrors.Internal("failed to load "+kind, err)
	}
	return current, nil
}
