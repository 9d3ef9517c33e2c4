// internal/element/outcome.go
package element

import (
	"context"
	"errors"

	"github.com/xkilldash9x/robustdom/internal/driver"
)

// ErrNoReference is returned by value-producing operations on an optional
// handle that never acquired a reference. The deferred not-found error is
// wrapped alongside it.
var ErrNoReference = errors.New("unable to acquire reference for optional element")

// outcome classifies the result of a single native operation.
type outcome int

const (
	outcomeOK outcome = iota
	outcomeStale
	outcomeNotFound
	outcomeNoReference
	outcomeFailed
)

func classify(err error) outcome {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, ErrNoReference):
		return outcomeNoReference
	case driver.IsStale(err):
		return outcomeStale
	case driver.IsNotFound(err):
		return outcomeNotFound
	default:
		return outcomeFailed
	}
}

// attempt runs op against h's native element. A stale outcome triggers one
// refresh of h followed by exactly one retry; if the refresh cannot complete,
// or the retry is stale again, the original stale error is returned.
func attempt[T any](ctx context.Context, h *Handle, op func(el driver.Element) (T, error)) (T, error) {
	var zero T

	el, err := h.Native(ctx)
	if err != nil {
		return zero, err
	}
	v, err := op(el)
	if classify(err) != outcomeStale {
		return v, err
	}

	trigger := err
	if err := h.refresh(ctx, trigger); err != nil {
		return zero, err
	}
	el, err = h.Native(ctx)
	if err != nil {
		return zero, err
	}
	v, err = op(el)
	if classify(err) == outcomeStale {
		return zero, trigger
	}
	return v, err
}

// act is attempt for operations without a result.
func act(ctx context.Context, h *Handle, op func(el driver.Element) error) error {
	_, err := attempt(ctx, h, func(el driver.Element) (struct{}, error) {
		return struct{}{}, op(el)
	})
	return err
}

// predicate is attempt for boolean queries: a referenceless optional handle
// reads as false instead of failing.
func predicate(ctx context.Context, h *Handle, op func(el driver.Element) (bool, error)) (bool, error) {
	v, err := attempt(ctx, h, op)
	if classify(err) == outcomeNoReference {
		return false, nil
	}
	return v, err
}
