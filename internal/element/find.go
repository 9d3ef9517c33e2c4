// internal/element/find.go
package element

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/robustdom/internal/driver"
	"github.com/xkilldash9x/robustdom/internal/locator"
)

// Get resolves the first match of by under c.
func Get(ctx context.Context, c Context, by locator.By) (*Handle, error) {
	return New(ctx, c, by)
}

// GetIndexed resolves the index-th match of by under c.
func GetIndexed(ctx context.Context, c Context, by locator.By, index int) (*Handle, error) {
	return NewIndexed(ctx, c, by, index)
}

// GetAll snapshots every match of by under c, in document order. The i-th
// handle is indexed i so that it can re-acquire its own element later. If c
// has gone stale it is refreshed and the lookup retried once.
func GetAll(ctx context.Context, c Context, by locator.By) ([]*Handle, error) {
	natives, err := findAll(ctx, c, by)
	if driver.IsStale(err) {
		c.Logger().Debug("Search context went stale during lookup; refreshing.", zap.Stringer("locator", by))
		if rerr := c.Refresh(ctx, c.AcquiredAt()); rerr != nil {
			return nil, err
		}
		natives, err = findAll(ctx, c, by)
	}
	if err != nil {
		return nil, err
	}

	out := make([]*Handle, 0, len(natives))
	for i, n := range natives {
		h, err := WrapIndexed(ctx, n, c, by, i)
		if err != nil {
			return nil, fmt.Errorf("wrapping match %d of %s: %w", i, by, err)
		}
		out = append(out, h)
	}
	return out, nil
}

func findAll(ctx context.Context, c Context, by locator.By) ([]driver.Element, error) {
	sc, err := c.SearchContext(ctx)
	if err != nil {
		return nil, err
	}
	return sc.FindElements(ctx, by)
}

// -- Descendant lookups --

// Find resolves the first descendant matching by.
func (h *Handle) Find(ctx context.Context, by locator.By) (*Handle, error) {
	return New(ctx, h, by)
}

// FindIndexed resolves the index-th descendant matching by.
func (h *Handle) FindIndexed(ctx context.Context, by locator.By, index int) (*Handle, error) {
	return NewIndexed(ctx, h, by, index)
}

// FindOptional resolves a descendant that may be absent.
func (h *Handle) FindOptional(ctx context.Context, by locator.By) (*Handle, error) {
	return Optional(ctx, h, by)
}

// FindAll snapshots every descendant matching by.
func (h *Handle) FindAll(ctx context.Context, by locator.By) ([]*Handle, error) {
	return GetAll(ctx, h, by)
}

// FindElement satisfies driver.SearchContext.
func (h *Handle) FindElement(ctx context.Context, by locator.By) (driver.Element, error) {
	child, err := h.Find(ctx, by)
	if err != nil {
		return nil, err
	}
	return child, nil
}

// FindElements satisfies driver.SearchContext.
func (h *Handle) FindElements(ctx context.Context, by locator.By) ([]driver.Element, error) {
	all, err := h.FindAll(ctx, by)
	if err != nil {
		return nil, err
	}
	out := make([]driver.Element, len(all))
	for i, c := range all {
		out[i] = c
	}
	return out, nil
}
