// internal/element/find_test.go
package element

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/robustdom/internal/driver"
	"github.com/xkilldash9x/robustdom/internal/locator"
	"github.com/xkilldash9x/robustdom/internal/mocks"
)

func TestGetAll_IndexesSnapshotInOrder(t *testing.T) {
	doc, root := newFixture(t)
	ctx := context.Background()

	rows, err := GetAll(ctx, root, locator.ByClassName("row"))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	for i, want := range []string{"Apple", "Banana", "Cherry"} {
		assert.Equal(t, i, rows[i].Index())
		text, err := rows[i].Text(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, text)
	}
	assert.Equal(t, 1, doc.Calls("findAll"))
	assert.Zero(t, doc.Calls("find"), "snapshot handles need no lookup of their own")
}

func TestGetAll_HandlesSurviveRerender(t *testing.T) {
	doc, root := newFixture(t)
	ctx := context.Background()

	rows, err := GetAll(ctx, root, locator.ByClassName("row"))
	require.NoError(t, err)
	doc.Rerender()

	for i, want := range []string{"Apple", "Banana", "Cherry"} {
		text, err := rows[i].Text(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, text)
	}
}

func TestGetAll_EmptyIsNotAnError(t *testing.T) {
	_, root := newFixture(t)
	rows, err := GetAll(context.Background(), root, locator.ByCSS(".absent"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestGetAll_RefreshesStaleContextOnce(t *testing.T) {
	doc, root := newFixture(t)
	ctx := context.Background()

	list, err := New(ctx, root, locator.ByID("items"))
	require.NoError(t, err)
	doc.Rerender()

	rows, err := list.FindAll(ctx, locator.ByCSS("li"))
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, 2, doc.Calls("find"), "the list was re-acquired")
}

func TestGetAll_SecondStaleSurfaces(t *testing.T) {
	ctx := context.Background()
	by := locator.ByCSS("li")
	stale := driver.ErrStaleElement

	drv := new(mocks.MockDriver)
	drv.On("FindElements", mock.Anything, by).Return(nil, stale).Twice()

	root := newRoot(t, drv)
	_, err := GetAll(ctx, root, by)
	assert.ErrorIs(t, err, driver.ErrStaleElement)
	assert.Equal(t, 1, root.refreshes)
	drv.AssertExpectations(t)
}

func TestDescendantLookups(t *testing.T) {
	_, root := newFixture(t)
	ctx := context.Background()

	form, err := Get(ctx, root, locator.ByID("search"))
	require.NoError(t, err)

	t.Run("Find", func(t *testing.T) {
		q, err := form.Find(ctx, locator.ByName("q"))
		require.NoError(t, err)
		assert.Same(t, form, q.Context())
		tag, err := q.TagName(ctx)
		require.NoError(t, err)
		assert.Equal(t, "input", tag)
	})

	t.Run("FindIndexed", func(t *testing.T) {
		second, err := form.FindIndexed(ctx, locator.ByTagName("input"), 1)
		require.NoError(t, err)
		id, err := second.Attribute(ctx, "id")
		require.NoError(t, err)
		assert.Equal(t, "agree", id)
	})

	t.Run("FindOptional outside scope", func(t *testing.T) {
		title, err := form.FindOptional(ctx, locator.ByID("title"))
		require.NoError(t, err)
		assert.False(t, title.HasReference(ctx), "the title is not inside the form")
	})

	t.Run("SearchContext adapters", func(t *testing.T) {
		el, err := form.FindElement(ctx, locator.ByID("go"))
		require.NoError(t, err)
		assert.IsType(t, &Handle{}, el)

		els, err := form.FindElements(ctx, locator.ByTagName("input"))
		require.NoError(t, err)
		assert.Len(t, els, 2)

		_, err = form.FindElement(ctx, locator.ByID("ghost"))
		assert.ErrorIs(t, err, driver.ErrNoSuchElement)
	})

	t.Run("GetIndexed", func(t *testing.T) {
		h, err := GetIndexed(ctx, root, locator.ByClassName("row"), 1)
		require.NoError(t, err)
		text, err := h.Text(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Banana", text)
	})
}
