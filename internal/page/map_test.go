// internal/page/map_test.go
package page

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/robustdom/internal/element"
	"github.com/xkilldash9x/robustdom/internal/locator"
)

// line is a cart row component.
type line struct {
	*Component
	enhanced bool
}

func (l *line) Name(ctx context.Context) (string, error) {
	name, err := l.Find(ctx, locator.ByClassName("name"))
	if err != nil {
		return "", err
	}
	return name.Text(ctx)
}

// lineKind keys rows by data-sku. built, when non-nil, counts constructions.
func lineKind(built *int) Kind[string, *line] {
	return Kind[string, *line]{
		Name: "line",
		New: func(h *element.Handle, parent Container) (*line, error) {
			if built != nil {
				*built++
			}
			return &line{Component: NewComponent(h, parent)}, nil
		},
		Key: func(ctx context.Context, h *element.Handle) (string, error) {
			return h.Attribute(ctx, "data-sku")
		},
		Enhance: func(l *line) *line {
			l.enhanced = true
			return l
		},
	}
}

func TestMap_SnapshotKeysAndOrder(t *testing.T) {
	_, p := newTestPage(t)
	ctx := context.Background()

	m, err := NewMap(ctx, p, lineKind(nil), locator.ByClassName("line"))
	require.NoError(t, err)

	assert.Equal(t, 3, m.Len())
	if diff := cmp.Diff([]string{"a", "b", "c"}, m.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, locator.ByClassName("line"), m.Locator())
	assert.Same(t, p, m.Parent())

	var order []string
	for key, e := range m.All() {
		order = append(order, key)
		assert.Equal(t, len(order)-1, e.Handle().Index())
	}
	assert.Equal(t, []string{"a", "b", "c"}, order)

	var first []string
	for key := range m.All() {
		first = append(first, key)
		break
	}
	assert.Equal(t, []string{"a"}, first, "iteration stops when the consumer does")
}

func TestMap_SizeIgnoresLaterDOMChanges(t *testing.T) {
	doc, p := newTestPage(t)
	ctx := context.Background()

	m, err := NewMap(ctx, p, lineKind(nil), locator.ByClassName("line"))
	require.NoError(t, err)
	findAll := doc.Calls("findAll")

	require.NoError(t, doc.Append("#cart tbody", `<tr class="line" data-sku="d"><td class="name">Date</td></tr>`))
	require.NoError(t, doc.Remove(`tr[data-sku="a"]`))

	assert.Equal(t, 3, m.Len())
	assert.True(t, m.ContainsKey("a"))
	assert.False(t, m.ContainsKey("d"))
	assert.Len(t, m.Entries(), 3)
	assert.Equal(t, findAll, doc.Calls("findAll"), "size and membership never re-query")
}

func TestMap_GetFirstMatch(t *testing.T) {
	_, p := newTestPage(t)
	ctx := context.Background()

	m, err := NewMap(ctx, p, lineKind(nil), locator.ByClassName("line"))
	require.NoError(t, err)

	e, ok := m.Get("b")
	require.True(t, ok)
	assert.Equal(t, "b", e.Key())
	assert.Equal(t, 1, e.Handle().Index())

	e, ok = m.Get("z")
	assert.False(t, ok)
	assert.Nil(t, e)
}

func TestMap_DuplicateKeysReturnFirst(t *testing.T) {
	_, p := newTestPage(t)
	ctx := context.Background()

	kind := lineKind(nil)
	kind.Key = func(context.Context, *element.Handle) (string, error) { return "same", nil }

	m, err := NewMap(ctx, p, kind, locator.ByClassName("line"))
	require.NoError(t, err)

	assert.Equal(t, 3, m.Len(), "duplicates are kept")
	e, ok := m.Get("same")
	require.True(t, ok)
	assert.Equal(t, 0, e.Handle().Index())
}

func TestMap_ValueIsLazyAndMemoized(t *testing.T) {
	_, p := newTestPage(t)
	ctx := context.Background()
	built := 0

	m, err := NewMap(ctx, p, lineKind(&built), locator.ByClassName("line"))
	require.NoError(t, err)
	assert.Zero(t, built, "construction does not build components")

	v1, ok, err := m.Value("c")
	require.NoError(t, err)
	require.True(t, ok)
	v2, _, err := m.Value("c")
	require.NoError(t, err)

	assert.Same(t, v1, v2)
	assert.Equal(t, 1, built)
	assert.True(t, v1.enhanced, "the enhancement hook ran")
	assert.Same(t, p, v1.Parent())

	name, err := v1.Name(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Cherry", name)

	_, ok, err = m.Value("z")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestMap_FailedBuildIsNotCached(t *testing.T) {
	_, p := newTestPage(t)
	ctx := context.Background()
	fail := true

	kind := lineKind(nil)
	kind.New = func(h *element.Handle, parent Container) (*line, error) {
		if fail {
			return nil, errors.New("not ready")
		}
		return &line{Component: NewComponent(h, parent)}, nil
	}
	m, err := NewMap(ctx, p, kind, locator.ByClassName("line"))
	require.NoError(t, err)
	e, _ := m.Get("a")

	_, err = e.Value()
	assert.ErrorContains(t, err, "constructing line: not ready")

	fail = false
	v, err := e.Value()
	require.NoError(t, err)
	assert.NotNil(t, v)
}

func TestMap_ContainsValue(t *testing.T) {
	_, p := newTestPage(t)
	ctx := context.Background()

	m, err := NewMap(ctx, p, lineKind(nil), locator.ByClassName("line"))
	require.NoError(t, err)

	second, err := element.GetIndexed(ctx, p, locator.ByClassName("line"), 1)
	require.NoError(t, err)
	other, err := element.GetIndexed(ctx, p, locator.ByClassName("name"), 1)
	require.NoError(t, err)

	assert.True(t, m.ContainsValue(second))
	assert.False(t, m.ContainsValue(other))
}

func TestMap_MutationsAreRejected(t *testing.T) {
	_, p := newTestPage(t)
	ctx := context.Background()

	m, err := NewMap(ctx, p, lineKind(nil), locator.ByClassName("line"))
	require.NoError(t, err)
	before := m.Keys()

	tests := map[string]func() error{
		"put":        func() error { return m.Put("z", &line{}) },
		"remove":     func() error { return m.Remove("a") },
		"clear":      m.Clear,
		"remove all": func() error { return m.RemoveAll(func(string, *Entry[string, *line]) bool { return true }) },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			err := mutate()
			assert.ErrorIs(t, err, ErrUnsupportedMutation)
			assert.Contains(t, err.Error(), name)
			assert.Equal(t, before, m.Keys())
			assert.Equal(t, 3, m.Len())
		})
	}
}

func TestNewMap_Errors(t *testing.T) {
	_, p := newTestPage(t)
	ctx := context.Background()

	t.Run("invalid kind", func(t *testing.T) {
		_, err := NewMap(ctx, p, Kind[string, *line]{Name: "broken"}, locator.ByClassName("line"))
		assert.ErrorContains(t, err, "has no constructor")
	})

	t.Run("nil parent", func(t *testing.T) {
		_, err := NewMap[string, *line](ctx, nil, lineKind(nil), locator.ByClassName("line"))
		assert.ErrorContains(t, err, "needs a parent container")
	})

	t.Run("key failure", func(t *testing.T) {
		kind := lineKind(nil)
		kind.Key = func(context.Context, *element.Handle) (string, error) { return "", errors.New("no key") }
		_, err := NewMap(ctx, p, kind, locator.ByClassName("line"))
		assert.ErrorContains(t, err, "keying line 0: no key")
	})
}

func TestNewMapFor(t *testing.T) {
	_, p := newTestPage(t)
	ctx := context.Background()
	r := NewRegistry()
	require.NoError(t, Register(r, lineKind(nil)))

	m, err := NewMapFor[string, *line](ctx, p, r, "line", locator.ByClassName("line"))
	require.NoError(t, err)
	assert.Equal(t, 3, m.Len())

	_, err = NewMapFor[int, *line](ctx, p, r, "line", locator.ByClassName("line"))
	assert.ErrorIs(t, err, ErrKindMismatch)
}

func TestMap_UnderComponent(t *testing.T) {
	_, p := newTestPage(t)
	ctx := context.Background()

	cartHandle, err := p.Find(ctx, locator.ByID("cart"))
	require.NoError(t, err)
	cart := NewComponent(cartHandle, p)

	m, err := NewMap(ctx, cart, lineKind(nil), locator.ByTagName("tr"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, m.Keys())

	v, ok, err := m.Value("a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Same(t, cart, v.Parent())
}
