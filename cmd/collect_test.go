// cmd/collect_test.go
package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/robustdom/internal/driver/fakedriver"
	"github.com/xkilldash9x/robustdom/internal/locator"
	"github.com/xkilldash9x/robustdom/internal/page"
)

const cartFixture = `<html><body><ul id="cart">
<li class="item" data-sku="a">Apple</li>
<li class="item" data-sku="b">Banana</li>
<li class="item" data-sku="c">Cherry</li>
</ul></body></html>`

func TestCollectCmd(t *testing.T) {
	useFakePage(t, cartFixture)

	out, err := execute(t, "collect", "--url", "https://example.test/cart", "--locator", "li.item", "--key-attr", "data-sku")
	require.NoError(t, err)
	assert.Equal(t, "a\tApple\nb\tBanana\nc\tCherry\n3 matched\n", out)
}

func TestCollectCmd_NoMatches(t *testing.T) {
	useFakePage(t, cartFixture)

	out, err := execute(t, "collect", "--url", "x", "--locator", "class=missing")
	require.NoError(t, err)
	assert.Equal(t, "0 matched\n", out)
}

func TestAttributeKind(t *testing.T) {
	p := page.New(fakedriver.MustParse(cartFixture))
	ctx := context.Background()

	kind := attributeKind("data-sku")
	require.NoError(t, kind.Validate())
	assert.Equal(t, "component[data-sku]", kind.Name)

	m, err := page.NewMap(ctx, p, kind, locator.ByClassName("item"))
	require.NoError(t, err)

	v, ok, err := m.Value("b")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Same(t, p, v.Parent())

	text, err := v.Handle().Text(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Banana", text)
}
