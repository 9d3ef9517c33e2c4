// internal/locator/locator_test.go
package locator

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		expr     string
		expected By
	}{
		{"CSS prefix", "css=.row > td", ByCSS(".row > td")},
		{"XPath prefix", "xpath=//li[@data-id]", ByXPath("//li[@data-id]")},
		{"ID prefix", "id=main", ByID("main")},
		{"Class alias", "class=card", ByClassName("card")},
		{"Link text", "link=Sign in", ByLinkText("Sign in")},
		{"Partial link", "partial=Sign", ByPartialLinkText("Sign")},
		{"Prefix is case insensitive", "XPath=//a", ByXPath("//a")},
		{"Bare XPath", "//div[@id='x']", ByXPath("//div[@id='x']")},
		{"Bare grouped XPath", "(//li)[2]", ByXPath("(//li)[2]")},
		{"Bare CSS", "ul.menu li", ByCSS("ul.menu li")},
		{"CSS with attribute equals", `a[href="/x"]`, ByCSS(`a[href="/x"]`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.expr)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.expr, diff)
			}
		})
	}

	t.Run("Empty expression", func(t *testing.T) {
		_, err := Parse("   ")
		assert.Error(t, err)
	})

	t.Run("Empty value", func(t *testing.T) {
		_, err := Parse("id=")
		assert.Error(t, err)
	})
}

func TestXPathFor(t *testing.T) {
	tests := []struct {
		by       By
		expected string
		ok       bool
	}{
		{ByXPath("//li"), "//li", true},
		{ByID("main"), `.//*[@id="main"]`, true},
		{ByName("q"), `.//*[@name="q"]`, true},
		{ByTagName("li"), ".//li", true},
		{ByClassName("card"), `.//*[contains(concat(' ',normalize-space(@class),' ')," card ")]`, true},
		{ByLinkText("Home"), `.//a[normalize-space(.)="Home"]`, true},
		{ByPartialLinkText("Ho"), `.//a[contains(.,"Ho")]`, true},
		{ByCSS(".card"), "", false},
		{ByClassName("two words"), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.by.String(), func(t *testing.T) {
			got, ok := XPathFor(tt.by)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCSSFor(t *testing.T) {
	tests := []struct {
		by       By
		expected string
		ok       bool
	}{
		{ByCSS("ul > li"), "ul > li", true},
		{ByID("main"), "#main", true},
		{ByID("1st"), `[id="1st"]`, true},
		{ByName("q"), `[name="q"]`, true},
		{ByClassName("card"), ".card", true},
		{ByTagName("li"), "li", true},
		{ByXPath("//li"), "", false},
		{ByLinkText("Home"), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.by.String(), func(t *testing.T) {
			got, ok := CSSFor(tt.by)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestPositional(t *testing.T) {
	assert.Equal(t, "(.//li)[1]", Positional(".//li", 0))
	assert.Equal(t, "(.//li)[6]", Positional(".//li", 5))
}

func TestXPathLiteral(t *testing.T) {
	assert.Equal(t, `"plain"`, xpathLiteral("plain"))
	assert.Equal(t, `'say "hi"'`, xpathLiteral(`say "hi"`))
	assert.Equal(t, `concat("it's ",'"',"quoted",'"')`, xpathLiteral(`it's "quoted"`))
}

func TestValidIndex(t *testing.T) {
	assert.True(t, ValidIndex(Optional))
	assert.True(t, ValidIndex(Cardinal))
	assert.True(t, ValidIndex(0))
	assert.True(t, ValidIndex(7))
	assert.False(t, ValidIndex(-3))
}

func TestByIdentity(t *testing.T) {
	assert.Equal(t, ByCSS(".a"), ByCSS(".a"))
	assert.NotEqual(t, ByCSS(".a"), ByXPath(".a"))
	assert.True(t, By{}.IsZero())
	assert.Equal(t, "By.cssSelector: .a", ByCSS(".a").String())
}
