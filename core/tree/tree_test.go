package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNeverFails(t *testing.T) {
	inputs := []string{
		"",
		"plain text",
		"<p>unclosed <b>bold",
		"</div></span>stray closers",
		"<table><td>cell",
		"<<<>>>",
	}
	for _, in := range inputs {
		root := Parse(in)
		require.NotNil(t, root)
		assert.Equal(t, "body", root.Data)
		assert.Nil(t, root.Parent)
	}
}

func TestRenderRoundTrip(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`<p>a<br>b</p>`, `<p>a<br/>b</p>`},
		{`<p>unclosed`, `<p>unclosed</p>`},
		{`<ul><li>one<li>two</ul>`, `<ul><li>one</li><li>two</li></ul>`},
		{`  <p>x</p>  `, `<p>x</p>`},
	}
	for _, tt := range tests {
		got := Canonical(tt.in)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, got, Canonical(got))
	}
}

func TestRenderEmptiesVoidElements(t *testing.T) {
	root := Parse(`<p>x</p>`)
	br := NewElement("br")
	br.AppendChild(NewText("junk"))
	root.FirstChild.AppendChild(br)
	assert.Equal(t, `<p>x<br/></p>`, Render(root))
}

func TestAttributes(t *testing.T) {
	root := Parse(`<p class="A b" id="x">t</p>`)
	p := root.FirstChild

	assert.Equal(t, "x", Attr(p, "id"))
	assert.True(t, HasAttr(p, "class"))
	assert.True(t, HasClassFold(p, "a"))
	assert.Equal(t, []string{"A", "b"}, ClassTokens(p))

	SetAttr(p, "id", "y")
	SetAttr(p, "title", "z")
	assert.Equal(t, `<p class="A b" id="y" title="z">t</p>`, Render(root))

	assert.True(t, RemoveAttr(p, "class"))
	assert.False(t, RemoveAttr(p, "class"))
	assert.Equal(t, "", Attr(p, "class"))
}

func TestUnwrapAndRename(t *testing.T) {
	root := Parse(`<div><span>a</span><em>b</em></div>`)
	div := root.FirstChild
	Unwrap(div.FirstChild)
	Rename(div, "p")
	assert.Equal(t, `<p>a<em>b</em></p>`, Render(root))
}

func TestBlankness(t *testing.T) {
	assert.True(t, IsBlankText(" \u00a0 \t\u200b"))
	assert.False(t, IsBlankText(" x "))

	root := Parse(`<p>&nbsp;<br></p><p><img src="a.png"></p><p><span> </span></p>`)
	ps := ElementChildren(root)
	require.Len(t, ps, 3)
	assert.True(t, IsBlank(ps[0]))
	assert.False(t, IsBlank(ps[1]))
	assert.True(t, IsBlank(ps[2]))
}

func TestWrapInlineRuns(t *testing.T) {
	root := Parse(`<div>Hello <strong>x</strong> world<p>block</p> <em>tail</em></div>`)
	div := root.FirstChild
	assert.Equal(t, 2, WrapInlineRuns(div, "p"))
	assert.Equal(t, `<div><p>Hello <strong>x</strong> world</p><p>block</p><p><em>tail</em></p></div>`, Render(root))

	// A second pass finds nothing left to wrap.
	assert.Equal(t, 0, WrapInlineRuns(div, "p"))
}

func TestText(t *testing.T) {
	root := Parse(`<p> Step <b>one</b>: </p>`)
	assert.Equal(t, "Step one:", Text(root.FirstChild))
	assert.Equal(t, " Step one: ", TextContent(root.FirstChild))
}
