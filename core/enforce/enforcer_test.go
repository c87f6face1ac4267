package enforce

import (
	"testing"

	"github.com/gaurav-prasanna/canonhtml/core"
	"github.com/gaurav-prasanna/canonhtml/core/tree"
	"github.com/stretchr/testify/assert"
)

func enforce(markup string) (string, []string) {
	ctx := core.NewParseContext(tree.Parse(markup), core.Revalidate)
	New().Apply(ctx)
	return tree.Render(ctx.Root), ctx.Warnings.List()
}

func TestEnforcer(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		warning string
	}{
		{
			name:    "forbidden attributes",
			input:   `<p class="MsoNormal" style="margin:0">Hi</p>`,
			want:    `<p>Hi</p>`,
			warning: "Removed forbidden attribute style from <p>.",
		},
		{
			name:    "unknown tags unwrap",
			input:   `<p><font color="red">x</font></p>`,
			want:    `<p>x</p>`,
			warning: "Removed unsupported <font> (unwrapped).",
		},
		{
			name:    "drop tags lose content",
			input:   `<p>a<script>x()</script></p>`,
			want:    `<p>a</p>`,
			warning: "Removed <script> element.",
		},
		{
			name:  "aliases",
			input: `<p><b>x</b><i>y</i><del>z</del></p><h5>T</h5>`,
			want:  `<p><strong>x</strong><em>y</em><s>z</s></p><h3>T</h3>`,
		},
		{
			name:  "comments",
			input: `<p>a<!-- c -->b</p>`,
			want:  `<p>ab</p>`,
		},
		{
			name:    "script link unwrapped",
			input:   `<p><a href="javascript:alert(1)">x</a></p>`,
			want:    `<p>x</p>`,
			warning: `Removed link with disallowed scheme "javascript"; unwrapped <a>.`,
		},
		{
			name:  "control characters do not hide a scheme",
			input: `<p><a href="java&#9;script:alert(1)">x</a></p>`,
			want:  `<p>x</p>`,
		},
		{
			name:  "external link",
			input: `<p><a href=" https://example.com/a " title="t">x</a></p>`,
			want:  `<p><a href="https://example.com/a" rel="noopener noreferrer" target="_blank">x</a></p>`,
		},
		{
			name:  "relative link",
			input: `<p><a href="docs/page.html">r</a></p>`,
			want:  `<p><a href="docs/page.html" rel="noopener noreferrer" target="_blank">r</a></p>`,
		},
		{
			name:  "mailto keeps only href",
			input: `<p><a href="mailto:a@b.c" target="_blank">m</a></p>`,
			want:  `<p><a href="mailto:a@b.c">m</a></p>`,
		},
		{
			name:  "fragment keeps only href",
			input: `<p><a href="#sec" target="_blank" rel="x">s</a></p>`,
			want:  `<p><a href="#sec">s</a></p>`,
		},
		{
			name:  "bookmark pseudo scheme",
			input: `<p><a href="bookmark://Intro">b</a></p>`,
			want:  `<p><a href="#Intro">b</a></p>`,
		},
		{
			name:  "local file link with fragment",
			input: `<p><a href="file:///C:/doc.htm#_Toc1">t</a></p>`,
			want:  `<p><a href="#_Toc1">t</a></p>`,
		},
		{
			name:    "missing href",
			input:   `<p><a>x</a></p>`,
			want:    `<p>x</p>`,
			warning: "Link missing href; unwrapped <a>.",
		},
		{
			name:    "image values",
			input:   `<p><img src="https://x/y.png" class="Screenshot big" width="10" height="abc" style="s"></p>`,
			want:    `<p><img src="https://x/y.png" class="screenshot" width="10"/></p>`,
			warning: "Removed invalid height from <img>.",
		},
		{
			name:    "image without src",
			input:   `<p><img alt="x"></p>`,
			want:    `<p><br/></p>`,
			warning: "Image missing src; removed <img>.",
		},
		{
			name:  "image with script src",
			input: `<p><img src="javascript:x">t</p>`,
			want:  `<p>t</p>`,
		},
		{
			name:  "data image",
			input: `<p><img src="data:image/png;base64,AAAA"></p>`,
			want:  `<p><img src="data:image/png;base64,AAAA"/></p>`,
		},
		{
			name:  "span class reduced and bare span unwrapped",
			input: `<p><span class="Variable extra">v</span><span style="x">w</span></p>`,
			want:  `<p><span class="variable">v</span>w</p>`,
		},
		{
			name:    "ambiguous callout",
			input:   `<div class="callout note warning"><p>x</p></div>`,
			want:    `<p>x</p>`,
			warning: "Invalid callout class on <div>; unwrapped callout.",
		},
		{
			name:  "callout class canonicalized",
			input: `<div class="Callout NOTE"><p>x</p></div>`,
			want:  `<div class="callout note"><p>x</p></div>`,
		},
		{
			name:  "plain div loses class",
			input: `<div class="box"><p>x</p></div>`,
			want:  `<div><p>x</p></div>`,
		},
		{
			name:  "pre flattened",
			input: `<pre spellcheck="FALSE"><b>a</b><br>b</pre><pre spellcheck="true">x</pre>`,
			want:  "<pre spellcheck=\"false\">a\nb</pre><pre>x</pre>",
		},
		{
			name:    "cell spans",
			input:   `<table><tr><td colspan="2" rowspan="0">a</td></tr></table>`,
			want:    `<table><tr><td colspan="2">a</td></tr></table>`,
			warning: "Removed invalid rowspan from <td>.",
		},
		{
			name:  "ordered list attributes",
			input: `<ol type="1" start="1"><li>a</li></ol><ol type="x" start="3"><li>b</li></ol>`,
			want:  `<ol><li>a</li></ol><ol start="3"><li>b</li></ol>`,
		},
		{
			name:  "blank paragraphs",
			input: `<p>&nbsp;</p><p><span id="m"></span></p>`,
			want:  `<p><br/></p><p><span id="m"></span></p>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, warnings := enforce(tt.input)
			assert.Equal(t, tt.want, got)
			if tt.warning != "" {
				assert.Contains(t, warnings, tt.warning)
			}

			again, _ := enforce(got)
			assert.Equal(t, got, again)
		})
	}
}

func TestParserRowGroupsAreSilent(t *testing.T) {
	_, warnings := enforce(`<table><tr><td>a</td></tr></table>`)
	assert.Empty(t, warnings)
}

func TestEnforcerWarningsAreDeduplicated(t *testing.T) {
	_, warnings := enforce(`<p style="a">1</p><p style="b">2</p>`)
	assert.Equal(t, []string{"Removed forbidden attribute style from <p>."}, warnings)
}
