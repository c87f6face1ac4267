package pipeline

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/gaurav-prasanna/canonhtml/core/contract"
	"github.com/gaurav-prasanna/canonhtml/core/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wordExport = `<html xmlns:o="urn:schemas-microsoft-com:office:office">
<head><meta charset="utf-8"><title>Guide</title><style>p.MsoNormal{margin:0}</style></head>
<body lang=EN-US>
<div class=WordSection1>
<h1><a name="_Toc1"></a>Setup guide</h1>
<p class=MsoNormal>Read <a href="#Install Steps">the steps</a> and <a href="#_Toc1">the top</a>.<o:p></o:p></p>
<h2>Install steps</h2>
<p class=MsoListParagraphCxSpFirst style='margin-left:.5in;text-indent:-.25in;mso-list:l0 level1 lfo1'><span style='mso-list:Ignore'>1.<span style='font:7.0pt "Times New Roman"'>&nbsp;&nbsp;&nbsp; </span></span>Download the <b>installer</b>.</p>
<p class=MsoListParagraphCxSpMiddle style='margin-left:1.0in;text-indent:-.25in;mso-list:l0 level2 lfo1'><span style='mso-list:Ignore'>a.<span style='font:7.0pt "Times New Roman"'>&nbsp;&nbsp;&nbsp; </span></span>Check the checksum.</p>
<p class=MsoListParagraphCxSpLast style='margin-left:.5in;text-indent:-.25in;mso-list:l0 level1 lfo1'><span style='mso-list:Ignore'>2.<span style='font:7.0pt "Times New Roman"'>&nbsp;&nbsp;&nbsp; </span></span>Run it.</p>
<p class=WarnBlock><b>Warning:</b> Close other programs first.</p>
<table class=MsoTableGrid border=1 cellpadding=0 style='border-collapse:collapse'>
<tr><td width=200 valign=top><p class=MsoNormal>Option</p></td><td><p class=MsoNormal>Value</p></td></tr>
</table>
<p class=MsoNormal><a href="javascript:alert(1)">bad</a> and <a href="https://example.com">good</a><script>alert(2)</script></p>
<p class=MsoNormal id="dup">One</p>
<p class=MsoNormal id="dup">Two</p>
</div>
</body></html>`

const webExport = `<div class="OutlineElement Ltr"><p class="Paragraph" role="heading" aria-level="2"><span class="TextRun">Overview</span></p></div>
<div class="ListContainerWrapper"><ul><li data-listid="4" data-aria-level="1"><p>First</p></li></ul></div>
<div class="ListContainerWrapper"><ul><li data-listid="4" data-aria-level="2"><p>Nested</p></li></ul></div>
<div class="OutlineElement Ltr"><p class="Paragraph"><span style="font-weight:bold">Done</span> <span style="font-style:italic">now</span></p></div>`

var fixtures = map[string]string{
	"word export": wordExport,
	"web export":  webExport,
	"bare text":   `plain text with <unknown>tags</unknown> & entities`,
	"empty":       ``,
}

// assertContract checks every element, attribute and class token of markup
// against p.
func assertContract(t *testing.T, p *contract.Policy, markup string) {
	t.Helper()
	for _, el := range tree.Elements(tree.Parse(markup)) {
		if el.Data == "tbody" {
			// inserted by the parser on re-reading
			continue
		}
		if !assert.True(t, p.AllowsTag(el.Data), "tag <%s>", el.Data) {
			continue
		}
		for _, a := range el.Attr {
			assert.True(t, p.AllowsAttr(el.Data, a.Key), "attribute %s on <%s>", a.Key, el.Data)
			if a.Key != "class" {
				continue
			}
			for _, token := range strings.Fields(a.Val) {
				assert.Contains(t, p.ClassTokens(el.Data), token, "class on <%s>", el.Data)
			}
		}
	}
}

func TestCleanProperties(t *testing.T) {
	for name, raw := range fixtures {
		t.Run(name, func(t *testing.T) {
			first := Clean(raw)
			second := Clean(raw)
			assert.Equal(t, first, second, "deterministic")

			assertContract(t, contract.Default(), first.HTML)
			assert.Empty(t, contract.Default().Verify(first.HTML))

			again := SanitizeToContract(first.HTML)
			assert.Equal(t, first.HTML, again.HTML)
			assert.Empty(t, again.Warnings)
			assert.Equal(t, again.HTML, SanitizeToContract(again.HTML).HTML)
		})
	}
}

func TestCleanWordExport(t *testing.T) {
	res := Clean(wordExport)
	out := res.HTML

	assert.Contains(t, out, `<h1 id="_Toc1">Setup guide</h1>`)
	assert.Contains(t, out, `<h2 id="Install_Steps">Install steps</h2>`)
	assert.Contains(t, out, `<a href="#Install_Steps">the steps</a>`)
	assert.Contains(t, out,
		`<ol><li>Download the <strong>installer</strong>.<ol type="a"><li>Check the checksum.</li></ol></li><li>Run it.</li></ol>`)
	assert.Contains(t, out, `<div class="callout warning">`)
	assert.Contains(t, out, `<table><tr><td><p>Option</p></td><td><p>Value</p></td></tr></table>`)
	assert.Contains(t, out, `<p>bad and <a href="https://example.com" rel="noopener noreferrer" target="_blank">good</a></p>`)
	assert.Contains(t, out, `<p id="dup">One</p>`)
	assert.Contains(t, out, `<p id="dup-2">Two</p>`)
	assert.NotContains(t, out, "alert")
	assert.NotContains(t, out, "WordSection1")

	assert.Contains(t, res.Warnings, `Removed link with disallowed scheme "javascript"; unwrapped <a>.`)
}

func TestCleanWebExport(t *testing.T) {
	out := Clean(webExport).HTML

	assert.Contains(t, out, `<h2>Overview</h2>`)
	assert.Contains(t, out, `<ul><li>First<ul><li>Nested</li></ul></li></ul>`)
	assert.Contains(t, out, `<strong>Done</strong> <em>now</em>`)
}

func TestListFidelity(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "explicit levels",
			input: `<p data-level="1">A</p><p data-level="2">B</p><p data-level="1">C</p>`,
			want:  `<ol><li>A<ol><li>B</li></ol></li><li>C</li></ol>`,
		},
		{
			name:  "rank nesting pops back out",
			input: `<p>1. One</p><p>a. Sub</p><p>2. Two</p>`,
			want:  `<ol><li>One<ol type="a"><li>Sub</li></ol></li><li>Two</li></ol>`,
		},
		{
			name:  "marker stripped",
			input: `<p>1. Hello</p>`,
			want:  `<ol><li>Hello</li></ol>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.input).HTML)
		})
	}
}

func TestCalloutRoundTrip(t *testing.T) {
	out := Clean(`<p class="WarnBlock">Careful</p>`).HTML
	assert.Equal(t, `<div class="callout warning"><p>Careful</p></div>`, out)
	assert.Equal(t, out, SanitizeToContract(out).HTML)
}

func TestLinkSchemeGate(t *testing.T) {
	res := SanitizeToContract(`<p><a href="javascript:alert(1)">x</a> <a href="https://x">y</a></p>`)
	assert.Equal(t, `<p>x <a href="https://x" rel="noopener noreferrer" target="_blank">y</a></p>`, res.HTML)
	assert.Len(t, res.Warnings, 1)
}

func TestIDUniqueness(t *testing.T) {
	res := SanitizeToContract(`<h2 id="x">A</h2><p id=" x ">B</p>`)
	assert.Equal(t, `<h2 id="x">A</h2><p id="x-2">B</p>`, res.HTML)
}

func TestSanitizeDoesNotInferStructure(t *testing.T) {
	in := `<p>1. Not a list here</p><p class="WarnBlock">Plain</p>`
	assert.Equal(t, `<p>1. Not a list here</p><p>Plain</p>`, SanitizeToContract(in).HTML)
}

func TestSanitizeRewritesFragmentLinks(t *testing.T) {
	res := SanitizeToContract(`<h2 id="a b">A</h2><p><a href="#a b">to a</a></p>`)
	assert.Equal(t, `<h2 id="a_b">A</h2><p><a href="#a_b">to a</a></p>`, res.HTML)
}

func TestCleanKeepsDocumentOrder(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "loose callout label",
			input: `<div class="callout note"><strong>Note:</strong> loose text<p>para</p></div>`,
			want:  "<div class=\"callout note\"><p><strong>Note:\u00a0</strong>loose text</p><p>para</p></div>",
		},
		{
			name:  "bullet list ending in a colon",
			input: `<p>&#8226; Items:</p><p>Explanation.</p><p>&#8226; Next</p>`,
			want:  `<ul><li>Items:</li></ul><p>Explanation.</p><ul><li>Next</li></ul>`,
		},
		{
			name:  "trailing space inside bold",
			input: `<p><b>bold </b>next</p>`,
			want:  `<p><strong>bold</strong> next</p>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.input).HTML)
		})
	}
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	Clean(`<p>x</p>`, WithLogger(logger))
	for _, stage := range []string{"strip", "callouts", "lists", "enforce", "list-cleanup", "ids"} {
		assert.Contains(t, buf.String(), "stage="+stage)
	}
	assert.Contains(t, buf.String(), "direction=ingest")
}

func TestWithPolicy(t *testing.T) {
	spec := contract.Canonical
	spec.Tags = nil
	for _, r := range contract.Canonical.Tags {
		if r.Tag != "sub" {
			spec.Tags = append(spec.Tags, r)
		}
	}
	p, err := contract.Compile(spec)
	require.NoError(t, err)

	res := SanitizeToContract(`<p>H<sub>2</sub>O</p>`, WithPolicy(p))
	assert.Equal(t, `<p>H2O</p>`, res.HTML)
	assert.Equal(t, []string{"Removed unsupported <sub> (unwrapped)."}, res.Warnings)

	assert.Equal(t, `<p>H<sub>2</sub>O</p>`, SanitizeToContract(`<p>H<sub>2</sub>O</p>`).HTML)
}

func TestConcurrentCalls(t *testing.T) {
	want := Clean(wordExport)

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Clean(wordExport).HTML
		}(i)
	}
	wg.Wait()
	for _, got := range results {
		assert.Equal(t, want.HTML, got)
	}
}
