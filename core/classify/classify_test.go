package classify

import (
	"testing"

	"github.com/gaurav-prasanna/canonhtml/core"
	"github.com/gaurav-prasanna/canonhtml/core/tree"
	"github.com/stretchr/testify/assert"
)

func apply(stage core.Stage, markup string) (string, []string) {
	ctx := core.NewParseContext(tree.Parse(markup), core.Ingest)
	stage.Apply(ctx)
	return tree.Render(ctx.Root), ctx.Warnings.List()
}

type stageCase struct {
	name  string
	input string
	want  string
}

func runCases(t *testing.T, stage func() core.Stage, tests []stageCase) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := apply(stage(), tt.input)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWrappers(t *testing.T) {
	runCases(t, func() core.Stage { return NewWrappers() }, []stageCase{
		{
			name:  "section root and online wrappers",
			input: `<div class="WordSection1"><div class="OutlineElement Ltr"><p>a</p></div><p>b</p></div>`,
			want:  `<p>a</p><p>b</p>`,
		},
		{
			name:  "bordered paragraph container",
			input: `<div style="mso-element:para-border-div;border:solid"><p>&nbsp;</p><p>x</p></div><p>y</p>`,
			want:  `<p>x</p><p>y</p>`,
		},
		{
			name:  "lone callout candidate keeps its div",
			input: `<div style="border-left:1px solid red"><p>a</p></div>`,
			want:  `<div style="border-left:1px solid red"><p>a</p></div>`,
		},
	})
}

func TestHeadings(t *testing.T) {
	runCases(t, func() core.Stage { return NewHeadings() }, []stageCase{
		{
			name:  "aria heading keeps only id",
			input: `<p role="heading" aria-level="2" id="x" class="c">Title <em>here</em></p>`,
			want:  `<h2 id="x">Title <em>here</em></h2>`,
		},
		{
			name:  "word heading style",
			input: `<p class="MsoHeading3">T</p>`,
			want:  `<h3>T</h3>`,
		},
		{
			name:  "out of range level is left alone",
			input: `<p role="heading" aria-level="9">T</p>`,
			want:  `<p role="heading" aria-level="9">T</p>`,
		},
	})
}

func TestHeadingLevel(t *testing.T) {
	assert.Equal(t, 4, HeadingLevel(tree.Parse(`<div role="Heading" aria-level=" 4 ">x</div>`).FirstChild))
	assert.Equal(t, 0, HeadingLevel(tree.Parse(`<p class="MsoNormal">x</p>`).FirstChild))
}

func TestBookmarks(t *testing.T) {
	runCases(t, func() core.Stage { return NewBookmarks() }, []stageCase{
		{
			name:  "leading bookmark becomes heading id",
			input: `<h2><a name="intro"></a>Intro</h2>`,
			want:  `<h2 id="intro">Intro</h2>`,
		},
		{
			name:  "inline bookmark becomes marker",
			input: `<p>See <a name="here"></a>this</p>`,
			want:  `<p>See <span id="here"></span>this</p>`,
		},
		{
			name:  "heading with id keeps it",
			input: `<h2 id="keep"><a name="x"></a>T</h2>`,
			want:  `<h2 id="keep"><span id="x"></span>T</h2>`,
		},
		{
			name:  "links are untouched",
			input: `<p><a href="#x" name="y">go</a></p>`,
			want:  `<p><a href="#x" name="y">go</a></p>`,
		},
	})
}

func TestInline(t *testing.T) {
	runCases(t, func() core.Stage { return NewInline() }, []stageCase{
		{
			name:  "user input class",
			input: `<p><span class="UserInput" style="color:red">cmd</span></p>`,
			want:  `<p><span class="user-input">cmd</span></p>`,
		},
		{
			name:  "styled span nests formatting",
			input: `<p><span style="font-weight:700;font-style:italic">x</span></p>`,
			want:  `<p><span><strong><em>x</em></strong></span></p>`,
		},
		{
			name:  "underline and superscript",
			input: `<p><span style="text-decoration:underline;vertical-align:super">x</span></p>`,
			want:  `<p><span><u><sup>x</sup></u></span></p>`,
		},
		{
			name:  "normal weight bold wrapper",
			input: `<p><b style="font-weight:normal">a</b></p>`,
			want:  `<p>a</p>`,
		},
		{
			name:  "trailing space moves out of bold",
			input: `<p><b>bold </b>next</p>`,
			want:  `<p><b>bold</b> next</p>`,
		},
		{
			name:  "space before following whitespace stays",
			input: `<p><em>a </em> b and <a href="#x">link </a></p>`,
			want:  `<p><em>a </em> b and <a href="#x">link </a></p>`,
		},
		{
			name:  "plain span untouched",
			input: `<p><span style="color:red">x</span></p>`,
			want:  `<p><span style="color:red">x</span></p>`,
		},
	})
}

func TestInlineCharStyle(t *testing.T) {
	got, _ := apply(NewInline(), `<p><span data-ccp-charstyle="User Input Variable">v</span></p>`)
	assert.Contains(t, got, `class="variable"`)
}

func TestCalloutDetection(t *testing.T) {
	runCases(t, func() core.Stage { return NewCallouts() }, []stageCase{
		{
			name:  "block style paragraph",
			input: `<p class="NoteBlock">Hello</p>`,
			want:  `<div class="callout note"><p class="NoteBlock">Hello</p></div>`,
		},
		{
			name:  "hex color pair",
			input: `<div style="border-left: 4px solid #FF9800; background-color: #FFF3CD">Careful</div>`,
			want:  `<div class="callout warning"><p>Careful</p></div>`,
		},
		{
			name:  "rgb color pair",
			input: `<div style="border-left:3px solid rgb(0, 115, 230);background:rgb(249,249,249)"><p>x</p></div>`,
			want:  `<div class="callout note"><p>x</p></div>`,
		},
		{
			name:  "short hex example pair",
			input: `<div style="border-left:2px solid #aaa;background:#f0f0f0"><p>x</p></div>`,
			want:  `<div class="callout example"><p>x</p></div>`,
		},
		{
			name:  "border alone is not a callout",
			input: `<div style="border-left:4px solid #ff9800"><p>x</p></div>`,
			want:  `<div style="border-left:4px solid #ff9800"><p>x</p></div>`,
		},
		{
			name:  "paragraph style",
			input: `<p data-ccp-parastyle="Example Block"><span>Ex</span></p>`,
			want:  `<div class="callout example"><p><span>Ex</span></p></div>`,
		},
		{
			name:  "no nesting inside an existing callout",
			input: `<div class="callout note"><p class="WarnBlock">x</p></div>`,
			want:  `<div class="callout note"><p class="WarnBlock">x</p></div>`,
		},
		{
			name:  "neighbours stay separate",
			input: `<p class="NoteBlock">a</p><p class="NoteBlock">b</p>`,
			want:  `<div class="callout note"><p class="NoteBlock">a</p></div><div class="callout note"><p class="NoteBlock">b</p></div>`,
		},
	})
}

func TestCalloutNormalization(t *testing.T) {
	runCases(t, func() core.Stage { return NewCalloutNormalizer() }, []stageCase{
		{
			name:  "stray label moves into first paragraph",
			input: `<div class="callout note"><strong>Note</strong><p>Read this.</p></div>`,
			want:  "<div class=\"callout note\"><p><strong>Note:\u00a0</strong>Read this.</p></div>",
		},
		{
			name:  "loose label keeps its trailing text",
			input: `<div class="callout note"><strong>Note:</strong> loose text<p>para</p></div>`,
			want:  "<div class=\"callout note\"><p><strong>Note:\u00a0</strong>loose text</p><p>para</p></div>",
		},
		{
			name:  "label paragraph merges into the next paragraph",
			input: `<div class="callout example"><p><b>Example</b></p><p>Run it.</p><p>Done.</p></div>`,
			want:  "<div class=\"callout example\"><p><b>Example:\u00a0</b>Run it.</p><p>Done.</p></div>",
		},
		{
			name:  "label text is canonicalized",
			input: `<div class="callout example"><p><b>example</b>   text</p></div>`,
			want:  "<div class=\"callout example\"><p><b>Example:\u00a0</b>text</p></div>",
		},
		{
			name:  "warning labels are left alone",
			input: `<div class="callout warning"><p><strong>Warning</strong> x</p></div>`,
			want:  `<div class="callout warning"><p><strong>Warning</strong> x</p></div>`,
		},
		{
			name:  "nested blocks are flattened and hoisted",
			input: `<div class="callout warning"><h2>Title</h2><div><p>a</p></div><blockquote><p>q</p></blockquote><hr>text</div>`,
			want:  `<div class="callout warning"><p>Title</p><p>a</p><p>q</p><p>text</p></div><hr/>`,
		},
	})
}

func TestCalloutHoistWarning(t *testing.T) {
	_, warnings := apply(NewCalloutNormalizer(), `<div class="callout note"><p>a</p><table><tr><td>x</td></tr></table></div>`)
	assert.Equal(t, []string{"Moved <table> out of callout."}, warnings)
}

func TestTables(t *testing.T) {
	runCases(t, func() core.Stage { return NewTables() }, []stageCase{
		{
			name: "structure is reduced",
			input: `<table border="1"><caption>Cap</caption><colgroup><col></colgroup>` +
				`<thead><tr class="h"><th style="x" colspan="2">H</th></tr></thead>` +
				`<tbody><tr><td rowspan="1" width="5">a<b>b</b></td><td><p>p</p></td></tr></tbody></table>`,
			want: `<p>Cap</p><table><tr><th colspan="2"><p>H</p></th></tr>` +
				`<tr><td rowspan="1"><p>a<b>b</b></p></td><td><p>p</p></td></tr></table>`,
		},
		{
			name:  "interleaved cell content keeps order",
			input: `<table><tr><td>a<p>b</p>c</td></tr></table>`,
			want:  `<table><tr><td><p>a</p><p>b</p><p>c</p></td></tr></table>`,
		},
		{
			name:  "empty table is removed",
			input: `<table></table><p>x</p>`,
			want:  `<p>x</p>`,
		},
	})
}
