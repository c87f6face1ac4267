package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMarkdown(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "headings and inline",
			input: `<h2 id="a">Title</h2><p>Hello <strong>world</strong> and <em>you</em></p>`,
			want:  []string{"## Title", "Hello **world** and *you*"},
		},
		{
			name:  "warning callout",
			input: `<div class="callout warning"><p>Careful</p></div>`,
			want:  []string{"> **Warning:** Careful"},
		},
		{
			name:  "callout without paragraph",
			input: `<div class="callout example"><ul><li>x</li></ul></div>`,
			want:  []string{"> **Example:**", "> - x"},
		},
		{
			name:  "semantic spans",
			input: `<p>Type <span class="user-input">ls</span> in <span class="variable">dir</span></p>`,
			want:  []string{"Type `ls` in `dir`"},
		},
		{
			name:  "lists",
			input: `<ol><li>a</li><li>b</li></ol>`,
			want:  []string{"1. a", "2. b"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToMarkdown(tt.input)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, got, w)
			}
		})
	}
}

func TestToMarkdownKeepsExistingLabel(t *testing.T) {
	got, err := New().Normalize("<div class=\"callout note\"><p><strong>Note:\u00a0</strong>Read this</p></div>")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(got, "Note:"))
	assert.True(t, strings.HasPrefix(got, "> **Note:"))
}

func TestFromMarkdown(t *testing.T) {
	got, err := FromMarkdown("# Title\n\nSome *text* and ~~old~~.\n\n- a\n- b\n")
	require.NoError(t, err)

	assert.Contains(t, got, `<h1 id="title">Title</h1>`)
	assert.Contains(t, got, `<em>text</em>`)
	assert.Contains(t, got, `<del>old</del>`)
	assert.Contains(t, got, `<li>a</li>`)
}

func TestFromMarkdownPassesRawHTML(t *testing.T) {
	got, err := FromMarkdown("<p class=\"WarnBlock\">raw</p>\n")
	require.NoError(t, err)
	assert.Contains(t, got, `<p class="WarnBlock">raw</p>`)
}
