package output

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"guide.htm", "guide"},
		{"/tmp/in/My Guide.html", "My_Guide"},
		{"stdin", "stdin"},
		{"https://example.com", "example_com"},
		{"https://example.com/docs/intro.html", "example_com_docs_intro"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BaseName(tt.in), tt.in)
	}
}

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	w, err := New(dir, nil)
	require.NoError(t, err)
	assert.False(t, w.ToStream())

	path, err := w.Write("in/guide.htm", []byte("<p>x</p>"), ".html")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "guide.html"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<p>x</p>", string(data))
}

func TestWriteTree(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, nil)
	require.NoError(t, err)

	root := filepath.Join("src", "docs")
	path, err := w.WriteTree(filepath.Join(root, "a", "b.htm"), root, []byte("b"), ".md")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a", "b.md"), path)

	path, err = w.WriteTree("https://site.com/docs/intro", "https://site.com", []byte("i"), ".md")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "docs", "intro.md"), path)

	path, err = w.WriteTree("https://site.com/", "https://site.com", []byte("i"), ".md")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "index.md"), path)
}

func TestWriteToStream(t *testing.T) {
	var buf bytes.Buffer
	w, err := New("", &buf)
	require.NoError(t, err)
	assert.True(t, w.ToStream())

	path, err := w.Write("guide.htm", []byte("one\n"), ".html")
	require.NoError(t, err)
	assert.Equal(t, "-", path)
	_, err = w.WriteTree("a/b.htm", "a", []byte("two\n"), ".html")
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n", buf.String())
}
