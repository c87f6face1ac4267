package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.htm")
	require.NoError(t, os.WriteFile(path, []byte("<p>x</p>"), 0o644))

	src, err := New().Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, src.Name)
	assert.Equal(t, "<p>x</p>", src.Body)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := New().Load(context.Background(), filepath.Join(t.TempDir(), "nope.html"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(errors.Cause(err)))
}

func TestLoadStdin(t *testing.T) {
	src, err := New().WithStdin(strings.NewReader("<p>in</p>")).Load(context.Background(), "-")
	require.NoError(t, err)
	assert.Equal(t, "stdin", src.Name)
	assert.Equal(t, "<p>in</p>", src.Body)
}

func TestLoadURL(t *testing.T) {
	var agent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.UserAgent()
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("<h1>hi</h1>"))
	}))
	defer srv.Close()

	src, err := New().Load(context.Background(), srv.URL+"/page")
	require.NoError(t, err)
	assert.Equal(t, "<h1>hi</h1>", src.Body)
	assert.Equal(t, srv.URL+"/page", src.Name)
	assert.Equal(t, defaultUserAgent, agent)

	_, err = New().Load(context.Background(), srv.URL+"/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("HTTPS://example.com"))
	assert.True(t, IsURL("http://x"))
	assert.False(t, IsURL("docs/http.html"))
	assert.False(t, IsURL("-"))
}
