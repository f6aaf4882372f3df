package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackd/ModuleFast/internal/errs"
)

func TestBaseURL(t *testing.T) {
	base, err := baseURL("https://example.org/v3/index.json")
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/v3", base)

	base, err = baseURL("https://example.org/v3")
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/v3", base)
}

func TestFetchRegistrationIndexInlined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		switch r.URL.Path {
		case "/registration/foo/index.json":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"count": 1,
				"items": [{
					"@id": "https://example/page1",
					"lower": "1.0.0",
					"upper": "2.0.0",
					"items": [{
						"catalogEntry": {
							"id": "Foo",
							"version": "2.0.0",
							"dependencyGroups": [{"dependencies": [{"id": "Bar", "range": "[1.0,2.0)"}]}]
						},
						"packageContent": "https://example/foo.2.0.0.nupkg"
					}]
				}]
			}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New()
	idx, err := c.FetchRegistrationIndex(context.Background(), srv.URL+"/index.json", "foo")
	require.NoError(t, err)
	require.Len(t, idx.Pages, 1)
	assert.True(t, idx.Pages[0].Inlined)
	require.Len(t, idx.Pages[0].Leaves, 1)
	entry := idx.Pages[0].Leaves[0].CatalogEntry
	assert.Equal(t, "2.0.0", entry.Version)
	assert.Equal(t, "https://example/foo.2.0.0.nupkg", entry.PackageContent)
	require.Len(t, entry.Dependencies, 1)
	assert.Equal(t, "Bar", entry.Dependencies[0].ID)
	assert.Equal(t, "[1.0,2.0)", entry.Dependencies[0].Range)
}

func TestFetchRegistrationIndexNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New()
	_, err := c.FetchRegistrationIndex(context.Background(), srv.URL+"/index.json", "missing")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestFetchRegistrationIndexMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := New()
	_, err := c.FetchRegistrationIndex(context.Background(), srv.URL+"/index.json", "foo")
	assert.ErrorIs(t, err, errs.ErrInvalidRegistryResponse)
}

func TestFetchRegistrationPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"lower": "1.0.0", "upper": "1.5.0",
			"items": [{"catalogEntry": {"id": "Foo", "version": "1.0.0"}}]
		}`))
	}))
	defer srv.Close()

	c := New()
	p, err := c.FetchRegistrationPage(context.Background(), srv.URL+"/page1.json")
	require.NoError(t, err)
	assert.True(t, p.Inlined)
	require.Len(t, p.Leaves, 1)
	assert.Equal(t, "1.0.0", p.Leaves[0].CatalogEntry.Version)
}

func TestOpenArchiveStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("zip-bytes"))
	}))
	defer srv.Close()

	c := New()
	rc, err := c.OpenArchiveStream(context.Background(), srv.URL+"/a.nupkg")
	require.NoError(t, err)
	defer rc.Close()

	buf := make([]byte, 9)
	n, _ := rc.Read(buf)
	assert.Equal(t, "zip-bytes", string(buf[:n]))
}
