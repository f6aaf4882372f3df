package installer

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackd/ModuleFast/spec"
	"github.com/trackd/ModuleFast/version"
)

// fakeOpener serves archives from an in-memory map, keyed by URI, and can
// be told to fail a given URI to exercise the installer's failure path.
type fakeOpener struct {
	archives map[string][]byte
	failURI  string
}

func (f *fakeOpener) OpenArchiveStream(_ context.Context, uri string) (io.ReadCloser, error) {
	if uri == f.failURI {
		return nil, errors.New("simulated transport failure")
	}
	data, ok := f.archives[uri]
	if !ok {
		return nil, errors.New("no such archive")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func requiredSpec(t *testing.T, name, ver, downloadURI string) spec.Spec {
	t.Helper()
	v, err := version.ParseEither(ver)
	require.NoError(t, err)
	s, err := spec.New(name, uuid.Nil, v, v)
	require.NoError(t, err)
	u, err := url.Parse(downloadURI)
	require.NoError(t, err)
	s.DownloadURI = u
	return s
}

func TestInstallPlacesManifest(t *testing.T) {
	destDir := t.TempDir()
	cacheDir := t.TempDir()

	archive := buildZip(t, map[string]string{"Foo.psd1": "@{ModuleVersion='1.2.3'}"})
	opener := &fakeOpener{archives: map[string][]byte{"https://example/foo.1.2.3.nupkg": archive}}

	plan := spec.NewPlan()
	plan.Add(requiredSpec(t, "Foo", "1.2.3", "https://example/foo.1.2.3.nupkg"))

	in := New(nil, destDir, cacheDir)
	in.client = opener

	err := in.Install(context.Background(), plan)
	require.NoError(t, err)

	manifest := filepath.Join(destDir, "Foo", "1.2.3", "Foo.psd1")
	content, err := os.ReadFile(manifest)
	require.NoError(t, err)
	assert.Contains(t, string(content), "1.2.3")

	_, err = os.Stat(filepath.Join(cacheDir, "Foo.1.2.3.nupkg"))
	assert.NoError(t, err)
}

func TestInstallMultipleModules(t *testing.T) {
	destDir := t.TempDir()
	cacheDir := t.TempDir()

	opener := &fakeOpener{archives: map[string][]byte{
		"https://example/foo.1.0.0.nupkg": buildZip(t, map[string]string{"Foo.psd1": "a"}),
		"https://example/bar.2.0.0.nupkg": buildZip(t, map[string]string{"Bar.psd1": "b"}),
	}}

	plan := spec.NewPlan()
	plan.Add(requiredSpec(t, "Foo", "1.0.0", "https://example/foo.1.0.0.nupkg"))
	plan.Add(requiredSpec(t, "Bar", "2.0.0", "https://example/bar.2.0.0.nupkg"))

	in := New(nil, destDir, cacheDir)
	in.client = opener

	require.NoError(t, in.Install(context.Background(), plan))

	_, err := os.Stat(filepath.Join(destDir, "Foo", "1.0.0", "Foo.psd1"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(destDir, "Bar", "2.0.0", "Bar.psd1"))
	assert.NoError(t, err)
}

func TestInstallDownloadFailureFailsWholeRun(t *testing.T) {
	destDir := t.TempDir()
	cacheDir := t.TempDir()

	opener := &fakeOpener{
		archives: map[string][]byte{"https://example/foo.1.0.0.nupkg": buildZip(t, map[string]string{"Foo.psd1": "a"})},
		failURI:  "https://example/bar.2.0.0.nupkg",
	}

	plan := spec.NewPlan()
	plan.Add(requiredSpec(t, "Foo", "1.0.0", "https://example/foo.1.0.0.nupkg"))
	plan.Add(requiredSpec(t, "Bar", "2.0.0", "https://example/bar.2.0.0.nupkg"))

	in := New(nil, destDir, cacheDir)
	in.client = opener

	err := in.Install(context.Background(), plan)
	assert.Error(t, err)
}

func TestExtractZipOverwritesExisting(t *testing.T) {
	destDir := t.TempDir()
	require.NoError(t, os.MkdirAll(destDir, 0o755))
	stale := filepath.Join(destDir, "Foo.psd1")
	require.NoError(t, os.WriteFile(stale, []byte("stale"), 0o644))

	cacheDir := t.TempDir()
	archivePath := filepath.Join(cacheDir, "foo.zip")
	require.NoError(t, os.WriteFile(archivePath, buildZip(t, map[string]string{"Foo.psd1": "fresh"}), 0o644))

	require.NoError(t, extractZip(archivePath, destDir))

	content, err := os.ReadFile(stale)
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(content))
}

func TestExtractZipRejectsPathTraversal(t *testing.T) {
	destDir := t.TempDir()
	cacheDir := t.TempDir()
	archivePath := filepath.Join(cacheDir, "evil.zip")
	require.NoError(t, os.WriteFile(archivePath, buildZip(t, map[string]string{"../../evil.txt": "pwned"}), 0o644))

	err := extractZip(archivePath, destDir)
	assert.Error(t, err)
}
