package installer

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// extractZip extracts the zip archive at cachePath into destDir, creating
// destDir (and any parents) if needed, and overwriting files already
// present there.
func extractZip(cachePath, destDir string) error {
	r, err := zip.OpenReader(cachePath)
	if err != nil {
		return fmt.Errorf("opening archive %s: %w", cachePath, err)
	}
	defer r.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", destDir, err)
	}

	for _, f := range r.File {
		if err := extractEntry(f, destDir); err != nil {
			return fmt.Errorf("extracting %s from %s: %w", f.Name, cachePath, err)
		}
	}
	return nil
}

// extractEntry writes a single zip entry under destDir, rejecting any entry
// whose name would escape destDir via ".." path segments or an absolute
// path (a "zip slip").
func extractEntry(f *zip.File, destDir string) error {
	target := filepath.Join(destDir, f.Name)
	if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) && target != filepath.Clean(destDir) {
		return fmt.Errorf("entry %q escapes destination directory", f.Name)
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode().Perm()|0o600)
	if err != nil {
		return err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return err
	}
	return nil
}
