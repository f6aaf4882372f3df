// Package installer implements ModuleFast's download+extract pipeline: it
// consumes a resolved plan and materialises each module under a destination
// directory, caching downloaded archives along the way.
package installer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/trackd/ModuleFast/internal/log"
	"github.com/trackd/ModuleFast/registry"
	"github.com/trackd/ModuleFast/spec"
)

// archiveOpener is the subset of *registry.Client the installer depends on.
type archiveOpener interface {
	OpenArchiveStream(ctx context.Context, archiveURI string) (io.ReadCloser, error)
}

// maxConcurrentDownloads bounds the Open/Download stage's fan-out, separate
// from the extract worker pool so network and CPU-bound work scale
// independently.
const maxConcurrentDownloads = 8

// Installer drives the install pipeline described in §4.6: Open, Download,
// Extract, Join.
type Installer struct {
	client   archiveOpener
	destDir  string
	cacheDir string

	// extractWorkers sizes the extraction worker pool; 0 means runtime.NumCPU().
	extractWorkers int
}

// New constructs an Installer targeting destDir, caching archives under
// cacheDir.
func New(client *registry.Client, destDir, cacheDir string) *Installer {
	return &Installer{client: client, destDir: destDir, cacheDir: cacheDir}
}

type extractJob struct {
	cachePath string
	destDir   string
	name      string
	version   string
}

// Install downloads and extracts every member of plan. A single archive's
// download or extraction failure fails the whole install: already-extracted
// modules remain on disk and no rollback is attempted (§4.6).
func (in *Installer) Install(ctx context.Context, plan *spec.Plan) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	members := plan.All()
	if len(members) == 0 {
		return nil
	}

	workers := in.extractWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	extractCh := make(chan extractJob, len(members))
	errCh := make(chan error, len(members))

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for job := range extractCh {
				if ctx.Err() != nil {
					// Cancellation observed before this worker picked up the
					// job: no extraction starts after cancellation (I-2).
					continue
				}
				log.Debugf("installer: extracting %s %s", job.name, job.version)
				if err := extractZip(job.cachePath, job.destDir); err != nil {
					errCh <- fmt.Errorf("extracting %s %s: %w", job.name, job.version, err)
					cancel()
				}
			}
		}()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentDownloads)
	for _, r := range members {
		g.Go(func() error {
			if err := in.openAndDownload(gctx, r, extractCh); err != nil {
				cancel()
				return err
			}
			return nil
		})
	}
	downloadErr := g.Wait()
	close(extractCh)
	wg.Wait()
	close(errCh)

	var combined error
	if downloadErr != nil {
		combined = multierr.Append(combined, downloadErr)
	}
	for err := range errCh {
		combined = multierr.Append(combined, err)
	}
	return combined
}

// openAndDownload implements the Open and Download stages for a single plan
// member: request the archive stream, then copy it into the cache file.
// When it returns successfully, the extract job for r has been enqueued.
func (in *Installer) openAndDownload(ctx context.Context, r spec.Spec, extractCh chan<- extractJob) error {
	if r.DownloadURI == nil {
		return fmt.Errorf("plan member %s has no download URI", r.CanonicalString())
	}
	ver := r.Min.String()
	cachePath := filepath.Join(in.cacheDir, fmt.Sprintf("%s.%s.nupkg", r.Name, ver))

	stream, err := in.client.OpenArchiveStream(ctx, r.DownloadURI.String())
	if err != nil {
		return fmt.Errorf("opening archive for %s: %w", r.CanonicalString(), err)
	}
	defer stream.Close()

	if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err != nil {
		return fmt.Errorf("creating cache directory for %s: %w", r.CanonicalString(), err)
	}

	f, err := os.Create(cachePath)
	if err != nil {
		return fmt.Errorf("creating cache file %s: %w", cachePath, err)
	}
	if _, err := io.Copy(f, stream); err != nil {
		f.Close()
		return fmt.Errorf("downloading %s: %w", r.CanonicalString(), err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing cache file %s: %w", cachePath, err)
	}

	select {
	case extractCh <- extractJob{
		cachePath: cachePath,
		destDir:   filepath.Join(in.destDir, r.Name, ver),
		name:      r.Name,
		version:   ver,
	}:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}
