package resolver

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/trackd/ModuleFast/registry"
	"github.com/trackd/ModuleFast/spec"
	"github.com/trackd/ModuleFast/version"
)

// maxPageFetchConcurrency bounds the page-scan path's fan-out, mirroring the
// registry transport's own per-origin connection cap.
const maxPageFetchConcurrency = 16

// selectVersion implements §4.5's inlined-fast-path / page-scan-path
// selection: it prefers a match among already-materialised leaves and only
// fetches hyperlinked pages when no inlined leaf satisfies s.
func (r *Resolver) selectVersion(ctx context.Context, s spec.Spec, idx registry.Index) (registry.CatalogEntry, bool, error) {
	var inlined []registry.Leaf
	for _, p := range idx.Pages {
		if p.Inlined {
			inlined = append(inlined, p.Leaves...)
		}
	}
	if entry, ok, err := highestMatching(s, inlined, r.opts.PreRelease); err != nil || ok {
		return entry, ok, err
	}

	var candidates []registry.Page
	for _, p := range idx.Pages {
		if !p.Inlined && pageMayContain(s, p) {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return registry.CatalogEntry{}, false, nil
	}

	fetched := make([]registry.Page, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxPageFetchConcurrency)
	for i, p := range candidates {
		g.Go(func() error {
			page, err := r.client.FetchRegistrationPage(gctx, p.ID)
			if err != nil {
				return err
			}
			fetched[i] = page
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return registry.CatalogEntry{}, false, err
	}

	var leaves []registry.Leaf
	for _, p := range fetched {
		leaves = append(leaves, p.Leaves...)
	}
	return highestMatching(s, leaves, r.opts.PreRelease)
}

// highestMatching returns the catalog entry with the highest version among
// leaves that satisfies s, optionally excluding pre-release versions.
func highestMatching(s spec.Spec, leaves []registry.Leaf, preRelease bool) (registry.CatalogEntry, bool, error) {
	var (
		best    registry.CatalogEntry
		bestVer version.SemVer
		found   bool
	)
	for _, leaf := range leaves {
		v, err := version.ParseEither(leaf.CatalogEntry.Version)
		if err != nil {
			return registry.CatalogEntry{}, false, err
		}
		if !preRelease && isPreReleaseVersionString(leaf.CatalogEntry.Version) {
			continue
		}
		if !s.Matches(v) {
			continue
		}
		if found && !bestVer.Less(v) {
			continue
		}
		best, bestVer, found = leaf.CatalogEntry, v, true
	}
	return best, found, nil
}

// isPreReleaseVersionString reports whether the wire version string itself
// carries a genuine SemVer pre-release label. It deliberately does not
// inspect the parsed SemVer's PreRelease field: ToSemVer (§2) encodes a
// classical four-part revision as a synthetic zero-padded pre-release label
// with a HASREVISION.SYSTEMVERSION build tag, so a perfectly ordinary
// revision-bearing classical version such as "1.2.3.4" would otherwise be
// misclassified as pre-release and hidden unless -prerelease is set.
func isPreReleaseVersionString(raw string) bool {
	return strings.Contains(raw, "-")
}

// pageMayContain implements the page selection predicate of §4.5.1.
func pageMayContain(s spec.Spec, p registry.Page) bool {
	if s.Required() {
		v := s.Min
		return !v.Less(p.Lower) && !p.Upper.Less(v)
	}
	lo, hi := s.Min, s.Max
	subsumes := !p.Lower.Less(lo) && !hi.Less(p.Upper)
	lowerInside := !lo.Less(p.Lower) && !p.Upper.Less(lo)
	upperInside := !hi.Less(p.Lower) && !p.Upper.Less(hi)
	return subsumes || lowerInside || upperInside
}
