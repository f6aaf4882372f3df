// Package resolver implements ModuleFast's concurrent dependency planner: it
// drives the registry client across paginated registration indexes,
// consults the local scanner, and accumulates a deduplicated install plan.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"

	"github.com/google/uuid"

	"github.com/trackd/ModuleFast/internal/errs"
	"github.com/trackd/ModuleFast/internal/log"
	"github.com/trackd/ModuleFast/localscan"
	"github.com/trackd/ModuleFast/registry"
	"github.com/trackd/ModuleFast/spec"
	"github.com/trackd/ModuleFast/version"
)

// registryClient is the subset of *registry.Client the resolver depends on.
// Tests substitute a fixture implementation backed by httptest.
type registryClient interface {
	FetchRegistrationIndex(ctx context.Context, source, name string) (registry.Index, error)
	FetchRegistrationPage(ctx context.Context, pageURI string) (registry.Page, error)
}

// Options configures a Resolver.
type Options struct {
	Source      string
	SearchPaths []string
	PreRelease  bool
	Update      bool
}

// Resolver drives the resolve loop described in §4.5: it consumes a set of
// user specs and produces a plan of concrete, required specs with download
// URIs attached.
type Resolver struct {
	client registryClient
	opts   Options
}

// New constructs a Resolver backed by client.
func New(client *registry.Client, opts Options) *Resolver {
	return &Resolver{client: client, opts: opts}
}

// indexResult is what an in-flight index fetch goroutine reports back to
// the driver loop, tagged by module name rather than by requesting spec:
// §4.5.4 notes that concurrent requests for the same name are wasteful to
// issue twice, so the driver coalesces them into a single fetch shared by
// every spec currently waiting on that name (an "inflightByName" table, the
// resolver improvement the specification suggests as optional; this
// implementation always applies it).
type indexResult struct {
	name string
	idx  registry.Index
	err  error
}

// Resolve runs the driver loop over the seed specs and returns the
// resulting plan, or the first fatal error encountered.
func (r *Resolver) Resolve(ctx context.Context, seeds []spec.Spec) (*spec.Plan, error) {
	plan := spec.NewPlan()
	results := make(chan indexResult)
	waiters := make(map[string][]spec.Spec)
	inFlight := make(map[string]bool)
	pendingNames := 0

	enqueue := func(s spec.Spec) {
		if !r.opts.Update {
			if _, ok, _ := localscan.FindLocal(s, r.opts.SearchPaths); ok {
				log.Infof("resolver: %s satisfied locally, skipping", s.CanonicalString())
				return
			}
		}
		waiters[s.Name] = append(waiters[s.Name], s)
		if inFlight[s.Name] {
			return
		}
		inFlight[s.Name] = true
		pendingNames++
		go func(name string) {
			idx, err := r.client.FetchRegistrationIndex(ctx, r.opts.Source, name)
			results <- indexResult{name: name, idx: idx, err: err}
		}(s.Name)
	}

	for _, s := range seeds {
		enqueue(s)
	}

	for pendingNames > 0 {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", errs.ErrCancelled, ctx.Err())
		case res := <-results:
			pendingNames--
			ws := waiters[res.name]
			delete(waiters, res.name)
			delete(inFlight, res.name)
			sortWaiters(ws)

			for _, s := range ws {
				deps, err := r.handleCompletion(ctx, s, res, plan)
				if err != nil {
					return nil, err
				}
				for _, d := range deps {
					enqueue(d)
				}
			}
		}
	}
	return plan, nil
}

// sortWaiters orders specs sharing an index fetch so that required (exact)
// specs are processed before ranged ones: a required dependency is always
// at least as constraining as a range, so settling it first and letting the
// admission filter (§4.5.2) judge the ranged ones against it makes the
// outcome independent of the order waiters happened to queue in.
func sortWaiters(ws []spec.Spec) {
	sort.SliceStable(ws, func(i, j int) bool {
		if ws[i].Required() != ws[j].Required() {
			return ws[i].Required()
		}
		return false
	})
}

// handleCompletion processes one spec waiting on a completed index fetch,
// adding a resolved entry to plan and returning the dependency specs that
// still need to be enqueued.
func (r *Resolver) handleCompletion(ctx context.Context, s spec.Spec, res indexResult, plan *spec.Plan) ([]spec.Spec, error) {
	if res.err != nil {
		if errors.Is(res.err, errs.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", errs.ErrNotFound, s.Name)
		}
		return nil, res.err
	}
	if len(res.idx.Pages) == 0 {
		return nil, fmt.Errorf("%w: %s has an empty registration index", errs.ErrInvalidRegistryResponse, s.Name)
	}

	if !s.Required() && !admit(s, plan) {
		// Already satisfied by a plan entry settled by an earlier waiter on
		// this same index fetch.
		return nil, nil
	}

	entry, ok, err := r.selectVersion(ctx, s, res.idx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrNoSatisfyingVersion, s.CanonicalString())
	}

	v, err := version.ParseEither(entry.Version)
	if err != nil {
		return nil, fmt.Errorf("%w: catalog entry version %q for %s: %v", errs.ErrInvalidRegistryResponse, entry.Version, s.Name, err)
	}
	resolved, err := spec.New(s.Name, uuid.Nil, v, v)
	if err != nil {
		return nil, err
	}
	if entry.PackageContent != "" {
		u, err := url.Parse(entry.PackageContent)
		if err != nil {
			return nil, fmt.Errorf("%w: packageContent %q for %s: %v", errs.ErrInvalidRegistryResponse, entry.PackageContent, s.Name, err)
		}
		resolved.DownloadURI = u
	}

	if !plan.Add(resolved) {
		return nil, nil
	}

	var toEnqueue []spec.Spec
	for _, d := range entry.Dependencies {
		depSpec, err := dependencySpec(d)
		if err != nil {
			return nil, err
		}
		if !admit(depSpec, plan) {
			continue
		}
		toEnqueue = append(toEnqueue, depSpec)
	}
	return toEnqueue, nil
}

// dependencySpec converts a wire Dependency into a constraint spec. An empty
// range means "any version" (§6).
func dependencySpec(d registry.Dependency) (spec.Spec, error) {
	if d.Range == "" {
		return spec.New(d.ID, uuid.Nil, version.MinVersion(), version.MaxVersion())
	}
	rng, err := version.ParseRange(d.Range)
	if err != nil {
		return spec.Spec{}, fmt.Errorf("%w: dependency range %q on %s: %v", errs.ErrInvalidRegistryResponse, d.Range, d.ID, err)
	}
	return spec.FromRange(d.ID, rng)
}

// admit implements the dependency admission filter (§4.5.2): a monotonic
// "already satisfied by the current plan" check, not a full SAT solve.
func admit(d spec.Spec, plan *spec.Plan) bool {
	planned := plan.ByName(d.Name)
	if len(planned) == 0 {
		return true
	}
	sort.Slice(planned, func(i, j int) bool { return planned[j].Min.Less(planned[i].Min) })
	top := planned[0].Min

	if !d.Min.Equal(version.MinVersion()) && top.Less(d.Min) {
		return true
	}
	if !d.Max.Equal(version.MaxVersion()) && d.Max.Less(top) {
		return true
	}
	if d.Required() {
		for _, p := range planned {
			if p.Required() && p.Min.Equal(d.Min) {
				return false
			}
		}
		return true
	}
	return false
}
