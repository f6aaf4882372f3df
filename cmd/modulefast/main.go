// Command modulefast resolves and installs modules from a NuGet
// v3-compatible registration feed.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/trackd/ModuleFast/installer"
	"github.com/trackd/ModuleFast/internal/log"
	"github.com/trackd/ModuleFast/registry"
	"github.com/trackd/ModuleFast/resolver"
	"github.com/trackd/ModuleFast/spec"
)

type config struct {
	source      string
	destination string
	cacheDir    string
	searchPath  string
	preRelease  bool
	update      bool
	http3       bool
	verbose     bool
}

func parseFlags(args []string) (*config, []string) {
	fs := flag.NewFlagSet("modulefast", flag.ExitOnError)
	cfg := &config{}

	fs.StringVar(&cfg.source, "source", "https://www.powershellgallery.com/api/v2", "registry source base URI")
	fs.StringVar(&cfg.destination, "destination", "./Modules", "directory modules are installed into")
	fs.StringVar(&cfg.cacheDir, "cache", filepath.Join(os.TempDir(), "modulefast-cache"), "archive cache directory")
	fs.StringVar(&cfg.searchPath, "search-path", "", "PATH_SEP-separated local module search paths")
	fs.BoolVar(&cfg.preRelease, "prerelease", false, "allow pre-release versions to satisfy specs")
	fs.BoolVar(&cfg.update, "update", false, "ignore local modules and re-resolve from the registry")
	fs.BoolVar(&cfg.http3, "http3", false, "attempt HTTP/3 before falling back to HTTP/2")
	fs.BoolVar(&cfg.verbose, "verbose", false, "enable debug logging")

	_ = fs.Parse(args)
	return cfg, fs.Args()
}

func main() {
	cfg, moduleArgs := parseFlags(os.Args[1:])
	log.SetLogger(&log.DefaultLogger{Verbose: cfg.verbose})

	if len(moduleArgs) == 0 {
		fmt.Fprintln(os.Stderr, "usage: modulefast [flags] <module[@version]>...")
		os.Exit(2)
	}

	if err := run(cfg, moduleArgs); err != nil {
		log.Errorf("modulefast: %v", err)
		os.Exit(1)
	}
}

func run(cfg *config, moduleArgs []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	seeds := make([]spec.Spec, 0, len(moduleArgs))
	for _, arg := range moduleArgs {
		in, err := spec.ParseUserString(arg)
		if err != nil {
			return err
		}
		s, err := spec.Normalize(in)
		if err != nil {
			return err
		}
		seeds = append(seeds, s)
	}

	var opts []registry.Option
	if cfg.http3 {
		opts = append(opts, registry.WithHTTP3())
	}
	client := registry.New(opts...)
	defer client.Close()

	var searchPaths []string
	if cfg.searchPath != "" {
		searchPaths = strings.Split(cfg.searchPath, string(os.PathListSeparator))
	}

	r := resolver.New(client, resolver.Options{
		Source:      cfg.source,
		SearchPaths: searchPaths,
		PreRelease:  cfg.preRelease,
		Update:      cfg.update,
	})

	log.Infof("modulefast: resolving %d module(s) from %s", len(seeds), cfg.source)
	plan, err := r.Resolve(ctx, seeds)
	if err != nil {
		return fmt.Errorf("resolving modules: %w", err)
	}
	log.Infof("modulefast: resolved plan has %d module(s)", plan.Len())

	if plan.Len() == 0 {
		log.Infof("modulefast: nothing to install")
		return nil
	}

	in := installer.New(client, cfg.destination, cfg.cacheDir)
	if err := in.Install(ctx, plan); err != nil {
		return fmt.Errorf("installing modules: %w", err)
	}

	for _, m := range plan.All() {
		log.Infof("modulefast: installed %s %s", m.Name, m.Min.String())
	}
	return nil
}
