// Package localscan finds modules already present under a set of local
// module search paths, so the resolver can skip a registry round-trip for
// specs that are already satisfied on disk.
package localscan

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/trackd/ModuleFast/internal/errs"
	"github.com/trackd/ModuleFast/internal/log"
	"github.com/trackd/ModuleFast/spec"
	"github.com/trackd/ModuleFast/version"
)

// manifestName is the per-version manifest file a local module directory
// must contain.
const manifestName = ".psd1"

// FindLocal searches searchPaths, in order, for a module satisfying s. It
// returns the path to the matching manifest file and true on a hit.
//
// If s is required, each path is probed directly at
// {path}/{Name}/{RequiredVersion}/{Name}.psd1. Otherwise every
// {path}/{Name}/* directory is parsed as a classical version (unparseable
// entries are warned about and skipped) and the highest version matching s
// is selected.
//
// A module directory that exists but has no manifest file is reported as
// errs.ErrCorruptLocalModule; every other failure (path not found, etc.) is
// silently treated as "not found locally", per the scanner's non-fatal
// contract.
func FindLocal(s spec.Spec, searchPaths []string) (string, bool, error) {
	for _, root := range searchPaths {
		if root == "" {
			continue
		}
		moduleDir := filepath.Join(root, s.Name)

		if s.Required() {
			manifest := filepath.Join(moduleDir, s.Min.String(), s.Name+manifestName)
			versionDir := filepath.Join(moduleDir, s.Min.String())
			if info, err := os.Stat(versionDir); err == nil && info.IsDir() {
				if _, ferr := os.Stat(manifest); ferr == nil {
					return manifest, true, nil
				}
				return "", false, fmt.Errorf("%w: %s has no manifest at %s", errs.ErrCorruptLocalModule, versionDir, manifest)
			}
			continue
		}

		manifest, ok, err := bestMatch(moduleDir, s)
		if err != nil {
			return "", false, err
		}
		if ok {
			return manifest, true, nil
		}
	}
	return "", false, nil
}

// bestMatch enumerates moduleDir's immediate subdirectories, parses each
// name as a classical version, and returns the manifest of the highest
// version matching s. Pre-release directories do not parse as classical
// versions and are silently skipped (§9 default: do not match pre-release).
func bestMatch(moduleDir string, s spec.Spec) (string, bool, error) {
	entries, err := os.ReadDir(moduleDir)
	if err != nil {
		return "", false, nil
	}

	var (
		bestManifest string
		best         version.SemVer
		found        bool
	)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		c, err := version.ParseClassical(e.Name())
		if err != nil {
			log.Warnf("localscan: skipping unparseable version directory %q under %s: %v", e.Name(), moduleDir, err)
			continue
		}
		candidate := version.ToSemVer(c)
		if !s.Matches(candidate) {
			continue
		}
		if found && !best.Less(candidate) {
			continue
		}
		manifest := filepath.Join(moduleDir, e.Name(), s.Name+manifestName)
		if _, ferr := os.Stat(manifest); ferr != nil {
			return "", false, fmt.Errorf("%w: %s has no manifest at %s", errs.ErrCorruptLocalModule, filepath.Join(moduleDir, e.Name()), manifest)
		}
		best = candidate
		bestManifest = manifest
		found = true
	}
	return bestManifest, found, nil
}
