// Package errs defines the sentinel error kinds shared across ModuleFast's
// resolver and installer pipeline. Callers wrap these with fmt.Errorf("%w: ...")
// at the point of use and recover the kind downstream with errors.Is.
package errs

import "errors"

var (
	// ErrNotFound is returned when a registry index lookup 404s.
	ErrNotFound = errors.New("module not found in registry")

	// ErrNoSatisfyingVersion is returned when a registry returned pages but
	// none of them contained a version matching the requested spec.
	ErrNoSatisfyingVersion = errors.New("no satisfying version found")

	// ErrInvalidRegistryResponse is returned when a registration document is
	// malformed or empty.
	ErrInvalidRegistryResponse = errors.New("invalid registry response")

	// ErrTransport wraps HTTP/TLS/socket failures encountered talking to the
	// registry.
	ErrTransport = errors.New("registry transport error")

	// ErrCorruptLocalModule is returned by the local scanner when a module
	// directory exists but its manifest file is missing.
	ErrCorruptLocalModule = errors.New("corrupt local module")

	// ErrInvalidArgument is returned when a version or range string fails to
	// parse at the boundary.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrCancelled is returned when a run is stopped by cooperative
	// cancellation.
	ErrCancelled = errors.New("cancelled")

	// ErrInternal marks an invariant violation, such as a registration page
	// resolving to anything other than exactly one catalog entry.
	ErrInternal = errors.New("internal invariant violation")
)
