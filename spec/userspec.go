package spec

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/trackd/ModuleFast/internal/errs"
	"github.com/trackd/ModuleFast/version"
)

// UserInput is the normaliser's target shape for the user-facing surface
// (§6): a module may be given as a bare name, a name plus any combination of
// Version/MaximumVersion/RequiredVersion, and optionally a Guid.
type UserInput struct {
	Name            string
	Version         string
	MaximumVersion  string
	RequiredVersion string
	Guid            string
}

// ParseUserString parses the bare-name and "Name@Version" collaborator
// shapes into a UserInput. Any other textual form is rejected; callers
// needing the full record shape should construct a UserInput directly.
func ParseUserString(s string) (UserInput, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return UserInput{}, fmt.Errorf("%w: empty module specifier", errs.ErrInvalidArgument)
	}
	name, ver, found := strings.Cut(s, "@")
	if !found {
		return UserInput{Name: s}, nil
	}
	if name == "" || ver == "" {
		return UserInput{}, fmt.Errorf("%w: malformed module specifier %q", errs.ErrInvalidArgument, s)
	}
	return UserInput{Name: name, RequiredVersion: ver}, nil
}

// Normalize converts a UserInput into a Spec, the tagged-variant boundary
// design called for in §9: a bare name becomes the unbounded range
// [0.0.0, +∞), a RequiredVersion pins an exact version, and
// Version/MaximumVersion independently bound either side.
func Normalize(in UserInput) (Spec, error) {
	if in.Name == "" {
		return Spec{}, fmt.Errorf("%w: module specifier has no name", errs.ErrInvalidArgument)
	}

	id := uuid.Nil
	if in.Guid != "" {
		parsed, err := uuid.Parse(in.Guid)
		if err != nil {
			return Spec{}, fmt.Errorf("%w: invalid guid %q for %s: %v", errs.ErrInvalidArgument, in.Guid, in.Name, err)
		}
		id = parsed
	}

	if in.RequiredVersion != "" {
		v, err := version.ParseEither(in.RequiredVersion)
		if err != nil {
			return Spec{}, fmt.Errorf("%w: required version %q for %s: %v", errs.ErrInvalidArgument, in.RequiredVersion, in.Name, err)
		}
		return New(in.Name, id, v, v)
	}

	min := version.MinVersion()
	if in.Version != "" {
		v, err := version.ParseEither(in.Version)
		if err != nil {
			return Spec{}, fmt.Errorf("%w: version %q for %s: %v", errs.ErrInvalidArgument, in.Version, in.Name, err)
		}
		min = v
	}
	max := version.MaxVersion()
	if in.MaximumVersion != "" {
		v, err := version.ParseEither(in.MaximumVersion)
		if err != nil {
			return Spec{}, fmt.Errorf("%w: maximum version %q for %s: %v", errs.ErrInvalidArgument, in.MaximumVersion, in.Name, err)
		}
		max = v
	}
	return New(in.Name, id, min, max)
}
