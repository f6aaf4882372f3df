// Package spec implements ModuleFast's module specification: the
// identity+constraint tuple that flows from user request through resolution
// to the concrete install plan.
package spec

import (
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"github.com/trackd/ModuleFast/internal/errs"
	"github.com/trackd/ModuleFast/version"
)

// Spec is a module name together with a version range constraint, and
// optionally a GUID and a resolved download URI.
type Spec struct {
	Name string
	Guid uuid.UUID
	Min  version.SemVer
	Max  version.SemVer

	// DownloadURI is populated only on specs that represent a concrete
	// resolved module: the output of the resolver.
	DownloadURI *url.URL
}

// New constructs a Spec, validating that Min <= Max and that a non-zero Guid
// is only used on a required (Min == Max) spec.
func New(name string, guid uuid.UUID, min, max version.SemVer) (Spec, error) {
	if max.Less(min) {
		return Spec{}, fmt.Errorf("%w: spec %s has Min %v > Max %v", errs.ErrInvalidArgument, name, min, max)
	}
	s := Spec{Name: name, Guid: guid, Min: min, Max: max}
	if guid != uuid.Nil && !s.Required() {
		return Spec{}, fmt.Errorf("%w: spec %s has a non-zero Guid but is not required (Min != Max)", errs.ErrInvalidArgument, name)
	}
	return s, nil
}

// FromRange materialises a version.Range into a Spec, substituting
// version.MinVersion/version.MaxVersion for absent bounds.
func FromRange(name string, r version.Range) (Spec, error) {
	min, max, err := r.Materialize()
	if err != nil {
		return Spec{}, err
	}
	return New(name, uuid.Nil, min, max)
}

// Required reports whether s pins an exact version (Min == Max).
func (s Spec) Required() bool { return s.Min.Equal(s.Max) }

// Matches reports whether v falls within [Min, Max].
func (s Spec) Matches(v version.SemVer) bool {
	return !v.Less(s.Min) && !s.Max.Less(v)
}

// CompareVersion is trichotomic: 0 if v is within [Min,Max], +1 if v is below
// Min, -1 if v is above Max.
func (s Spec) CompareVersion(v version.SemVer) int {
	if v.Less(s.Min) {
		return 1
	}
	if s.Max.Less(v) {
		return -1
	}
	return 0
}

// Overlaps reports whether s and other, which must name the same module and
// Guid, have any version range in common.
func (s Spec) Overlaps(other Spec) bool {
	if s.Name != other.Name || s.Guid != other.Guid {
		return false
	}
	return s.Min.Less(other.Max) && other.Min.Less(s.Max)
}

// Equals implements structural containment: a.Equals(b) iff a and b share a
// Name and Guid and b's range is contained within a's.
func (s Spec) Equals(other Spec) bool {
	if s.Name != other.Name || s.Guid != other.Guid {
		return false
	}
	return !other.Min.Less(s.Min) && !s.Max.Less(other.Max)
}

// Key identifies a plan member by (Name, Guid, Min, Max) per §3.5: two
// resolved specs for the same module name but different exact versions are
// different plan members, not competing values for one slot, since modules
// may legitimately be installed side by side at different versions.
type Key struct {
	Name string
	Guid uuid.UUID
	Min  version.SemVer
	Max  version.SemVer
}

// Key returns s's plan-membership key.
func (s Spec) Key() Key {
	return Key{Name: s.Name, Guid: s.Guid, Min: s.Min, Max: s.Max}
}

// CanonicalString renders a canonical form used to hash/display a Spec:
//
//	Name[guid?]{@req | <max | >min | :min-max}
func (s Spec) CanonicalString() string {
	guidPart := ""
	if s.Guid != uuid.Nil {
		guidPart = "[" + s.Guid.String() + "]"
	}
	var rangePart string
	switch {
	case s.Required():
		rangePart = "@" + s.Min.String()
	case s.Min.Equal(version.MinVersion()):
		rangePart = "<" + s.Max.String()
	case s.Max.Equal(version.MaxVersion()):
		rangePart = ">" + s.Min.String()
	default:
		rangePart = ":" + s.Min.String() + "-" + s.Max.String()
	}
	return s.Name + guidPart + rangePart
}

// HostSpec is the projection of a Spec onto the shape a host module manager
// (e.g. PowerShell's Install-Module) expects: either a single RequiredVersion
// or a Version/MaximumVersion pair.
type HostSpec struct {
	Name            string
	RequiredVersion string
	Version         string
	MaximumVersion  string
}

// ToHostSpec projects s onto the host specification shape.
func (s Spec) ToHostSpec() HostSpec {
	if s.Required() {
		return HostSpec{Name: s.Name, RequiredVersion: s.Min.String()}
	}
	min := s.Min
	if min.Equal(version.MinVersion()) && s.Max.Equal(version.MaxVersion()) {
		return HostSpec{Name: s.Name, Version: version.MinVersion().String()}
	}
	return HostSpec{Name: s.Name, Version: min.String(), MaximumVersion: s.Max.String()}
}
