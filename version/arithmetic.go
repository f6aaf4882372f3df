package version

import (
	"fmt"

	"github.com/trackd/ModuleFast/internal/errs"
	"github.com/trackd/ModuleFast/internal/log"
)

// Decrement returns the version immediately below v in the classical
// Major.Minor.Patch ordering, dropping any pre-release or build label (and
// warning if one was present). The rules, applied in order:
//
//  1. patch > 0    -> (Major, Minor, patch-1)
//  2. else minor > 0 -> (Major, minor-1, MaxInt32)
//  3. else major > 0 -> (major-1, MaxInt32, MaxInt32)
//  4. else: error, 0.0.0 cannot be decremented.
func Decrement(v SemVer) (SemVer, error) {
	warnDroppedLabels(v)
	switch {
	case v.Patch > 0:
		return SemVer{Major: v.Major, Minor: v.Minor, Patch: v.Patch - 1}, nil
	case v.Minor > 0:
		return SemVer{Major: v.Major, Minor: v.Minor - 1, Patch: MaxInt32}, nil
	case v.Major > 0:
		return SemVer{Major: v.Major - 1, Minor: MaxInt32, Patch: MaxInt32}, nil
	default:
		return SemVer{}, fmt.Errorf("%w: cannot decrement 0.0.0", errs.ErrInvalidArgument)
	}
}

// Increment returns the version immediately above v, dropping any
// pre-release or build label, saturating at MaxInt32 and cascading to the
// next-higher field symmetrically with Decrement.
func Increment(v SemVer) (SemVer, error) {
	warnDroppedLabels(v)
	switch {
	case v.Patch < MaxInt32:
		return SemVer{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}, nil
	case v.Minor < MaxInt32:
		return SemVer{Major: v.Major, Minor: v.Minor + 1, Patch: 0}, nil
	case v.Major < MaxInt32:
		return SemVer{Major: v.Major + 1, Minor: 0, Patch: 0}, nil
	default:
		return SemVer{}, fmt.Errorf("%w: cannot increment %v past the maximum version", errs.ErrInvalidArgument, v)
	}
}

func warnDroppedLabels(v SemVer) {
	if v.PreRelease != "" || v.Build != "" {
		log.Warnf("version: dropping pre-release/build labels from %v for boundary arithmetic", v)
	}
}
