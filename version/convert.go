package version

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/trackd/ModuleFast/internal/errs"
)

// Build-label markers that tell ToClassical a SemVer originated from a
// classical version, and which conversion branch produced it.
const (
	noBuildLabel     = "NOBUILD.SYSTEMVERSION"
	hasRevisionLabel = "HASREVISION.SYSTEMVERSION"
	systemVersionTag = "SYSTEMVERSION"

	// revisionPadWidth is wide enough to hold any int32 revision (the
	// largest is 2147483647, ten digits) while preserving lexicographic
	// order that matches numeric order.
	revisionPadWidth = 10
)

// ToSemVer converts a classical version to its SemVer representation,
// per the conversion contract:
//
//   - M.m (no build, no revision)  -> M.m.0, build label NOBUILD.SYSTEMVERSION
//   - M.m.p (no revision)          -> M.m.p, direct
//   - M.m.p.r (revision present)   -> M.m.(p+1), pre-release zero-padded(r),
//     build label HASREVISION.SYSTEMVERSION
func ToSemVer(c Classical) SemVer {
	if !c.HasBuild() {
		return SemVer{Major: c.Major, Minor: c.Minor, Patch: 0, Build: noBuildLabel}
	}
	if !c.HasRevision() {
		return SemVer{Major: c.Major, Minor: c.Minor, Patch: *c.Build}
	}
	return SemVer{
		Major:      c.Major,
		Minor:      c.Minor,
		Patch:      *c.Build + 1,
		PreRelease: fmt.Sprintf("%0*d", revisionPadWidth, *c.Revision),
		Build:      hasRevisionLabel,
	}
}

// ToClassical is the inverse of ToSemVer: it inspects the build label to
// determine which forward-conversion branch produced s and undoes it.
// SemVer values that never came from ToSemVer (no SYSTEMVERSION tag in the
// build label) are treated as a direct M.m.p classical version.
func ToClassical(s SemVer) (Classical, error) {
	if !strings.Contains(s.Build, systemVersionTag) {
		b := s.Patch
		return Classical{Major: s.Major, Minor: s.Minor, Build: &b}, nil
	}
	switch s.Build {
	case noBuildLabel:
		return Classical{Major: s.Major, Minor: s.Minor}, nil
	case hasRevisionLabel:
		if s.PreRelease == "" {
			return Classical{}, fmt.Errorf("%w: %v has HASREVISION build label but no pre-release", errs.ErrInvalidArgument, s)
		}
		rev, err := strconv.ParseInt(s.PreRelease, 10, 64)
		if err != nil || rev < 0 || rev > int64(MaxInt32) {
			return Classical{}, fmt.Errorf("%w: %v has an invalid encoded revision %q", errs.ErrInvalidArgument, s, s.PreRelease)
		}
		b := s.Patch - 1
		r := int32(rev)
		return Classical{Major: s.Major, Minor: s.Minor, Build: &b, Revision: &r}, nil
	default:
		return Classical{}, fmt.Errorf("%w: %v has an unrecognized SYSTEMVERSION build label %q", errs.ErrInvalidArgument, s, s.Build)
	}
}
