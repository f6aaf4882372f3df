// Package version implements ModuleFast's hybrid version model: classical
// four-part versions (Major.Minor.Build.Revision, in the shape of
// System.Version) and SemVer 2.0 versions, with a bijection between the two
// and NuGet-style range parsing over the SemVer side.
package version

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/trackd/ModuleFast/internal/errs"
)

// MaxInt32 is the largest value any classical version component, or the
// major/minor/patch of a SemVer, may take.
const MaxInt32 = int32(2147483647)

// Classical is a four-part version: Major.Minor[.Build[.Revision]]. Build and
// Revision are optional; a nil pointer means the component was absent from
// the source string, not that it was zero.
type Classical struct {
	Major, Minor int32
	Build        *int32
	Revision     *int32
}

// HasBuild reports whether the Build component was present.
func (c Classical) HasBuild() bool { return c.Build != nil }

// HasRevision reports whether the Revision component was present.
func (c Classical) HasRevision() bool { return c.Revision != nil }

// String renders the classical version in its minimal form, omitting absent
// components.
func (c Classical) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d.%d", c.Major, c.Minor)
	if c.Build != nil {
		fmt.Fprintf(&b, ".%d", *c.Build)
	}
	if c.Revision != nil {
		fmt.Fprintf(&b, ".%d", *c.Revision)
	}
	return b.String()
}

// ParseClassical parses a dot-separated classical version of up to four
// parts. Each part must be an integer in [0, MaxInt32].
func ParseClassical(s string) (Classical, error) {
	if s == "" {
		return Classical{}, fmt.Errorf("%w: empty classical version", errs.ErrInvalidArgument)
	}
	parts := strings.Split(s, ".")
	if len(parts) < 2 || len(parts) > 4 {
		return Classical{}, fmt.Errorf("%w: classical version %q must have 2-4 parts", errs.ErrInvalidArgument, s)
	}
	nums := make([]int32, len(parts))
	for i, p := range parts {
		n, err := parseComponent(p)
		if err != nil {
			return Classical{}, fmt.Errorf("%w: classical version %q: %v", errs.ErrInvalidArgument, s, err)
		}
		nums[i] = n
	}
	c := Classical{Major: nums[0], Minor: nums[1]}
	if len(nums) >= 3 {
		b := nums[2]
		c.Build = &b
	}
	if len(nums) == 4 {
		r := nums[3]
		c.Revision = &r
	}
	return c, nil
}

func parseComponent(s string) (int32, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("component %q is not an integer", s)
	}
	if n < 0 || n > int64(MaxInt32) {
		return 0, fmt.Errorf("component %q out of range [0, %d]", s, MaxInt32)
	}
	return int32(n), nil
}
