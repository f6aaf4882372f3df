package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/trackd/ModuleFast/internal/errs"
)

// SemVer is a SemVer 2.0 version: Major.Minor.Patch[-PreRelease][+Build].
type SemVer struct {
	Major, Minor, Patch int32
	PreRelease          string // without the leading '-'
	Build                string // without the leading '+'
}

// semverPattern is the canonical SemVer 2.0 regex from semver.org, anchored.
var semverPattern = regexp.MustCompile(`^(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)` +
	`(?:-((?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*)(?:\.(?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*))*))?` +
	`(?:\+([0-9a-zA-Z-]+(?:\.[0-9a-zA-Z-]+)*))?$`)

// ParseSemVer parses a SemVer 2.0 literal.
func ParseSemVer(s string) (SemVer, error) {
	if s == "" {
		return SemVer{}, fmt.Errorf("%w: empty semver string", errs.ErrInvalidArgument)
	}
	m := semverPattern.FindStringSubmatch(s)
	if m == nil {
		return SemVer{}, fmt.Errorf("%w: %q is not a valid semver", errs.ErrInvalidArgument, s)
	}
	major, err1 := strconv.ParseInt(m[1], 10, 64)
	minor, err2 := strconv.ParseInt(m[2], 10, 64)
	patch, err3 := strconv.ParseInt(m[3], 10, 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return SemVer{}, fmt.Errorf("%w: %q has an out-of-range numeric component", errs.ErrInvalidArgument, s)
	}
	if major > int64(MaxInt32) || minor > int64(MaxInt32) || patch > int64(MaxInt32) {
		return SemVer{}, fmt.Errorf("%w: %q exceeds the maximum component value", errs.ErrInvalidArgument, s)
	}
	return SemVer{
		Major:      int32(major),
		Minor:      int32(minor),
		Patch:      int32(patch),
		PreRelease: m[4],
		Build:      m[5],
	}, nil
}

// ParseEither tries to parse s as a classical version and, on success,
// converts it to SemVer via ToSemVer. If s does not parse as classical, it is
// parsed directly as a SemVer literal.
func ParseEither(s string) (SemVer, error) {
	if c, err := ParseClassical(s); err == nil {
		return ToSemVer(c), nil
	}
	return ParseSemVer(s)
}

// String renders the SemVer in canonical form.
func (v SemVer) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.PreRelease != "" {
		b.WriteByte('-')
		b.WriteString(v.PreRelease)
	}
	if v.Build != "" {
		b.WriteByte('+')
		b.WriteString(v.Build)
	}
	return b.String()
}

// MinVersion is the default lower bound for an unbounded range: 0.0.0.
func MinVersion() SemVer { return SemVer{} }

// MaxVersion is the defined maximum version: MaxInt32.MaxInt32.MaxInt32.
func MaxVersion() SemVer { return SemVer{Major: MaxInt32, Minor: MaxInt32, Patch: MaxInt32} }

// Compare returns -1, 0, or 1 as v is less than, equal to, or greater than w,
// following SemVer 2.0 precedence rules (build metadata does not affect
// precedence).
func (v SemVer) Compare(w SemVer) int {
	if v.Major != w.Major {
		return cmpInt32(v.Major, w.Major)
	}
	if v.Minor != w.Minor {
		return cmpInt32(v.Minor, w.Minor)
	}
	if v.Patch != w.Patch {
		return cmpInt32(v.Patch, w.Patch)
	}
	return comparePreRelease(v.PreRelease, w.PreRelease)
}

// Less reports whether v sorts strictly before w.
func (v SemVer) Less(w SemVer) bool { return v.Compare(w) < 0 }

// Equal reports whether v and w have identical precedence (build metadata
// ignored).
func (v SemVer) Equal(w SemVer) bool { return v.Compare(w) == 0 }

func cmpInt32(a, b int32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// comparePreRelease implements SemVer 2.0 precedence rule 11: a version
// without a pre-release has higher precedence than one with a pre-release;
// otherwise pre-release identifiers are compared dot-component by
// dot-component, numeric identifiers always being lower than alphanumeric
// ones, and a shorter set of identifiers being lower when all the preceding
// identifiers are equal.
func comparePreRelease(a, b string) int {
	if a == "" && b == "" {
		return 0
	}
	if a == "" {
		return 1 // release > pre-release
	}
	if b == "" {
		return -1
	}
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		if c := compareIdentifier(as[i], bs[i]); c != 0 {
			return c
		}
	}
	return cmpInt32(int32(len(as)), int32(len(bs)))
}

func compareIdentifier(a, b string) int {
	an, aIsNum := isNumericIdentifier(a)
	bn, bIsNum := isNumericIdentifier(b)
	switch {
	case aIsNum && bIsNum:
		return cmpInt32(int32(an), int32(bn))
	case aIsNum && !bIsNum:
		return -1
	case !aIsNum && bIsNum:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

func isNumericIdentifier(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
