package version

import (
	"fmt"
	"strings"

	"github.com/trackd/ModuleFast/internal/errs"
)

// Range is a NuGet version range: an optional lower and upper SemVer bound,
// each independently inclusive or exclusive. A nil bound means "no bound on
// this side".
type Range struct {
	Min, Max                   *SemVer
	MinInclusive, MaxInclusive bool
}

// ParseRange parses a NuGet range literal:
//
//	X           exact [X,X]
//	[a,b]       inclusive-inclusive
//	[a,b)       inclusive-exclusive
//	(a,b]       exclusive-inclusive
//	(a,b)       exclusive-exclusive
//	[a,]/(a,]   unbounded upper
//	[,b]/[,b)   unbounded lower
//	[a]         exact, same as bare token
//
// An empty side within brackets means "no bound on that side".
func ParseRange(s string) (Range, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Range{}, fmt.Errorf("%w: empty version range", errs.ErrInvalidArgument)
	}

	first := s[0]
	if first != '[' && first != '(' {
		v, err := ParseEither(s)
		if err != nil {
			return Range{}, err
		}
		return exactRange(v), nil
	}

	last := s[len(s)-1]
	if last != ']' && last != ')' {
		return Range{}, fmt.Errorf("%w: unterminated version range %q", errs.ErrInvalidArgument, s)
	}
	minInclusive := first == '['
	maxInclusive := last == ']'
	inner := s[1 : len(s)-1]

	parts := strings.SplitN(inner, ",", 2)
	if len(parts) == 1 {
		tok := strings.TrimSpace(parts[0])
		if tok == "" {
			return Range{}, fmt.Errorf("%w: empty bound in range %q", errs.ErrInvalidArgument, s)
		}
		v, err := ParseEither(tok)
		if err != nil {
			return Range{}, err
		}
		return exactRange(v), nil
	}

	minTok := strings.TrimSpace(parts[0])
	maxTok := strings.TrimSpace(parts[1])

	r := Range{MinInclusive: minInclusive, MaxInclusive: maxInclusive}
	if minTok != "" {
		v, err := ParseEither(minTok)
		if err != nil {
			return Range{}, err
		}
		r.Min = &v
	}
	if maxTok != "" {
		v, err := ParseEither(maxTok)
		if err != nil {
			return Range{}, err
		}
		r.Max = &v
	}
	return r, nil
}

func exactRange(v SemVer) Range {
	return Range{Min: &v, Max: &v, MinInclusive: true, MaxInclusive: true}
}

// Materialize resolves r into a closed [min, max] interval, converting
// exclusive bounds to their adjacent inclusive equivalent via
// Increment/Decrement and substituting MinVersion/MaxVersion for absent
// bounds.
func (r Range) Materialize() (min, max SemVer, err error) {
	if r.Min != nil {
		min = *r.Min
		if !r.MinInclusive {
			if min, err = Increment(min); err != nil {
				return SemVer{}, SemVer{}, err
			}
		}
	} else {
		min = MinVersion()
	}
	if r.Max != nil {
		max = *r.Max
		if !r.MaxInclusive {
			if max, err = Decrement(max); err != nil {
				return SemVer{}, SemVer{}, err
			}
		}
	} else {
		max = MaxVersion()
	}
	return min, max, nil
}
