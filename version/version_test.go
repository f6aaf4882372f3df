package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustClassical(t *testing.T, s string) Classical {
	t.Helper()
	c, err := ParseClassical(s)
	require.NoError(t, err)
	return c
}

func TestParseClassical(t *testing.T) {
	tests := []struct {
		in   string
		want Classical
	}{
		{"1.2", Classical{Major: 1, Minor: 2}},
		{"1.2.3", Classical{Major: 1, Minor: 2, Build: intPtr(3)}},
		{"1.2.3.4", Classical{Major: 1, Minor: 2, Build: intPtr(3), Revision: intPtr(4)}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClassical(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseClassicalErrors(t *testing.T) {
	for _, in := range []string{"", "1", "1.2.3.4.5", "1.x", "-1.2"} {
		_, err := ParseClassical(in)
		assert.Error(t, err, in)
	}
}

func intPtr(v int32) *int32 { return &v }

// V-1 (round-trip): ToClassical(ToSemVer(c)) == c for every classical c
// produced by ParseClassical.
func TestRoundTrip(t *testing.T) {
	for _, in := range []string{"1.2", "1.2.3", "1.2.3.4", "0.0", "2.5.9.0", "1.0.0.2147483647"} {
		c := mustClassical(t, in)
		sv := ToSemVer(c)
		back, err := ToClassical(sv)
		require.NoError(t, err)
		assert.Equal(t, c, back, "round trip of %s via %v", in, sv)
	}
}

// V-2 (order preservation): for all classical a, b: a < b iff ToSemVer(a) < ToSemVer(b).
func TestOrderPreservation(t *testing.T) {
	classicalLess := func(a, b Classical) bool {
		if a.Major != b.Major {
			return a.Major < b.Major
		}
		if a.Minor != b.Minor {
			return a.Minor < b.Minor
		}
		ab, bb := buildOf(a), buildOf(b)
		if ab != bb {
			return ab < bb
		}
		return revisionOf(a) < revisionOf(b)
	}

	versions := []string{"1.0.0", "1.0.1", "1.1.0", "1.2.3", "1.2.3.1", "1.2.3.9", "1.2.4.0", "2.0.0"}
	for _, a := range versions {
		for _, b := range versions {
			ca, cb := mustClassical(t, a), mustClassical(t, b)
			want := classicalLess(ca, cb)
			got := ToSemVer(ca).Less(ToSemVer(cb))
			assert.Equal(t, want, got, "a=%s b=%s", a, b)
		}
	}
}

// A classical version with an absent Build is, for precedence purposes,
// indistinguishable from the same version with an explicit Build of 0: both
// lack a revision-derived pre-release, so they convert to the same SemVer
// precedence (build metadata is never significant to SemVer ordering).
func TestAbsentBuildNormalizesLikeZero(t *testing.T) {
	a := ToSemVer(mustClassical(t, "1.0"))
	b := ToSemVer(mustClassical(t, "1.0.0"))
	assert.True(t, a.Equal(b))
}

func buildOf(c Classical) int32 {
	if c.Build == nil {
		return -1
	}
	return *c.Build
}

func revisionOf(c Classical) int32 {
	if c.Revision == nil {
		return -1
	}
	return *c.Revision
}

func TestToSemVerLabels(t *testing.T) {
	sv := ToSemVer(mustClassical(t, "1.2"))
	assert.Equal(t, SemVer{Major: 1, Minor: 2, Patch: 0, Build: noBuildLabel}, sv)

	sv = ToSemVer(mustClassical(t, "1.2.3"))
	assert.Equal(t, SemVer{Major: 1, Minor: 2, Patch: 3}, sv)

	sv = ToSemVer(mustClassical(t, "1.2.3.4"))
	assert.Equal(t, "0000000004", sv.PreRelease)
	assert.Equal(t, hasRevisionLabel, sv.Build)
	assert.Equal(t, int32(4), sv.Patch)
}

func TestDecrementIncrement(t *testing.T) {
	v := SemVer{Major: 1, Minor: 2, Patch: 0}
	d, err := Decrement(v)
	require.NoError(t, err)
	assert.Equal(t, SemVer{Major: 1, Minor: 1, Patch: MaxInt32}, d)

	d, err = Decrement(SemVer{Major: 1, Minor: 0, Patch: 0})
	require.NoError(t, err)
	assert.Equal(t, SemVer{Major: 0, Minor: MaxInt32, Patch: MaxInt32}, d)

	_, err = Decrement(SemVer{})
	assert.Error(t, err)

	i, err := Increment(SemVer{Major: 1, Minor: 2, Patch: MaxInt32})
	require.NoError(t, err)
	assert.Equal(t, SemVer{Major: 1, Minor: 3, Patch: 0}, i)

	i, err = Increment(SemVer{Major: 1, Minor: MaxInt32, Patch: MaxInt32})
	require.NoError(t, err)
	assert.Equal(t, SemVer{Major: 2, Minor: 0, Patch: 0}, i)
}

// V-3 (range parsing).
func TestParseRange(t *testing.T) {
	tests := []struct {
		in         string
		wantMin    *string
		wantMax    *string
		minInclude bool
		maxInclude bool
	}{
		{"1.2.3", strp("1.2.3"), strp("1.2.3"), true, true},
		{"[1.0,2.0)", strp("1.0"), strp("2.0"), true, false},
		{"(,2.0]", nil, strp("2.0"), true, true},
		{"[1.0,]", strp("1.0"), nil, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			r, err := ParseRange(tt.in)
			require.NoError(t, err)
			if tt.wantMin == nil {
				assert.Nil(t, r.Min)
			} else {
				require.NotNil(t, r.Min)
				assert.Equal(t, *tt.wantMin, ToSemVer(mustClassical(t, *tt.wantMin)).String(), "sanity")
				assert.True(t, r.Min.Equal(mustSemVer(t, *tt.wantMin)))
			}
			if tt.wantMax == nil {
				assert.Nil(t, r.Max)
			} else {
				require.NotNil(t, r.Max)
				assert.True(t, r.Max.Equal(mustSemVer(t, *tt.wantMax)))
			}
			assert.Equal(t, tt.minInclude, r.MinInclusive)
			assert.Equal(t, tt.maxInclude, r.MaxInclusive)
		})
	}
}

func TestRangeMaterialize(t *testing.T) {
	r, err := ParseRange("[1.0,2.0)")
	require.NoError(t, err)
	min, max, err := r.Materialize()
	require.NoError(t, err)
	assert.True(t, min.Equal(mustSemVer(t, "1.0")))
	// upper bound is exclusive 2.0 -> decremented to 1.MaxInt32.MaxInt32
	assert.Equal(t, SemVer{Major: 1, Minor: MaxInt32, Patch: MaxInt32}, max)

	r, err = ParseRange("[1.0,]")
	require.NoError(t, err)
	min, max, err = r.Materialize()
	require.NoError(t, err)
	assert.True(t, min.Equal(mustSemVer(t, "1.0")))
	assert.Equal(t, MaxVersion(), max)

	r, err = ParseRange("(,2.0]")
	require.NoError(t, err)
	min, max, err = r.Materialize()
	require.NoError(t, err)
	assert.Equal(t, MinVersion(), min)
	assert.True(t, max.Equal(mustSemVer(t, "2.0")))
}

func strp(s string) *string { return &s }

func mustSemVer(t *testing.T, s string) SemVer {
	t.Helper()
	v, err := ParseEither(s)
	require.NoError(t, err)
	return v
}
