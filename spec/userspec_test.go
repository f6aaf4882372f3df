package spec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackd/ModuleFast/version"
)

func TestParseUserStringBareName(t *testing.T) {
	in, err := ParseUserString("Foo")
	require.NoError(t, err)
	assert.Equal(t, UserInput{Name: "Foo"}, in)
}

func TestParseUserStringRequired(t *testing.T) {
	in, err := ParseUserString("Foo@1.2.3")
	require.NoError(t, err)
	assert.Equal(t, UserInput{Name: "Foo", RequiredVersion: "1.2.3"}, in)
}

func TestParseUserStringMalformed(t *testing.T) {
	_, err := ParseUserString("Foo@")
	assert.Error(t, err)
	_, err = ParseUserString("")
	assert.Error(t, err)
}

func TestNormalizeBareName(t *testing.T) {
	s, err := Normalize(UserInput{Name: "Foo"})
	require.NoError(t, err)
	assert.True(t, s.Min.Equal(version.MinVersion()))
	assert.True(t, s.Max.Equal(version.MaxVersion()))
}

func TestNormalizeRequired(t *testing.T) {
	s, err := Normalize(UserInput{Name: "Foo", RequiredVersion: "1.2.3"})
	require.NoError(t, err)
	assert.True(t, s.Required())
	assert.Equal(t, "1.2.3", s.Min.String())
}

func TestNormalizeVersionRange(t *testing.T) {
	s, err := Normalize(UserInput{Name: "Foo", Version: "1.0.0", MaximumVersion: "2.0.0"})
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", s.Min.String())
	assert.Equal(t, "2.0.0", s.Max.String())
}

func TestNormalizeInvalidGuid(t *testing.T) {
	_, err := Normalize(UserInput{Name: "Foo", Guid: "not-a-guid"})
	assert.Error(t, err)
}
