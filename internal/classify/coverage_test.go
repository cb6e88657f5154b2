package classify

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func coverageMatch(start, end int) MatchBlock {
	return MatchBlock{AlignedQueryStart: start, AlignedQueryEnd: end, ClassIDs: map[string]int{TaxonomyName: 562}}
}

func TestEnsureCovered_ZeroRequiredAlwaysPasses(t *testing.T) {
	r := read(coverageMatch(1, 1))
	require.True(t, EnsureCovered(0, r, []bool{true}, nil))
}

func TestEnsureCovered_ShortReadModeSingleMatch(t *testing.T) {
	r := read(coverageMatch(1, 600))
	r.Length = 1000
	require.True(t, EnsureCovered(50, r, []bool{true}, nil))
}

func TestEnsureCovered_ShortReadModeRejectsWhenNoSingleMatchLongEnough(t *testing.T) {
	r := read(coverageMatch(1, 100), coverageMatch(200, 300))
	r.Length = 1000
	require.False(t, EnsureCovered(50, r, []bool{true, true}, nil))
}

// Exercised through the full gate (union + boundary).
func TestEnsureCovered_LongReadModeBoundaries(t *testing.T) {
	intervals := &IntervalSet{}

	r := read(coverageMatch(1, 300), coverageMatch(600, 1000))
	r.Length = 1000
	require.True(t, EnsureCovered(50, r, []bool{true, true}, intervals))

	r = read(coverageMatch(1, 300), coverageMatch(600, 800))
	r.Length = 1000
	require.True(t, EnsureCovered(50, r, []bool{true, true}, intervals))

	r = read(coverageMatch(1, 300), coverageMatch(600, 700))
	r.Length = 1000
	require.False(t, EnsureCovered(50, r, []bool{true, true}, intervals))
}

func TestEnsureCovered_InactiveMatchesIgnored(t *testing.T) {
	r := read(coverageMatch(1, 1000), coverageMatch(1, 1))
	r.Length = 1000
	require.False(t, EnsureCovered(50, r, []bool{false, true}, nil))
}

func TestMatchBlock_AlignedLengthHandlesReversedCoordinates(t *testing.T) {
	m := MatchBlock{AlignedQueryStart: 300, AlignedQueryEnd: 1}
	require.Equal(t, 300, m.AlignedLength())
}

func TestMatchBlock_AlignedLengthSingleBase(t *testing.T) {
	// The documented divergence from the Java Math.abs(start-start) bug:
	// a single-position match has length 1, not 0.
	m := MatchBlock{AlignedQueryStart: 42, AlignedQueryEnd: 42}
	require.Equal(t, 1, m.AlignedLength())
}
