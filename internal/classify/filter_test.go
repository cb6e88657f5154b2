package classify

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func read(matches ...MatchBlock) *ReadBlock {
	return &ReadBlock{Matches: matches}
}

func match(score, expected, identity float64, taxID int) MatchBlock {
	return MatchBlock{
		BitScore:        score,
		Expected:        expected,
		PercentIdentity: identity,
		ClassIDs:        map[string]int{TaxonomyName: taxID},
	}
}

func TestComputeActiveMatches_TopPercentKeepsBestAndNear(t *testing.T) {
	r := read(match(100, 0.001, 0, 562), match(95, 0.001, 0, 562), match(50, 0.001, 0, 1))
	var mask []bool
	ComputeActiveMatches(0, 10, 1, 0, r, TaxonomyName, &mask)
	require.Equal(t, []bool{true, true, false}, mask)
}

func TestComputeActiveMatches_MinScoreExcludes(t *testing.T) {
	r := read(match(100, 0.001, 0, 562), match(10, 0.001, 0, 562))
	var mask []bool
	ComputeActiveMatches(50, 100, 1, 0, r, TaxonomyName, &mask)
	require.Equal(t, []bool{true, false}, mask)
}

func TestComputeActiveMatches_MaxExpectedExcludes(t *testing.T) {
	r := read(match(100, 0.5, 0, 562), match(100, 5, 0, 562))
	var mask []bool
	ComputeActiveMatches(0, 100, 1, 0, r, TaxonomyName, &mask)
	require.Equal(t, []bool{true, false}, mask)
}

func TestComputeActiveMatches_UnknownIdentityAlwaysPasses(t *testing.T) {
	r := read(match(100, 0.001, 0, 562))
	var mask []bool
	ComputeActiveMatches(0, 100, 1, 97, r, TaxonomyName, &mask)
	require.Equal(t, []bool{true}, mask)
}

func TestComputeActiveMatches_KnownLowIdentityExcluded(t *testing.T) {
	r := read(match(100, 0.001, 50, 562))
	var mask []bool
	ComputeActiveMatches(0, 100, 1, 97, r, TaxonomyName, &mask)
	require.Equal(t, []bool{false}, mask)
}

func TestComputeActiveMatches_NoIDInClassificationExcluded(t *testing.T) {
	r := read(MatchBlock{BitScore: 100, ClassIDs: map[string]int{"KEGG": 42}})
	var mask []bool
	ComputeActiveMatches(0, 100, 1, 0, r, TaxonomyName, &mask)
	require.Equal(t, []bool{false}, mask)
}

func TestComputeActiveMatches_ReusesBackingSlice(t *testing.T) {
	r1 := read(match(100, 0.001, 0, 562), match(95, 0.001, 0, 562))
	var mask []bool
	ComputeActiveMatches(0, 100, 1, 0, r1, TaxonomyName, &mask)
	backing := mask

	r2 := read(match(100, 0.001, 0, 1))
	ComputeActiveMatches(0, 100, 1, 0, r2, TaxonomyName, &mask)
	require.Len(t, mask, 1)
	require.Equal(t, &backing[0], &mask[0], "slice should be reused when capacity suffices")
}

func TestComputeActiveMatches_EmptyOnNoPassingMatches(t *testing.T) {
	r := read(match(1, 100, 0, 562))
	var mask []bool
	ComputeActiveMatches(50, 100, 1, 0, r, TaxonomyName, &mask)
	require.False(t, AnyActive(mask))
}

func TestActiveIndices_PreservesInputOrder(t *testing.T) {
	mask := []bool{false, true, false, true, true}
	require.Equal(t, []int{1, 3, 4}, ActiveIndices(mask))
}
