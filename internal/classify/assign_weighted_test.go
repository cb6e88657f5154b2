package classify

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWeightedLCA_FullPercentPicksDeepestCommonAncestor(t *testing.T) {
	tree := bacteriaTree()
	r := read(match(100, 0.001, 0, 562), match(10, 0.001, 0, 622))
	mask := []bool{true, true}
	// 562 carries only 100/(100+10) = ~90.9% of the weight, so even the
	// dominant match does not win; at 100% threshold only ids every match
	// reaches (the ancestors of both) qualify, so the winner is the
	// deepest common ancestor, Gammaproteobacteria.
	require.Equal(t, 1224, weightedLCA(tree, r, mask, 100))
}

func TestWeightedLCA_LowThresholdPicksDeepestDominantID(t *testing.T) {
	tree := bacteriaTree()
	r := read(match(100, 0.001, 0, 562), match(10, 0.001, 0, 622))
	mask := []bool{true, true}
	// 562 alone carries 100/110 ~= 90.9% of the total weight, clearing a
	// 60% threshold, and is deeper than 1224.
	require.Equal(t, 562, weightedLCA(tree, r, mask, 60))
}

func TestWeightedLCA_NoActiveMatchesReturnsZero(t *testing.T) {
	tree := bacteriaTree()
	r := read(match(100, 0.001, 0, 562))
	require.Zero(t, weightedLCA(tree, r, []bool{false}, 80))
}

func TestWeightedLCA_SingleMatchReturnsItsOwnID(t *testing.T) {
	tree := bacteriaTree()
	r := read(match(100, 0.001, 0, 562))
	require.Equal(t, 562, weightedLCA(tree, r, []bool{true}, 80))
}

func TestWeightedLCA_EqualWeightSiblingsFoldToParent(t *testing.T) {
	tree := bacteriaTree()
	r := read(match(50, 0.001, 0, 562), match(50, 0.001, 0, 622))
	mask := []bool{true, true}
	// Both 562 (under 561/1224) and 622 (under 620/1224) each carry 50% of
	// the total weight; at a 50% threshold both tie at their own depth (4),
	// so the tie rule folds them to their LCA, 1224.
	require.Equal(t, 1224, weightedLCA(tree, r, mask, 50))
}
