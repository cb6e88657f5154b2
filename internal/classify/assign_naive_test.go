package classify

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNaiveLCA_SingleTaxonAgreement(t *testing.T) {
	tree := bacteriaTree()
	r := read(match(100, 0.001, 0, 562), match(95, 0.001, 0, 562))
	mask := []bool{true, true}
	require.Equal(t, 562, naiveLCA(tree, r, mask, false, nil))
}

func TestNaiveLCA_EColiShigellaFoldsToGammaproteobacteria(t *testing.T) {
	tree := bacteriaTree()
	r := read(match(100, 0.001, 0, 562), match(99, 0.001, 0, 622))
	mask := []bool{true, true}
	require.Equal(t, 1224, naiveLCA(tree, r, mask, false, nil))
}

func TestNaiveLCA_EmptyMaskReturnsZero(t *testing.T) {
	tree := bacteriaTree()
	r := read(match(100, 0.001, 0, 562))
	require.Zero(t, naiveLCA(tree, r, []bool{false}, false, nil))
}

func TestNaiveLCA_DiscardsZeroIDs(t *testing.T) {
	tree := bacteriaTree()
	r := read(match(100, 0.001, 0, 0), match(90, 0.001, 0, 562))
	mask := []bool{true, true}
	require.Equal(t, 562, naiveLCA(tree, r, mask, false, nil))
}

func TestClampToIdentityRank_ClampsDeepSpeciesCallToGenus(t *testing.T) {
	tree := bacteriaTree()
	rankDepths := map[string]int{"genus": tree.Depth(561)}
	clamped := clampToIdentityRank(tree, 562, 95, rankDepths)
	require.Equal(t, 561, clamped)
}

func TestClampToIdentityRank_NoClampBelowAnyThreshold(t *testing.T) {
	tree := bacteriaTree()
	rankDepths := map[string]int{"species": tree.Depth(562)}
	clamped := clampToIdentityRank(tree, 562, 50, rankDepths)
	require.Equal(t, 562, clamped)
}

func TestClampToIdentityRank_AlreadyShallowerThanRankUnaffected(t *testing.T) {
	tree := bacteriaTree()
	rankDepths := map[string]int{"species": tree.Depth(562)}
	clamped := clampToIdentityRank(tree, 1224, 99, rankDepths)
	require.Equal(t, 1224, clamped)
}

func TestNaiveLCA_IdentityFilterClampsHighIdentity16SCall(t *testing.T) {
	tree := bacteriaTree()
	r := read(match(100, 0.001, 96, 562))
	rankDepths := map[string]int{"genus": tree.Depth(561)}
	got := naiveLCA(tree, r, []bool{true}, true, rankDepths)
	require.Equal(t, 561, got)
}

func TestBestHit_HighestScoreWins(t *testing.T) {
	r := &ReadBlock{Matches: []MatchBlock{
		{BitScore: 50, ClassIDs: map[string]int{"KEGG": 10}},
		{BitScore: 90, ClassIDs: map[string]int{"KEGG": 20}},
		{BitScore: 80, ClassIDs: map[string]int{"KEGG": 30}},
	}}
	mask := []bool{true, true, true}
	require.Equal(t, 20, bestHit(r, mask, "KEGG"))
}

func TestBestHit_TieBreaksToFirstInInputOrder(t *testing.T) {
	r := &ReadBlock{Matches: []MatchBlock{
		{BitScore: 90, ClassIDs: map[string]int{"KEGG": 10}},
		{BitScore: 90, ClassIDs: map[string]int{"KEGG": 20}},
	}}
	mask := []bool{true, true}
	require.Equal(t, 10, bestHit(r, mask, "KEGG"))
}

func TestBestHit_InactiveMatchesIgnored(t *testing.T) {
	r := &ReadBlock{Matches: []MatchBlock{
		{BitScore: 200, ClassIDs: map[string]int{"KEGG": 10}},
		{BitScore: 90, ClassIDs: map[string]int{"KEGG": 20}},
	}}
	mask := []bool{false, true}
	require.Equal(t, 20, bestHit(r, mask, "KEGG"))
}

func TestNaiveLCAForClassification_KeyedByName(t *testing.T) {
	tree := bacteriaTree()
	r := &ReadBlock{Matches: []MatchBlock{
		{BitScore: 100, ClassIDs: map[string]int{"KEGG": 562, TaxonomyName: 1}},
		{BitScore: 90, ClassIDs: map[string]int{"KEGG": 622, TaxonomyName: 1}},
	}}
	mask := []bool{true, true}
	require.Equal(t, 1224, naiveLCAForClassification(tree, r, mask, "KEGG"))
}
