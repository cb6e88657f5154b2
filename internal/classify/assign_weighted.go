package classify

// weightedLCA implements the "LCA-weighted" strategy: each id reached by
// an active match (via ancestor walk) accumulates that match's
// bit-score; the deepest id whose cumulative weight is >= percent/100 of
// the total wins; ties are broken by preferring the naive LCA of all
// match ids if it is among the winners, else the LCA of the winners.
func weightedLCA(tree ClassificationTree, read *ReadBlock, mask []bool, percent float64) int {
	weight := map[int]float64{}
	var matchIDs []int
	total := 0.0
	for i, active := range mask {
		if !active {
			continue
		}
		m := &read.Matches[i]
		id := m.ClassID(TaxonomyName)
		if id <= 0 {
			continue
		}
		matchIDs = append(matchIDs, id)
		total += m.BitScore
		for _, ancestor := range ancestorsOf(tree, id) {
			weight[ancestor] += m.BitScore
		}
	}
	if total <= 0 {
		return 0
	}
	threshold := percent / 100 * total

	naive := foldLCA(tree, matchIDs)

	var winners []int
	maxDepth := -1
	for id, w := range weight {
		if w+1e-9 < threshold {
			continue
		}
		d := tree.Depth(id)
		if d > maxDepth {
			maxDepth = d
			winners = winners[:0]
			winners = append(winners, id)
		} else if d == maxDepth {
			winners = append(winners, id)
		}
	}
	if len(winners) == 0 {
		return 0
	}
	if len(winners) == 1 {
		return winners[0]
	}
	// Tie: prefer the existing LCA of the match ids if it is among the
	// winners at this depth, else fold the winners together.
	for _, w := range winners {
		if w == naive {
			return naive
		}
	}
	return foldLCA(tree, winners)
}
