package classify

// coverageLongReadLCA implements the "LCA-coverage-long-read" strategy:
// like weightedLCA, but each id's weight is the union length of
// the query intervals of matches reaching it (via ancestor walk), not the
// sum of their bit-scores -- overlapping matches contributing to the same
// id must not double-count their covered bases.
func coverageLongReadLCA(tree ClassificationTree, read *ReadBlock, mask []bool, percent float64) int {
	covered := map[int]*IntervalSet{}
	var matchIDs []int
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
		s, e := interval(m)
		for _, ancestor := range ancestorsOf(tree, id) {
			set, ok := covered[ancestor]
			if !ok {
				set = &IntervalSet{}
				covered[ancestor] = set
			}
			set.Add(s, e)
		}
	}
	if len(matchIDs) == 0 {
		return 0
	}

	readCoverage := &IntervalSet{}
	for i, active := range mask {
		if !active {
			continue
		}
		if read.Matches[i].ClassID(TaxonomyName) <= 0 {
			continue
		}
		s, e := interval(&read.Matches[i])
		readCoverage.Add(s, e)
	}
	total := float64(readCoverage.CoveredLength())
	if total <= 0 {
		return 0
	}
	threshold := percent / 100 * total

	naive := foldLCA(tree, matchIDs)

	var winners []int
	maxDepth := -1
	for id, set := range covered {
		w := float64(set.CoveredLength())
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
	for _, w := range winners {
		if w == naive {
			return naive
		}
	}
	return foldLCA(tree, winners)
}
