package classify

// ComputeActiveMatches selects the indices of read.Matches passing the
// score/expected/identity/classification predicates and the top-percent
// cutoff, writing true into out[i] for each kept index. out is resized
// (and its old contents overwritten) to len(read.Matches); callers reuse
// the same slice across reads to avoid reallocating the mask per read.
func ComputeActiveMatches(minScore, topPercent, maxExpected, minPercentIdentity float64, read *ReadBlock, classification string, out *[]bool) {
	n := len(read.Matches)
	if cap(*out) < n {
		*out = make([]bool, n)
	} else {
		*out = (*out)[:n]
	}
	mask := *out
	for i := range mask {
		mask[i] = false
	}

	bestScore := -1.0
	for i := range read.Matches {
		m := &read.Matches[i]
		if !passesBaseFilters(m, minScore, maxExpected, minPercentIdentity, classification) {
			continue
		}
		mask[i] = true
		if m.BitScore > bestScore {
			bestScore = m.BitScore
		}
	}

	if bestScore < 0 || topPercent >= 100 {
		return
	}
	threshold := bestScore * (1 - topPercent/100)
	for i := range read.Matches {
		if mask[i] && read.Matches[i].BitScore < threshold {
			mask[i] = false
		}
	}
}

func passesBaseFilters(m *MatchBlock, minScore, maxExpected, minPercentIdentity float64, classification string) bool {
	if m.BitScore < minScore {
		return false
	}
	if m.Expected > maxExpected {
		return false
	}
	// percentIdentity <= 0 means "unknown" and always passes.
	if m.PercentIdentity > 0 && m.PercentIdentity < minPercentIdentity {
		return false
	}
	if m.ClassID(classification) <= 0 {
		return false
	}
	return true
}

// ActiveIndices returns the set indices of an active-match mask, in input
// order (filtering is stable).
func ActiveIndices(mask []bool) []int {
	out := make([]int, 0, len(mask))
	for i, v := range mask {
		if v {
			out = append(out, i)
		}
	}
	return out
}

// AnyActive reports whether the mask has at least one set bit.
func AnyActive(mask []bool) bool {
	for _, v := range mask {
		if v {
			return true
		}
	}
	return false
}
