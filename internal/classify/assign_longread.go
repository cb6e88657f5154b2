package classify

// geneSegment is one non-overlapping region of the query assigned to a
// gene during long-read segmentation ("LCA-naive-long-read").
type geneSegment struct {
	start, end int
	indices    []int
}

func interval(m *MatchBlock) (int, int) {
	s, e := m.AlignedQueryStart, m.AlignedQueryEnd
	if e < s {
		s, e = e, s
	}
	return s, e
}

func overlapFraction(s1, e1, s2, e2 int) float64 {
	lo := s1
	if s2 > lo {
		lo = s2
	}
	hi := e1
	if e2 < hi {
		hi = e2
	}
	overlap := hi - lo + 1
	if overlap <= 0 {
		return 0
	}
	len1 := e1 - s1 + 1
	len2 := e2 - s2 + 1
	shorter := len1
	if len2 < shorter {
		shorter = len2
	}
	if shorter <= 0 {
		return 0
	}
	return float64(overlap) / float64(shorter)
}

// segmentReads partitions the active matches into non-overlapping gene
// segments, greedily by descending bit-score: a match either joins the
// existing segment it overlaps most by more than 50% of the shorter
// interval, or starts a new segment. Segment order is anchor-selection
// order, i.e. highest-scoring-first, so segments[0] is the "primary"
// segment.
func segmentReads(read *ReadBlock, mask []bool) []geneSegment {
	type cand struct {
		idx        int
		start, end int
		score      float64
	}
	var cands []cand
	for i, active := range mask {
		if !active {
			continue
		}
		s, e := interval(&read.Matches[i])
		cands = append(cands, cand{i, s, e, read.Matches[i].BitScore})
	}
	for i := 1; i < len(cands); i++ {
		for j := i; j > 0 && cands[j-1].score < cands[j].score; j-- {
			cands[j-1], cands[j] = cands[j], cands[j-1]
		}
	}

	var segments []geneSegment
	for _, c := range cands {
		bestSeg, bestFrac := -1, 0.0
		for si := range segments {
			f := overlapFraction(c.start, c.end, segments[si].start, segments[si].end)
			if f > bestFrac {
				bestFrac, bestSeg = f, si
			}
		}
		if bestSeg >= 0 && bestFrac > 0.5 {
			seg := &segments[bestSeg]
			seg.indices = append(seg.indices, c.idx)
			if c.start < seg.start {
				seg.start = c.start
			}
			if c.end > seg.end {
				seg.end = c.end
			}
			continue
		}
		segments = append(segments, geneSegment{start: c.start, end: c.end, indices: []int{c.idx}})
	}
	return segments
}

// segmentClassIDs computes one id per segment for the given classification,
// either by LCA across the segment's match ids or by best-hit within the
// segment.
func segmentClassIDs(tree ClassificationTree, read *ReadBlock, segments []geneSegment, classification string, useLCA bool) []int {
	ids := make([]int, len(segments))
	for i, seg := range segments {
		if useLCA {
			var matchIDs []int
			for _, idx := range seg.indices {
				if id := read.Matches[idx].ClassID(classification); id > 0 {
					matchIDs = append(matchIDs, id)
				}
			}
			ids[i] = foldLCA(tree, matchIDs)
		} else {
			best := -1.0
			id := 0
			for _, idx := range seg.indices {
				m := &read.Matches[idx]
				if m.BitScore > best {
					best = m.BitScore
					id = m.ClassID(classification)
				}
			}
			ids[i] = id
		}
	}
	return ids
}

// LongReadAssignment is the result of segmenting a read for one
// classification under NaiveLongRead mode.
type LongReadAssignment struct {
	Primary      int
	Others       [][]int
	SegmentCount int
}

// naiveLongReadTaxID computes the taxonomic id under NaiveLongRead: the
// LCA across every segment's own LCA.
func naiveLongReadTaxID(tree ClassificationTree, read *ReadBlock, mask []bool) int {
	segments := segmentReads(read, mask)
	if len(segments) == 0 {
		return 0
	}
	segIDs := segmentClassIDs(tree, read, segments, TaxonomyName, true)
	return foldLCA(tree, segIDs)
}

// naiveLongReadFunctional computes a multi-gene assignment for a
// non-taxonomy classification: LCA per segment if the classification uses
// LCA, best-hit per segment otherwise (best-hit-multi-gene).
func naiveLongReadFunctional(tree ClassificationTree, read *ReadBlock, mask []bool, classification string, useLCA bool) LongReadAssignment {
	segments := segmentReads(read, mask)
	if len(segments) == 0 {
		return LongReadAssignment{}
	}
	ids := segmentClassIDs(tree, read, segments, classification, useLCA)

	others := make([][]int, 0, len(ids)-1)
	for _, id := range ids[1:] {
		others = append(others, []int{id})
	}
	return LongReadAssignment{
		Primary:      ids[0],
		Others:       others,
		SegmentCount: len(segments),
	}
}
