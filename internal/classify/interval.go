package classify

import "sort"

// IntervalSet accumulates query-coordinate intervals and reports the length
// of their union. It is reused across reads -- Clear resets it without
// reallocating the backing slice -- since the coverage gate inserts
// incrementally and needs to early-exit cheaply.
//
// A sorted-by-start slice with merge-on-query is plenty for the typical
// few-hundred-matches-per-read case; an interval tree is only needed at a
// scale this pipeline doesn't see.
type IntervalSet struct {
	starts  []int
	ends    []int
	sorted  bool
	covered int
	dirty   bool
}

// Clear empties the set for reuse on the next read.
func (s *IntervalSet) Clear() {
	s.starts = s.starts[:0]
	s.ends = s.ends[:0]
	s.sorted = true
	s.covered = 0
	s.dirty = false
}

// Add inserts the closed interval [start, end] (start/end may arrive in
// either order; callers pass aligned query coordinates which may be
// reversed on the reverse strand).
func (s *IntervalSet) Add(start, end int) {
	if end < start {
		start, end = end, start
	}
	s.starts = append(s.starts, start)
	s.ends = append(s.ends, end)
	s.dirty = true
}

// CoveredLength returns the length of the union of all inserted intervals.
func (s *IntervalSet) CoveredLength() int {
	if s.dirty {
		s.recompute()
	}
	return s.covered
}

func (s *IntervalSet) recompute() {
	n := len(s.starts)
	if n == 0 {
		s.covered = 0
		s.dirty = false
		return
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool { return s.starts[idx[i]] < s.starts[idx[j]] })

	covered := 0
	curStart := s.starts[idx[0]]
	curEnd := s.ends[idx[0]]
	for k := 1; k < n; k++ {
		i := idx[k]
		if s.starts[i] > curEnd+1 {
			covered += curEnd - curStart + 1
			curStart, curEnd = s.starts[i], s.ends[i]
		} else if s.ends[i] > curEnd {
			curEnd = s.ends[i]
		}
	}
	covered += curEnd - curStart + 1
	s.covered = covered
	s.dirty = false
}
