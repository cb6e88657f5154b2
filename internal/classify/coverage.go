package classify

// EnsureCovered implements the coverage gate: a read passes if its active
// matches cover enough of its length, either by a single long-enough match
// (short-read mode) or by their interval union (long-read mode, intervals
// non-nil).
//
// The Java reference computes Math.abs(start-start), which is always zero
// and makes the short-read single-match check a no-op -- almost certainly
// a bug. This reimplements the check with the read block's actual aligned
// length (|end-start|+1), the documented divergence.
func EnsureCovered(minPercent float64, read *ReadBlock, activeMask []bool, intervals *IntervalSet) bool {
	required := int(0.01 * minPercent * float64(read.Length))
	if required == 0 {
		return true
	}

	if intervals == nil {
		for i, active := range activeMask {
			if !active {
				continue
			}
			if read.Matches[i].AlignedLength() >= required {
				return true
			}
		}
		return false
	}

	intervals.Clear()
	for i, active := range activeMask {
		if !active {
			continue
		}
		m := &read.Matches[i]
		intervals.Add(m.AlignedQueryStart, m.AlignedQueryEnd)
		if intervals.CoveredLength() >= required {
			return true
		}
	}
	return false
}
