package classify

import (
	"context"
	"encoding/binary"

	"github.com/cespare/xxhash"
)

// UpdateLogEntry is one (readUid, weight, classIds[]) row. In
// NaiveLongRead mode a single read may produce several entries sharing
// UID but differing in Weight/ClassIDs.
type UpdateLogEntry struct {
	UID      int64
	Weight   float64
	ClassIDs []int
}

// UpdateLog accumulates per-read assignments and exposes the weight
// histograms and rewrite layer the min-support corrector needs. AddItem is
// append-only; rewrites recorded via AppendClass are a separate layer
// composed only at Commit time.
type UpdateLog struct {
	numClassifications int
	entries            []UpdateLogEntry
	rewrites           []map[int]int // one fromId->toId map per classification
}

// NewUpdateLog creates an empty log for numClassifications classifications.
func NewUpdateLog(numClassifications int) *UpdateLog {
	rewrites := make([]map[int]int, numClassifications)
	for c := range rewrites {
		rewrites[c] = map[int]int{}
	}
	return &UpdateLog{numClassifications: numClassifications, rewrites: rewrites}
}

// AddItem appends a new entry. weight must be >= 0.
func (u *UpdateLog) AddItem(uid int64, weight float64, classIDs []int) {
	cp := make([]int, len(classIDs))
	copy(cp, classIDs)
	u.entries = append(u.entries, UpdateLogEntry{UID: uid, Weight: weight, ClassIDs: cp})
}

// Entries returns the raw entries. Callers must not mutate the result.
func (u *UpdateLog) Entries() []UpdateLogEntry {
	return u.entries
}

// ClassIDToWeightMap aggregates the sum of weights grouped by classIds[c],
// applying any rewrites already recorded for c via AppendClass: the
// min-support corrector reads this map to decide further redirects, so
// already-redirected weight must show up under its new id.
func (u *UpdateLog) ClassIDToWeightMap(c int) map[int]float64 {
	out := map[int]float64{}
	rewrite := u.rewrites[c]
	for _, e := range u.entries {
		id := e.ClassIDs[c]
		id = resolve(rewrite, id)
		out[id] += e.Weight
	}
	return out
}

// resolve follows a rewrite chain to its fixed point.
func resolve(rewrite map[int]int, id int) int {
	seen := map[int]bool{}
	for {
		to, ok := rewrite[id]
		if !ok || to == id || seen[id] {
			return id
		}
		seen[id] = true
		id = to
	}
}

// AppendClass records that, in classification c, every entry currently
// carrying fromId shall be reinterpreted as toId at commit time.
func (u *UpdateLog) AppendClass(c, fromID, toID int) {
	u.rewrites[c][fromID] = toID
}

// Commit applies all recorded rewrites to the entries in place, then hands
// the result to the connector. This is the only operation that may do I/O.
func (u *UpdateLog) Commit(ctx context.Context, connector Connector, classificationNames []string) error {
	for i := range u.entries {
		for c := range u.entries[i].ClassIDs {
			u.entries[i].ClassIDs[c] = resolve(u.rewrites[c], u.entries[i].ClassIDs[c])
		}
	}
	return connector.UpdateClassifications(ctx, classificationNames, u)
}

// Checksum hashes the committed entry stream with xxhash, so tests (and
// operators re-running a sample) can check two runs produced byte-identical
// update logs without diffing giant slices.
func (u *UpdateLog) Checksum() uint64 {
	h := xxhash.New()
	var buf [8]byte
	for _, e := range u.entries {
		binary.LittleEndian.PutUint64(buf[:], uint64(e.UID))
		h.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], uint64(int64(e.Weight*1e6)))
		h.Write(buf[:])
		for _, id := range e.ClassIDs {
			binary.LittleEndian.PutUint64(buf[:], uint64(int64(id)))
			h.Write(buf[:])
		}
	}
	return h.Sum64()
}
