package classify

import (
	"bytes"
	"encoding/gob"
	"io"

	"github.com/cespare/xxhash"
	"github.com/klauspost/compress/zstd"
)

// Registry is the read-only, per-classification snapshot of known and
// disabled ids; classification snapshots are immutable for the run.
type Registry struct {
	known    map[string]map[int]bool
	disabled map[string]map[int]bool
}

// NewRegistry takes a snapshot of lib for exactly the named classifications,
// once, before streaming begins. The id sets are stored as lib hands them
// out, not copied.
func NewRegistry(lib ClassificationLibrary, names []string) *Registry {
	r := &Registry{known: map[string]map[int]bool{}, disabled: map[string]map[int]bool{}}
	for _, name := range names {
		r.known[name] = lib.KnownIDs(name)
		r.disabled[name] = lib.DisabledIDs(name)
	}
	return r
}

// NewEmptyRegistry builds a Registry with no backing library, for decoding
// a persisted snapshot cache via DecodeSnapshotCache without needing a
// live ClassificationLibrary to hand.
func NewEmptyRegistry() *Registry {
	return &Registry{known: map[string]map[int]bool{}, disabled: map[string]map[int]bool{}}
}

// KnownIDs returns the snapshot of known ids for a classification.
func (r *Registry) KnownIDs(name string) map[int]bool { return r.known[name] }

// DisabledIDs returns the snapshot of disabled ids for a classification.
func (r *Registry) DisabledIDs(name string) map[int]bool { return r.disabled[name] }

// IsKnown reports whether id is in the classification's known-id set; the
// driver folds ids for which it is false to UnassignedID.
func (r *Registry) IsKnown(name string, id int) bool {
	return r.known[name][id]
}

// snapshotCacheEntry is the gob-encoded payload persisted between runs.
type snapshotCacheEntry struct {
	Known    []int
	Disabled []int
}

// Checksum returns an xxhash digest of the registry's snapshot for a
// classification, used as a cheap equality check between a cached
// snapshot and a fresh one to detect library drift (the same xxhash use
// as UpdateLog.Checksum).
func (r *Registry) Checksum(name string) uint64 {
	h := xxhash.New()
	for _, id := range sortedKeys(r.known[name]) {
		writeInt(h, id)
	}
	for _, id := range sortedKeys(r.disabled[name]) {
		writeInt(h, id)
	}
	return h.Sum64()
}

func writeInt(w io.Writer, v int) {
	var buf [8]byte
	u := uint64(int64(v))
	for i := 0; i < 8; i++ {
		buf[i] = byte(u >> (8 * i))
	}
	w.Write(buf[:])
}

// EncodeSnapshotCache serializes the named classification's snapshot as
// zstd-compressed gob, for an on-disk cache a caller can keep between runs
// against the same classification library version (see cmd/megan-ce's
// --snapshot-cache-dir, which calls this after every run and compares the
// decoded checksum against the fresh one on the next).
func EncodeSnapshotCache(r *Registry, name string) ([]byte, error) {
	entry := snapshotCacheEntry{
		Known:    sortedKeys(r.known[name]),
		Disabled: sortedKeys(r.disabled[name]),
	}
	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(entry); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	zw, err := zstd.NewWriter(&out)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(raw.Bytes()); err != nil {
		zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// DecodeSnapshotCache reverses EncodeSnapshotCache and merges the result
// into the registry under name.
func DecodeSnapshotCache(r *Registry, name string, data []byte) error {
	zr, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer zr.Close()
	raw, err := io.ReadAll(zr)
	if err != nil {
		return err
	}
	var entry snapshotCacheEntry
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&entry); err != nil {
		return err
	}
	r.known[name] = toSet(entry.Known)
	r.disabled[name] = toSet(entry.Disabled)
	return nil
}

func sortedKeys(m map[int]bool) []int {
	out := make([]int, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

func toSet(ids []int) map[int]bool {
	m := make(map[int]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}
