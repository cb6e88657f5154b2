package classify

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type stubLibrary struct {
	known    map[string]map[int]bool
	disabled map[string]map[int]bool
}

func (l *stubLibrary) Tree(string) ClassificationTree { return nil }
func (l *stubLibrary) KnownIDs(name string) map[int]bool {
	return l.known[name]
}
func (l *stubLibrary) DisabledIDs(name string) map[int]bool {
	return l.disabled[name]
}

func TestRegistry_SnapshotsOnlyNamedClassifications(t *testing.T) {
	lib := &stubLibrary{
		known: map[string]map[int]bool{
			"Taxonomy": {562: true, 622: true},
			"KEGG":     {1: true},
		},
	}
	r := NewRegistry(lib, []string{"Taxonomy"})
	require.True(t, r.IsKnown("Taxonomy", 562))
	require.False(t, r.IsKnown("KEGG", 1), "KEGG was not in the requested names, so its snapshot is empty")
}

func TestRegistry_IsKnownFalseForUnrecognizedID(t *testing.T) {
	lib := &stubLibrary{known: map[string]map[int]bool{"Taxonomy": {562: true}}}
	r := NewRegistry(lib, []string{"Taxonomy"})
	require.False(t, r.IsKnown("Taxonomy", 999))
}

func TestRegistry_SnapshotSharesLibraryMapReference(t *testing.T) {
	known := map[int]bool{562: true}
	lib := &stubLibrary{known: map[string]map[int]bool{"Taxonomy": known}}
	r := NewRegistry(lib, []string{"Taxonomy"})
	known[999] = true
	require.True(t, r.IsKnown("Taxonomy", 999), "the snapshot holds the same map reference, as the library is expected to hand out an immutable view")
}

func TestRegistry_ChecksumStableForEquivalentSnapshot(t *testing.T) {
	lib := &stubLibrary{
		known:    map[string]map[int]bool{"Taxonomy": {562: true, 622: true}},
		disabled: map[string]map[int]bool{"Taxonomy": {1: true}},
	}
	a := NewRegistry(lib, []string{"Taxonomy"})
	b := NewRegistry(lib, []string{"Taxonomy"})
	require.Equal(t, a.Checksum("Taxonomy"), b.Checksum("Taxonomy"))
}

func TestRegistry_SnapshotCacheRoundTrips(t *testing.T) {
	lib := &stubLibrary{
		known:    map[string]map[int]bool{"Taxonomy": {562: true, 622: true, 1224: true}},
		disabled: map[string]map[int]bool{"Taxonomy": {1224: true}},
	}
	r := NewRegistry(lib, []string{"Taxonomy"})
	before := r.Checksum("Taxonomy")

	data, err := EncodeSnapshotCache(r, "Taxonomy")
	require.NoError(t, err)

	fresh := NewRegistry(&stubLibrary{known: map[string]map[int]bool{}, disabled: map[string]map[int]bool{}}, nil)
	require.NoError(t, DecodeSnapshotCache(fresh, "Taxonomy", data))

	require.Equal(t, before, fresh.Checksum("Taxonomy"))
	require.True(t, fresh.IsKnown("Taxonomy", 562))
	require.Equal(t, map[int]bool{1224: true}, fresh.DisabledIDs("Taxonomy"))
}
