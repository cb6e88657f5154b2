// Package testarchive is an in-memory stand-in for the archive connector,
// an external collaborator outside this module. It exists only so the
// classify package's tests can drive Pipeline.Run end to end without a
// real RMA6 file; production code uses internal/archive instead.
package testarchive

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"

	"github.com/cespare/xxhash"

	"github.com/museu-nacional/megan-ce/internal/classify"
)

// Tree is a small, explicit parent-pointer tree good enough to exercise
// LCA/depth/ancestor logic in tests (classify.ClassificationTree).
type Tree struct {
	parent map[int]int
	depth  map[int]int
	root   int
}

// NewTree builds a Tree from a set of (child, parent) edges rooted at root.
// Depths are derived by walking to root; edges must not contain cycles.
func NewTree(root int, edges map[int]int) *Tree {
	t := &Tree{parent: map[int]int{}, depth: map[int]int{root: 0}, root: root}
	for c, p := range edges {
		t.parent[c] = p
	}
	for c := range edges {
		t.depth[c] = t.depthOf(c)
	}
	return t
}

func (t *Tree) depthOf(id int) int {
	if id == t.root {
		return 0
	}
	if d, ok := t.depth[id]; ok {
		return d
	}
	d := 1 + t.depthOf(t.Parent(id))
	t.depth[id] = d
	return d
}

func (t *Tree) Root() int { return t.root }

func (t *Tree) Parent(id int) int {
	if id == t.root {
		return t.root
	}
	if p, ok := t.parent[id]; ok {
		return p
	}
	return t.root
}

func (t *Tree) Depth(id int) int { return t.depthOf(id) }

// LCA collects b's path to the root and returns the first id on a's path
// to the root that also lies on it.
func (t *Tree) LCA(a, b int) int {
	pa := t.pathToRoot(a)
	pb := t.pathToRoot(b)
	setB := map[int]bool{}
	for _, id := range pb {
		setB[id] = true
	}
	for _, id := range pa {
		if setB[id] {
			return id
		}
	}
	return t.root
}

func (t *Tree) pathToRoot(id int) []int {
	var out []int
	for {
		out = append(out, id)
		if id == t.root {
			return out
		}
		id = t.Parent(id)
	}
}

// Library hands out a single shared Tree per classification name, plus
// per-classification known/disabled id sets, implementing
// classify.ClassificationLibrary for tests.
type Library struct {
	Trees    map[string]*Tree
	Known    map[string]map[int]bool
	Disabled map[string]map[int]bool
}

func NewLibrary() *Library {
	return &Library{
		Trees:    map[string]*Tree{},
		Known:    map[string]map[int]bool{},
		Disabled: map[string]map[int]bool{},
	}
}

func (l *Library) Tree(name string) classify.ClassificationTree {
	return l.Trees[name]
}

func (l *Library) KnownIDs(name string) map[int]bool {
	if m := l.Known[name]; m != nil {
		return m
	}
	return map[int]bool{}
}

func (l *Library) DisabledIDs(name string) map[int]bool {
	if m := l.Disabled[name]; m != nil {
		return m
	}
	return map[int]bool{}
}

// Iterator is a fixed-order, in-memory classify.ReadIterator over a slice
// of reads prepared ahead of time by a test.
type Iterator struct {
	reads []*classify.ReadBlock
	pos   int
}

func NewIterator(reads []*classify.ReadBlock) *Iterator {
	return &Iterator{reads: reads}
}

func (it *Iterator) HasNext() bool { return it.pos < len(it.reads) }

func (it *Iterator) Next() (*classify.ReadBlock, error) {
	if !it.HasNext() {
		return nil, fmt.Errorf("testarchive: no more reads")
	}
	r := it.reads[it.pos]
	it.pos++
	return r, nil
}

func (it *Iterator) Progress() int64    { return int64(it.pos) }
func (it *Iterator) MaxProgress() int64 { return int64(len(it.reads)) }
func (it *Iterator) Close() error       { return nil }

// MateReader seeks by UID into the same fixed read set, modeling the
// second independent handle the driver needs for mate lookups.
type MateReader struct {
	byUID map[int64]*classify.ReadBlock
	found *classify.ReadBlock
}

func NewMateReader(reads []*classify.ReadBlock) *MateReader {
	m := &MateReader{byUID: map[int64]*classify.ReadBlock{}}
	for _, r := range reads {
		m.byUID[r.UID] = r
	}
	return m
}

func (m *MateReader) Seek(uid int64) error {
	r, ok := m.byUID[uid]
	if !ok {
		return fmt.Errorf("testarchive: no read with uid %d", uid)
	}
	m.found = r
	return nil
}

func (m *MateReader) ReadBlock(minScore, maxExpected float64, wantMatches, wantSequences bool) (*classify.ReadBlock, error) {
	if m.found == nil {
		return nil, fmt.Errorf("testarchive: ReadBlock called before Seek")
	}
	return m.found, nil
}

func (m *MateReader) Close() error { return nil }

// Connector is the in-memory classify.Connector: it records every commit
// so a test can assert on the final committed classIds per read.
type Connector struct {
	Reads      []*classify.ReadBlock
	PairedMode bool

	Committed       []classify.UpdateLogEntry
	SizesByName     map[string]int
	NumberOfReads   int
}

func NewConnector(reads []*classify.ReadBlock, paired bool) *Connector {
	return &Connector{Reads: reads, PairedMode: paired, SizesByName: map[string]int{}}
}

func (c *Connector) AllReadsIterator(minScore, maxExpected float64, wantMatches, wantSequences bool) (classify.ReadIterator, error) {
	return NewIterator(c.Reads), nil
}

func (c *Connector) OpenMateReader() (classify.MateReader, error) {
	return NewMateReader(c.Reads), nil
}

func (c *Connector) IsRMA6() bool { return c.PairedMode }

func (c *Connector) UpdateClassifications(ctx context.Context, classificationNames []string, log *classify.UpdateLog) error {
	c.Committed = log.Entries()
	for _, name := range classificationNames {
		idx := -1
		for i, n := range classificationNames {
			if n == name {
				idx = i
				break
			}
		}
		seen := map[int]bool{}
		for _, e := range c.Committed {
			if idx >= 0 && idx < len(e.ClassIDs) {
				seen[e.ClassIDs[idx]] = true
			}
		}
		c.SizesByName[name] = len(seen)
	}
	return nil
}

func (c *Connector) SetNumberOfReads(n int) error {
	c.NumberOfReads = n
	return nil
}

func (c *Connector) ClassificationSize(name string) int {
	return c.SizesByName[name]
}

// fixture is the gob-encoded payload used to round-trip a read set between
// test runs, the same way kfilt.go's BKTree.Save/LoadBKTree round-trips an
// index.
type fixture struct {
	Reads []classify.ReadBlock
}

// Encode serializes a read set; Checksum over the same bytes gives tests a
// cheap way to assert a fixture hasn't drifted.
func Encode(reads []*classify.ReadBlock) ([]byte, error) {
	f := fixture{Reads: make([]classify.ReadBlock, len(reads))}
	for i, r := range reads {
		f.Reads[i] = *r
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reverses Encode.
func Decode(data []byte) ([]*classify.ReadBlock, error) {
	var f fixture
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&f); err != nil {
		return nil, err
	}
	out := make([]*classify.ReadBlock, len(f.Reads))
	for i := range f.Reads {
		out[i] = &f.Reads[i]
	}
	return out, nil
}

// Checksum hashes the encoded fixture bytes with xxhash, reusing the same
// digest family classify.UpdateLog.Checksum uses for its own determinism
// check.
func Checksum(data []byte) uint64 {
	return xxhash.Sum64(data)
}
