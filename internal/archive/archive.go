// Package archive is the production archive connector: it loads a
// gob-encoded bundle (reads, matches, and classification trees produced
// upstream by an aligner/importer step, since alignment itself is outside
// this module's scope) and implements classify.Connector and
// classify.ClassificationLibrary against it.
package archive

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"os"

	"github.com/museu-nacional/megan-ce/internal/classify"
)

// Bundle is the payload an upstream aligner/importer step produces in
// place of a real RMA6 archive.
type Bundle struct {
	Reads       []classify.ReadBlock
	Paired      bool
	TreeParents map[string]map[int]int // classification name -> child->parent
	TreeRoots   map[string]int
	Known       map[string]map[int]bool
	Disabled    map[string]map[int]bool
}

// Load reads and gob-decodes a bundle file.
func Load(path string) (*Bundle, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bundle: %w", err)
	}
	var b Bundle
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&b); err != nil {
		return nil, fmt.Errorf("decode bundle: %w", err)
	}
	return &b, nil
}

// Tree is a small, explicit parent-pointer classification tree decoded
// from a bundle's TreeParents/TreeRoots.
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
// per-classification known/disabled id sets, built from a Bundle.
type Library struct {
	Trees    map[string]*Tree
	Known    map[string]map[int]bool
	Disabled map[string]map[int]bool
}

// NewLibrary builds a Library for the given classification names from a
// loaded bundle.
func NewLibrary(b *Bundle, names []string) *Library {
	lib := &Library{
		Trees:    map[string]*Tree{},
		Known:    map[string]map[int]bool{},
		Disabled: map[string]map[int]bool{},
	}
	for _, name := range names {
		lib.Trees[name] = NewTree(b.TreeRoots[name], b.TreeParents[name])
		lib.Known[name] = b.Known[name]
		lib.Disabled[name] = b.Disabled[name]
	}
	return lib
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

// Iterator is a fixed-order classify.ReadIterator over a bundle's reads.
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
		return nil, fmt.Errorf("archive: no more reads")
	}
	r := it.reads[it.pos]
	it.pos++
	return r, nil
}

func (it *Iterator) Progress() int64    { return int64(it.pos) }
func (it *Iterator) MaxProgress() int64 { return int64(len(it.reads)) }
func (it *Iterator) Close() error       { return nil }

// MateReader seeks by UID into the same bundle read set, giving the driver
// a second independent handle onto the reads for mate lookups.
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
		return fmt.Errorf("archive: no read with uid %d", uid)
	}
	m.found = r
	return nil
}

func (m *MateReader) ReadBlock(minScore, maxExpected float64, wantMatches, wantSequences bool) (*classify.ReadBlock, error) {
	if m.found == nil {
		return nil, fmt.Errorf("archive: ReadBlock called before Seek")
	}
	return m.found, nil
}

func (m *MateReader) Close() error { return nil }

// Connector is the bundle-backed classify.Connector: it streams a bundle's
// reads and records the classifications the pipeline commits back.
type Connector struct {
	reads      []*classify.ReadBlock
	pairedMode bool

	committed     []classify.UpdateLogEntry
	sizesByName   map[string]int
	numberOfReads int
}

// NewConnector wraps a bundle's reads as a Connector.
func NewConnector(reads []*classify.ReadBlock, paired bool) *Connector {
	return &Connector{reads: reads, pairedMode: paired, sizesByName: map[string]int{}}
}

func (c *Connector) AllReadsIterator(minScore, maxExpected float64, wantMatches, wantSequences bool) (classify.ReadIterator, error) {
	return NewIterator(c.reads), nil
}

func (c *Connector) OpenMateReader() (classify.MateReader, error) {
	return NewMateReader(c.reads), nil
}

func (c *Connector) IsRMA6() bool { return c.pairedMode }

func (c *Connector) UpdateClassifications(ctx context.Context, classificationNames []string, log *classify.UpdateLog) error {
	c.committed = log.Entries()
	for idx, name := range classificationNames {
		seen := map[int]bool{}
		for _, e := range c.committed {
			if idx < len(e.ClassIDs) {
				seen[e.ClassIDs[idx]] = true
			}
		}
		c.sizesByName[name] = len(seen)
	}
	return nil
}

func (c *Connector) SetNumberOfReads(n int) error {
	c.numberOfReads = n
	return nil
}

func (c *Connector) ClassificationSize(name string) int {
	return c.sizesByName[name]
}
