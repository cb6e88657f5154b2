package classify

import "context"

// Sentinel class ids. These are part of the persisted contract with the
// archive and must match the archive's own constants exactly -- they are
// not free to renumber.
const (
	UnassignedID    = 0
	NoHitsID        = -1
	LowComplexityID = -4
)

// MatchBlock is one local alignment of a read against a reference.
// AlignedQueryStart/End are 1-based and inclusive; they may be reversed
// when the match is on the reverse strand, in which case the aligned
// length is |End-Start|+1.
type MatchBlock struct {
	BitScore          float64
	Expected          float64
	PercentIdentity   float64
	AlignedQueryStart int
	AlignedQueryEnd   int

	// ClassIDs maps a classification name to the id this match carries for
	// that classification. 0 means "no id in this classification".
	ClassIDs map[string]int
}

// ClassID returns the match's id in the given classification, or 0 if it
// carries none.
func (m *MatchBlock) ClassID(classification string) int {
	if m.ClassIDs == nil {
		return 0
	}
	return m.ClassIDs[classification]
}

// AlignedLength is |End-Start|+1.
func (m *MatchBlock) AlignedLength() int {
	d := m.AlignedQueryEnd - m.AlignedQueryStart
	if d < 0 {
		d = -d
	}
	return d + 1
}

// ReadBlock is one read and its precomputed matches, as produced by the
// archive connector. It lives for exactly one pipeline iteration.
type ReadBlock struct {
	UID        int64
	Name       string
	Header     string
	Length     int
	Weight     int
	Complexity float64
	MateUID    int64
	Matches    []MatchBlock
}

// ReadIterator streams ReadBlocks out of an archive in a fixed order.
// Implemented by the archive connector; the reference one is external to
// this module.
type ReadIterator interface {
	HasNext() bool
	Next() (*ReadBlock, error)
	Progress() int64
	MaxProgress() int64
	Close() error
}

// MateReader opens a second, independent read-only handle onto the same
// archive file so the driver can seek to a mate's offset without
// disturbing the primary iterator. Only meaningful for rma6 archives.
type MateReader interface {
	Seek(uid int64) error
	ReadBlock(minScore, maxExpected float64, wantMatches, wantSequences bool) (*ReadBlock, error)
	Close() error
}

// Connector is the archive connector consumed by the driver.
type Connector interface {
	AllReadsIterator(minScore, maxExpected float64, wantMatches, wantSequences bool) (ReadIterator, error)
	OpenMateReader() (MateReader, error)
	IsRMA6() bool
	UpdateClassifications(ctx context.Context, classificationNames []string, log *UpdateLog) error
	SetNumberOfReads(n int) error
	ClassificationSize(name string) int
}

// ClassificationTree is the read-only tree view (parent/LCA/depth) for one
// classification, consumed by the assignment strategies and the
// min-support corrector.
type ClassificationTree interface {
	Root() int
	Parent(id int) int
	Depth(id int) int
	LCA(a, b int) int
}

// ClassificationLibrary hands out ClassificationTree views plus the
// known/disabled id sets for each active classification name.
type ClassificationLibrary interface {
	Tree(name string) ClassificationTree
	KnownIDs(name string) map[int]bool
	DisabledIDs(name string) map[int]bool
}
