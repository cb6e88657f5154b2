package classify

// LCAAlgorithm selects the taxonomy assignment strategy.
type LCAAlgorithm int

const (
	Naive LCAAlgorithm = iota
	Weighted
	NaiveLongRead
	CoverageLongRead
)

func (a LCAAlgorithm) String() string {
	switch a {
	case Naive:
		return "Naive"
	case Weighted:
		return "Weighted"
	case NaiveLongRead:
		return "NaiveLongRead"
	case CoverageLongRead:
		return "CoverageLongRead"
	default:
		return "Unknown"
	}
}

// Params holds the invocation-time parameters of a run, immutable for its
// duration.
type Params struct {
	// Filtering
	MinScore              float64
	TopPercent            float64
	MaxExpected           float64
	MinPercentIdentity    float64
	MinComplexity         float64
	MinPercentReadToCover float64

	// Mode
	LCAAlgorithm          LCAAlgorithm
	UseIdentityFilter     bool
	LongReads             bool
	PairedReads           bool
	UseWeightedReadCounts bool
	MinSupport            int
	MinSupportPercent     float64
	WeightedLCAPercent    float64

	// Classifications active for this run, in processing order. Taxonomy,
	// if present, must be named exactly "Taxonomy".
	ClassificationNames []string
	// UseLCA[c] mirrors doc's "<name>UseLCA" property for each non-taxonomy
	// classification named in ClassificationNames.
	UseLCA map[string]bool

	// IdentityRankDepths maps a taxonomic rank name to its depth in the
	// taxonomy tree, for the 16S identity clamp. Rank depth is a property
	// of the classification library, an external collaborator; the
	// pipeline only needs the six depths it clamps to.
	IdentityRankDepths map[string]int
}

// identityFilterRanks are the percent-identity thresholds used to clamp a
// taxonomic LCA for likely-16S reads, ordered deepest (species) to
// shallowest (phylum) rank, so the first threshold met is the deepest
// rank the identity supports.
var identityFilterRanks = []struct {
	Rank        string
	MinIdentity float64
}{
	{"species", 97},
	{"genus", 95},
	{"family", 90},
	{"order", 85},
	{"class", 80},
	{"phylum", 75},
}

// TaxonomyName is the reserved classification name for taxonomy.
const TaxonomyName = "Taxonomy"

// EffectiveTopPercent returns the top-percent threshold actually used for
// filtering matches: in NaiveLongRead mode topPercent is forced to 100
// before filtering.
func (p Params) EffectiveTopPercent() float64 {
	if p.LCAAlgorithm == NaiveLongRead {
		return 100
	}
	return p.TopPercent
}
