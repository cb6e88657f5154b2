package classify

// strategyMode tags which assignment strategy a classification uses,
// modeling the Java IAssignmentAlgorithm hierarchy as one Go type.
type strategyMode int

const (
	modeLCANaive strategyMode = iota
	modeLCAWeighted
	modeLCANaiveLongRead
	modeLCACoverageLongRead
	modeBestHit
	modeBestHitMultiGene
	modeLCA // non-taxonomy plain LCA
)

// Strategy is the uniform entry point for all assignment strategies.
type Strategy struct {
	mode           strategyMode
	classification string
	isTaxonomy     bool

	useIdentityFilter  bool
	identityRankDepths map[string]int
	weightedLCAPercent float64

	lastLongRead LongReadAssignment
}

// NewTaxonomyStrategy builds the strategy for the Taxonomy classification,
// selected by the configured LCA algorithm.
func NewTaxonomyStrategy(p Params) *Strategy {
	var mode strategyMode
	switch p.LCAAlgorithm {
	case Weighted:
		mode = modeLCAWeighted
	case NaiveLongRead:
		mode = modeLCANaiveLongRead
	case CoverageLongRead:
		mode = modeLCACoverageLongRead
	default:
		mode = modeLCANaive
	}
	return &Strategy{
		mode:               mode,
		classification:     TaxonomyName,
		isTaxonomy:         true,
		useIdentityFilter:  p.UseIdentityFilter,
		identityRankDepths: p.IdentityRankDepths,
		weightedLCAPercent: p.WeightedLCAPercent,
	}
}

// NewClassificationStrategy builds the strategy for one non-taxonomy
// classification: plain LCA if configured for it, segmented best-hit under
// long-read mode, or plain best-hit otherwise.
func NewClassificationStrategy(name string, useLCA, usingNaiveLongRead bool) *Strategy {
	var mode strategyMode
	switch {
	case useLCA:
		mode = modeLCA
	case usingNaiveLongRead:
		mode = modeBestHitMultiGene
	default:
		mode = modeBestHit
	}
	return &Strategy{mode: mode, classification: name}
}

// ComputeID computes the primary class id for this read under the active
// matches in mask.
func (s *Strategy) ComputeID(tree ClassificationTree, read *ReadBlock, mask []bool) int {
	s.lastLongRead = LongReadAssignment{}
	switch s.mode {
	case modeLCANaive:
		return naiveLCA(tree, read, mask, s.useIdentityFilter, s.identityRankDepths)
	case modeLCAWeighted:
		return weightedLCA(tree, read, mask, s.weightedLCAPercent)
	case modeLCANaiveLongRead:
		return naiveLongReadTaxID(tree, read, mask)
	case modeLCACoverageLongRead:
		return coverageLongReadLCA(tree, read, mask, s.weightedLCAPercent)
	case modeBestHit:
		return bestHit(read, mask, s.classification)
	case modeBestHitMultiGene:
		s.lastLongRead = naiveLongReadFunctional(tree, read, mask, s.classification, false)
		return s.lastLongRead.Primary
	case modeLCA:
		return naiveLCAForClassification(tree, read, mask, s.classification)
	default:
		return 0
	}
}

// ComputeLongReadLCA runs the segmented-LCA variant for a non-taxonomy,
// LCA-enabled classification under NaiveLongRead mode: each segment emits
// a potentially distinct id.
func (s *Strategy) ComputeLongReadLCA(tree ClassificationTree, read *ReadBlock, mask []bool) int {
	s.lastLongRead = naiveLongReadFunctional(tree, read, mask, s.classification, true)
	return s.lastLongRead.Primary
}

// OtherClassIDs returns the extra segment assignments recorded by the last
// ComputeID/ComputeLongReadLCA call, and how many segments were assigned.
func (s *Strategy) OtherClassIDs() ([][]int, int) {
	return s.lastLongRead.Others, s.lastLongRead.SegmentCount
}
