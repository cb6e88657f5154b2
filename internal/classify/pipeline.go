package classify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/museu-nacional/megan-ce/internal/progress"
)

// ErrCancelled is returned by Run when the user cancels before commit; the
// archive is left untouched.
var ErrCancelled = errors.New("classification cancelled")

// Summary is the per-run statistics the driver accumulates, and the basis
// of the diagnostic lines in report.go.
type Summary struct {
	ReadsFound            int64
	TotalWeight           float64
	NumberOfMatches       int64
	ReadsLowComplexity    int64
	ReadsCoverageRejected int64
	ReadsWithHits         int64
	ReadsWithoutHits      int64
	AssignedViaMate       int64

	CountAssigned     map[string]int
	CountUnassigned   map[string]int
	MinSupportChanges map[string]int
	DerivedMinSupport int
}

// Pipeline is the driver: a single pass over a sample's reads that
// orchestrates filtering, coverage, assignment, and min-support correction.
type Pipeline struct {
	params    Params
	connector Connector
	library   ClassificationLibrary
	registry  *Registry
	reporter  progress.Reporter
	cancel    func() bool

	// OnMinSupportChanges, if set, is called once per LCA-enabled
	// classification that has min-support or disabled ids in effect, with
	// its min-support/disabled-taxa redirect map, right after
	// MinSupportFilter.Apply runs and its redirects are recorded in the
	// update log. Used by callers that want to render the redirect map
	// (e.g. the --dot diagnostic) without the driver depending on
	// dot-rendering itself.
	OnMinSupportChanges func(classification string, tree ClassificationTree, changes map[int]int)
}

// NewPipeline wires a driver for one run. cancel is polled once per read;
// pass nil for "never cancel".
func NewPipeline(params Params, connector Connector, library ClassificationLibrary, reporter progress.Reporter, cancel func() bool) *Pipeline {
	if reporter == nil {
		reporter = progress.NopReporter{}
	}
	registry := NewRegistry(library, params.ClassificationNames)
	return &Pipeline{params: params, connector: connector, library: library, registry: registry, reporter: reporter, cancel: cancel}
}

// Registry returns the snapshot taken before streaming began, so a caller
// can persist or compare it between runs (see registry.go's snapshot cache).
func (p *Pipeline) Registry() *Registry { return p.registry }

// Run executes the full pipeline: stream and assign, min-support
// correction, commit, and summary sync.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	p.reporter.SetTasks("Analyzing reads & alignments", "Initialization")
	if p.params.UseIdentityFilter {
		log.Println("Using min percent-identity values for taxonomic assignment of 16S reads")
	}

	cNames := p.params.ClassificationNames
	n := len(cNames)
	taxIndex := indexOf(cNames, TaxonomyName)

	doMatePairs := p.params.PairedReads && p.connector.IsRMA6()
	if p.params.PairedReads && !p.connector.IsRMA6() {
		log.Println("WARNING: Not an RMA6 file, will ignore paired read information")
	}
	if doMatePairs {
		log.Println("Using paired reads in taxonomic assignment...")
	}

	usingNaiveLongRead := p.params.LCAAlgorithm == NaiveLongRead
	if usingNaiveLongRead && p.params.TopPercent > 0 && p.params.TopPercent < 100 {
		log.Println("Long reads: set TopPercent threshold to 100 (off)")
	}
	topPercent := p.params.EffectiveTopPercent()

	var intervals *IntervalSet
	if p.params.MinPercentReadToCover > 0 {
		log.Printf("Minimum percentage of read to be covered: %.1f%%", p.params.MinPercentReadToCover)
		if p.params.LongReads {
			intervals = &IntervalSet{}
		}
	}

	strategies := make([]*Strategy, n)
	useLCA := make([]bool, n)
	for c, name := range cNames {
		if c == taxIndex {
			strategies[c] = NewTaxonomyStrategy(p.params)
			useLCA[c] = true
		} else {
			useLCA[c] = p.params.UseLCA[name]
			strategies[c] = NewClassificationStrategy(name, useLCA[c], usingNaiveLongRead)
		}
	}

	trees := make([]ClassificationTree, n)
	for c, name := range cNames {
		trees[c] = p.library.Tree(name)
	}

	ulog := NewUpdateLog(n)
	summary := Summary{
		CountAssigned:     map[string]int{},
		CountUnassigned:   map[string]int{},
		MinSupportChanges: map[string]int{},
	}

	it, err := p.connector.AllReadsIterator(p.params.MinScore, p.params.MaxExpected, true, true)
	if err != nil {
		return summary, fmt.Errorf("open read iterator: %w", err)
	}
	defer it.Close()
	p.reporter.SetMaximum(it.MaxProgress())
	p.reporter.SetProgress(0)

	var mateReader MateReader
	if doMatePairs {
		mateReader, err = p.connector.OpenMateReader()
		if err != nil {
			return summary, fmt.Errorf("open mate reader: %w", err)
		}
		defer mateReader.Close()
	}

	var activeMask, mateMask []bool
	classIDs := make([]int, n)
	moreClassIDs := make([][][]int, n)
	multiGeneWeights := make([]float64, n)

	p.reporter.SetSubtask("Processing alignments")

	for it.HasNext() {
		if p.cancel != nil && p.cancel() {
			break
		}
		if p.reporter.IsUserCancelled() {
			break
		}

		read, err := it.Next()
		if err != nil {
			log2Caught(err)
			continue
		}

		for c := range classIDs {
			classIDs[c] = 0
			if usingNaiveLongRead {
				moreClassIDs[c] = nil
				multiGeneWeights[c] = 0
			}
		}

		if read.Weight == 0 {
			read.Weight = 1
		} else if read.Weight < 0 {
			read.Weight = 1
		}
		if p.params.LongReads {
			read.Weight *= read.Length
		}

		summary.ReadsFound++
		summary.TotalWeight += float64(read.Weight)
		summary.NumberOfMatches += int64(len(read.Matches))

		hasLowComplexity := read.Complexity > 0 && read.Complexity+0.01 < p.params.MinComplexity
		if hasLowComplexity {
			summary.ReadsLowComplexity += int64(read.Weight)
		}

		if taxIndex >= 0 {
			ComputeActiveMatches(p.params.MinScore, topPercent, p.params.MaxExpected, p.params.MinPercentIdentity, read, TaxonomyName, &activeMask)
		}

		taxID := 0
		coverageRejected := false
		if taxIndex >= 0 && !hasLowComplexity {
			covered := p.params.MinPercentReadToCover == 0 || EnsureCovered(p.params.MinPercentReadToCover, read, activeMask, intervals)
			if !covered {
				coverageRejected = true
				summary.ReadsCoverageRejected++
			} else if doMatePairs && read.MateUID > 0 {
				taxID = strategies[taxIndex].ComputeID(trees[taxIndex], read, activeMask)
				mate, err := p.readMate(mateReader, read.MateUID)
				if err != nil {
					log2Caught(err)
				} else {
					ComputeActiveMatches(p.params.MinScore, topPercent, p.params.MaxExpected, p.params.MinPercentIdentity, mate, TaxonomyName, &mateMask)
					mateTaxID := strategies[taxIndex].ComputeID(trees[taxIndex], mate, mateMask)
					taxID = reconcileMatePair(trees[taxIndex], taxID, mateTaxID, &summary.AssignedViaMate)
				}
			} else {
				taxID = strategies[taxIndex].ComputeID(trees[taxIndex], read, activeMask)
			}
		}

		if taxIndex >= 0 && !hasLowComplexity && !coverageRejected {
			if AnyActive(activeMask) {
				summary.ReadsWithHits += int64(read.Weight)
			} else {
				summary.ReadsWithoutHits += int64(read.Weight)
				// A read with none of its own active matches can still have
				// been rescued by its mate above; only fall back to the
				// sentinel if that didn't happen.
				if taxID <= 0 {
					taxID = NoHitsID
				}
			}
		}

		assignedCount := 1
		if p.params.UseWeightedReadCounts {
			assignedCount = read.Weight
		}

		for c, name := range cNames {
			var id int
			switch {
			case hasLowComplexity:
				id = LowComplexityID
			case c == taxIndex:
				id = taxID
			default:
				ComputeActiveMatches(p.params.MinScore, topPercent, p.params.MaxExpected, p.params.MinPercentIdentity, read, name, &activeMask)
				if usingNaiveLongRead && useLCA[c] {
					id = strategies[c].ComputeLongReadLCA(trees[c], read, activeMask)
				} else {
					id = strategies[c].ComputeID(trees[c], read, activeMask)
				}
				if usingNaiveLongRead {
					others, segCount := strategies[c].OtherClassIDs()
					if id > 0 && segCount > 0 {
						moreClassIDs[c] = others
						multiGeneWeights[c] = float64(read.Weight) / float64(segCount)
					}
				}
			}
			if !p.registry.IsKnown(name, id) && id != LowComplexityID && id != NoHitsID {
				id = UnassignedID
			}
			classIDs[c] = id
			switch {
			case id == UnassignedID:
				summary.CountUnassigned[name] += assignedCount
			case id > 0:
				summary.CountAssigned[name] += assignedCount
			}
		}

		ulog.AddItem(read.UID, float64(read.Weight), classIDs)

		if usingNaiveLongRead {
			for c := range cNames {
				for _, extra := range moreClassIDs[c] {
					full := make([]int, n)
					copy(full, classIDs)
					full[c] = extra[0]
					ulog.AddItem(read.UID, multiGeneWeights[c], full)
				}
			}
		}

		p.reporter.SetProgress(it.Progress())
	}

	if p.reporter.IsUserCancelled() || (p.cancel != nil && p.cancel()) {
		return summary, ErrCancelled
	}
	p.reporter.ReportTaskCompleted()

	p.reporter.SetCancelable(false) // commit begins: cancellation is no longer honored

	if err := p.connector.SetNumberOfReads(int(summary.ReadsFound)); err != nil {
		return summary, fmt.Errorf("set number of reads: %w", err)
	}

	minSupport := float64(p.params.MinSupport)
	if p.params.MinSupportPercent > 0 {
		minSupport = math.Max(1, math.Ceil(p.params.MinSupportPercent/100*float64(summary.ReadsWithHits+summary.AssignedViaMate)))
		summary.DerivedMinSupport = int(minSupport)
		log.Println(FormatMinSupport(int(minSupport)))
	}

	for c, name := range cNames {
		if !useLCA[c] {
			continue
		}
		disabled := p.registry.DisabledIDs(name)
		if minSupport <= 0 && len(disabled) == 0 {
			continue
		}
		p.reporter.SetSubtask("Applying min-support & disabled filter to " + name + "...")
		weights := ulog.ClassIDToWeightMap(c)
		filter := NewMinSupportFilter(trees[c], weights, minSupport, disabled)
		changes := filter.Apply()
		for from, to := range changes {
			ulog.AppendClass(c, from, to)
		}
		if p.OnMinSupportChanges != nil {
			p.OnMinSupportChanges(name, trees[c], changes)
		}
		summary.MinSupportChanges[name] = len(changes)
		log.Printf("Min-supp. changes:%12s", groupThousands(int64(len(changes))))
	}

	p.reporter.SetSubtask("Writing classification tables")
	if err := ulog.Commit(ctx, p.connector, cNames); err != nil {
		return summary, fmt.Errorf("commit classifications (archive may be inconsistent): %w", err)
	}

	p.reporter.SetSubtask("Syncing")
	p.reporter.ReportTaskCompleted()

	return summary, nil
}

func (p *Pipeline) readMate(mateReader MateReader, mateUID int64) (*ReadBlock, error) {
	if err := mateReader.Seek(mateUID); err != nil {
		return nil, err
	}
	return mateReader.ReadBlock(p.params.MinScore, p.params.MaxExpected, false, true)
}

// reconcileMatePair folds a read's taxon together with its mate's, keeping
// the documented asymmetric branch of the original reconciliation rather
// than "fixing" it into a plain LCA: when one taxon is an ancestor of the
// other, the deeper (more specific) one is kept instead of collapsing
// upward to the ancestor.
func reconcileMatePair(tree ClassificationTree, taxID, mateTaxID int, assignedViaMate *int64) int {
	if mateTaxID <= 0 {
		return taxID
	}
	if taxID <= 0 {
		*assignedViaMate++
		return mateTaxID
	}
	bothID := tree.LCA(taxID, mateTaxID)
	if bothID == taxID {
		return mateTaxID
	}
	if bothID != mateTaxID {
		return bothID
	}
	return taxID
}

func indexOf(names []string, target string) int {
	for i, n := range names {
		if n == target {
			return i
		}
	}
	return -1
}

// log2Caught mirrors the original driver's per-read catch-and-continue:
// a single bad read is logged and skipped rather than aborting the run.
func log2Caught(err error) {
	if err != nil {
		log.Printf("caught per-read error, skipping: %v", err)
	}
}
