package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/museu-nacional/megan-ce/internal/archive"
	"github.com/museu-nacional/megan-ce/internal/classify"
	"github.com/museu-nacional/megan-ce/internal/progress"
)

const version = "1.0.0"

func classifyCommand() *cobra.Command {
	var (
		bundlePath         string
		names              []string
		lcaAlgorithm       string
		minScore           float64
		topPercent         float64
		maxExpected        float64
		minPercentIdentity float64
		minComplexity      float64
		minCover           float64
		minSupport         int
		minSupportPercent  float64
		weightedPercent    float64
		longReads          bool
		identityFilter     bool
		weightedCounts     bool
		dotPath            string
		snapshotCacheDir   string
	)
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Run the LCA/functional classification pipeline over a bundle",
		Long: `classify streams reads and their precomputed alignment matches through
the match filter, coverage gate, and LCA/best-hit assignment strategies,
then commits the resulting classifications via an update log.

It consumes a gob-encoded bundle standing in for a real archive connector,
since the archive and classification-tree connectors are external
collaborators outside this tool.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(classifyOptions{
				bundlePath:         bundlePath,
				names:              names,
				lcaAlgorithm:       lcaAlgorithm,
				minScore:           minScore,
				topPercent:         topPercent,
				maxExpected:        maxExpected,
				minPercentIdentity: minPercentIdentity,
				minComplexity:      minComplexity,
				minCover:           minCover,
				minSupport:         minSupport,
				minSupportPercent:  minSupportPercent,
				weightedPercent:    weightedPercent,
				longReads:          longReads,
				identityFilter:     identityFilter,
				weightedCounts:     weightedCounts,
				dotPath:            dotPath,
				snapshotCacheDir:   snapshotCacheDir,
			})
		},
	}
	cmd.Flags().StringVarP(&bundlePath, "bundle", "b", "", "Input bundle file (gob)")
	cmd.Flags().StringSliceVarP(&names, "classifications", "c", []string{classify.TaxonomyName}, "Classification names to assign, in order")
	cmd.Flags().StringVar(&lcaAlgorithm, "lca", "naive", "LCA algorithm: naive|weighted|naivelongread|coveragelongread")
	cmd.Flags().Float64Var(&minScore, "min-score", 0, "Minimum bit score for a match to be active")
	cmd.Flags().Float64Var(&topPercent, "top-percent", 10, "Keep matches within this percent of the best score")
	cmd.Flags().Float64Var(&maxExpected, "max-expected", 1, "Maximum expected value for a match to be active")
	cmd.Flags().Float64Var(&minPercentIdentity, "min-percent-identity", 0, "Minimum percent identity for a match to be active")
	cmd.Flags().Float64Var(&minComplexity, "min-complexity", 0, "Minimum read complexity; below this, reads are marked low-complexity")
	cmd.Flags().Float64Var(&minCover, "min-percent-cover", 0, "Minimum percent of the read length the active matches must cover")
	cmd.Flags().IntVar(&minSupport, "min-support", 1, "Absolute minimum support to keep a taxon unredirected")
	cmd.Flags().Float64Var(&minSupportPercent, "min-support-percent", 0, "Minimum support as a percent of reads with hits (overrides --min-support if >0)")
	cmd.Flags().Float64Var(&weightedPercent, "weighted-lca-percent", 80, "Weighted-LCA coverage percent")
	cmd.Flags().BoolVar(&longReads, "long-reads", false, "Treat input as long reads (weight reads by length; coverage gate uses the union of match intervals)")
	cmd.Flags().BoolVar(&identityFilter, "identity-filter", false, "Clamp taxonomic rank by percent identity (16S mode)")
	cmd.Flags().BoolVar(&weightedCounts, "weighted-read-counts", false, "Count per-classification assigned/unassigned totals by read weight instead of by distinct read")
	cmd.Flags().StringVar(&dotPath, "dot", "", "Write the min-support redirect map for the Taxonomy classification as Graphviz dot to this path")
	cmd.Flags().StringVar(&snapshotCacheDir, "snapshot-cache-dir", "", "Directory holding a per-classification snapshot cache, used to detect when the classification library changed between runs")
	cmd.MarkFlagRequired("bundle")
	return cmd
}

type classifyOptions struct {
	bundlePath         string
	names              []string
	lcaAlgorithm       string
	minScore           float64
	topPercent         float64
	maxExpected        float64
	minPercentIdentity float64
	minComplexity      float64
	minCover           float64
	minSupport         int
	minSupportPercent  float64
	weightedPercent    float64
	longReads          bool
	identityFilter     bool
	weightedCounts     bool
	dotPath            string
	snapshotCacheDir   string
}

func parseLCAAlgorithm(s string) (classify.LCAAlgorithm, error) {
	switch s {
	case "naive", "":
		return classify.Naive, nil
	case "weighted":
		return classify.Weighted, nil
	case "naivelongread":
		return classify.NaiveLongRead, nil
	case "coveragelongread":
		return classify.CoverageLongRead, nil
	default:
		return 0, fmt.Errorf("unknown --lca value %q", s)
	}
}

func runClassify(opt classifyOptions) error {
	algo, err := parseLCAAlgorithm(opt.lcaAlgorithm)
	if err != nil {
		return err
	}

	b, err := archive.Load(opt.bundlePath)
	if err != nil {
		return err
	}

	reads := make([]*classify.ReadBlock, len(b.Reads))
	for i := range b.Reads {
		reads[i] = &b.Reads[i]
	}

	lib := archive.NewLibrary(b, opt.names)

	useLCA := map[string]bool{}
	for _, name := range opt.names {
		if name != classify.TaxonomyName {
			useLCA[name] = true
		}
	}

	params := classify.Params{
		MinScore:              opt.minScore,
		TopPercent:            opt.topPercent,
		MaxExpected:           opt.maxExpected,
		MinPercentIdentity:    opt.minPercentIdentity,
		MinComplexity:         opt.minComplexity,
		MinPercentReadToCover: opt.minCover,
		LCAAlgorithm:          algo,
		UseIdentityFilter:     opt.identityFilter,
		LongReads:             opt.longReads,
		PairedReads:           b.Paired,
		MinSupport:            opt.minSupport,
		MinSupportPercent:     opt.minSupportPercent,
		WeightedLCAPercent:    opt.weightedPercent,
		ClassificationNames:   opt.names,
		UseLCA:                useLCA,
		UseWeightedReadCounts: opt.weightedCounts,
		IdentityRankDepths: map[string]int{
			"species": 8, "genus": 7, "family": 6, "order": 5, "class": 4, "phylum": 3,
		},
	}

	connector := archive.NewConnector(reads, b.Paired)
	reporter := progress.NewPBReporter()

	pipeline := classify.NewPipeline(params, connector, lib, reporter, nil)

	var dotChanges map[int]int
	var dotTree classify.ClassificationTree
	if opt.dotPath != "" {
		pipeline.OnMinSupportChanges = func(name string, tree classify.ClassificationTree, changes map[int]int) {
			if name == classify.TaxonomyName {
				dotTree, dotChanges = tree, changes
			}
		}
	}

	if opt.snapshotCacheDir != "" {
		checkSnapshotCache(opt.snapshotCacheDir, pipeline.Registry(), opt.names)
	}

	summary, err := pipeline.Run(context.Background())
	if err != nil {
		return fmt.Errorf("classify: %w", err)
	}

	classify.PrintSummary(summary, opt.names)
	classify.PrintClassificationSizes(connector, opt.names)

	if opt.snapshotCacheDir != "" {
		if err := writeSnapshotCache(opt.snapshotCacheDir, pipeline.Registry(), opt.names); err != nil {
			log.Printf("snapshot cache: %v", err)
		}
	}

	if opt.dotPath != "" {
		f, err := os.Create(opt.dotPath)
		if err != nil {
			return fmt.Errorf("write dot: %w", err)
		}
		defer f.Close()
		if dotTree != nil {
			if err := classify.WriteRedirectDot(dotTree, dotChanges, f); err != nil {
				return fmt.Errorf("write dot: %w", err)
			}
		}
	}
	return nil
}

// checkSnapshotCache compares each named classification's freshly-built
// registry snapshot against the one cached from the previous run against
// this directory, logging when the classification library underneath a
// bundle has changed. It never mutates reg: the pipeline always classifies
// against the live library, and the cache is purely a diagnostic
// fingerprint.
func checkSnapshotCache(dir string, reg *classify.Registry, names []string) {
	for _, name := range names {
		path := snapshotCachePath(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		cached := classify.NewEmptyRegistry()
		if err := classify.DecodeSnapshotCache(cached, name, data); err != nil {
			log.Printf("snapshot cache: decode %s: %v", path, err)
			continue
		}
		if cached.Checksum(name) != reg.Checksum(name) {
			log.Printf("snapshot cache: %s classification library changed since last run against %s", name, dir)
		}
	}
}

// writeSnapshotCache persists the just-used registry snapshot so the next
// run against the same directory can detect drift via checkSnapshotCache.
func writeSnapshotCache(dir string, reg *classify.Registry, names []string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot cache dir: %w", err)
	}
	for _, name := range names {
		data, err := classify.EncodeSnapshotCache(reg, name)
		if err != nil {
			return fmt.Errorf("encode snapshot cache for %s: %w", name, err)
		}
		if err := os.WriteFile(snapshotCachePath(dir, name), data, 0o644); err != nil {
			return fmt.Errorf("write snapshot cache for %s: %w", name, err)
		}
	}
	return nil
}

func snapshotCachePath(dir, name string) string {
	return filepath.Join(dir, name+".snapshot.zst")
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("megan-ce version %s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

func main() {
	log.SetFlags(0)
	rootCmd := &cobra.Command{
		Use:   "megan-ce",
		Short: "Streaming LCA and functional classification of sequencing reads",
		Long: `megan-ce: streaming taxonomic and functional classification

This tool assigns taxonomic (LCA) and functional (LCA or best-hit) classes
to sequencing reads from their precomputed alignment matches. It does not
perform alignment itself -- matches are produced upstream and read from an
archive bundle.

A bundle (reads + matches + classification trees, gob-encoded) is produced
upstream; run "megan-ce classify" against it with the desired filtering
and LCA parameters.`,
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(classifyCommand())
	rootCmd.AddCommand(versionCommand())
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
