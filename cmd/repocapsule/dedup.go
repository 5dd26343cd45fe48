package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JochiRaider/RepoCapsule/internal/config"
	"github.com/JochiRaider/RepoCapsule/service"
)

// DedupCommand handles the near-duplicate scan CLI command
type DedupCommand struct {
	configFile      string
	includePatterns []string
	excludePatterns []string

	k           int
	numHashes   int
	maxTokens   int
	maxShingles int
	workers     int

	hammingMax   int
	lshBands     int
	lshRows      int
	lshThreshold float64

	minFamilySize int
	topFamilies   int

	json   bool
	csv    bool
	yaml   bool
	output string
}

// NewDedupCommand creates a new dedup command
func NewDedupCommand() *DedupCommand {
	return &DedupCommand{}
}

// CreateCobraCommand creates the cobra command for near-duplicate scanning
func (d *DedupCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dedup [paths...]",
		Short: "Find near-duplicate text files",
		Long: `Scan files for near-duplicates using their fingerprints.

MinHash signatures go into a banded LSH index that proposes candidate
pairs; a pair is confirmed when its estimated Jaccard similarity reaches
the threshold or its SimHash fingerprints are within the Hamming gate.
Confirmed pairs are grouped into duplicate families by connectivity.

Examples:
  # Scan a corpus with defaults
  repocapsule dedup ./corpus

  # Stricter similarity, JSON report
  repocapsule dedup --lsh-threshold 0.9 --json ./corpus`,
		Args: cobra.MinimumNArgs(1),
		RunE: d.runDedup,
	}

	flags := cmd.Flags()
	flags.StringVarP(&d.configFile, "config", "c", "", "Config file path (.repocapsule.toml or repocapsule.yaml)")
	flags.StringSliceVar(&d.includePatterns, "include", nil, "Include file patterns (doublestar globs)")
	flags.StringSliceVar(&d.excludePatterns, "exclude", nil, "Exclude file patterns (doublestar globs)")
	flags.IntVarP(&d.k, "k", "k", 0, "Shingle width in bytes")
	flags.IntVar(&d.numHashes, "num-hashes", 0, "MinHash signature length")
	flags.IntVar(&d.maxTokens, "max-tokens", 0, "SimHash token cap (0 disables SimHash)")
	flags.IntVar(&d.maxShingles, "max-shingles", 0, "Shingle cap (0 means unlimited)")
	flags.IntVar(&d.workers, "workers", 0, "Concurrent files (default: number of CPUs)")
	flags.IntVar(&d.hammingMax, "hamming-max", 0, "Maximum SimHash Hamming distance for a near-duplicate")
	flags.IntVar(&d.lshBands, "lsh-bands", 0, "Number of LSH bands")
	flags.IntVar(&d.lshRows, "lsh-rows", 0, "Signature slots per LSH band")
	flags.Float64Var(&d.lshThreshold, "lsh-threshold", 0, "Minimum estimated Jaccard similarity")
	flags.IntVar(&d.minFamilySize, "min-family-size", 0, "Smallest duplicate family to report")
	flags.IntVar(&d.topFamilies, "top-families", 0, "How many duplicate families to report")
	flags.BoolVar(&d.json, "json", false, "Output as JSON")
	flags.BoolVar(&d.csv, "csv", false, "Output as CSV")
	flags.BoolVar(&d.yaml, "yaml", false, "Output as YAML")
	flags.StringVarP(&d.output, "output", "o", "", "Write the report to a file instead of stdout")

	return cmd
}

func (d *DedupCommand) runDedup(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithTarget(d.configFile, args[0])
	if err != nil {
		return err
	}
	d.applyConfig(cfg, GetExplicitFlags(cmd))

	format, err := selectFormat(cfg.Output.Format, d.json, d.csv, d.yaml)
	if err != nil {
		return err
	}

	files, err := service.CollectFiles(args, cfg.Input.IncludePatterns, cfg.Input.ExcludePatterns)
	if err != nil {
		return err
	}
	if len(files) < 2 {
		return fmt.Errorf("need at least two files to scan for duplicates, found %d", len(files))
	}

	svc := service.NewDedupService()
	report, err := svc.Run(cmd.Context(), files, service.DedupOptions{
		Fingerprint: service.FingerprintOptions{
			K:           cfg.Fingerprint.K,
			NumHashes:   cfg.Fingerprint.NumHashes,
			MaxTokens:   cfg.Fingerprint.MaxTokens,
			MaxShingles: cfg.Fingerprint.MaxShingles,
			Workers:     d.workers,
		},
		SimhashHammingMax: cfg.Dedup.SimhashHammingMax,
		LSHBands:          cfg.Dedup.LSHBands,
		LSHRows:           cfg.Dedup.LSHRows,
		LSHThreshold:      cfg.Dedup.LSHThreshold,
		MinFamilySize:     cfg.Dedup.MinFamilySize,
		TopFamilies:       cfg.Dedup.TopFamilies,
	})
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(d.output)
	if err != nil {
		return err
	}
	defer closeOut()

	return service.WriteDedupReport(out, report, format)
}

// applyConfig overlays explicitly set flags onto the loaded configuration.
// Zero is a meaningful value for the caps, so those check the explicit set.
func (d *DedupCommand) applyConfig(cfg *config.Config, explicit map[string]bool) {
	if d.k > 0 {
		cfg.Fingerprint.K = d.k
	}
	if d.numHashes > 0 {
		cfg.Fingerprint.NumHashes = d.numHashes
	}
	if explicit["max-tokens"] {
		cfg.Fingerprint.MaxTokens = d.maxTokens
	}
	if explicit["max-shingles"] {
		cfg.Fingerprint.MaxShingles = d.maxShingles
	}
	if len(d.includePatterns) > 0 {
		cfg.Input.IncludePatterns = d.includePatterns
	}
	if len(d.excludePatterns) > 0 {
		cfg.Input.ExcludePatterns = d.excludePatterns
	}
	if d.hammingMax > 0 {
		cfg.Dedup.SimhashHammingMax = d.hammingMax
	}
	if d.lshBands > 0 {
		cfg.Dedup.LSHBands = d.lshBands
	}
	if d.lshRows > 0 {
		cfg.Dedup.LSHRows = d.lshRows
	}
	if d.lshThreshold > 0 {
		cfg.Dedup.LSHThreshold = d.lshThreshold
	}
	if d.minFamilySize > 0 {
		cfg.Dedup.MinFamilySize = d.minFamilySize
	}
	if d.topFamilies > 0 {
		cfg.Dedup.TopFamilies = d.topFamilies
	}
}
