package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/JochiRaider/RepoCapsule/internal/config"
	"github.com/JochiRaider/RepoCapsule/service"
)

// FingerprintCommand handles the fingerprint CLI command
type FingerprintCommand struct {
	configFile      string
	includePatterns []string
	excludePatterns []string

	k           int
	numHashes   int
	maxTokens   int
	maxShingles int
	workers     int

	json   bool
	csv    bool
	yaml   bool
	output string
}

// NewFingerprintCommand creates a new fingerprint command
func NewFingerprintCommand() *FingerprintCommand {
	return &FingerprintCommand{}
}

// CreateCobraCommand creates the cobra command for fingerprint computation
func (f *FingerprintCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fingerprint [paths...]",
		Short: "Compute SimHash and MinHash fingerprints for text files",
		Long: `Compute a 64-bit SimHash and a MinHash signature for each input file.

Directories are walked recursively; include/exclude glob patterns filter
the collected files. Identical file content always produces identical
fingerprints, so outputs are safe to store and compare across runs.

Examples:
  # Fingerprint a directory with defaults
  repocapsule fingerprint ./docs

  # Larger signatures, JSON output
  repocapsule fingerprint --num-hashes 256 --json ./corpus

  # Restrict to markdown files
  repocapsule fingerprint --include "**/*.md" ./docs`,
		Args: cobra.MinimumNArgs(1),
		RunE: f.runFingerprint,
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.configFile, "config", "c", "", "Config file path (.repocapsule.toml or repocapsule.yaml)")
	flags.StringSliceVar(&f.includePatterns, "include", nil, "Include file patterns (doublestar globs)")
	flags.StringSliceVar(&f.excludePatterns, "exclude", nil, "Exclude file patterns (doublestar globs)")
	flags.IntVarP(&f.k, "k", "k", 0, "Shingle width in bytes")
	flags.IntVar(&f.numHashes, "num-hashes", 0, "MinHash signature length")
	flags.IntVar(&f.maxTokens, "max-tokens", 0, "SimHash token cap (0 disables SimHash)")
	flags.IntVar(&f.maxShingles, "max-shingles", 0, "Shingle cap (0 means unlimited)")
	flags.IntVar(&f.workers, "workers", 0, "Concurrent files (default: number of CPUs)")
	flags.BoolVar(&f.json, "json", false, "Output as JSON")
	flags.BoolVar(&f.csv, "csv", false, "Output as CSV")
	flags.BoolVar(&f.yaml, "yaml", false, "Output as YAML")
	flags.StringVarP(&f.output, "output", "o", "", "Write the report to a file instead of stdout")

	return cmd
}

func (f *FingerprintCommand) runFingerprint(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithTarget(f.configFile, args[0])
	if err != nil {
		return err
	}
	f.applyConfig(cfg, GetExplicitFlags(cmd))

	format, err := selectFormat(cfg.Output.Format, f.json, f.csv, f.yaml)
	if err != nil {
		return err
	}

	files, err := service.CollectFiles(args, cfg.Input.IncludePatterns, cfg.Input.ExcludePatterns)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no text files matched under %v", args)
	}

	svc := service.NewFingerprintService()
	results, err := svc.Run(cmd.Context(), files, service.FingerprintOptions{
		K:           cfg.Fingerprint.K,
		NumHashes:   cfg.Fingerprint.NumHashes,
		MaxTokens:   cfg.Fingerprint.MaxTokens,
		MaxShingles: cfg.Fingerprint.MaxShingles,
		Workers:     f.workers,
	})
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(f.output)
	if err != nil {
		return err
	}
	defer closeOut()

	return service.WriteFingerprints(out, results, format)
}

// applyConfig overlays explicitly set flags onto the loaded configuration.
// Zero is a meaningful value for the caps, so those check the explicit set.
func (f *FingerprintCommand) applyConfig(cfg *config.Config, explicit map[string]bool) {
	if f.k > 0 {
		cfg.Fingerprint.K = f.k
	}
	if f.numHashes > 0 {
		cfg.Fingerprint.NumHashes = f.numHashes
	}
	if explicit["max-tokens"] {
		cfg.Fingerprint.MaxTokens = f.maxTokens
	}
	if explicit["max-shingles"] {
		cfg.Fingerprint.MaxShingles = f.maxShingles
	}
	if len(f.includePatterns) > 0 {
		cfg.Input.IncludePatterns = f.includePatterns
	}
	if len(f.excludePatterns) > 0 {
		cfg.Input.ExcludePatterns = f.excludePatterns
	}
}

// selectFormat resolves the output format from config and format flags;
// at most one format flag may be set.
func selectFormat(configFormat string, json, csv, yaml bool) (service.OutputFormat, error) {
	set := 0
	format := configFormat
	if json {
		set++
		format = "json"
	}
	if csv {
		set++
		format = "csv"
	}
	if yaml {
		set++
		format = "yaml"
	}
	if set > 1 {
		return "", fmt.Errorf("only one of --json, --csv, --yaml may be set")
	}
	return service.ParseOutputFormat(format)
}

// openOutput returns the report writer and a cleanup function.
func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return file, func() { _ = file.Close() }, nil
}
