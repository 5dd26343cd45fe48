package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/JochiRaider/RepoCapsule/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "repocapsule",
	Short: "Text fingerprinting and near-duplicate detection",
	Long: `repocapsule computes locality-sensitive fingerprints over text files:
a 64-bit SimHash over word tokens and a MinHash signature over byte
shingles. Signatures feed an LSH index that surfaces near-duplicate
documents without pairwise comparison of the whole corpus.`,
	Version: version.Short(),
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(NewFingerprintCommand().CreateCobraCommand())
	rootCmd.AddCommand(NewDedupCommand().CreateCobraCommand())
	rootCmd.AddCommand(NewInitCommand().CreateCobraCommand())
	rootCmd.AddCommand(NewVersionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
