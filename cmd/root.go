// Package cmd implements the notemark command line.
package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "notemark",
	Short: "Convert decoded MIDI note streams into notation metadata",
	Long: `notemark enriches the notes of a MIDI file with beam groupings,
consolidated rests, dynamics, and stem directions, resolving conflicts
between tuplet, beam, and rest notation, and writes the result as YAML
for a downstream markup emitter.`,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the CLI.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}
