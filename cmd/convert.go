package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/notemark/notemark/internal/coordinator"
	"github.com/notemark/notemark/internal/file"
)

var (
	convertConfig      string
	convertOptions     string
	convertOutput      string
	convertAddChecksum bool
	convertFailFast    bool
	convertReport      bool
)

func init() {
	convertCmd.Flags().StringVarP(&convertConfig, "config", "c", "notemark.yml", "config file name (YAML)")
	convertCmd.Flags().StringVarP(&convertOptions, "options", "i", "", "per-piece options file name (YAML)")
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "output file name (default: options name with .notation.yml)")
	convertCmd.Flags().BoolVar(&convertAddChecksum, "add-checksum", false, "record the input checksum in the options file")
	convertCmd.Flags().BoolVar(&convertFailFast, "fail-fast", false, "abort on the first coordination failure")
	convertCmd.Flags().BoolVar(&convertReport, "report", false, "print per-phase metrics after converting")
	convertCmd.MarkFlagRequired("options")
	rootCmd.AddCommand(convertCmd)
}

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert one piece into notation metadata",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert()
	},
}

func runConvert() error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %v", err)
	}
	fsys := os.DirFS(cwd)

	log, err := newLogger()
	if err != nil {
		return fmt.Errorf("failed to build logger: %v", err)
	}
	defer log.Sync()

	config, err := file.ReadConfig(fsys, convertConfig)
	if errors.Is(err, fs.ErrNotExist) {
		defaults := coordinator.DefaultConfig()
		config = &defaults
	} else if err != nil {
		return fmt.Errorf("failed to read config: %v", err)
	}
	if convertFailFast {
		override := coordinator.Config{}
		override.Coordination.CoordinationFailureMode = coordinator.FailFast
		merged := file.Merge(*config, override)
		config = &merged
	}

	options, err := file.ReadOptions(fsys, convertOptions)
	if err != nil {
		return fmt.Errorf("failed to read options: %v", err)
	}
	wantChecksum := options.InputFileSHA256 == ""

	doc, metrics, err := file.Process(config, options, log)
	if err != nil {
		return fmt.Errorf("failed to process: %w", err)
	}

	out := convertOutput
	if out == "" {
		out = strings.TrimSuffix(convertOptions, ".yml") + ".notation.yml"
	}
	if err := doc.WriteDocument(out); err != nil {
		return fmt.Errorf("failed to write %v: %v", out, err)
	}

	if wantChecksum && convertAddChecksum {
		if err := file.WriteOptions(convertOptions, options); err != nil {
			return fmt.Errorf("failed to write %v: %v", convertOptions, err)
		}
	}

	if convertReport {
		printReport(metrics)
	}
	return nil
}

func printReport(m *coordinator.Metrics) {
	fmt.Printf("run %s: %d notes, %d conflicts resolved, %d errors, %d advisory\n",
		m.RunID, m.NotesProcessed, m.CoordinationConflictsResolved, m.ErrorCount, m.AdvisoryErrors)
	for _, phase := range coordinator.Phases {
		pm, ok := m.PerPhase[phase]
		if !ok {
			continue
		}
		fmt.Printf("  %-18s %12v peak %d bytes\n", phase, pm.Elapsed, pm.PeakBytes)
	}
}
