package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/notemark/notemark/internal/extract"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.mid>",
	Short: "Print the measure and time-signature structure of a MIDI file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInspect(args[0])
	},
}

func runInspect(path string) error {
	mid, err := extract.ReadFile(path)
	if err != nil {
		return err
	}
	measures, err := extract.FindMeasures(mid)
	if err != nil {
		return fmt.Errorf("failed to find measures: %v", err)
	}
	notes, err := extract.Notes(mid)
	if err != nil {
		return fmt.Errorf("failed to decode notes: %v", err)
	}

	// Print consecutive same-signature runs in concise form.
	start := 0
	flush := func(end int) {
		if end == start {
			return
		}
		m := measures[start]
		plural := "s"
		if end-start == 1 {
			plural = ""
		}
		fmt.Printf("%d @ %d: %d measure%s of %d/%d\n", start+1, m.Begin, end-start, plural, m.Num, m.Denom)
		start = end
	}
	for i := 1; i < len(measures); i++ {
		if measures[i].Num != measures[start].Num || measures[i].Denom != measures[start].Denom {
			flush(i)
		}
	}
	flush(len(measures))
	fmt.Printf("%d measures, %d notes\n", len(measures), len(notes))
	return nil
}
