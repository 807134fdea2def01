package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/notemark/notemark/internal/version"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the notemark version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Version())
	},
}
