package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/itsmostafa/wingman/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the wingman version",
	Args:  cobra.NoArgs,
	// No config is needed to print the version
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "wingman %s\n", version.String())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
