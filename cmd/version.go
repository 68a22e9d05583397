package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version should be updated with each new release
var Version = "v0.0.0"

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of pubctl",
	Long:  `All software have versions. This is pubctl's`,
	// version needs no config
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "pubctl version "+Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
