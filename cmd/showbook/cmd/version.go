package cmd

import (
	"fmt"

	"github.com/jmylchreest/showbook/internal/version"
	"github.com/spf13/cobra"
)

var versionFormat string

// versionCmd represents the version command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print the version, commit, and build date of showbook.",
	// Printing the version needs no configuration.
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		if versionFormat == "" {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return err
		}
		return writeFormatted(cmd.OutOrStdout(), versionFormat, version.GetInfo())
	},
}

func init() {
	versionCmd.Flags().StringVarP(&versionFormat, "format", "f", "", "output format (json, yaml); plain text when unset")
	rootCmd.AddCommand(versionCmd)
}
