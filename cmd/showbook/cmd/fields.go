package cmd

import (
	"fmt"

	"github.com/jmylchreest/showbook/internal/catalog"
	"github.com/spf13/cobra"
)

var (
	fieldsFormat string
	fieldsAll    bool
)

var fieldsCmd = &cobra.Command{
	Use:   "fields <entity>",
	Short: "Print the filter fields of an entity",
	Long: `Print the filter fields a client may offer for an entity, with their
types, operators, enum values and bounds.

By default hidden fields (usable by presets and deep links but not offered
in filter UIs) are omitted; --all includes them.`,
	Example: `  showbook fields shows
  showbook fields arrangements --all -f json`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(catalog.Shows), string(catalog.Arrangements)},
	RunE:      runFields,
}

func init() {
	rootCmd.AddCommand(fieldsCmd)
	fieldsCmd.Flags().StringVarP(&fieldsFormat, "format", "f", "yaml", "output format (json, yaml)")
	fieldsCmd.Flags().BoolVar(&fieldsAll, "all", false, "include hidden query fields")
}

func runFields(cmd *cobra.Command, args []string) error {
	cat, err := catalog.New(nil)
	if err != nil {
		return fmt.Errorf("building catalog: %w", err)
	}

	entity, ok := cat.Lookup(args[0])
	if !ok {
		return fmt.Errorf("unknown entity %q", args[0])
	}

	fields := entity.Fields
	if fieldsAll {
		fields = entity.QueryFields
	}
	return writeFormatted(cmd.OutOrStdout(), fieldsFormat, fields)
}
