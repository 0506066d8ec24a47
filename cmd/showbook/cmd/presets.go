package cmd

import (
	"fmt"
	"log/slog"

	"github.com/jmylchreest/showbook/internal/catalog"
	"github.com/jmylchreest/showbook/internal/filters"
	"github.com/spf13/cobra"
)

var (
	presetsFormat  string
	presetsBaseURL string
)

var presetsCmd = &cobra.Command{
	Use:   "presets <entity>",
	Short: "List an entity's presets with their deep links",
	Long: `List the presets of an entity. Each preset is printed with a deep link
that reproduces its view; links are relative unless --base-url is given or
server.base_url is configured.`,
	Example: `  showbook presets arrangements
  showbook presets shows --base-url https://showbook.example.com -f yaml`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(catalog.Shows), string(catalog.Arrangements)},
	RunE:      runPresets,
}

func init() {
	rootCmd.AddCommand(presetsCmd)
	presetsCmd.Flags().StringVarP(&presetsFormat, "format", "f", "table", "output format (table, json, yaml)")
	presetsCmd.Flags().StringVar(&presetsBaseURL, "base-url", "", "base URL for deep links (defaults to server.base_url)")
}

func runPresets(cmd *cobra.Command, args []string) error {
	cat, err := catalog.New(nil)
	if err != nil {
		return fmt.Errorf("building catalog: %w", err)
	}

	entity, ok := cat.Lookup(args[0])
	if !ok {
		return fmt.Errorf("unknown entity %q", args[0])
	}

	baseURL := appConfig.Server.BaseURL
	if cmd.Flags().Changed("base-url") {
		baseURL = presetsBaseURL
	}

	links := cat.PresetLinks(filters.NewURLManager(slog.Default()), baseURL, entity.Name)
	if presetsFormat != "table" {
		return writeFormatted(cmd.OutOrStdout(), presetsFormat, links)
	}

	rows := make([][]string, len(links))
	for i, l := range links {
		rows[i] = []string{l.ID, l.Name, l.URL}
	}
	return writeTable(cmd.OutOrStdout(), []string{"ID", "NAME", "URL"}, rows)
}
