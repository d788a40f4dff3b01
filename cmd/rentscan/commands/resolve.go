package commands

import (
	"io"

	"rentscan/internal/resolve"
	"rentscan/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var resolveThreshold int

func init() {
	resolveCmd.Flags().IntVar(&resolveThreshold, "threshold", -1, "The match threshold, overrides threshold.")
	rootCmd.AddCommand(resolveCmd)
}

func renderMatches(out io.Writer, resolver resolve.Resolver, names []string) {
	t := newTable(out)
	t.AppendHeader(table.Row{"Raw name", "Canonical name", "Code", "Confidence", "Resolved"})
	for _, name := range names {
		match := resolver.Resolve(name)
		canonical := name
		if match.Resolved {
			canonical = match.Vehicle.CanonicalName
		}
		t.AppendRow(table.Row{
			name,
			canonical,
			match.Vehicle.CanonicalCode,
			match.Confidence,
			match.Resolved,
		})
	}
	t.Render()
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <vehicle name>...",
	Short: "Resolves vehicle names against the catalog and prints the match confidence.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := readConfig(configPath)
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		if resolveThreshold >= 0 {
			cfg.Threshold = &resolveThreshold
		}

		_, resolver, err := loadResolver(cfg)
		if err != nil {
			serviceutil.Fatal("failed to load catalog", err)
		}
		renderMatches(cmd.OutOrStdout(), resolver, args)
	},
}
