package commands

import (
	"fmt"
	"io"
	"strings"

	"rentscan/internal/catalog"
	"rentscan/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(catalogCmd)
}

// renderCatalog prints table sizes followed by alias keys defined more than
// once, the last definition of a key is the one the resolver uses.
func renderCatalog(out io.Writer, cat *catalog.Catalog) {
	sizes := cat.Sizes()
	t := newTable(out)
	t.AppendHeader(table.Row{"Table", "Entries"})
	t.AppendRows([]table.Row{
		{"vehicles", sizes.Vehicles},
		{"vendors", sizes.Vendors},
		{"categories", sizes.Categories},
	})
	t.Render()

	duplicates := cat.Duplicates()
	if len(duplicates) == 0 {
		fmt.Fprintln(out, "no duplicate alias keys")
		return
	}

	t = newTable(out)
	t.SetTitle(fmt.Sprintf("%d duplicate alias keys", len(duplicates)))
	t.AppendHeader(table.Row{"Key", "Kept", "Discarded"})
	for _, d := range duplicates {
		discarded := make([]string, len(d.Discarded))
		for i, e := range d.Discarded {
			discarded[i] = e.CanonicalName
		}
		t.AppendRow(table.Row{d.Key, d.Kept.CanonicalName, strings.Join(discarded, ", ")})
	}
	t.Render()
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Loads the reference tables and reports their sizes and duplicate alias keys.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := readConfig(configPath)
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		cat, err := catalog.LoadFiles(cfg.Catalog)
		if err != nil {
			serviceutil.Fatal("failed to load catalog", err)
		}
		renderCatalog(cmd.OutOrStdout(), cat)
	},
}
