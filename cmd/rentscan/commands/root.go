package commands

import (
	"context"
	"fmt"
	"os"

	"rentscan/lib/telemetry"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
	outPath    string
)

var rootCmd = &cobra.Command{
	Use:   "rentscan",
	Short: "rentscan collects car rental offers and reconciles them against a reference catalog.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "campaign.json5", "The campaign config file.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging.")
	rootCmd.PersistentFlags().StringVarP(&outPath, "out", "o", "", "The spreadsheet to write, overrides output.xlsx.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
