package commands

import (
	"rentscan/internal/campaign"
	"rentscan/lib/serviceutil"
	"rentscan/lib/telemetry"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(collectCmd)
}

var collectCmd = &cobra.Command{
	Use:   "collect [--config <campaign.json5>] [--out <offers.xlsx>]",
	Short: "Runs a campaign against the configured offer source and writes the reconciled offers.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := readConfig(configPath)
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		if outPath != "" {
			cfg.Output.Xlsx = outPath
		}

		plan, err := cfg.Plan()
		if err != nil {
			serviceutil.Fatal("invalid campaign plan", err)
		}
		windows, err := campaign.Generate(plan, cfg.rng())
		if err != nil {
			serviceutil.Fatal("invalid campaign plan", err)
		}

		source, err := cfg.NewSource(telemetry.SlogAPI{})
		if err != nil {
			serviceutil.Fatal("failed to create offer source", err)
		}

		execute(cmd, cfg, source, windows, plan.StartDate)
	},
}
