package commands

import (
	"fmt"
	"log/slog"

	"rentscan/internal/campaign"
	"rentscan/internal/sources/replay"
	"rentscan/internal/sources/viajanet"
	"rentscan/lib/serviceutil"
	"rentscan/lib/telemetry"
	"rentscan/lib/timezone"

	"github.com/spf13/cobra"
)

var (
	replayDir      string
	replayPrefix   string
	replayCaptures string
)

func init() {
	replayCmd.Flags().StringVar(&replayDir, "dir", "", "The directory of saved payloads, overrides replay_dir.")
	replayCmd.Flags().StringVar(&replayPrefix, "prefix", "", "Only replay files with this prefix, overrides replay_prefix.")
	replayCmd.Flags().StringVar(&replayCaptures, "captures", "", "A directory of proxy captures to import into --dir first.")
	rootCmd.AddCommand(replayCmd)
}

// replaySource lists the saved windows of the replay dir and returns a source
// that reads exactly the listed files. Windows are indexed in replay order.
func replaySource(cfg Config, tel telemetry.API) (*replay.Source, []campaign.RequestWindow, error) {
	files, err := replay.ListWindows(cfg.ReplayDir, cfg.replayPrefix(), timezone.Location)
	if err != nil {
		return nil, nil, err
	}
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("no replay files in %s", cfg.ReplayDir)
	}
	windows := make([]campaign.RequestWindow, len(files))
	for i, f := range files {
		windows[i] = f.Window
	}
	source := replay.New(cfg.ReplayDir, cfg.replayPrefix(), viajanet.ParsePayload, tel).WithFiles(files)
	return source, windows, nil
}

var replayCmd = &cobra.Command{
	Use:   "replay [--dir <payloads>] [--prefix <CITY>] [--captures <dir>]",
	Short: "Reconciles previously saved viajanet payloads without touching the network.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := readConfig(configPath)
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		cfg.Source = sourceReplay
		if replayDir != "" {
			cfg.ReplayDir = replayDir
		}
		if replayPrefix != "" {
			cfg.ReplayPrefix = replayPrefix
		}
		if outPath != "" {
			cfg.Output.Xlsx = outPath
		}
		if cfg.ReplayDir == "" {
			serviceutil.Fatal("nothing to replay", fmt.Errorf("--dir or replay_dir is required"))
		}

		if replayCaptures != "" {
			imported, err := viajanet.ImportCaptures(replayCaptures, cfg.ReplayDir, cfg.replayPrefix(), timezone.Location)
			if err != nil {
				slog.Warn("some captures were not imported", "err", err)
			}
			slog.Info("imported captures", "dir", replayCaptures, "count", imported)
		}

		source, windows, err := replaySource(cfg, telemetry.SlogAPI{})
		if err != nil {
			serviceutil.Fatal("failed to list replay files", err)
		}

		execute(cmd, cfg, source, windows, windows[0].PickupAt)
	},
}
