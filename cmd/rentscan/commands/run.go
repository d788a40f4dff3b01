package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"rentscan/internal/campaign"
	"rentscan/internal/offer"
	"rentscan/internal/resolve"
	"rentscan/internal/sink"
	"rentscan/lib/osutil"
	"rentscan/lib/serviceutil"
	"rentscan/lib/telemetry"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type campaignResult struct {
	Id      string
	Source  string
	Stats   campaign.Stats
	Results *offer.ResultSet
}

func (r campaignResult) batch() sink.Batch {
	return sink.Batch{
		CampaignId: r.Id,
		Source:     r.Source,
		Offers:     r.Results.Offers(),
	}
}

// runCampaign runs windows through source. When ctx is cancelled the
// offers gathered so far are kept and the cancellation error is returned.
func runCampaign(
	ctx context.Context,
	cfg Config,
	source campaign.Source,
	resolver resolve.Resolver,
	windows []campaign.RequestWindow,
	tel telemetry.API,
) (campaignResult, error) {
	result := campaignResult{
		Id:      uuid.NewString(),
		Source:  source.Name(),
		Results: &offer.ResultSet{},
	}

	runner := campaign.NewRunner(
		source,
		offer.NewReconciler(resolver, tel),
		campaign.Options{
			RotateEvery: cfg.RotateEvery,
			Parallelism: cfg.Parallelism,
		},
		tel,
	)

	slog.Info(
		"starting campaign",
		"id", result.Id,
		"source", result.Source,
		"windows", len(windows),
		"threshold", resolver.Threshold(),
	)
	stats, err := runner.Run(ctx, windows, result.Results)
	result.Stats = stats
	return result, err
}

// writeResult writes to every sink. When any of them fails the result set is
// written again to a spreadsheet under the temp dir, so nothing is lost.
func writeResult(ctx context.Context, sinks []sink.Sink, result campaignResult) error {
	batch := result.batch()
	err := sink.WriteAll(ctx, sinks, batch)
	if err == nil {
		return nil
	}

	fallback := sink.Xlsx{Path: filepath.Join(
		os.TempDir(),
		fmt.Sprintf("rentscan_%s.xlsx", result.Id),
	)}
	fallbackErr := fallback.Write(ctx, batch)
	if fallbackErr != nil {
		return errors.Join(err, fallbackErr)
	}
	slog.Warn("results kept in fallback file", "path", fallback.Path)
	return err
}

func printStats(out io.Writer, result campaignResult, elapsed time.Duration) {
	fmt.Fprintf(out, "campaign %s (%s): %s in %s\n",
		result.Id, result.Source, result.Stats, elapsed.Round(time.Second))
}

// execute is shared by collect and replay, it owns the process lifecycle:
// signals, telemetry export and fatal exits.
func execute(cmd *cobra.Command, cfg Config, source campaign.Source, windows []campaign.RequestWindow, start time.Time) {
	ctx, cancel := osutil.SignalContext(cmd.Context())
	defer cancel()

	providers, err := telemetry.SetupFromEnv(ctx, "rentscan")
	if err != nil {
		slog.Warn("telemetry export disabled", "err", err)
	}
	defer providers.Shutdown(context.WithoutCancel(ctx))
	telemetry.InstrumentPerfStats(ctx, 15*time.Second)

	_, resolver, err := loadResolver(cfg)
	if err != nil {
		serviceutil.Fatal("failed to load catalog", err)
	}

	sinks, closeSinks, err := cfg.Sinks(ctx, cmd.OutOrStdout(), source.Name(), start)
	if err != nil {
		serviceutil.Fatal("failed to open sinks", err)
	}
	defer closeSinks()

	t1 := time.Now()
	result, err := runCampaign(ctx, cfg, source, resolver, windows, telemetry.SlogAPI{})
	if err != nil {
		slog.Warn("campaign interrupted, writing partial results", "err", err)
	}
	printStats(cmd.ErrOrStderr(), result, time.Since(t1))

	err = writeResult(context.WithoutCancel(ctx), sinks, result)
	if err != nil {
		closeSinks()
		serviceutil.Fatal("failed to write results", err)
	}
}
