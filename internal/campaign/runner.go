package campaign

import (
	"context"
	"errors"
	"fmt"

	"rentscan/internal/offer"
	"rentscan/lib/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"
)

const DefaultRotateEvery = 10

const (
	report_runner_window   = "runner.window"
	report_runner_session  = "runner.session"
	report_runner_rotation = "runner.rotation"
)

var tracer = otel.Tracer("rentscan/campaign")
var meter = otel.Meter("rentscan/campaign")
var windowCounter, _ = meter.Int64Counter(
	"campaign.windows",
	metric.WithDescription("windows processed, by outcome"),
)
var offerCounter, _ = meter.Int64Counter(
	"campaign.offers",
	metric.WithDescription("offers appended to the result set"),
)

type Options struct {
	// RotateEvery is the number of processed windows after which the session
	// is torn down and recreated. Zero means DefaultRotateEvery.
	RotateEvery int
	// Parallelism bounds concurrent fetches within one session. Values below
	// 2 process windows strictly one at a time.
	Parallelism int
}

// Runner drives a campaign: it fetches every window through a rotating
// session, reconciles the offers and appends them in window order.
type Runner struct {
	source     Source
	reconciler offer.Reconciler
	opts       Options
	tel        telemetry.API
}

func NewRunner(source Source, reconciler offer.Reconciler, opts Options, tel telemetry.API) Runner {
	if opts.RotateEvery <= 0 {
		opts.RotateEvery = DefaultRotateEvery
	}
	if opts.Parallelism < 1 {
		opts.Parallelism = 1
	}
	return Runner{
		source:     source,
		reconciler: reconciler,
		opts:       opts,
		tel:        telemetry.NewScopedAPI("campaign", tel),
	}
}

type outcome struct {
	offers    []offer.ResolvedOffer
	err       error
	cancelled bool
}

// Run processes windows in order and appends their offers to results. A
// window that fails is reported, counted and skipped; Run only returns an
// error when ctx is cancelled, along with the stats gathered so far.
func (r Runner) Run(ctx context.Context, windows []RequestWindow, results *offer.ResultSet) (Stats, error) {
	stats := newStats(len(windows))

	for start := 0; start < len(windows); start += r.opts.RotateEvery {
		end := min(start+r.opts.RotateEvery, len(windows))
		chunk := windows[start:end]

		if ctx.Err() != nil {
			return stats, ctx.Err()
		}

		var outcomes []outcome
		session, err := r.source.OpenSession(ctx)
		if err != nil {
			r.tel.ReportBroken(report_runner_session, fmt.Errorf("open %s session: %w", r.source.Name(), err))
			failure := NewSourceFailure(FailureTransport, err)
			outcomes = make([]outcome, len(chunk))
			for i := range outcomes {
				outcomes[i].err = failure
			}
		} else {
			stats.SessionsOpened++
			outcomes = r.fetchChunk(ctx, session, chunk)

			err = session.Close()
			if err != nil {
				r.tel.ReportWarning(report_runner_session, fmt.Errorf("close %s session: %w", r.source.Name(), err))
			}
		}

		cancelled := r.merge(chunk, outcomes, results, &stats)
		if cancelled {
			return stats, ctx.Err()
		}

		if len(chunk) == r.opts.RotateEvery {
			stats.Rotations++
			r.tel.ReportCount(report_runner_rotation, int64(stats.Rotations))
		}
	}

	r.tel.ReportCount("windows-processed", int64(stats.Processed))
	r.tel.ReportCount("windows-skipped", int64(stats.SkippedTotal()))
	return stats, nil
}

func (r Runner) fetchChunk(ctx context.Context, session Session, chunk []RequestWindow) []outcome {
	outcomes := make([]outcome, len(chunk))

	if r.opts.Parallelism < 2 {
		for i, w := range chunk {
			if ctx.Err() != nil {
				outcomes[i].cancelled = true
				continue
			}
			outcomes[i] = r.fetchWindow(ctx, session, w)
		}
		return outcomes
	}

	var group errgroup.Group
	group.SetLimit(r.opts.Parallelism)
	for i, w := range chunk {
		i, w := i, w
		group.Go(func() error {
			if ctx.Err() != nil {
				outcomes[i].cancelled = true
				return nil
			}
			outcomes[i] = r.fetchWindow(ctx, session, w)
			return nil
		})
	}
	group.Wait()
	return outcomes
}

func (r Runner) fetchWindow(ctx context.Context, session Session, w RequestWindow) outcome {
	ctx, span := tracer.Start(ctx, "campaign.window")
	defer span.End()
	span.SetAttributes(
		attribute.Int("window.index", w.Index),
		attribute.String("window.pickup", w.PickupAt.Format("2006-01-02T15:04")),
		attribute.Int("window.tier_days", w.TierDays),
	)

	raws, err := session.Fetch(ctx, w)
	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return outcome{cancelled: true}
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, string(Classify(err)))
		return outcome{err: err}
	}
	span.SetAttributes(attribute.Int("window.offers", len(raws)))
	return outcome{offers: r.reconciler.ResolveWindow(raws, w.Meta())}
}

// merge appends outcomes in window order. It reports whether a cancelled
// window was reached, in which case the remaining outcomes are discarded.
func (r Runner) merge(chunk []RequestWindow, outcomes []outcome, results *offer.ResultSet, stats *Stats) bool {
	for i, o := range outcomes {
		w := chunk[i]
		if o.cancelled {
			return true
		}
		stats.Processed++

		if o.err != nil {
			kind := Classify(o.err)
			stats.Skipped[kind]++
			r.tel.ReportWarning(report_runner_window, o.err, w.String(), string(kind))
			windowCounter.Add(context.Background(), 1, metric.WithAttributes(
				attribute.String("outcome", string(kind)),
			))
			continue
		}

		results.Append(o.offers...)
		stats.Offers += len(o.offers)
		for _, resolved := range o.offers {
			if !resolved.VehicleResolved {
				stats.Unresolved++
			}
		}
		r.tel.ReportDebug(report_runner_window, w.String(), len(o.offers))
		windowCounter.Add(context.Background(), 1, metric.WithAttributes(
			attribute.String("outcome", "ok"),
		))
		offerCounter.Add(context.Background(), int64(len(o.offers)))
	}
	return false
}
