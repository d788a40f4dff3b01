package commands

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"path/filepath"
	"time"

	"rentscan/internal/campaign"
	"rentscan/internal/catalog"
	"rentscan/internal/resolve"
	"rentscan/internal/sink"
	"rentscan/internal/sources/rentcars"
	"rentscan/internal/sources/replay"
	"rentscan/internal/sources/viajanet"
	"rentscan/internal/sources/webclient"
	"rentscan/lib/configutil"
	"rentscan/lib/sqliteutil"
	"rentscan/lib/telemetry"
	"rentscan/lib/timezone"
)

const (
	sourceViajanet = "viajanet"
	sourceRentcars = "rentcars"
	sourceReplay   = "replay"
)

type OutputConfig struct {
	// Xlsx is the spreadsheet to write, defaults to
	// <source>_<city>_<yyyymmdd>_formatado.xlsx.
	Xlsx string `json:"xlsx"`
	// Table additionally prints the records to stdout when set.
	Table  sink.TableFormat  `json:"table"`
	Sqlite sqliteutil.Config `json:"sqlite"`
}

type Config struct {
	// Source is one of viajanet, rentcars or replay.
	Source string `json:"source"`
	// City is the city code used in urls and file names, for rentcars it may
	// also be a numeric city code.
	City       string `json:"city"`
	PickupGid  string `json:"pickup_gid"`
	DropoffGid string `json:"dropoff_gid"`
	BaseUrl    string `json:"base_url"`

	// StartDate is YYYY-MM-DD, empty means today.
	StartDate    string   `json:"start_date"`
	Days         int      `json:"days"`
	Tiers        []int    `json:"tiers"`
	Times        []string `json:"times"`
	ShuffleTiers bool     `json:"shuffle_tiers"`
	Seed         *int64   `json:"seed"`

	RotateEvery int  `json:"rotate_every"`
	Threshold   *int `json:"threshold"`
	Parallelism int  `json:"parallelism"`

	Catalog catalog.Paths     `json:"catalog"`
	Output  OutputConfig      `json:"output"`
	HTTP    webclient.Options `json:"http"`

	ReplayDir    string `json:"replay_dir"`
	ReplayPrefix string `json:"replay_prefix"`
	// DumpDir keeps every viajanet response as a replay file when set.
	DumpDir string `json:"dump_dir"`
}

func defaultConfig() Config {
	threshold := resolve.DefaultThreshold
	return Config{
		Source:      sourceViajanet,
		Days:        3,
		Tiers:       []int{2, 6, 13, 15},
		Times:       []string{"18:00", "19:00", "20:00", "21:00", "22:00", "23:00"},
		RotateEvery: campaign.DefaultRotateEvery,
		Threshold:   &threshold,
		Parallelism: 1,
		Catalog: catalog.Paths{
			Vehicles:   "data/vehicles.csv",
			Vendors:    "data/vendors.csv",
			Categories: "data/categories.csv",
		},
		HTTP: webclient.Options{
			RatePerSecond:  1,
			TimeoutSeconds: 30,
		},
	}
}

func readConfig(path string) (Config, error) {
	cfg, err := configutil.ReadConfigWithDefaults(path, defaultConfig())
	if err != nil {
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}
	err = cfg.Validate()
	if err != nil {
		return Config{}, fmt.Errorf("validate %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Source {
	case sourceViajanet, sourceRentcars, sourceReplay:
	default:
		return fmt.Errorf("unknown source %q", c.Source)
	}
	if c.Threshold != nil && (*c.Threshold < 0 || *c.Threshold > 100) {
		return fmt.Errorf("threshold must be within 0..100, got %d", *c.Threshold)
	}
	if c.RotateEvery < 1 {
		return fmt.Errorf("rotate_every must be at least 1, got %d", c.RotateEvery)
	}
	switch c.Output.Table {
	case "", sink.FormatTable, sink.FormatCSV, sink.FormatMarkdown:
	default:
		return fmt.Errorf("unknown table format %q", c.Output.Table)
	}
	return nil
}

func (c Config) threshold() int {
	if c.Threshold == nil {
		return resolve.DefaultThreshold
	}
	return *c.Threshold
}

func (c Config) rng() *rand.Rand {
	if c.Seed == nil {
		return nil
	}
	return rand.New(rand.NewSource(*c.Seed))
}

func (c Config) Plan() (campaign.Plan, error) {
	start, err := timezone.ParseDate(c.StartDate)
	if err != nil {
		return campaign.Plan{}, err
	}
	times := make([]campaign.TimeOfDay, len(c.Times))
	for i, value := range c.Times {
		times[i], err = campaign.ParseTimeOfDay(value)
		if err != nil {
			return campaign.Plan{}, err
		}
	}
	return campaign.Plan{
		StartDate:    start,
		Days:         c.Days,
		Tiers:        c.Tiers,
		Times:        times,
		ShuffleTiers: c.ShuffleTiers,
	}, nil
}

func (c Config) replayPrefix() string {
	if c.ReplayPrefix != "" {
		return c.ReplayPrefix
	}
	return c.City
}

// NewSource builds the configured offer source.
func (c Config) NewSource(tel telemetry.API) (campaign.Source, error) {
	switch c.Source {
	case sourceViajanet:
		source, err := viajanet.New(viajanet.Options{
			BaseUrl:    c.BaseUrl,
			City:       c.City,
			PickupGid:  c.PickupGid,
			DropoffGid: c.DropoffGid,
			HTTP:       c.HTTP,
			DumpDir:    c.DumpDir,
		}, tel)
		if err != nil {
			return nil, err
		}
		return source, nil
	case sourceRentcars:
		city, err := rentcars.ParseCity(c.City)
		if err != nil {
			return nil, err
		}
		source, err := rentcars.New(rentcars.Options{
			BaseUrl:  c.BaseUrl,
			CityCode: city,
			HTTP:     c.HTTP,
		}, tel)
		if err != nil {
			return nil, err
		}
		return source, nil
	case sourceReplay:
		if c.ReplayDir == "" {
			return nil, fmt.Errorf("replay_dir is required for the replay source")
		}
		return replay.New(c.ReplayDir, c.replayPrefix(), viajanet.ParsePayload, tel), nil
	}
	return nil, fmt.Errorf("unknown source %q", c.Source)
}

// Sinks opens every configured sink. The returned close func releases the
// database, if any.
func (c Config) Sinks(ctx context.Context, out io.Writer, sourceName string, start time.Time) ([]sink.Sink, func(), error) {
	xlsxPath := c.Output.Xlsx
	if xlsxPath == "" {
		xlsxPath = sink.DefaultFileName(sourceName, c.City, start)
	}
	sinks := []sink.Sink{sink.Xlsx{Path: filepath.Clean(xlsxPath)}}
	if c.Output.Table != "" {
		sinks = append(sinks, sink.Table{Out: out, Format: c.Output.Table})
	}

	closeFn := func() {}
	if c.Output.Sqlite.Enabled() {
		db, err := c.Output.Sqlite.OpenDB()
		if err != nil {
			return nil, closeFn, err
		}
		closeFn = func() { db.Close() }
		sqlSink, err := sink.NewSQL(ctx, db)
		if err != nil {
			closeFn()
			return nil, func() {}, err
		}
		sinks = append(sinks, sqlSink)
	}
	return sinks, closeFn, nil
}

func loadResolver(c Config) (*catalog.Catalog, resolve.Resolver, error) {
	cat, err := catalog.LoadFiles(c.Catalog)
	if err != nil {
		return nil, resolve.Resolver{}, err
	}
	resolver, err := resolve.New(cat, c.threshold())
	if err != nil {
		return nil, resolve.Resolver{}, err
	}
	return cat, resolver, nil
}
