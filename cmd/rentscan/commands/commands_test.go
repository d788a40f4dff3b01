package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"rentscan/internal/campaign"
	"rentscan/internal/offer"
	"rentscan/internal/sink"
	"rentscan/internal/sources/replay"
	"rentscan/lib/telemetry"
	"rentscan/lib/timezone"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0777))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0600))
}

// writeCatalog writes a small reference catalog under dir and returns a
// config pointing at it.
func writeCatalog(t *testing.T, dir string) string {
	t.Helper()
	writeFile(t, filepath.Join(dir, "data", "vehicles.csv"), `alias;canonicalCode;canonicalName;auxCode2
FIAT MOBI LIKE;MOBI;Fiat Mobi;B
Renault Kwid Zen;KWID;Renault Kwid;B
renault kwid zen;KWID2;Renault Kwid Zen;B
`)
	writeFile(t, filepath.Join(dir, "data", "vendors.csv"), "code,name\nMOV,Movida\n")
	writeFile(t, filepath.Join(dir, "data", "categories.csv"), "code,name\nECO,Economy\n")

	path := filepath.Join(dir, "campaign.json5")
	writeFile(t, path, `{
		source: "replay",
		city: "REC",
		start_date: "2025-06-01",
		days: 1,
		tiers: [2],
		times: ["18:00"],
		replay_dir: "`+filepath.Join(dir, "responses")+`",
		catalog: {
			vehicles: "`+filepath.Join(dir, "data", "vehicles.csv")+`",
			vendors: "`+filepath.Join(dir, "data", "vendors.csv")+`",
			categories: "`+filepath.Join(dir, "data", "categories.csv")+`",
		},
	}`)
	return path
}

func TestReadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "campaign.json5")
	writeFile(t, path, `{ city: "REC", pickup_gid: "CIT_6322" }`)

	cfg, err := readConfig(path)
	require.NoError(t, err)
	require.Equal(t, sourceViajanet, cfg.Source)
	require.Equal(t, 3, cfg.Days)
	require.Equal(t, []int{2, 6, 13, 15}, cfg.Tiers)
	require.Equal(t, 60, cfg.threshold())
	require.Equal(t, campaign.DefaultRotateEvery, cfg.RotateEvery)
	require.Equal(t, 1, cfg.Parallelism)
	require.Nil(t, cfg.rng())

	source, err := cfg.NewSource(&telemetry.Recorder{})
	require.NoError(t, err)
	require.Equal(t, "viajanet", source.Name())
}

func TestReadConfigExplicitZeroThreshold(t *testing.T) {
	path := filepath.Join(t.TempDir(), "campaign.json5")
	writeFile(t, path, `{ threshold: 0, seed: 7 }`)

	cfg, err := readConfig(path)
	require.NoError(t, err)
	require.Equal(t, 0, cfg.threshold())
	require.NotNil(t, cfg.rng())
}

func TestReadConfigInvalid(t *testing.T) {
	cases := []struct {
		name   string
		config string
	}{
		{"unknown source", `{ source: "kayak" }`},
		{"threshold above 100", `{ threshold: 150 }`},
		{"negative threshold", `{ threshold: -1 }`},
		{"unknown table format", `{ output: { table: "yaml" } }`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "campaign.json5")
			writeFile(t, path, c.config)
			_, err := readConfig(path)
			require.Error(t, err)
		})
	}

	_, err := readConfig(filepath.Join(t.TempDir(), "missing.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestPlan(t *testing.T) {
	cfg := defaultConfig()
	cfg.StartDate = "2025-06-01"
	cfg.Days = 2
	cfg.Tiers = []int{2, 6}
	cfg.Times = []string{"18:00", "23:30"}

	plan, err := cfg.Plan()
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, time.June, 1, 0, 0, 0, 0, timezone.Location), plan.StartDate)

	windows, err := campaign.Generate(plan, cfg.rng())
	require.NoError(t, err)
	require.Len(t, windows, 4)

	cfg.Times = []string{"25:00"}
	_, err = cfg.Plan()
	require.Error(t, err)
}

func TestNewSource(t *testing.T) {
	cfg := defaultConfig()

	cfg.Source = sourceViajanet
	_, err := cfg.NewSource(&telemetry.Recorder{})
	require.Error(t, err, "viajanet requires a pickup gid")

	cfg.Source = sourceRentcars
	cfg.City = "Recife"
	source, err := cfg.NewSource(&telemetry.Recorder{})
	require.NoError(t, err)
	require.Equal(t, "rentcars", source.Name())

	cfg.City = "Gotham"
	_, err = cfg.NewSource(&telemetry.Recorder{})
	require.Error(t, err)

	cfg.Source = sourceReplay
	_, err = cfg.NewSource(&telemetry.Recorder{})
	require.Error(t, err, "replay requires a directory")
}

const replayPayload = `{
	"offers": [
		{
			"vehicle": {"model": "FIAT MOBI LIKE 1.0"},
			"carProviderCode": "MOV",
			"categoryCode": "ECO",
			"pricesDetail": {"BRL": {"daily": {"amount": 89.9}}}
		},
		{
			"vehicle": {"model": "Nave Espacial"},
			"carProviderCode": "XYZ"
		}
	]
}`

func TestReplayCampaign(t *testing.T) {
	dir := t.TempDir()
	cfg, err := readConfig(writeCatalog(t, dir))
	require.NoError(t, err)

	pickup := time.Date(2025, time.June, 1, 0, 0, 0, 0, timezone.Location)
	require.NoError(t, replay.Save(cfg.ReplayDir, "REC", campaign.NewRequestWindow(0, pickup, 2), []byte(replayPayload)))
	require.NoError(t, replay.Save(cfg.ReplayDir, "REC", campaign.NewRequestWindow(0, pickup, 6), []byte(`{"offers": []}`)))

	source, windows, err := replaySource(cfg, &telemetry.Recorder{})
	require.NoError(t, err)
	require.Len(t, windows, 2)
	_, resolver, err := loadResolver(cfg)
	require.NoError(t, err)

	result, err := runCampaign(context.Background(), cfg, source, resolver, windows, &telemetry.Recorder{})
	require.NoError(t, err)
	require.Equal(t, 2, result.Stats.Processed)
	require.Equal(t, 1, result.Stats.Skipped[campaign.FailureEmpty])
	require.Equal(t, 2, result.Stats.Offers)
	require.Equal(t, 1, result.Stats.Unresolved)
	require.NotEmpty(t, result.Id)

	var names []string
	for _, rec := range result.Results.Records() {
		names = append(names, rec.VehicleName)
	}
	if diff := cmp.Diff([]string{"Fiat Mobi", "Nave Espacial"}, names); diff != "" {
		t.Fatal(diff)
	}

	xlsxPath := filepath.Join(dir, "out", "offers.xlsx")
	var table bytes.Buffer
	cfg.Output.Xlsx = xlsxPath
	cfg.Output.Table = sink.FormatCSV
	sinks, closeSinks, err := cfg.Sinks(context.Background(), &table, result.Source, windows[0].PickupAt)
	require.NoError(t, err)
	defer closeSinks()
	require.Len(t, sinks, 2)

	require.NoError(t, writeResult(context.Background(), sinks, result))
	require.Contains(t, table.String(), "Fiat Mobi,Movida,89.9")

	f, err := excelize.OpenFile(xlsxPath)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(sink.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, offer.Columns, rows[0])
	require.Equal(t, "2025-06-03", rows[1][8])
}

func TestReplayCampaignMixedPrefixes(t *testing.T) {
	dir := t.TempDir()
	cfg, err := readConfig(writeCatalog(t, dir))
	require.NoError(t, err)
	cfg.City = ""

	pickup := time.Date(2025, time.June, 1, 0, 0, 0, 0, timezone.Location)
	w := campaign.NewRequestWindow(0, pickup, 2)
	require.NoError(t, replay.Save(cfg.ReplayDir, "FOR", w, []byte(`{"offers": [{"vehicle": {"model": "Renault Kwid Zen"}}]}`)))
	require.NoError(t, replay.Save(cfg.ReplayDir, "REC", w, []byte(`{"offers": [{"vehicle": {"model": "Fiat Mobi Like"}}]}`)))

	source, windows, err := replaySource(cfg, &telemetry.Recorder{})
	require.NoError(t, err)
	require.Len(t, windows, 2)
	_, resolver, err := loadResolver(cfg)
	require.NoError(t, err)

	result, err := runCampaign(context.Background(), cfg, source, resolver, windows, &telemetry.Recorder{})
	require.NoError(t, err)
	require.Equal(t, 0, result.Stats.SkippedTotal())

	var names []string
	for _, rec := range result.Results.Records() {
		names = append(names, rec.VehicleName)
	}
	if diff := cmp.Diff([]string{"Renault Kwid Zen", "Fiat Mobi"}, names); diff != "" {
		t.Fatal(diff)
	}
}

func TestSinksWithSqlite(t *testing.T) {
	dir := t.TempDir()
	cfg := defaultConfig()
	cfg.City = "REC"
	cfg.Output.Sqlite.File = filepath.Join(dir, "offers.db")

	start := time.Date(2025, time.June, 1, 0, 0, 0, 0, timezone.Location)
	sinks, closeSinks, err := cfg.Sinks(context.Background(), &bytes.Buffer{}, "viajanet", start)
	require.NoError(t, err)
	defer closeSinks()

	require.Len(t, sinks, 2)
	require.Equal(t, sink.Xlsx{Path: "viajanet_rec_20250601_formatado.xlsx"}, sinks[0])
	require.Equal(t, "sql", sinks[1].Name())
}

func TestRenderMatches(t *testing.T) {
	cfg, err := readConfig(writeCatalog(t, t.TempDir()))
	require.NoError(t, err)
	_, resolver, err := loadResolver(cfg)
	require.NoError(t, err)

	var out bytes.Buffer
	renderMatches(&out, resolver, []string{"FIAT MOBI LIKE 1.0", "zzzz qqqq"})
	require.Contains(t, out.String(), "Fiat Mobi")
	require.Contains(t, out.String(), "MOBI")
	require.Contains(t, out.String(), "zzzz qqqq")
}

func TestRenderCatalog(t *testing.T) {
	cfg, err := readConfig(writeCatalog(t, t.TempDir()))
	require.NoError(t, err)
	cat, _, err := loadResolver(cfg)
	require.NoError(t, err)

	var out bytes.Buffer
	renderCatalog(&out, cat)
	require.Contains(t, out.String(), "vehicles")
	require.Contains(t, out.String(), "1 duplicate alias keys")
	require.Contains(t, out.String(), "Renault Kwid Zen")
}
