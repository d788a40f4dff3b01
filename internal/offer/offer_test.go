package offer

import (
	"strings"
	"sync"
	"testing"
	"time"

	"rentscan/internal/catalog"
	"rentscan/internal/resolve"
	"rentscan/lib/telemetry"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func newReconciler(t *testing.T, rec *telemetry.Recorder) Reconciler {
	t.Helper()
	cat, err := catalog.Load(catalog.Readers{
		Vehicles: strings.NewReader(
			"alias;canonicalCode;canonicalName;auxCode2\n" +
				"fiat mobi like;MOBI;Fiat Mobi;B\n" +
				"hyundai hb20;HB20;Hyundai HB20;C\n",
		),
		Vendors:    strings.NewReader("code,name\nMOV,Movida\n"),
		Categories: strings.NewReader("code,name\nECO,Economy\n"),
	})
	require.NoError(t, err)
	resolver, err := resolve.New(cat, resolve.DefaultThreshold)
	require.NoError(t, err)
	return NewReconciler(resolver, rec)
}

func window(pickup string, tier int) WindowMeta {
	at, err := time.Parse("2006-01-02T15:04", pickup)
	if err != nil {
		panic(err)
	}
	return WindowMeta{PickupAt: at, DropoffAt: at.AddDate(0, 0, tier), TierDays: tier}
}

func TestReconcileEndToEnd(t *testing.T) {
	reconciler := newReconciler(t, &telemetry.Recorder{})
	results := &ResultSet{}

	summary := reconciler.ReconcileWindow([]RawOffer{{
		VehicleName:  Some("FIAT MOBI LIKE 1.0"),
		VendorCode:   Some("MOV"),
		CategoryCode: Some("ECO"),
	}}, window("2025-06-01T18:00", 2), results)
	require.Equal(t, WindowSummary{Offers: 1}, summary)

	expected := []Record{{
		VehicleName:   "Fiat Mobi",
		RentalCompany: "Movida",
		CategoryName:  "Economy",
		PickupDate:    "2025-06-01",
		DropoffDate:   "2025-06-03",
		TierDays:      2,
		AuxCode1:      "MOBI",
		AuxCode2:      "B",
	}}
	if diff := cmp.Diff(expected, results.Records()); diff != "" {
		t.Fatal(diff)
	}

	offers := results.Offers()
	require.Equal(t, 100, offers[0].MatchConfidence)
}

func TestReconcileRawFallback(t *testing.T) {
	rec := &telemetry.Recorder{}
	reconciler := newReconciler(t, rec)

	resolved := reconciler.Reconcile(RawOffer{
		VehicleName:  Some("Zzzz Qqqq"),
		VendorCode:   Some("XYZ"),
		DailyPrice:   Some("89.9"),
		Transmission: Some("Manual"),
		HasAC:        Some("true"),
		CategoryCode: Some("LUX"),
	}, window("2025-06-01T18:00", 6))

	require.False(t, resolved.VehicleResolved)
	require.Equal(t, Record{
		VehicleName:        "Zzzz Qqqq",
		RentalCompany:      "XYZ",
		RentalPrice:        "89.9",
		GearType:           "Manual",
		HasAirConditioning: "true",
		CategoryName:       "LUX",
		PickupDate:         "2025-06-01",
		DropoffDate:        "2025-06-07",
		TierDays:           6,
	}, resolved.Record())
}

func TestReconcileWindowNeverDrops(t *testing.T) {
	rec := &telemetry.Recorder{}
	reconciler := newReconciler(t, rec)
	results := &ResultSet{}
	results.Append(reconciler.Reconcile(RawOffer{VehicleName: Some("Hyundai HB20")}, window("2025-05-31T11:00", 2)))

	raws := []RawOffer{
		{VehicleName: Some("Hyundai HB20 1.0"), DailyPrice: Some("120")},
		{},
		{VehicleName: Some("Nave Espacial")},
		{VehicleName: Some("Nave Espacial"), VendorCode: Some("MOV")},
		{VehicleName: Some("FIAT MOBI LIKE")},
	}
	before := results.Len()
	summary := reconciler.ReconcileWindow(raws, window("2025-06-01T18:00", 13), results)
	require.Equal(t, before+len(raws), results.Len())
	require.Equal(t, WindowSummary{Offers: 5, Unresolved: 3}, summary)

	records := results.Records()[before:]
	require.Equal(t, "Hyundai HB20", records[0].VehicleName)
	require.Equal(t, "120", records[0].RentalPrice)
	require.Equal(t, Record{PickupDate: "2025-06-01", DropoffDate: "2025-06-14", TierDays: 13}, records[1])
	require.Equal(t, "Nave Espacial", records[2].VehicleName)
	require.Equal(t, "Movida", records[3].RentalCompany)
	require.Equal(t, "Fiat Mobi", records[4].VehicleName)

	// the repeated unresolved name is only reported once
	require.Len(t, rec.Reports("debug", report_reconciler_unresolved), 1)
}

func TestRecordRow(t *testing.T) {
	rec := Record{
		VehicleName:        "Fiat Mobi",
		RentalCompany:      "Movida",
		RentalPrice:        "89.9",
		GearType:           "Manual",
		HasAirConditioning: "true",
		CategoryName:       "Economy",
		RatingPercent:      "92",
		PickupDate:         "2025-06-01",
		DropoffDate:        "2025-06-03",
		TierDays:           2,
		AuxCode1:           "MOBI",
		AuxCode2:           "B",
	}
	row := rec.Row()
	require.Len(t, Columns, 12)
	require.Len(t, row, len(Columns))
	require.Equal(t, []string{
		"Fiat Mobi", "Movida", "89.9", "Manual", "true", "Economy", "92",
		"2025-06-01", "2025-06-03", "2", "MOBI", "B",
	}, row)

	values := rec.Values()
	require.Len(t, values, len(Columns))
	require.Equal(t, 2, values[9], "tierDays stays numeric for spreadsheets")
	for i, v := range values {
		if i == 9 {
			continue
		}
		require.Equal(t, row[i], v, "column %s", Columns[i])
	}
}

func TestFieldOr(t *testing.T) {
	require.Equal(t, "x", Some("x").Or("y"))
	require.Equal(t, "", Some("").Or("y"))
	require.Equal(t, "y", None().Or("y"))
}

func TestResultSetConcurrentAppend(t *testing.T) {
	results := &ResultSet{}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				results.Append(ResolvedOffer{})
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 400, results.Len())
}
