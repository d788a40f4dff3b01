package sink

import (
	"context"
	"database/sql"
	_ "embed"

	"rentscan/lib/sqliteutil"
)

//go:embed schema.sql
var Schema string

const insertOffer = `insert into offers (
    campaign_id, source, window_index,
    vehicle_name, rental_company, rental_price, gear_type, has_air_conditioning,
    category_name, rating_percent, pickup_date, dropoff_date, tier_days,
    aux_code1, aux_code2, vehicle_resolved, match_confidence
) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// SQL appends records to the offers table of a sqlite or libsql database.
type SQL struct {
	db *sql.DB
}

// NewSQL migrates db and returns a sink writing to it.
func NewSQL(ctx context.Context, db *sql.DB) (SQL, error) {
	err := sqliteutil.Migrate(ctx, db, Schema)
	if err != nil {
		return SQL{}, err
	}
	return SQL{db: db}, nil
}

func (s SQL) Name() string {
	return "sql"
}

func (s SQL) Write(ctx context.Context, batch Batch) error {
	err := sqliteutil.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, insertOffer)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, o := range batch.Offers {
			rec := o.Record()
			_, err = stmt.ExecContext(
				ctx,
				batch.CampaignId, batch.Source, o.Window.Index,
				rec.VehicleName, rec.RentalCompany, rec.RentalPrice, rec.GearType, rec.HasAirConditioning,
				rec.CategoryName, rec.RatingPercent, rec.PickupDate, rec.DropoffDate, rec.TierDays,
				rec.AuxCode1, rec.AuxCode2, o.VehicleResolved, o.MatchConfidence,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &SerializationError{Sink: s.Name(), Err: err}
	}
	return nil
}
