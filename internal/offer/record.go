package offer

import (
	"strconv"
	"time"

	"rentscan/internal/catalog"
)

const DateLayout = "2006-01-02"

// Columns is the header of every serialized result set, in record order.
var Columns = []string{
	"vehicleName",
	"rentalCompany",
	"rentalPrice",
	"gearType",
	"hasAirConditioning",
	"categoryName",
	"ratingPercent",
	"pickupDate",
	"dropoffDate",
	"tierDays",
	"auxCode1",
	"auxCode2",
}

// WindowMeta describes the request window an offer was fetched for.
type WindowMeta struct {
	Index     int
	PickupAt  time.Time
	DropoffAt time.Time
	TierDays  int
}

// ResolvedOffer is a raw offer joined with its catalog resolution and window.
type ResolvedOffer struct {
	Raw    RawOffer
	Window WindowMeta

	Vehicle         catalog.VehicleEntry
	VehicleResolved bool
	MatchConfidence int

	VendorName     string
	VendorResolved bool

	CategoryName     string
	CategoryResolved bool
}

// Record is the canonical output row. Unresolved identifiers carry the raw
// value, absent fields are empty strings.
type Record struct {
	VehicleName        string
	RentalCompany      string
	RentalPrice        string
	GearType           string
	HasAirConditioning string
	CategoryName       string
	RatingPercent      string
	PickupDate         string
	DropoffDate        string
	TierDays           int
	AuxCode1           string
	AuxCode2           string
}

func (o ResolvedOffer) Record() Record {
	rec := Record{
		VehicleName:        o.Raw.VehicleName.Or(""),
		RentalCompany:      o.Raw.VendorCode.Or(""),
		RentalPrice:        o.Raw.DailyPrice.Or(""),
		GearType:           o.Raw.Transmission.Or(""),
		HasAirConditioning: o.Raw.HasAC.Or(""),
		CategoryName:       o.Raw.CategoryCode.Or(""),
		RatingPercent:      o.Raw.Rating.Or(""),
		PickupDate:         o.Window.PickupAt.Format(DateLayout),
		DropoffDate:        o.Window.DropoffAt.Format(DateLayout),
		TierDays:           o.Window.TierDays,
	}
	if o.VehicleResolved {
		rec.VehicleName = o.Vehicle.CanonicalName
		rec.AuxCode1 = o.Vehicle.AuxCode1
		rec.AuxCode2 = o.Vehicle.AuxCode2
	}
	if o.VendorResolved {
		rec.RentalCompany = o.VendorName
	}
	if o.CategoryResolved {
		rec.CategoryName = o.CategoryName
	}
	return rec
}

// Values returns the record fields in Columns order. TierDays stays an int.
func (r Record) Values() []any {
	return []any{
		r.VehicleName,
		r.RentalCompany,
		r.RentalPrice,
		r.GearType,
		r.HasAirConditioning,
		r.CategoryName,
		r.RatingPercent,
		r.PickupDate,
		r.DropoffDate,
		r.TierDays,
		r.AuxCode1,
		r.AuxCode2,
	}
}

// Row renders Values as text.
func (r Record) Row() []string {
	values := r.Values()
	row := make([]string, len(values))
	for i, v := range values {
		switch v := v.(type) {
		case string:
			row[i] = v
		case int:
			row[i] = strconv.Itoa(v)
		}
	}
	return row
}
