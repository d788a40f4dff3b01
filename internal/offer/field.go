package offer

// Field is an optional value extracted from a source payload. Sources set
// Ok only when the value was actually present; an absent field is not the
// same as a present empty string.
type Field struct {
	Value string
	Ok    bool
}

func Some(value string) Field {
	return Field{Value: value, Ok: true}
}

func None() Field {
	return Field{}
}

// Or returns the value when present, fallback otherwise.
func (f Field) Or(fallback string) string {
	if f.Ok {
		return f.Value
	}
	return fallback
}

// RawOffer is one listing as returned by an offer source, before any catalog
// resolution. It is never modified after the source returns it.
type RawOffer struct {
	VehicleName  Field
	VendorCode   Field
	DailyPrice   Field
	Transmission Field
	HasAC        Field
	CategoryCode Field
	// Rating is only published by some sources, as a percentage.
	Rating Field
}
