package timezone

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// Location is the timezone the rental sites quote pickup times in.
var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		panic(err)
	}
}

func Now() time.Time {
	return time.Now().In(Location)
}

// Today returns midnight of the current day in Location.
func Today() time.Time {
	return StartOfDay(Now())
}

func StartOfDay(t time.Time) time.Time {
	t = t.In(Location)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, Location)
}

// ParseDate parses "YYYY-MM-DD" as midnight in Location. The empty string
// yields Today.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return Today(), nil
	}
	t, err := time.ParseInLocation("2006-01-02", value, Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return t, nil
}
