package campaign

import (
	"fmt"
	"math/rand"
	"time"

	"rentscan/internal/offer"
)

// RequestWindow is one pickup/dropoff pair to request offers for.
// DropoffAt is always PickupAt plus TierDays calendar days.
type RequestWindow struct {
	Index     int
	PickupAt  time.Time
	DropoffAt time.Time
	TierDays  int
}

func NewRequestWindow(index int, pickupAt time.Time, tierDays int) RequestWindow {
	return RequestWindow{
		Index:     index,
		PickupAt:  pickupAt,
		DropoffAt: pickupAt.AddDate(0, 0, tierDays),
		TierDays:  tierDays,
	}
}

func (w RequestWindow) Meta() offer.WindowMeta {
	return offer.WindowMeta{
		Index:     w.Index,
		PickupAt:  w.PickupAt,
		DropoffAt: w.DropoffAt,
		TierDays:  w.TierDays,
	}
}

func (w RequestWindow) String() string {
	return fmt.Sprintf("#%d %s +%dd", w.Index, w.PickupAt.Format("2006-01-02T15:04"), w.TierDays)
}

// TimeOfDay is a pickup hour and minute.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func ParseTimeOfDay(value string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("parse time of day %q: %w", value, err)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Plan holds the parameters windows are generated from. StartDate carries the
// location pickup times are expressed in.
type Plan struct {
	StartDate time.Time
	Days      int
	Tiers     []int
	// Times is the set pickup times are picked from, a single entry makes
	// every window use the same time.
	Times        []TimeOfDay
	ShuffleTiers bool
}

func (p Plan) Validate() error {
	if p.Days < 1 {
		return fmt.Errorf("days must be at least 1, got %d", p.Days)
	}
	if len(p.Tiers) == 0 {
		return fmt.Errorf("at least one tier is required")
	}
	for _, tier := range p.Tiers {
		if tier < 1 {
			return fmt.Errorf("tiers must be positive, got %d", tier)
		}
	}
	if len(p.Times) == 0 {
		return fmt.Errorf("at least one time of day is required")
	}
	for _, t := range p.Times {
		if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 {
			return fmt.Errorf("invalid time of day %s", t)
		}
	}
	return nil
}

// Generate returns the Days x len(Tiers) windows of the plan, day by day.
// Within a day tiers keep their configured order unless ShuffleTiers is set.
// rng drives shuffling and time selection; the same seed yields the same
// windows. A nil rng is seeded from the clock.
func Generate(plan Plan, rng *rand.Rand) ([]RequestWindow, error) {
	err := plan.Validate()
	if err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	loc := plan.StartDate.Location()
	year, month, day := plan.StartDate.Date()

	windows := make([]RequestWindow, 0, plan.Days*len(plan.Tiers))
	tiers := make([]int, len(plan.Tiers))
	for d := 0; d < plan.Days; d++ {
		copy(tiers, plan.Tiers)
		if plan.ShuffleTiers {
			rng.Shuffle(len(tiers), func(i, j int) {
				tiers[i], tiers[j] = tiers[j], tiers[i]
			})
		}

		for _, tier := range tiers {
			tod := plan.Times[0]
			if len(plan.Times) > 1 {
				tod = plan.Times[rng.Intn(len(plan.Times))]
			}
			pickupAt := time.Date(year, month, day+d, tod.Hour, tod.Minute, 0, 0, loc)
			windows = append(windows, NewRequestWindow(len(windows), pickupAt, tier))
		}
	}
	return windows, nil
}
