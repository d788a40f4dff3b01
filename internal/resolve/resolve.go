// Package resolve maps free-text vendor identifiers onto catalog entries.
//
// Vehicle names are fuzzy matched with a token-set similarity against every
// alias key of the catalog, vendor and category codes are exact lookups.
package resolve

import (
	"fmt"

	"rentscan/internal/catalog"
	"rentscan/lib/fuzzy"
	"rentscan/lib/textutil"
)

// DefaultThreshold is the minimum score for a vehicle match. It must stay the
// same across runs that are meant to be compared.
const DefaultThreshold = 60

// Match is the outcome of resolving one vehicle name. When Resolved is false
// Vehicle is the zero value and Confidence is the best score that was seen.
type Match struct {
	Vehicle    catalog.VehicleEntry
	Resolved   bool
	Confidence int
}

type Resolver struct {
	catalog   *catalog.Catalog
	threshold int
}

func New(cat *catalog.Catalog, threshold int) (Resolver, error) {
	if cat == nil {
		return Resolver{}, fmt.Errorf("resolver requires a catalog")
	}
	if threshold < 0 || threshold > 100 {
		return Resolver{}, fmt.Errorf("threshold must be within 0..100, got %d", threshold)
	}
	return Resolver{catalog: cat, threshold: threshold}, nil
}

func (r Resolver) Threshold() int {
	return r.threshold
}

// Resolve returns the catalog vehicle whose alias best matches rawName.
//
// A name that normalizes to exactly an alias key resolves to it with
// confidence 100. Otherwise every alias is scored, the first alias in load
// order wins ties, and the match is accepted when the score reaches the
// threshold.
func (r Resolver) Resolve(rawName string) Match {
	key := textutil.Normalize(rawName)
	if key == "" {
		return Match{}
	}

	exact, ok := r.catalog.Vehicle(key)
	if ok {
		return Match{Vehicle: exact, Resolved: true, Confidence: 100}
	}

	best := -1
	bestScore := 0
	for i, v := range r.catalog.Vehicles() {
		score := fuzzy.TokenSetRatio(key, v.Key)
		if best < 0 || score > bestScore {
			best = i
			bestScore = score
		}
	}
	if best < 0 || bestScore < r.threshold {
		return Match{Confidence: bestScore}
	}
	return Match{
		Vehicle:    r.catalog.Vehicles()[best],
		Resolved:   true,
		Confidence: bestScore,
	}
}

// ResolveVendor returns the vendor name for an exact code.
func (r Resolver) ResolveVendor(code string) (string, bool) {
	e, ok := r.catalog.Vendor(code)
	return e.Name, ok
}

// ResolveCategory returns the category name for an exact code.
func (r Resolver) ResolveCategory(code string) (string, bool) {
	e, ok := r.catalog.Category(code)
	return e.Name, ok
}
