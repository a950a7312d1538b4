// Package filter reduces a zone collection to the zones matching a filter
// state. Every predicate is independent and they combine with AND.
package filter

import (
	"strings"

	"github.com/jengzang/zonemap-backend-go/internal/models"
	"golang.org/x/text/cases"
)

// Predicate reports whether a zone passes one filter dimension.
type Predicate func(z models.Zone) bool

// ViabilityBand is a half-open [Min, Max) viabilization range. Complete is
// closed at 100.
type ViabilityBand struct {
	Token string
	Min   float64
	Max   float64
}

// ViabilityBands are the bands of the viability multi-select.
var ViabilityBands = []ViabilityBand{
	{Token: models.ViabilityComplete, Min: 80, Max: 100},
	{Token: models.ViabilityPartial, Min: 20, Max: 80},
	{Token: models.ViabilityNone, Min: 0, Max: 20},
}

func (b ViabilityBand) contains(v float64) bool {
	if b.Token == models.ViabilityComplete {
		return v >= b.Min && v <= b.Max
	}
	return v >= b.Min && v < b.Max
}

// Apply returns the zones passing every active predicate of state, in input
// order. The input slice is never modified.
func Apply(zones []models.Zone, state models.FilterState) []models.Zone {
	preds := Predicates(state)
	out := make([]models.Zone, 0, len(zones))
	for _, z := range zones {
		if matchAll(z, preds) {
			out = append(out, z)
		}
	}
	return out
}

// Matches reports whether a single zone passes state.
func Matches(z models.Zone, state models.FilterState) bool {
	return matchAll(z, Predicates(state))
}

func matchAll(z models.Zone, preds []Predicate) bool {
	for _, p := range preds {
		if !p(z) {
			return false
		}
	}
	return true
}

// Predicates builds the active predicates for state. Inactive dimensions
// are left out, so an all-defaults state yields no predicates.
func Predicates(state models.FilterState) []Predicate {
	var preds []Predicate
	if p := OccupancyPredicate(state.OccupancyBand); p != nil {
		preds = append(preds, p)
	}
	if p := SearchPredicate(state.Search); p != nil {
		preds = append(preds, p)
	}
	if p := AreaPredicate(state.AreaRange); p != nil {
		preds = append(preds, p)
	}
	if p := ViabilityPredicate(state.Viability); p != nil {
		preds = append(preds, p)
	}
	if p := StatusPredicate(state.Statuses); p != nil {
		preds = append(preds, p)
	}
	return preds
}

// OccupancyPredicate filters on the coarse occupancy band. Unknown occupancy
// counts as 0 here. all and unrecognized bands are inactive.
func OccupancyPredicate(band models.OccupancyBand) Predicate {
	switch band {
	case models.OccupancyHigh:
		return func(z models.Zone) bool { return z.OccupancyOr(0) >= 60 }
	case models.OccupancyMedium:
		return func(z models.Zone) bool {
			v := z.OccupancyOr(0)
			return v >= 30 && v < 60
		}
	case models.OccupancyLow:
		return func(z models.Zone) bool { return z.OccupancyOr(0) < 30 }
	default:
		return nil
	}
}

// SearchPredicate matches term as a case-insensitive substring of the zone
// name. Case folding is Unicode aware so "É" matches "é".
func SearchPredicate(term string) Predicate {
	if term == "" {
		return nil
	}
	caser := cases.Fold()
	folded := caser.String(term)
	return func(z models.Zone) bool {
		return strings.Contains(caser.String(z.Name), folded)
	}
}

// AreaPredicate keeps zones whose area (unknown as 0) lies in r inclusive.
// A bound sitting on its slider stop is open, so the default range is
// inactive and Max at DefaultAreaMax keeps zones larger than it. An inverted
// range is inactive too, matching how the query codec reads one.
func AreaPredicate(r models.AreaRange) Predicate {
	if r.IsDefault() || r.Min > r.Max {
		return nil
	}
	checkMin := r.Min != models.DefaultAreaMin
	checkMax := r.Max != models.DefaultAreaMax
	return func(z models.Zone) bool {
		a := z.AreaOr(0)
		if checkMin && a < r.Min {
			return false
		}
		if checkMax && a > r.Max {
			return false
		}
		return true
	}
}

// ViabilityPredicate keeps zones whose viabilization (unknown as 0) falls in
// at least one selected band. Unknown tokens are ignored, so a selection
// naming no known band is inactive.
func ViabilityPredicate(selected []string) Predicate {
	var bands []ViabilityBand
	for _, tok := range selected {
		for _, b := range ViabilityBands {
			if b.Token == tok {
				bands = append(bands, b)
			}
		}
	}
	if len(bands) == 0 {
		return nil
	}
	return func(z models.Zone) bool {
		v := z.ViabilizationOr(0)
		for _, b := range bands {
			if b.contains(v) {
				return true
			}
		}
		return false
	}
}

// StatusPredicate keeps zones whose status is in selected. Zones without a
// status never match a non-empty selection.
func StatusPredicate(selected []string) Predicate {
	if len(selected) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		set[s] = struct{}{}
	}
	return func(z models.Zone) bool {
		if z.Status == nil {
			return false
		}
		_, ok := set[*z.Status]
		return ok
	}
}
