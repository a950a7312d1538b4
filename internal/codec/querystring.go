// Package codec serializes a FilterState to and from a flat query string so
// filtered map views can be shared and bookmarked.
package codec

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/jengzang/zonemap-backend-go/internal/models"
)

// Query-string keys.
const (
	KeyFilter    = "filter"
	KeySearch    = "search"
	KeyMinArea   = "minSuperficie"
	KeyMaxArea   = "maxSuperficie"
	KeyViability = "viabilite"
	KeyStatus    = "statut"
	KeyHeatmap   = "heatmap"
)

// Keys lists every key the codec owns.
var Keys = []string{KeyFilter, KeySearch, KeyMinArea, KeyMaxArea, KeyViability, KeyStatus, KeyHeatmap}

// Encode writes the non-default fields of s as a query string without a
// leading "?". Output is canonical: keys are sorted, set members are
// deduplicated and unknown viability tokens are dropped, so decoding and
// re-encoding yields the same string.
func Encode(s models.FilterState) string {
	return Values(s).Encode()
}

// Values is Encode before escaping.
func Values(s models.FilterState) url.Values {
	v := url.Values{}
	if s.OccupancyBand != "" && s.OccupancyBand != models.OccupancyAll && s.OccupancyBand.Valid() {
		v.Set(KeyFilter, string(s.OccupancyBand))
	}
	if s.Search != "" {
		v.Set(KeySearch, s.Search)
	}
	if s.AreaRange.Min != models.DefaultAreaMin {
		v.Set(KeyMinArea, formatFloat(s.AreaRange.Min))
	}
	if s.AreaRange.Max != models.DefaultAreaMax {
		v.Set(KeyMaxArea, formatFloat(s.AreaRange.Max))
	}
	if set := knownViability(canonicalSet(s.Viability)); len(set) > 0 {
		v.Set(KeyViability, strings.Join(set, ","))
	}
	if set := canonicalSet(s.Statuses); len(set) > 0 {
		v.Set(KeyStatus, strings.Join(set, ","))
	}
	if s.Heatmap {
		v.Set(KeyHeatmap, "true")
	}
	return v
}

// Decode parses a query string (with or without a leading "?") into a
// FilterState. Unknown keys are ignored and malformed values fall back to
// that field's default. Decode never fails; the worst case is the default
// state.
func Decode(raw string) models.FilterState {
	// ParseQuery keeps every pair it could parse alongside the error, so a
	// single bad pair only loses that field.
	values, _ := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	return FromValues(values)
}

// FromValues is Decode for already-parsed values, e.g. a request's query.
func FromValues(values url.Values) models.FilterState {
	s := models.DefaultFilterState()

	if band := models.OccupancyBand(values.Get(KeyFilter)); band.Valid() {
		s.OccupancyBand = band
	}
	s.Search = values.Get(KeySearch)

	if f, ok := parseArea(values.Get(KeyMinArea)); ok {
		s.AreaRange.Min = f
	}
	if f, ok := parseArea(values.Get(KeyMaxArea)); ok {
		s.AreaRange.Max = f
	}
	if s.AreaRange.Min > s.AreaRange.Max {
		s.AreaRange = models.DefaultAreaRange()
	}

	s.Viability = knownViability(canonicalSet(splitList(values.Get(KeyViability))))
	s.Statuses = canonicalSet(splitList(values.Get(KeyStatus)))
	s.Heatmap = values.Get(KeyHeatmap) == "true"
	return s
}

// Normalize returns s as it would come out of Decode(Encode(s)).
func Normalize(s models.FilterState) models.FilterState {
	return FromValues(Values(s))
}

func parseArea(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	return f, true
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

// canonicalSet trims, drops empties and duplicates, keeping first-seen order.
func canonicalSet(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	var out []string
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}

func knownViability(tokens []string) []string {
	var out []string
	for _, t := range tokens {
		switch t {
		case models.ViabilityComplete, models.ViabilityPartial, models.ViabilityNone:
			out = append(out, t)
		}
	}
	return out
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ShareURL appends the encoded state to base, replacing any codec keys
// already present in base's query and keeping the rest.
func ShareURL(base string, s models.FilterState) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for _, k := range Keys {
		q.Del(k)
	}
	for k, vals := range Values(s) {
		for _, val := range vals {
			q.Add(k, val)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
