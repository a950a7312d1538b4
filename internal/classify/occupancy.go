// Package classify maps occupancy percentages to risk bands and colors.
package classify

import (
	"math"
	"strconv"
)

// Band is a discrete occupancy risk band.
type Band string

const (
	BandUnknown    Band = "unknown"
	BandVeryLow    Band = "verylow"
	BandLow        Band = "low"
	BandMediumLow  Band = "medium-low"
	BandMediumHigh Band = "medium-high"
	BandHigh       Band = "high"
)

// Style is the fixed presentation of a band. Every field is a literal so
// renderers never build identifiers from fragments.
type Style struct {
	ColorToken string `json:"color"`
	Hex        string `json:"hex"`
	FillClass  string `json:"fillClass"`
	BadgeClass string `json:"badgeClass"`
	Label      string `json:"label"`
}

var styles = map[Band]Style{
	BandUnknown:    {ColorToken: "gray", Hex: "#9ca3af", FillClass: "bg-gray-400", BadgeClass: "bg-gray-100 text-gray-800", Label: "Inconnu"},
	BandVeryLow:    {ColorToken: "green", Hex: "#16a34a", FillClass: "bg-green-600", BadgeClass: "bg-green-100 text-green-800", Label: "Très faible"},
	BandLow:        {ColorToken: "lightgreen", Hex: "#84cc16", FillClass: "bg-lime-500", BadgeClass: "bg-lime-100 text-lime-800", Label: "Faible"},
	BandMediumLow:  {ColorToken: "yellow", Hex: "#eab308", FillClass: "bg-yellow-500", BadgeClass: "bg-yellow-100 text-yellow-800", Label: "Moyen-faible"},
	BandMediumHigh: {ColorToken: "orange", Hex: "#f97316", FillClass: "bg-orange-500", BadgeClass: "bg-orange-100 text-orange-800", Label: "Moyen-élevé"},
	BandHigh:       {ColorToken: "red", Hex: "#dc2626", FillClass: "bg-red-600", BadgeClass: "bg-red-100 text-red-800", Label: "Élevé"},
}

var severity = map[Band]int{
	BandUnknown:    0,
	BandVeryLow:    1,
	BandLow:        2,
	BandMediumLow:  3,
	BandMediumHigh: 4,
	BandHigh:       5,
}

// Bands lists every band from least to most severe.
func Bands() []Band {
	return []Band{BandUnknown, BandVeryLow, BandLow, BandMediumLow, BandMediumHigh, BandHigh}
}

// ClassifyOccupancy maps a percentage to its band. Lower bounds are
// inclusive; nil and NaN are unknown.
func ClassifyOccupancy(pct *float64) Band {
	if pct == nil || math.IsNaN(*pct) {
		return BandUnknown
	}
	p := *pct
	switch {
	case p >= 80:
		return BandHigh
	case p >= 60:
		return BandMediumHigh
	case p >= 40:
		return BandMediumLow
	case p >= 20:
		return BandLow
	default:
		return BandVeryLow
	}
}

// Style returns the presentation of b. Unrecognized values get the unknown
// style.
func (b Band) Style() Style {
	if s, ok := styles[b]; ok {
		return s
	}
	return styles[BandUnknown]
}

// Severity orders bands; higher is more severe.
func (b Band) Severity() int {
	return severity[b]
}

// StatusBadge returns the badge classes used by companion tables for a zone
// occupancy value.
func StatusBadge(pct *float64) string {
	return ClassifyOccupancy(pct).Style().BadgeClass
}

// FormatPct renders a percentage for labels, "N/A" when unknown.
func FormatPct(pct *float64) string {
	if pct == nil || math.IsNaN(*pct) {
		return "N/A"
	}
	return strconv.FormatFloat(*pct, 'f', 1, 64) + "%"
}
