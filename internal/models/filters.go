package models

// OccupancyBand is the coarse occupancy filter: all, high, medium or low.
type OccupancyBand string

const (
	OccupancyAll    OccupancyBand = "all"
	OccupancyHigh   OccupancyBand = "high"
	OccupancyMedium OccupancyBand = "medium"
	OccupancyLow    OccupancyBand = "low"
)

// Valid reports whether b is one of the known bands.
func (b OccupancyBand) Valid() bool {
	switch b {
	case OccupancyAll, OccupancyHigh, OccupancyMedium, OccupancyLow:
		return true
	}
	return false
}

// Viability band tokens used by the multi-select filter.
const (
	ViabilityComplete = "complete"
	ViabilityPartial  = "partial"
	ViabilityNone     = "none"
)

// Area slider extent in hectares. A bound left on its stop is open: Max at
// DefaultAreaMax means "no upper bound", Min at DefaultAreaMin "no lower bound".
const (
	DefaultAreaMin = 0.0
	DefaultAreaMax = 1000.0
)

// AreaRange is an inclusive [Min, Max] range in hectares.
type AreaRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DefaultAreaRange spans the whole slider.
func DefaultAreaRange() AreaRange {
	return AreaRange{Min: DefaultAreaMin, Max: DefaultAreaMax}
}

// IsDefault reports whether the range is untouched. A default range does
// not filter anything.
func (r AreaRange) IsDefault() bool {
	return r.Min == DefaultAreaMin && r.Max == DefaultAreaMax
}

// FilterState is the full set of map filters owned by a single view.
type FilterState struct {
	Search        string        `json:"search"`
	OccupancyBand OccupancyBand `json:"occupancyBand"`
	AreaRange     AreaRange     `json:"areaRange"`
	Viability     []string      `json:"viability"`
	Statuses      []string      `json:"statuses"`
	Heatmap       bool          `json:"heatmap"`
}

// DefaultFilterState is the state of a freshly mounted view.
func DefaultFilterState() FilterState {
	return FilterState{
		OccupancyBand: OccupancyAll,
		AreaRange:     DefaultAreaRange(),
	}
}

// MapQuery carries the viewport parameters that are not part of the
// shareable filter state.
type MapQuery struct {
	Zoom   int     `form:"zoom"`
	Radius float64 `form:"radius"` // cluster radius in screen pixels
	Width  int     `form:"width"`
	Height int     `form:"height"`
}
