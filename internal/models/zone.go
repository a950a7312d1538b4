package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// ZoneStatus values seen in upstream data. The set is open; filtering treats
// status as an opaque token.
const (
	StatusActive            = "actif"
	StatusInactive          = "inactif"
	StatusUnderConstruction = "en_construction"
)

// ZoneID is an opaque identifier. Upstream sends either numbers or strings.
type ZoneID string

// UnmarshalJSON accepts both JSON strings and numbers.
func (id *ZoneID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ZoneID(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ZoneID(n.String())
	return nil
}

// LatLng is a (latitude, longitude) pair in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Finite reports whether both coordinates are finite numbers.
func (p LatLng) Finite() bool {
	return finite(p.Lat) && finite(p.Lng)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// MarshalJSON writes non-finite coordinates as null.
func (p LatLng) MarshalJSON() ([]byte, error) {
	type wire struct {
		Lat *float64 `json:"lat"`
		Lng *float64 `json:"lng"`
	}
	var w wire
	if finite(p.Lat) {
		w.Lat = &p.Lat
	}
	if finite(p.Lng) {
		w.Lng = &p.Lng
	}
	return json.Marshal(w)
}

// UnmarshalJSON accepts {"lat":..,"lng":..}, {"lat":..,"lon":..} and [lat, lng].
func (p *LatLng) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var pair []float64
		if err := json.Unmarshal(data, &pair); err != nil {
			return err
		}
		p.Lat, p.Lng = math.NaN(), math.NaN()
		if len(pair) >= 2 {
			p.Lat, p.Lng = pair[0], pair[1]
		}
		return nil
	}
	var obj struct {
		Lat *float64 `json:"lat"`
		Lng *float64 `json:"lng"`
		Lon *float64 `json:"lon"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	p.Lat, p.Lng = math.NaN(), math.NaN()
	if obj.Lat != nil {
		p.Lat = *obj.Lat
	}
	if obj.Lng != nil {
		p.Lng = *obj.Lng
	} else if obj.Lon != nil {
		p.Lng = *obj.Lon
	}
	return nil
}

// Position is one polygon vertex in upstream order: [longitude, latitude].
// A malformed vertex decodes to NaN coordinates so the geometry adapter can
// skip and count it.
type Position [2]float64

// MarshalJSON writes malformed vertices as null.
func (p Position) MarshalJSON() ([]byte, error) {
	if !finite(p[0]) || !finite(p[1]) {
		return []byte("null"), nil
	}
	return json.Marshal([2]float64(p))
}

// Lon returns the longitude component.
func (p Position) Lon() float64 { return p[0] }

// Lat returns the latitude component.
func (p Position) Lat() float64 { return p[1] }

// Ring is one outer polygon ring. Anything that is not a JSON array decodes
// to an empty ring instead of failing the whole zone.
type Ring []Position

// UnmarshalJSON tolerates malformed geometry.
func (r *Ring) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		*r = nil
		return nil
	}
	out := make(Ring, 0, len(raw))
	for _, item := range raw {
		out = append(out, decodePosition(item))
	}
	*r = out
	return nil
}

func decodePosition(data json.RawMessage) Position {
	bad := Position{math.NaN(), math.NaN()}
	var vals []json.RawMessage
	if err := json.Unmarshal(data, &vals); err != nil || len(vals) < 2 {
		return bad
	}
	var pos Position
	for i := 0; i < 2; i++ {
		f, ok := decodeNumber(vals[i])
		if !ok {
			return bad
		}
		pos[i] = f
	}
	return pos
}

func decodeNumber(data json.RawMessage) (float64, bool) {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// LotCounts holds the lot totals of a zone. Each value is >= 0.
type LotCounts struct {
	Available  int `json:"available" db:"lots_available"`
	Assigned   int `json:"assigned" db:"lots_assigned"`
	Reserved   int `json:"reserved" db:"lots_reserved"`
	Viabilized int `json:"viabilized" db:"lots_viabilized"`
}

// Total returns the sum of all lot counters.
func (l LotCounts) Total() int {
	return l.Available + l.Assigned + l.Reserved + l.Viabilized
}

// Zone is a bounded industrial parcel with occupancy and viability metrics.
// Polygon is one outer ring in [lon, lat] order; a nil Centroid means the
// zone has no marker. Percentages are in [0,100], nil when unknown.
type Zone struct {
	ID               ZoneID    `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	Polygon          Ring      `json:"polygon,omitempty" db:"polygon_json"`
	Centroid         *LatLng   `json:"centroid,omitempty" db:"centroid"`
	OccupancyPct     *float64  `json:"occupancyPct" db:"occupancy_pct"`
	ViabilizationPct *float64  `json:"viabilizationPct" db:"viabilization_pct"`
	AreaHectares     *float64  `json:"areaHectares" db:"area_hectares"`
	Status           *string   `json:"status" db:"status"`
	Lots             LotCounts `json:"lotCounts"`
}

// HasPolygon reports whether the zone can be drawn as a polygon.
func (z Zone) HasPolygon() bool {
	return len(z.Polygon) > 0
}

// HasMarker reports whether the zone can be drawn as a point marker.
func (z Zone) HasMarker() bool {
	return z.Centroid != nil && z.Centroid.Finite()
}

// OccupancyOr returns the occupancy or def when unknown.
func (z Zone) OccupancyOr(def float64) float64 {
	if z.OccupancyPct == nil {
		return def
	}
	return *z.OccupancyPct
}

// ViabilizationOr returns the viabilization or def when unknown.
func (z Zone) ViabilizationOr(def float64) float64 {
	if z.ViabilizationPct == nil {
		return def
	}
	return *z.ViabilizationPct
}

// AreaOr returns the area in hectares or def when unknown.
func (z Zone) AreaOr(def float64) float64 {
	if z.AreaHectares == nil {
		return def
	}
	return *z.AreaHectares
}

// StatusOr returns the status token or def when unknown.
func (z Zone) StatusOr(def string) string {
	if z.Status == nil {
		return def
	}
	return *z.Status
}

// ZonesEnvelope is the wire shape of the zones endpoint.
type ZonesEnvelope struct {
	Success bool   `json:"success"`
	Zones   []Zone `json:"zones"`
	Error   string `json:"error,omitempty"`
}

// Float returns a pointer to v. Handy for building zones in code and tests.
func Float(v float64) *float64 { return &v }

// Str returns a pointer to s.
func Str(s string) *string { return &s }
