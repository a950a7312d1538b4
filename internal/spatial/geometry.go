package spatial

import (
	"math"

	"github.com/golang/geo/s2"
	"github.com/jengzang/zonemap-backend-go/internal/models"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// ToRenderPolygon converts an upstream ring ([lon, lat] pairs) into the
// [lat, lng] vertex list the map surface expects. Vertex order is kept and the
// ring is not force-closed. Nil, empty or entirely malformed rings yield an
// empty slice; malformed vertices are dropped.
func ToRenderPolygon(ring models.Ring) []models.LatLng {
	vertices, _ := ToRenderPolygonCounted(ring)
	return vertices
}

// ToRenderPolygonCounted is ToRenderPolygon plus the number of vertices that
// were skipped, so callers can log and count data-quality problems.
func ToRenderPolygonCounted(ring models.Ring) ([]models.LatLng, int) {
	if len(ring) == 0 {
		return []models.LatLng{}, 0
	}

	vertices := make([]models.LatLng, 0, len(ring))
	skipped := 0
	for _, pos := range ring {
		lat, lng := pos.Lat(), pos.Lon()
		if !ValidLatLng(lat, lng) {
			skipped++
			continue
		}
		vertices = append(vertices, models.LatLng{Lat: lat, Lng: lng})
	}
	return vertices, skipped
}

// ValidLatLng reports whether lat/lng are finite and inside WGS84 ranges.
func ValidLatLng(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// RingFromOrb converts an orb ring (already [lon, lat]) to the zone ring type.
func RingFromOrb(r orb.Ring) models.Ring {
	out := make(models.Ring, 0, len(r))
	for _, p := range r {
		out = append(out, models.Position{p[0], p[1]})
	}
	return out
}

// RingToOrb converts a zone ring to an orb ring, dropping malformed vertices.
func RingToOrb(r models.Ring) orb.Ring {
	out := make(orb.Ring, 0, len(r))
	for _, pos := range r {
		if !ValidLatLng(pos.Lat(), pos.Lon()) {
			continue
		}
		out = append(out, orb.Point{pos.Lon(), pos.Lat()})
	}
	return out
}

// RingCentroid returns the area centroid of a ring, or false when the ring
// has fewer than three usable vertices.
func RingCentroid(r models.Ring) (models.LatLng, bool) {
	ring := RingToOrb(r)
	if len(ring) < 3 {
		return models.LatLng{}, false
	}
	c, area := planar.CentroidArea(orb.Polygon{ring})
	if area == 0 {
		// degenerate ring, fall back to the vertex mean
		c, _ = planar.CentroidArea(orb.MultiPoint(ring))
	}
	return models.LatLng{Lat: c[1], Lng: c[0]}, true
}

// Centroid calculates the arithmetic centroid of a set of points.
func Centroid(points []models.LatLng) models.LatLng {
	if len(points) == 0 {
		return models.LatLng{}
	}

	var sumLat, sumLng float64
	for _, p := range points {
		sumLat += p.Lat
		sumLng += p.Lng
	}
	return models.LatLng{
		Lat: sumLat / float64(len(points)),
		Lng: sumLng / float64(len(points)),
	}
}

// BoundsOf returns the lat/lng bounding box of points. An empty input yields
// the zero Bounds.
func BoundsOf(points []models.LatLng) models.Bounds {
	rect := s2.EmptyRect()
	for _, p := range points {
		rect = rect.AddPoint(s2.LatLngFromDegrees(p.Lat, p.Lng))
	}
	if rect.IsEmpty() {
		return models.Bounds{}
	}
	lo, hi := rect.Lo(), rect.Hi()
	return models.Bounds{
		South: lo.Lat.Degrees(),
		West:  lo.Lng.Degrees(),
		North: hi.Lat.Degrees(),
		East:  hi.Lng.Degrees(),
	}
}

// BoundsCenter returns the center of b.
func BoundsCenter(b models.Bounds) models.LatLng {
	return models.LatLng{Lat: (b.South + b.North) / 2, Lng: (b.West + b.East) / 2}
}
