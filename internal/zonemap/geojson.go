package zonemap

import (
	"fmt"
	"math"
	"strconv"

	"github.com/jengzang/zonemap-backend-go/internal/models"
	"github.com/jengzang/zonemap-backend-go/internal/spatial"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ToFeatureCollection exports the drawable zones of ds. Zones with a polygon
// become Polygon features, zones with only a centroid become Point features
// and undrawable zones are left out.
func ToFeatureCollection(ds Dataset) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, rz := range ds.Render {
		var geom orb.Geometry
		switch {
		case len(rz.Vertices) > 0:
			ring := make(orb.Ring, 0, len(rz.Vertices))
			for _, v := range rz.Vertices {
				ring = append(ring, orb.Point{v.Lng, v.Lat})
			}
			geom = orb.Polygon{ring}
		case rz.Marker != nil:
			geom = orb.Point{rz.Marker.Lng, rz.Marker.Lat}
		default:
			continue
		}

		f := geojson.NewFeature(geom)
		f.ID = string(rz.ID)
		f.Properties["id"] = string(rz.ID)
		f.Properties["name"] = rz.Name
		f.Properties["band"] = string(rz.Band)
		f.Properties["color"] = rz.Style.Hex
		f.Properties["label"] = rz.Label
		if rz.OccupancyPct != nil {
			f.Properties["occupancyPct"] = *rz.OccupancyPct
		}
		if rz.Status != nil {
			f.Properties["status"] = *rz.Status
		}
		if rz.Marker != nil {
			f.Properties["centroid"] = []float64{rz.Marker.Lat, rz.Marker.Lng}
		}
		fc.Append(f)
	}
	return fc
}

// FromFeatureCollection imports zones from GeoJSON. The outer ring of a
// Polygon (or of the first polygon of a MultiPolygon) becomes the zone
// polygon and its area centroid the marker; Point features only carry a
// marker. Features without an id get their index as id.
func FromFeatureCollection(fc *geojson.FeatureCollection) ([]models.Zone, error) {
	if fc == nil {
		return nil, fmt.Errorf("failed to import zones: nil feature collection")
	}

	zones := make([]models.Zone, 0, len(fc.Features))
	for i, f := range fc.Features {
		z := models.Zone{
			ID:   featureID(f, i),
			Name: stringProp(f.Properties, "name"),
		}

		switch g := f.Geometry.(type) {
		case orb.Polygon:
			if len(g) > 0 {
				z.Polygon = spatial.RingFromOrb(g[0])
			}
		case orb.MultiPolygon:
			if len(g) > 0 && len(g[0]) > 0 {
				z.Polygon = spatial.RingFromOrb(g[0][0])
			}
		case orb.Point:
			if spatial.ValidLatLng(g.Lat(), g.Lon()) {
				z.Centroid = &models.LatLng{Lat: g.Lat(), Lng: g.Lon()}
			}
		case nil:
		default:
			return nil, fmt.Errorf("failed to import feature %d: unsupported geometry %s", i, g.GeoJSONType())
		}
		if z.Centroid == nil && z.HasPolygon() {
			if c, ok := spatial.RingCentroid(z.Polygon); ok {
				z.Centroid = &c
			}
		}

		z.OccupancyPct = floatProp(f.Properties, "occupancyPct")
		z.ViabilizationPct = floatProp(f.Properties, "viabilizationPct")
		z.AreaHectares = floatProp(f.Properties, "areaHectares")
		if status, ok := f.Properties["status"].(string); ok {
			z.Status = &status
		}
		z.Lots = models.LotCounts{
			Available:  intProp(f.Properties, "lotsAvailable"),
			Assigned:   intProp(f.Properties, "lotsAssigned"),
			Reserved:   intProp(f.Properties, "lotsReserved"),
			Viabilized: intProp(f.Properties, "lotsViabilized"),
		}
		zones = append(zones, z)
	}
	return zones, nil
}

func featureID(f *geojson.Feature, index int) models.ZoneID {
	for _, v := range []interface{}{f.Properties["id"], f.ID} {
		switch id := v.(type) {
		case string:
			if id != "" {
				return models.ZoneID(id)
			}
		case float64:
			return models.ZoneID(strconv.FormatFloat(id, 'f', -1, 64))
		}
	}
	return models.ZoneID(strconv.Itoa(index))
}

func floatProp(p geojson.Properties, key string) *float64 {
	switch v := p[key].(type) {
	case float64:
		if math.IsNaN(v) {
			return nil
		}
		return &v
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(f) {
			return &f
		}
	}
	return nil
}

// The Must* accessors of geojson.Properties panic on unexpected types, so
// imported properties go through these lenient readers.
func stringProp(p geojson.Properties, key string) string {
	if s, ok := p[key].(string); ok {
		return s
	}
	return ""
}

func intProp(p geojson.Properties, key string) int {
	if f := floatProp(p, key); f != nil && !math.IsInf(*f, 0) {
		return int(*f)
	}
	return 0
}
