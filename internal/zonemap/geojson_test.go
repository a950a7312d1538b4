package zonemap

import (
	"encoding/json"
	"testing"

	"github.com/jengzang/zonemap-backend-go/internal/models"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToFeatureCollection(t *testing.T) {
	zones := sampleZones()
	zones = append(zones, models.Zone{ID: "4", Name: "Point only", Centroid: &models.LatLng{Lat: 5.3, Lng: -4.0}})

	fc := ToFeatureCollection(Build(zones, models.DefaultFilterState(), Viewport{Zoom: 12}))

	require.Len(t, fc.Features, 3, "undrawable zone is not exported")
	poly, ok := fc.Features[0].Geometry.(orb.Polygon)
	require.True(t, ok)
	assert.Equal(t, orb.Point{-4.08, 5.33}, poly[0][0])
	assert.Equal(t, "Yopougon", fc.Features[0].Properties["name"])
	assert.Equal(t, "#dc2626", fc.Features[0].Properties["color"])
	assert.Equal(t, "1", fc.Features[0].ID)

	_, ok = fc.Features[2].Geometry.(orb.Point)
	assert.True(t, ok)

	raw, err := json.Marshal(fc)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"FeatureCollection"`)
}

func TestFromFeatureCollection(t *testing.T) {
	raw := []byte(`{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "id": 7,
			 "geometry": {"type": "Polygon", "coordinates": [[[-4.0, 5.0], [-3.9, 5.0], [-3.9, 5.1], [-4.0, 5.1], [-4.0, 5.0]]]},
			 "properties": {"name": "Vridi", "occupancyPct": 72.5, "areaHectares": "33", "status": "actif", "lotsAvailable": 4}},
			{"type": "Feature",
			 "geometry": {"type": "Point", "coordinates": [-4.1, 5.2]},
			 "properties": {"id": "pt", "name": 12}},
			{"type": "Feature", "geometry": {"type": "Point", "coordinates": [200, 95]}, "properties": {}}
		]
	}`)
	fc, err := geojson.UnmarshalFeatureCollection(raw)
	require.NoError(t, err)

	zones, err := FromFeatureCollection(fc)
	require.NoError(t, err)
	require.Len(t, zones, 3)

	z := zones[0]
	assert.Equal(t, models.ZoneID("7"), z.ID)
	assert.Equal(t, "Vridi", z.Name)
	assert.Len(t, z.Polygon, 5)
	require.NotNil(t, z.Centroid)
	assert.InDelta(t, 5.05, z.Centroid.Lat, 1e-9)
	assert.InDelta(t, -3.95, z.Centroid.Lng, 1e-9)
	assert.Equal(t, 72.5, *z.OccupancyPct)
	assert.Equal(t, 33.0, *z.AreaHectares)
	assert.Equal(t, "actif", *z.Status)
	assert.Equal(t, 4, z.Lots.Available)

	assert.Equal(t, models.ZoneID("pt"), zones[1].ID)
	assert.Equal(t, "", zones[1].Name)
	assert.False(t, zones[1].HasPolygon())
	assert.True(t, zones[1].HasMarker())

	assert.Equal(t, models.ZoneID("2"), zones[2].ID)
	assert.False(t, zones[2].HasMarker())
}

func TestFromFeatureCollection_Unsupported(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(orb.LineString{{0, 0}, {1, 1}}))

	_, err := FromFeatureCollection(fc)
	assert.Error(t, err)

	_, err = FromFeatureCollection(nil)
	assert.Error(t, err)
}
