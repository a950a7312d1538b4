package zonemap

import (
	"math"
	"testing"

	"github.com/jengzang/zonemap-backend-go/internal/classify"
	"github.com/jengzang/zonemap-backend-go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(lat, lng, d float64) models.Ring {
	return models.Ring{
		{lng, lat},
		{lng + d, lat},
		{lng + d, lat + d},
		{lng, lat + d},
	}
}

func sampleZones() []models.Zone {
	return []models.Zone{
		{
			ID: "1", Name: "Yopougon",
			Polygon:      square(5.33, -4.08, 0.01),
			Centroid:     &models.LatLng{Lat: 5.335, Lng: -4.075},
			OccupancyPct: models.Float(95), AreaHectares: models.Float(120), Status: models.Str("actif"),
			Lots: models.LotCounts{Available: 2, Assigned: 30},
		},
		{
			ID: "2", Name: "Koumassi",
			Polygon:      square(5.29, -3.95, 0.01),
			Centroid:     &models.LatLng{Lat: 5.295, Lng: -3.945},
			OccupancyPct: models.Float(25), AreaHectares: models.Float(40), Status: models.Str("inactif"),
			Lots: models.LotCounts{Available: 10, Assigned: 3},
		},
		{
			ID: "3", Name: "Sans géométrie",
			Polygon:      models.Ring{},
			Centroid:     nil,
			OccupancyPct: models.Float(50),
		},
	}
}

func TestBuild_ScenarioD(t *testing.T) {
	zones := sampleZones()
	state := models.DefaultFilterState()
	state.Heatmap = true

	ds := Build(zones, state, Viewport{Zoom: 12, ClusterRadiusPx: 60})

	require.Len(t, ds.Zones, 3, "undrawable zone stays in the table list")
	assert.Equal(t, models.ZoneID("3"), ds.Zones[2].ID)

	rz := ds.Render[2]
	assert.Empty(t, rz.Vertices)
	assert.NotNil(t, rz.Vertices)
	assert.Nil(t, rz.Marker)
	assert.False(t, rz.Drawable())

	require.NotNil(t, ds.Heat)
	assert.Len(t, ds.Heat.Points, 2)

	var members []models.ZoneID
	for _, c := range ds.Clusters {
		members = append(members, c.MemberIDs...)
	}
	assert.NotContains(t, members, models.ZoneID("3"))
	assert.ElementsMatch(t, []models.ZoneID{"1", "2"}, members)

	assert.Equal(t, 3, ds.Summary.Filtered)
	assert.Equal(t, 2, ds.Summary.Polygons)
	assert.Equal(t, 2, ds.Summary.Markers)
	assert.Equal(t, 1, ds.Summary.Unmappable)
}

func TestBuild_ScenarioA(t *testing.T) {
	state := models.DefaultFilterState()
	state.OccupancyBand = models.OccupancyHigh

	ds := Build(sampleZones(), state, Viewport{Zoom: 12, ClusterRadiusPx: 60})

	require.Len(t, ds.Zones, 1)
	assert.Equal(t, "Yopougon", ds.Zones[0].Name)
	assert.Equal(t, classify.BandHigh, ds.Render[0].Band)
	assert.Equal(t, "#dc2626", ds.Render[0].Style.Hex)
	assert.Equal(t, "filter=high", ds.Query)
	require.Len(t, ds.Clusters, 1)
	assert.Equal(t, []models.ZoneID{"1"}, ds.Clusters[0].MemberIDs)
}

func TestBuild_HeatUsesUnfilteredSet(t *testing.T) {
	state := models.DefaultFilterState()
	state.OccupancyBand = models.OccupancyHigh
	state.Heatmap = true

	ds := Build(sampleZones(), state, Viewport{Zoom: 12})

	assert.Len(t, ds.Zones, 1)
	require.NotNil(t, ds.Heat)
	assert.Len(t, ds.Heat.Points, 2)
	for _, p := range ds.Heat.Points {
		assert.True(t, p.Weight >= 0 && p.Weight <= 1)
	}
}

func TestBuild_HeatOff(t *testing.T) {
	ds := Build(sampleZones(), models.DefaultFilterState(), Viewport{Zoom: 12})
	assert.Nil(t, ds.Heat)
}

func TestBuild_SkipsMalformedVertices(t *testing.T) {
	zones := []models.Zone{{
		ID:      "x",
		Polygon: models.Ring{{-4, 5}, {math.NaN(), 5}, {-4, 95}, {-3.9, 5.1}},
	}}

	ds := Build(zones, models.DefaultFilterState(), Viewport{Zoom: 10})

	assert.Len(t, ds.Render[0].Vertices, 2)
	assert.Equal(t, 2, ds.Summary.SkippedVertices)
	assert.Empty(t, ds.Clusters)
	require.NotNil(t, ds.Bounds)
}

func TestBuild_Summary(t *testing.T) {
	ds := Build(sampleZones(), models.DefaultFilterState(), Viewport{Zoom: 12})
	s := ds.Summary

	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 3, s.Occupancy.Count)
	assert.InDelta(t, (95.0+25+50)/3, s.Occupancy.Mean, 1e-9)
	// zone 3 has no area so it carries no weight
	assert.InDelta(t, (95.0*120+25*40)/160, s.WeightedOccupancy, 1e-9)
	assert.InDelta(t, 160.0, s.TotalAreaHectares, 1e-9)
	assert.Equal(t, models.LotCounts{Available: 12, Assigned: 33}, s.Lots)
	assert.Equal(t, 1, s.Bands[classify.BandHigh])
	assert.Equal(t, 1, s.Bands[classify.BandLow])
	assert.Equal(t, 1, s.Bands[classify.BandMediumLow])
	assert.Greater(t, s.ExtentKm, 10.0)
	assert.Less(t, s.ExtentKm, 30.0)
}

func TestBuild_Idempotent(t *testing.T) {
	zones := sampleZones()
	state := models.DefaultFilterState()
	state.Heatmap = true
	vp := Viewport{Zoom: 8, ClusterRadiusPx: 80}

	first := Build(zones, state, vp)
	second := Build(zones, state, vp)

	assert.Equal(t, first, second)
	assert.Equal(t, sampleZones(), zones, "input must not be mutated")
}

func TestBuild_Empty(t *testing.T) {
	ds := Build(nil, models.DefaultFilterState(), Viewport{Zoom: 12, ClusterRadiusPx: 60})

	assert.Empty(t, ds.Zones)
	assert.Empty(t, ds.Render)
	assert.Empty(t, ds.Clusters)
	assert.Nil(t, ds.Bounds)
	assert.Nil(t, ds.Heat)
}
