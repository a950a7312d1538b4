package heatmap

import (
	"math"
	"testing"

	"github.com/jengzang/zonemap-backend-go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildHeatPoints_Filters(t *testing.T) {
	zones := []models.Zone{
		{ID: "ok", Centroid: &models.LatLng{Lat: 5.3, Lng: -4.0}, OccupancyPct: models.Float(95)},
		{ID: "no-centroid", OccupancyPct: models.Float(50)},
		{ID: "no-occupancy", Centroid: &models.LatLng{Lat: 5.3, Lng: -4.0}},
		{ID: "nan-centroid", Centroid: &models.LatLng{Lat: math.NaN(), Lng: -4.0}, OccupancyPct: models.Float(50)},
		{ID: "inf-centroid", Centroid: &models.LatLng{Lat: 5, Lng: math.Inf(1)}, OccupancyPct: models.Float(50)},
		{ID: "over", Centroid: &models.LatLng{Lat: 6, Lng: -5}, OccupancyPct: models.Float(130)},
		{ID: "under", Centroid: &models.LatLng{Lat: 7, Lng: -6}, OccupancyPct: models.Float(-10)},
	}

	points := BuildHeatPoints(zones)

	require.Len(t, points, 3)
	assert.Equal(t, models.HeatPoint{Lat: 5.3, Lng: -4.0, Weight: 0.95}, points[0])
	assert.Equal(t, 1.0, points[1].Weight)
	assert.Equal(t, 0.0, points[2].Weight)
	for _, p := range points {
		assert.GreaterOrEqual(t, p.Weight, 0.0)
		assert.LessOrEqual(t, p.Weight, 1.0)
	}
}

func TestBuildHeatPoints_Empty(t *testing.T) {
	assert.Empty(t, BuildHeatPoints(nil))
	assert.Nil(t, BuildLayer(nil))
	assert.Nil(t, BuildLayer([]models.Zone{{ID: "x"}}))
}

func TestBuildLayer(t *testing.T) {
	layer := BuildLayer([]models.Zone{{ID: "a", Centroid: &models.LatLng{Lat: 1, Lng: 2}, OccupancyPct: models.Float(40)}})
	require.NotNil(t, layer)
	assert.Len(t, layer.Points, 1)
	assert.Equal(t, Radius, layer.Radius)
	assert.Len(t, layer.Gradient, 5)
	assert.Equal(t, "#00ff00", layer.Gradient[0].Color)
}
