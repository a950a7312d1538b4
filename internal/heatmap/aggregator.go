// Package heatmap derives the weighted point set of the occupancy heat layer.
package heatmap

import (
	"math"

	"github.com/jengzang/zonemap-backend-go/internal/classify"
	"github.com/jengzang/zonemap-backend-go/internal/models"
)

// Presentation constants of the heat layer.
const (
	Radius  = 25
	Blur    = 15
	MaxZoom = 17
)

// BuildHeatPoints returns one point per zone that has a finite centroid and
// a known occupancy. Weight is occupancy/100 clamped to [0,1].
func BuildHeatPoints(zones []models.Zone) []models.HeatPoint {
	points := make([]models.HeatPoint, 0, len(zones))
	for _, z := range zones {
		if !z.HasMarker() || z.OccupancyPct == nil || math.IsNaN(*z.OccupancyPct) {
			continue
		}
		points = append(points, models.HeatPoint{
			Lat:    z.Centroid.Lat,
			Lng:    z.Centroid.Lng,
			Weight: Weight(*z.OccupancyPct),
		})
	}
	return points
}

// Weight normalizes an occupancy percentage to [0,1].
func Weight(pct float64) float64 {
	return math.Max(0, math.Min(1, pct/100))
}

// BuildLayer wraps the points with the layer constants. It returns nil when
// there is nothing to draw, in which case the layer is not mounted.
func BuildLayer(zones []models.Zone) *models.HeatLayer {
	points := BuildHeatPoints(zones)
	if len(points) == 0 {
		return nil
	}
	gradient := make([]models.GradientStop, len(classify.HeatGradient))
	copy(gradient, classify.HeatGradient)
	return &models.HeatLayer{
		Points:   points,
		Radius:   Radius,
		Blur:     Blur,
		MaxZoom:  MaxZoom,
		Gradient: gradient,
	}
}
