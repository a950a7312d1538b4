package zonemap

import (
	"github.com/jengzang/zonemap-backend-go/internal/logging"
	"github.com/jengzang/zonemap-backend-go/internal/metrics"
	"github.com/jengzang/zonemap-backend-go/internal/models"
	"github.com/jengzang/zonemap-backend-go/internal/spatial"
)

// GeometryReport counts the data-quality problems of one zone collection.
// Absent geometry is not a problem: a zone without a polygon is drawn as a
// marker and one without a centroid is simply not clustered.
type GeometryReport struct {
	SkippedVertices int `json:"skippedVertices"`
	EmptyPolygons   int `json:"emptyPolygons"` // polygon given, no valid vertex
	BadCentroids    int `json:"badCentroids"`  // centroid given, not finite
}

// Clean reports whether no problem was found.
func (r GeometryReport) Clean() bool {
	return r == GeometryReport{}
}

// InspectGeometry walks zones and counts malformed geometry.
func InspectGeometry(zones []models.Zone) GeometryReport {
	var r GeometryReport
	for _, z := range zones {
		if z.HasPolygon() {
			vertices, skipped := spatial.ToRenderPolygonCounted(z.Polygon)
			r.SkippedVertices += skipped
			if len(vertices) == 0 {
				r.EmptyPolygons++
			}
		}
		if z.Centroid != nil && !z.HasMarker() {
			r.BadCentroids++
		}
	}
	return r
}

// RecordGeometry inspects a newly accepted collection and adds its problems
// to the malformed-geometry counter. Call it once per collection, not per
// render.
func RecordGeometry(log logging.Logger, zones []models.Zone) GeometryReport {
	r := InspectGeometry(zones)
	if r.Clean() {
		return r
	}

	metrics.MalformedGeometryTotal.WithLabelValues(metrics.KindPolygonVertex).Add(float64(r.SkippedVertices))
	metrics.MalformedGeometryTotal.WithLabelValues(metrics.KindPolygonEmpty).Add(float64(r.EmptyPolygons))
	metrics.MalformedGeometryTotal.WithLabelValues(metrics.KindCentroid).Add(float64(r.BadCentroids))

	if log != nil {
		log.Warn("[Geometry] malformed geometry in zone collection",
			logging.Int("zones", len(zones)),
			logging.Int("skipped_vertices", r.SkippedVertices),
			logging.Int("empty_polygons", r.EmptyPolygons),
			logging.Int("bad_centroids", r.BadCentroids))
	}
	return r
}
