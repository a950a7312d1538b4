// Package zonemap assembles the render-ready dataset of the zone map from a
// zone collection and a filter state, and owns the per-view lifecycle around
// it (layers, fetch supersession, sharing).
package zonemap

import (
	"math"
	"time"

	"github.com/golang/geo/s2"
	"github.com/jengzang/zonemap-backend-go/internal/classify"
	"github.com/jengzang/zonemap-backend-go/internal/cluster"
	"github.com/jengzang/zonemap-backend-go/internal/codec"
	"github.com/jengzang/zonemap-backend-go/internal/filter"
	"github.com/jengzang/zonemap-backend-go/internal/heatmap"
	"github.com/jengzang/zonemap-backend-go/internal/logging"
	"github.com/jengzang/zonemap-backend-go/internal/metrics"
	"github.com/jengzang/zonemap-backend-go/internal/models"
	"github.com/jengzang/zonemap-backend-go/internal/spatial"
	"github.com/jengzang/zonemap-backend-go/internal/stats"
)

// Viewport is the part of the map surface the pipeline depends on.
type Viewport struct {
	Zoom            int     `json:"zoom"`
	ClusterRadiusPx float64 `json:"clusterRadiusPx"`
}

// RenderZone is one filtered zone prepared for drawing. Vertices is empty
// when the zone has no usable polygon; Marker is nil when it has no usable
// centroid.
type RenderZone struct {
	ID           models.ZoneID   `json:"id"`
	Name         string          `json:"name"`
	Vertices     []models.LatLng `json:"vertices"`
	Marker       *models.LatLng  `json:"marker,omitempty"`
	Band         classify.Band   `json:"band"`
	Style        classify.Style  `json:"style"`
	OccupancyPct *float64        `json:"occupancyPct"`
	Status       *string         `json:"status"`
	Label        string          `json:"label"`
}

// Drawable reports whether the zone appears on the map at all.
func (r RenderZone) Drawable() bool {
	return len(r.Vertices) > 0 || r.Marker != nil
}

// Summary aggregates the filtered set for headers and companion tables.
type Summary struct {
	Total             int                   `json:"total"`
	Filtered          int                   `json:"filtered"`
	Polygons          int                   `json:"polygons"`
	Markers           int                   `json:"markers"`
	Unmappable        int                   `json:"unmappable"`
	SkippedVertices   int                   `json:"skippedVertices"`
	Occupancy         stats.Distribution    `json:"occupancy"`
	WeightedOccupancy float64               `json:"weightedOccupancy"`
	Area              stats.Distribution    `json:"area"`
	TotalAreaHectares float64               `json:"totalAreaHectares"`
	Lots              models.LotCounts      `json:"lots"`
	Bands             map[classify.Band]int `json:"bands"`
	ExtentKm          float64               `json:"extentKm"`
}

// Dataset is everything the map surface and the companion table need for
// one (zones, state, viewport) triple. It is rebuilt from scratch on every
// change and never patched.
type Dataset struct {
	State    models.FilterState `json:"state"`
	Query    string             `json:"query"`
	Viewport Viewport           `json:"viewport"`
	Zones    []models.Zone      `json:"zones"`
	Render   []RenderZone       `json:"render"`
	Heat     *models.HeatLayer  `json:"heat,omitempty"`
	Clusters []models.Cluster   `json:"clusters"`
	Bounds   *models.Bounds     `json:"bounds,omitempty"`
	Summary  Summary            `json:"summary"`
}

// Pipeline builds datasets. Geometry left out of a render is logged at debug;
// counting it is RecordGeometry's job, once per accepted collection.
type Pipeline struct {
	log logging.Logger
}

// NewPipeline creates a pipeline. A nil logger falls back to a no-op one.
func NewPipeline(log logging.Logger) *Pipeline {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Pipeline{log: log.Named("pipeline")}
}

// Build runs the pipeline with the process-wide logger.
func Build(zones []models.Zone, state models.FilterState, vp Viewport) Dataset {
	return NewPipeline(logging.Default()).Build(zones, state, vp)
}

// Build filters zones by state, converts the survivors for drawing, derives
// the heat layer from the unfiltered collection when the heatmap is enabled
// and clusters the filtered markers at the viewport zoom. Zones that cannot
// be drawn stay in Dataset.Zones.
func (p *Pipeline) Build(zones []models.Zone, state models.FilterState, vp Viewport) Dataset {
	start := time.Now()
	defer func() {
		metrics.PipelineDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000)
	}()

	filtered := filter.Apply(zones, state)

	ds := Dataset{
		State:    state,
		Query:    codec.Encode(state),
		Viewport: vp,
		Zones:    filtered,
		Render:   make([]RenderZone, 0, len(filtered)),
	}

	var (
		drawn   []models.LatLng
		skipped int
	)
	for _, z := range filtered {
		rz, n := renderZone(z)
		skipped += n
		ds.Render = append(ds.Render, rz)
		drawn = append(drawn, rz.Vertices...)
		if rz.Marker != nil {
			drawn = append(drawn, *rz.Marker)
		}
	}

	if state.Heatmap {
		ds.Heat = heatmap.BuildLayer(zones)
	}
	ds.Clusters = cluster.ClusterMarkers(filtered, vp.Zoom, vp.ClusterRadiusPx)
	if len(drawn) > 0 {
		b := spatial.BoundsOf(drawn)
		ds.Bounds = &b
	}
	ds.Summary = summarize(len(zones), ds.Render, filtered, ds.Bounds)
	ds.Summary.SkippedVertices = skipped

	if skipped > 0 || ds.Summary.Unmappable > 0 {
		p.log.Debug("[Pipeline] geometry excluded from render",
			logging.Int("skipped_vertices", skipped),
			logging.Int("unmappable_zones", ds.Summary.Unmappable))
	}
	return ds
}

func renderZone(z models.Zone) (RenderZone, int) {
	band := classify.ClassifyOccupancy(z.OccupancyPct)
	rz := RenderZone{
		ID:           z.ID,
		Name:         z.Name,
		Band:         band,
		Style:        band.Style(),
		OccupancyPct: z.OccupancyPct,
		Status:       z.Status,
		Label:        classify.FormatPct(z.OccupancyPct),
	}

	vertices, skipped := spatial.ToRenderPolygonCounted(z.Polygon)
	rz.Vertices = vertices

	if z.HasMarker() {
		c := *z.Centroid
		rz.Marker = &c
	}
	return rz, skipped
}

func summarize(total int, render []RenderZone, filtered []models.Zone, bounds *models.Bounds) Summary {
	s := Summary{
		Total:    total,
		Filtered: len(filtered),
		Bands:    make(map[classify.Band]int),
	}
	for _, rz := range render {
		if len(rz.Vertices) > 0 {
			s.Polygons++
		}
		if rz.Marker != nil {
			s.Markers++
		}
		if !rz.Drawable() {
			s.Unmappable++
		}
		s.Bands[rz.Band]++
	}

	var occ, occWeights, areas []float64
	for _, z := range filtered {
		area := 0.0
		if z.AreaHectares != nil && finite(*z.AreaHectares) {
			area = *z.AreaHectares
			areas = append(areas, area)
		}
		if z.OccupancyPct != nil && finite(*z.OccupancyPct) {
			occ = append(occ, *z.OccupancyPct)
			occWeights = append(occWeights, area)
		}
		s.Lots.Available += z.Lots.Available
		s.Lots.Assigned += z.Lots.Assigned
		s.Lots.Reserved += z.Lots.Reserved
		s.Lots.Viabilized += z.Lots.Viabilized
	}
	s.Occupancy = stats.Describe(occ)
	s.WeightedOccupancy = stats.WeightedMean(occ, occWeights)
	s.Area = stats.Describe(areas)
	s.TotalAreaHectares = stats.Sum(areas)
	if bounds != nil {
		s.ExtentKm = extentKm(*bounds)
	}
	return s
}

// extentKm is the great-circle length of the bounds diagonal.
func extentKm(b models.Bounds) float64 {
	sw := s2.LatLngFromDegrees(b.South, b.West)
	ne := s2.LatLngFromDegrees(b.North, b.East)
	return sw.Distance(ne).Radians() * earthRadiusKm
}

const earthRadiusKm = 6371.0088

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
