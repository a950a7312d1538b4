package cluster

import (
	"math"

	"github.com/jengzang/zonemap-backend-go/internal/models"
	"github.com/jengzang/zonemap-backend-go/internal/spatial"
)

// ActionKind tells the render surface what a cluster click does.
type ActionKind string

const (
	ActionSelect   ActionKind = "select"   // single marker, open its popup
	ActionZoom     ActionKind = "zoom"     // zoom to fit member bounds
	ActionSpiderfy ActionKind = "spiderfy" // at max zoom, fan members out
)

// Spider leg geometry in screen pixels.
const (
	spiderLegSpacing  = 28.0
	spiderMinRadius   = 24.0
	spiderSpiralGrow  = 5.0
	spiderCircleLimit = 9
)

// SpiderLeg is the display position of one member after spiderfying.
type SpiderLeg struct {
	ZoneID   models.ZoneID `json:"zoneId"`
	Position models.LatLng `json:"position"`
}

// ClickAction is the outcome of clicking a cluster.
type ClickAction struct {
	Kind   ActionKind    `json:"kind"`
	Zoom   int           `json:"zoom"`
	Bounds models.Bounds `json:"bounds"`
	Legs   []SpiderLeg   `json:"legs,omitempty"`
}

// Viewport is the size of the map surface in pixels.
type Viewport struct {
	Width  int
	Height int
}

// Click resolves a click on c at zoom. Below maxZoom it zooms to fit the
// members' bounds; at maxZoom, or when fitting would not zoom in any
// further, it spiderfies the members around the cluster centroid.
func Click(c models.Cluster, zoom, maxZoom int, vp Viewport) ClickAction {
	if c.Count <= 1 {
		return ClickAction{Kind: ActionSelect, Zoom: zoom, Bounds: c.Bounds}
	}

	if zoom < maxZoom {
		fit := spatial.FitZoom(c.Bounds.South, c.Bounds.West, c.Bounds.North, c.Bounds.East, vp.Width, vp.Height, maxZoom)
		if fit > zoom {
			return ClickAction{Kind: ActionZoom, Zoom: fit, Bounds: c.Bounds}
		}
	}

	return ClickAction{Kind: ActionSpiderfy, Zoom: zoom, Bounds: c.Bounds, Legs: Spiderfy(c, zoom)}
}

// Spiderfy lays the members of c out around its centroid at zoom. Small
// clusters sit on a circle, larger ones on a spiral, so legs never overlap.
func Spiderfy(c models.Cluster, zoom int) []SpiderLeg {
	n := len(c.MemberIDs)
	cx, cy := spatial.Project(c.Centroid.Lat, c.Centroid.Lng, zoom)
	legs := make([]SpiderLeg, n)

	if n <= spiderCircleLimit {
		radius := math.Max(spiderMinRadius, spiderLegSpacing*float64(n)/(2*math.Pi))
		step := 2 * math.Pi / float64(n)
		for i, id := range c.MemberIDs {
			angle := float64(i) * step
			legs[i] = leg(id, cx+radius*math.Cos(angle), cy+radius*math.Sin(angle), zoom)
		}
		return legs
	}

	// Archimedean spiral with roughly constant spacing between legs.
	angle := 0.0
	radius := spiderMinRadius
	for i, id := range c.MemberIDs {
		angle += spiderLegSpacing/radius + 0.0005*float64(i)
		legs[i] = leg(id, cx+radius*math.Cos(angle), cy+radius*math.Sin(angle), zoom)
		radius += 2 * math.Pi * spiderSpiralGrow / angle
	}
	return legs
}

func leg(id models.ZoneID, x, y float64, zoom int) SpiderLeg {
	lat, lng := spatial.Unproject(x, y, zoom)
	return SpiderLeg{ZoneID: id, Position: models.LatLng{Lat: lat, Lng: lng}}
}
