// Package cluster groups point markers that would overlap on screen.
package cluster

import (
	"math"
	"sort"

	"github.com/jengzang/zonemap-backend-go/internal/models"
	"github.com/jengzang/zonemap-backend-go/internal/spatial"
)

// TierFor derives the size tier from a member count.
func TierFor(count int) models.SizeTier {
	switch {
	case count > 10:
		return models.TierLarge
	case count > 5:
		return models.TierMedium
	default:
		return models.TierSmall
	}
}

type marker struct {
	id   models.ZoneID
	pos  models.LatLng
	x, y float64
}

type cellKey struct{ cx, cy int64 }

// ClusterMarkers groups the marker-renderable zones at zoom. Markers are
// visited in input order; each unassigned marker seeds a cluster that takes
// every unassigned marker within pixelRadius screen pixels of it. The result
// only depends on the input order, zoom and radius. A radius <= 0 disables
// clustering and every marker becomes a singleton.
func ClusterMarkers(zones []models.Zone, zoom int, pixelRadius float64) []models.Cluster {
	markers := make([]marker, 0, len(zones))
	for _, z := range zones {
		if !z.HasMarker() {
			continue
		}
		x, y := spatial.Project(z.Centroid.Lat, z.Centroid.Lng, zoom)
		markers = append(markers, marker{id: z.ID, pos: *z.Centroid, x: x, y: y})
	}

	if pixelRadius <= 0 || math.IsNaN(pixelRadius) {
		out := make([]models.Cluster, 0, len(markers))
		for _, m := range markers {
			out = append(out, newCluster([]marker{m}, zoom))
		}
		return out
	}

	// bucket by radius-sized cells so each seed only inspects its 3x3 block
	grid := make(map[cellKey][]int, len(markers))
	for i, m := range markers {
		k := cellOf(m.x, m.y, pixelRadius)
		grid[k] = append(grid[k], i)
	}

	assigned := make([]bool, len(markers))
	r2 := pixelRadius * pixelRadius
	out := make([]models.Cluster, 0)
	for i, seed := range markers {
		if assigned[i] {
			continue
		}
		assigned[i] = true
		members := []int{i}

		k := cellOf(seed.x, seed.y, pixelRadius)
		var candidates []int
		for dx := int64(-1); dx <= 1; dx++ {
			for dy := int64(-1); dy <= 1; dy++ {
				candidates = append(candidates, grid[cellKey{k.cx + dx, k.cy + dy}]...)
			}
		}
		sort.Ints(candidates)
		for _, j := range candidates {
			if assigned[j] {
				continue
			}
			ddx, ddy := markers[j].x-seed.x, markers[j].y-seed.y
			if ddx*ddx+ddy*ddy <= r2 {
				assigned[j] = true
				members = append(members, j)
			}
		}

		group := make([]marker, len(members))
		for n, idx := range members {
			group[n] = markers[idx]
		}
		out = append(out, newCluster(group, zoom))
	}
	return out
}

func cellOf(x, y, size float64) cellKey {
	return cellKey{int64(math.Floor(x / size)), int64(math.Floor(y / size))}
}

func newCluster(group []marker, zoom int) models.Cluster {
	positions := make([]models.LatLng, len(group))
	ids := make([]models.ZoneID, len(group))
	for i, m := range group {
		positions[i] = m.pos
		ids[i] = m.id
	}
	center := spatial.Centroid(positions)
	return models.Cluster{
		ID:        spatial.EncodeGeohash(center.Lat, center.Lng, spatial.GeohashPrecisionForZoom(zoom)) + ":" + string(group[0].id),
		Centroid:  center,
		MemberIDs: ids,
		Count:     len(group),
		Tier:      TierFor(len(group)),
		Bounds:    spatial.BoundsOf(positions),
	}
}
