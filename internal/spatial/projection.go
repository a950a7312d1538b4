package spatial

import "math"

// TileSize is the pixel size of one Web-Mercator tile at zoom 0.
const TileSize = 256.0

// maxMercatorLat is the latitude where Web-Mercator is clipped.
const maxMercatorLat = 85.05112878

// Project converts lat/lng to world pixel coordinates at the given zoom.
func Project(lat, lng float64, zoom int) (x, y float64) {
	lat = math.Max(-maxMercatorLat, math.Min(maxMercatorLat, lat))
	lng = math.Max(-180, math.Min(180, lng))

	scale := TileSize * math.Pow(2, float64(zoom))
	latRad := lat * math.Pi / 180
	x = (lng/360 + 0.5) * scale
	y = (0.5 - math.Log(math.Tan(math.Pi/4+latRad/2))/(2*math.Pi)) * scale
	return x, y
}

// Unproject converts world pixel coordinates at zoom back to lat/lng.
func Unproject(x, y float64, zoom int) (lat, lng float64) {
	scale := TileSize * math.Pow(2, float64(zoom))
	lng = (x/scale - 0.5) * 360
	n := math.Pi * (1 - 2*y/scale)
	lat = math.Atan(math.Sinh(n)) * 180 / math.Pi
	return lat, lng
}

// FitZoom returns the largest zoom, capped at maxZoom, at which the bounds
// fit inside a viewport of width x height pixels.
func FitZoom(south, west, north, east float64, width, height, maxZoom int) int {
	if width <= 0 || height <= 0 {
		return 0
	}
	for z := maxZoom; z > 0; z-- {
		x1, y1 := Project(north, west, z)
		x2, y2 := Project(south, east, z)
		if math.Abs(x2-x1) <= float64(width) && math.Abs(y2-y1) <= float64(height) {
			return z
		}
	}
	return 0
}
