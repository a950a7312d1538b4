package spatial

const geohashAlphabet = "0123456789bcdefghjkmnpqrstuvwxyz"

// EncodeGeohash returns the geohash of (lat, lng) with precision characters,
// clamped to [1,12]. Bits alternate between longitude and latitude starting
// with longitude; a value exactly on a split goes to the lower half.
func EncodeGeohash(lat, lng float64, precision int) string {
	precision = max(1, min(12, precision))

	// index 0 is longitude, 1 is latitude
	val := [2]float64{lng, lat}
	lo := [2]float64{-180, -90}
	hi := [2]float64{180, 90}

	out := make([]byte, precision)
	axis := 0
	for i := range out {
		var idx byte
		for n := 0; n < 5; n++ {
			mid := (lo[axis] + hi[axis]) / 2
			idx <<= 1
			if val[axis] > mid {
				idx |= 1
				lo[axis] = mid
			} else {
				hi[axis] = mid
			}
			axis ^= 1
		}
		out[i] = geohashAlphabet[idx]
	}
	return string(out)
}

// GeohashPrecisionForZoom picks a geohash length whose cell roughly matches a
// map tile at zoom.
func GeohashPrecisionForZoom(zoom int) int {
	switch {
	case zoom <= 2:
		return 2
	case zoom <= 5:
		return 3
	case zoom <= 8:
		return 4
	case zoom <= 11:
		return 5
	case zoom <= 14:
		return 6
	case zoom <= 17:
		return 7
	default:
		return 8
	}
}
