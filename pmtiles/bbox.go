package pmtiles

import "math"

// tileLonLatBoundsE7 returns the geographic extent covered by tile (z,x,y) in
// the standard slippy-map / Web Mercator tiling scheme, as E7-scaled
// (1e-7 degree) integers matching the header's coordinate fields. At z=0 the
// single tile (0,0) covers the whole globe, so this naturally yields Web
// Mercator's world bounds (±180°, ±85.0511°) for a lone root tile.
func tileLonLatBoundsE7(z uint8, x, y uint32) (minLonE7, minLatE7, maxLonE7, maxLatE7 int32) {
	n := math.Exp2(float64(z))

	lonLeft := float64(x)/n*360 - 180
	lonRight := float64(x+1)/n*360 - 180
	latTop := mercatorLat(float64(y) / n)
	latBottom := mercatorLat(float64(y+1) / n)

	return degToE7(lonLeft), degToE7(latBottom), degToE7(lonRight), degToE7(latTop)
}

func mercatorLat(frac float64) float64 {
	rad := math.Atan(math.Sinh(math.Pi * (1 - 2*frac)))
	return rad * 180 / math.Pi
}

func degToE7(deg float64) int32 {
	return int32(math.Round(deg * 1e7))
}

// expandBoundsE7 grows [minLon,minLat,maxLon,maxLat] to also cover the extent
// of tile (z,x,y). first indicates the accumulator holds no prior tile's
// extent yet, in which case the tile's own bounds seed it instead of being
// unioned in.
func expandBoundsE7(first bool, minLonE7, minLatE7, maxLonE7, maxLatE7 int32, z uint8, x, y uint32) (int32, int32, int32, int32) {
	tMinLon, tMinLat, tMaxLon, tMaxLat := tileLonLatBoundsE7(z, x, y)
	if first {
		return tMinLon, tMinLat, tMaxLon, tMaxLat
	}
	if tMinLon < minLonE7 {
		minLonE7 = tMinLon
	}
	if tMinLat < minLatE7 {
		minLatE7 = tMinLat
	}
	if tMaxLon > maxLonE7 {
		maxLonE7 = tMaxLon
	}
	if tMaxLat > maxLatE7 {
		maxLatE7 = tMaxLat
	}
	return minLonE7, minLatE7, maxLonE7, maxLatE7
}
