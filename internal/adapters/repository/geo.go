package repository

import (
	"math"

	"github.com/okian/carwise/internal/domain/model"
)

const earthRadiusKm = 6371.0088

// haversineKm is the great-circle distance between a and b.
func haversineKm(a, b model.Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := lat2 - lat1
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// boundingBox returns the lat/lng rectangle enclosing a radiusKm circle
// around p. It over-approximates near the poles.
func boundingBox(p model.Point, radiusKm float64) (minLat, maxLat, minLng, maxLng float64) {
	dLat := radiusKm / 111.32
	cos := math.Max(math.Cos(p.Lat*math.Pi/180), 0.01)
	dLng := radiusKm / (111.32 * cos)
	return p.Lat - dLat, p.Lat + dLat, p.Lng - dLng, p.Lng + dLng
}

// lngRanges splits the longitude window [minLng, maxLng] where it crosses
// the antimeridian, so each returned range lies within [-180, 180].
func lngRanges(minLng, maxLng float64) [][2]float64 {
	switch {
	case maxLng-minLng >= 360:
		return [][2]float64{{-180, 180}}
	case minLng < -180:
		return [][2]float64{{minLng + 360, 180}, {-180, maxLng}}
	case maxLng > 180:
		return [][2]float64{{minLng, 180}, {-180, maxLng - 360}}
	}
	return [][2]float64{{minLng, maxLng}}
}
