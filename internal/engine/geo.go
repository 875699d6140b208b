package engine

import (
	"math"

	"github.com/kdigolf/caddie/internal/models"
)

const (
	earthRadiusMeters = 6371000.0

	// MetersToYards converts engine-internal meters for API responses.
	MetersToYards = 1.09361
)

// Haversine returns the great-circle distance in meters between two points.
func Haversine(a, b models.Point) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Bearing returns the initial bearing in degrees [0,360) from a to b.
func Bearing(a, b models.Point) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	deg := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}

// Destination returns the point reached by travelling distanceMeters
// from origin along the given bearing in degrees.
func Destination(origin models.Point, bearingDeg, distanceMeters float64) models.Point {
	lat1 := origin.Latitude * math.Pi / 180
	lon1 := origin.Longitude * math.Pi / 180
	brng := bearingDeg * math.Pi / 180
	d := distanceMeters / earthRadiusMeters

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(d) + math.Cos(lat1)*math.Sin(d)*math.Cos(brng))
	lon2 := lon1 + math.Atan2(
		math.Sin(brng)*math.Sin(d)*math.Cos(lat1),
		math.Cos(d)-math.Sin(lat1)*math.Sin(lat2),
	)

	return models.Point{
		Latitude:  lat2 * 180 / math.Pi,
		Longitude: math.Mod(lon2*180/math.Pi+540, 360) - 180,
	}
}

// PointInPolygon reports whether p lies inside poly using a ray cast on
// raw coordinates. Polygons here span a few hundred meters at most, so
// planar treatment is accurate enough. Fewer than three vertices never
// contains anything.
func PointInPolygon(p models.Point, poly models.Polygon) bool {
	if len(poly) < 3 {
		return false
	}
	inside := false
	j := len(poly) - 1
	for i := 0; i < len(poly); i++ {
		pi, pj := poly[i], poly[j]
		if (pi.Longitude > p.Longitude) != (pj.Longitude > p.Longitude) {
			cross := (pj.Latitude-pi.Latitude)*(p.Longitude-pi.Longitude)/
				(pj.Longitude-pi.Longitude) + pi.Latitude
			if p.Latitude < cross {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// SegmentIntersectsPolygon reports whether the segment a-b crosses or
// enters poly. An endpoint inside the polygon counts as intersecting.
func SegmentIntersectsPolygon(a, b models.Point, poly models.Polygon) bool {
	if len(poly) < 3 {
		return false
	}
	if PointInPolygon(a, poly) || PointInPolygon(b, poly) {
		return true
	}
	j := len(poly) - 1
	for i := 0; i < len(poly); i++ {
		if segmentsIntersect(a, b, poly[j], poly[i]) {
			return true
		}
		j = i
	}
	return false
}

func segmentsIntersect(p1, p2, p3, p4 models.Point) bool {
	d1 := orientation(p3, p4, p1)
	d2 := orientation(p3, p4, p2)
	d3 := orientation(p1, p2, p3)
	d4 := orientation(p1, p2, p4)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	// Collinear touches
	if d1 == 0 && onSegment(p3, p4, p1) {
		return true
	}
	if d2 == 0 && onSegment(p3, p4, p2) {
		return true
	}
	if d3 == 0 && onSegment(p1, p2, p3) {
		return true
	}
	if d4 == 0 && onSegment(p1, p2, p4) {
		return true
	}
	return false
}

func orientation(a, b, c models.Point) float64 {
	return (b.Longitude-a.Longitude)*(c.Latitude-a.Latitude) -
		(b.Latitude-a.Latitude)*(c.Longitude-a.Longitude)
}

func onSegment(a, b, p models.Point) bool {
	return math.Min(a.Latitude, b.Latitude) <= p.Latitude &&
		p.Latitude <= math.Max(a.Latitude, b.Latitude) &&
		math.Min(a.Longitude, b.Longitude) <= p.Longitude &&
		p.Longitude <= math.Max(a.Longitude, b.Longitude)
}

// Centroid returns the vertex average of poly, or the zero point for an
// empty polygon.
func Centroid(poly models.Polygon) models.Point {
	if len(poly) == 0 {
		return models.Point{}
	}
	var lat, lon float64
	for _, v := range poly {
		lat += v.Latitude
		lon += v.Longitude
	}
	n := float64(len(poly))
	return models.Point{Latitude: lat / n, Longitude: lon / n}
}

// DistanceToPolygon returns the distance from p to the nearest vertex
// of poly, or +Inf when poly is empty. Vertex distance is a fine
// stand-in at course survey density.
func DistanceToPolygon(p models.Point, poly models.Polygon) float64 {
	if len(poly) == 0 {
		return math.Inf(1)
	}
	min := math.Inf(1)
	for _, v := range poly {
		if d := Haversine(p, v); d < min {
			min = d
		}
	}
	return min
}
