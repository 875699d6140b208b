package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kdigolf/caddie/internal/models"
)

// Test fixtures sit on a real course latitude so haversine distances
// behave like they do in production.
var testOrigin = models.Point{Latitude: 40.4168, Longitude: -3.7038}

// offset moves a point the given meters north and east.
func offset(p models.Point, northMeters, eastMeters float64) models.Point {
	p = Destination(p, 0, northMeters)
	return Destination(p, 90, eastMeters)
}

// rect builds a rectangle spanning the given north/east ranges from
// the test origin.
func rect(northFrom, northTo, eastFrom, eastTo float64) models.Polygon {
	return models.Polygon{
		offset(testOrigin, northFrom, eastFrom),
		offset(testOrigin, northFrom, eastTo),
		offset(testOrigin, northTo, eastTo),
		offset(testOrigin, northTo, eastFrom),
	}
}

func TestHaversine(t *testing.T) {
	tests := []struct {
		name     string
		a, b     models.Point
		expected float64
		delta    float64
	}{
		{
			name:     "same point",
			a:        testOrigin,
			b:        testOrigin,
			expected: 0,
			delta:    0.001,
		},
		{
			name:     "100m north",
			a:        testOrigin,
			b:        Destination(testOrigin, 0, 100),
			expected: 100,
			delta:    0.5,
		},
		{
			name:     "250m east",
			a:        testOrigin,
			b:        Destination(testOrigin, 90, 250),
			expected: 250,
			delta:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Haversine(tt.a, tt.b), tt.delta)
		})
	}
}

// bearingDiff is the smallest absolute difference between two bearings
// in degrees: a due-north bearing may come back as 0 or as 359.999…
func bearingDiff(a, b float64) float64 {
	d := math.Mod(a-b+540, 360) - 180
	return math.Abs(d)
}

func TestBearing(t *testing.T) {
	north := Destination(testOrigin, 0, 500)
	east := Destination(testOrigin, 90, 500)

	assert.InDelta(t, 0, bearingDiff(Bearing(testOrigin, north), 0), 0.5)
	assert.InDelta(t, 0, bearingDiff(Bearing(testOrigin, east), 90), 0.5)
}

func TestDestinationRoundTrip(t *testing.T) {
	dest := Destination(testOrigin, 37, 180)
	assert.InDelta(t, 180, Haversine(testOrigin, dest), 0.5)
	assert.InDelta(t, 0, bearingDiff(Bearing(testOrigin, dest), 37), 0.5)
}

func TestPointInPolygon(t *testing.T) {
	poly := rect(0, 100, -50, 50)

	tests := []struct {
		name   string
		point  models.Point
		inside bool
	}{
		{"center", offset(testOrigin, 50, 0), true},
		{"near corner", offset(testOrigin, 5, -45), true},
		{"north of polygon", offset(testOrigin, 150, 0), false},
		{"east of polygon", offset(testOrigin, 50, 80), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.inside, PointInPolygon(tt.point, poly))
		})
	}
}

func TestPointInPolygonDegenerate(t *testing.T) {
	assert.False(t, PointInPolygon(testOrigin, nil))
	assert.False(t, PointInPolygon(testOrigin, models.Polygon{testOrigin}))
	assert.False(t, PointInPolygon(testOrigin, models.Polygon{testOrigin, offset(testOrigin, 10, 0)}))
}

func TestSegmentIntersectsPolygon(t *testing.T) {
	band := rect(60, 95, -100, 100)

	crossing := SegmentIntersectsPolygon(testOrigin, offset(testOrigin, 150, 0), band)
	assert.True(t, crossing, "segment through the band must intersect")

	short := SegmentIntersectsPolygon(testOrigin, offset(testOrigin, 40, 0), band)
	assert.False(t, short, "segment stopping before the band must not intersect")

	endpointInside := SegmentIntersectsPolygon(testOrigin, offset(testOrigin, 80, 0), band)
	assert.True(t, endpointInside, "segment ending inside the band counts")

	assert.False(t, SegmentIntersectsPolygon(testOrigin, offset(testOrigin, 150, 0), nil))
}

func TestDistanceToPolygon(t *testing.T) {
	poly := rect(100, 200, -50, 50)

	d := DistanceToPolygon(testOrigin, poly)
	assert.InDelta(t, Haversine(testOrigin, offset(testOrigin, 100, -50)), d, 0.5)

	assert.True(t, math.IsInf(DistanceToPolygon(testOrigin, nil), 1))
}

func TestCentroid(t *testing.T) {
	poly := rect(0, 100, -50, 50)
	c := Centroid(poly)
	assert.InDelta(t, 50, Haversine(testOrigin, models.Point{Latitude: c.Latitude, Longitude: testOrigin.Longitude}), 1.5)

	assert.True(t, Centroid(nil).IsZero())
}
