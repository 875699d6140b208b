package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdigolf/caddie/internal/models"
)

// twoHoleCourse lays out two parallel holes heading north, 300m
// apart, each with a fairway, a green around the flag and a tee box.
func twoHoleCourse() []models.Hole {
	mkHole := func(number int, eastShift float64) models.Hole {
		at := func(n, e float64) models.Point { return offset(testOrigin, n, e+eastShift) }
		return models.Hole{
			ID:         uuid.New(),
			HoleNumber: number,
			Par:        4,
			Flag:       at(350, 0),
			TeePolygon: models.Polygon{
				at(-10, -15), at(-10, 15), at(10, 15), at(10, -15),
			},
			FairwayPolygon: models.Polygon{
				at(20, -40), at(20, 40), at(330, 40), at(330, -40),
			},
			GreenPolygon: models.Polygon{
				at(335, -25), at(335, 25), at(370, 25), at(370, -25),
			},
			Obstacles: []models.Obstacle{
				{
					ID:     uuid.New(),
					Type:   models.TerrainTrees,
					Name:   "pine grove",
					Shape:  models.Polygon{at(150, 45), at(150, 80), at(200, 80), at(200, 45)},
				},
			},
		}
	}
	return []models.Hole{mkHole(1, 0), mkHole(2, 300)}
}

func TestResolveNoHoles(t *testing.T) {
	r := NewPositionResolver(nil)
	_, err := r.Resolve(nil, testOrigin, ResolveOptions{})
	assert.ErrorIs(t, err, ErrNoHoles)
}

func TestResolveByPolygon(t *testing.T) {
	holes := twoHoleCourse()
	r := NewPositionResolver(nil)

	// Mid-fairway on hole 2.
	pos := offset(testOrigin, 180, 300)
	res, err := r.Resolve(holes, pos, ResolveOptions{})
	require.NoError(t, err)

	assert.True(t, res.Valid)
	assert.Equal(t, 2, res.Hole.HoleNumber)
	assert.GreaterOrEqual(t, res.Confidence, 0.9)
	assert.Greater(t, res.DistanceToFlag, 0.0)
}

func TestResolveGreenContainmentBeatsNearestFlag(t *testing.T) {
	holes := twoHoleCourse()
	r := NewPositionResolver(nil)

	// On hole 1's green but slightly closer to nothing else.
	pos := offset(testOrigin, 350, 10)
	res, err := r.Resolve(holes, pos, ResolveOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Hole.HoleNumber)
	assert.GreaterOrEqual(t, res.Confidence, 0.9)
}

func TestResolveExpectedHoleConfirmed(t *testing.T) {
	holes := twoHoleCourse()
	r := NewPositionResolver(nil)

	pos := offset(testOrigin, 100, 0)
	res, err := r.Resolve(holes, pos, ResolveOptions{ExpectedHoleNumber: 1})
	require.NoError(t, err)

	assert.True(t, res.Valid)
	assert.Equal(t, 1, res.Hole.HoleNumber)
	assert.InDelta(t, 0.9, res.Confidence, 0.001)
}

func TestResolveFirstStrokeOnTee(t *testing.T) {
	holes := twoHoleCourse()
	r := NewPositionResolver(nil)

	// Tee boxes sit outside the fairway polygon but inside the tee
	// polygon, which also counts as containment.
	pos := offset(testOrigin, 0, 0)
	res, err := r.Resolve(holes, pos, ResolveOptions{ExpectedHoleNumber: 1, FirstStroke: true})
	require.NoError(t, err)

	assert.True(t, res.Valid)
	assert.InDelta(t, 1.0, res.Confidence, 0.001)
}

func TestResolveNearestFlagFallback(t *testing.T) {
	holes := twoHoleCourse()
	r := NewPositionResolver(nil)

	// In the rough between the holes, outside every polygon, nearer
	// to hole 1's flag.
	pos := offset(testOrigin, 340, 100)
	res, err := r.Resolve(holes, pos, ResolveOptions{})
	require.NoError(t, err)

	assert.True(t, res.Valid)
	assert.Equal(t, 1, res.Hole.HoleNumber)
	assert.InDelta(t, 0.5, res.Confidence, 0.001)
}

func TestResolveNearestFlagFallbackIsUnbounded(t *testing.T) {
	holes := twoHoleCourse()
	r := NewPositionResolver(nil)

	// Far beyond every polygon and flag. Without match context the
	// resolver still answers with the nearest hole, at low confidence.
	pos := offset(testOrigin, 5000, 0)
	res, err := r.Resolve(holes, pos, ResolveOptions{})
	require.NoError(t, err)

	require.NotNil(t, res.Hole)
	assert.True(t, res.Valid)
	assert.Equal(t, 1, res.Hole.HoleNumber)
	assert.InDelta(t, 0.5, res.Confidence, 0.001)
}

func TestResolveExpectedHoleFallbackStaysBounded(t *testing.T) {
	holes := twoHoleCourse()
	r := NewPositionResolver(nil)

	// The same far fix with match context is rejected: the expected
	// hole's flag is well past the fallback range.
	pos := offset(testOrigin, 5000, 0)
	res, err := r.Resolve(holes, pos, ResolveOptions{ExpectedHoleNumber: 1})
	require.NoError(t, err)

	assert.False(t, res.Valid)
}

func TestResolveDistanceFallbackToExpectedHole(t *testing.T) {
	holes := twoHoleCourse()
	r := NewPositionResolver(nil)

	pos := offset(testOrigin, 340, 100)
	res, err := r.Resolve(holes, pos, ResolveOptions{ExpectedHoleNumber: 1})
	require.NoError(t, err)

	assert.True(t, res.Valid)
	assert.Equal(t, 1, res.Hole.HoleNumber)
	assert.InDelta(t, 0.85, res.Confidence, 0.001)
}

func TestResolveAdjacentHoleOverriddenByDistance(t *testing.T) {
	holes := twoHoleCourse()
	r := NewPositionResolver(nil)

	// Polygons put the fix on hole 2, but the match says hole 1 and
	// the fix is within fallback range of hole 1's flag: the distance
	// identification outranks the low-confidence adjacent-hole guess.
	pos := offset(testOrigin, 180, 300)
	res, err := r.Resolve(holes, pos, ResolveOptions{ExpectedHoleNumber: 1})
	require.NoError(t, err)

	assert.True(t, res.Valid)
	assert.Equal(t, 1, res.Hole.HoleNumber)
	assert.InDelta(t, 0.85, res.Confidence, 0.001)
}

func TestResolveTerrainCorrection(t *testing.T) {
	holes := twoHoleCourse()
	r := NewPositionResolver(nil)

	// GPS drifted onto hole 2's fairway, but the player is on hole 1
	// and says the ball is in the trees. The trees obstacle on hole 1
	// is within the correction radius of a point near it.
	pos := offset(testOrigin, 175, 120)
	res, err := r.Resolve(holes, pos, ResolveOptions{
		ExpectedHoleNumber: 1,
		TerrainDescription: "mi bola está entre los árboles",
	})
	require.NoError(t, err)

	require.NotNil(t, res.CorrectedPosition)
	grove := holes[0].Obstacles[0]
	assert.InDelta(t, 0, Haversine(*res.CorrectedPosition, grove.Centroid()), 0.5)
	require.NotNil(t, res.Terrain)
	assert.Equal(t, models.TerrainTrees, res.Terrain.TerrainType)
}

func TestResolveTerrainCorrectionOutOfRadius(t *testing.T) {
	holes := twoHoleCourse()
	r := NewPositionResolver(nil)

	// Too far from any trees obstacle: no correction, result keeps
	// the GPS-derived answer.
	pos := offset(testOrigin, 30, 0)
	res, err := r.Resolve(holes, pos, ResolveOptions{
		ExpectedHoleNumber: 1,
		TerrainDescription: "entre los árboles",
	})
	require.NoError(t, err)

	assert.Nil(t, res.CorrectedPosition)
	assert.Equal(t, 1, res.Hole.HoleNumber)
}

func TestTerrainAt(t *testing.T) {
	holes := twoHoleCourse()
	h := &holes[0]

	tests := []struct {
		name     string
		pos      models.Point
		expected models.TerrainType
	}{
		{"fairway", offset(testOrigin, 100, 0), models.TerrainFairway},
		{"green", offset(testOrigin, 350, 0), models.TerrainGreen},
		{"tee", offset(testOrigin, 0, 0), models.TerrainTee},
		{"trees obstacle", offset(testOrigin, 175, 60), models.TerrainTrees},
		{"default rough", offset(testOrigin, 100, 120), models.TerrainRough},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TerrainAt(h, tt.pos))
		})
	}
}
