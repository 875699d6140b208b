package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdigolf/caddie/internal/models"
)

func pendingStroke(number int, proposed *float64) *models.Stroke {
	return &models.Stroke{
		StrokeNumber:     number,
		Start:            testOrigin,
		ProposedDistance: proposed,
	}
}

func TestEvaluateStrokeHappyPath(t *testing.T) {
	hole := parThreeHole() // flag 110m north
	proposed := 110.0
	stroke := pendingStroke(1, &proposed)
	end := offset(testOrigin, 100, 5)

	eval, err := EvaluateStroke(stroke, end, 2, decisionStats(), hole)
	require.NoError(t, err)

	assert.InDelta(t, 100.1, eval.ActualDistance, 1)
	require.NotNil(t, eval.QualityScore)
	// 10m short of a 110m proposal: quality just above 90.
	assert.InDelta(t, 91, *eval.QualityScore, 1.5)
	require.NotNil(t, eval.DistanceError)
	assert.InDelta(t, 10, *eval.DistanceError, 1.5)
	require.NotNil(t, eval.DirectionError)
	assert.False(t, eval.WithinGreen)
}

func TestEvaluateStrokeWrongStrokeNumber(t *testing.T) {
	stroke := pendingStroke(1, nil)
	end := offset(testOrigin, 100, 0)

	_, err := EvaluateStroke(stroke, end, 4, decisionStats(), parThreeHole())
	assert.ErrorIs(t, err, ErrStrokeRejected)
}

func TestEvaluateStrokeImpossibleDistance(t *testing.T) {
	// Player's best club averages 190m; 3x that is a GPS glitch.
	stroke := pendingStroke(2, nil)
	end := offset(testOrigin, 570, 0)

	_, err := EvaluateStroke(stroke, end, 3, decisionStats(), parThreeHole())
	assert.ErrorIs(t, err, ErrStrokeRejected)
}

func TestEvaluateStrokeDefaultDistanceCap(t *testing.T) {
	stroke := pendingStroke(1, nil)

	// No stats: anything under 350m passes the distance guard.
	_, err := EvaluateStroke(stroke, offset(testOrigin, 340, 0), 2, nil, parThreeHole())
	assert.NoError(t, err)

	_, err = EvaluateStroke(stroke, offset(testOrigin, 360, 0), 2, nil, parThreeHole())
	assert.ErrorIs(t, err, ErrStrokeRejected)
}

func TestEvaluateStrokeLateralImplausible(t *testing.T) {
	hole := guardedHole() // flag 160m north
	proposed := 150.0
	stroke := pendingStroke(1, &proposed)

	// Proposed 150 of 160m to the flag leaves ~10m; ending 120m wide
	// of the flag is both past the slack and far beyond double the
	// expectation.
	end := offset(testOrigin, 150, 120)
	_, err := EvaluateStroke(stroke, end, 2, decisionStats(), hole)
	assert.ErrorIs(t, err, ErrStrokeRejected)
}

func TestEvaluateStrokeHonestBadShotStillEvaluates(t *testing.T) {
	hole := guardedHole()
	proposed := 150.0
	stroke := pendingStroke(1, &proposed)

	// 40m offline hurts quality but is a real golf shot.
	end := offset(testOrigin, 140, 40)
	eval, err := EvaluateStroke(stroke, end, 2, decisionStats(), hole)
	require.NoError(t, err)
	require.NotNil(t, eval.QualityScore)
}

func TestEvaluateStrokeGreenToGreen(t *testing.T) {
	hole := parThreeHole() // green spans 95..125 north
	stroke := &models.Stroke{StrokeNumber: 2, Start: offset(testOrigin, 100, 0)}
	end := offset(testOrigin, 110, 2)

	eval, err := EvaluateStroke(stroke, end, 3, decisionStats(), hole)
	require.NoError(t, err)

	assert.True(t, eval.WithinGreen)
	assert.Nil(t, eval.QualityScore)
	assert.Nil(t, eval.DistanceError)
}

func TestEvaluateStrokeQualityClamped(t *testing.T) {
	hole := parThreeHole()
	proposed := 30.0
	stroke := pendingStroke(1, &proposed)

	// Wildly long against a short proposal: quality floors at 0.
	end := offset(testOrigin, 0, 100)
	eval, err := EvaluateStroke(stroke, end, 2, decisionStats(), hole)
	require.NoError(t, err)
	require.NotNil(t, eval.QualityScore)
	assert.Equal(t, 0.0, *eval.QualityScore)
}

func TestGreenStrokeQuality(t *testing.T) {
	tests := []struct {
		putts    int
		expected float64
	}{
		{1, 80},
		{2, 60},
		{3, 40},
		{4, 20},
		{5, 15},
		{8, 0},
		{12, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, GreenStrokeQuality(tt.putts), "putts=%d", tt.putts)
	}
}
