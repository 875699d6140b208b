package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdigolf/caddie/internal/models"
)

func testClubStats() []ClubStat {
	return []ClubStat{
		{ClubID: 1, Name: "Driver", Category: models.CategoryDriver, AverageDistance: 190, MaxDistance: 210, AverageError: 15},
		{ClubID: 2, Name: "Hierro 7", Category: models.CategoryIron, Number: 7, AverageDistance: 140, MaxDistance: 155, AverageError: 10},
		{ClubID: 3, Name: "Pitching Wedge", Category: models.CategoryWedge, AverageDistance: 110, MaxDistance: 120, AverageError: 8},
		{ClubID: 4, Name: "Sand Wedge", Category: models.CategoryWedge, AverageDistance: 80, MaxDistance: 90, AverageError: 6},
	}
}

func TestRecommendClub(t *testing.T) {
	stats := testClubStats()

	tests := []struct {
		name         string
		target       float64
		expectedClub string
		expectedSwing SwingType
	}{
		{"driver distance", 195, "Driver", SwingFull},
		{"mid iron", 140, "Hierro 7", SwingFull},
		{"three quarter wedge", 88, "Sand Wedge", SwingFull},
		{"short pitch", 60, "Sand Wedge", SwingThreeQuarters},
		{"chip", 40, "Sand Wedge", SwingHalf},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			choice := RecommendClub(stats, tt.target)
			require.NotNil(t, choice)
			assert.Equal(t, tt.expectedClub, choice.Club.Name)
			assert.Equal(t, tt.expectedSwing, choice.Swing)
			assert.Equal(t, tt.target, choice.TargetMeters)
		})
	}
}

func TestRecommendClubPrecisionPenalty(t *testing.T) {
	// Two clubs equally far from the target: the more precise one
	// wins through the error term.
	stats := []ClubStat{
		{ClubID: 1, Name: "Madera 3", Category: models.CategoryWood, AverageDistance: 170, AverageError: 20},
		{ClubID: 2, Name: "Híbrido 3", Category: models.CategoryHybrid, AverageDistance: 150, AverageError: 6},
	}
	choice := RecommendClub(stats, 160)
	require.NotNil(t, choice)
	assert.Equal(t, "Híbrido 3", choice.Club.Name)
}

func TestRecommendClubEmpty(t *testing.T) {
	assert.Nil(t, RecommendClub(nil, 150))
	assert.Nil(t, RecommendClub(testClubStats(), 0))
	assert.Nil(t, RecommendClub(testClubStats(), -5))
}

func TestMaxAccessibleDistance(t *testing.T) {
	assert.Equal(t, 210.0, MaxAccessibleDistance(testClubStats()))

	noMax := []ClubStat{{AverageDistance: 180}}
	assert.Equal(t, 180.0, MaxAccessibleDistance(noMax))

	assert.Equal(t, DefaultMaxAccessibleDistance, MaxAccessibleDistance(nil))
}

func TestDefaultDistances(t *testing.T) {
	male := DefaultDistances(models.GenderMale, models.SkillIntermediate)
	assert.Equal(t, 190.0, male["Driver"])
	assert.Equal(t, 65.0, male["Lob Wedge"])
	assert.Len(t, male, 15)

	female := DefaultDistances(models.GenderFemale, models.SkillProfessional)
	assert.Equal(t, 220.0, female["Driver"])

	// Unknown buckets fall back to male intermediate.
	fallback := DefaultDistances(models.Gender("other"), models.SkillLevel("expert"))
	assert.Equal(t, 190.0, fallback["Driver"])
}

func TestDefaultStatsFor(t *testing.T) {
	minD, maxD, avgErr, stdDev := DefaultStatsFor(100)
	assert.Equal(t, 90.0, minD)
	assert.InDelta(t, 110.0, maxD, 0.0001)
	assert.Equal(t, 8.0, avgErr)
	assert.Equal(t, 4.0, stdDev)
}
