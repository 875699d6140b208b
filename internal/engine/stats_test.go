package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kdigolf/caddie/internal/models"
)

func TestUpdateClubStatFirstObservation(t *testing.T) {
	stat := &models.PlayerClubStat{}
	UpdateClubStat(stat, 148, 140)

	assert.Equal(t, 148.0, stat.AverageDistance)
	assert.Equal(t, 148.0, stat.MinDistance)
	assert.Equal(t, 148.0, stat.MaxDistance)
	assert.Equal(t, 8.0, stat.AverageError)
	assert.Equal(t, 4.0, stat.ErrorStdDeviation)
	assert.Equal(t, 1, stat.ShotsRecorded)
}

func TestUpdateClubStatEWMA(t *testing.T) {
	stat := &models.PlayerClubStat{
		AverageDistance:   140,
		MinDistance:       120,
		MaxDistance:       150,
		AverageError:      10,
		ErrorStdDeviation: 5,
		ShotsRecorded:     12,
	}
	UpdateClubStat(stat, 160, 150)

	// 0.7*140 + 0.3*160
	assert.InDelta(t, 146, stat.AverageDistance, 0.0001)
	// 0.7*10 + 0.3*|160-150|
	assert.InDelta(t, 10, stat.AverageError, 0.0001)
	assert.Equal(t, 5.0, stat.ErrorStdDeviation)
	assert.Equal(t, 120.0, stat.MinDistance)
	assert.Equal(t, 160.0, stat.MaxDistance)
	assert.Equal(t, 13, stat.ShotsRecorded)
}

func TestUpdateClubStatMinMax(t *testing.T) {
	stat := &models.PlayerClubStat{
		AverageDistance: 140,
		MinDistance:     130,
		MaxDistance:     150,
		ShotsRecorded:   3,
	}

	UpdateClubStat(stat, 100, 140)
	assert.Equal(t, 100.0, stat.MinDistance)
	assert.Equal(t, 150.0, stat.MaxDistance)

	UpdateClubStat(stat, 170, 140)
	assert.Equal(t, 100.0, stat.MinDistance)
	assert.Equal(t, 170.0, stat.MaxDistance)
}

func TestUpdateClubStatStdTracksError(t *testing.T) {
	stat := &models.PlayerClubStat{AverageDistance: 100, AverageError: 20, ShotsRecorded: 5}

	UpdateClubStat(stat, 100, 100)
	assert.InDelta(t, 0.5*stat.AverageError, stat.ErrorStdDeviation, 0.0001)
}
