package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdigolf/caddie/internal/models"
)

func TestGetOrCreateProfileDefaults(t *testing.T) {
	db := newTestDB(t)
	players := NewPlayerService(db, nil, testLogger(), 0)
	ctx := context.Background()

	profile, err := players.GetOrCreateProfile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.GenderMale, profile.Gender)
	assert.Equal(t, models.SkillIntermediate, profile.SkillLevel)

	again, err := players.GetOrCreateProfile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, profile.ID, again.ID)
}

func TestGetClubStatsSeedsDefaults(t *testing.T) {
	db := newTestDB(t)
	seedClubCatalog(t, db)
	players := NewPlayerService(db, nil, testLogger(), 0)
	ctx := context.Background()

	stats, err := players.GetClubStats(ctx, "alice")
	require.NoError(t, err)

	// The putter has no baseline carry and gets no row.
	require.Len(t, stats, 3)

	// Driver-first ordering by average distance.
	assert.Equal(t, "Driver", stats[0].Name)
	assert.InDelta(t, 190, stats[0].AverageDistance, 0.01)
	assert.InDelta(t, 0.9*190, stats[0].MinDistance, 0.01)
	assert.InDelta(t, 1.1*190, stats[0].MaxDistance, 0.01)
	assert.InDelta(t, 0.08*190, stats[0].AverageError, 0.01)
	assert.Equal(t, "Hierro 7", stats[1].Name)
	assert.Equal(t, "Sand Wedge", stats[2].Name)
}

func TestGetClubStatsUsesProfileBucket(t *testing.T) {
	db := newTestDB(t)
	seedClubCatalog(t, db)
	players := NewPlayerService(db, nil, testLogger(), 0)
	ctx := context.Background()

	profile, err := players.GetOrCreateProfile(ctx, "maria")
	require.NoError(t, err)
	profile.Gender = models.GenderFemale
	profile.SkillLevel = models.SkillBeginner
	require.NoError(t, players.UpdateProfile(ctx, profile))

	stats, err := players.GetClubStats(ctx, "maria")
	require.NoError(t, err)
	require.NotEmpty(t, stats)
	assert.Equal(t, "Driver", stats[0].Name)
	assert.InDelta(t, 130, stats[0].AverageDistance, 0.01)
}

func TestRecordShotUpdatesRunningStats(t *testing.T) {
	db := newTestDB(t)
	seedClubCatalog(t, db)
	players := NewPlayerService(db, nil, testLogger(), 0)
	ctx := context.Background()

	// Seed the default rows first so the shot lands on an existing one.
	_, err := players.GetClubStats(ctx, "alice")
	require.NoError(t, err)

	// The seeded row has no recorded shots, so the first observation
	// replaces the baseline outright.
	require.NoError(t, players.RecordShot(ctx, "alice", 1, 175, 190))

	var profile models.PlayerProfile
	require.NoError(t, db.First(&profile, "user_id = ?", "alice").Error)
	var stat models.PlayerClubStat
	require.NoError(t, db.First(&stat, "player_profile_id = ? AND club_id = ?", profile.ID, 1).Error)
	assert.Equal(t, 1, stat.ShotsRecorded)
	assert.InDelta(t, 175, stat.AverageDistance, 0.01)
	assert.InDelta(t, 15, stat.AverageError, 0.01)

	// Later shots fold in exponentially.
	require.NoError(t, players.RecordShot(ctx, "alice", 1, 185, 190))
	require.NoError(t, db.First(&stat, "player_profile_id = ? AND club_id = ?", profile.ID, 1).Error)
	assert.Equal(t, 2, stat.ShotsRecorded)
	assert.InDelta(t, 0.7*175+0.3*185, stat.AverageDistance, 0.01)
	assert.InDelta(t, 0.7*15+0.3*5, stat.AverageError, 0.01)
	assert.InDelta(t, 185, stat.MaxDistance, 0.01)
	assert.InDelta(t, 175, stat.MinDistance, 0.01)
}

func TestRecordShotUnknownClubCreatesRow(t *testing.T) {
	db := newTestDB(t)
	players := NewPlayerService(db, nil, testLogger(), 0)
	ctx := context.Background()

	require.NoError(t, players.RecordShot(ctx, "bob", 7, 120, 118))

	var profile models.PlayerProfile
	require.NoError(t, db.First(&profile, "user_id = ?", "bob").Error)
	var stat models.PlayerClubStat
	require.NoError(t, db.First(&stat, "player_profile_id = ? AND club_id = ?", profile.ID, 7).Error)
	assert.Equal(t, 1, stat.ShotsRecorded)
	assert.InDelta(t, 120, stat.AverageDistance, 0.01)
}

func TestGetClubCatalog(t *testing.T) {
	db := newTestDB(t)
	seedClubCatalog(t, db)
	players := NewPlayerService(db, nil, testLogger(), 0)

	clubs, err := players.GetClubCatalog(context.Background())
	require.NoError(t, err)
	require.Len(t, clubs, 4)
	assert.Equal(t, "Driver", clubs[0].Name)
}
