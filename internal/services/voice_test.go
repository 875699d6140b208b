package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kdigolf/caddie/internal/models"
)

func newVoiceService(t *testing.T) (*gorm.DB, *VoiceService, *MatchService) {
	t.Helper()
	db := newTestDB(t)
	logger := testLogger()
	courses := NewCourseService(db, nil, logger, 0)
	players := NewPlayerService(db, nil, logger, 0)
	matches := NewMatchService(db, players, nil, logger)
	recommend := NewRecommendService(courses, players, matches, nil, nil, logger)
	voice := NewVoiceService(courses, matches, players, recommend, nil, logger)
	return db, voice, matches
}

func TestProcessCommandValidation(t *testing.T) {
	db, voice, matches := newVoiceService(t)
	seedClubCatalog(t, db)
	course, _ := seedTestCourse(t, db)
	ctx := context.Background()

	match, err := matches.CreateMatch(ctx, course.ID, "", nil)
	require.NoError(t, err)
	_, err = matches.AddPlayer(ctx, match.ID, "alice", 1)
	require.NoError(t, err)

	valid := VoiceCommand{
		MatchID:  match.ID,
		CourseID: course.ID,
		UserID:   "alice",
		Position: testOrigin,
		Query:    "¿cuánto queda a bandera?",
	}

	bad := valid
	bad.Position = models.Point{Latitude: 120, Longitude: 0}
	_, err = voice.ProcessCommand(ctx, bad)
	assert.Error(t, err)

	bad = valid
	bad.Query = "   "
	_, err = voice.ProcessCommand(ctx, bad)
	assert.Error(t, err)

	bad = valid
	bad.MatchID = uuid.New()
	_, err = voice.ProcessCommand(ctx, bad)
	assert.ErrorIs(t, err, ErrMatchNotFound)

	bad = valid
	bad.CourseID = uuid.New()
	_, err = voice.ProcessCommand(ctx, bad)
	assert.ErrorIs(t, err, ErrWrongCourse)

	bad = valid
	bad.UserID = "stranger"
	_, err = voice.ProcessCommand(ctx, bad)
	assert.ErrorIs(t, err, ErrPlayerNotInMatch)

	require.NoError(t, matches.CompleteMatch(ctx, match.ID))
	_, err = voice.ProcessCommand(ctx, valid)
	assert.ErrorIs(t, err, ErrMatchNotInProgress)
}

func TestVoiceCheckDistance(t *testing.T) {
	db, voice, matches := newVoiceService(t)
	seedClubCatalog(t, db)
	course, _ := seedTestCourse(t, db)
	ctx := context.Background()

	match, err := matches.CreateMatch(ctx, course.ID, "", nil)
	require.NoError(t, err)
	_, err = matches.AddPlayer(ctx, match.ID, "alice", 1)
	require.NoError(t, err)

	resp, err := voice.ProcessCommand(ctx, VoiceCommand{
		MatchID:  match.ID,
		CourseID: course.ID,
		UserID:   "alice",
		Position: offsetPoint(testOrigin, 200, 0),
		Query:    "¿cuánto queda a bandera?",
	})
	require.NoError(t, err)

	assert.Equal(t, IntentCheckDistance, resp.Intent)
	assert.Contains(t, resp.Response, "metros")
	meters, ok := resp.Data["distance_meters"].(float64)
	require.True(t, ok)
	assert.InDelta(t, 150, meters, 2)
}

func TestVoiceRecordHoleScore(t *testing.T) {
	db, voice, matches := newVoiceService(t)
	seedClubCatalog(t, db)
	course, hole := seedTestCourse(t, db)
	ctx := context.Background()

	match, err := matches.CreateMatch(ctx, course.ID, "", nil)
	require.NoError(t, err)
	_, err = matches.AddPlayer(ctx, match.ID, "alice", 1)
	require.NoError(t, err)

	resp, err := voice.ProcessCommand(ctx, VoiceCommand{
		MatchID:  match.ID,
		CourseID: course.ID,
		UserID:   "alice",
		Position: testOrigin,
		Query:    "anota el hoyo 1 con 5 golpes",
	})
	require.NoError(t, err)

	assert.Equal(t, IntentRecordHoleScore, resp.Intent)
	assert.Contains(t, resp.Response, "Hoyo 1 registrado con 5 golpes")

	var score models.HoleScore
	require.NoError(t, db.First(&score, "match_id = ? AND hole_id = ?", match.ID, hole.ID).Error)
	assert.Equal(t, 5, score.Strokes)
}

func TestVoiceAsksForMissingHoleResults(t *testing.T) {
	db, voice, matches := newVoiceService(t)
	seedClubCatalog(t, db)
	course, _ := seedTestCourse(t, db)
	ctx := context.Background()

	match, err := matches.CreateMatch(ctx, course.ID, "", nil)
	require.NoError(t, err)
	_, err = matches.AddPlayer(ctx, match.ID, "alice", 1)
	require.NoError(t, err)

	// Jumping to hole 3 with holes 1 and 2 unrecorded triggers a
	// confirmation request instead of the recording.
	resp, err := voice.ProcessCommand(ctx, VoiceCommand{
		MatchID:  match.ID,
		CourseID: course.ID,
		UserID:   "alice",
		Position: testOrigin,
		Query:    "anota el hoyo 3 con 4 golpes",
	})
	require.NoError(t, err)

	assert.Equal(t, IntentHoleConfirmation, resp.Intent)
	assert.Contains(t, resp.Response, "confirmes el resultado")
	assert.Equal(t, []int{1, 2}, resp.Data["missing_holes"])

	var scores int64
	require.NoError(t, db.Model(&models.HoleScore{}).Count(&scores).Error)
	assert.Zero(t, scores)
}

func TestVoiceMultiHoleConfirmation(t *testing.T) {
	db, voice, matches := newVoiceService(t)
	seedClubCatalog(t, db)
	course, _ := seedTestCourse(t, db)
	ctx := context.Background()

	hole2 := models.Hole{
		CourseID: course.ID, HoleNumber: 2, Par: 3,
		Flag: offsetPoint(testOrigin, 150, 400),
	}
	require.NoError(t, db.Create(&hole2).Error)

	match, err := matches.CreateMatch(ctx, course.ID, "", nil)
	require.NoError(t, err)
	_, err = matches.AddPlayer(ctx, match.ID, "alice", 1)
	require.NoError(t, err)

	resp, err := voice.ProcessCommand(ctx, VoiceCommand{
		MatchID:  match.ID,
		CourseID: course.ID,
		UserID:   "alice",
		Position: testOrigin,
		Query:    "hoyo 1 con 4 golpes, hoyo 2 con 5 golpes",
	})
	require.NoError(t, err)

	assert.Equal(t, IntentHoleConfirmation, resp.Intent)
	assert.Contains(t, resp.Response, "He registrado")
	assert.Equal(t, true, resp.Data["all_registered"])

	var scores int64
	require.NoError(t, db.Model(&models.HoleScore{}).
		Where("match_id = ?", match.ID).Count(&scores).Error)
	assert.EqualValues(t, 2, scores)

	player, err := matches.GetMatchPlayer(ctx, match.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, 3, player.CurrentHole)
}
