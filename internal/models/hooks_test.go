package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// The schema must migrate on sqlite as-is: ids are assigned in
// BeforeCreate, not by a database default, so no tag may carry a
// postgres-only expression.
func TestAutoMigrateOnSqlite(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:models_test?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&Course{}, &Hole{}, &Obstacle{}, &StrategicPoint{}, &OptimalShot{},
		&GolfClub{}, &PlayerProfile{}, &PlayerClubStat{},
		&Match{}, &MatchPlayer{}, &HoleScore{}, &Stroke{},
	))

	course := Course{Name: "Club de Campo"}
	require.NoError(t, db.Create(&course).Error)
	assert.NotEqual(t, uuid.Nil, course.ID)

	match := Match{CourseID: course.ID, Name: "sábado", Status: MatchInProgress}
	require.NoError(t, db.Create(&match).Error)
	assert.NotEqual(t, uuid.Nil, match.ID)
}

func TestBeforeCreateKeepsExplicitID(t *testing.T) {
	id := uuid.New()
	c := Course{ID: id}
	require.NoError(t, c.BeforeCreate(nil))
	assert.Equal(t, id, c.ID)
}
