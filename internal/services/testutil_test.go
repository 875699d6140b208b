package services

import (
	"fmt"
	"io"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kdigolf/caddie/internal/engine"
	"github.com/kdigolf/caddie/internal/models"
)

var testDBSeq atomic.Int64

// newTestDB opens a fresh in-memory sqlite database with the full
// schema. Each call gets its own named memory database so tests do not
// share state.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:services_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Course{},
		&models.Hole{},
		&models.Obstacle{},
		&models.StrategicPoint{},
		&models.OptimalShot{},
		&models.GolfClub{},
		&models.PlayerProfile{},
		&models.PlayerClubStat{},
		&models.Match{},
		&models.MatchPlayer{},
		&models.HoleScore{},
		&models.Stroke{},
	))
	return db
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// testOrigin is the tee of the fixture course.
var testOrigin = models.Point{Latitude: 40.4168, Longitude: -3.7038}

// offsetPoint moves a point the given meters north and east.
func offsetPoint(p models.Point, northMeters, eastMeters float64) models.Point {
	p = engine.Destination(p, 0, northMeters)
	return engine.Destination(p, 90, eastMeters)
}

// seedTestCourse creates a one-hole par 4: tee at the origin, flag
// 350m north, a strategic layup 180m out.
func seedTestCourse(t *testing.T, db *gorm.DB) (*models.Course, *models.Hole) {
	t.Helper()
	at := func(n, e float64) models.Point { return offsetPoint(testOrigin, n, e) }

	course := models.Course{Name: "Club de Campo", Location: "Madrid"}
	require.NoError(t, db.Create(&course).Error)

	hole := models.Hole{
		CourseID:     course.ID,
		HoleNumber:   1,
		Par:          4,
		LengthMeters: 350,
		Flag:         at(350, 0),
		TeePolygon: models.Polygon{
			at(-10, -15), at(-10, 15), at(10, 15), at(10, -15),
		},
		FairwayPolygon: models.Polygon{
			at(20, -40), at(20, 40), at(330, 40), at(330, -40),
		},
		GreenPolygon: models.Polygon{
			at(330, -20), at(330, 20), at(370, 20), at(370, -20),
		},
	}
	require.NoError(t, db.Create(&hole).Error)

	layup := models.StrategicPoint{
		HoleID:         hole.ID,
		Position:       at(180, 0),
		DistanceToFlag: 170,
		Description:    "centro de calle",
	}
	require.NoError(t, db.Create(&layup).Error)

	return &course, &hole
}

// seedClubCatalog inserts a small catalog. The putter has no default
// carry so seeded stats skip it.
func seedClubCatalog(t *testing.T, db *gorm.DB) {
	t.Helper()
	clubs := []models.GolfClub{
		{ID: 1, Name: "Driver", Category: models.CategoryDriver, Number: 1},
		{ID: 2, Name: "Hierro 7", Category: models.CategoryIron, Number: 7},
		{ID: 3, Name: "Sand Wedge", Category: models.CategoryWedge},
		{ID: 4, Name: "Putter", Category: models.CategoryPutter},
	}
	require.NoError(t, db.Create(&clubs).Error)
}

// testClubStats is a fixed stat set for evaluation tests, bypassing
// the seeded defaults.
func testClubStats() []engine.ClubStat {
	return []engine.ClubStat{
		{ClubID: 1, Name: "Driver", Category: models.CategoryDriver, AverageDistance: 190, MaxDistance: 210, AverageError: 12},
		{ClubID: 2, Name: "Hierro 7", Category: models.CategoryIron, Number: 7, AverageDistance: 140, MaxDistance: 155, AverageError: 8},
		{ClubID: 3, Name: "Sand Wedge", Category: models.CategoryWedge, AverageDistance: 80, MaxDistance: 90, AverageError: 5},
	}
}

func floatPtr(v float64) *float64 { return &v }

func uintPtr(v uint) *uint { return &v }
