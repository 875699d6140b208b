package main

import (
	"fmt"
	"log"
	"os"

	"github.com/kdigolf/caddie/internal/models"
	"github.com/kdigolf/caddie/pkg/config"
	"github.com/kdigolf/caddie/pkg/database"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm/clause"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate [up|down|seed]")
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	command := os.Args[1]

	switch command {
	case "up":
		if err := runMigrations(db); err != nil {
			logrus.Fatalf("Failed to run migrations: %v", err)
		}
		logrus.Info("Migrations completed successfully")

	case "down":
		if err := dropTables(db); err != nil {
			logrus.Fatalf("Failed to drop tables: %v", err)
		}
		logrus.Info("Tables dropped successfully")

	case "seed":
		if err := seedData(db); err != nil {
			logrus.Fatalf("Failed to seed data: %v", err)
		}
		logrus.Info("Data seeded successfully")

	default:
		log.Fatalf("Unknown command: %s", command)
	}
}

func runMigrations(db *database.DB) error {
	// Enable UUID extension for PostgreSQL
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		return fmt.Errorf("failed to create UUID extension: %w", err)
	}

	// Auto migrate all models
	if err := db.AutoMigrate(
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
	); err != nil {
		return fmt.Errorf("failed to migrate models: %w", err)
	}

	// Create indexes
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_holes_course_number ON holes(course_id, hole_number)",
		"CREATE INDEX IF NOT EXISTS idx_obstacles_hole ON obstacles(hole_id)",
		"CREATE INDEX IF NOT EXISTS idx_strategic_points_hole ON strategic_points(hole_id, order_index)",
		"CREATE INDEX IF NOT EXISTS idx_optimal_shots_hole ON optimal_shots(hole_id)",
		"CREATE INDEX IF NOT EXISTS idx_player_club_stats_user ON player_club_stats(user_id, club_id)",
		"CREATE INDEX IF NOT EXISTS idx_match_players_match ON match_players(match_id, user_id)",
		"CREATE INDEX IF NOT EXISTS idx_hole_scores_match_user ON hole_scores(match_id, user_id)",
		"CREATE INDEX IF NOT EXISTS idx_strokes_match_user_hole ON strokes(match_id, user_id, hole_id)",
		"CREATE INDEX IF NOT EXISTS idx_strokes_evaluated ON strokes(evaluated)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

func dropTables(db *database.DB) error {
	// Drop tables in reverse order to handle foreign key constraints
	tables := []string{
		"strokes",
		"hole_scores",
		"match_players",
		"matches",
		"player_club_stats",
		"player_profiles",
		"golf_clubs",
		"optimal_shots",
		"strategic_points",
		"obstacles",
		"holes",
		"courses",
	}

	for _, table := range tables {
		if err := db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)).Error; err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}

	return nil
}

func seedData(db *database.DB) error {
	// Club names must match the keys of the default distance table so
	// baseline stats can be joined back to the catalog.
	clubs := []models.GolfClub{
		{Name: "Driver", Category: models.CategoryDriver, Number: 1},
		{Name: "Madera 3", Category: models.CategoryWood, Number: 3},
		{Name: "Madera 5", Category: models.CategoryWood, Number: 5},
		{Name: "Híbrido 3", Category: models.CategoryHybrid, Number: 3},
		{Name: "Híbrido 4", Category: models.CategoryHybrid, Number: 4},
		{Name: "Hierro 4", Category: models.CategoryIron, Number: 4},
		{Name: "Hierro 5", Category: models.CategoryIron, Number: 5},
		{Name: "Hierro 6", Category: models.CategoryIron, Number: 6},
		{Name: "Hierro 7", Category: models.CategoryIron, Number: 7},
		{Name: "Hierro 8", Category: models.CategoryIron, Number: 8},
		{Name: "Hierro 9", Category: models.CategoryIron, Number: 9},
		{Name: "Pitching Wedge", Category: models.CategoryWedge},
		{Name: "Gap Wedge", Category: models.CategoryWedge},
		{Name: "Sand Wedge", Category: models.CategoryWedge},
		{Name: "Lob Wedge", Category: models.CategoryWedge},
		{Name: "Putter", Category: models.CategoryPutter},
	}

	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&clubs).Error; err != nil {
		return fmt.Errorf("failed to seed club catalog: %w", err)
	}

	logrus.Infof("Seeded %d clubs", len(clubs))
	return nil
}
