package models

import (
	"time"

	"github.com/google/uuid"
)

// Gender buckets used by the default distance tables.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// SkillLevel buckets used by the default distance tables.
type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
	SkillProfessional SkillLevel = "professional"
)

// ClubCategory classifies clubs by family.
type ClubCategory string

const (
	CategoryDriver ClubCategory = "driver"
	CategoryWood   ClubCategory = "wood"
	CategoryHybrid ClubCategory = "hybrid"
	CategoryIron   ClubCategory = "iron"
	CategoryWedge  ClubCategory = "wedge"
	CategoryPutter ClubCategory = "putter"
)

// PlayerProfile holds the per-player attributes the engine needs.
type PlayerProfile struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	UserID     string     `gorm:"uniqueIndex;not null" json:"user_id"`
	Handicap   float64    `json:"handicap"`
	Gender     Gender     `gorm:"type:varchar(20);default:'male'" json:"gender"`
	SkillLevel SkillLevel `gorm:"type:varchar(20);default:'intermediate'" json:"skill_level"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	// Associations
	ClubStats []PlayerClubStat `gorm:"foreignKey:PlayerProfileID" json:"club_stats,omitempty"`
}

// TableName specifies the table name for GORM
func (PlayerProfile) TableName() string {
	return "player_profiles"
}

// GolfClub is a catalog entry, seeded once at migration time.
type GolfClub struct {
	ID       uint         `gorm:"primary_key" json:"id"`
	Name     string       `gorm:"uniqueIndex;not null" json:"name"`
	Category ClubCategory `gorm:"type:varchar(20);not null" json:"category"`
	Number   int          `json:"number"`
}

// TableName specifies the table name for GORM
func (GolfClub) TableName() string {
	return "golf_clubs"
}

// PlayerClubStat tracks a player's running performance with one club.
// Rows are created lazily from the default distance tables and updated
// after every evaluated stroke; they are never deleted.
type PlayerClubStat struct {
	ID                uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	PlayerProfileID   uuid.UUID      `gorm:"not null;uniqueIndex:idx_profile_club,priority:1" json:"player_profile_id"`
	PlayerProfile     *PlayerProfile `gorm:"foreignKey:PlayerProfileID" json:"player_profile,omitempty"`
	ClubID            uint           `gorm:"not null;uniqueIndex:idx_profile_club,priority:2" json:"club_id"`
	Club              *GolfClub      `gorm:"foreignKey:ClubID" json:"club,omitempty"`
	AverageDistance   float64        `json:"average_distance"`
	MinDistance       float64        `json:"min_distance"`
	MaxDistance       float64        `json:"max_distance"`
	AverageError      float64        `json:"average_error"`
	ErrorStdDeviation float64        `json:"error_std_deviation"`
	ShotsRecorded     int            `gorm:"default:0" json:"shots_recorded"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (PlayerClubStat) TableName() string {
	return "player_club_stats"
}
