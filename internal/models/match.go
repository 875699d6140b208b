package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MatchStatus represents the lifecycle state of a match.
type MatchStatus string

const (
	MatchInProgress MatchStatus = "in_progress"
	MatchCompleted  MatchStatus = "completed"
	MatchCancelled  MatchStatus = "cancelled"
)

// TrajectoryType labels which recommendation a stroke followed.
type TrajectoryType string

const (
	TrajectoryDirect       TrajectoryType = "direct"
	TrajectoryConservative TrajectoryType = "conservative"
)

// Match represents a round being played on a course.
type Match struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	CourseID  uuid.UUID      `gorm:"not null;index" json:"course_id"`
	Course    *Course        `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	Name      string         `json:"name"`
	Status    MatchStatus    `gorm:"type:varchar(20);default:'in_progress';index" json:"status"`
	Settings  datatypes.JSON `gorm:"type:jsonb" json:"settings,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`

	// Associations
	Players []MatchPlayer `gorm:"foreignKey:MatchID" json:"players,omitempty"`
	Scores  []HoleScore   `gorm:"foreignKey:MatchID" json:"scores,omitempty"`
}

// TableName specifies the table name for GORM
func (Match) TableName() string {
	return "matches"
}

// MatchPlayer links a user to a match and tracks where they are.
type MatchPlayer struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	MatchID      uuid.UUID `gorm:"not null;uniqueIndex:idx_match_user,priority:1" json:"match_id"`
	Match        *Match    `gorm:"foreignKey:MatchID" json:"match,omitempty"`
	UserID       string    `gorm:"not null;uniqueIndex:idx_match_user,priority:2" json:"user_id"`
	StartingHole int       `gorm:"default:1" json:"starting_hole"`
	CurrentHole  int       `gorm:"default:1" json:"current_hole"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (MatchPlayer) TableName() string {
	return "match_players"
}

// HoleScore is a player's final stroke count on one hole.
type HoleScore struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	MatchID   uuid.UUID `gorm:"not null;uniqueIndex:idx_match_user_hole,priority:1" json:"match_id"`
	UserID    string    `gorm:"not null;uniqueIndex:idx_match_user_hole,priority:2" json:"user_id"`
	HoleID    uuid.UUID `gorm:"not null;uniqueIndex:idx_match_user_hole,priority:3" json:"hole_id"`
	Hole      *Hole     `gorm:"foreignKey:HoleID" json:"hole,omitempty"`
	Strokes   int       `gorm:"not null" json:"strokes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (HoleScore) TableName() string {
	return "hole_scores"
}

// Stroke records one shot: the recommendation echoed at creation time
// and, once the next GPS fix arrives, the measured outcome. A stroke
// stays pending (Evaluated=false) until exactly one evaluation claims
// it.
type Stroke struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	MatchID          uuid.UUID       `gorm:"not null;index:idx_stroke_lookup,priority:1" json:"match_id"`
	UserID           string          `gorm:"not null;index:idx_stroke_lookup,priority:2" json:"user_id"`
	HoleID           uuid.UUID       `gorm:"not null;index:idx_stroke_lookup,priority:3" json:"hole_id"`
	StrokeNumber     int             `gorm:"not null" json:"stroke_number"`
	Start            Point           `gorm:"type:jsonb" json:"start"`
	ClubUsedID       *uint           `json:"club_used_id,omitempty"`
	ProposedClubID   *uint           `json:"proposed_club_id,omitempty"`
	ProposedDistance *float64        `json:"proposed_distance,omitempty"`
	TrajectoryType   *TrajectoryType `gorm:"type:varchar(20)" json:"trajectory_type,omitempty"`
	Evaluated        bool            `gorm:"default:false;index" json:"evaluated"`
	End              *Point          `gorm:"type:jsonb" json:"end,omitempty"`
	ActualDistance   *float64        `json:"actual_distance,omitempty"`
	QualityScore     *float64        `json:"quality_score,omitempty"`
	DistanceError    *float64        `json:"distance_error,omitempty"`
	DirectionError   *float64        `json:"direction_error,omitempty"`
	Annotations      datatypes.JSON  `gorm:"type:jsonb" json:"annotations,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Stroke) TableName() string {
	return "strokes"
}
