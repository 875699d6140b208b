package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// TerrainType classifies ground a ball can come to rest on. Obstacle
// zones and terrain detection share the same vocabulary.
type TerrainType string

const (
	TerrainFairway     TerrainType = "fairway"
	TerrainGreen       TerrainType = "green"
	TerrainTee         TerrainType = "tee"
	TerrainRough       TerrainType = "rough"
	TerrainHeavyRough  TerrainType = "heavy_rough"
	TerrainBunker      TerrainType = "bunker"
	TerrainWater       TerrainType = "water"
	TerrainTrees       TerrainType = "trees"
	TerrainOutOfBounds TerrainType = "out_of_bounds"
	TerrainUnknown     TerrainType = "unknown"
)

// Point is a WGS84 coordinate stored as jsonb.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Value implements driver.Valuer for database storage
func (p Point) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements sql.Scanner for database retrieval
func (p *Point) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return errors.New("type assertion to []byte failed")
		}
	}
	return json.Unmarshal(bytes, p)
}

// IsZero reports whether the point carries no coordinate. Courses use
// (0,0) as "not surveyed", which is open ocean for every real course.
func (p Point) IsZero() bool {
	return p.Latitude == 0 && p.Longitude == 0
}

// Polygon is an ordered ring of vertices stored as jsonb. The ring is
// implicitly closed; fewer than three vertices means no area.
type Polygon []Point

// Value implements driver.Valuer for database storage
func (p Polygon) Value() (driver.Value, error) {
	if p == nil {
		p = Polygon{}
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner for database retrieval
func (p *Polygon) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return errors.New("type assertion to []byte failed")
		}
	}
	return json.Unmarshal(bytes, p)
}

// Course represents a golf course with its surveyed holes.
type Course struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Associations
	Holes []Hole `gorm:"foreignKey:CourseID" json:"holes,omitempty"`
}

// TableName specifies the table name for GORM
func (Course) TableName() string {
	return "courses"
}

// Hole represents one surveyed hole: flag, playable zones, hazards and
// the pre-computed shot hints used by the recommendation engine.
type Hole struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CourseID       uuid.UUID `gorm:"not null;uniqueIndex:idx_course_hole,priority:1" json:"course_id"`
	Course         *Course   `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	HoleNumber     int       `gorm:"not null;uniqueIndex:idx_course_hole,priority:2" json:"hole_number"`
	Par            int       `gorm:"not null" json:"par"`
	LengthMeters   float64   `json:"length_meters"`
	Flag           Point     `gorm:"type:jsonb" json:"flag"`
	TeePolygon     Polygon   `gorm:"type:jsonb" json:"tee_polygon"`
	FairwayPolygon Polygon   `gorm:"type:jsonb" json:"fairway_polygon"`
	GreenPolygon   Polygon   `gorm:"type:jsonb" json:"green_polygon"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Associations
	Obstacles       []Obstacle       `gorm:"foreignKey:HoleID" json:"obstacles,omitempty"`
	StrategicPoints []StrategicPoint `gorm:"foreignKey:HoleID" json:"strategic_points,omitempty"`
	OptimalShots    []OptimalShot    `gorm:"foreignKey:HoleID" json:"optimal_shots,omitempty"`
}

// TableName specifies the table name for GORM
func (Hole) TableName() string {
	return "holes"
}

// Obstacle represents a hazard or zone on a hole.
type Obstacle struct {
	ID     uuid.UUID   `gorm:"type:uuid;primary_key" json:"id"`
	HoleID uuid.UUID   `gorm:"not null;index" json:"hole_id"`
	Hole   *Hole       `gorm:"foreignKey:HoleID" json:"hole,omitempty"`
	Type   TerrainType `gorm:"type:varchar(50);not null;index" json:"type"`
	Name   string      `json:"name"`
	Shape  Polygon     `gorm:"type:jsonb" json:"shape"`
}

// TableName specifies the table name for GORM
func (Obstacle) TableName() string {
	return "obstacles"
}

// Centroid returns the average of the obstacle's vertices, or the zero
// point when the shape is empty.
func (o *Obstacle) Centroid() Point {
	if len(o.Shape) == 0 {
		return Point{}
	}
	var lat, lon float64
	for _, v := range o.Shape {
		lat += v.Latitude
		lon += v.Longitude
	}
	n := float64(len(o.Shape))
	return Point{Latitude: lat / n, Longitude: lon / n}
}

// StrategicPoint is a surveyed layup target for a hole.
type StrategicPoint struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	HoleID         uuid.UUID `gorm:"not null;index" json:"hole_id"`
	Hole           *Hole     `gorm:"foreignKey:HoleID" json:"hole,omitempty"`
	Position       Point     `gorm:"type:jsonb" json:"position"`
	DistanceToFlag float64   `json:"distance_to_flag"`
	OrderIndex     int       `gorm:"default:0" json:"order_index"`
	Description    string    `json:"description"`
}

// TableName specifies the table name for GORM
func (StrategicPoint) TableName() string {
	return "strategic_points"
}

// OptimalShot is a surveyed reference trajectory for a hole.
type OptimalShot struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	HoleID      uuid.UUID `gorm:"not null;index" json:"hole_id"`
	Hole        *Hole     `gorm:"foreignKey:HoleID" json:"hole,omitempty"`
	Start       Point     `gorm:"type:jsonb" json:"start"`
	End         Point     `gorm:"type:jsonb" json:"end"`
	Description string    `json:"description"`
}

// TableName specifies the table name for GORM
func (OptimalShot) TableName() string {
	return "optimal_shots"
}
