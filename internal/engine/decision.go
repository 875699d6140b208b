package engine

import (
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kdigolf/caddie/internal/models"
)

// DecisionState names the phases of the trajectory search. States are
// explicit so the early-exit and role-swap rules stay auditable.
type DecisionState string

const (
	StateNoCandidate           DecisionState = "no_candidate"
	StateDirectAccepted        DecisionState = "direct_accepted"
	StateSearchingConservative DecisionState = "searching_conservative"
	StateTerminal              DecisionState = "terminal"
)

// TargetKind labels what a trajectory aims at.
type TargetKind string

const (
	TargetFlag           TargetKind = "flag"
	TargetOptimalShot    TargetKind = "optimal_shot"
	TargetStrategicPoint TargetKind = "strategic_point"
)

// optimalShotProximity is how close the player must stand to an
// OptimalShot's surveyed start for it to apply, in meters.
const optimalShotProximity = 10.0

// Trajectory is one scored recommendation.
type Trajectory struct {
	TargetKind     TargetKind   `json:"target_kind"`
	TargetID       *uuid.UUID   `json:"target_id,omitempty"`
	Target         models.Point `json:"target"`
	Description    string       `json:"description,omitempty"`
	DistanceMeters float64      `json:"distance_meters"`
	DistanceYards  float64      `json:"distance_yards"`
	DistanceToFlag float64      `json:"distance_to_flag"`
	RiskScore      float64      `json:"risk_score"`
	Club           *ClubChoice  `json:"club,omitempty"`
}

// Recommendation is the decision engine's output. Direct is nil when
// no candidate scored acceptably; Reason then tells the player what
// to do instead.
type Recommendation struct {
	State        DecisionState `json:"state"`
	Direct       *Trajectory   `json:"direct,omitempty"`
	Conservative *Trajectory   `json:"conservative,omitempty"`
	Reason       string        `json:"reason,omitempty"`
}

// DecisionEngine runs the candidate search over a hole.
type DecisionEngine struct {
	MaxAccessibleDefault float64
	Logger               *logrus.Logger
}

func NewDecisionEngine(logger *logrus.Logger) *DecisionEngine {
	return &DecisionEngine{
		MaxAccessibleDefault: DefaultMaxAccessibleDistance,
		Logger:               logger,
	}
}

type candidate struct {
	kind           TargetKind
	id             uuid.UUID
	target         models.Point
	description    string
	distanceToFlag float64
	checkReach     bool
}

// Decide scores the ordered candidate list for a hole and picks a
// direct trajectory plus, when the direct is not clearly safe, a
// conservative fallback. Candidates are: an OptimalShot starting
// within 10m of the player, then the flag (when reachable), then
// strategic points strictly closer to the flag than the player,
// nearest-to-hole first.
func (e *DecisionEngine) Decide(hole *models.Hole, start models.Point, stats []ClubStat) *Recommendation {
	maxAccessible := MaxAccessibleDistance(stats)
	if maxAccessible <= 0 {
		maxAccessible = e.MaxAccessibleDefault
	}
	terrain := TerrainAt(hole, start)
	distToFlag := Haversine(start, hole.Flag)

	candidates := e.buildCandidates(hole, start, distToFlag)

	state := StateNoCandidate
	var direct, conservative *Trajectory

	for _, cand := range candidates {
		dist := Haversine(start, cand.target)
		if cand.checkReach && dist > maxAccessible {
			continue
		}

		traj := e.scoreCandidate(hole, start, terrain, stats, cand, dist)
		if e.Logger != nil {
			e.Logger.WithFields(logrus.Fields{
				"target": cand.kind,
				"risk":   traj.RiskScore,
				"state":  state,
			}).Debug("Trajectory candidate scored")
		}

		switch state {
		case StateNoCandidate:
			if traj.RiskScore > RiskAcceptable {
				continue
			}
			direct = traj
			if traj.RiskScore <= RiskTerminal {
				state = StateTerminal
			} else {
				state = StateSearchingConservative
			}
		case StateSearchingConservative:
			if traj.RiskScore >= RiskTerminal {
				continue
			}
			if traj.RiskScore < direct.RiskScore {
				conservative = direct
				direct = traj
			} else {
				conservative = traj
			}
			state = StateTerminal
		}
		if state == StateTerminal {
			break
		}
	}

	if direct == nil {
		return &Recommendation{
			State:  StateNoCandidate,
			Reason: "no safe trajectory, play a short controlled shot toward the fairway",
		}
	}
	if state == StateSearchingConservative {
		state = StateDirectAccepted
	}
	return &Recommendation{State: state, Direct: direct, Conservative: conservative}
}

func (e *DecisionEngine) buildCandidates(hole *models.Hole, start models.Point, distToFlag float64) []candidate {
	var out []candidate

	// An optimal shot whose surveyed start matches where the player
	// stands goes first.
	for i := range hole.OptimalShots {
		os := &hole.OptimalShots[i]
		if os.Start.IsZero() {
			continue
		}
		if Haversine(start, os.Start) <= optimalShotProximity {
			out = append(out, candidate{
				kind:           TargetOptimalShot,
				id:             os.ID,
				target:         os.End,
				description:    os.Description,
				distanceToFlag: Haversine(os.End, hole.Flag),
			})
			break
		}
	}

	if !hole.Flag.IsZero() {
		out = append(out, candidate{
			kind:           TargetFlag,
			id:             hole.ID,
			target:         hole.Flag,
			distanceToFlag: 0,
			checkReach:     true,
		})
	}

	points := make([]models.StrategicPoint, 0, len(hole.StrategicPoints))
	for _, sp := range hole.StrategicPoints {
		if sp.DistanceToFlag < distToFlag {
			points = append(points, sp)
		}
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].DistanceToFlag < points[j].DistanceToFlag
	})
	for _, sp := range points {
		out = append(out, candidate{
			kind:           TargetStrategicPoint,
			id:             sp.ID,
			target:         sp.Position,
			description:    sp.Description,
			distanceToFlag: sp.DistanceToFlag,
			checkReach:     true,
		})
	}
	return out
}

func (e *DecisionEngine) scoreCandidate(hole *models.Hole, start models.Point, terrain models.TerrainType, stats []ClubStat, cand candidate, dist float64) *Trajectory {
	choice := RecommendClub(stats, dist)
	var club *ClubStat
	if choice != nil {
		club = &choice.Club
	}

	risk := ScoreRisk(RiskInput{
		Start:        start,
		Target:       cand.target,
		Club:         club,
		Obstacles:    ObstaclesOnSegment(hole, start, cand.target),
		Terrain:      terrain,
		TargetIsFlag: cand.kind == TargetFlag,
	})

	id := cand.id
	return &Trajectory{
		TargetKind:     cand.kind,
		TargetID:       &id,
		Target:         cand.target,
		Description:    cand.description,
		DistanceMeters: dist,
		DistanceYards:  dist * MetersToYards,
		DistanceToFlag: cand.distanceToFlag,
		RiskScore:      risk,
		Club:           choice,
	}
}
