package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kdigolf/caddie/internal/engine"
	"github.com/kdigolf/caddie/internal/models"
)

var (
	// ErrMatchNotInProgress is returned for voice commands against a
	// finished or abandoned match.
	ErrMatchNotInProgress = errors.New("match not in progress")

	// ErrWrongCourse is returned when the command names a course the
	// match does not belong to.
	ErrWrongCourse = errors.New("match belongs to a different course")
)

// VoiceCommand is one natural-language request from a player mid-round.
type VoiceCommand struct {
	MatchID  uuid.UUID    `json:"match_id" binding:"required"`
	CourseID uuid.UUID    `json:"course_id" binding:"required"`
	UserID   string       `json:"-"`
	Position models.Point `json:"position" binding:"required"`
	Query    string       `json:"query" binding:"required"`
}

// VoiceResponse is the spoken-back answer plus structured data for
// the client.
type VoiceResponse struct {
	Response   string                 `json:"response"`
	Intent     VoiceIntent            `json:"intent"`
	Confidence float64                `json:"confidence"`
	Data       map[string]interface{} `json:"data,omitempty"`
}

// VoiceService routes natural-language commands to the rest of the
// system: classify the intent, run the matching operation, phrase the
// result back.
type VoiceService struct {
	courses   *CourseService
	matches   *MatchService
	players   *PlayerService
	recommend *RecommendService
	weather   *WeatherService
	resolver  *engine.PositionResolver
	logger    *logrus.Logger
}

func NewVoiceService(courses *CourseService, matches *MatchService, players *PlayerService, recommend *RecommendService, weather *WeatherService, logger *logrus.Logger) *VoiceService {
	return &VoiceService{
		courses:   courses,
		matches:   matches,
		players:   players,
		recommend: recommend,
		weather:   weather,
		resolver:  engine.NewPositionResolver(logger),
		logger:    logger,
	}
}

// ProcessCommand validates the command context and dispatches on the
// classified intent.
func (s *VoiceService) ProcessCommand(ctx context.Context, cmd VoiceCommand) (*VoiceResponse, error) {
	if cmd.Position.Latitude < -90 || cmd.Position.Latitude > 90 ||
		cmd.Position.Longitude < -180 || cmd.Position.Longitude > 180 {
		return nil, fmt.Errorf("invalid coordinates %.4f,%.4f", cmd.Position.Latitude, cmd.Position.Longitude)
	}
	if strings.TrimSpace(cmd.Query) == "" {
		return nil, errors.New("query must not be empty")
	}

	match, err := s.matches.GetMatch(ctx, cmd.MatchID)
	if err != nil {
		return nil, err
	}
	if match.Status != models.MatchInProgress {
		return nil, ErrMatchNotInProgress
	}
	if match.CourseID != cmd.CourseID {
		return nil, ErrWrongCourse
	}
	if _, err := s.matches.GetMatchPlayer(ctx, cmd.MatchID, cmd.UserID); err != nil {
		return nil, err
	}

	// A reply listing several hole results is a confirmation answer,
	// whatever the keywords say.
	if confirmations := holeConfirmations(cmd.Query); len(confirmations) >= 2 {
		return s.handleHoleConfirmation(ctx, cmd, confirmations)
	}

	intent, confidence := classifyIntent(cmd.Query)

	// Asking about a hole ahead of the current one means earlier holes
	// may be unconfirmed; ask for those results first.
	if mentioned := mentionedHoleNumber(cmd.Query); mentioned > 0 {
		if resp, err := s.checkHoleConsistency(ctx, cmd, mentioned); err != nil {
			return nil, err
		} else if resp != nil {
			return resp, nil
		}
	}

	var resp *VoiceResponse
	switch intent {
	case IntentRegisterStroke:
		resp, err = s.handleRegisterStroke(ctx, cmd)
	case IntentCheckDistance:
		resp, err = s.handleCheckDistance(ctx, cmd)
	case IntentCheckObstacles:
		resp, err = s.handleCheckObstacles(ctx, cmd)
	case IntentCheckTerrain:
		resp, err = s.handleCheckTerrain(ctx, cmd)
	case IntentCompleteHole:
		resp, err = s.handleCompleteHole(ctx, cmd)
	case IntentCheckRanking:
		resp, err = s.handleCheckRanking(ctx, cmd)
	case IntentCheckHoleStats:
		resp, err = s.handleCheckHoleStats(ctx, cmd)
	case IntentCheckHoleInfo:
		resp, err = s.handleCheckHoleInfo(ctx, cmd)
	case IntentCheckWeather:
		resp, err = s.handleCheckWeather(ctx, cmd)
	case IntentRecordHoleScore:
		resp, err = s.handleRecordHoleScore(ctx, cmd)
	case IntentUpdateHoleScore:
		resp, err = s.handleRecordHoleScore(ctx, cmd)
	default:
		resp, err = s.handleRecommendShot(ctx, cmd)
	}
	if err != nil {
		// Keep the conversation going: phrase the failure instead of
		// dropping the call.
		return &VoiceResponse{
			Response:   fmt.Sprintf("Lo siento, no pude procesar tu petición: %v", err),
			Intent:     intent,
			Confidence: confidence,
		}, nil
	}

	resp.Intent = intent
	resp.Confidence = confidence
	return resp, nil
}

// currentHole resolves the hole the player is on, preferring the
// persisted match state and falling back to GPS identification.
func (s *VoiceService) currentHole(ctx context.Context, cmd VoiceCommand) (*models.Hole, error) {
	player, err := s.matches.GetMatchPlayer(ctx, cmd.MatchID, cmd.UserID)
	if err == nil && player.CurrentHole > 0 {
		hole, err := s.courses.GetHoleByNumber(ctx, cmd.CourseID, player.CurrentHole)
		if err == nil {
			return hole, nil
		}
	}

	course, err := s.courses.GetCourse(ctx, cmd.CourseID)
	if err != nil {
		return nil, err
	}
	resolved, err := s.resolver.Resolve(course.Holes, cmd.Position, engine.ResolveOptions{})
	if err != nil {
		return nil, err
	}
	if resolved.Hole == nil {
		return nil, ErrHoleNotFound
	}
	return resolved.Hole, nil
}

// checkHoleConsistency returns a confirmation request when the player
// jumps ahead of unrecorded holes, nil when everything up to the
// mentioned hole is settled.
func (s *VoiceService) checkHoleConsistency(ctx context.Context, cmd VoiceCommand, mentioned int) (*VoiceResponse, error) {
	player, err := s.matches.GetMatchPlayer(ctx, cmd.MatchID, cmd.UserID)
	if err != nil {
		return nil, err
	}
	if mentioned <= player.CurrentHole {
		return nil, nil
	}

	missing, err := s.missingHoles(ctx, cmd, player.CurrentHole, mentioned)
	if err != nil {
		return nil, err
	}
	if len(missing) == 0 {
		return nil, nil
	}

	var response string
	if len(missing) == 1 {
		response = fmt.Sprintf("Antes de continuar, necesito que confirmes el resultado del hoyo %d. ¿Cuántos golpes realizaste en el hoyo %d?", missing[0], missing[0])
	} else {
		response = fmt.Sprintf("Antes de continuar, necesito que confirmes el resultado de los hoyos %s. ¿Cuántos golpes realizaste en cada uno de estos hoyos?", joinHoles(missing))
	}
	return &VoiceResponse{
		Response:   response,
		Intent:     IntentHoleConfirmation,
		Confidence: 1.0,
		Data: map[string]interface{}{
			"missing_holes": missing,
			"current_hole":  player.CurrentHole,
			"target_hole":   mentioned,
		},
	}, nil
}

// missingHoles lists hole numbers in [from, to) without a recorded
// score.
func (s *VoiceService) missingHoles(ctx context.Context, cmd VoiceCommand, from, to int) ([]int, error) {
	scores, err := s.matches.HoleScores(ctx, cmd.MatchID, cmd.UserID)
	if err != nil {
		return nil, err
	}
	holes, err := s.courses.GetHoles(ctx, cmd.CourseID)
	if err != nil {
		return nil, err
	}

	scored := make(map[uuid.UUID]bool, len(scores))
	for _, sc := range scores {
		scored[sc.HoleID] = true
	}
	numberByID := make(map[int]uuid.UUID, len(holes))
	for _, h := range holes {
		numberByID[h.HoleNumber] = h.ID
	}

	var missing []int
	for n := from; n < to; n++ {
		id, known := numberByID[n]
		if !known || !scored[id] {
			missing = append(missing, n)
		}
	}
	return missing, nil
}

func (s *VoiceService) handleRecommendShot(ctx context.Context, cmd VoiceCommand) (*VoiceResponse, error) {
	matchID := cmd.MatchID
	player, err := s.matches.GetMatchPlayer(ctx, cmd.MatchID, cmd.UserID)
	if err != nil {
		return nil, err
	}

	result, err := s.recommend.Recommend(ctx, RecommendRequest{
		CourseID:           cmd.CourseID,
		MatchID:            &matchID,
		UserID:             cmd.UserID,
		Position:           cmd.Position,
		ExpectedHoleNumber: player.CurrentHole,
	})
	if err != nil {
		return nil, err
	}
	if result.Position == nil || !result.Position.Valid || result.Recommendation == nil {
		return &VoiceResponse{
			Response: "No pude identificar en qué hoyo estás. Por favor, asegúrate de estar en el campo de golf.",
		}, nil
	}

	return &VoiceResponse{
		Response: phraseRecommendation(result.Recommendation),
		Data: map[string]interface{}{
			"recommendation": result.Recommendation,
			"hole_number":    result.Position.Hole.HoleNumber,
			"weather":        result.Weather,
		},
	}, nil
}

// phraseRecommendation turns the engine output into a spoken answer.
func phraseRecommendation(rec *engine.Recommendation) string {
	chosen := rec.Direct
	if chosen == nil {
		chosen = rec.Conservative
	}
	if chosen == nil {
		if rec.Reason != "" {
			return "No pude calcular una trayectoria óptima para tu posición actual. Te recomiendo jugar conservador y buscar la calle."
		}
		return "No tengo una recomendación para tu posición actual."
	}

	var parts []string
	if chosen.TargetKind == engine.TargetFlag {
		parts = append(parts, fmt.Sprintf("Estás a %.0f metros del hoyo", chosen.DistanceMeters))
	} else {
		parts = append(parts, fmt.Sprintf("Estás a %.0f metros del objetivo", chosen.DistanceMeters))
	}

	if chosen.Club != nil {
		swing := ""
		switch chosen.Club.Swing {
		case engine.SwingFull:
			swing = "con swing completo"
		case engine.SwingThreeQuarters:
			swing = "con swing de tres cuartos"
		case engine.SwingHalf:
			swing = "con swing de medio"
		}
		if chosen.TargetKind == engine.TargetFlag {
			parts = append(parts, fmt.Sprintf("te recomiendo utilizar %s %s intentando alcanzar el green", chosen.Club.Club.Name, swing))
		} else {
			desc := chosen.Description
			if desc == "" {
				desc = "el punto estratégico"
			}
			parts = append(parts, fmt.Sprintf("te recomiendo utilizar %s %s hacia %s", chosen.Club.Club.Name, swing, desc))
		}
	}

	if chosen.RiskScore > 50 {
		parts = append(parts, "Esta es una jugada de riesgo, considera una opción más conservadora")
	} else if chosen.RiskScore > 30 {
		parts = append(parts, "Esta jugada tiene un riesgo moderado")
	}

	return strings.Join(parts, ". ") + "."
}

func (s *VoiceService) handleRegisterStroke(ctx context.Context, cmd VoiceCommand) (*VoiceResponse, error) {
	hole, err := s.currentHole(ctx, cmd)
	if err != nil {
		return &VoiceResponse{Response: "No pude identificar en qué hoyo estás. No puedo registrar tu golpe."}, nil
	}

	// The fix is both the end of the previous stroke and the start of
	// the new one.
	stats, err := s.players.GetClubStats(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}
	evaluated, err := s.matches.EvaluatePendingStroke(ctx, cmd.MatchID, cmd.UserID, hole, cmd.Position, stats)
	if err != nil && !errors.Is(err, ErrNoPendingStroke) &&
		!errors.Is(err, ErrStrokeAlreadyClaimed) && !errors.Is(err, engine.ErrStrokeRejected) {
		return nil, err
	}

	count, err := s.matches.CountStrokes(ctx, cmd.MatchID, cmd.UserID, hole.ID)
	if err != nil {
		return nil, err
	}
	stroke := &models.Stroke{
		MatchID:      cmd.MatchID,
		UserID:       cmd.UserID,
		HoleID:       hole.ID,
		StrokeNumber: count + 1,
		Start:        cmd.Position,
	}
	if err := s.matches.CreateStroke(ctx, stroke); err != nil {
		return nil, err
	}

	data := map[string]interface{}{
		"hole_number": hole.HoleNumber,
		"strokes":     stroke.StrokeNumber,
	}
	if evaluated != nil {
		data["previous_stroke"] = evaluated
	}
	return &VoiceResponse{
		Response: fmt.Sprintf("Golpe registrado. Llevas %d %s en el hoyo %d.",
			stroke.StrokeNumber, plural(stroke.StrokeNumber, "golpe", "golpes"), hole.HoleNumber),
		Data: data,
	}, nil
}

func (s *VoiceService) handleCheckDistance(ctx context.Context, cmd VoiceCommand) (*VoiceResponse, error) {
	hole, err := s.currentHole(ctx, cmd)
	if err != nil {
		return &VoiceResponse{Response: "No pude identificar en qué hoyo estás."}, nil
	}
	if hole.Flag.IsZero() {
		return &VoiceResponse{
			Response: fmt.Sprintf("El hoyo %d no tiene una bandera definida.", hole.HoleNumber),
			Data:     map[string]interface{}{"hole_number": hole.HoleNumber},
		}, nil
	}

	meters := s.courses.DistanceToFlag(hole, cmd.Position)
	yards := meters * engine.MetersToYards
	return &VoiceResponse{
		Response: fmt.Sprintf("Estás a %.0f metros (%.0f yardas) de la bandera del hoyo %d.", meters, yards, hole.HoleNumber),
		Data: map[string]interface{}{
			"distance_meters": meters,
			"distance_yards":  yards,
			"hole_number":     hole.HoleNumber,
		},
	}, nil
}

func (s *VoiceService) handleCheckObstacles(ctx context.Context, cmd VoiceCommand) (*VoiceResponse, error) {
	hole, err := s.currentHole(ctx, cmd)
	if err != nil {
		return &VoiceResponse{Response: "No pude identificar en qué hoyo estás."}, nil
	}

	obstacles := s.courses.ObstaclesBetween(hole, cmd.Position)
	if len(obstacles) == 0 {
		return &VoiceResponse{
			Response: fmt.Sprintf("No hay obstáculos entre tu posición y la bandera del hoyo %d.", hole.HoleNumber),
			Data:     map[string]interface{}{"obstacle_count": 0, "hole_number": hole.HoleNumber},
		}, nil
	}

	var names []string
	for i, obs := range obstacles {
		if i == 3 {
			break
		}
		if obs.Name != "" {
			names = append(names, obs.Name)
		} else {
			names = append(names, string(obs.Type))
		}
	}

	var response string
	switch {
	case len(obstacles) == 1:
		response = fmt.Sprintf("Hay 1 obstáculo en el camino: %s.", names[0])
	case len(obstacles) <= 3:
		response = fmt.Sprintf("Hay %d obstáculos en el camino: %s.", len(obstacles), strings.Join(names, ", "))
	default:
		response = fmt.Sprintf("Hay %d obstáculos en el camino, incluyendo: %s y otros.", len(obstacles), strings.Join(names, ", "))
	}

	limit := len(obstacles)
	if limit > 5 {
		limit = 5
	}
	return &VoiceResponse{
		Response: response,
		Data: map[string]interface{}{
			"obstacle_count": len(obstacles),
			"obstacles":      obstacles[:limit],
			"hole_number":    hole.HoleNumber,
		},
	}, nil
}

var spokenTerrain = map[models.TerrainType]string{
	models.TerrainBunker:      "un bunker",
	models.TerrainWater:       "agua",
	models.TerrainTrees:       "entre árboles",
	models.TerrainHeavyRough:  "rough pesado",
	models.TerrainRough:       "el rough",
	models.TerrainOutOfBounds: "fuera de límites",
	models.TerrainGreen:       "el green",
	models.TerrainTee:         "el tee de salida",
	models.TerrainFairway:     "la calle",
}

func (s *VoiceService) handleCheckTerrain(ctx context.Context, cmd VoiceCommand) (*VoiceResponse, error) {
	hole, err := s.currentHole(ctx, cmd)
	if err != nil {
		return &VoiceResponse{Response: "No pude identificar en qué hoyo estás."}, nil
	}

	terrain := s.courses.TerrainTypeAt(hole, cmd.Position)
	name, ok := spokenTerrain[terrain]
	if !ok {
		name = string(terrain)
	}
	return &VoiceResponse{
		Response: fmt.Sprintf("Estás en %s del hoyo %d.", name, hole.HoleNumber),
		Data: map[string]interface{}{
			"terrain_type": terrain,
			"hole_number":  hole.HoleNumber,
		},
	}, nil
}

func (s *VoiceService) handleCompleteHole(ctx context.Context, cmd VoiceCommand) (*VoiceResponse, error) {
	hole, err := s.currentHole(ctx, cmd)
	if err != nil {
		return &VoiceResponse{Response: "No pude identificar en qué hoyo estás."}, nil
	}

	score, err := s.matches.CompleteHole(ctx, cmd.MatchID, cmd.UserID, hole)
	if err != nil {
		return nil, err
	}

	board, err := s.matches.Leaderboard(ctx, cmd.MatchID)
	if err != nil {
		return nil, err
	}
	position, total := standing(board, cmd.UserID)

	response := fmt.Sprintf("Hoyo %d completado con %d %s. Total en el partido: %d golpes.",
		hole.HoleNumber, score.Strokes, plural(score.Strokes, "golpe", "golpes"), total)
	if position > 0 {
		response += fmt.Sprintf(" Tu posición actual: %d.", position)
	}
	return &VoiceResponse{
		Response: response,
		Data: map[string]interface{}{
			"hole_number":   hole.HoleNumber,
			"hole_strokes":  score.Strokes,
			"total_strokes": total,
			"position":      position,
		},
	}, nil
}

func (s *VoiceService) handleCheckRanking(ctx context.Context, cmd VoiceCommand) (*VoiceResponse, error) {
	board, err := s.matches.Leaderboard(ctx, cmd.MatchID)
	if err != nil {
		return nil, err
	}
	if len(board) == 0 {
		return &VoiceResponse{Response: "No hay jugadores en el partido."}, nil
	}

	position, strokes := standing(board, cmd.UserID)
	if position == 0 {
		return &VoiceResponse{Response: "No encontré tu posición en el partido."}, nil
	}

	response := fmt.Sprintf("Vas en la posición %d de %d con %d golpes. ", position, len(board), strokes)
	switch {
	case position == 1:
		response += "¡Vas ganando!"
	case position == len(board):
		response += "Todavía puedes remontar."
	default:
		diff := strokes - board[0].TotalStrokes
		if diff > 0 {
			response += fmt.Sprintf("Vas %d %s por detrás del líder.", diff, plural(diff, "golpe", "golpes"))
		} else {
			response += "Estás empatado con el líder."
		}
	}

	top := board
	if len(top) > 5 {
		top = top[:5]
	}
	return &VoiceResponse{
		Response: response,
		Data: map[string]interface{}{
			"position":      position,
			"total_strokes": strokes,
			"total_players": len(board),
			"leaderboard":   top,
		},
	}, nil
}

func (s *VoiceService) handleCheckHoleStats(ctx context.Context, cmd VoiceCommand) (*VoiceResponse, error) {
	hole, err := s.currentHole(ctx, cmd)
	if err != nil {
		return &VoiceResponse{Response: "No pude identificar en qué hoyo estás."}, nil
	}

	strokes, err := s.matches.CountStrokes(ctx, cmd.MatchID, cmd.UserID, hole.ID)
	if err != nil {
		return nil, err
	}

	var response string
	if strokes == 0 {
		response = fmt.Sprintf("En el hoyo %d (par %d) aún no has registrado golpes.", hole.HoleNumber, hole.Par)
	} else {
		response = fmt.Sprintf("En el hoyo %d (par %d) llevas %d %s.", hole.HoleNumber, hole.Par, strokes, plural(strokes, "golpe", "golpes"))
		response += parComparison(strokes, hole.Par)
	}
	return &VoiceResponse{
		Response: response,
		Data: map[string]interface{}{
			"hole_number": hole.HoleNumber,
			"par":         hole.Par,
			"strokes":     strokes,
		},
	}, nil
}

func (s *VoiceService) handleCheckHoleInfo(ctx context.Context, cmd VoiceCommand) (*VoiceResponse, error) {
	hole, err := s.currentHole(ctx, cmd)
	if err != nil {
		return &VoiceResponse{Response: "No pude identificar en qué hoyo estás."}, nil
	}
	course, err := s.courses.GetCourse(ctx, cmd.CourseID)
	if err != nil {
		return nil, err
	}

	return &VoiceResponse{
		Response: fmt.Sprintf("Estás en el hoyo %d de %s. Par %d, longitud %.0f metros.",
			hole.HoleNumber, course.Name, hole.Par, hole.LengthMeters),
		Data: map[string]interface{}{"hole": hole},
	}, nil
}

func (s *VoiceService) handleCheckWeather(ctx context.Context, cmd VoiceCommand) (*VoiceResponse, error) {
	if s.weather == nil {
		return &VoiceResponse{Response: "No tengo información del clima disponible ahora mismo."}, nil
	}
	advisory := s.weather.Advisory(ctx, cmd.Position)
	if advisory == nil {
		return &VoiceResponse{Response: "No pude obtener información del clima."}, nil
	}

	response := fmt.Sprintf("Hace %.0f grados con viento de %.0f kilómetros por hora.",
		advisory.Conditions.TemperatureC, advisory.Conditions.WindSpeedKmh)
	if advisory.Note != "" {
		response += " " + advisory.Note + "."
	}
	return &VoiceResponse{
		Response: response,
		Data:     map[string]interface{}{"weather": advisory},
	}, nil
}

func (s *VoiceService) handleRecordHoleScore(ctx context.Context, cmd VoiceCommand) (*VoiceResponse, error) {
	holeNumber, strokes := holeAndStrokes(cmd.Query)

	if holeNumber == 0 {
		player, err := s.matches.GetMatchPlayer(ctx, cmd.MatchID, cmd.UserID)
		if err != nil {
			return nil, err
		}
		holeNumber = player.CurrentHole
	}
	if strokes <= 0 {
		return &VoiceResponse{
			Response: fmt.Sprintf("No pude determinar cuántos golpes quieres registrar para el hoyo %d. Por favor, especifica el número de golpes.", holeNumber),
			Data:     map[string]interface{}{"hole_number": holeNumber},
		}, nil
	}

	hole, err := s.courses.GetHoleByNumber(ctx, cmd.CourseID, holeNumber)
	if err != nil {
		return nil, err
	}
	if _, err := s.matches.SetHoleScore(ctx, cmd.MatchID, cmd.UserID, hole.ID, strokes); err != nil {
		return nil, err
	}

	response := fmt.Sprintf("Hoyo %d registrado con %d %s.", holeNumber, strokes, plural(strokes, "golpe", "golpes"))
	response += parComparison(strokes, hole.Par)
	return &VoiceResponse{
		Response: response,
		Data: map[string]interface{}{
			"hole_number": holeNumber,
			"strokes":     strokes,
			"par":         hole.Par,
		},
	}, nil
}

func (s *VoiceService) handleHoleConfirmation(ctx context.Context, cmd VoiceCommand, confirmations []HoleConfirmation) (*VoiceResponse, error) {
	var registered []HoleConfirmation
	var failures []string

	for _, conf := range confirmations {
		hole, err := s.courses.GetHoleByNumber(ctx, cmd.CourseID, conf.HoleNumber)
		if err != nil {
			failures = append(failures, fmt.Sprintf("hoyo %d no existe", conf.HoleNumber))
			continue
		}
		if _, err := s.matches.SetHoleScore(ctx, cmd.MatchID, cmd.UserID, hole.ID, conf.Strokes); err != nil {
			failures = append(failures, fmt.Sprintf("error registrando hoyo %d", conf.HoleNumber))
			continue
		}
		registered = append(registered, conf)
	}

	// Advance past the confirmed holes.
	if len(registered) > 0 {
		maxHole := 0
		for _, r := range registered {
			if r.HoleNumber > maxHole {
				maxHole = r.HoleNumber
			}
		}
		if player, err := s.matches.GetMatchPlayer(ctx, cmd.MatchID, cmd.UserID); err == nil && maxHole >= player.CurrentHole {
			player.CurrentHole = maxHole + 1
			if err := s.matches.db.WithContext(ctx).Save(player).Error; err != nil && s.logger != nil {
				s.logger.WithError(err).Warn("Failed to advance current hole after confirmation")
			}
		}
	}

	var response string
	switch {
	case len(registered) == 0:
		response = "No pude registrar ningún hoyo. " + strings.Join(failures, ", ")
	case len(failures) > 0:
		response = fmt.Sprintf("Registré %d hoyos, pero hubo errores: %s", len(registered), strings.Join(failures, ", "))
	case len(registered) == 1:
		r := registered[0]
		response = fmt.Sprintf("Perfecto. He registrado el hoyo %d con %d golpes. Ahora puedes continuar con tu petición.", r.HoleNumber, r.Strokes)
	default:
		var parts []string
		for _, r := range registered {
			parts = append(parts, fmt.Sprintf("hoyo %d con %d golpes", r.HoleNumber, r.Strokes))
		}
		response = fmt.Sprintf("Perfecto. He registrado: %s. Ahora puedes continuar con tu petición.", strings.Join(parts, ", "))
	}

	return &VoiceResponse{
		Response:   response,
		Intent:     IntentHoleConfirmation,
		Confidence: 1.0,
		Data: map[string]interface{}{
			"registered":     registered,
			"errors":         failures,
			"all_registered": len(failures) == 0,
		},
	}, nil
}

func standing(board []LeaderboardEntry, userID string) (position, strokes int) {
	for i, entry := range board {
		if entry.UserID == userID {
			return i + 1, entry.TotalStrokes
		}
	}
	return 0, 0
}

func parComparison(strokes, par int) string {
	if par <= 0 {
		return ""
	}
	switch {
	case strokes < par:
		return fmt.Sprintf(" Vas %d por debajo del par. ¡Excelente!", par-strokes)
	case strokes == par:
		return " Estás al par."
	default:
		return fmt.Sprintf(" Vas %d por encima del par.", strokes-par)
	}
}

func plural(n int, singular, pluralForm string) string {
	if n == 1 {
		return singular
	}
	return pluralForm
}

func joinHoles(holes []int) string {
	sort.Ints(holes)
	if len(holes) == 1 {
		return fmt.Sprintf("%d", holes[0])
	}
	var parts []string
	for _, h := range holes[:len(holes)-1] {
		parts = append(parts, fmt.Sprintf("%d", h))
	}
	return strings.Join(parts, ", ") + fmt.Sprintf(" y %d", holes[len(holes)-1])
}
