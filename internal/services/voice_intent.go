package services

import (
	"regexp"
	"strconv"
	"strings"
)

// VoiceIntent is what the player is asking for.
type VoiceIntent string

const (
	IntentRecommendShot    VoiceIntent = "recommend_shot"
	IntentRegisterStroke   VoiceIntent = "register_stroke"
	IntentCheckDistance    VoiceIntent = "check_distance"
	IntentCheckObstacles   VoiceIntent = "check_obstacles"
	IntentCheckTerrain     VoiceIntent = "check_terrain"
	IntentCompleteHole     VoiceIntent = "complete_hole"
	IntentCheckRanking     VoiceIntent = "check_ranking"
	IntentCheckHoleStats   VoiceIntent = "check_hole_stats"
	IntentCheckHoleInfo    VoiceIntent = "check_hole_info"
	IntentCheckWeather     VoiceIntent = "check_weather"
	IntentRecordHoleScore  VoiceIntent = "record_hole_score_direct"
	IntentUpdateHoleScore  VoiceIntent = "update_hole_score"
	IntentHoleConfirmation VoiceIntent = "require_hole_confirmation"
)

// intentKeywords scores queries by keyword hits; the intent with the
// most hits wins and the share of hits becomes the confidence. Spanish
// first, English alongside, matching how players actually talk to the
// caddie.
var intentKeywords = map[VoiceIntent][]string{
	IntentRecommendShot: {
		"recomienda", "recomiendas", "recomendación", "qué palo", "que palo",
		"cómo juego", "como juego", "qué me aconsejas", "que me aconsejas",
		"estrategia", "recommend", "what club", "which club", "advice",
	},
	IntentRegisterStroke: {
		"registra un golpe", "registrar golpe", "he golpeado", "acabo de golpear",
		"apunta un golpe", "anota un golpe", "register stroke", "i just hit",
		"log my shot",
	},
	IntentCheckDistance: {
		"distancia", "a cuántos metros", "a cuantos metros", "cuánto queda",
		"cuanto queda", "qué lejos", "que lejos", "how far", "distance",
		"yards to",
	},
	IntentCheckObstacles: {
		"obstáculo", "obstaculo", "obstáculos", "obstaculos", "bunker",
		"agua delante", "peligro", "hazard", "obstacle", "what's in the way",
	},
	IntentCheckTerrain: {
		"qué terreno", "que terreno", "dónde estoy", "donde estoy",
		"en qué superficie", "en que superficie", "what terrain",
		"what surface", "where am i",
	},
	IntentCompleteHole: {
		"termina el hoyo", "terminar el hoyo", "completa el hoyo sin",
		"he terminado el hoyo", "hoyo terminado", "acabé el hoyo",
		"acabe el hoyo", "finish the hole", "done with the hole",
	},
	IntentCheckRanking: {
		"ranking", "clasificación", "clasificacion", "quién va ganando",
		"quien va ganando", "posición en el partido", "posicion en el partido",
		"leaderboard", "who is winning", "standings",
	},
	IntentCheckHoleStats: {
		"cuántos golpes llevo", "cuantos golpes llevo", "mis golpes",
		"golpes en este hoyo", "cómo voy en el hoyo", "como voy en el hoyo",
		"my strokes", "how many strokes",
	},
	IntentCheckHoleInfo: {
		"información del hoyo", "informacion del hoyo", "qué hoyo es",
		"que hoyo es", "par del hoyo", "longitud del hoyo", "hole info",
		"what hole", "what par",
	},
	IntentCheckWeather: {
		"tiempo", "clima", "viento", "lluvia", "weather", "wind", "rain",
		"forecast",
	},
	IntentRecordHoleScore: {
		"completa el hoyo con", "registra el hoyo con", "registra el resultado",
		"anota el hoyo", "golpes en este hoyo", "record the hole",
		"finished with",
	},
	IntentUpdateHoleScore: {
		"corrige", "cambia el hoyo", "cambia el resultado", "modifica",
		"actualiza el hoyo", "correct the hole", "change the score", "fix the score",
	},
}

// classifyIntent picks the best-matching intent for a query. Falls
// back to a shot recommendation, which is what an unsure caddie would
// offer anyway.
func classifyIntent(query string) (VoiceIntent, float64) {
	q := strings.ToLower(query)

	best := IntentRecommendShot
	bestHits := 0
	for _, intent := range intentOrder {
		hits := 0
		for _, kw := range intentKeywords[intent] {
			if strings.Contains(q, kw) {
				hits++
			}
		}
		if hits > bestHits {
			best = intent
			bestHits = hits
		}
	}

	if bestHits == 0 {
		return IntentRecommendShot, 0.3
	}
	confidence := 0.5 + 0.15*float64(bestHits)
	if confidence > 0.95 {
		confidence = 0.95
	}
	return best, confidence
}

// intentOrder keeps classification deterministic on keyword-count
// ties: the more specific intents come first.
var intentOrder = []VoiceIntent{
	IntentUpdateHoleScore,
	IntentRecordHoleScore,
	IntentCompleteHole,
	IntentRegisterStroke,
	IntentCheckObstacles,
	IntentCheckTerrain,
	IntentCheckDistance,
	IntentCheckRanking,
	IntentCheckHoleStats,
	IntentCheckHoleInfo,
	IntentCheckWeather,
	IntentRecommendShot,
}

var (
	holeMentionRe1 = regexp.MustCompile(`hoyo\s+(?:n[úu]mero\s+)?(\d+)`)
	holeMentionRe2 = regexp.MustCompile(`(?:en|para|del)\s+(?:el\s+)?hoyo\s+(\d+)`)
	holeMentionRe3 = regexp.MustCompile(`(?:estoy\s+)?(?:en|jugando)\s+(?:el\s+)?(\d+)`)

	holeStrokesRe1 = regexp.MustCompile(`hoyo\s+(\d+)\s+(?:con|a)\s+(\d+)\s+golpes?`)
	holeStrokesRe2 = regexp.MustCompile(`(\d+)\s+golpes?\s+en\s+(?:el\s+)?hoyo\s+(\d+)`)
	holeStrokesRe3 = regexp.MustCompile(`(?:corrige|cambia|modifica|actualiza)\s+(?:el\s+)?(?:resultado\s+)?(?:del\s+)?hoyo\s+(\d+)\s+(?:a|con)?\s*(\d+)\s+golpes?`)
	holeStrokesRe4 = regexp.MustCompile(`(?:con|a|de)\s+(\d+)\s+golpes?`)
	holeStrokesRe5 = regexp.MustCompile(`\b(\d+)\s*(?:golpes?)?\s*$`)

	confirmRe1 = regexp.MustCompile(`hoyo\s+(\d+)\s+(?:con|:)\s+(\d+)\s*golpes?`)
	confirmRe2 = regexp.MustCompile(`(\d+)\s*:\s*(\d+)\s*(?:golpes?)?`)
	confirmRe3 = regexp.MustCompile(`hoyo\s+(\d+)\s+(\d+)\s+golpes?`)
)

// mentionedHoleNumber extracts the hole a query talks about, 0 when
// none is mentioned.
func mentionedHoleNumber(query string) int {
	q := strings.ToLower(query)
	for _, re := range []*regexp.Regexp{holeMentionRe1, holeMentionRe2} {
		if m := re.FindStringSubmatch(q); m != nil {
			return atoi(m[1])
		}
	}
	if m := holeMentionRe3.FindStringSubmatch(q); m != nil {
		if n := atoi(m[1]); n >= 1 && n <= 18 {
			return n
		}
	}
	return 0
}

// holeAndStrokes pulls a hole number and a stroke count out of a
// free-form score report. Either value may be 0 when absent.
func holeAndStrokes(query string) (hole, strokes int) {
	q := strings.ToLower(query)

	if m := holeStrokesRe1.FindStringSubmatch(q); m != nil {
		return atoi(m[1]), atoi(m[2])
	}
	if m := holeStrokesRe2.FindStringSubmatch(q); m != nil {
		return atoi(m[2]), atoi(m[1])
	}
	if m := holeStrokesRe3.FindStringSubmatch(q); m != nil {
		return atoi(m[1]), atoi(m[2])
	}
	if m := holeStrokesRe4.FindStringSubmatch(q); m != nil {
		return 0, atoi(m[1])
	}
	if m := holeStrokesRe5.FindStringSubmatch(q); m != nil {
		return 0, atoi(m[1])
	}
	return 0, 0
}

// HoleConfirmation is one "hole N took M strokes" pair parsed from a
// confirmation reply.
type HoleConfirmation struct {
	HoleNumber int `json:"hole_number"`
	Strokes    int `json:"strokes"`
}

// holeConfirmations extracts every hole/strokes pair from a reply like
// "hoyo 5 con 4 golpes, hoyo 6 con 5 golpes".
func holeConfirmations(query string) []HoleConfirmation {
	q := strings.ToLower(query)
	var out []HoleConfirmation

	for _, m := range confirmRe1.FindAllStringSubmatch(q, -1) {
		out = append(out, HoleConfirmation{HoleNumber: atoi(m[1]), Strokes: atoi(m[2])})
	}
	if len(out) > 0 {
		return out
	}

	for _, m := range confirmRe2.FindAllStringSubmatch(q, -1) {
		hole, strokes := atoi(m[1]), atoi(m[2])
		if hole >= 1 && hole <= 18 && strokes >= 1 && strokes <= 20 {
			out = append(out, HoleConfirmation{HoleNumber: hole, Strokes: strokes})
		}
	}
	if len(out) > 0 {
		return out
	}

	for _, m := range confirmRe3.FindAllStringSubmatch(q, -1) {
		out = append(out, HoleConfirmation{HoleNumber: atoi(m[1]), Strokes: atoi(m[2])})
	}
	return out
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
