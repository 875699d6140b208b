package engine

import (
	"regexp"
	"strings"
	"sync"

	"github.com/kdigolf/caddie/internal/models"
)

// terrainKeywords maps Spanish and English phrases to terrain types.
// Lookup is deterministic keyword matching; any natural-language layer
// in front of the API is expected to pass descriptions through as-is.
var terrainKeywords = map[models.TerrainType][]string{
	models.TerrainTrees: {
		"árbol", "arbol", "árboles", "arboles", "entre árboles", "bajo árboles",
		"debajo de árboles", "entre los árboles", "en los árboles", "arboleda",
		"bosque", "matorral", "vegetación", "fronda",
		"tree", "trees", "between trees", "under trees", "in trees", "wood", "woods",
	},
	models.TerrainBunker: {
		"bunker", "búnker", "trampa de arena", "arenera", "arena", "en la arena",
		"bunker de arena", "trampa",
		"sand trap", "sand", "in the sand", "sand pit",
	},
	models.TerrainWater: {
		"agua", "lago", "estanque", "río", "arroyo", "en el agua", "cerca del agua",
		"charco", "humedal", "pantano",
		"water", "lake", "pond", "river", "stream", "in the water", "near water",
		"wetland", "swamp",
	},
	models.TerrainHeavyRough: {
		"rough", "rough pesado", "hierba alta", "hierba larga", "pasto alto",
		"vegetación densa", "matorral espeso", "zona de hierba",
		"heavy rough", "thick rough", "long grass", "dense vegetation",
	},
	models.TerrainRough: {
		"rough ligero", "hierba", "pasto", "hierba corta", "fuera del fairway",
		"light rough", "grass", "off fairway", "first cut",
	},
	models.TerrainFairway: {
		"fairway", "calle", "en la calle", "sobre el fairway", "calle del campo",
		"in the fairway", "on the fairway",
	},
	models.TerrainGreen: {
		"green", "verde", "en el green", "sobre el green", "putting green",
		"on the green", "green surface",
	},
	models.TerrainOutOfBounds: {
		"fuera de límites", "fuera del campo", "ob", "out of bounds", "fuera",
		"out", "outside the course",
	},
	models.TerrainTee: {
		"tee", "salida", "en el tee", "salida del hoyo", "tee de salida",
		"teeing ground", "tee box", "on the tee",
	},
}

// terrainOrder fixes scan order so confidence ties resolve the same
// way on every call. More specific lies come first.
var terrainOrder = []models.TerrainType{
	models.TerrainTrees,
	models.TerrainBunker,
	models.TerrainWater,
	models.TerrainHeavyRough,
	models.TerrainRough,
	models.TerrainFairway,
	models.TerrainGreen,
	models.TerrainOutOfBounds,
	models.TerrainTee,
}

var positionIndicators = []string{
	"está", "estoy", "está en", "en", "entre", "sobre", "bajo",
	"is", "in", "between", "on", "under", "near",
}

var (
	keywordPatternsOnce sync.Once
	keywordPatterns     map[models.TerrainType][]*regexp.Regexp
)

func compiledKeywords() map[models.TerrainType][]*regexp.Regexp {
	keywordPatternsOnce.Do(func() {
		keywordPatterns = make(map[models.TerrainType][]*regexp.Regexp, len(terrainKeywords))
		for terrain, words := range terrainKeywords {
			patterns := make([]*regexp.Regexp, 0, len(words))
			for _, w := range words {
				// \b is ASCII-only in Go, so accented keywords like
				// "árboles" would never match. Use explicit
				// non-letter boundaries instead.
				patterns = append(patterns, regexp.MustCompile(
					`(?:^|[^\p{L}\p{N}])`+regexp.QuoteMeta(strings.ToLower(w))+`(?:[^\p{L}\p{N}]|$)`))
			}
			keywordPatterns[terrain] = patterns
		}
	})
	return keywordPatterns
}

// TerrainExtraction is the result of analyzing a free-text description
// of where the ball lies.
type TerrainExtraction struct {
	TerrainType     models.TerrainType `json:"terrain_type"`
	Confidence      float64            `json:"confidence"`
	MatchedKeywords []string           `json:"matched_keywords"`
	Description     string             `json:"description"`
}

// ExtractTerrain detects the terrain type a player is describing.
// Confidence starts at 0.5 plus 0.1 per matched keyword (capped at
// 0.9) and gains 0.2 when the text carries an explicit position
// indicator, capped at 1.0. Returns nil when nothing matches.
func ExtractTerrain(description string) *TerrainExtraction {
	text := strings.ToLower(strings.TrimSpace(description))
	if text == "" {
		return nil
	}

	hasIndicator := false
	for _, ind := range positionIndicators {
		if strings.Contains(text, ind) {
			hasIndicator = true
			break
		}
	}

	compiled := compiledKeywords()

	var best *TerrainExtraction
	for _, terrain := range terrainOrder {
		patterns := compiled[terrain]
		var matched []string
		for i, re := range patterns {
			if re.MatchString(text) {
				matched = append(matched, terrainKeywords[terrain][i])
			}
		}
		if len(matched) == 0 {
			continue
		}

		confidence := 0.5 + float64(len(matched))*0.1
		if confidence > 0.9 {
			confidence = 0.9
		}
		if hasIndicator {
			confidence += 0.2
			if confidence > 1.0 {
				confidence = 1.0
			}
		}

		if best == nil || confidence > best.Confidence {
			best = &TerrainExtraction{
				TerrainType:     terrain,
				Confidence:      confidence,
				MatchedKeywords: matched,
				Description:     description,
			}
		}
	}
	return best
}

// IsTerrainDescription reports whether text plausibly describes a lie.
func IsTerrainDescription(description string) bool {
	ext := ExtractTerrain(description)
	return ext != nil && ext.Confidence > 0.5
}
