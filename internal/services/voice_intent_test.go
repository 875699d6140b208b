package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyIntent(t *testing.T) {
	cases := []struct {
		query string
		want  VoiceIntent
	}{
		{"¿Qué palo me recomiendas?", IntentRecommendShot},
		{"recommend a club for this shot", IntentRecommendShot},
		{"¿cuánto queda a bandera?", IntentCheckDistance},
		{"how far to the flag", IntentCheckDistance},
		{"¿hay algún bunker delante?", IntentCheckObstacles},
		{"¿en qué superficie estoy?", IntentCheckTerrain},
		{"termina el hoyo", IntentCompleteHole},
		{"¿quién va ganando el partido?", IntentCheckRanking},
		{"¿cuántos golpes llevo?", IntentCheckHoleStats},
		{"dime el par del hoyo", IntentCheckHoleInfo},
		{"¿cómo está el viento?", IntentCheckWeather},
		{"registra el hoyo con 5 golpes", IntentRecordHoleScore},
		{"corrige el hoyo 3 a 5 golpes", IntentUpdateHoleScore},
		{"he golpeado con el hierro 7", IntentRegisterStroke},
	}
	for _, tc := range cases {
		intent, confidence := classifyIntent(tc.query)
		assert.Equal(t, tc.want, intent, "query %q", tc.query)
		assert.GreaterOrEqual(t, confidence, 0.5, "query %q", tc.query)
		assert.LessOrEqual(t, confidence, 0.95, "query %q", tc.query)
	}
}

func TestClassifyIntentFallsBackToRecommendation(t *testing.T) {
	intent, confidence := classifyIntent("hola caddie")
	assert.Equal(t, IntentRecommendShot, intent)
	assert.InDelta(t, 0.3, confidence, 0.001)
}

func TestMentionedHoleNumber(t *testing.T) {
	assert.Equal(t, 7, mentionedHoleNumber("voy al hoyo 7"))
	assert.Equal(t, 4, mentionedHoleNumber("hoyo número 4"))
	assert.Equal(t, 12, mentionedHoleNumber("estoy en el 12"))
	assert.Equal(t, 0, mentionedHoleNumber("dame una recomendación"))
	// Bare numbers outside 1..18 are not hole mentions.
	assert.Equal(t, 0, mentionedHoleNumber("estoy en el 42"))
}

func TestHoleAndStrokes(t *testing.T) {
	hole, strokes := holeAndStrokes("he terminado el hoyo 5 con 4 golpes")
	assert.Equal(t, 5, hole)
	assert.Equal(t, 4, strokes)

	hole, strokes = holeAndStrokes("apunta 4 golpes en el hoyo 5")
	assert.Equal(t, 5, hole)
	assert.Equal(t, 4, strokes)

	hole, strokes = holeAndStrokes("corrige el hoyo 3 a 6 golpes")
	assert.Equal(t, 3, hole)
	assert.Equal(t, 6, strokes)

	// Stroke count without a hole mention.
	hole, strokes = holeAndStrokes("completa el hoyo con 5 golpes")
	assert.Equal(t, 0, hole)
	assert.Equal(t, 5, strokes)

	hole, strokes = holeAndStrokes("terminé con 6")
	assert.Equal(t, 0, hole)
	assert.Equal(t, 6, strokes)

	hole, strokes = holeAndStrokes("no hay números aquí")
	assert.Equal(t, 0, hole)
	assert.Equal(t, 0, strokes)
}

func TestHoleConfirmations(t *testing.T) {
	out := holeConfirmations("hoyo 5 con 4 golpes, hoyo 6 con 5 golpes")
	require.Len(t, out, 2)
	assert.Equal(t, HoleConfirmation{HoleNumber: 5, Strokes: 4}, out[0])
	assert.Equal(t, HoleConfirmation{HoleNumber: 6, Strokes: 5}, out[1])

	out = holeConfirmations("5:4, 6:5")
	require.Len(t, out, 2)
	assert.Equal(t, HoleConfirmation{HoleNumber: 5, Strokes: 4}, out[0])

	// Compact pairs outside plausible ranges are ignored.
	out = holeConfirmations("25:4")
	assert.Empty(t, out)

	out = holeConfirmations("hoyo 7 4 golpes")
	require.Len(t, out, 1)
	assert.Equal(t, HoleConfirmation{HoleNumber: 7, Strokes: 4}, out[0])
}
