package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/praxisgrid/veritas/internal/models"
)

func TestLayerWeights(t *testing.T) {
	t.Run("judge takes half when enabled", func(t *testing.T) {
		w := DefaultJudgeWeights()
		assert.InDelta(t, 0.50, w[models.LayerJudge], 1e-9)

		var sum float64
		for _, v := range w {
			sum += v
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	})

	t.Run("local layers share the weight without the judge", func(t *testing.T) {
		w := DefaultLocalWeights()
		_, hasJudge := w[models.LayerJudge]
		assert.False(t, hasJudge)

		var sum float64
		for _, v := range w {
			sum += v
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	})
}

func TestWeightedScore(t *testing.T) {
	weights := DefaultLocalWeights()

	t.Run("all layers agreeing", func(t *testing.T) {
		results := []models.LayerResult{
			{Layer: models.LayerStructural, Score: 1.0, Confidence: confidenceStructural},
			{Layer: models.LayerFingerprint, Score: 1.0, Confidence: confidenceFingerprint},
			{Layer: models.LayerControlFlow, Score: 1.0, Confidence: confidenceControlFlow},
		}
		assert.InDelta(t, 1.0, weightedScore(results, weights), 1e-9)
	})

	t.Run("confidence scales each layer's pull", func(t *testing.T) {
		results := []models.LayerResult{
			{Layer: models.LayerStructural, Score: 1.0, Confidence: confidenceStructural},
			{Layer: models.LayerFingerprint, Score: 0.0, Confidence: confidenceFingerprint},
			{Layer: models.LayerControlFlow, Score: 0.0, Confidence: confidenceControlFlow},
		}
		expected := 0.35 * confidenceStructural /
			(0.35*confidenceStructural + 0.30*confidenceFingerprint + 0.35*confidenceControlFlow)
		assert.InDelta(t, expected, weightedScore(results, weights), 1e-9)
	})

	t.Run("failed layer drops out", func(t *testing.T) {
		results := []models.LayerResult{
			{Layer: models.LayerStructural, Score: 1.0, Confidence: 0},
			{Layer: models.LayerFingerprint, Score: 0.4, Confidence: confidenceFingerprint},
			{Layer: models.LayerControlFlow, Score: 0.4, Confidence: confidenceControlFlow},
		}
		assert.InDelta(t, 0.4, weightedScore(results, weights), 1e-9)
	})

	t.Run("all layers failed", func(t *testing.T) {
		results := []models.LayerResult{
			{Layer: models.LayerStructural, Score: 1.0, Confidence: 0},
			{Layer: models.LayerFingerprint, Score: 1.0, Confidence: 0},
		}
		assert.Zero(t, weightedScore(results, weights))
	})

	t.Run("advisory and unknown layers carry no weight", func(t *testing.T) {
		base := []models.LayerResult{
			{Layer: models.LayerStructural, Score: 0.5, Confidence: confidenceStructural},
		}
		noisy := append([]models.LayerResult{
			{Layer: models.LayerAIDetection, Score: 1.0, Confidence: confidenceAIDetection},
			{Layer: "experimental", Score: 1.0, Confidence: 1.0},
		}, base...)
		assert.InDelta(t, weightedScore(base, weights), weightedScore(noisy, weights), 1e-9)
	})
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		name  string
		score float64
		risk  models.RiskLevel
		flag  models.Flag
	}{
		{"zero", 0.0, models.RiskClean, models.FlagGreen},
		{"just below suspicious", 0.29999, models.RiskClean, models.FlagGreen},
		{"suspicious boundary", 0.30, models.RiskSuspicious, models.FlagYellow},
		{"just below high", 0.59999, models.RiskSuspicious, models.FlagYellow},
		{"high boundary", 0.60, models.RiskHigh, models.FlagRed},
		{"maximum", 1.0, models.RiskHigh, models.FlagRed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			risk, flag := classify(tc.score, 0.30, 0.60)
			assert.Equal(t, tc.risk, risk)
			assert.Equal(t, tc.flag, flag)
		})
	}
}

func TestOverallConfidence(t *testing.T) {
	results := []models.LayerResult{
		{Layer: models.LayerStructural, Confidence: 0.9},
		{Layer: models.LayerFingerprint, Confidence: 0.6},
		{Layer: models.LayerControlFlow, Confidence: 0},
	}
	assert.InDelta(t, 0.75, overallConfidence(results), 1e-9)

	assert.Zero(t, overallConfidence([]models.LayerResult{{Confidence: 0}}))
	assert.Zero(t, overallConfidence(nil))
}

func TestRecommendations(t *testing.T) {
	t.Run("severity ladder", func(t *testing.T) {
		testCases := []struct {
			overall float64
			prefix  string
		}{
			{0.85, "CRITICAL"},
			{0.65, "WARNING"},
			{0.45, "CAUTION"},
			{0.10, "PASS"},
		}
		for _, tc := range testCases {
			recs := recommendations(tc.overall, 0.30, 0.60, nil, false, false)
			assert.True(t, strings.HasPrefix(recs[0], tc.prefix),
				"overall %.2f expected prefix %s, got %q", tc.overall, tc.prefix, recs[0])
		}
	})

	t.Run("ladder follows configured thresholds", func(t *testing.T) {
		recs := recommendations(0.45, 0.20, 0.40, nil, false, false)
		assert.True(t, strings.HasPrefix(recs[0], "WARNING"), "got %q", recs[0])
	})

	t.Run("strong layers add notes", func(t *testing.T) {
		results := []models.LayerResult{
			{Layer: models.LayerStructural, Score: 0.95, Confidence: 0.95},
			{Layer: models.LayerFingerprint, Score: 0.95, Confidence: 0.90},
		}
		recs := recommendations(0.9, 0.30, 0.60, results, false, false)
		joined := strings.Join(recs, " ")
		assert.Contains(t, joined, "Structural analysis")
		assert.Contains(t, joined, "Fingerprint analysis")
	})

	t.Run("failed strong layer stays quiet", func(t *testing.T) {
		results := []models.LayerResult{
			{Layer: models.LayerStructural, Score: 0.95, Confidence: 0},
		}
		recs := recommendations(0.9, 0.30, 0.60, results, false, false)
		assert.NotContains(t, strings.Join(recs, " "), "Structural analysis")
	})

	t.Run("advisory notes", func(t *testing.T) {
		recs := recommendations(0.1, 0.30, 0.60, nil, true, true)
		joined := strings.Join(recs, " ")
		assert.Contains(t, joined, "AI generation")
		assert.Contains(t, joined, "natural")
	})
}

func TestCloseness(t *testing.T) {
	assert.InDelta(t, 1.0, closeness(5, 5), 1e-9)
	assert.InDelta(t, 1.0, closeness(0, 0), 1e-9)
	assert.InDelta(t, 0.0, closeness(0, 10), 1e-9)
	assert.InDelta(t, 0.5, closeness(5, 10), 1e-9)
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, clamp01(-0.5))
	assert.Equal(t, 1.0, clamp01(1.5))
	assert.Equal(t, 0.7, clamp01(0.7))
}
