package engine

import (
	"github.com/rs/zerolog/log"

	"github.com/praxisgrid/veritas/internal/models"
)

// Per layer confidence assigned on success. A failed layer reports zero
// confidence, which removes it from the weighted aggregate.
const (
	confidenceStructural  = 0.95
	confidenceFingerprint = 0.90
	confidenceControlFlow = 0.85
	confidenceJudge       = 0.75
	confidenceAIDetection = 0.75
)

// naturalCorrectionFactor dampens the overall score when the semantic judge
// attributes the similarity to the problem itself rather than to copying.
const naturalCorrectionFactor = 0.7

// Recommendation thresholds.
const (
	criticalScore   = 0.80
	strongLayer     = 0.90
	aiHintThreshold = 0.70
)

// LayerWeights assigns each scoring layer its nominal aggregation weight.
// The AI detection layer is advisory and never carries weight.
type LayerWeights map[string]float64

// DefaultJudgeWeights returns the nominal layer weights used when the
// semantic judge participates. The values are empirical, not derived.
func DefaultJudgeWeights() LayerWeights {
	return LayerWeights{
		models.LayerJudge:       0.50,
		models.LayerStructural:  0.20,
		models.LayerFingerprint: 0.15,
		models.LayerControlFlow: 0.15,
	}
}

// DefaultLocalWeights returns the nominal layer weights used when scoring
// on the local layers alone.
func DefaultLocalWeights() LayerWeights {
	return LayerWeights{
		models.LayerStructural:  0.35,
		models.LayerFingerprint: 0.30,
		models.LayerControlFlow: 0.35,
	}
}

// weightedScore aggregates layer scores. Each layer contributes its nominal
// weight scaled by its reported confidence, so failed layers drop out. When
// every layer failed the result is 0.
func weightedScore(results []models.LayerResult, weights LayerWeights) float64 {
	var sum, totalWeight float64
	for i := range results {
		r := &results[i]
		if r.Layer == models.LayerAIDetection {
			continue
		}
		nominal, ok := weights[r.Layer]
		if !ok {
			log.Warn().Str("layer", r.Layer).Msg("Unknown layer in score aggregation")
			continue
		}
		w := nominal * r.Confidence
		sum += r.Score * w
		totalWeight += w
	}
	if totalWeight == 0 {
		return 0.0
	}
	return sum / totalWeight
}

// classify maps an overall score onto a risk level and flag colour.
func classify(score, suspicious, high float64) (models.RiskLevel, models.Flag) {
	if score < suspicious {
		return models.RiskClean, models.FlagGreen
	}
	if score < high {
		return models.RiskSuspicious, models.FlagYellow
	}
	return models.RiskHigh, models.FlagRed
}

// overallConfidence averages the confidences of the layers that produced a
// usable result. All layers failing means no confidence at all.
func overallConfidence(results []models.LayerResult) float64 {
	var sum float64
	n := 0
	for i := range results {
		if results[i].Confidence > 0 {
			sum += results[i].Confidence
			n++
		}
	}
	if n == 0 {
		return 0.0
	}
	return sum / float64(n)
}

// recommendations renders reviewer guidance for a finished comparison. The
// suspicious and high cutoffs are the same ones used for classification.
func recommendations(overall, suspicious, high float64, results []models.LayerResult, likelyAI, natural bool) []string {
	recs := []string{}

	switch {
	case overall >= criticalScore:
		recs = append(recs, "CRITICAL: Extremely high similarity detected. Manual review strongly recommended.")
	case overall >= high:
		recs = append(recs, "WARNING: High similarity detected. Manual review recommended.")
	case overall >= suspicious:
		recs = append(recs, "CAUTION: Moderate similarity detected. Consider manual review.")
	default:
		recs = append(recs, "PASS: Low similarity. Likely independent work.")
	}

	if likelyAI {
		recs = append(recs, "NOTE: Code shows characteristics of AI generation. Consider an AI usage review.")
	}

	for i := range results {
		r := &results[i]
		if r.Layer == models.LayerStructural && r.Score > strongLayer && r.Confidence > 0 {
			recs = append(recs, "Structural analysis indicates nearly identical code organization.")
		}
		if r.Layer == models.LayerFingerprint && r.Score > strongLayer && r.Confidence > 0 {
			recs = append(recs, "Fingerprint analysis indicates substantial copied content.")
		}
	}

	if natural {
		recs = append(recs, "Semantic judge assessed the similarity as natural for this problem type.")
	}
	return recs
}

// closeness maps two magnitudes onto [0,1]; equal values score 1.
func closeness(a, b int) float64 {
	return 1.0 - float64(abs(a-b))/float64(max(a, b, 1))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clamp01(v float64) float64 {
	if v < 0.0 {
		return 0.0
	}
	if v > 1.0 {
		return 1.0
	}
	return v
}
