package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/praxisgrid/veritas/internal/models"
)

// Config carries the tunable knobs of the detector: classification
// thresholds plus the empirical weight tables of the aggregation step.
type Config struct {
	SuspiciousThreshold float64
	HighThreshold       float64
	JudgeWeights        LayerWeights
	LocalWeights        LayerWeights
	Structural          StructuralWeights
}

// DefaultConfig returns the stock thresholds and weights.
func DefaultConfig() Config {
	return Config{
		SuspiciousThreshold: 0.30,
		HighThreshold:       0.60,
		JudgeWeights:        DefaultJudgeWeights(),
		LocalWeights:        DefaultLocalWeights(),
		Structural:          DefaultStructuralWeights(),
	}
}

// Detector orchestrates the detection layers over submission pairs.
type Detector struct {
	cfg   Config
	judge SemanticJudge
	ai    AIDetector
}

// NewDetector wires a detector. judge and ai may be nil, in which case the
// corresponding layers are skipped. Unset or nonsensical knobs fall back to
// the defaults field by field.
func NewDetector(cfg Config, judge SemanticJudge, ai AIDetector) *Detector {
	def := DefaultConfig()
	if cfg.SuspiciousThreshold <= 0 || cfg.HighThreshold <= cfg.SuspiciousThreshold {
		cfg.SuspiciousThreshold = def.SuspiciousThreshold
		cfg.HighThreshold = def.HighThreshold
	}
	if cfg.JudgeWeights == nil {
		cfg.JudgeWeights = def.JudgeWeights
	}
	if cfg.LocalWeights == nil {
		cfg.LocalWeights = def.LocalWeights
	}
	if cfg.Structural == (StructuralWeights{}) {
		cfg.Structural = def.Structural
	}
	return &Detector{cfg: cfg, judge: judge, ai: ai}
}

// CompareOptions tune a single comparison.
type CompareOptions struct {
	Submission1ID  string
	Submission2ID  string
	ProblemContext string
	UseJudge       bool
}

// DefaultCompareOptions enables the judge and names the sides code1/code2.
func DefaultCompareOptions() CompareOptions {
	return CompareOptions{Submission1ID: "code1", Submission2ID: "code2", UseJudge: true}
}

// Compare runs every detection layer over one pair and aggregates the
// verdict. Validation problems return ErrUnsupportedLanguage or
// ErrEmptySource; layer failures never abort the comparison, they surface
// inside the report with zero confidence.
func (d *Detector) Compare(ctx context.Context, code1, code2, language string, opts CompareOptions) (*models.PlagiarismReport, error) {
	started := time.Now()

	language, err := ParseLanguage(language)
	if err != nil {
		return nil, err
	}
	an := analyzerFor(language)

	if opts.Submission1ID == "" {
		opts.Submission1ID = "code1"
	}
	if opts.Submission2ID == "" {
		opts.Submission2ID = "code2"
	}
	if strings.TrimSpace(code1) == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptySource, opts.Submission1ID)
	}
	if strings.TrimSpace(code2) == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptySource, opts.Submission2ID)
	}

	useJudge := opts.UseJudge && d.judge != nil
	if opts.UseJudge && d.judge == nil {
		log.Debug().Msg("Semantic judge not configured, scoring without it")
	}

	results := runLayers(ctx, d.layerTasks(an, code1, code2, language, opts, useJudge))

	weights := d.cfg.LocalWeights
	if useJudge {
		weights = d.cfg.JudgeWeights
	}
	overall := weightedScore(results, weights)

	natural := judgeFoundNatural(results)
	if natural && overall > d.cfg.SuspiciousThreshold {
		overall *= naturalCorrectionFactor
	}

	level, flag := classify(overall, d.cfg.SuspiciousThreshold, d.cfg.HighThreshold)
	aiProb, likelyAI := aiAssessment(results)

	report := &models.PlagiarismReport{
		Submission1ID:       opts.Submission1ID,
		Submission2ID:       opts.Submission2ID,
		Language:            language,
		OverallSimilarity:   overall,
		Level:               level,
		Flag:                flag,
		Confidence:          overallConfidence(results),
		LayerResults:        results,
		AIGeneratedHint:     likelyAI,
		AIProbability:       aiProb,
		IsNaturalSimilarity: natural,
		ReasoningText:       judgeReasoning(results),
		Recommendations:     recommendations(overall, d.cfg.SuspiciousThreshold, d.cfg.HighThreshold, results, likelyAI, natural),
		ProcessingTime:      time.Since(started),
		CreatedAt:           time.Now().UTC(),
	}

	log.Debug().
		Str("submission1", opts.Submission1ID).
		Str("submission2", opts.Submission2ID).
		Str("language", language).
		Float64("overall", overall).
		Str("level", string(level)).
		Dur("elapsed", report.ProcessingTime).
		Msg("Comparison complete")

	return report, nil
}

// layerTask pairs a layer name with the closure computing its result.
type layerTask struct {
	name string
	run  func(ctx context.Context) models.LayerResult
}

func (d *Detector) layerTasks(an sourceAnalyzer, code1, code2, language string, opts CompareOptions, useJudge bool) []layerTask {
	tasks := []layerTask{
		{models.LayerStructural, func(ctx context.Context) models.LayerResult {
			return compareStructural(an, code1, code2, d.cfg.Structural)
		}},
		{models.LayerFingerprint, func(ctx context.Context) models.LayerResult {
			return compareFingerprints(an, code1, code2)
		}},
		{models.LayerControlFlow, func(ctx context.Context) models.LayerResult {
			return compareControlFlow(an, code1, code2)
		}},
	}
	if useJudge {
		tasks = append(tasks, layerTask{models.LayerJudge, func(ctx context.Context) models.LayerResult {
			return d.judgeLayer(ctx, code1, code2, language, opts.ProblemContext)
		}})
	}
	if d.ai != nil {
		tasks = append(tasks,
			layerTask{models.LayerAIDetection, func(ctx context.Context) models.LayerResult {
				return d.aiLayer(ctx, code1, language, opts.Submission1ID)
			}},
			layerTask{models.LayerAIDetection, func(ctx context.Context) models.LayerResult {
				return d.aiLayer(ctx, code2, language, opts.Submission2ID)
			}},
		)
	}
	return tasks
}

type indexedResult struct {
	idx int
	res models.LayerResult
}

// runLayers fans the tasks out to goroutines and collects results until all
// are in or ctx expires. The channel is buffered to task count so stragglers
// can always deliver and no goroutine leaks. Layers that missed the deadline
// are substituted with their failure result, keeping report order stable.
func runLayers(ctx context.Context, tasks []layerTask) []models.LayerResult {
	out := make(chan indexedResult, len(tasks))
	for i, t := range tasks {
		go func(idx int, t layerTask) {
			layerStart := time.Now()
			res := t.run(ctx)
			res.ExecutionTime = time.Since(layerStart)
			out <- indexedResult{idx: idx, res: res}
		}(i, t)
	}

	results := make([]models.LayerResult, len(tasks))
	received := make([]bool, len(tasks))
	pending := len(tasks)
	for pending > 0 {
		select {
		case r := <-out:
			results[r.idx] = r.res
			received[r.idx] = true
			pending--
		case <-ctx.Done():
			for {
				select {
				case r := <-out:
					results[r.idx] = r.res
					received[r.idx] = true
					pending--
				default:
					for i := range results {
						if !received[i] {
							results[i] = expiredResult(tasks[i].name, ctx.Err())
						}
					}
					return results
				}
			}
		}
	}
	return results
}

// expiredResult stands in for a layer that did not finish before the
// deadline. A missing judge is neutral rather than zero similarity.
func expiredResult(layer string, err error) models.LayerResult {
	res := models.LayerResult{
		Layer: layer,
		Error: fmt.Sprintf("layer did not finish: %v", err),
	}
	if layer == models.LayerJudge {
		res.Score = 0.5
	}
	return res
}

func (d *Detector) judgeLayer(ctx context.Context, code1, code2, language, problemContext string) models.LayerResult {
	res := models.LayerResult{Layer: models.LayerJudge}

	verdict, err := d.judge.Judge(ctx, JudgeRequest{
		Code1:          code1,
		Code2:          code2,
		Language:       language,
		ProblemContext: problemContext,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Semantic judge unavailable, falling back to neutral score")
		res.Score = 0.5
		res.Error = fmt.Sprintf("semantic judge unavailable: %v", err)
		res.Details = map[string]any{"is_natural_similarity": false}
		return res
	}

	res.Score = clamp01(verdict.Score)
	res.Confidence = confidenceJudge
	res.Details = map[string]any{
		"reasoning":             verdict.Reasoning,
		"is_natural_similarity": verdict.IsNatural,
		"model":                 verdict.Model,
	}
	return res
}

func (d *Detector) aiLayer(ctx context.Context, code, language, submissionID string) models.LayerResult {
	res := models.LayerResult{Layer: models.LayerAIDetection}

	prob, details, err := d.ai.Probability(ctx, code, language)
	if err != nil {
		res.Error = fmt.Sprintf("ai detection failed: %v", err)
		return res
	}
	if details == nil {
		details = map[string]any{}
	}
	details["submission"] = submissionID

	res.Score = clamp01(prob)
	res.Confidence = confidenceAIDetection
	res.Details = details
	return res
}

func judgeFoundNatural(results []models.LayerResult) bool {
	for i := range results {
		r := &results[i]
		if r.Layer != models.LayerJudge || r.Confidence == 0 {
			continue
		}
		if natural, ok := r.Details["is_natural_similarity"].(bool); ok && natural {
			return true
		}
	}
	return false
}

// judgeReasoning lifts the judge's explanation to the report level. Empty
// when the judge did not run or failed.
func judgeReasoning(results []models.LayerResult) string {
	for i := range results {
		r := &results[i]
		if r.Layer != models.LayerJudge || r.Confidence == 0 {
			continue
		}
		if text, ok := r.Details["reasoning"].(string); ok {
			return text
		}
	}
	return ""
}

// aiAssessment folds the per submission AI detection results into the pair
// level probability (the max) and the advisory flag.
func aiAssessment(results []models.LayerResult) (float64, bool) {
	var prob float64
	likely := false
	for i := range results {
		r := &results[i]
		if r.Layer != models.LayerAIDetection || r.Confidence == 0 {
			continue
		}
		if r.Score > prob {
			prob = r.Score
		}
		if r.Score > aiHintThreshold {
			likely = true
		}
	}
	return prob, likely
}
