package engine

import (
	"context"
)

// JudgeRequest carries one submission pair to the semantic judge.
type JudgeRequest struct {
	Code1          string
	Code2          string
	Language       string
	ProblemContext string
}

// JudgeVerdict is the judge's structured assessment of a pair.
type JudgeVerdict struct {
	Score     float64
	IsNatural bool
	Reasoning string
	Model     string
}

// SemanticJudge scores a pair with an external model. Implementations must
// honour ctx cancellation. Any error makes the orchestrator fall back to a
// neutral score carrying zero confidence.
type SemanticJudge interface {
	Judge(ctx context.Context, req JudgeRequest) (*JudgeVerdict, error)
}

// AIDetector estimates how likely a single submission is machine generated.
// The returned details are merged into the layer result.
type AIDetector interface {
	Probability(ctx context.Context, code, language string) (float64, map[string]any, error)
}
