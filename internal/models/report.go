package models

import (
	"time"
)

// RiskLevel buckets an overall similarity score
type RiskLevel string

const (
	RiskClean      RiskLevel = "clean"
	RiskSuspicious RiskLevel = "suspicious"
	RiskHigh       RiskLevel = "high"
)

// Flag is the reviewer-facing colour for a risk level
type Flag string

const (
	FlagGreen  Flag = "green"
	FlagYellow Flag = "yellow"
	FlagRed    Flag = "red"
)

// Layer names as they appear in LayerResult and weight tables.
const (
	LayerStructural  = "structural"
	LayerFingerprint = "fingerprint"
	LayerControlFlow = "control_flow"
	LayerJudge       = "semantic_judge"
	LayerAIDetection = "ai_detection"
)

// LayerResult represents the outcome of a single detection layer
type LayerResult struct {
	Layer         string         `json:"layer"`
	Score         float64        `json:"score"`
	Confidence    float64        `json:"confidence"`
	Details       map[string]any `json:"details,omitempty"`
	Error         string         `json:"error,omitempty"`
	ExecutionTime time.Duration  `json:"execution_time"`
}

// PlagiarismReport represents the full verdict for one submission pair
type PlagiarismReport struct {
	Submission1ID       string        `json:"submission1_id"`
	Submission2ID       string        `json:"submission2_id"`
	Language            string        `json:"language"`
	OverallSimilarity   float64       `json:"overall_similarity"`
	Level               RiskLevel     `json:"level"`
	Flag                Flag          `json:"flag"`
	Confidence          float64       `json:"confidence"`
	LayerResults        []LayerResult `json:"layer_results"`
	AIGeneratedHint     bool          `json:"is_ai_generated_hint"`
	AIProbability       float64       `json:"ai_probability"`
	IsNaturalSimilarity bool          `json:"is_natural_similarity"`
	ReasoningText       string        `json:"reasoning_text"`
	Recommendations     []string      `json:"recommendations"`
	ProcessingTime      time.Duration `json:"processing_time"`
	CreatedAt           time.Time     `json:"created_at"`
}

// Layer returns the result for the named layer, or nil when absent.
func (r *PlagiarismReport) Layer(name string) *LayerResult {
	for i := range r.LayerResults {
		if r.LayerResults[i].Layer == name {
			return &r.LayerResults[i]
		}
	}
	return nil
}

// CompareRequest represents a request to compare two submissions
type CompareRequest struct {
	Code1          string `json:"code1" binding:"required"`
	Code2          string `json:"code2" binding:"required"`
	Language       string `json:"language" binding:"required"`
	Submission1ID  string `json:"submission1_id"`
	Submission2ID  string `json:"submission2_id"`
	ProblemContext string `json:"problem_context"`
	UseJudge       *bool  `json:"use_judge"`
}

// BatchCompareRequest represents a request to cross-compare a set of submissions
type BatchCompareRequest struct {
	Submissions    []Submission `json:"submissions" binding:"required,min=2,dive"`
	ProblemContext string       `json:"problem_context"`
	UseJudge       bool         `json:"use_judge"`
}

// BatchCompareResponse represents the outcome of a batch comparison
type BatchCompareResponse struct {
	TotalSubmissions int                 `json:"total_submissions"`
	TotalPairs       int                 `json:"total_pairs"`
	FlaggedPairs     int                 `json:"flagged_pairs"`
	Reports          []*PlagiarismReport `json:"reports"`
	ProcessingTime   time.Duration       `json:"processing_time"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
