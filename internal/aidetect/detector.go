package aidetect

import (
	"context"
	"math"
	"regexp"
	"strings"
)

// Detector estimates how likely a single submission is machine generated,
// using stylistic signals only. The output is advisory: the scoring engine
// reports it but never folds it into the similarity score.
type Detector struct{}

func New() *Detector {
	return &Detector{}
}

// Signal weights. Template phrasing is the strongest tell, the rest are
// weak style markers.
const (
	weightCommentCoverage  = 0.25
	weightIdentifierLength = 0.25
	weightLineUniformity   = 0.20
	weightTemplatePhrases  = 0.30
)

var (
	identRun = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

	// Phrases common in generated explanations and comments.
	templatePhrases = []string{
		"this function",
		"helper function",
		"initialize the",
		"iterate through",
		"we begin by",
		"the following code",
		"handles the edge case",
		"time complexity",
		"space complexity",
		"step 1",
	}
)

// Probability scores the submission in [0,1] with per signal details.
func (d *Detector) Probability(ctx context.Context, code, language string) (float64, map[string]any, error) {
	lines := contentLines(code)
	if len(lines) == 0 {
		return 0, map[string]any{"signals": "no content"}, nil
	}

	comment := commentCoverage(lines, language)
	ident := identifierVerbosity(code)
	uniform := lineUniformity(lines)
	phrases := phraseSignal(code)

	prob := weightCommentCoverage*comment +
		weightIdentifierLength*ident +
		weightLineUniformity*uniform +
		weightTemplatePhrases*phrases

	details := map[string]any{
		"comment_coverage":     comment,
		"identifier_verbosity": ident,
		"line_uniformity":      uniform,
		"template_phrases":     phrases,
	}
	return prob, details, nil
}

func contentLines(code string) []string {
	var lines []string
	for _, line := range strings.Split(code, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// commentCoverage peaks when roughly a quarter of the lines are comments,
// the band generated code tends to land in. Sparse or wall to wall comments
// both read as human.
func commentCoverage(lines []string, language string) float64 {
	markers := []string{"//"}
	if language == "python" {
		markers = []string{"#"}
	}
	commented := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		for _, m := range markers {
			if strings.HasPrefix(trimmed, m) {
				commented++
				break
			}
		}
	}
	ratio := float64(commented) / float64(len(lines))
	return clamp01(1.0 - math.Abs(ratio-0.25)/0.25)
}

// identifierVerbosity rises with the mean identifier length. Single letter
// loop variables pull it down, long descriptive names push it up.
func identifierVerbosity(code string) float64 {
	idents := identRun.FindAllString(code, -1)
	if len(idents) == 0 {
		return 0
	}
	total := 0
	for _, id := range idents {
		total += len(id)
	}
	mean := float64(total) / float64(len(idents))
	return clamp01((mean - 4.0) / 8.0)
}

// lineUniformity rewards low variance in line lengths.
func lineUniformity(lines []string) float64 {
	if len(lines) < 2 {
		return 0
	}
	var sum float64
	for _, line := range lines {
		sum += float64(len(line))
	}
	mean := sum / float64(len(lines))

	var variance float64
	for _, line := range lines {
		diff := float64(len(line)) - mean
		variance += diff * diff
	}
	stddev := math.Sqrt(variance / float64(len(lines)))
	return clamp01(1.0 - stddev/20.0)
}

func phraseSignal(code string) float64 {
	lowered := strings.ToLower(code)
	hits := 0
	for _, phrase := range templatePhrases {
		if strings.Contains(lowered, phrase) {
			hits++
		}
	}
	return clamp01(float64(hits) / 4.0)
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
