package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/praxisgrid/veritas/internal/engine"
	"github.com/praxisgrid/veritas/internal/metrics"
)

// GeminiJudge scores submission pairs with the Gemini generateContent API.
type GeminiJudge struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	cache      *Cache
}

// NewGeminiJudge creates a judge client. cache may be nil to disable
// verdict caching.
func NewGeminiJudge(baseURL, apiKey, model string, timeout time.Duration, cache *Cache) *GeminiJudge {
	return &GeminiJudge{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		cache: cache,
	}
}

type generateContentRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Judge sends the pair to Gemini and parses its structured verdict. Cached
// verdicts short circuit the call; cache failures degrade to a live call.
func (g *GeminiJudge) Judge(ctx context.Context, req engine.JudgeRequest) (*engine.JudgeVerdict, error) {
	cacheKey := verdictKey(req)
	if g.cache != nil {
		if verdict, ok := g.cache.Get(ctx, cacheKey); ok {
			metrics.JudgeCalls.WithLabelValues("cache_hit").Inc()
			return verdict, nil
		}
	}

	text, err := g.generate(ctx, buildComparisonPrompt(req))
	if err != nil {
		metrics.JudgeCalls.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.JudgeCalls.WithLabelValues("ok").Inc()

	verdict := parseVerdict(text)
	verdict.Model = g.model

	if g.cache != nil {
		g.cache.Set(ctx, cacheKey, verdict)
	}
	return verdict, nil
}

func (g *GeminiJudge) generate(ctx context.Context, prompt string) (string, error) {
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, g.model)

	reqBody, err := json.Marshal(generateContentRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("gemini quota exhausted (status %d)", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		var errResp apiError
		if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error.Message == "" {
			return "", fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
		}
		return "", fmt.Errorf("gemini API error: %s - %s", errResp.Error.Status, errResp.Error.Message)
	}

	var genResp generateContentResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(genResp.Candidates) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, p := range genResp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return strings.TrimSpace(sb.String()), nil
}

// buildComparisonPrompt renders the judging prompt. The instructions steer
// the model away from flagging boilerplate the problem forces on everyone.
func buildComparisonPrompt(req engine.JudgeRequest) string {
	contextSection := ""
	if req.ProblemContext != "" {
		contextSection = fmt.Sprintf("\nPROBLEM CONTEXT:\n%s\n\n", req.ProblemContext)
	}

	return fmt.Sprintf(`You are an expert code plagiarism detector. Your task is to analyze two code submissions and determine if they are plagiarized or just naturally similar due to the problem constraints.
%sLANGUAGE: %s

CODE SUBMISSION 1:
`+"```%s\n%s\n```"+`

CODE SUBMISSION 2:
`+"```%s\n%s\n```"+`

ANALYSIS INSTRUCTIONS:

1. **Ignore Natural Boilerplate**: Standard entry points, input/output calls, common imports and idiomatic loops are NOT plagiarism - they are natural for the problem.

2. **Focus on Algorithmic Logic**: Look for:
   - Unique variable naming patterns
   - Identical algorithmic approaches when multiple approaches exist
   - Similar code organization/structure beyond what the problem requires
   - Identical helper functions or unusual implementations
   - Same edge case handling (when not obvious)

3. **Consider Problem Constraints**: If the problem has specific requirements that force similar code, that's NOT plagiarism.

4. **Detect True Plagiarism**: Look for:
   - Identical logic with only variable names changed
   - Same uncommon approaches/algorithms
   - Identical comments or unusual code patterns
   - Copy-paste with minor modifications

OUTPUT FORMAT (required):
SIMILARITY_SCORE: [0.0 to 1.0]
IS_NATURAL: [YES or NO]
REASONING: [Your detailed explanation in 2-3 sentences]

Now analyze these two submissions:`,
		contextSection, req.Language,
		req.Language, req.Code1,
		req.Language, req.Code2)
}

var (
	scoreRe     = regexp.MustCompile(`(?i)SIMILARITY_SCORE:\s*([0-9]*\.?[0-9]+)`)
	naturalRe   = regexp.MustCompile(`(?i)IS_NATURAL:\s*(YES|NO)`)
	reasoningRe = regexp.MustCompile(`(?is)REASONING:\s*(.+?)(?:\n\n|$)`)
)

// parseVerdict extracts the structured fields from the model's free text.
// A missing score reads as neutral 0.5, a missing natural flag as NO.
func parseVerdict(text string) *engine.JudgeVerdict {
	verdict := &engine.JudgeVerdict{
		Score:     0.5,
		Reasoning: "No detailed reasoning provided.",
	}

	if m := scoreRe.FindStringSubmatch(text); m != nil {
		if score, err := strconv.ParseFloat(m[1], 64); err == nil {
			verdict.Score = score
		}
	}
	if verdict.Score < 0 {
		verdict.Score = 0
	}
	if verdict.Score > 1 {
		verdict.Score = 1
	}

	if m := naturalRe.FindStringSubmatch(text); m != nil {
		verdict.IsNatural = strings.EqualFold(m[1], "YES")
	}

	if m := reasoningRe.FindStringSubmatch(text); m != nil {
		verdict.Reasoning = strings.TrimSpace(m[1])
	} else {
		log.Debug().Msg("Judge response carried no reasoning section")
	}

	return verdict
}
