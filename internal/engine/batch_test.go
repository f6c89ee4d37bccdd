package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxisgrid/veritas/internal/models"
)

func newTestRunner(t *testing.T) *BatchRunner {
	t.Helper()
	pool := NewWorkerPool(context.Background(), 2)
	t.Cleanup(pool.Close)
	return NewBatchRunner(NewDetector(DefaultConfig(), nil, nil), pool)
}

func TestCompareAllPairOrder(t *testing.T) {
	runner := newTestRunner(t)
	submissions := []models.Submission{
		{ID: "s1", Language: LangGo, Source: sortSnippet},
		{ID: "s2", Language: LangGo, Source: sortSnippetRenamed},
		{ID: "s3", Language: LangGo, Source: sortSnippet},
	}

	reports, err := runner.CompareAll(context.Background(), submissions, BatchOptions{})
	require.NoError(t, err)
	require.Len(t, reports, 3)

	// Deterministic pair order regardless of worker scheduling.
	assert.Equal(t, "s1", reports[0].Submission1ID)
	assert.Equal(t, "s2", reports[0].Submission2ID)
	assert.Equal(t, "s1", reports[1].Submission1ID)
	assert.Equal(t, "s3", reports[1].Submission2ID)
	assert.Equal(t, "s2", reports[2].Submission1ID)
	assert.Equal(t, "s3", reports[2].Submission2ID)

	for _, rep := range reports {
		assert.InDelta(t, 1.0, rep.OverallSimilarity, 1e-9)
	}
}

func TestCompareAllSkipsCrossLanguagePairs(t *testing.T) {
	runner := newTestRunner(t)
	submissions := []models.Submission{
		{ID: "go1", Language: LangGo, Source: sortSnippet},
		{ID: "py1", Language: LangPython, Source: "def f():\n    return 1\n"},
		{ID: "go2", Language: LangGo, Source: sortSnippet},
	}

	reports, err := runner.CompareAll(context.Background(), submissions, BatchOptions{})
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "go1", reports[0].Submission1ID)
	assert.Equal(t, "go2", reports[0].Submission2ID)
}

func TestCompareAllSmallSets(t *testing.T) {
	runner := newTestRunner(t)

	reports, err := runner.CompareAll(context.Background(), nil, BatchOptions{})
	require.NoError(t, err)
	assert.NotNil(t, reports)
	assert.Empty(t, reports)

	reports, err = runner.CompareAll(context.Background(), []models.Submission{
		{ID: "only", Language: LangGo, Source: sortSnippet},
	}, BatchOptions{})
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestCompareAllProgress(t *testing.T) {
	runner := newTestRunner(t)
	submissions := []models.Submission{
		{ID: "s1", Language: LangGo, Source: sortSnippet},
		{ID: "s2", Language: LangGo, Source: sortSnippetRenamed},
		{ID: "s3", Language: LangGo, Source: sortSnippet},
	}

	var seen []int
	_, err := runner.CompareAll(context.Background(), submissions, BatchOptions{
		Progress: func(completed, total int) {
			assert.Equal(t, 3, total)
			seen = append(seen, completed)
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, seen)
}

func TestCompareAllSkipsInvalidPairs(t *testing.T) {
	runner := newTestRunner(t)
	submissions := []models.Submission{
		{ID: "good1", Language: LangGo, Source: sortSnippet},
		{ID: "blank", Language: LangGo, Source: "   "},
		{ID: "good2", Language: LangGo, Source: sortSnippet},
	}

	reports, err := runner.CompareAll(context.Background(), submissions, BatchOptions{})
	require.NoError(t, err)

	// Pairs touching the blank submission fail validation and are dropped.
	require.Len(t, reports, 1)
	assert.Equal(t, "good1", reports[0].Submission1ID)
	assert.Equal(t, "good2", reports[0].Submission2ID)
}

func TestFilterFlagged(t *testing.T) {
	reports := []*models.PlagiarismReport{
		{Submission1ID: "a", OverallSimilarity: 0.2},
		{Submission1ID: "b", OverallSimilarity: 0.6},
		{Submission1ID: "c", OverallSimilarity: 0.9},
	}

	flagged := FilterFlagged(reports, 0.6)
	require.Len(t, flagged, 2)
	assert.Equal(t, "b", flagged[0].Submission1ID)
	assert.Equal(t, "c", flagged[1].Submission1ID)

	assert.Empty(t, FilterFlagged(reports, 0.95))
	assert.NotNil(t, FilterFlagged(nil, 0.5))
}
