package engine

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/praxisgrid/veritas/internal/models"
)

// BatchOptions tune a batch run. The judge stays off unless requested:
// cross comparing n submissions is quadratic in judge calls.
type BatchOptions struct {
	UseJudge       bool
	ProblemContext string

	// Progress, when set, is called after every finished pair with
	// monotonically increasing completed counts.
	Progress func(completed, total int)
}

// BatchRunner cross compares submission sets on a worker pool.
type BatchRunner struct {
	detector *Detector
	pool     *WorkerPool
}

func NewBatchRunner(detector *Detector, pool *WorkerPool) *BatchRunner {
	return &BatchRunner{detector: detector, pool: pool}
}

// pairJob compares one submission pair and delivers the outcome.
type pairJob struct {
	detector   *Detector
	first      models.Submission
	second     models.Submission
	opts       BatchOptions
	idx        int
	resultChan chan<- pairOutcome
}

type pairOutcome struct {
	idx    int
	report *models.PlagiarismReport
	err    error
}

func (j *pairJob) Execute(ctx context.Context) error {
	report, err := j.detector.Compare(ctx, j.first.Source, j.second.Source, j.first.Language, CompareOptions{
		Submission1ID:  j.first.ID,
		Submission2ID:  j.second.ID,
		ProblemContext: j.opts.ProblemContext,
		UseJudge:       j.opts.UseJudge,
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case j.resultChan <- pairOutcome{idx: j.idx, report: report, err: err}:
		return err
	}
}

// CompareAll cross compares every same language pair (each unordered pair
// once) and returns their reports in deterministic pair order. Pairs that
// fail validation are logged and skipped; a cancelled context returns the
// reports collected so far along with the context error.
func (r *BatchRunner) CompareAll(ctx context.Context, submissions []models.Submission, opts BatchOptions) ([]*models.PlagiarismReport, error) {
	type pair struct{ first, second int }
	var pairs []pair
	for i := 0; i < len(submissions); i++ {
		for j := i + 1; j < len(submissions); j++ {
			if !strings.EqualFold(submissions[i].Language, submissions[j].Language) {
				continue
			}
			pairs = append(pairs, pair{first: i, second: j})
		}
	}

	total := len(pairs)
	if total == 0 {
		return []*models.PlagiarismReport{}, nil
	}
	log.Info().
		Int("submissions", len(submissions)).
		Int("pairs", total).
		Bool("judge", opts.UseJudge).
		Msg("Batch comparison started")

	// Buffered to pair count so no job ever blocks on delivery.
	resultChan := make(chan pairOutcome, total)

	submitted := 0
	for idx, p := range pairs {
		job := &pairJob{
			detector:   r.detector,
			first:      submissions[p.first],
			second:     submissions[p.second],
			opts:       opts,
			idx:        idx,
			resultChan: resultChan,
		}
		if err := r.pool.Submit(job); err != nil {
			log.Error().Err(err).Msg("Failed to submit comparison job")
			break
		}
		submitted++
	}

	ordered := make([]*models.PlagiarismReport, total)
	completed := 0
	var collectErr error

collect:
	for completed < submitted {
		select {
		case <-ctx.Done():
			collectErr = ctx.Err()
			break collect
		case outcome := <-resultChan:
			completed++
			if outcome.err != nil {
				log.Warn().
					Err(outcome.err).
					Str("submission1", submissions[pairs[outcome.idx].first].ID).
					Str("submission2", submissions[pairs[outcome.idx].second].ID).
					Msg("Pair comparison failed")
			} else {
				ordered[outcome.idx] = outcome.report
			}
			if opts.Progress != nil {
				opts.Progress(completed, total)
			}
		}
	}

	reports := make([]*models.PlagiarismReport, 0, completed)
	for _, rep := range ordered {
		if rep != nil {
			reports = append(reports, rep)
		}
	}

	log.Info().
		Int("pairs", total).
		Int("completed", completed).
		Int("reports", len(reports)).
		Msg("Batch comparison finished")

	return reports, collectErr
}

// FilterFlagged keeps the reports whose overall similarity is at or above
// minScore, preserving order.
func FilterFlagged(reports []*models.PlagiarismReport, minScore float64) []*models.PlagiarismReport {
	flagged := make([]*models.PlagiarismReport, 0)
	for _, rep := range reports {
		if rep.OverallSimilarity >= minScore {
			flagged = append(flagged, rep)
		}
	}
	return flagged
}
