package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/praxisgrid/veritas/internal/config"
	"github.com/praxisgrid/veritas/internal/engine"
	"github.com/praxisgrid/veritas/internal/metrics"
	"github.com/praxisgrid/veritas/internal/models"
)

// Handler holds dependencies for handlers
type Handler struct {
	cfg            *config.Config
	detector       *engine.Detector
	batch          *engine.BatchRunner
	compareSem     chan struct{} // Semaphore for bounded concurrency
	compareTimeout time.Duration
	batchTimeout   time.Duration
}

// NewHandler creates a new handler
func NewHandler(cfg *config.Config, detector *engine.Detector, batch *engine.BatchRunner) *Handler {
	// Create semaphore for bounded concurrency
	sem := make(chan struct{}, cfg.MaxConcurrentCompare)

	return &Handler{
		cfg:            cfg,
		detector:       detector,
		batch:          batch,
		compareSem:     sem,
		compareTimeout: cfg.CompareTimeout,
		batchTimeout:   cfg.BatchTimeout,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
	})
}

func (h *Handler) Languages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"languages": engine.SupportedLanguages(),
	})
}

func (h *Handler) Compare(c *gin.Context) {
	var req models.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	if err := h.validateSource(req.Code1, req.Code2); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: err.Error(),
			Code:  "SOURCE_TOO_LARGE",
		})
		return
	}

	// Acquire semaphore (bounded concurrency)
	select {
	case h.compareSem <- struct{}{}:
		// Acquired semaphore
	case <-c.Request.Context().Done():
		c.JSON(http.StatusRequestTimeout, models.ErrorResponse{
			Error: "Request cancelled",
			Code:  "REQUEST_TIMEOUT",
		})
		return
	}
	defer func() { <-h.compareSem }() // Release semaphore

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.compareTimeout)
	defer cancel()

	opts := engine.DefaultCompareOptions()
	if req.Submission1ID != "" {
		opts.Submission1ID = req.Submission1ID
	}
	if req.Submission2ID != "" {
		opts.Submission2ID = req.Submission2ID
	}
	opts.ProblemContext = req.ProblemContext
	if req.UseJudge != nil {
		opts.UseJudge = *req.UseJudge
	}

	started := time.Now()
	report, err := h.detector.Compare(ctx, req.Code1, req.Code2, req.Language, opts)
	if err != nil {
		h.writeCompareError(c, req.Language, err)
		return
	}

	observeComparison(report, time.Since(started))

	c.JSON(http.StatusOK, report)
}

func (h *Handler) BatchCompare(c *gin.Context) {
	var req models.BatchCompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: "Invalid request body: at least two submissions required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	for i := range req.Submissions {
		if err := h.validateSource(req.Submissions[i].Source); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error: fmt.Sprintf("submission %s: %v", req.Submissions[i].ID, err),
				Code:  "SOURCE_TOO_LARGE",
			})
			return
		}
	}

	// Acquire semaphore (bounded concurrency)
	select {
	case h.compareSem <- struct{}{}:
		// Acquired semaphore
	case <-c.Request.Context().Done():
		c.JSON(http.StatusRequestTimeout, models.ErrorResponse{
			Error: "Request cancelled",
			Code:  "REQUEST_TIMEOUT",
		})
		return
	}
	defer func() { <-h.compareSem }() // Release semaphore

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.batchTimeout)
	defer cancel()

	started := time.Now()
	reports, err := h.batch.CompareAll(ctx, req.Submissions, engine.BatchOptions{
		UseJudge:       req.UseJudge,
		ProblemContext: req.ProblemContext,
	})
	if err != nil {
		log.Error().Err(err).Int("submissions", len(req.Submissions)).Msg("Batch comparison failed")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: "Batch comparison failed",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	elapsed := time.Since(started)
	for _, report := range reports {
		observeComparison(report, report.ProcessingTime)
	}

	flagged := engine.FilterFlagged(reports, h.cfg.SuspiciousThreshold)

	c.JSON(http.StatusOK, models.BatchCompareResponse{
		TotalSubmissions: len(req.Submissions),
		TotalPairs:       len(reports),
		FlaggedPairs:     len(flagged),
		Reports:          reports,
		ProcessingTime:   elapsed,
	})
}

func (h *Handler) writeCompareError(c *gin.Context, language string, err error) {
	switch {
	case errors.Is(err, engine.ErrUnsupportedLanguage):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: err.Error(),
			Code:  "UNSUPPORTED_LANGUAGE",
		})
	case errors.Is(err, engine.ErrEmptySource):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: err.Error(),
			Code:  "EMPTY_SOURCE",
		})
	default:
		log.Error().Err(err).Str("language", language).Msg("Comparison failed")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: "Comparison failed",
			Code:  "INTERNAL_ERROR",
		})
	}
}

func (h *Handler) validateSource(sources ...string) error {
	for _, src := range sources {
		if len(src) > h.cfg.MaxSourceBytes {
			return fmt.Errorf("source exceeds %d bytes", h.cfg.MaxSourceBytes)
		}
	}
	return nil
}

// observeComparison records the per comparison metrics from a finished report.
func observeComparison(report *models.PlagiarismReport, elapsed time.Duration) {
	metrics.ComparisonCount.WithLabelValues(report.Language, string(report.Level)).Inc()
	metrics.ComparisonDuration.WithLabelValues(report.Language).Observe(elapsed.Seconds())
	for i := range report.LayerResults {
		r := &report.LayerResults[i]
		metrics.LayerDuration.WithLabelValues(r.Layer).Observe(r.ExecutionTime.Seconds())
	}
}
