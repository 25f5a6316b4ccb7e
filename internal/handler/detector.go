package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"textorigin/internal/service"
)

// DetectorHandler serves prediction, retraining and model status.
type DetectorHandler struct {
	detector  *service.DetectorService
	scheduler *service.RetrainScheduler
	corpus    *service.CorpusService
	logger    *zap.Logger
}

func NewDetectorHandler(detector *service.DetectorService, scheduler *service.RetrainScheduler, corpus *service.CorpusService, logger *zap.Logger) *DetectorHandler {
	return &DetectorHandler{detector: detector, scheduler: scheduler, corpus: corpus, logger: logger}
}

type predictRequest struct {
	Text string `json:"text"`
}

// Predict classifies a text.
// POST /predict
func (h *DetectorHandler) Predict(c *gin.Context) {
	var req predictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortJSON(c, http.StatusBadRequest, msgNoText)
		return
	}

	pred, err := h.detector.Predict(c.Request.Context(), req.Text)
	switch {
	case errors.Is(err, service.ErrEmptyText):
		abortJSON(c, http.StatusBadRequest, msgNoText)
		return
	case errors.Is(err, service.ErrModelUnavailable):
		abortJSON(c, http.StatusInternalServerError, msgModelMissing)
		return
	case err != nil:
		h.logger.Error("Prediction failed", zap.Error(err))
		abortJSON(c, http.StatusInternalServerError, msgPredictFailed)
		return
	}
	c.JSON(http.StatusOK, pred)
}

// RetrainModel retrains synchronously and reports the new model version.
// POST /retrain_model
func (h *DetectorHandler) RetrainModel(c *gin.Context) {
	job, res, err := h.scheduler.RunNow(c.Request.Context(), "retrain_model")
	if errors.Is(err, service.ErrInsufficientData) {
		abortJSON(c, http.StatusInternalServerError, msgRetrainFailed+msgInsufficient)
		return
	}
	if err != nil {
		h.logger.Error("Retrain request failed", zap.Error(err), zap.String("job_id", job.ID))
		abortJSON(c, http.StatusInternalServerError, msgRetrainFailed+err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       msgRetrained,
		"model_version": res.Version,
		"samples":       res.Samples,
		"job_id":        job.ID,
	})
}

// ListJobs returns the retrain job history, newest first.
// GET /retrain_jobs
func (h *DetectorHandler) ListJobs(c *gin.Context) {
	jobs := h.scheduler.Jobs()
	c.JSON(http.StatusOK, gin.H{
		"jobs":  jobs,
		"count": len(jobs),
		"mode":  h.scheduler.Mode(),
	})
}

// GetJob returns one retrain job.
// GET /retrain_jobs/:id
func (h *DetectorHandler) GetJob(c *gin.Context) {
	job, err := h.scheduler.Job(c.Param("id"))
	if err != nil {
		abortJSON(c, statusFor(err), msgJobNotFound)
		return
	}
	c.JSON(http.StatusOK, job)
}

// Health reports whether a model is loaded and the corpus is reachable.
// GET /health
func (h *DetectorHandler) Health(c *gin.Context) {
	status := h.detector.Status()
	count, err := h.corpus.Count(c.Request.Context())
	if err != nil {
		h.logger.Error("Health check could not reach corpus store", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "model": status, "error": "corpus store unreachable"})
		return
	}
	state := "ok"
	if !status.Loaded {
		state = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{"status": state, "model": status, "corpus_size": count})
}
