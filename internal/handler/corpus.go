package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"textorigin/internal/models"
	"textorigin/internal/repository"
	"textorigin/internal/service"
)

// CorpusHandler serves the admin corpus endpoints.
type CorpusHandler struct {
	corpus   *service.CorpusService
	detector *service.DetectorService
	logger   *zap.Logger
}

func NewCorpusHandler(corpus *service.CorpusService, detector *service.DetectorService, logger *zap.Logger) *CorpusHandler {
	return &CorpusHandler{corpus: corpus, detector: detector, logger: logger}
}

type addDataRequest struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

type deleteDataRequest struct {
	Text string `json:"text"`
}

// AddData appends a labeled sample to the corpus.
// POST /add_data
func (h *CorpusHandler) AddData(c *gin.Context) {
	var req addDataRequest
	// AdminAuth may already have read the body
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil || req.Text == "" || req.Label == "" {
		abortJSON(c, http.StatusBadRequest, msgTextAndLabel)
		return
	}

	sample, job, err := h.corpus.Add(c.Request.Context(), req.Text, req.Label)
	switch {
	case errors.Is(err, service.ErrEmptyText):
		abortJSON(c, http.StatusBadRequest, msgTextAndLabel)
		return
	case errors.Is(err, service.ErrInvalidLabel):
		abortJSON(c, http.StatusBadRequest, msgInvalidLabel)
		return
	case err != nil:
		h.logger.Error("Failed to add sample", zap.Error(err))
		abortJSON(c, http.StatusInternalServerError, msgInternal)
		return
	}

	resp := gin.H{"message": msgAdded, "id": sample.ID}
	if job != nil {
		resp["retrain_job"] = job
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteData removes the first sample with exactly the given text.
// POST /delete_data
func (h *CorpusHandler) DeleteData(c *gin.Context) {
	var req deleteDataRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil || req.Text == "" {
		abortJSON(c, http.StatusBadRequest, msgDeleteNeedsText)
		return
	}

	job, err := h.corpus.Delete(c.Request.Context(), req.Text)
	switch {
	case errors.Is(err, service.ErrEmptyText):
		abortJSON(c, http.StatusBadRequest, msgDeleteNeedsText)
		return
	case errors.Is(err, repository.ErrNotFound):
		abortJSON(c, http.StatusNotFound, msgTextNotFound)
		return
	case err != nil:
		h.logger.Error("Failed to delete sample", zap.Error(err))
		abortJSON(c, http.StatusInternalServerError, msgInternal)
		return
	}

	resp := gin.H{"message": msgDeleted}
	if job != nil {
		resp["retrain_job"] = job
	}
	c.JSON(http.StatusOK, resp)
}

type dataStatusResponse struct {
	Data  []models.Sample     `json:"data"`
	Stats models.CorpusStats  `json:"stats"`
	Model service.ModelStatus `json:"model"`
}

// GetDataStatus returns the whole corpus with statistics.
// GET /get_data_status
func (h *CorpusHandler) GetDataStatus(c *gin.Context) {
	samples, stats, err := h.corpus.Snapshot(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to load data status", zap.Error(err))
		abortJSON(c, http.StatusInternalServerError, "Fehler beim Abrufen der Daten: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, dataStatusResponse{Data: samples, Stats: stats, Model: h.detector.Status()})
}

// ExportData downloads the corpus as JSON.
// GET /export_data
func (h *CorpusHandler) ExportData(c *gin.Context) {
	onlyUntrained := c.Query("untrained") == "true"

	samples, err := h.corpus.Export(c.Request.Context(), onlyUntrained)
	if err != nil {
		h.logger.Error("Failed to export corpus", zap.Error(err))
		abortJSON(c, http.StatusInternalServerError, "Fehler beim Abrufen der Daten: "+err.Error())
		return
	}

	c.Header("Content-Disposition", "attachment; filename=training_data.json")
	c.JSON(http.StatusOK, samples)
}
