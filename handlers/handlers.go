package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"alt-text-pipeline/config"
	"alt-text-pipeline/database"
	"alt-text-pipeline/export"
	"alt-text-pipeline/metrics"
	"alt-text-pipeline/models"
	"alt-text-pipeline/service"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

// Handlers represents the HTTP handlers
type Handlers struct {
	config *config.Config
	db     *database.Database
	svc    *service.Service
}

// NewHandlers creates new HTTP handlers
func NewHandlers(cfg *config.Config, db *database.Database, svc *service.Service) *Handlers {
	return &Handlers{config: cfg, db: db, svc: svc}
}

// HealthCheck handles health check requests
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "alt-text-pipeline",
	})
}

// GetModels lists the models the inference provider serves
func (h *Handlers) GetModels(c *gin.Context) {
	modelNames, err := h.svc.ListModels()
	if err != nil {
		log.WithError(err).Error("Failed to fetch models")
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Cannot reach the inference endpoint. Is it running?",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"models": modelNames})
}

// ProcessImages accepts a multipart batch (model field + images files)
// and responds with the count of successfully persisted items.
func (h *Handlers) ProcessImages(c *gin.Context) {
	model := c.PostForm("model")

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form: " + err.Error()})
		return
	}

	files := form.File["images"]
	items := make([]models.Item, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("failed to open %q: %v", fh.Filename, err)})
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("failed to read %q: %v", fh.Filename, err)})
			return
		}
		items = append(items, models.Item{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	outcome, err := h.svc.ProcessBatch(items, model)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.WithError(err).Error("Batch processing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   outcome.Succeeded,
	})
}

// GetResults returns the most recent results
func (h *Handlers) GetResults(c *gin.Context) {
	limit := h.config.DefaultResultLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	results, err := h.db.GetResults(limit)
	if err != nil {
		log.WithError(err).Error("Failed to fetch results")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch results"})
		return
	}

	if results == nil {
		results = []models.Result{}
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// ExportCSV streams a CSV projection of a date-bounded result set
func (h *Handlers) ExportCSV(c *gin.Context) {
	fromStr := c.Query("from")
	toStr := c.Query("to")

	from, to, err := export.ParseDateRange(fromStr, toStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results, err := h.db.GetResultsByDateRange(from, to)
	if err != nil {
		log.WithError(err).Error("Failed to fetch results for export")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch results"})
		return
	}

	csvText, err := export.WriteCSV(results)
	if err != nil {
		log.WithError(err).Error("Failed to build CSV")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build CSV"})
		return
	}

	log.Infof("Exporting %d results for %s..%s", len(results), fromStr, toStr)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(fromStr, toStr)))
	c.Data(http.StatusOK, "text/csv", []byte(csvText))
}

// DeleteRequest is the body of a bulk delete call
type DeleteRequest struct {
	IDs []int64 `json:"ids"`
}

// DeleteResults removes the requested rows and reports how many existed
func (h *Handlers) DeleteResults(c *gin.Context) {
	var req DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ids array is required"})
		return
	}
	if len(req.IDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ids array is required"})
		return
	}

	deleted, err := h.db.DeleteResults(req.IDs)
	if err != nil {
		log.WithError(err).Error("Failed to delete results")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete results"})
		return
	}

	metrics.ResultsDeletedTotal.Add(float64(deleted))
	log.Infof("Deleted %d of %d requested results", deleted, len(req.IDs))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"deleted": deleted,
	})
}
