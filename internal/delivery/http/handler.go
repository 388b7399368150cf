package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/linkscribe/backend/config"
	"github.com/linkscribe/backend/internal/domain"
	"github.com/linkscribe/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	keywords *usecase.KeywordService
	cfg      *config.Config
}

// NewHandler creates a new HTTP handler
func NewHandler(keywords *usecase.KeywordService, cfg *config.Config) *Handler {
	return &Handler{
		keywords: keywords,
		cfg:      cfg,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "linkscribe-backend",
		"version": "1.0.0",
	})
}

// addKeywordRequest is the body of POST /api/v1/keywords
type addKeywordRequest struct {
	Keyword     string    `json:"keyword" binding:"required"`
	ScheduledAt time.Time `json:"scheduledAt" binding:"required"`
}

// ListKeywords returns every keyword job, earliest schedule first
func (h *Handler) ListKeywords(c *gin.Context) {
	jobs, err := h.keywords.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list keywords"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"keywords": jobs})
}

// AddKeyword schedules a single keyword job
func (h *Handler) AddKeyword(c *gin.Context) {
	var req addKeywordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "keyword and scheduledAt are required"})
		return
	}

	job, err := h.keywords.Add(c.Request.Context(), req.Keyword, req.ScheduledAt)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "keyword must not be empty"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save keyword"})
		return
	}

	c.JSON(http.StatusCreated, job)
}

// DeleteKeyword removes one keyword job by id
func (h *Handler) DeleteKeyword(c *gin.Context) {
	err := h.keywords.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "keyword not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete keyword"})
		return
	}
	c.Status(http.StatusNoContent)
}

// ImportKeywords accepts a CSV upload and schedules a job per row
func (h *Handler) ImportKeywords(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart 'file' field is required"})
		return
	}
	defer file.Close()

	result, err := h.keywords.ImportCSV(c.Request.Context(), file)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed CSV file"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "import failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetSettings exposes the non-secret runtime configuration for the dashboard
func (h *Handler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"marketplace":       h.cfg.Catalog.Marketplace,
		"partnerTag":        h.cfg.Catalog.PartnerTag,
		"generatorModel":    h.cfg.Generator.Model,
		"schedulerEnabled":  h.cfg.Scheduler.Enabled,
		"schedulerInterval": h.cfg.Scheduler.Interval.String(),
		"articlePostStatus": h.cfg.Article.PostStatus,
		"productCount":      h.cfg.Article.ProductCount,
	})
}
