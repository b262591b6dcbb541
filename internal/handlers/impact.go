package handlers

import (
	"net/http"

	"edurank/internal/apperr"
	"edurank/internal/models"
	"edurank/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ImpactHandler handles HTTP requests for impact metrics.
type ImpactHandler struct {
	impact *services.ImpactService
}

// NewImpactHandler creates a new impact handler.
func NewImpactHandler(impact *services.ImpactService) *ImpactHandler {
	return &ImpactHandler{impact: impact}
}

// ResearcherMetrics handles GET /api/impact/researchers/:id
func (h *ImpactHandler) ResearcherMetrics(c *gin.Context) {
	researcherID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperr.NewValidation("id", "invalid researcher id"))
		return
	}

	metrics, err := h.impact.CalculateResearcherMetrics(c.Request.Context(), researcherID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, metrics)
}

// FieldNormalized handles GET /api/impact/researchers/:id/field
func (h *ImpactHandler) FieldNormalized(c *gin.Context) {
	researcherID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperr.NewValidation("id", "invalid researcher id"))
		return
	}
	field := c.Query("field")
	if field == "" {
		respondError(c, apperr.NewValidation("field", "field is required"))
		return
	}

	impact, err := h.impact.CalculateFieldNormalizedImpact(c.Request.Context(), researcherID, field)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{
		"researcherId":          researcherID,
		"field":                 field,
		"fieldNormalizedImpact": impact,
	})
}

// PublicationAltmetrics handles GET /api/impact/publications/:id/altmetrics
func (h *ImpactHandler) PublicationAltmetrics(c *gin.Context) {
	publicationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperr.NewValidation("id", "invalid publication id"))
		return
	}

	score, err := h.impact.CalculatePublicationAltmetrics(c.Request.Context(), publicationID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{
		"publicationId":  publicationID,
		"altmetricScore": score,
	})
}

// MetricHistory handles GET /api/impact/history/:entityType/:id
func (h *ImpactHandler) MetricHistory(c *gin.Context) {
	entityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperr.NewValidation("id", "invalid entity id"))
		return
	}
	entityType := models.EntityType(c.Param("entityType"))
	metricType := models.MetricType(c.Query("metric"))
	if metricType == "" {
		respondError(c, apperr.NewValidation("metric", "metric is required"))
		return
	}

	record, err := h.impact.GetMetricHistory(c.Request.Context(), entityID, entityType, metricType, c.Query("field"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, record)
}
