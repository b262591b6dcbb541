package handlers

import (
	"net/http"
	"strconv"

	"edurank/internal/apperr"
	"edurank/internal/auth"
	"edurank/internal/models"
	"edurank/internal/services"
	"edurank/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RecommendationHandler handles HTTP requests for recommendations.
type RecommendationHandler struct {
	recommendations *services.RecommendationService
}

// NewRecommendationHandler creates a new recommendation handler.
func NewRecommendationHandler(recommendations *services.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{recommendations: recommendations}
}

type generateRequest struct {
	Limit int `json:"limit"`
}

// Generate handles POST /api/recommendations
func (h *RecommendationHandler) Generate(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, apperr.Envelope{Error: "authentication required", Code: "UNAUTHORIZED"})
		return
	}

	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		respondError(c, apperr.NewValidation("body", "invalid request body"))
		return
	}

	result, err := h.recommendations.GenerateRecommendations(c.Request.Context(), userID, req.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, result)
}

// List handles GET /api/recommendations
func (h *RecommendationHandler) List(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, apperr.Envelope{Error: "authentication required", Code: "UNAUTHORIZED"})
		return
	}

	filter, err := parseRecommendationFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}

	recs, count, err := h.recommendations.ListRecommendations(c.Request.Context(), userID, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{
		"recommendations": recs,
		"count":           count,
	})
}

func parseRecommendationFilter(c *gin.Context) (storage.RecommendationFilter, error) {
	var filter storage.RecommendationFilter

	if v := c.Query("status"); v != "" {
		status := models.RecommendationStatus(v)
		if !models.ValidRecommendationStatus(status) {
			return filter, apperr.NewValidation("status", "unknown status: "+v)
		}
		filter.Status = &status
	}
	if v := c.Query("reason"); v != "" {
		reason := models.RecommendationReason(v)
		filter.Reason = &reason
	}
	if v := c.Query("contentType"); v != "" {
		filter.ContentType = &v
	}
	if v := c.Query("categoryId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, apperr.NewValidation("categoryId", "invalid category id")
		}
		filter.CategoryID = &id
	}
	if v := c.Query("tagId"); v != "" {
		filter.TagID = &v
	}
	if v := c.Query("minScore"); v != "" {
		score, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return filter, apperr.NewValidation("minScore", "invalid minimum score")
		}
		filter.MinScore = &score
	}

	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	filter.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return filter, nil
}

type statusRequest struct {
	Status models.RecommendationStatus `json:"status" binding:"required"`
}

// UpdateStatus handles PUT /api/recommendations/:id
func (h *RecommendationHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperr.NewValidation("id", "invalid recommendation id"))
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.NewValidation("status", "status is required"))
		return
	}

	rec, err := h.recommendations.UpdateRecommendationStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, rec)
}

type feedbackRequest struct {
	IsRelevant *bool `json:"isRelevant" binding:"required"`
}

// Feedback handles POST /api/recommendations/:id/feedback
func (h *RecommendationHandler) Feedback(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperr.NewValidation("id", "invalid recommendation id"))
		return
	}

	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.NewValidation("isRelevant", "isRelevant is required"))
		return
	}

	rec, err := h.recommendations.ProcessRecommendationFeedback(c.Request.Context(), id, *req.IsRelevant)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, rec)
}
