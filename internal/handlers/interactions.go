package handlers

import (
	"net/http"

	"edurank/internal/apperr"
	"edurank/internal/auth"
	"edurank/internal/models"
	"edurank/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InteractionHandler handles HTTP requests for content interactions.
type InteractionHandler struct {
	interactions *services.InteractionService
}

// NewInteractionHandler creates a new interaction handler.
func NewInteractionHandler(interactions *services.InteractionService) *InteractionHandler {
	return &InteractionHandler{interactions: interactions}
}

type recordInteractionRequest struct {
	ContentID            uuid.UUID `json:"contentId" binding:"required"`
	InteractionType      string    `json:"interactionType" binding:"required"`
	Rating               *int      `json:"rating"`
	DurationSeconds      *int      `json:"durationSeconds"`
	CompletionPercentage *float64  `json:"completionPercentage"`
}

// Record handles POST /api/interactions
func (h *InteractionHandler) Record(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, apperr.Envelope{Error: "authentication required", Code: "UNAUTHORIZED"})
		return
	}

	var req recordInteractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.NewValidation("body", "contentId and interactionType are required"))
		return
	}

	interaction, err := h.interactions.RecordInteraction(c.Request.Context(), userID, req.ContentID,
		models.InteractionType(req.InteractionType), &models.InteractionDetails{
			Rating:               req.Rating,
			DurationSeconds:      req.DurationSeconds,
			CompletionPercentage: req.CompletionPercentage,
		})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, interaction)
}

type bookmarkRequest struct {
	ContentID uuid.UUID `json:"contentId" binding:"required"`
}

// ToggleBookmark handles POST /api/interactions/bookmark
func (h *InteractionHandler) ToggleBookmark(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, apperr.Envelope{Error: "authentication required", Code: "UNAUTHORIZED"})
		return
	}

	var req bookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.NewValidation("contentId", "contentId is required"))
		return
	}

	toggle, err := h.interactions.ToggleBookmark(c.Request.Context(), userID, req.ContentID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, toggle)
}

type ratingRequest struct {
	ContentID uuid.UUID `json:"contentId" binding:"required"`
	Rating    int       `json:"rating" binding:"required"`
}

// Rate handles POST /api/interactions/rating
func (h *InteractionHandler) Rate(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, apperr.Envelope{Error: "authentication required", Code: "UNAUTHORIZED"})
		return
	}

	var req ratingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.NewValidation("body", "contentId and rating are required"))
		return
	}

	interaction, err := h.interactions.RateContent(c.Request.Context(), userID, req.ContentID, req.Rating)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, interaction)
}

// PopularityStats handles GET /api/content/:id/popularity
func (h *InteractionHandler) PopularityStats(c *gin.Context) {
	contentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperr.NewValidation("id", "invalid content id"))
		return
	}

	stats, err := h.interactions.GetContentPopularityStats(c.Request.Context(), contentID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, stats)
}
