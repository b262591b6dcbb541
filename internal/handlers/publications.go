package handlers

import (
	"net/http"

	"edurank/internal/apperr"
	"edurank/internal/models"
	"edurank/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PublicationHandler handles HTTP requests for the publication registry
// and the citation graph.
type PublicationHandler struct {
	publications *services.PublicationService
}

// NewPublicationHandler creates a new publication handler.
func NewPublicationHandler(publications *services.PublicationService) *PublicationHandler {
	return &PublicationHandler{publications: publications}
}

// Create handles POST /api/publications
func (h *PublicationHandler) Create(c *gin.Context) {
	var pub models.Publication
	if err := c.ShouldBindJSON(&pub); err != nil {
		respondError(c, apperr.NewValidation("body", "invalid publication payload"))
		return
	}

	created, err := h.publications.CreatePublication(c.Request.Context(), &pub)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, created)
}

// Get handles GET /api/publications/:id
func (h *PublicationHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperr.NewValidation("id", "invalid publication id"))
		return
	}

	pub, err := h.publications.GetPublication(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, pub)
}

// RecordCitation handles POST /api/citations
func (h *PublicationHandler) RecordCitation(c *gin.Context) {
	var citation models.Citation
	if err := c.ShouldBindJSON(&citation); err != nil {
		respondError(c, apperr.NewValidation("body", "invalid citation payload"))
		return
	}

	created, err := h.publications.RecordCitation(c.Request.Context(), &citation)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, created)
}

// ListCitations handles GET /api/publications/:id/citations
func (h *PublicationHandler) ListCitations(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperr.NewValidation("id", "invalid publication id"))
		return
	}

	citations, err := h.publications.GetPublicationCitations(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{
		"citations": citations,
		"count":     len(citations),
	})
}
