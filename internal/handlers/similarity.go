package handlers

import (
	"net/http"

	"edurank/internal/apperr"
	"edurank/internal/models"
	"edurank/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SimilarityHandler handles HTTP requests for similarity recomputation.
type SimilarityHandler struct {
	similarity *services.SimilarityService
}

// NewSimilarityHandler creates a new similarity handler.
func NewSimilarityHandler(similarity *services.SimilarityService) *SimilarityHandler {
	return &SimilarityHandler{similarity: similarity}
}

// Recompute handles POST /api/similarity/:id/recompute
//
// The optional type query parameter restricts the run to one edge type;
// without it all three are recomputed.
func (h *SimilarityHandler) Recompute(c *gin.Context) {
	contentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperr.NewValidation("id", "invalid content id"))
		return
	}

	ctx := c.Request.Context()
	var written int
	switch models.SimilarityType(c.Query("type")) {
	case models.SimilarityContentBased:
		written, err = h.similarity.CalculateContentBasedSimilarity(ctx, contentID)
	case models.SimilarityTagBased:
		written, err = h.similarity.CalculateTagBasedSimilarity(ctx, contentID)
	case models.SimilarityCollaborative:
		written, err = h.similarity.CalculateCollaborativeSimilarity(ctx, contentID)
	case "":
		written, err = h.similarity.CalculateAllSimilarities(ctx, contentID)
	default:
		respondError(c, apperr.NewValidation("type", "unknown similarity type: "+c.Query("type")))
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"edgesWritten": written})
}
