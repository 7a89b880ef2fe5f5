package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/justsurfingit/job-board/internal/apierr"
	"github.com/justsurfingit/job-board/internal/logger"
	"github.com/justsurfingit/job-board/internal/preferences"
	"github.com/justsurfingit/job-board/internal/services"
)

const maxPreferencesBody = 64 << 10

type PreferenceHandler struct {
	PreferenceService *services.PreferenceService
	Recommendations   *services.RecommendationService
	log               *logger.Logger
}

// NewPreferenceHandler accepts a nil recommendation service.
func NewPreferenceHandler(p *services.PreferenceService, r *services.RecommendationService, log *logger.Logger) *PreferenceHandler {
	return &PreferenceHandler{PreferenceService: p, Recommendations: r, log: log.With("handler", "PreferenceHandler")}
}

// Get is GET /jobs/preferences
func (h *PreferenceHandler) Get(c *gin.Context) {
	res, err := h.PreferenceService.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, http.StatusOK, res)
}

// Update is PUT /jobs/preferences. The body is validated as loose JSON
// before any typed decoding, so shape errors come back as a list.
func (h *PreferenceHandler) Update(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPreferencesBody))
	if err != nil {
		respondError(c, h.log, apierr.InvalidInput("could not read request body"))
		return
	}
	obj, res := preferences.ValidateJSON(raw)
	if !res.IsValid {
		respondError(c, h.log, apierr.Validation("invalid preferences", res.Errors...))
		return
	}
	userID := currentUserID(c)
	out, err := h.PreferenceService.Update(c.Request.Context(), userID, obj)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.Recommendations.Invalidate(c.Request.Context(), userID)
	respondOK(c, http.StatusOK, out, gin.H{"message": "Preferences updated successfully"})
}
