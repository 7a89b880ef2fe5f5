package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/justsurfingit/job-board/internal/dtos"
	"github.com/justsurfingit/job-board/internal/logger"
	"github.com/justsurfingit/job-board/internal/models"
	"github.com/justsurfingit/job-board/internal/services"
)

// ApplicationHandler serves /applications. Role checks happen in the route
// groups; ownership checks happen in the service.
type ApplicationHandler struct {
	ApplicationService *services.ApplicationService
	log                *logger.Logger
}

func NewApplicationHandler(a *services.ApplicationService, log *logger.Logger) *ApplicationHandler {
	return &ApplicationHandler{ApplicationService: a, log: log.With("handler", "ApplicationHandler")}
}

// Apply is POST /applications/:jobId. The body is optional.
func (h *ApplicationHandler) Apply(c *gin.Context) {
	jobID, err := pathID(c, "jobId")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	var req dtos.ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, h.log, bindError(err))
		return
	}
	app, err := h.ApplicationService.Apply(c.Request.Context(), currentUserID(c), jobID, services.ApplyOptions{
		CoverLetter:    req.CoverLetter,
		ExpectedSalary: req.ExpectedSalary,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, http.StatusCreated, app, gin.H{"message": "Application submitted successfully"})
}

// Withdraw is DELETE /applications/:id
func (h *ApplicationHandler) Withdraw(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if err := h.ApplicationService.Withdraw(c.Request.Context(), currentUserID(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Application withdrawn successfully"})
}

// Mine is GET /applications/me
func (h *ApplicationHandler) Mine(c *gin.Context) {
	var q dtos.ApplicationListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, h.log, bindError(err))
		return
	}
	res, err := h.ApplicationService.Mine(c.Request.Context(), currentUserID(c), q.Page, q.Limit, models.ApplicationState(q.Status))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, http.StatusOK, res)
}

// ForJob is GET /applications/job/:jobId
func (h *ApplicationHandler) ForJob(c *gin.Context) {
	jobID, err := pathID(c, "jobId")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	apps, err := h.ApplicationService.ForJob(c.Request.Context(), currentSession(c), jobID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, http.StatusOK, apps, gin.H{"count": len(apps)})
}

// UpdateStatus is PUT /applications/:id
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	var req dtos.UpdateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, bindError(err))
		return
	}
	patch := services.ApplicationPatch{EmployerNotes: req.EmployerNotes, InterviewDate: req.InterviewDate}
	if req.Status != nil {
		st := models.ApplicationState(*req.Status)
		patch.Status = &st
	}
	app, err := h.ApplicationService.UpdateStatus(c.Request.Context(), currentSession(c), id, patch)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, http.StatusOK, app, gin.H{"message": "Application updated successfully"})
}
