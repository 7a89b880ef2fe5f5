package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/justsurfingit/job-board/internal/dtos"
	"github.com/justsurfingit/job-board/internal/logger"
	"github.com/justsurfingit/job-board/internal/models"
	"github.com/justsurfingit/job-board/internal/services"
)

// SavedJobHandler serves /saved-jobs. Every route runs behind RequireAuth and
// the jobseeker role check.
type SavedJobHandler struct {
	SavedJobService *services.SavedJobService
	log             *logger.Logger
}

func NewSavedJobHandler(s *services.SavedJobService, log *logger.Logger) *SavedJobHandler {
	return &SavedJobHandler{SavedJobService: s, log: log.With("handler", "SavedJobHandler")}
}

// List is GET /saved-jobs
func (h *SavedJobHandler) List(c *gin.Context) {
	var q dtos.SavedJobListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, h.log, bindError(err))
		return
	}
	res, err := h.SavedJobService.List(c.Request.Context(), currentUserID(c), services.ListOptions{
		Page:     q.Page,
		Limit:    q.Limit,
		Status:   models.ApplicationStatus(q.Status),
		Priority: models.Priority(q.Priority),
		SortBy:   q.SortBy,
		Query:    q.Q,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, http.StatusOK, res)
}

// Save is POST /saved-jobs/:jobId. The body is optional.
func (h *SavedJobHandler) Save(c *gin.Context) {
	jobID, err := pathID(c, "jobId")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	var req dtos.SaveJobRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, h.log, bindError(err))
		return
	}
	saved, err := h.SavedJobService.Save(c.Request.Context(), currentUserID(c), jobID, services.SaveOptions{
		Notes:    req.Notes,
		Tags:     req.Tags,
		Priority: models.Priority(req.Priority),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, http.StatusCreated, saved, gin.H{"message": "Job saved successfully"})
}

// Remove is DELETE /saved-jobs/:jobId
func (h *SavedJobHandler) Remove(c *gin.Context) {
	jobID, err := pathID(c, "jobId")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if err := h.SavedJobService.Remove(c.Request.Context(), currentUserID(c), jobID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Job removed from saved list"})
}

// Check is GET /saved-jobs/:jobId/check
func (h *SavedJobHandler) Check(c *gin.Context) {
	jobID, err := pathID(c, "jobId")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	saved, ok, err := h.SavedJobService.Lookup(c.Request.Context(), currentUserID(c), jobID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	data := gin.H{"isSaved": ok}
	if ok {
		data["savedJob"] = saved
	}
	respondOK(c, http.StatusOK, data)
}

// Details is GET /saved-jobs/:jobId/details
func (h *SavedJobHandler) Details(c *gin.Context) {
	jobID, err := pathID(c, "jobId")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	view, err := h.SavedJobService.Get(c.Request.Context(), currentUserID(c), jobID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, http.StatusOK, view)
}

// Update is PUT /saved-jobs/:jobId
func (h *SavedJobHandler) Update(c *gin.Context) {
	jobID, err := pathID(c, "jobId")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	var req dtos.UpdateSavedJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, bindError(err))
		return
	}
	patch := services.SavedJobPatch{
		Notes:         req.Notes,
		Tags:          req.Tags,
		ReminderDate:  req.ReminderDate,
		ClearReminder: req.ClearReminder,
	}
	if req.Priority != nil {
		p := models.Priority(*req.Priority)
		patch.Priority = &p
	}
	if req.ApplicationStatus != nil {
		s := models.ApplicationStatus(*req.ApplicationStatus)
		patch.ApplicationStatus = &s
	}
	saved, err := h.SavedJobService.Update(c.Request.Context(), currentUserID(c), jobID, patch)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, http.StatusOK, saved, gin.H{"message": "Saved job updated successfully"})
}

// Bulk is POST /saved-jobs/bulk
func (h *SavedJobHandler) Bulk(c *gin.Context) {
	var req dtos.BulkSavedJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, bindError(err))
		return
	}
	res, err := h.SavedJobService.Bulk(c.Request.Context(), currentUserID(c), services.BulkOperation{
		Action:            req.Action,
		JobIDs:            req.JobIDs,
		Priority:          models.Priority(req.Priority),
		ApplicationStatus: models.ApplicationStatus(req.ApplicationStatus),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, http.StatusOK, res)
}

// Analytics is GET /saved-jobs/analytics/overview
func (h *SavedJobHandler) Analytics(c *gin.Context) {
	res, err := h.SavedJobService.Analytics(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, http.StatusOK, res)
}

// Stats is GET /saved-jobs/stats
func (h *SavedJobHandler) Stats(c *gin.Context) {
	res, err := h.SavedJobService.Stats(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, http.StatusOK, res)
}

// UpcomingDeadlines is GET /saved-jobs/deadlines/upcoming?days=
func (h *SavedJobHandler) UpcomingDeadlines(c *gin.Context) {
	days := services.DeadlineWindowDays(queryInt(c, "days", services.DefaultDeadlineWindowDays))
	res, err := h.SavedJobService.UpcomingDeadlines(c.Request.Context(), currentUserID(c), days)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, http.StatusOK, res, gin.H{"days": days})
}

// ExportCSV is GET /saved-jobs/export/csv. The file is rendered fully before
// any byte is written so a failure can still produce a JSON error.
func (h *SavedJobHandler) ExportCSV(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.SavedJobService.ExportCSV(c.Request.Context(), currentUserID(c), &buf); err != nil {
		respondError(c, h.log, err)
		return
	}
	filename := "saved-jobs-" + time.Now().UTC().Format("2006-01-02") + ".csv"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
