package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/justsurfingit/job-board/internal/dtos"
	"github.com/justsurfingit/job-board/internal/logger"
	"github.com/justsurfingit/job-board/internal/recommend"
	"github.com/justsurfingit/job-board/internal/services"
)

// JobHandler serves job postings and everything the recommender exposes.
type JobHandler struct {
	LLMService      *services.LLMService
	JobService      *services.JobService
	Matcher         *services.MatcherService
	Recommendations *services.RecommendationService
	log             *logger.Logger
}

func NewJobHandler(llm *services.LLMService, j *services.JobService, m *services.MatcherService, r *services.RecommendationService, log *logger.Logger) *JobHandler {
	return &JobHandler{
		LLMService:      llm,
		JobService:      j,
		Matcher:         m,
		Recommendations: r,
		log:             log.With("handler", "JobHandler"),
	}
}

// ParseJob is the POST /jobs/extract endpoint
func (h *JobHandler) ParseJob(c *gin.Context) {
	var req dtos.JobExtractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, bindError(err))
		return
	}
	extracted, err := h.LLMService.ExtractJobDetails(c.Request.Context(), req.RawHTML)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	// RawMessage keeps gin from re-escaping the model's JSON
	respondOK(c, http.StatusOK, extracted)
}

// CreateJob is POST /jobs. The caller becomes the posting's employer.
func (h *JobHandler) CreateJob(c *gin.Context) {
	var req dtos.JobCreationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, bindError(err))
		return
	}
	job, err := h.JobService.CreateJob(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, http.StatusCreated, job)
}

// UpdateJob is PUT /jobs/:id. Only the posting's employer or an admin may
// change it.
func (h *JobHandler) UpdateJob(c *gin.Context) {
	jobID, err := pathID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	var req dtos.JobUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, bindError(err))
		return
	}
	job, err := h.JobService.UpdateJob(c.Request.Context(), currentSession(c), jobID, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, http.StatusOK, job, gin.H{"message": "Job updated successfully"})
}

// DeleteJob is DELETE /jobs/:id
func (h *JobHandler) DeleteJob(c *gin.Context) {
	jobID, err := pathID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if err := h.JobService.DeleteJob(c.Request.Context(), currentSession(c), jobID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Job deleted successfully"})
}

// ListJobs is GET /jobs
func (h *JobHandler) ListJobs(c *gin.Context) {
	var q dtos.JobListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, h.log, bindError(err))
		return
	}
	page, err := h.JobService.ListJobs(c.Request.Context(), q)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, http.StatusOK, page.Jobs, gin.H{"pagination": page.Pagination})
}

// GetJob is GET /jobs/:id. Anonymous callers are allowed.
func (h *JobHandler) GetJob(c *gin.Context) {
	jobID, err := pathID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	detail, err := h.JobService.GetJob(c.Request.Context(), jobID, currentUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, http.StatusOK, detail)
}

// LegacyRecommendations is GET /jobs/recommendations, answered in-process.
func (h *JobHandler) LegacyRecommendations(c *gin.Context) {
	resp, err := h.Matcher.Recommend(c.Request.Context(), currentUserID(c), queryInt(c, "limit", recommend.DefaultLimit))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondRecommendations(c, resp, nil)
}

// AIRecommendations is GET /jobs/ai/recommendations: the external service
// with the in-process matcher as fallback.
func (h *JobHandler) AIRecommendations(c *gin.Context) {
	limit := queryInt(c, "limit", recommend.DefaultLimit)
	if limit > recommend.MaxLimit {
		limit = recommend.MaxLimit
	}
	res, err := h.Recommendations.Recommend(c.Request.Context(), currentUserID(c), limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondRecommendations(c, res.Response, gin.H{"source": res.Source, "cached": res.Cached})
}

func respondRecommendations(c *gin.Context, resp *recommend.Response, extra gin.H) {
	body := gin.H{
		"metadata":    resp.Metadata,
		"userProfile": resp.UserProfile,
		"suggestions": resp.Suggestions,
	}
	if resp.Message != "" {
		body["message"] = resp.Message
	}
	for k, v := range extra {
		body[k] = v
	}
	respondOK(c, http.StatusOK, resp.Jobs, body)
}

// Trending is GET /jobs/ai/trending?limit=&days=
func (h *JobHandler) Trending(c *gin.Context) {
	jobs, err := h.Matcher.Trending(c.Request.Context(),
		queryInt(c, "limit", services.DefaultTrendingLimit),
		queryInt(c, "days", services.DefaultTrendingDays))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, http.StatusOK, jobs)
}

// PredictSalary is POST /jobs/ai/predict-salary
func (h *JobHandler) PredictSalary(c *gin.Context) {
	var req dtos.SalaryPredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, bindError(err))
		return
	}
	prediction, err := h.LLMService.PredictSalary(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, http.StatusOK, prediction)
}

// TrackInteraction is POST /jobs/ai/track/:jobId
func (h *JobHandler) TrackInteraction(c *gin.Context) {
	jobID, err := pathID(c, "jobId")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	var req dtos.TrackInteractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, bindError(err))
		return
	}
	if err := h.JobService.TrackInteraction(c.Request.Context(), currentUserID(c), jobID, req.Action); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Interaction tracked"})
}
