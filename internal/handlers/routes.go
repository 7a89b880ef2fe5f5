package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/justsurfingit/job-board/internal/middleware"
	"github.com/justsurfingit/job-board/internal/models"
)

type Handlers struct {
	Health      *HealthHandler
	Auth        *AuthHandler
	Job         *JobHandler
	SavedJob    *SavedJobHandler
	Preference  *PreferenceHandler
	Application *ApplicationHandler
}

// Register mounts every route on api, which is expected to be /api/v1.
func (h *Handlers) Register(api *gin.RouterGroup, am *middleware.AuthMiddleware) {
	api.GET("/health", h.Health.HealthCheck)

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", h.Auth.Register)
		authRoutes.POST("/login", h.Auth.Login)
	}

	jobs := api.Group("/jobs")
	{
		jobs.GET("", h.Job.ListJobs)
		jobs.GET("/:id", am.OptionalAuth(), h.Job.GetJob)

		employer := jobs.Group("", am.RequireAuth(), am.RequireRole(models.RoleEmployer, models.RoleAdmin))
		employer.POST("", h.Job.CreateJob)
		employer.POST("/extract", h.Job.ParseJob)
		employer.PUT("/:id", h.Job.UpdateJob)
		employer.DELETE("/:id", h.Job.DeleteJob)

		signedIn := jobs.Group("", am.RequireAuth())
		signedIn.GET("/recommendations", h.Job.LegacyRecommendations)
		signedIn.GET("/ai/recommendations", h.Job.AIRecommendations)
		signedIn.GET("/ai/trending", h.Job.Trending)
		signedIn.POST("/ai/predict-salary", h.Job.PredictSalary)
		signedIn.POST("/ai/track/:jobId", h.Job.TrackInteraction)
		signedIn.GET("/preferences", h.Preference.Get)
		signedIn.PUT("/preferences", h.Preference.Update)
	}

	applications := api.Group("/applications", am.RequireAuth())
	{
		seeker := applications.Group("", am.RequireRole(models.RoleJobSeeker))
		seeker.GET("/me", h.Application.Mine)
		seeker.POST("/:jobId", h.Application.Apply)
		seeker.DELETE("/:id", h.Application.Withdraw)

		employer := applications.Group("", am.RequireRole(models.RoleEmployer, models.RoleAdmin))
		employer.GET("/job/:jobId", h.Application.ForJob)
		employer.PUT("/:id", h.Application.UpdateStatus)
	}

	saved := api.Group("/saved-jobs", am.RequireAuth(), am.RequireRole(models.RoleJobSeeker))
	{
		saved.GET("", h.SavedJob.List)
		saved.POST("/bulk", h.SavedJob.Bulk)
		saved.GET("/analytics/overview", h.SavedJob.Analytics)
		saved.GET("/stats", h.SavedJob.Stats)
		saved.GET("/deadlines/upcoming", h.SavedJob.UpcomingDeadlines)
		saved.GET("/export/csv", h.SavedJob.ExportCSV)
		saved.POST("/:jobId", h.SavedJob.Save)
		saved.DELETE("/:jobId", h.SavedJob.Remove)
		saved.PUT("/:jobId", h.SavedJob.Update)
		saved.GET("/:jobId/check", h.SavedJob.Check)
		saved.GET("/:jobId/details", h.SavedJob.Details)
	}
}
