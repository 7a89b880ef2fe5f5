package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/justsurfingit/job-board/internal/apierr"
	"github.com/justsurfingit/job-board/internal/auth"
	"github.com/justsurfingit/job-board/internal/dtos"
	"github.com/justsurfingit/job-board/internal/logger"
	"github.com/justsurfingit/job-board/internal/models"
)

type JobService struct {
	DB       *gorm.DB
	log      *logger.Logger
	savedJob *SavedJobService
}

func NewJobService(db *gorm.DB, log *logger.Logger, saved *SavedJobService) *JobService {
	return &JobService{
		DB:       db,
		log:      log.With("service", "JobService"),
		savedJob: saved,
	}
}

func (s *JobService) CreateJob(ctx context.Context, employerID uint, req *dtos.JobCreationRequest) (*models.Job, error) {
	// the employer must exist and own the posting
	var employer models.User
	if err := s.DB.WithContext(ctx).First(&employer, employerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("employer not found")
		}
		return nil, apierr.Internal("failed to load employer", err)
	}

	status := models.JobStatus(req.Status)
	if status == "" {
		status = models.JobStatusActive
	}
	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = "USD"
	}

	job := &models.Job{
		EmployerID:          employer.ID,
		Title:               strings.TrimSpace(req.Title),
		Company:             strings.TrimSpace(req.Company),
		Location:            req.Location,
		Description:         req.Description,
		JobType:             req.JobType,
		Experience:          req.Experience,
		Industry:            req.Industry,
		Skills:              cleanTags(req.Skills),
		Salary:              models.Salary{Min: req.SalaryMin, Max: req.SalaryMax, Currency: currency},
		IsRemote:            req.IsRemote,
		JobLink:             req.JobLink,
		Status:              status,
		ApplicationDeadline: req.ApplicationDeadline,
	}
	if err := s.DB.WithContext(ctx).Create(job).Error; err != nil {
		return nil, apierr.Internal("failed to create job", err)
	}
	s.log.Info("job created", "job_id", job.ID, "employer_id", employer.ID)
	return job, nil
}

// ownedJob loads a job the caller may change: its employer, or any admin.
func ownedJob(ctx context.Context, db *gorm.DB, caller auth.Session, jobID uint) (*models.Job, error) {
	var job models.Job
	if err := db.WithContext(ctx).First(&job, jobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("job not found")
		}
		return nil, apierr.Internal("failed to load job", err)
	}
	if job.EmployerID != caller.UserID && caller.Role != models.RoleAdmin {
		return nil, apierr.Forbidden("not authorized to change this job")
	}
	return &job, nil
}

var editableJobColumns = []string{
	"title", "company", "description", "location", "job_type", "experience", "industry", "skills",
	"salary_min", "salary_max", "salary_currency", "is_remote", "job_link", "application_deadline",
	"status", "updated_at",
}

// UpdateJob applies a partial update to a posting.
func (s *JobService) UpdateJob(ctx context.Context, caller auth.Session, jobID uint, req *dtos.JobUpdateRequest) (*models.Job, error) {
	job, err := ownedJob(ctx, s.DB, caller, jobID)
	if err != nil {
		return nil, err
	}

	var problems []string
	if req.Title != nil {
		if job.Title = strings.TrimSpace(*req.Title); job.Title == "" {
			problems = append(problems, "title cannot be empty")
		}
	}
	if req.Company != nil {
		if job.Company = strings.TrimSpace(*req.Company); job.Company == "" {
			problems = append(problems, "company cannot be empty")
		}
	}
	if req.Description != nil {
		job.Description = *req.Description
	}
	if req.Location != nil {
		job.Location = *req.Location
	}
	if req.JobType != nil {
		job.JobType = *req.JobType
	}
	if req.Experience != nil {
		job.Experience = *req.Experience
	}
	if req.Industry != nil {
		job.Industry = *req.Industry
	}
	if req.Skills != nil {
		job.Skills = cleanTags(*req.Skills)
	}
	if req.SalaryMin != nil {
		job.Salary.Min = *req.SalaryMin
	}
	if req.SalaryMax != nil {
		job.Salary.Max = *req.SalaryMax
	}
	if job.Salary.Max > 0 && job.Salary.Min > job.Salary.Max {
		problems = append(problems, "salaryMin cannot exceed salaryMax")
	}
	if req.Currency != nil {
		job.Salary.Currency = strings.ToUpper(*req.Currency)
	}
	if req.IsRemote != nil {
		job.IsRemote = *req.IsRemote
	}
	if req.JobLink != nil {
		job.JobLink = *req.JobLink
	}
	if req.ApplicationDeadline != nil {
		job.ApplicationDeadline = req.ApplicationDeadline
	}
	if req.Status != nil {
		job.Status = models.JobStatus(*req.Status)
	}
	if len(problems) > 0 {
		return nil, apierr.Validation("invalid job", problems...)
	}

	// counters are bumped concurrently, so only editable columns are written
	if err := s.DB.WithContext(ctx).Model(job).Select(editableJobColumns).Updates(job).Error; err != nil {
		return nil, apierr.Internal("failed to update job", err)
	}
	s.log.Info("job updated", "job_id", job.ID, "by", caller.UserID)
	return job, nil
}

// DeleteJob soft-deletes a posting and drops every bookmark of it. Existing
// applications are kept for both sides' history.
func (s *JobService) DeleteJob(ctx context.Context, caller auth.Session, jobID uint) error {
	job, err := ownedJob(ctx, s.DB, caller, jobID)
	if err != nil {
		return err
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("job_id = ?", job.ID).Delete(&models.SavedJob{}).Error; err != nil {
			return err
		}
		return tx.Delete(job).Error
	})
	if err != nil {
		return apierr.Internal("failed to delete job", err)
	}
	s.log.Info("job deleted", "job_id", job.ID, "by", caller.UserID)
	return nil
}

type JobPage struct {
	Jobs       []models.Job `json:"jobs"`
	Pagination Pagination   `json:"pagination"`
}

// ListJobs returns active jobs, newest first.
func (s *JobService) ListJobs(ctx context.Context, q dtos.JobListQuery) (*JobPage, error) {
	page, limit := normalizePage(q.Page, q.Limit)

	base := func() *gorm.DB {
		tx := s.DB.WithContext(ctx).Model(&models.Job{}).Where("status = ?", models.JobStatusActive)
		if term := strings.ToLower(strings.TrimSpace(q.Q)); term != "" {
			like := "%" + term + "%"
			tx = tx.Where("(LOWER(title) LIKE ? OR LOWER(company) LIKE ? OR LOWER(description) LIKE ?)", like, like, like)
		}
		if loc := strings.ToLower(strings.TrimSpace(q.Location)); loc != "" {
			tx = tx.Where("LOWER(location) LIKE ?", "%"+loc+"%")
		}
		if q.JobType != "" {
			tx = tx.Where("job_type = ?", q.JobType)
		}
		return tx
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, apierr.Internal("failed to count jobs", err)
	}
	pg := newPagination(page, limit, total)
	jobs := []models.Job{}
	if pg.inRange() {
		err := base().Preload("Employer").
			Order("created_at DESC").Order("id DESC").
			Offset((page - 1) * limit).Limit(limit).
			Find(&jobs).Error
		if err != nil {
			return nil, apierr.Internal("failed to list jobs", err)
		}
	}
	return &JobPage{Jobs: jobs, Pagination: pg}, nil
}

type JobDetail struct {
	models.Job
	IsSaved bool `json:"isSaved"`
}

// GetJob loads a job, counts the view and, for a signed-in viewer, reports
// whether it is saved and refreshes the saved record's last view.
func (s *JobService) GetJob(ctx context.Context, jobID, viewerID uint) (*JobDetail, error) {
	var job models.Job
	if err := s.DB.WithContext(ctx).Preload("Employer").First(&job, jobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("job not found")
		}
		return nil, apierr.Internal("failed to load job", err)
	}

	err := s.DB.WithContext(ctx).Model(&models.Job{}).Where("id = ?", job.ID).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
	if err != nil {
		s.log.Warn("could not bump view count", "job_id", job.ID, "error", err)
	} else {
		job.ViewCount++
	}

	detail := &JobDetail{Job: job}
	if viewerID == 0 {
		return detail, nil
	}
	saved, err := s.savedJob.IsSaved(ctx, viewerID, job.ID)
	if err != nil {
		s.log.Warn("could not check saved state", "job_id", job.ID, "error", err)
	}
	detail.IsSaved = saved
	if saved {
		s.savedJob.TouchView(ctx, viewerID, job.ID)
	}
	s.savedJob.recordEvent(ctx, viewerID, job.ID, models.EventJobViewed, "")
	return detail, nil
}

const (
	InteractionViewed  = "viewed"
	InteractionClicked = "clicked"
	InteractionSaved   = "saved"
	InteractionApplied = "applied"
)

// TrackInteraction records a user's interaction with a job for the recommender.
func (s *JobService) TrackInteraction(ctx context.Context, userID, jobID uint, action string) error {
	var exists int64
	if err := s.DB.WithContext(ctx).Model(&models.Job{}).Where("id = ?", jobID).Count(&exists).Error; err != nil {
		return apierr.Internal("failed to load job", err)
	}
	if exists == 0 {
		return apierr.NotFound("job not found")
	}
	event := models.JobEvent{UserID: userID, JobID: jobID, EventType: models.EventJobInteraction, Details: action}
	if err := s.DB.WithContext(ctx).Create(&event).Error; err != nil {
		return apierr.Internal("failed to track interaction", err)
	}
	if action == InteractionApplied {
		err := s.DB.WithContext(ctx).Model(&models.Job{}).Where("id = ?", jobID).
			UpdateColumn("application_count", gorm.Expr("application_count + 1")).Error
		if err != nil {
			s.log.Warn("could not bump application count", "job_id", jobID, "error", err)
		}
	}
	return nil
}
