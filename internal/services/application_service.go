package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/justsurfingit/job-board/internal/apierr"
	"github.com/justsurfingit/job-board/internal/auth"
	"github.com/justsurfingit/job-board/internal/database"
	"github.com/justsurfingit/job-board/internal/logger"
	"github.com/justsurfingit/job-board/internal/models"
)

// ApplicationService handles applying to postings and the employer's review
// of applications. Applying keeps the job's application counter and the
// applicant's saved record in step.
type ApplicationService struct {
	DB       *gorm.DB
	log      *logger.Logger
	savedJob *SavedJobService
}

func NewApplicationService(db *gorm.DB, log *logger.Logger, saved *SavedJobService) *ApplicationService {
	return &ApplicationService{
		DB:       db,
		log:      log.With("service", "ApplicationService"),
		savedJob: saved,
	}
}

type ApplyOptions struct {
	CoverLetter    string
	ExpectedSalary *int
}

// Apply submits an application to an active job. One application per
// (applicant, job); a second attempt is a conflict.
func (s *ApplicationService) Apply(ctx context.Context, userID, jobID uint, opts ApplyOptions) (*models.Application, error) {
	if len(opts.CoverLetter) > models.MaxCoverLetterLength {
		return nil, apierr.Validation("invalid application", fmt.Sprintf("coverLetter cannot exceed %d characters", models.MaxCoverLetterLength))
	}
	if opts.ExpectedSalary != nil && *opts.ExpectedSalary < 0 {
		return nil, apierr.Validation("invalid application", "expectedSalary cannot be negative")
	}

	var job models.Job
	if err := s.DB.WithContext(ctx).Select("id", "status").First(&job, jobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("job not found")
		}
		return nil, apierr.Internal("failed to load job", err)
	}
	if job.Status != models.JobStatusActive {
		return nil, apierr.InvalidInput("job is no longer accepting applications")
	}

	app := &models.Application{
		JobID:          jobID,
		ApplicantID:    userID,
		CoverLetter:    opts.CoverLetter,
		ExpectedSalary: opts.ExpectedSalary,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Job", "Applicant").Create(app).Error; err != nil {
			return err
		}
		return tx.Model(&models.Job{}).Where("id = ?", jobID).
			UpdateColumn("application_count", gorm.Expr("application_count + 1")).Error
	})
	if err != nil {
		if database.IsDuplicateKey(err) {
			return nil, apierr.Conflict("you have already applied for this job")
		}
		return nil, apierr.Internal("failed to submit application", err)
	}

	s.markSaved(ctx, userID, jobID, models.StatusApplied, models.StatusNotApplied, models.StatusPlanningToApply)
	s.savedJob.recordEvent(ctx, userID, jobID, models.EventJobApplied, "")
	s.log.Info("application submitted", "application_id", app.ID, "job_id", jobID)
	return app, nil
}

// Withdraw deletes the caller's own application unless the employer has
// already accepted or rejected it.
func (s *ApplicationService) Withdraw(ctx context.Context, userID, applicationID uint) error {
	app, err := s.load(ctx, applicationID)
	if err != nil {
		return err
	}
	if app.ApplicantID != userID {
		return apierr.Forbidden("you can only withdraw your own applications")
	}
	if app.Status.Final() {
		return apierr.InvalidInput(fmt.Sprintf("cannot withdraw application with status: %s", app.Status))
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Application{}, app.ID).Error; err != nil {
			return err
		}
		return tx.Model(&models.Job{}).Unscoped().Where("id = ?", app.JobID).
			UpdateColumn("application_count", gorm.Expr("CASE WHEN application_count > 0 THEN application_count - 1 ELSE 0 END")).Error
	})
	if err != nil {
		return apierr.Internal("failed to withdraw application", err)
	}
	s.savedJob.recordEvent(ctx, userID, app.JobID, models.EventJobWithdrawn, "")
	return nil
}

type ApplicationPage struct {
	Applications    []models.Application             `json:"applications"`
	Pagination      Pagination                       `json:"pagination"`
	StatusBreakdown map[models.ApplicationState]int64 `json:"statusBreakdown"`
}

// Mine lists the caller's applications, newest first. The breakdown always
// covers every application regardless of the status filter.
func (s *ApplicationService) Mine(ctx context.Context, userID uint, page, limit int, status models.ApplicationState) (*ApplicationPage, error) {
	if status != "" && !status.Valid() {
		return nil, apierr.InvalidInput("invalid application status")
	}
	page, limit = normalizePage(page, limit)

	base := func() *gorm.DB {
		q := s.DB.WithContext(ctx).Model(&models.Application{}).Where("applicant_id = ?", userID)
		if status != "" {
			q = q.Where("status = ?", status)
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, apierr.Internal("failed to count applications", err)
	}
	pg := newPagination(page, limit, total)
	apps := []models.Application{}
	if pg.inRange() {
		// postings deleted after the fact still show what was applied to
		err := base().
			Preload("Job", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
			Order("applied_at DESC").Order("id DESC").
			Offset((page - 1) * limit).Limit(limit).
			Find(&apps).Error
		if err != nil {
			return nil, apierr.Internal("failed to list applications", err)
		}
	}

	var rows []struct {
		Status models.ApplicationState
		Count  int64
	}
	err := s.DB.WithContext(ctx).Model(&models.Application{}).
		Select("status, COUNT(*) AS count").
		Where("applicant_id = ?", userID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, apierr.Internal("failed to count applications", err)
	}
	breakdown := map[models.ApplicationState]int64{}
	for _, r := range rows {
		breakdown[r.Status] = r.Count
	}
	return &ApplicationPage{Applications: apps, Pagination: pg, StatusBreakdown: breakdown}, nil
}

// ForJob lists a posting's applications for its employer or an admin.
func (s *ApplicationService) ForJob(ctx context.Context, caller auth.Session, jobID uint) ([]models.Application, error) {
	if _, err := ownedJob(ctx, s.DB, caller, jobID); err != nil {
		return nil, err
	}
	apps := []models.Application{}
	err := s.DB.WithContext(ctx).
		Preload("Applicant", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "email", "location", "skills", "experience_level")
		}).
		Where("job_id = ?", jobID).
		Order("applied_at DESC").Order("id DESC").
		Find(&apps).Error
	if err != nil {
		return nil, apierr.Internal("failed to list applications", err)
	}
	return apps, nil
}

// ApplicationPatch is the employer's update; nil fields are left untouched.
type ApplicationPatch struct {
	Status        *models.ApplicationState
	EmployerNotes *string
	InterviewDate *time.Time
}

// UpdateStatus lets the posting's employer, or an admin, move an application
// along. Status changes that have a saved-job counterpart are mirrored onto
// the applicant's saved record.
func (s *ApplicationService) UpdateStatus(ctx context.Context, caller auth.Session, applicationID uint, patch ApplicationPatch) (*models.Application, error) {
	app, err := s.load(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	var job models.Job
	if err := s.DB.WithContext(ctx).Unscoped().Select("id", "employer_id").First(&job, app.JobID).Error; err != nil {
		return nil, apierr.Internal("failed to load job", err)
	}
	if job.EmployerID != caller.UserID && caller.Role != models.RoleAdmin {
		return nil, apierr.Forbidden("not authorized to update this application")
	}

	var problems []string
	updates := map[string]interface{}{}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			problems = append(problems, fmt.Sprintf("status %q is not supported", *patch.Status))
		}
		updates["status"] = *patch.Status
	}
	if patch.EmployerNotes != nil {
		if len(*patch.EmployerNotes) > models.MaxEmployerNotesLength {
			problems = append(problems, fmt.Sprintf("employerNotes cannot exceed %d characters", models.MaxEmployerNotesLength))
		}
		updates["employer_notes"] = *patch.EmployerNotes
	}
	if patch.InterviewDate != nil {
		updates["interview_date"] = *patch.InterviewDate
	}
	if len(problems) > 0 {
		return nil, apierr.Validation("invalid application update", problems...)
	}

	if len(updates) > 0 {
		if err := s.DB.WithContext(ctx).Model(app).Updates(updates).Error; err != nil {
			return nil, apierr.Internal("failed to update application", err)
		}
	}
	if patch.Status != nil {
		if mirrored := patch.Status.SavedStatus(); mirrored != "" {
			s.markSaved(ctx, app.ApplicantID, app.JobID, mirrored)
		}
	}
	return s.detailed(ctx, app.ID)
}

// detailed loads an application with its posting and a public view of the
// applicant.
func (s *ApplicationService) detailed(ctx context.Context, id uint) (*models.Application, error) {
	var app models.Application
	err := s.DB.WithContext(ctx).
		Preload("Job", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("Applicant", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "email", "location", "skills", "experience_level")
		}).
		First(&app, id).Error
	if err != nil {
		return nil, apierr.Internal("failed to load application", err)
	}
	return &app, nil
}

func (s *ApplicationService) load(ctx context.Context, id uint) (*models.Application, error) {
	var app models.Application
	if err := s.DB.WithContext(ctx).First(&app, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("application not found")
		}
		return nil, apierr.Internal("failed to load application", err)
	}
	return &app, nil
}

// markSaved moves the applicant's saved record, if any, to status. When from
// is given, only records currently in one of those statuses are touched.
// Failures are logged and never surfaced.
func (s *ApplicationService) markSaved(ctx context.Context, userID, jobID uint, status models.ApplicationStatus, from ...models.ApplicationStatus) {
	q := s.DB.WithContext(ctx).Model(&models.SavedJob{}).
		Where("user_id = ? AND job_id = ?", userID, jobID)
	if len(from) > 0 {
		q = q.Where("application_status IN ?", from)
	}
	if err := q.Update("application_status", status).Error; err != nil {
		s.log.Warn("could not sync saved job status", "user_id", userID, "job_id", jobID, "error", err)
	}
}
