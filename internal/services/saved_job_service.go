package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/justsurfingit/job-board/internal/apierr"
	"github.com/justsurfingit/job-board/internal/database"
	"github.com/justsurfingit/job-board/internal/logger"
	"github.com/justsurfingit/job-board/internal/models"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// Sort keys accepted by List.
const (
	SortBySavedAt    = "savedAt"
	SortByPriority   = "priority"
	SortByLastViewed = "lastViewed"
)

type SavedJobService struct {
	DB  *gorm.DB
	log *logger.Logger
	now func() time.Time
}

func NewSavedJobService(db *gorm.DB, log *logger.Logger) *SavedJobService {
	return &SavedJobService{
		DB:  db,
		log: log.With("service", "SavedJobService"),
		now: func() time.Time { return time.Now().UTC() },
	}
}

type SaveOptions struct {
	Notes    string
	Tags     []string
	Priority models.Priority
}

// SavedJobPatch holds the optional fields of an update. Nil means unchanged.
type SavedJobPatch struct {
	Notes             *string
	Tags              *[]string
	Priority          *models.Priority
	ApplicationStatus *models.ApplicationStatus
	ReminderDate      *time.Time
	ClearReminder     bool
}

type ListOptions struct {
	Page     int
	Limit    int
	Status   models.ApplicationStatus
	Priority models.Priority
	SortBy   string
	Query    string
}

type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	Total       int64 `json:"total"`
	Limit       int   `json:"limit"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

type JobSummary struct {
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Location    string     `json:"location"`
	JobType     string     `json:"jobType"`
	Industry    string     `json:"industry"`
	Experience  string     `json:"experience"`
	Status      string     `json:"status"`
	IsRemote    bool       `json:"isRemote"`
	SalaryMin   int        `json:"salaryMin"`
	SalaryMax   int        `json:"salaryMax"`
	Currency    string     `json:"currency"`
	Deadline    *time.Time `json:"applicationDeadline,omitempty"`
	EmployerID  uint       `json:"employerId"`
}

type EmployerSummary struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	CompanyName string `json:"companyName"`
}

// SavedJobView is a saved job joined with its job and the job's employer.
type SavedJobView struct {
	ID                uint                        `json:"id"`
	JobID             uint                        `json:"jobId"`
	SavedAt           time.Time                   `json:"savedAt"`
	Notes             string                      `json:"notes"`
	Tags              datatypes.JSONSlice[string] `json:"tags"`
	Priority          models.Priority             `json:"priority"`
	ApplicationStatus models.ApplicationStatus    `json:"applicationStatus"`
	ReminderDate      *time.Time                  `json:"reminderDate,omitempty"`
	LastViewed        time.Time                   `json:"lastViewed"`
	DaysSaved         int                         `gorm:"-" json:"daysSaved"`

	Job      JobSummary      `gorm:"embedded;embeddedPrefix:job_" json:"job"`
	Employer EmployerSummary `gorm:"embedded;embeddedPrefix:employer_" json:"employer"`
}

type ListResult struct {
	SavedJobs  []SavedJobView `json:"savedJobs"`
	Pagination Pagination     `json:"pagination"`
}

const savedJobColumns = `saved_jobs.id AS id, saved_jobs.job_id AS job_id, saved_jobs.saved_at AS saved_at,
	COALESCE(saved_jobs.notes, '') AS notes, COALESCE(saved_jobs.tags, '[]') AS tags,
	saved_jobs.priority AS priority, saved_jobs.application_status AS application_status,
	saved_jobs.reminder_date AS reminder_date, saved_jobs.last_viewed AS last_viewed,
	COALESCE(jobs.title, '') AS job_title, COALESCE(jobs.company, '') AS job_company,
	COALESCE(jobs.location, '') AS job_location, COALESCE(jobs.job_type, '') AS job_job_type,
	COALESCE(jobs.industry, '') AS job_industry, COALESCE(jobs.experience, '') AS job_experience,
	COALESCE(jobs.status, '') AS job_status, COALESCE(jobs.is_remote, false) AS job_is_remote,
	COALESCE(jobs.salary_min, 0) AS job_salary_min, COALESCE(jobs.salary_max, 0) AS job_salary_max,
	COALESCE(jobs.salary_currency, '') AS job_currency, jobs.application_deadline AS job_deadline,
	COALESCE(jobs.employer_id, 0) AS job_employer_id,
	COALESCE(employer.id, 0) AS employer_id, COALESCE(employer.name, '') AS employer_name,
	COALESCE(employer.company_name, '') AS employer_company_name`

const priorityRankOrder = "CASE saved_jobs.priority WHEN 'high' THEN 3 WHEN 'medium' THEN 2 WHEN 'low' THEN 1 ELSE 0 END DESC"

// ─── Lifecycle ───────────────────────────────────────────────────────────────

// Save bookmarks an active job for the user. A second save of the same pair
// fails with a conflict; the unique index decides, so concurrent saves
// produce exactly one row.
func (s *SavedJobService) Save(ctx context.Context, userID, jobID uint, opts SaveOptions) (*models.SavedJob, error) {
	if opts.Priority != "" && !opts.Priority.Valid() {
		return nil, apierr.Validation("invalid saved job", fmt.Sprintf("priority %q is not one of low, medium, high", opts.Priority))
	}
	if len(opts.Notes) > models.MaxNotesLength {
		return nil, apierr.Validation("invalid saved job", "notes cannot exceed 500 characters")
	}

	var job models.Job
	if err := s.DB.WithContext(ctx).Select("id", "status").First(&job, jobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("job not found")
		}
		return nil, apierr.Internal("failed to load job", err)
	}
	if job.Status != models.JobStatusActive {
		return nil, apierr.InvalidInput("cannot save inactive job")
	}

	saved := &models.SavedJob{
		UserID:   userID,
		JobID:    jobID,
		Notes:    opts.Notes,
		Tags:     cleanTags(opts.Tags),
		Priority: opts.Priority,
	}
	if err := s.DB.WithContext(ctx).Create(saved).Error; err != nil {
		if database.IsDuplicateKey(err) {
			return nil, apierr.Conflict("job is already saved")
		}
		return nil, apierr.Internal("failed to save job", err)
	}

	s.adjustSaveCount(ctx, jobID, 1)
	s.recordEvent(ctx, userID, jobID, models.EventJobSaved, fmt.Sprintf("priority=%s", saved.Priority))
	return saved, nil
}

// Remove deletes the user's saved record for the job.
func (s *SavedJobService) Remove(ctx context.Context, userID, jobID uint) error {
	res := s.DB.WithContext(ctx).
		Where("user_id = ? AND job_id = ?", userID, jobID).
		Delete(&models.SavedJob{})
	if res.Error != nil {
		return apierr.Internal("failed to remove saved job", res.Error)
	}
	if res.RowsAffected == 0 {
		return apierr.NotFound("job not found in saved list")
	}
	s.adjustSaveCount(ctx, jobID, -1)
	s.recordEvent(ctx, userID, jobID, models.EventJobUnsaved, "")
	return nil
}

// Lookup fetches the saved record through the (user, job) unique index.
func (s *SavedJobService) Lookup(ctx context.Context, userID, jobID uint) (*models.SavedJob, bool, error) {
	var saved models.SavedJob
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND job_id = ?", userID, jobID).
		Take(&saved).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, apierr.Internal("failed to check saved job", err)
	}
	return &saved, true, nil
}

func (s *SavedJobService) IsSaved(ctx context.Context, userID, jobID uint) (bool, error) {
	_, found, err := s.Lookup(ctx, userID, jobID)
	return found, err
}

// TouchView refreshes last_viewed. Failures are logged and never surfaced.
func (s *SavedJobService) TouchView(ctx context.Context, userID, jobID uint) {
	res := s.DB.WithContext(ctx).Model(&models.SavedJob{}).
		Where("user_id = ? AND job_id = ?", userID, jobID).
		Update("last_viewed", s.now())
	if res.Error != nil {
		s.log.Warn("touch view failed", "user_id", userID, "job_id", jobID, "error", res.Error)
	}
}

// Update applies patch to the user's saved record.
func (s *SavedJobService) Update(ctx context.Context, userID, jobID uint, patch SavedJobPatch) (*models.SavedJob, error) {
	if details := patch.violations(); len(details) > 0 {
		return nil, apierr.Validation("invalid saved job update", details...)
	}

	updates := map[string]interface{}{}
	if patch.Notes != nil {
		updates["notes"] = *patch.Notes
	}
	if patch.Tags != nil {
		updates["tags"] = cleanTags(*patch.Tags)
	}
	if patch.Priority != nil {
		updates["priority"] = *patch.Priority
	}
	if patch.ApplicationStatus != nil {
		updates["application_status"] = *patch.ApplicationStatus
	}
	if patch.ReminderDate != nil {
		updates["reminder_date"] = patch.ReminderDate.UTC()
	} else if patch.ClearReminder {
		updates["reminder_date"] = nil
	}

	var saved *models.SavedJob
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.SavedJob
		if err := tx.Where("user_id = ? AND job_id = ?", userID, jobID).Take(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("job not found in saved list")
			}
			return apierr.Internal("failed to load saved job", err)
		}
		if len(updates) > 0 {
			if err := tx.Model(&current).Updates(updates).Error; err != nil {
				return apierr.Internal("failed to update saved job", err)
			}
			if err := tx.Take(&current, current.ID).Error; err != nil {
				return apierr.Internal("failed to reload saved job", err)
			}
		}
		saved = &current
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		s.recordEvent(ctx, userID, jobID, models.EventSavedJobUpdated, strings.Join(sortedKeys(updates), ","))
	}
	return saved, nil
}

func (p SavedJobPatch) violations() []string {
	var details []string
	if p.Notes != nil && len(*p.Notes) > models.MaxNotesLength {
		details = append(details, "notes cannot exceed 500 characters")
	}
	if p.Priority != nil && !p.Priority.Valid() {
		details = append(details, fmt.Sprintf("priority %q is not one of low, medium, high", *p.Priority))
	}
	if p.ApplicationStatus != nil && !p.ApplicationStatus.Valid() {
		details = append(details, fmt.Sprintf("applicationStatus %q is not supported", *p.ApplicationStatus))
	}
	return details
}

// ─── Listing ─────────────────────────────────────────────────────────────────

func newPagination(page, limit int, total int64) Pagination {
	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		Total:       total,
		Limit:       limit,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}

// inRange reports whether page has rows. Callers check it before computing
// an offset so huge page numbers cannot overflow.
func (p Pagination) inRange() bool { return p.CurrentPage <= p.TotalPages }

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return page, limit
}

func (s *SavedJobService) joined(ctx context.Context, userID uint) *gorm.DB {
	return s.DB.WithContext(ctx).Table("saved_jobs").
		Joins("LEFT JOIN jobs ON jobs.id = saved_jobs.job_id").
		Joins("LEFT JOIN users AS employer ON employer.id = jobs.employer_id").
		Where("saved_jobs.user_id = ?", userID)
}

func (s *SavedJobService) filtered(ctx context.Context, userID uint, opts ListOptions) *gorm.DB {
	q := s.joined(ctx, userID)
	if opts.Status != "" {
		q = q.Where("saved_jobs.application_status = ?", opts.Status)
	}
	if opts.Priority != "" {
		q = q.Where("saved_jobs.priority = ?", opts.Priority)
	}
	if term := strings.ToLower(strings.TrimSpace(opts.Query)); term != "" {
		like := "%" + term + "%"
		q = q.Where("(LOWER(jobs.title) LIKE ? OR LOWER(jobs.company) LIKE ? OR LOWER(saved_jobs.notes) LIKE ?)", like, like, like)
	}
	return q
}

func orderFor(sortBy string) []string {
	switch sortBy {
	case SortByPriority:
		return []string{priorityRankOrder, "saved_jobs.saved_at DESC", "saved_jobs.id DESC"}
	case SortByLastViewed:
		return []string{"saved_jobs.last_viewed DESC", "saved_jobs.id DESC"}
	default:
		return []string{"saved_jobs.saved_at DESC", "saved_jobs.id DESC"}
	}
}

// List returns one page of the user's saved jobs joined with job and employer.
// A page past the end is empty, not an error.
func (s *SavedJobService) List(ctx context.Context, userID uint, opts ListOptions) (*ListResult, error) {
	if opts.Status != "" && !opts.Status.Valid() {
		return nil, apierr.InvalidInput("invalid application status")
	}
	if opts.Priority != "" && !opts.Priority.Valid() {
		return nil, apierr.InvalidInput("invalid priority level")
	}
	page, limit := normalizePage(opts.Page, opts.Limit)

	var total int64
	if err := s.filtered(ctx, userID, opts).Count(&total).Error; err != nil {
		return nil, apierr.Internal("failed to count saved jobs", err)
	}

	pg := newPagination(page, limit, total)
	views := []SavedJobView{}
	if pg.inRange() {
		q := s.filtered(ctx, userID, opts).Select(savedJobColumns)
		for _, o := range orderFor(opts.SortBy) {
			q = q.Order(o)
		}
		if err := q.Offset((page - 1) * limit).Limit(limit).Scan(&views).Error; err != nil {
			return nil, apierr.Internal("failed to list saved jobs", err)
		}
	}
	s.fillDaysSaved(views)

	return &ListResult{SavedJobs: views, Pagination: pg}, nil
}

// Get returns one saved job view and refreshes its last_viewed.
func (s *SavedJobService) Get(ctx context.Context, userID, jobID uint) (*SavedJobView, error) {
	var views []SavedJobView
	err := s.joined(ctx, userID).
		Where("saved_jobs.job_id = ?", jobID).
		Select(savedJobColumns).
		Limit(1).
		Scan(&views).Error
	if err != nil {
		return nil, apierr.Internal("failed to load saved job", err)
	}
	if len(views) == 0 {
		return nil, apierr.NotFound("job not found in saved list")
	}
	s.TouchView(ctx, userID, jobID)
	s.fillDaysSaved(views)
	return &views[0], nil
}

func (s *SavedJobService) all(ctx context.Context, userID uint) ([]SavedJobView, error) {
	views := []SavedJobView{}
	q := s.joined(ctx, userID).Select(savedJobColumns)
	for _, o := range orderFor(SortBySavedAt) {
		q = q.Order(o)
	}
	if err := q.Scan(&views).Error; err != nil {
		return nil, apierr.Internal("failed to load saved jobs", err)
	}
	s.fillDaysSaved(views)
	return views, nil
}

func (s *SavedJobService) fillDaysSaved(views []SavedJobView) {
	now := s.now()
	for i := range views {
		views[i].DaysSaved = models.DaysSaved(views[i].SavedAt, now)
	}
}

// ─── Side effects ────────────────────────────────────────────────────────────

func (s *SavedJobService) adjustSaveCount(ctx context.Context, jobID uint, delta int) {
	err := s.DB.WithContext(ctx).Model(&models.Job{}).Where("id = ?", jobID).
		Update("save_count", gorm.Expr("CASE WHEN save_count + ? < 0 THEN 0 ELSE save_count + ? END", delta, delta)).Error
	if err != nil {
		s.log.Warn("could not adjust job save count", "job_id", jobID, "error", err)
	}
}

func (s *SavedJobService) recordEvent(ctx context.Context, userID, jobID uint, eventType, details string) {
	event := models.JobEvent{UserID: userID, JobID: jobID, EventType: eventType, Details: details}
	if err := s.DB.WithContext(ctx).Create(&event).Error; err != nil {
		s.log.Warn("could not record job event", "event", eventType, "job_id", jobID, "error", err)
	}
}

func cleanTags(tags []string) datatypes.JSONSlice[string] {
	out := datatypes.JSONSlice[string]{}
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
