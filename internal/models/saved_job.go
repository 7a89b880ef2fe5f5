package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Rank orders priorities for sorting: high > medium > low.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

func (p Priority) Valid() bool { return p.Rank() > 0 }

type ApplicationStatus string

const (
	StatusNotApplied      ApplicationStatus = "not_applied"
	StatusPlanningToApply ApplicationStatus = "planning_to_apply"
	StatusApplied         ApplicationStatus = "applied"
	StatusInterview       ApplicationStatus = "interview"
	StatusRejected        ApplicationStatus = "rejected"
	StatusOffered         ApplicationStatus = "offered"
)

var ApplicationStatuses = []ApplicationStatus{
	StatusNotApplied, StatusPlanningToApply, StatusApplied, StatusInterview, StatusRejected, StatusOffered,
}

func (s ApplicationStatus) Valid() bool {
	for _, v := range ApplicationStatuses {
		if v == s {
			return true
		}
	}
	return false
}

const MaxNotesLength = 500

// SavedJob is a user's bookmark of a job posting. The (user, job) pair is unique.
type SavedJob struct {
	ID uint `gorm:"primaryKey" json:"id"`

	UserID uint `gorm:"not null;uniqueIndex:idx_saved_jobs_user_job,priority:1;index:idx_saved_jobs_user_saved_at,priority:1;index:idx_saved_jobs_user_priority,priority:1;index:idx_saved_jobs_user_status,priority:1" json:"userId"`
	JobID  uint `gorm:"not null;uniqueIndex:idx_saved_jobs_user_job,priority:2" json:"jobId"`
	Job    Job  `gorm:"foreignKey:JobID" json:"-"`

	SavedAt           time.Time                   `gorm:"not null;index:idx_saved_jobs_user_saved_at,priority:2,sort:desc" json:"savedAt"`
	Notes             string                      `gorm:"size:500" json:"notes"`
	Tags              datatypes.JSONSlice[string] `json:"tags"`
	Priority          Priority                    `gorm:"not null;default:'medium';index:idx_saved_jobs_user_priority,priority:2,sort:desc" json:"priority"`
	ApplicationStatus ApplicationStatus           `gorm:"not null;default:'not_applied';index:idx_saved_jobs_user_status,priority:2" json:"applicationStatus"`
	ReminderDate      *time.Time                  `json:"reminderDate,omitempty"`
	LastViewed        time.Time                   `gorm:"not null" json:"lastViewed"`
}

func (s *SavedJob) BeforeCreate(tx *gorm.DB) error {
	now := tx.NowFunc()
	if s.SavedAt.IsZero() {
		s.SavedAt = now
	}
	if s.LastViewed.IsZero() {
		s.LastViewed = now
	}
	if s.Priority == "" {
		s.Priority = PriorityMedium
	}
	if s.ApplicationStatus == "" {
		s.ApplicationStatus = StatusNotApplied
	}
	if s.Tags == nil {
		s.Tags = datatypes.JSONSlice[string]{}
	}
	return nil
}

// DaysSaved is the whole number of days, rounded up, since savedAt.
// A savedAt at or after now yields 0.
func DaysSaved(savedAt, now time.Time) int {
	diff := now.Sub(savedAt)
	if diff <= 0 {
		return 0
	}
	day := 24 * time.Hour
	days := int(diff / day)
	if diff%day != 0 {
		days++
	}
	return days
}
