package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Role string

const (
	RoleJobSeeker Role = "jobseeker"
	RoleEmployer  Role = "employer"
	RoleAdmin     Role = "admin"
)

type JobStatus string

const (
	JobStatusActive JobStatus = "active"
	JobStatusClosed JobStatus = "closed"
	JobStatusDraft  JobStatus = "draft"
)

type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	Name         string `json:"name"`
	Role         Role   `gorm:"not null;default:'jobseeker'" json:"role"`

	// Employers only.
	CompanyName string `json:"companyName,omitempty"`

	Location        string                      `json:"location"`
	Skills          datatypes.JSONSlice[string] `json:"skills"`
	ExperienceLevel string                      `json:"experienceLevel,omitempty"`

	Preferences datatypes.JSONType[JobPreferences] `json:"preferences"`
}

type Salary struct {
	Min      int    `json:"min,omitempty"`
	Max      int    `json:"max,omitempty"`
	Currency string `json:"currency,omitempty"`
}

type Job struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Owning employer. GORM needs Preload() to fill Employer.
	EmployerID uint `gorm:"not null;index" json:"employerId"`
	Employer   User `gorm:"foreignKey:EmployerID" json:"employer,omitempty"`

	Title       string                      `gorm:"not null" json:"title"`
	Company     string                      `gorm:"not null" json:"company"`
	Location    string                      `json:"location"`
	Description string                      `gorm:"type:text" json:"description"`
	JobType     string                      `json:"jobType"`
	Experience  string                      `json:"experience"`
	Industry    string                      `json:"industry"`
	Skills      datatypes.JSONSlice[string] `json:"skills"`
	Salary      Salary                      `gorm:"embedded;embeddedPrefix:salary_" json:"salary"`
	IsRemote    bool                        `json:"isRemote"`
	JobLink     string                      `json:"jobLink,omitempty"`
	Status      JobStatus                   `gorm:"not null;default:'active';index" json:"status"`

	ApplicationDeadline *time.Time `json:"applicationDeadline,omitempty"`

	ViewCount        int `gorm:"not null;default:0" json:"viewCount"`
	SaveCount        int `gorm:"not null;default:0" json:"saveCount"`
	ApplicationCount int `gorm:"not null;default:0" json:"applicationCount"`
}

// JobEvent is an append-only activity record for a user's interaction with a job.
type JobEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UserID    uint      `gorm:"index" json:"userId"`
	JobID     uint      `gorm:"index" json:"jobId"`
	EventType string    `gorm:"not null" json:"eventType"`
	Details   string    `gorm:"type:text" json:"details"`
}

const (
	EventJobSaved        = "JOB_SAVED"
	EventJobUnsaved      = "JOB_UNSAVED"
	EventSavedJobUpdated = "SAVED_JOB_UPDATED"
	EventJobViewed       = "JOB_VIEWED"
	EventJobInteraction  = "JOB_INTERACTION"
	EventJobApplied      = "JOB_APPLIED"
	EventJobWithdrawn    = "APPLICATION_WITHDRAWN"
)
