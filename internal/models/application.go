package models

import (
	"time"

	"gorm.io/gorm"
)

// ApplicationState is where an employer has moved an application.
type ApplicationState string

const (
	StatePending            ApplicationState = "pending"
	StateReviewing          ApplicationState = "reviewing"
	StateShortlisted        ApplicationState = "shortlisted"
	StateInterviewScheduled ApplicationState = "interview-scheduled"
	StateAccepted           ApplicationState = "accepted"
	StateRejected           ApplicationState = "rejected"
)

var ApplicationStates = []ApplicationState{
	StatePending, StateReviewing, StateShortlisted, StateInterviewScheduled, StateAccepted, StateRejected,
}

func (s ApplicationState) Valid() bool {
	for _, v := range ApplicationStates {
		if v == s {
			return true
		}
	}
	return false
}

// Final states can no longer be withdrawn by the applicant.
func (s ApplicationState) Final() bool {
	return s == StateAccepted || s == StateRejected
}

// SavedStatus is the saved-job status that mirrors s, or "" when the saved
// record should be left alone.
func (s ApplicationState) SavedStatus() ApplicationStatus {
	switch s {
	case StateInterviewScheduled:
		return StatusInterview
	case StateAccepted:
		return StatusOffered
	case StateRejected:
		return StatusRejected
	}
	return ""
}

const (
	MaxCoverLetterLength   = 2000
	MaxEmployerNotesLength = 1000
)

// Application is a job seeker's application to a posting. The (job, applicant)
// pair is unique.
type Application struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AppliedAt time.Time `gorm:"not null;index:idx_applications_applicant_applied,priority:2,sort:desc" json:"appliedAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	JobID       uint  `gorm:"not null;uniqueIndex:idx_applications_job_applicant,priority:1;index:idx_applications_job_status,priority:1" json:"jobId"`
	Job         *Job  `gorm:"foreignKey:JobID" json:"job,omitempty"`
	ApplicantID uint  `gorm:"not null;uniqueIndex:idx_applications_job_applicant,priority:2;index:idx_applications_applicant_applied,priority:1" json:"applicantId"`
	Applicant   *User `gorm:"foreignKey:ApplicantID" json:"applicant,omitempty"`

	CoverLetter    string           `gorm:"type:text" json:"coverLetter"`
	ExpectedSalary *int             `json:"expectedSalary,omitempty"`
	Status         ApplicationState `gorm:"not null;default:'pending';index:idx_applications_job_status,priority:2" json:"status"`
	EmployerNotes  string           `gorm:"type:text" json:"employerNotes,omitempty"`
	InterviewDate  *time.Time       `json:"interviewDate,omitempty"`
}

func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.AppliedAt.IsZero() {
		a.AppliedAt = tx.NowFunc()
	}
	if a.Status == "" {
		a.Status = StatePending
	}
	return nil
}
