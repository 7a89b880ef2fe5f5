package dtos

import "time"

type ApplyRequest struct {
	CoverLetter    string `json:"coverLetter" binding:"max=2000"`
	ExpectedSalary *int   `json:"expectedSalary" binding:"omitempty,gte=0"`
}

// UpdateApplicationRequest is the employer's view of an application.
type UpdateApplicationRequest struct {
	Status        *string    `json:"status" binding:"omitempty,oneof=pending reviewing shortlisted interview-scheduled accepted rejected"`
	EmployerNotes *string    `json:"employerNotes" binding:"omitempty,max=1000"`
	InterviewDate *time.Time `json:"interviewDate"`
}

type ApplicationListQuery struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Status string `form:"status" binding:"omitempty,oneof=pending reviewing shortlisted interview-scheduled accepted rejected"`
}
