package dtos

import "time"

type JobExtractionRequest struct {
	RawHTML string `json:"rawHtml" binding:"required"`
	URL     string `json:"url"`
}

type JobCreationRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Company     string `json:"company" binding:"required,max=200"`
	Description string `json:"description" binding:"required"`

	// Optional Fields
	Location            string     `json:"location"`
	JobType             string     `json:"jobType" binding:"omitempty,oneof=Full-time Part-time Contract Internship Freelance Remote"`
	Experience          string     `json:"experience"`
	Industry            string     `json:"industry"`
	Skills              []string   `json:"skills"`
	SalaryMin           int        `json:"salaryMin" binding:"gte=0"`
	SalaryMax           int        `json:"salaryMax" binding:"gte=0"`
	Currency            string     `json:"currency" binding:"omitempty,len=3"`
	IsRemote            bool       `json:"isRemote"`
	JobLink             string     `json:"jobLink" binding:"omitempty,url"`
	ApplicationDeadline *time.Time `json:"applicationDeadline"`
	Status              string     `json:"status" binding:"omitempty,oneof=active closed draft"` // Defaults to "active" if empty
}

// JobUpdateRequest is a partial update; nil fields are left untouched.
type JobUpdateRequest struct {
	Title               *string    `json:"title" binding:"omitempty,min=1,max=200"`
	Company             *string    `json:"company" binding:"omitempty,min=1,max=200"`
	Description         *string    `json:"description" binding:"omitempty,min=1"`
	Location            *string    `json:"location"`
	JobType             *string    `json:"jobType" binding:"omitempty,oneof=Full-time Part-time Contract Internship Freelance Remote"`
	Experience          *string    `json:"experience"`
	Industry            *string    `json:"industry"`
	Skills              *[]string  `json:"skills"`
	SalaryMin           *int       `json:"salaryMin" binding:"omitempty,gte=0"`
	SalaryMax           *int       `json:"salaryMax" binding:"omitempty,gte=0"`
	Currency            *string    `json:"currency" binding:"omitempty,len=3"`
	IsRemote            *bool      `json:"isRemote"`
	JobLink             *string    `json:"jobLink" binding:"omitempty,url"`
	ApplicationDeadline *time.Time `json:"applicationDeadline"`
	Status              *string    `json:"status" binding:"omitempty,oneof=active closed draft"`
}

// JobListQuery binds GET /jobs query parameters.
type JobListQuery struct {
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
	Q        string `form:"q"`
	Location string `form:"location"`
	JobType  string `form:"jobType"`
}

type SalaryPredictionRequest struct {
	Title      string   `json:"title" binding:"required"`
	Location   string   `json:"location"`
	Experience string   `json:"experience"`
	Industry   string   `json:"industry"`
	Skills     []string `json:"skills"`
}

type TrackInteractionRequest struct {
	Action string `json:"action" binding:"required,oneof=viewed clicked saved applied"`
}
