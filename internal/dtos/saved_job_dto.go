package dtos

import "time"

type SaveJobRequest struct {
	Notes    string   `json:"notes" binding:"max=500"`
	Tags     []string `json:"tags"`
	Priority string   `json:"priority" binding:"omitempty,oneof=low medium high"`
}

// UpdateSavedJobRequest uses pointers so absent fields stay untouched.
// clearReminder drops an existing reminder.
type UpdateSavedJobRequest struct {
	Notes             *string    `json:"notes"`
	Tags              *[]string  `json:"tags"`
	Priority          *string    `json:"priority"`
	ApplicationStatus *string    `json:"applicationStatus"`
	ReminderDate      *time.Time `json:"reminderDate"`
	ClearReminder     bool       `json:"clearReminder"`
}

type SavedJobListQuery struct {
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
	Status   string `form:"status"`
	Priority string `form:"priority"`
	SortBy   string `form:"sortBy" binding:"omitempty,oneof=savedAt priority lastViewed"`
	Q        string `form:"q"`
}

type BulkSavedJobRequest struct {
	Action            string `json:"action" binding:"required,oneof=remove updatePriority updateApplicationStatus"`
	JobIDs            []uint `json:"jobIds" binding:"required,min=1"`
	Priority          string `json:"priority"`
	ApplicationStatus string `json:"applicationStatus"`
}
