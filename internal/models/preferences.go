package models

import "time"

// JobPreferences is a job seeker's search and matching configuration,
// stored as a JSON column on User. Every field is optional.
type JobPreferences struct {
	JobTypes                []string `json:"jobTypes,omitempty" validate:"omitempty,dive,enum=jobType"`
	PreferredLocations      []string `json:"preferredLocations,omitempty"`
	Industries              []string `json:"industries,omitempty" validate:"omitempty,dive,enum=industry"`
	WorkEnvironment         []string `json:"workEnvironment,omitempty" validate:"omitempty,dive,enum=workEnvironment"`
	CompanySize             []string `json:"companySize,omitempty" validate:"omitempty,dive,enum=companySize"`
	Benefits                []string `json:"benefits,omitempty" validate:"omitempty,dive,enum=benefit"`
	PreferredTechnologies   []string `json:"preferredTechnologies,omitempty"`
	AvoidKeywords           []string `json:"avoidKeywords,omitempty"`
	PreferredContactMethods []string `json:"preferredContactMethods,omitempty" validate:"omitempty,dive,oneof=email phone linkedin text"`

	SalaryRange *SalaryRange `json:"salaryRange,omitempty"`
	RemoteWork  bool         `json:"remoteWork"`

	ExperienceLevel   string `json:"experienceLevel,omitempty" validate:"omitempty,oneof=Entry-level Mid-level Senior Executive Intern"`
	TravelWillingness string `json:"travelWillingness,omitempty" validate:"omitempty,oneof=none minimal occasional frequent"`
	JobSearchUrgency  string `json:"jobSearchUrgency,omitempty" validate:"omitempty,oneof=not_looking passively_looking actively_looking urgently_looking"`

	CareerGoals          *CareerGoals          `json:"careerGoals,omitempty"`
	WorkLifeBalance      *WorkLifeBalance      `json:"workLifeBalance,omitempty"`
	Availability         *Availability         `json:"availability,omitempty"`
	InterviewPreferences *InterviewPreferences `json:"interviewPreferences,omitempty"`

	EmailNotifications bool `json:"emailNotifications"`
	SMSNotifications   bool `json:"smsNotifications"`
	JobAlerts          bool `json:"jobAlerts"`
	MarketingEmails    bool `json:"marketingEmails"`

	LastUpdated *time.Time `json:"lastUpdated,omitempty"`
}

type SalaryRange struct {
	Min        *int   `json:"min,omitempty" validate:"omitempty,min=0"`
	Max        *int   `json:"max,omitempty" validate:"omitempty,min=0"`
	Currency   string `json:"currency,omitempty" validate:"omitempty,oneof=USD EUR GBP CAD AUD INR JPY"`
	Negotiable bool   `json:"negotiable"`
}

type CareerGoals struct {
	ShortTerm string `json:"shortTerm,omitempty" validate:"max=500"`
	LongTerm  string `json:"longTerm,omitempty" validate:"max=500"`
}

type WorkLifeBalance struct {
	Importance         int  `json:"importance,omitempty" validate:"omitempty,min=1,max=5"`
	MaxHoursPerWeek    *int `json:"maxHoursPerWeek,omitempty" validate:"omitempty,min=20,max=80"`
	FlexibleSchedule   bool `json:"flexibleSchedule"`
	OvertimeAcceptable bool `json:"overtimeAcceptable"`
}

type Availability struct {
	ImmediateStart     bool       `json:"immediateStart"`
	NoticePeriod       int        `json:"noticePeriod" validate:"min=0"`
	PreferredStartDate *time.Time `json:"preferredStartDate,omitempty"`
}

type InterviewPreferences struct {
	TimeSlots          []TimeSlot `json:"timeSlots,omitempty" validate:"omitempty,dive"`
	TimeZone           string     `json:"timeZone,omitempty"`
	VirtualInterviewOk bool       `json:"virtualInterviewOk"`
}

type TimeSlot struct {
	Day       string `json:"day,omitempty" validate:"omitempty,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	StartTime string `json:"startTime,omitempty"`
	EndTime   string `json:"endTime,omitempty"`
}

// DefaultJobPreferences mirrors the schema defaults applied to a fresh profile.
func DefaultJobPreferences() JobPreferences {
	return JobPreferences{
		EmailNotifications: true,
		JobAlerts:          true,
		TravelWillingness:  "occasional",
		JobSearchUrgency:   "passively_looking",
	}
}
