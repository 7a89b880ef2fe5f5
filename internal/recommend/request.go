// Package recommend talks to the external recommendation service and falls
// back to the in-process matcher when it is unavailable.
package recommend

import (
	"strings"

	"github.com/justsurfingit/job-board/internal/models"
)

const (
	DefaultLimit = 20
	MaxLimit     = 50

	DefaultCurrency          = "USD"
	DefaultTravelWillingness = "occasional"
	DefaultJobSearchUrgency  = "passively_looking"
)

// Request is the payload sent to a recommendation provider. Every preference
// field is optional; zero numerics are omitted rather than sent as 0.
type Request struct {
	UserID          uint        `json:"userId"`
	Limit           int         `json:"limit"`
	ExcludeJobIDs   []uint      `json:"excludeJobIds,omitempty"`
	Skills          []string    `json:"skills"`
	Location        string      `json:"location,omitempty"`
	ExperienceLevel string      `json:"experienceLevel,omitempty"`
	Preferences     Preferences `json:"preferences"`
}

type SalaryRange struct {
	Min        *int   `json:"min,omitempty"`
	Max        *int   `json:"max,omitempty"`
	Currency   string `json:"currency"`
	Negotiable bool   `json:"negotiable"`
}

type Preferences struct {
	JobTypes                []string `json:"jobTypes,omitempty"`
	PreferredLocations      []string `json:"preferredLocations,omitempty"`
	Industries              []string `json:"industries,omitempty"`
	WorkEnvironment         []string `json:"workEnvironment,omitempty"`
	CompanySize             []string `json:"companySize,omitempty"`
	Benefits                []string `json:"benefits,omitempty"`
	PreferredTechnologies   []string `json:"preferredTechnologies,omitempty"`
	AvoidKeywords           []string `json:"avoidKeywords,omitempty"`
	PreferredContactMethods []string `json:"preferredContactMethods,omitempty"`

	SalaryRange       SalaryRange `json:"salaryRange"`
	RemoteWork        bool        `json:"remoteWork"`
	ExperienceLevel   string      `json:"experienceLevel,omitempty"`
	TravelWillingness string      `json:"travelWillingness"`
	JobSearchUrgency  string      `json:"jobSearchUrgency"`

	CareerGoals          *models.CareerGoals          `json:"careerGoals,omitempty"`
	WorkLifeBalance      *models.WorkLifeBalance      `json:"workLifeBalance,omitempty"`
	Availability         *models.Availability         `json:"availability,omitempty"`
	InterviewPreferences *models.InterviewPreferences `json:"interviewPreferences,omitempty"`
}

type Options struct {
	Limit         int
	ExcludeJobIDs []uint
}

// BuildRequest assembles the outbound payload from the stored profile,
// applying defaults before anything is sent.
func BuildRequest(user *models.User, prefs models.JobPreferences, opts Options) Request {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	experience := strings.TrimSpace(prefs.ExperienceLevel)
	if experience == "" {
		experience = strings.TrimSpace(user.ExperienceLevel)
	}

	salary := SalaryRange{Currency: DefaultCurrency, Negotiable: true}
	if sr := prefs.SalaryRange; sr != nil {
		salary.Min = positive(sr.Min)
		salary.Max = positive(sr.Max)
		salary.Negotiable = sr.Negotiable
		if sr.Currency != "" {
			salary.Currency = sr.Currency
		}
	}

	return Request{
		UserID:          user.ID,
		Limit:           limit,
		ExcludeJobIDs:   opts.ExcludeJobIDs,
		Skills:          nonNil(user.Skills),
		Location:        strings.TrimSpace(user.Location),
		ExperienceLevel: experience,
		Preferences: Preferences{
			JobTypes:                prefs.JobTypes,
			PreferredLocations:      prefs.PreferredLocations,
			Industries:              prefs.Industries,
			WorkEnvironment:         prefs.WorkEnvironment,
			CompanySize:             prefs.CompanySize,
			Benefits:                prefs.Benefits,
			PreferredTechnologies:   prefs.PreferredTechnologies,
			AvoidKeywords:           prefs.AvoidKeywords,
			PreferredContactMethods: prefs.PreferredContactMethods,
			SalaryRange:             salary,
			RemoteWork:              prefs.RemoteWork,
			ExperienceLevel:         experience,
			TravelWillingness:       orDefault(prefs.TravelWillingness, DefaultTravelWillingness),
			JobSearchUrgency:        orDefault(prefs.JobSearchUrgency, DefaultJobSearchUrgency),
			CareerGoals:             prefs.CareerGoals,
			WorkLifeBalance:         prefs.WorkLifeBalance,
			Availability:            prefs.Availability,
			InterviewPreferences:    prefs.InterviewPreferences,
		},
	}
}

func positive(v *int) *int {
	if v == nil || *v <= 0 {
		return nil
	}
	n := *v
	return &n
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
