package preferences

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/justsurfingit/job-board/internal/apierr"
	"github.com/justsurfingit/job-board/internal/models"
)

var enums = map[string][]string{
	"jobType": {"Full-time", "Part-time", "Contract", "Internship", "Freelance", "Remote"},
	"industry": {
		"Software", "Hardware", "Fintech", "Healthcare", "E-commerce", "Education", "Media", "Gaming",
		"AI/ML", "Blockchain", "SaaS", "Mobile", "Web Development", "Data Science", "DevOps",
		"Cybersecurity", "Cloud Computing", "Design", "Marketing", "Sales", "HR", "Finance", "Legal",
		"Consulting", "Manufacturing", "Other",
	},
	"workEnvironment": {"Startup", "Corporate", "Agency", "Non-profit", "Government", "Freelance"},
	"companySize":     {"1-10", "11-50", "51-200", "201-500", "501-1000", "1000+"},
	"benefit": {
		"Health Insurance", "Dental Insurance", "Vision Insurance", "Retirement Plan", "Paid Time Off",
		"Flexible Hours", "Remote Work", "Professional Development", "Stock Options", "Gym Membership",
		"Free Meals", "Transportation", "Childcare", "Mental Health Support", "Learning Budget",
		"Conference Attendance",
	},
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func schemaValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
			allowed, ok := enums[fl.Param()]
			if !ok {
				return false
			}
			val := fl.Field().String()
			for _, a := range allowed {
				if a == val {
					return true
				}
			}
			return false
		})
		validate = v
	})
	return validate
}

var listFields = map[string]func(p *models.JobPreferences) *[]string{
	"jobTypes":                func(p *models.JobPreferences) *[]string { return &p.JobTypes },
	"preferredLocations":      func(p *models.JobPreferences) *[]string { return &p.PreferredLocations },
	"industries":              func(p *models.JobPreferences) *[]string { return &p.Industries },
	"workEnvironment":         func(p *models.JobPreferences) *[]string { return &p.WorkEnvironment },
	"companySize":             func(p *models.JobPreferences) *[]string { return &p.CompanySize },
	"benefits":                func(p *models.JobPreferences) *[]string { return &p.Benefits },
	"preferredTechnologies":   func(p *models.JobPreferences) *[]string { return &p.PreferredTechnologies },
	"avoidKeywords":           func(p *models.JobPreferences) *[]string { return &p.AvoidKeywords },
	"preferredContactMethods": func(p *models.JobPreferences) *[]string { return &p.PreferredContactMethods },
}

var boolFields = map[string]func(p *models.JobPreferences) *bool{
	"remoteWork":         func(p *models.JobPreferences) *bool { return &p.RemoteWork },
	"emailNotifications": func(p *models.JobPreferences) *bool { return &p.EmailNotifications },
	"smsNotifications":   func(p *models.JobPreferences) *bool { return &p.SMSNotifications },
	"jobAlerts":          func(p *models.JobPreferences) *bool { return &p.JobAlerts },
	"marketingEmails":    func(p *models.JobPreferences) *bool { return &p.MarketingEmails },
}

var stringFields = map[string]func(p *models.JobPreferences) *string{
	"experienceLevel":   func(p *models.JobPreferences) *string { return &p.ExperienceLevel },
	"travelWillingness": func(p *models.JobPreferences) *string { return &p.TravelWillingness },
	"jobSearchUrgency":  func(p *models.JobPreferences) *string { return &p.JobSearchUrgency },
}

// Normalize applies input on top of existing and returns the result. Only keys
// present in input are touched. Values are coerced the same way for every
// field class: lists that are not arrays become empty, booleans follow
// truthiness, blank strings are ignored, non-positive salary bounds are unset.
// The coerced result is checked against the enum schema; every violation is
// returned in a single validation error.
func Normalize(existing models.JobPreferences, input map[string]any, now time.Time) (models.JobPreferences, error) {
	p := clone(existing)

	// The search UI sends preferredJobTypes; storage calls it jobTypes.
	if v, ok := input["preferredJobTypes"]; ok {
		if _, dup := input["jobTypes"]; !dup {
			input = withKey(input, "jobTypes", v)
		}
	}

	for key, field := range listFields {
		if v, ok := input[key]; ok {
			*field(&p) = toStrings(v)
		}
	}
	for key, field := range boolFields {
		if v, ok := input[key]; ok {
			*field(&p) = truthy(v)
		}
	}
	for key, field := range stringFields {
		if s, ok := input[key].(string); ok && strings.TrimSpace(s) != "" {
			*field(&p) = strings.TrimSpace(s)
		}
	}

	if sr, ok := input["salaryRange"].(map[string]any); ok {
		if p.SalaryRange == nil {
			p.SalaryRange = &models.SalaryRange{Negotiable: true}
		}
		if v, ok := sr["min"]; ok {
			p.SalaryRange.Min = positiveInt(v)
		}
		if v, ok := sr["max"]; ok {
			p.SalaryRange.Max = positiveInt(v)
		}
		if v, ok := sr["currency"]; ok {
			p.SalaryRange.Currency = stringOr(v, "USD")
		}
		if v, ok := sr["negotiable"]; ok {
			p.SalaryRange.Negotiable = truthy(v)
		}
	}

	if cg, ok := input["careerGoals"].(map[string]any); ok {
		if p.CareerGoals == nil {
			p.CareerGoals = &models.CareerGoals{}
		}
		if v, ok := cg["shortTerm"]; ok {
			p.CareerGoals.ShortTerm = stringOr(v, "")
		}
		if v, ok := cg["longTerm"]; ok {
			p.CareerGoals.LongTerm = stringOr(v, "")
		}
	}

	if wl, ok := input["workLifeBalance"].(map[string]any); ok {
		if p.WorkLifeBalance == nil {
			p.WorkLifeBalance = &models.WorkLifeBalance{Importance: 3, OvertimeAcceptable: true}
		}
		if v, ok := wl["importance"]; ok {
			n, valid := toInt(v)
			if !valid || n < 1 || n > 5 {
				n = 3
			}
			p.WorkLifeBalance.Importance = n
		}
		if v, ok := wl["maxHoursPerWeek"]; ok {
			p.WorkLifeBalance.MaxHoursPerWeek = positiveInt(v)
		}
		if v, ok := wl["flexibleSchedule"]; ok {
			p.WorkLifeBalance.FlexibleSchedule = truthy(v)
		}
		if v, ok := wl["overtimeAcceptable"]; ok {
			p.WorkLifeBalance.OvertimeAcceptable = truthy(v)
		}
	}

	if av, ok := input["availability"].(map[string]any); ok {
		if p.Availability == nil {
			p.Availability = &models.Availability{NoticePeriod: 2}
		}
		if v, ok := av["immediateStart"]; ok {
			p.Availability.ImmediateStart = truthy(v)
		}
		if v, ok := av["noticePeriod"]; ok {
			n, valid := toInt(v)
			if !valid || n < 0 {
				n = 2
			}
			p.Availability.NoticePeriod = n
		}
		if v, ok := av["preferredStartDate"]; ok {
			p.Availability.PreferredStartDate = toTime(v)
		}
	}

	if ip, ok := input["interviewPreferences"].(map[string]any); ok {
		if p.InterviewPreferences == nil {
			p.InterviewPreferences = &models.InterviewPreferences{TimeZone: "UTC", VirtualInterviewOk: true}
		}
		if v, ok := ip["timeSlots"]; ok {
			p.InterviewPreferences.TimeSlots = toTimeSlots(v)
		}
		if v, ok := ip["timeZone"]; ok {
			p.InterviewPreferences.TimeZone = stringOr(v, "UTC")
		}
		if v, ok := ip["virtualInterviewOk"]; ok {
			p.InterviewPreferences.VirtualInterviewOk = truthy(v)
		}
	}

	ts := now.UTC()
	p.LastUpdated = &ts

	if err := CheckSchema(p); err != nil {
		return existing, err
	}
	return p, nil
}

// CheckSchema validates enum membership and numeric bounds of a typed value.
func CheckSchema(p models.JobPreferences) error {
	err := schemaValidator().Struct(p)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apierr.Validation("invalid preferences", err.Error())
	}
	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, describe(fe))
	}
	return apierr.Validation("validation failed for preferences", details...)
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "enum", "oneof":
		return fmt.Sprintf("%s has unsupported value %q", field, fmt.Sprint(fe.Value()))
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	}
	return fmt.Sprintf("%s failed %s", field, fe.Tag())
}

// clone copies the pointed-to sections so edits never leak into existing.
func clone(p models.JobPreferences) models.JobPreferences {
	if p.SalaryRange != nil {
		sr := *p.SalaryRange
		p.SalaryRange = &sr
	}
	if p.CareerGoals != nil {
		cg := *p.CareerGoals
		p.CareerGoals = &cg
	}
	if p.WorkLifeBalance != nil {
		wl := *p.WorkLifeBalance
		p.WorkLifeBalance = &wl
	}
	if p.Availability != nil {
		av := *p.Availability
		p.Availability = &av
	}
	if p.InterviewPreferences != nil {
		ip := *p.InterviewPreferences
		p.InterviewPreferences = &ip
	}
	return p
}

func withKey(in map[string]any, key string, v any) map[string]any {
	out := make(map[string]any, len(in)+1)
	for k, val := range in {
		out[k] = val
	}
	out[key] = v
	return out
}

func toStrings(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0 && !math.IsNaN(t)
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	case int:
		return t != 0
	}
	return true
}

func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if n, err := strconv.Atoi(s); err == nil {
			return n, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(math.Trunc(f)), true
		}
		return 0, false
	case bool, nil:
		return 0, false
	}
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(math.Trunc(f)), true
}

func positiveInt(v any) *int {
	n, ok := toInt(v)
	if !ok || n <= 0 {
		return nil
	}
	return &n
}

func stringOr(v any, def string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return def
}

func toTime(v any) *time.Time {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return &t
		}
	}
	return nil
}

func toTimeSlots(v any) []models.TimeSlot {
	arr, ok := v.([]any)
	if !ok {
		return []models.TimeSlot{}
	}
	out := make([]models.TimeSlot, 0, len(arr))
	for _, item := range arr {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, models.TimeSlot{
			Day:       strings.ToLower(stringOr(m["day"], "")),
			StartTime: stringOr(m["startTime"], ""),
			EndTime:   stringOr(m["endTime"], ""),
		})
	}
	return out
}
