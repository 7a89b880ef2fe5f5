package preferences

import (
	"testing"
	"time"

	"github.com/justsurfingit/job-board/internal/apierr"
	"github.com/justsurfingit/job-board/internal/models"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestNormalizeCoercion(t *testing.T) {
	in := decode(t, `{
		"preferredJobTypes": ["Full-time", " Contract ", 7],
		"industries": "Software",
		"remoteWork": "yes",
		"jobAlerts": 0,
		"experienceLevel": "  ",
		"travelWillingness": "frequent",
		"salaryRange": {"min": "50000", "max": -1, "currency": ""},
		"workLifeBalance": {"importance": 9, "maxHoursPerWeek": "40"},
		"availability": {"noticePeriod": -4, "preferredStartDate": "2026-04-01"},
		"interviewPreferences": {"timeSlots": [{"day": "Monday", "startTime": "09:00"}], "timeZone": ""}
	}`).(map[string]any)

	existing := models.DefaultJobPreferences()
	existing.ExperienceLevel = "Senior"

	got, err := Normalize(existing, in, fixedNow)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if len(got.JobTypes) != 2 || got.JobTypes[1] != "Contract" {
		t.Fatalf("job types: got=%v", got.JobTypes)
	}
	if got.Industries == nil || len(got.Industries) != 0 {
		t.Fatalf("non-array industries should become empty list, got=%v", got.Industries)
	}
	if !got.RemoteWork || got.JobAlerts {
		t.Fatalf("booleans: remote=%v alerts=%v", got.RemoteWork, got.JobAlerts)
	}
	if got.ExperienceLevel != "Senior" {
		t.Fatalf("blank string must not overwrite, got=%q", got.ExperienceLevel)
	}
	if got.TravelWillingness != "frequent" {
		t.Fatalf("travel: got=%q", got.TravelWillingness)
	}
	sr := got.SalaryRange
	if sr == nil || sr.Min == nil || *sr.Min != 50000 || sr.Max != nil {
		t.Fatalf("salary range: got=%+v", sr)
	}
	if sr.Currency != "USD" || !sr.Negotiable {
		t.Fatalf("salary defaults: currency=%q negotiable=%v", sr.Currency, sr.Negotiable)
	}
	if got.WorkLifeBalance.Importance != 3 || *got.WorkLifeBalance.MaxHoursPerWeek != 40 {
		t.Fatalf("work life: got=%+v", got.WorkLifeBalance)
	}
	if got.Availability.NoticePeriod != 2 || got.Availability.PreferredStartDate == nil {
		t.Fatalf("availability: got=%+v", got.Availability)
	}
	ip := got.InterviewPreferences
	if ip.TimeZone != "UTC" || len(ip.TimeSlots) != 1 || ip.TimeSlots[0].Day != "monday" {
		t.Fatalf("interview prefs: got=%+v", ip)
	}
	if got.LastUpdated == nil || !got.LastUpdated.Equal(fixedNow) {
		t.Fatalf("last updated: got=%v", got.LastUpdated)
	}
}

func TestNormalizeLeavesMissingKeysAlone(t *testing.T) {
	existing := models.DefaultJobPreferences()
	existing.PreferredLocations = []string{"Berlin"}
	got, err := Normalize(existing, map[string]any{}, fixedNow)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(got.PreferredLocations) != 1 || got.PreferredLocations[0] != "Berlin" {
		t.Fatalf("locations should be kept, got=%v", got.PreferredLocations)
	}
	if !got.EmailNotifications {
		t.Fatalf("default notification flag should survive")
	}
}

func TestNormalizeDoesNotEnforceSalaryOrdering(t *testing.T) {
	in := decode(t, `{"salaryRange":{"min":90000,"max":10000}}`).(map[string]any)
	got, err := Normalize(models.JobPreferences{}, in, fixedNow)
	if err != nil {
		t.Fatalf("min > max must be accepted: %v", err)
	}
	if *got.SalaryRange.Min != 90000 || *got.SalaryRange.Max != 10000 {
		t.Fatalf("salary range: got=%+v", got.SalaryRange)
	}
}

func TestNormalizeCollectsEnumViolations(t *testing.T) {
	in := decode(t, `{
		"jobTypes": ["Full-time", "Gig"],
		"industries": ["Alchemy"],
		"travelWillingness": "always",
		"salaryRange": {"currency": "BTC"}
	}`).(map[string]any)

	existing := models.DefaultJobPreferences()
	got, err := Normalize(existing, in, fixedNow)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	e, ok := apierr.As(err)
	if !ok || e.Kind != apierr.KindValidation {
		t.Fatalf("expected validation kind, got %v", err)
	}
	if len(e.Details) != 4 {
		t.Fatalf("details: got=%d want=4 (%v)", len(e.Details), e.Details)
	}
	if got.TravelWillingness != existing.TravelWillingness {
		t.Fatalf("existing preferences must be returned unchanged on error")
	}
}
