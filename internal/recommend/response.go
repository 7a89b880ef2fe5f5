package recommend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// JobSummary is the one job shape the rest of the code sees, whatever field
// names the provider used.
type JobSummary struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Company       string   `json:"company"`
	Location      string   `json:"location"`
	JobType       string   `json:"jobType,omitempty"`
	Industry      string   `json:"industry,omitempty"`
	Experience    string   `json:"experience,omitempty"`
	Skills        []string `json:"skills"`
	SalaryMin     int      `json:"salaryMin,omitempty"`
	SalaryMax     int      `json:"salaryMax,omitempty"`
	Currency      string   `json:"currency,omitempty"`
	IsRemote      bool     `json:"isRemote"`
	Score         float64  `json:"recommendationScore"`
	Reasons       []string `json:"matchingReasons"`
	IsAIGenerated bool     `json:"isAIGenerated"`
}

type Metadata struct {
	Algorithm    string  `json:"algorithm,omitempty"`
	AverageScore float64 `json:"averageScore"`
	Notice       string  `json:"notice,omitempty"`
}

type UserProfile struct {
	Skills          []string `json:"skills"`
	Location        string   `json:"location,omitempty"`
	ExperienceLevel string   `json:"experienceLevel,omitempty"`
}

type Response struct {
	Success     bool         `json:"success"`
	Jobs        []JobSummary `json:"data"`
	Metadata    Metadata     `json:"metadata"`
	UserProfile UserProfile  `json:"userProfile"`
	Suggestions []string     `json:"suggestions"`
	Message     string       `json:"message,omitempty"`
}

// DecodeResponse reads a provider body. Only a body that is not a JSON object
// is an error; missing or oddly typed fields become empty values. data,
// metadata and userProfile are only read when success is true.
func DecodeResponse(body []byte) (*Response, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode recommendation response: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("decode recommendation response: not an object")
	}

	res := &Response{
		Success:     asBool(raw["success"]),
		Jobs:        []JobSummary{},
		Suggestions: asStrings(raw["suggestions"]),
		Message:     asString(raw["message"]),
		UserProfile: UserProfile{Skills: []string{}},
	}
	if !res.Success {
		return res, nil
	}

	if items, ok := raw["data"].([]any); ok {
		for _, item := range items {
			if m, ok := item.(map[string]any); ok {
				res.Jobs = append(res.Jobs, normalizeJob(m))
			}
		}
	}
	if m, ok := raw["metadata"].(map[string]any); ok {
		res.Metadata = Metadata{
			Algorithm:    first(m, asString, "algorithm", "algorithm_used", "algorithmUsed"),
			AverageScore: first(m, asFloat, "averageScore", "average_score"),
			Notice:       asString(m["notice"]),
		}
	}
	if m, ok := raw["userProfile"].(map[string]any); ok {
		res.UserProfile = UserProfile{
			Skills:          asStrings(m["skills"]),
			Location:        asString(m["location"]),
			ExperienceLevel: first(m, asString, "experienceLevel", "experience_level"),
		}
	}
	return res, nil
}

func normalizeJob(m map[string]any) JobSummary {
	j := JobSummary{
		ID:            first(m, asString, "_id", "id", "job_id"),
		Title:         first(m, asString, "title", "job_title"),
		Company:       companyOf(m),
		Location:      asString(m["location"]),
		JobType:       first(m, asString, "jobType", "job_type"),
		Industry:      asString(m["industry"]),
		Experience:    first(m, asString, "experience", "experience_level"),
		Skills:        firstStrings(m, "skills", "required_skills"),
		IsRemote:      first(m, asBool, "isRemote", "is_remote"),
		Score:         first(m, asFloat, "recommendationScore", "score", "match_score"),
		Reasons:       firstStrings(m, "matchingReasons", "reasons", "match_reasons"),
		IsAIGenerated: first(m, asBool, "isAIGenerated", "is_ai_generated"),
	}
	if s, ok := m["salary"].(map[string]any); ok {
		j.SalaryMin = int(asFloat(s["min"]))
		j.SalaryMax = int(asFloat(s["max"]))
		j.Currency = asString(s["currency"])
	} else {
		j.SalaryMin = int(asFloat(m["salary_min"]))
		j.SalaryMax = int(asFloat(m["salary_max"]))
	}
	return j
}

func companyOf(m map[string]any) string {
	switch c := m["company"].(type) {
	case string:
		if c != "" {
			return c
		}
	case map[string]any:
		if name := first(c, asString, "companyName", "name"); name != "" {
			return name
		}
	}
	if name := asString(m["company_name"]); name != "" {
		return name
	}
	if e, ok := m["employer"].(map[string]any); ok {
		return first(e, asString, "companyName", "company_name", "name")
	}
	return ""
}

// first returns the converted value of the first key present with a non-zero result.
func first[T comparable](m map[string]any, conv func(any) T, keys ...string) T {
	var zero T
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if out := conv(v); out != zero {
				return out
			}
		}
	}
	return zero
}

func firstStrings(m map[string]any, keys ...string) []string {
	for _, k := range keys {
		if out := asStrings(m[k]); len(out) > 0 {
			return out
		}
	}
	return []string{}
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}

func asBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, _ := strconv.ParseBool(t)
		return b
	}
	return false
}

func asFloat(v any) float64 {
	switch t := v.(type) {
	case json.Number:
		f, _ := t.Float64()
		return f
	case float64:
		return t
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f
	}
	return 0
}

// asStrings accepts an array or a comma separated string.
func asStrings(v any) []string {
	out := []string{}
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if s := asString(item); s != "" {
				out = append(out, s)
			}
		}
	case string:
		for _, part := range strings.Split(t, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
