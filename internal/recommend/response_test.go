package recommend

import "testing"

func TestDecodeResponseAlternateFieldNames(t *testing.T) {
	body := `{
		"success": true,
		"data": [
			{"_id": "abc", "title": "Go Dev", "skills": ["go"], "company": "Acme", "recommendationScore": 91,
			 "matchingReasons": ["2 of your skills match this role"], "salary": {"min": 100, "max": 200, "currency": "EUR"}},
			{"job_id": 42, "job_title": "Data Eng", "required_skills": "python, sql", "company_name": "Beta", "score": "77"},
			{"id": "x", "employer": {"companyName": "Gamma"}, "match_score": 50, "is_remote": true},
			"garbage"
		],
		"metadata": {"algorithm_used": "hybrid", "average_score": 72.5},
		"userProfile": {"skills": ["go"], "experience_level": "Senior"},
		"suggestions": ["Add skills"]
	}`
	res, err := DecodeResponse([]byte(body))
	if err != nil {
		t.Fatalf("DecodeResponse: %v", err)
	}
	if len(res.Jobs) != 3 {
		t.Fatalf("jobs: got=%d want=3", len(res.Jobs))
	}

	a, b, c := res.Jobs[0], res.Jobs[1], res.Jobs[2]
	if a.ID != "abc" || a.Company != "Acme" || a.Score != 91 || a.SalaryMax != 200 || a.Currency != "EUR" || len(a.Reasons) != 1 {
		t.Fatalf("first job: %+v", a)
	}
	if b.ID != "42" || b.Title != "Data Eng" || len(b.Skills) != 2 || b.Skills[1] != "sql" || b.Company != "Beta" || b.Score != 77 {
		t.Fatalf("second job: %+v", b)
	}
	if c.Company != "Gamma" || !c.IsRemote || c.Skills == nil || c.Reasons == nil {
		t.Fatalf("third job: %+v", c)
	}
	if res.Metadata.Algorithm != "hybrid" || res.Metadata.AverageScore != 72.5 {
		t.Fatalf("metadata: %+v", res.Metadata)
	}
	if res.UserProfile.ExperienceLevel != "Senior" || len(res.Suggestions) != 1 {
		t.Fatalf("profile: %+v suggestions: %v", res.UserProfile, res.Suggestions)
	}
}

func TestDecodeResponseDegradesSafely(t *testing.T) {
	cases := map[string]string{
		"empty object":      `{}`,
		"data not a list":   `{"success":true,"data":{"oops":1}}`,
		"untrusted failure": `{"success":false,"data":[{"title":"ignored"}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			res, err := DecodeResponse([]byte(body))
			if err != nil {
				t.Fatalf("DecodeResponse: %v", err)
			}
			if res.Jobs == nil || len(res.Jobs) != 0 {
				t.Fatalf("jobs should be an empty list, got=%v", res.Jobs)
			}
			if res.Suggestions == nil || res.UserProfile.Skills == nil {
				t.Fatalf("lists should never be nil: %+v", res)
			}
		})
	}

	if _, err := DecodeResponse([]byte(`[1,2]`)); err == nil {
		t.Fatalf("array body should be rejected")
	}
	if _, err := DecodeResponse([]byte(`null`)); err == nil {
		t.Fatalf("null body should be rejected")
	}
	if _, err := DecodeResponse([]byte(`<html>`)); err == nil {
		t.Fatalf("non-json body should be rejected")
	}
}
