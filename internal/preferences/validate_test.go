package preferences

import (
	"encoding/json"
	"strings"
	"testing"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return v
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name       string
		input      string
		wantValid  bool
		wantErrs   int
		wantSubstr string
	}{
		{name: "empty object", input: `{}`, wantValid: true},
		{name: "job types array", input: `{"preferredJobTypes":["Full-time"]}`, wantValid: true},
		{name: "job types not array", input: `{"preferredJobTypes":"not-an-array"}`, wantErrs: 1, wantSubstr: "preferredJobTypes"},
		{name: "null job types ignored", input: `{"preferredJobTypes":null}`, wantValid: true},
		{name: "negative min", input: `{"salaryRange":{"min":-5}}`, wantErrs: 1, wantSubstr: "salaryRange.min"},
		{name: "negative max", input: `{"salaryRange":{"max":-1}}`, wantErrs: 1, wantSubstr: "salaryRange.max"},
		{name: "both negative flagged independently", input: `{"salaryRange":{"min":-5,"max":-10}}`, wantErrs: 2},
		{name: "min above max allowed", input: `{"salaryRange":{"min":200000,"max":10}}`, wantValid: true},
		{name: "zero bounds allowed", input: `{"salaryRange":{"min":0,"max":0}}`, wantValid: true},
		{name: "salary range not object", input: `{"salaryRange":"lots"}`, wantErrs: 1, wantSubstr: "salaryRange must be an object"},
		{name: "salary range array", input: `{"salaryRange":[1,2]}`, wantErrs: 1},
		{name: "all rules collected", input: `{"preferredJobTypes":5,"salaryRange":{"min":-1,"max":-2}}`, wantErrs: 3},
		{name: "unknown fields ignored", input: `{"whatever":{"deep":true}}`, wantValid: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Validate(decode(t, tc.input))
			if res.IsValid != tc.wantValid {
				t.Fatalf("IsValid: got=%v want=%v (errors=%v)", res.IsValid, tc.wantValid, res.Errors)
			}
			if res.IsValid != (len(res.Errors) == 0) {
				t.Fatalf("IsValid must match empty error list: %+v", res)
			}
			if !tc.wantValid && len(res.Errors) != tc.wantErrs {
				t.Fatalf("errors: got=%d want=%d (%v)", len(res.Errors), tc.wantErrs, res.Errors)
			}
			if tc.wantSubstr != "" && !strings.Contains(strings.Join(res.Errors, "|"), tc.wantSubstr) {
				t.Fatalf("errors %v should mention %q", res.Errors, tc.wantSubstr)
			}
		})
	}
}

func TestValidateGarbageDoesNotPanic(t *testing.T) {
	inputs := []any{nil, "string", 42, []any{1, 2}, struct{}{}, make(chan int)}
	for _, in := range inputs {
		res := Validate(in)
		if res.IsValid {
			t.Errorf("Validate(%T) should be invalid", in)
		}
		if len(res.Errors) == 0 {
			t.Errorf("Validate(%T) should report at least one error", in)
		}
	}
}

func TestValidateJSON(t *testing.T) {
	obj, res := ValidateJSON([]byte(`{"salaryRange":{"min":"-3"}}`))
	if res.IsValid {
		t.Fatalf("numeric string below zero should be flagged: %+v", res)
	}
	if obj == nil {
		t.Fatalf("decoded object should be returned")
	}

	_, res = ValidateJSON([]byte(`{not json`))
	if res.IsValid || len(res.Errors) != 1 {
		t.Fatalf("malformed json should be a single validation error, got %+v", res)
	}
}
