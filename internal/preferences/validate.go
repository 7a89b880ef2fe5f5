// Package preferences guards the shape of user-submitted job preferences and
// turns loosely-typed payloads into models.JobPreferences.
package preferences

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Result is the outcome of Validate. IsValid is true iff Errors is empty.
type Result struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// Validate checks the shape of a decoded JSON preferences payload. It never
// panics; anything unexpected is reported as an error entry. Every field is
// optional, and all violations are collected rather than stopping at the first.
//
// Rules: preferredJobTypes must be an array; salaryRange must be an object whose
// min and max, when present, are each non-negative. min <= max is not checked.
func Validate(input any) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{IsValid: false, Errors: []string{fmt.Sprintf("validation error: %v", r)}}
		}
	}()

	obj, ok := input.(map[string]any)
	if !ok {
		return Result{IsValid: false, Errors: []string{"preferences must be an object"}}
	}

	errs := []string{}
	if v, present := obj["preferredJobTypes"]; present && v != nil {
		if _, isArray := v.([]any); !isArray {
			errs = append(errs, "preferredJobTypes must be an array")
		}
	}

	if v, present := obj["salaryRange"]; present && v != nil {
		sr, isObject := v.(map[string]any)
		if !isObject {
			errs = append(errs, "salaryRange must be an object")
		} else {
			for _, bound := range []string{"min", "max"} {
				raw, present := sr[bound]
				if !present || raw == nil {
					continue
				}
				// Non-numeric bounds are left to Normalize, which drops them.
				if n, numeric := toFloat(raw); numeric && n < 0 {
					errs = append(errs, fmt.Sprintf("salaryRange.%s cannot be negative", bound))
				}
			}
		}
	}

	return Result{IsValid: len(errs) == 0, Errors: errs}
}

// ValidateJSON decodes raw and validates it. Malformed JSON is reported as
// an invalid result, not an error.
func ValidateJSON(raw []byte) (map[string]any, Result) {
	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, Result{IsValid: false, Errors: []string{fmt.Sprintf("validation error: %v", err)}}
	}
	res := Validate(v)
	obj, _ := v.(map[string]any)
	return obj, res
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}
