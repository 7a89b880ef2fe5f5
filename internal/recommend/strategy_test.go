package recommend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/justsurfingit/job-board/internal/apierr"
	"github.com/justsurfingit/job-board/internal/models"
)

type fakeProvider struct {
	name  string
	calls atomic.Int32
	resp  *Response
	err   error
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Recommend(context.Context, Request) (*Response, error) {
	f.calls.Add(1)
	return f.resp, f.err
}

func okResponse(title string) *Response {
	return &Response{Success: true, Jobs: []JobSummary{{ID: "1", Title: title}}}
}

func TestFetchPrimarySuccessSkipsFallback(t *testing.T) {
	primary := &fakeProvider{name: "p", resp: okResponse("primary")}
	fallback := &fakeProvider{name: "f", resp: okResponse("fallback")}
	s := &Strategy{Primary: primary, Fallback: fallback}

	res := s.Fetch(context.Background(), Request{})
	if res.Source != SourcePrimary || res.Response.Jobs[0].Title != "primary" {
		t.Fatalf("result: %+v", res)
	}
	if fallback.calls.Load() != 0 {
		t.Fatalf("fallback calls: got=%d want=0", fallback.calls.Load())
	}
}

func TestFetchFallsBackExactlyOnceOn503(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	fallback := &fakeProvider{name: "f", resp: okResponse("legacy")}
	s := &Strategy{Primary: NewHTTPProvider(srv.URL, time.Second), Fallback: fallback}

	res := s.Fetch(context.Background(), Request{UserID: 1})
	if res.Source != SourceFallback {
		t.Fatalf("source: got=%s want=%s", res.Source, SourceFallback)
	}
	if hits.Load() != 1 || fallback.calls.Load() != 1 {
		t.Fatalf("calls: primary=%d fallback=%d", hits.Load(), fallback.calls.Load())
	}
	if !apierr.Is(res.PrimaryErr, apierr.KindUpstreamUnavailable) {
		t.Fatalf("primary error: %v", res.PrimaryErr)
	}
}

func TestFetchBothFailing(t *testing.T) {
	primary := &fakeProvider{name: "p", err: apierr.UpstreamUnavailable("down", nil)}
	fallback := &fakeProvider{name: "f", err: errors.New("db gone")}
	s := &Strategy{Primary: primary, Fallback: fallback}

	res := s.Fetch(context.Background(), Request{})
	if res.Source != SourceFailed || res.Response != nil {
		t.Fatalf("result: %+v", res)
	}
	if !apierr.Is(res.Err, apierr.KindUpstreamUnavailable) {
		t.Fatalf("error kind: %v", res.Err)
	}
	if primary.calls.Load() != 1 || fallback.calls.Load() != 1 {
		t.Fatalf("calls: primary=%d fallback=%d", primary.calls.Load(), fallback.calls.Load())
	}
}

func TestFetchWithoutPrimaryUsesFallback(t *testing.T) {
	fallback := &fakeProvider{name: "f", resp: okResponse("legacy")}
	res := (&Strategy{Fallback: fallback}).Fetch(context.Background(), Request{})
	if res.Source != SourceFallback {
		t.Fatalf("source: got=%s", res.Source)
	}
}

func TestHTTPProviderTreatsSuccessFalseAsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("request: method=%s content-type=%s", r.Method, r.Header.Get("Content-Type"))
		}
		_, _ = w.Write([]byte(`{"success":false,"message":"model warming up"}`))
	}))
	defer srv.Close()

	_, err := NewHTTPProvider(srv.URL, time.Second).Recommend(context.Background(), Request{})
	e, ok := apierr.As(err)
	if !ok || e.Kind != apierr.KindUpstreamUnavailable || e.Message != "model warming up" {
		t.Fatalf("error: %v", err)
	}
}

func TestHTTPProviderDecodesSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":[{"job_title":"ML Engineer","match_score":88}]}`))
	}))
	defer srv.Close()

	res, err := NewHTTPProvider(srv.URL, time.Second).Recommend(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(res.Jobs) != 1 || res.Jobs[0].Title != "ML Engineer" || res.Jobs[0].Score != 88 {
		t.Fatalf("jobs: %+v", res.Jobs)
	}
}

func TestBuildRequestDefaults(t *testing.T) {
	zero := 0
	user := &models.User{ID: 7, Location: " Austin ", ExperienceLevel: "Senior"}
	prefs := models.JobPreferences{SalaryRange: &models.SalaryRange{Min: &zero}}

	req := BuildRequest(user, prefs, Options{Limit: 500})
	if req.Limit != MaxLimit || req.UserID != 7 || req.Location != "Austin" {
		t.Fatalf("request: %+v", req)
	}
	if req.Skills == nil {
		t.Fatalf("skills should be an empty list, not null")
	}
	p := req.Preferences
	if p.SalaryRange.Min != nil || p.SalaryRange.Currency != DefaultCurrency {
		t.Fatalf("salary: %+v", p.SalaryRange)
	}
	if p.TravelWillingness != DefaultTravelWillingness || p.JobSearchUrgency != DefaultJobSearchUrgency {
		t.Fatalf("enum defaults: %+v", p)
	}
	if req.ExperienceLevel != "Senior" {
		t.Fatalf("experience should come from the profile, got=%q", req.ExperienceLevel)
	}

	if got := BuildRequest(user, models.JobPreferences{}, Options{}).Limit; got != DefaultLimit {
		t.Fatalf("default limit: got=%d", got)
	}
}
