package services

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/justsurfingit/job-board/internal/apierr"
	"github.com/justsurfingit/job-board/internal/auth"
	"github.com/justsurfingit/job-board/internal/dtos"
	"github.com/justsurfingit/job-board/internal/logger"
	"github.com/justsurfingit/job-board/internal/models"
)

func TestCreateAndListJobs(t *testing.T) {
	f := newFixture(t)
	svc := NewJobService(f.db, logger.Nop(), f.svc)
	ctx := context.Background()

	created, err := svc.CreateJob(ctx, f.employer.ID, &dtos.JobCreationRequest{
		Title: " Platform Engineer ", Company: "Acme", Description: "Run the platform",
		Location: "Remote EU", JobType: "Full-time", Skills: []string{"Go", " ", "Kubernetes"},
		Currency: "eur",
	})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if created.Title != "Platform Engineer" || created.Status != models.JobStatusActive ||
		created.Salary.Currency != "EUR" || len(created.Skills) != 2 {
		t.Fatalf("created job: %+v", created)
	}
	f.job(t, "Draft role", func(j *models.Job) { j.Status = models.JobStatusDraft })

	if _, err := svc.CreateJob(ctx, 9999, &dtos.JobCreationRequest{Title: "x", Company: "y", Description: "z"}); !apierr.Is(err, apierr.KindNotFound) {
		t.Fatalf("unknown employer: got=%v", err)
	}

	page, err := svc.ListJobs(ctx, dtos.JobListQuery{Q: "platform"})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(page.Jobs) != 1 || page.Pagination.Total != 1 || page.Jobs[0].ID != created.ID {
		t.Fatalf("list: %+v", page)
	}

	all, err := svc.ListJobs(ctx, dtos.JobListQuery{})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if all.Pagination.Total != 1 {
		t.Fatalf("drafts must not be listed: total=%d", all.Pagination.Total)
	}
}

func TestGetJobCountsViewsAndReportsSaved(t *testing.T) {
	f := newFixture(t)
	svc := NewJobService(f.db, logger.Nop(), f.svc)
	ctx := context.Background()
	j := f.job(t, "Backend")

	anon, err := svc.GetJob(ctx, j.ID, 0)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if anon.IsSaved || anon.ViewCount != 1 {
		t.Fatalf("anonymous view: %+v", anon)
	}

	if _, err := f.svc.Save(ctx, f.seeker.ID, j.ID, SaveOptions{}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	seen, err := svc.GetJob(ctx, j.ID, f.seeker.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if !seen.IsSaved || seen.ViewCount != 2 {
		t.Fatalf("viewer: isSaved=%v views=%d", seen.IsSaved, seen.ViewCount)
	}

	if _, err := svc.GetJob(ctx, 9999, 0); !apierr.Is(err, apierr.KindNotFound) {
		t.Fatalf("missing job: got=%v", err)
	}
}

func TestTrackInteraction(t *testing.T) {
	f := newFixture(t)
	svc := NewJobService(f.db, logger.Nop(), f.svc)
	ctx := context.Background()
	j := f.job(t, "Backend")

	for _, action := range []string{InteractionClicked, InteractionApplied} {
		if err := svc.TrackInteraction(ctx, f.seeker.ID, j.ID, action); err != nil {
			t.Fatalf("TrackInteraction(%s): %v", action, err)
		}
	}
	var reloaded models.Job
	if err := f.db.First(&reloaded, j.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.ApplicationCount != 1 {
		t.Fatalf("application count: got=%d want=1", reloaded.ApplicationCount)
	}
	var events int64
	f.db.Model(&models.JobEvent{}).Where("job_id = ? AND event_type = ?", j.ID, models.EventJobInteraction).Count(&events)
	if events != 2 {
		t.Fatalf("interaction events: got=%d want=2", events)
	}

	if err := svc.TrackInteraction(ctx, f.seeker.ID, 9999, InteractionViewed); !apierr.Is(err, apierr.KindNotFound) {
		t.Fatalf("missing job: got=%v", err)
	}
}

func TestListJobsHugePage(t *testing.T) {
	f := newFixture(t)
	svc := NewJobService(f.db, logger.Nop(), f.svc)
	f.job(t, "Backend")

	for _, p := range []int{math.MaxInt, math.MaxInt/10 + 2} {
		page, err := svc.ListJobs(context.Background(), dtos.JobListQuery{Page: p, Limit: 10})
		if err != nil {
			t.Fatalf("ListJobs page=%d: %v", p, err)
		}
		if len(page.Jobs) != 0 || page.Pagination.Total != 1 || page.Pagination.HasNextPage {
			t.Fatalf("huge page %d: jobs=%d pagination=%+v", p, len(page.Jobs), page.Pagination)
		}
	}
}

func ptr[T any](v T) *T { return &v }

func TestUpdateJob(t *testing.T) {
	f := newFixture(t)
	svc := NewJobService(f.db, logger.Nop(), f.svc)
	ctx := context.Background()
	j := f.job(t, "Backend", func(j *models.Job) { j.ViewCount = 5 })
	owner := auth.Session{UserID: f.employer.ID, Role: models.RoleEmployer}

	deadline := testNow.Add(14 * 24 * time.Hour)
	got, err := svc.UpdateJob(ctx, owner, j.ID, &dtos.JobUpdateRequest{
		Title:               ptr(" Senior Backend "),
		Skills:              &[]string{"Go", ""},
		SalaryMin:           ptr(70000),
		Currency:            ptr("eur"),
		ApplicationDeadline: &deadline,
	})
	if err != nil {
		t.Fatalf("UpdateJob: %v", err)
	}
	if got.Title != "Senior Backend" || len(got.Skills) != 1 || got.Salary.Min != 70000 || got.Salary.Currency != "EUR" {
		t.Fatalf("updated job: %+v", got)
	}

	var reloaded models.Job
	f.db.First(&reloaded, j.ID)
	if reloaded.Title != "Senior Backend" || reloaded.Company != "Acme" || reloaded.ViewCount != 5 || reloaded.ApplicationDeadline == nil {
		t.Fatalf("persisted job: %+v", reloaded)
	}

	_, err = svc.UpdateJob(ctx, owner, j.ID, &dtos.JobUpdateRequest{Title: ptr("  "), SalaryMax: ptr(1000)})
	wantKind(t, err, apierr.KindValidation)
	if e, _ := apierr.As(err); len(e.Details) != 2 {
		t.Fatalf("details: got=%v", e.Details)
	}

	rival := models.User{Email: "hr@rival.test", PasswordHash: "x", Role: models.RoleEmployer, CompanyName: "Rival"}
	if err := f.db.Create(&rival).Error; err != nil {
		t.Fatalf("create rival: %v", err)
	}
	_, err = svc.UpdateJob(ctx, auth.Session{UserID: rival.ID, Role: models.RoleEmployer}, j.ID, &dtos.JobUpdateRequest{Title: ptr("Taken")})
	wantKind(t, err, apierr.KindForbidden)

	admin := auth.Session{UserID: rival.ID, Role: models.RoleAdmin}
	if _, err := svc.UpdateJob(ctx, admin, j.ID, &dtos.JobUpdateRequest{Status: ptr("closed")}); err != nil {
		t.Fatalf("admin update: %v", err)
	}
	// closed postings no longer take bookmarks
	_, err = f.svc.Save(ctx, f.seeker.ID, j.ID, SaveOptions{})
	wantKind(t, err, apierr.KindInvalidInput)

	_, err = svc.UpdateJob(ctx, owner, 9999, &dtos.JobUpdateRequest{Title: ptr("x")})
	wantKind(t, err, apierr.KindNotFound)
}

func TestDeleteJob(t *testing.T) {
	f := newFixture(t)
	svc := NewJobService(f.db, logger.Nop(), f.svc)
	ctx := context.Background()
	j := f.job(t, "Backend")
	f.saveAt(t, j.ID, testNow, SaveOptions{})

	wantKind(t, svc.DeleteJob(ctx, auth.Session{UserID: f.seeker.ID, Role: models.RoleEmployer}, j.ID), apierr.KindForbidden)

	owner := auth.Session{UserID: f.employer.ID, Role: models.RoleEmployer}
	if err := svc.DeleteJob(ctx, owner, j.ID); err != nil {
		t.Fatalf("DeleteJob: %v", err)
	}
	if saved, _ := f.svc.IsSaved(ctx, f.seeker.ID, j.ID); saved {
		t.Fatalf("bookmarks of a deleted job should be dropped")
	}
	_, err := svc.GetJob(ctx, j.ID, 0)
	wantKind(t, err, apierr.KindNotFound)
	wantKind(t, svc.DeleteJob(ctx, owner, j.ID), apierr.KindNotFound)

	res, err := f.svc.List(ctx, f.seeker.ID, ListOptions{})
	if err != nil || res.Pagination.Total != 0 {
		t.Fatalf("saved list after delete: res=%+v err=%v", res, err)
	}
}
