package services

import (
	"context"
	"strings"
	"testing"

	"github.com/justsurfingit/job-board/internal/apierr"
	"github.com/justsurfingit/job-board/internal/auth"
	"github.com/justsurfingit/job-board/internal/logger"
	"github.com/justsurfingit/job-board/internal/models"
)

func newApplications(f *fixture) *ApplicationService {
	return NewApplicationService(f.db, logger.Nop(), f.svc)
}

func (f *fixture) reloadJob(t *testing.T, id uint) models.Job {
	t.Helper()
	var j models.Job
	if err := f.db.Unscoped().First(&j, id).Error; err != nil {
		t.Fatalf("reload job %d: %v", id, err)
	}
	return j
}

func TestApplyAndDuplicate(t *testing.T) {
	f := newFixture(t)
	svc := newApplications(f)
	ctx := context.Background()
	j := f.job(t, "Backend")
	f.saveAt(t, j.ID, testNow, SaveOptions{})

	salary := 80000
	app, err := svc.Apply(ctx, f.seeker.ID, j.ID, ApplyOptions{CoverLetter: "Hello", ExpectedSalary: &salary})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if app.ID == 0 || app.Status != models.StatePending || app.AppliedAt.IsZero() {
		t.Fatalf("application: %+v", app)
	}

	_, err = svc.Apply(ctx, f.seeker.ID, j.ID, ApplyOptions{})
	wantKind(t, err, apierr.KindConflict)

	if got := f.reloadJob(t, j.ID); got.ApplicationCount != 1 {
		t.Fatalf("application count: got=%d want=1", got.ApplicationCount)
	}
	saved, _, _ := f.svc.Lookup(ctx, f.seeker.ID, j.ID)
	if saved.ApplicationStatus != models.StatusApplied {
		t.Fatalf("saved status: got=%s want=%s", saved.ApplicationStatus, models.StatusApplied)
	}
	var events int64
	f.db.Model(&models.JobEvent{}).Where("job_id = ? AND event_type = ?", j.ID, models.EventJobApplied).Count(&events)
	if events != 1 {
		t.Fatalf("applied events: got=%d want=1", events)
	}
}

func TestApplyRejections(t *testing.T) {
	f := newFixture(t)
	svc := newApplications(f)
	ctx := context.Background()
	closed := f.job(t, "Closed", func(j *models.Job) { j.Status = models.JobStatusClosed })

	_, err := svc.Apply(ctx, f.seeker.ID, closed.ID, ApplyOptions{})
	wantKind(t, err, apierr.KindInvalidInput)
	_, err = svc.Apply(ctx, f.seeker.ID, 9999, ApplyOptions{})
	wantKind(t, err, apierr.KindNotFound)

	open := f.job(t, "Open")
	_, err = svc.Apply(ctx, f.seeker.ID, open.ID, ApplyOptions{CoverLetter: strings.Repeat("x", models.MaxCoverLetterLength+1)})
	wantKind(t, err, apierr.KindValidation)
	negative := -1
	_, err = svc.Apply(ctx, f.seeker.ID, open.ID, ApplyOptions{ExpectedSalary: &negative})
	wantKind(t, err, apierr.KindValidation)

	if got := f.reloadJob(t, open.ID); got.ApplicationCount != 0 {
		t.Fatalf("rejected applies must not count: got=%d", got.ApplicationCount)
	}
}

func TestApplyLeavesAdvancedSavedStatus(t *testing.T) {
	f := newFixture(t)
	svc := newApplications(f)
	ctx := context.Background()
	j := f.job(t, "Backend")
	f.saveAt(t, j.ID, testNow, SaveOptions{})
	interview := models.StatusInterview
	if _, err := f.svc.Update(ctx, f.seeker.ID, j.ID, SavedJobPatch{ApplicationStatus: &interview}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if _, err := svc.Apply(ctx, f.seeker.ID, j.ID, ApplyOptions{}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	saved, _, _ := f.svc.Lookup(ctx, f.seeker.ID, j.ID)
	if saved.ApplicationStatus != models.StatusInterview {
		t.Fatalf("saved status should stay %s, got=%s", models.StatusInterview, saved.ApplicationStatus)
	}
}

func TestWithdraw(t *testing.T) {
	f := newFixture(t)
	svc := newApplications(f)
	ctx := context.Background()
	j := f.job(t, "Backend")
	app, err := svc.Apply(ctx, f.seeker.ID, j.ID, ApplyOptions{})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	wantKind(t, svc.Withdraw(ctx, f.employer.ID, app.ID), apierr.KindForbidden)
	if err := svc.Withdraw(ctx, f.seeker.ID, app.ID); err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	wantKind(t, svc.Withdraw(ctx, f.seeker.ID, app.ID), apierr.KindNotFound)
	if got := f.reloadJob(t, j.ID); got.ApplicationCount != 0 {
		t.Fatalf("application count: got=%d want=0", got.ApplicationCount)
	}

	// withdrawing frees the pair for a new application
	again, err := svc.Apply(ctx, f.seeker.ID, j.ID, ApplyOptions{})
	if err != nil {
		t.Fatalf("re-apply: %v", err)
	}
	owner := auth.Session{UserID: f.employer.ID, Role: models.RoleEmployer}
	rejected := models.StateRejected
	if _, err := svc.UpdateStatus(ctx, owner, again.ID, ApplicationPatch{Status: &rejected}); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	wantKind(t, svc.Withdraw(ctx, f.seeker.ID, again.ID), apierr.KindInvalidInput)
}

func TestMine(t *testing.T) {
	f := newFixture(t)
	svc := newApplications(f)
	ctx := context.Background()
	owner := auth.Session{UserID: f.employer.ID, Role: models.RoleEmployer}

	var ids []uint
	for _, title := range []string{"A", "B", "C"} {
		j := f.job(t, title)
		app, err := svc.Apply(ctx, f.seeker.ID, j.ID, ApplyOptions{})
		if err != nil {
			t.Fatalf("Apply %s: %v", title, err)
		}
		ids = append(ids, app.ID)
	}
	reviewing := models.StateReviewing
	if _, err := svc.UpdateStatus(ctx, owner, ids[0], ApplicationPatch{Status: &reviewing}); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	page, err := svc.Mine(ctx, f.seeker.ID, 1, 2, "")
	if err != nil {
		t.Fatalf("Mine: %v", err)
	}
	if len(page.Applications) != 2 || page.Pagination.Total != 3 || !page.Pagination.HasNextPage {
		t.Fatalf("first page: apps=%d pagination=%+v", len(page.Applications), page.Pagination)
	}
	if page.Applications[0].Job == nil || page.Applications[0].Job.Title == "" {
		t.Fatalf("job should be preloaded: %+v", page.Applications[0])
	}
	if page.StatusBreakdown[models.StatePending] != 2 || page.StatusBreakdown[models.StateReviewing] != 1 {
		t.Fatalf("breakdown: %v", page.StatusBreakdown)
	}

	filtered, err := svc.Mine(ctx, f.seeker.ID, 1, 10, models.StateReviewing)
	if err != nil || len(filtered.Applications) != 1 || filtered.Applications[0].ID != ids[0] {
		t.Fatalf("filtered: res=%+v err=%v", filtered, err)
	}
	if filtered.StatusBreakdown[models.StatePending] != 2 {
		t.Fatalf("breakdown ignores the filter: %v", filtered.StatusBreakdown)
	}

	_, err = svc.Mine(ctx, f.seeker.ID, 1, 10, "ghosted")
	wantKind(t, err, apierr.KindInvalidInput)
}

func TestForJobAndUpdateStatus(t *testing.T) {
	f := newFixture(t)
	svc := newApplications(f)
	ctx := context.Background()
	j := f.job(t, "Backend")
	f.saveAt(t, j.ID, testNow, SaveOptions{})
	app, err := svc.Apply(ctx, f.seeker.ID, j.ID, ApplyOptions{CoverLetter: "Hi"})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	owner := auth.Session{UserID: f.employer.ID, Role: models.RoleEmployer}
	stranger := auth.Session{UserID: f.seeker.ID, Role: models.RoleEmployer}

	list, err := svc.ForJob(ctx, owner, j.ID)
	if err != nil {
		t.Fatalf("ForJob: %v", err)
	}
	if len(list) != 1 || list[0].Applicant == nil || list[0].Applicant.Name != "Sam" {
		t.Fatalf("applications: %+v", list)
	}
	_, err = svc.ForJob(ctx, stranger, j.ID)
	wantKind(t, err, apierr.KindForbidden)

	scheduled := models.StateInterviewScheduled
	notes := "strong Go background"
	got, err := svc.UpdateStatus(ctx, owner, app.ID, ApplicationPatch{Status: &scheduled, EmployerNotes: &notes})
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if got.Status != scheduled || got.EmployerNotes != notes || got.Job == nil || got.Job.ID != j.ID {
		t.Fatalf("updated application: %+v", got)
	}
	saved, _, _ := f.svc.Lookup(ctx, f.seeker.ID, j.ID)
	if saved.ApplicationStatus != models.StatusInterview {
		t.Fatalf("saved status: got=%s want=%s", saved.ApplicationStatus, models.StatusInterview)
	}

	_, err = svc.UpdateStatus(ctx, stranger, app.ID, ApplicationPatch{Status: &scheduled})
	wantKind(t, err, apierr.KindForbidden)

	bogus := models.ApplicationState("hired")
	_, err = svc.UpdateStatus(ctx, owner, app.ID, ApplicationPatch{Status: &bogus})
	wantKind(t, err, apierr.KindValidation)

	admin := auth.Session{UserID: f.seeker.ID, Role: models.RoleAdmin}
	accepted := models.StateAccepted
	if _, err := svc.UpdateStatus(ctx, admin, app.ID, ApplicationPatch{Status: &accepted}); err != nil {
		t.Fatalf("admin UpdateStatus: %v", err)
	}
	saved, _, _ = f.svc.Lookup(ctx, f.seeker.ID, j.ID)
	if saved.ApplicationStatus != models.StatusOffered {
		t.Fatalf("saved status: got=%s want=%s", saved.ApplicationStatus, models.StatusOffered)
	}

	_, err = svc.UpdateStatus(ctx, owner, 9999, ApplicationPatch{Status: &accepted})
	wantKind(t, err, apierr.KindNotFound)
}

func TestApplicationsSurviveJobDeletion(t *testing.T) {
	f := newFixture(t)
	svc := newApplications(f)
	jobs := NewJobService(f.db, logger.Nop(), f.svc)
	ctx := context.Background()
	j := f.job(t, "Backend")
	if _, err := svc.Apply(ctx, f.seeker.ID, j.ID, ApplyOptions{}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if err := jobs.DeleteJob(ctx, auth.Session{UserID: f.employer.ID, Role: models.RoleEmployer}, j.ID); err != nil {
		t.Fatalf("DeleteJob: %v", err)
	}

	page, err := svc.Mine(ctx, f.seeker.ID, 1, 10, "")
	if err != nil {
		t.Fatalf("Mine: %v", err)
	}
	if len(page.Applications) != 1 || page.Applications[0].Job == nil || page.Applications[0].Job.Title != "Backend" {
		t.Fatalf("application of a deleted job: %+v", page.Applications)
	}
}
