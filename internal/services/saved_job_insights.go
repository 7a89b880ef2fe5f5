package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/justsurfingit/job-board/internal/apierr"
	"github.com/justsurfingit/job-board/internal/models"
)

type Analytics struct {
	TotalSaved       int                              `json:"totalSaved"`
	ByPriority       map[models.Priority]int          `json:"byPriority"`
	ByStatus         map[models.ApplicationStatus]int `json:"byStatus"`
	Industries       map[string]int                   `json:"industries"`
	JobTypes         map[string]int                   `json:"jobTypes"`
	AverageSalaryMin int                              `json:"averageSalaryMin"`
}

// Analytics summarizes the user's saved jobs. The salary average only counts
// jobs with a positive minimum salary.
func (s *SavedJobService) Analytics(ctx context.Context, userID uint) (*Analytics, error) {
	views, err := s.all(ctx, userID)
	if err != nil {
		return nil, err
	}

	a := &Analytics{
		TotalSaved: len(views),
		ByPriority: map[models.Priority]int{models.PriorityHigh: 0, models.PriorityMedium: 0, models.PriorityLow: 0},
		ByStatus:   map[models.ApplicationStatus]int{},
		Industries: map[string]int{},
		JobTypes:   map[string]int{},
	}
	for _, st := range models.ApplicationStatuses {
		a.ByStatus[st] = 0
	}

	salarySum, salaryN := 0, 0
	for _, v := range views {
		a.ByPriority[v.Priority]++
		a.ByStatus[v.ApplicationStatus]++
		if v.Job.Industry != "" {
			a.Industries[v.Job.Industry]++
		}
		if v.Job.JobType != "" {
			a.JobTypes[v.Job.JobType]++
		}
		if v.Job.SalaryMin > 0 {
			salarySum += v.Job.SalaryMin
			salaryN++
		}
	}
	if salaryN > 0 {
		a.AverageSalaryMin = int(math.Round(float64(salarySum) / float64(salaryN)))
	}
	return a, nil
}

type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

type Stats struct {
	Total         int            `json:"total"`
	HighPriority  int            `json:"highPriority"`
	Applied       int            `json:"applied"`
	Interviewing  int            `json:"interviewing"`
	Offers        int            `json:"offers"`
	WithReminders int            `json:"withReminders"`
	RecentlySaved []SavedJobView `json:"recentlySaved"`
	TopTags       []TagCount     `json:"topTags"`
}

const (
	recentSavesLimit = 5
	topTagsLimit     = 10
)

func (s *SavedJobService) Stats(ctx context.Context, userID uint) (*Stats, error) {
	views, err := s.all(ctx, userID)
	if err != nil {
		return nil, err
	}

	st := &Stats{Total: len(views), RecentlySaved: []SavedJobView{}, TopTags: []TagCount{}}
	tags := map[string]int{}
	for i, v := range views {
		if v.Priority == models.PriorityHigh {
			st.HighPriority++
		}
		switch v.ApplicationStatus {
		case models.StatusApplied:
			st.Applied++
		case models.StatusInterview:
			st.Interviewing++
		case models.StatusOffered:
			st.Offers++
		}
		if v.ReminderDate != nil {
			st.WithReminders++
		}
		// views come ordered by saved_at desc
		if i < recentSavesLimit {
			st.RecentlySaved = append(st.RecentlySaved, v)
		}
		for _, t := range v.Tags {
			tags[t]++
		}
	}

	for tag, n := range tags {
		st.TopTags = append(st.TopTags, TagCount{Tag: tag, Count: n})
	}
	sort.Slice(st.TopTags, func(i, j int) bool {
		if st.TopTags[i].Count != st.TopTags[j].Count {
			return st.TopTags[i].Count > st.TopTags[j].Count
		}
		return st.TopTags[i].Tag < st.TopTags[j].Tag
	})
	if len(st.TopTags) > topTagsLimit {
		st.TopTags = st.TopTags[:topTagsLimit]
	}
	return st, nil
}

type UpcomingDeadline struct {
	SavedJobView
	DaysLeft int `json:"daysLeft"`
}

const (
	DefaultDeadlineWindowDays = 7
	MaxDeadlineWindowDays     = 365
)

// DeadlineWindowDays maps a requested window onto [1, MaxDeadlineWindowDays];
// zero or negative means the default.
func DeadlineWindowDays(days int) int {
	if days <= 0 {
		return DefaultDeadlineWindowDays
	}
	return min(days, MaxDeadlineWindowDays)
}

// UpcomingDeadlines lists saved jobs whose application deadline falls between
// now and now+days, soonest first.
func (s *SavedJobService) UpcomingDeadlines(ctx context.Context, userID uint, days int) ([]UpcomingDeadline, error) {
	days = DeadlineWindowDays(days)
	now := s.now()
	until := now.Add(time.Duration(days) * 24 * time.Hour)

	views := []SavedJobView{}
	err := s.joined(ctx, userID).
		Select(savedJobColumns).
		Where("jobs.application_deadline IS NOT NULL AND jobs.application_deadline >= ? AND jobs.application_deadline <= ?", now, until).
		Order("jobs.application_deadline ASC").
		Order("saved_jobs.id DESC").
		Scan(&views).Error
	if err != nil {
		return nil, apierr.Internal("failed to load upcoming deadlines", err)
	}
	s.fillDaysSaved(views)

	out := make([]UpcomingDeadline, 0, len(views))
	for _, v := range views {
		left := 0
		if v.Job.Deadline != nil {
			left = models.DaysSaved(now, *v.Job.Deadline)
		}
		out = append(out, UpcomingDeadline{SavedJobView: v, DaysLeft: left})
	}
	return out, nil
}

var csvHeader = []string{
	"Job Title", "Company", "Location", "Salary Min", "Salary Max", "Currency",
	"Priority", "Application Status", "Tags", "Notes", "Saved At", "Days Saved",
}

// ExportCSV writes every saved job of the user as CSV, newest first.
func (s *SavedJobService) ExportCSV(ctx context.Context, userID uint, w io.Writer) error {
	views, err := s.all(ctx, userID)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return apierr.Internal("failed to write csv", err)
	}
	for _, v := range views {
		record := []string{
			v.Job.Title,
			v.Job.Company,
			v.Job.Location,
			salaryCell(v.Job.SalaryMin),
			salaryCell(v.Job.SalaryMax),
			v.Job.Currency,
			string(v.Priority),
			string(v.ApplicationStatus),
			strings.Join(v.Tags, ";"),
			v.Notes,
			v.SavedAt.UTC().Format(time.RFC3339),
			strconv.Itoa(v.DaysSaved),
		}
		if err := cw.Write(record); err != nil {
			return apierr.Internal("failed to write csv", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return apierr.Internal("failed to write csv", err)
	}
	return nil
}

func salaryCell(v int) string {
	if v <= 0 {
		return ""
	}
	return strconv.Itoa(v)
}

// Bulk operations.
const (
	BulkRemove                  = "remove"
	BulkUpdatePriority          = "updatePriority"
	BulkUpdateApplicationStatus = "updateApplicationStatus"
)

type BulkOperation struct {
	Action            string
	JobIDs            []uint
	Priority          models.Priority
	ApplicationStatus models.ApplicationStatus
}

type BulkResult struct {
	Action   string `json:"action"`
	Affected int64  `json:"affected"`
}

// Bulk applies one action to a set of the user's saved jobs. Ids the user has
// not saved are skipped silently.
func (s *SavedJobService) Bulk(ctx context.Context, userID uint, op BulkOperation) (*BulkResult, error) {
	if len(op.JobIDs) == 0 {
		return nil, apierr.InvalidInput("jobIds must be a non-empty array")
	}

	scoped := s.DB.WithContext(ctx).Model(&models.SavedJob{}).
		Where("user_id = ? AND job_id IN ?", userID, op.JobIDs)

	switch op.Action {
	case BulkRemove:
		jobIDs, err := s.bulkRemove(ctx, userID, op.JobIDs)
		if err != nil {
			return nil, err
		}
		for _, id := range jobIDs {
			s.recordEvent(ctx, userID, id, models.EventJobUnsaved, "bulk")
		}
		return &BulkResult{Action: op.Action, Affected: int64(len(jobIDs))}, nil

	case BulkUpdatePriority:
		if !op.Priority.Valid() {
			return nil, apierr.Validation("invalid bulk update", fmt.Sprintf("priority %q is not one of low, medium, high", op.Priority))
		}
		res := scoped.Update("priority", op.Priority)
		if res.Error != nil {
			return nil, apierr.Internal("failed to update saved jobs", res.Error)
		}
		return &BulkResult{Action: op.Action, Affected: res.RowsAffected}, nil

	case BulkUpdateApplicationStatus:
		if !op.ApplicationStatus.Valid() {
			return nil, apierr.Validation("invalid bulk update", fmt.Sprintf("applicationStatus %q is not supported", op.ApplicationStatus))
		}
		res := scoped.Update("application_status", op.ApplicationStatus)
		if res.Error != nil {
			return nil, apierr.Internal("failed to update saved jobs", res.Error)
		}
		return &BulkResult{Action: op.Action, Affected: res.RowsAffected}, nil
	}
	return nil, apierr.InvalidInput(fmt.Sprintf("unsupported bulk action %q", op.Action))
}

// bulkRemove deletes the matching saved rows and decrements the jobs' save
// counters in one transaction. It returns the job ids actually removed.
func (s *SavedJobService) bulkRemove(ctx context.Context, userID uint, candidates []uint) ([]uint, error) {
	var removed []uint
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var jobIDs []uint
		if err := tx.Model(&models.SavedJob{}).
			Where("user_id = ? AND job_id IN ?", userID, candidates).
			Pluck("job_id", &jobIDs).Error; err != nil {
			return apierr.Internal("failed to load saved jobs", err)
		}
		if len(jobIDs) == 0 {
			return nil
		}
		if err := tx.Where("user_id = ? AND job_id IN ?", userID, jobIDs).
			Delete(&models.SavedJob{}).Error; err != nil {
			return apierr.Internal("failed to remove saved jobs", err)
		}
		if err := tx.Model(&models.Job{}).Where("id IN ?", jobIDs).
			Update("save_count", gorm.Expr("CASE WHEN save_count > 0 THEN save_count - 1 ELSE 0 END")).Error; err != nil {
			return apierr.Internal("failed to update save counts", err)
		}
		removed = jobIDs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
