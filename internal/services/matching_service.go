package services

import (
	"context"
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/justsurfingit/job-board/internal/apierr"
	"github.com/justsurfingit/job-board/internal/logger"
	"github.com/justsurfingit/job-board/internal/models"
	"github.com/justsurfingit/job-board/internal/recommend"
)

// MatcherService is the in-process recommender. It scores active jobs against
// the profile carried by a recommend.Request.
type MatcherService struct {
	DB  *gorm.DB
	log *logger.Logger
	now func() time.Time
}

func NewMatcherService(db *gorm.DB, log *logger.Logger) *MatcherService {
	return &MatcherService{
		DB:  db,
		log: log.With("service", "MatcherService"),
		now: func() time.Time { return time.Now().UTC() },
	}
}

const (
	candidatePoolSize = 200
	generalScore      = 60
	maxReasons        = 4
)

var experienceLadder = []string{"Entry-level", "Mid-level", "Senior", "Executive"}

var profileSuggestions = []string{
	"Add at least 3 relevant skills to your profile",
	"Set your preferred job types and industries",
	"Complete your work experience section",
	"Set your location preferences",
}

// Recommend builds a request from the stored profile and answers it locally.
func (s *MatcherService) Recommend(ctx context.Context, userID uint, limit int) (*recommend.Response, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("user not found")
		}
		return nil, apierr.Internal("failed to load user", err)
	}
	req := recommend.BuildRequest(&user, user.Preferences.Data(), recommend.Options{Limit: limit})
	return s.RecommendFor(ctx, req)
}

// RecommendFor implements recommend.Recommender.
func (s *MatcherService) RecommendFor(ctx context.Context, req recommend.Request) (*recommend.Response, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = recommend.DefaultLimit
	}
	profile := recommend.UserProfile{Skills: req.Skills, Location: req.Location, ExperienceLevel: req.ExperienceLevel}

	if !hasMinimumProfile(req) {
		jobs, err := s.popular(ctx, limit, req.ExcludeJobIDs)
		if err != nil {
			return nil, err
		}
		out := make([]recommend.JobSummary, 0, len(jobs))
		for _, j := range jobs {
			js := summarize(j)
			js.Score = generalScore
			js.Reasons = []string{"Popular job", "General recommendation"}
			out = append(out, js)
		}
		return &recommend.Response{
			Success:     true,
			Jobs:        out,
			UserProfile: profile,
			Metadata: recommend.Metadata{
				Algorithm:    "fallback",
				AverageScore: generalScore,
				Notice:       "Limited recommendations due to incomplete profile",
			},
			Suggestions: profileSuggestions,
		}, nil
	}

	q := s.DB.WithContext(ctx).Preload("Employer").
		Where("status = ?", models.JobStatusActive).
		Order("created_at DESC").Limit(candidatePoolSize)
	if len(req.ExcludeJobIDs) > 0 {
		q = q.Where("id NOT IN ?", req.ExcludeJobIDs)
	}
	var candidates []models.Job
	if err := q.Find(&candidates).Error; err != nil {
		return nil, apierr.Internal("failed to load jobs", err)
	}

	now := s.now()
	scored := make([]recommend.JobSummary, 0, len(candidates))
	for _, j := range candidates {
		if avoided(j, req.Preferences.AvoidKeywords) {
			continue
		}
		js := summarize(j)
		js.Score, js.Reasons = score(j, req, now)
		scored = append(scored, js)
	}
	sort.SliceStable(scored, func(i, k int) bool { return scored[i].Score > scored[k].Score })
	if len(scored) > limit {
		scored = scored[:limit]
	}

	avg := 0.0
	for _, js := range scored {
		avg += js.Score
	}
	if len(scored) > 0 {
		avg = math.Round(avg/float64(len(scored))*10) / 10
	}
	return &recommend.Response{
		Success:     true,
		Jobs:        scored,
		UserProfile: profile,
		Metadata:    recommend.Metadata{Algorithm: "rule-based", AverageScore: avg},
		Suggestions: []string{},
	}, nil
}

func hasMinimumProfile(req recommend.Request) bool {
	p := req.Preferences
	return req.Location != "" || len(req.Skills) > 0 || req.ExperienceLevel != "" ||
		len(p.Industries) > 0 || len(p.JobTypes) > 0 || len(p.PreferredLocations) > 0
}

func (s *MatcherService) popular(ctx context.Context, limit int, exclude []uint) ([]models.Job, error) {
	q := s.DB.WithContext(ctx).Preload("Employer").
		Where("status = ?", models.JobStatusActive).
		Order("view_count DESC").Order("created_at DESC").
		Limit(limit)
	if len(exclude) > 0 {
		q = q.Where("id NOT IN ?", exclude)
	}
	var jobs []models.Job
	if err := q.Find(&jobs).Error; err != nil {
		return nil, apierr.Internal("failed to load popular jobs", err)
	}
	return jobs, nil
}

// score is out of 100: a base of 50 plus skill, experience, industry,
// location, job type, salary, company size, recency and engagement bonuses.
func score(j models.Job, req recommend.Request, now time.Time) (float64, []string) {
	p := req.Preferences
	total := 50.0
	var reasons []string

	if matched := matchingSkills(j.Skills, req.Skills); len(matched) > 0 {
		total += float64(len(matched)) / float64(len(req.Skills)) * 30
		reasons = append(reasons, strconv.Itoa(len(matched))+" of your skills match this role")
	}

	if req.ExperienceLevel != "" {
		switch ladderDistance(req.ExperienceLevel, j.Experience) {
		case 0:
			total += 20
			reasons = append(reasons, "Perfect experience level match")
		case 1:
			total += 10
			reasons = append(reasons, "Compatible experience level")
		}
	}

	if contains(p.Industries, j.Industry) {
		total += 15
		reasons = append(reasons, "Industry matches your preferences")
	}

	switch {
	case locationMatches(j.Location, req.Location, p.PreferredLocations):
		total += 15
		reasons = append(reasons, "Location matches your area")
	case j.IsRemote:
		total += 10
		reasons = append(reasons, "Remote work opportunity")
	}

	if contains(p.JobTypes, j.JobType) {
		total += 10
		reasons = append(reasons, "Job type matches your preference")
	}

	if floor := p.SalaryRange.Min; floor != nil && j.Salary.Min > 0 {
		switch {
		case j.Salary.Min >= *floor:
			total += 10
			reasons = append(reasons, "Salary meets your expectations")
		case float64(j.Salary.Min) >= float64(*floor)*0.8:
			total += 5
		}
	}

	age := now.Sub(j.CreatedAt)
	switch {
	case age <= 7*24*time.Hour:
		total += 5
		reasons = append(reasons, "Recently posted opportunity")
	case age <= 30*24*time.Hour:
		total += 3
	}

	engagement := j.ViewCount + 2*j.ApplicationCount + j.SaveCount
	switch {
	case engagement > 50:
		total += 5
		reasons = append(reasons, "High-interest position")
	case engagement > 20:
		total += 3
	}

	if len(reasons) == 0 {
		reasons = append(reasons, "Quality opportunity in your field")
		if name := j.Employer.CompanyName; name != "" {
			reasons = append(reasons, "From "+name)
		}
	}
	if len(reasons) > maxReasons {
		reasons = reasons[:maxReasons]
	}
	return math.Min(math.Round(total), 100), reasons
}

func summarize(j models.Job) recommend.JobSummary {
	company := j.Company
	if company == "" {
		company = j.Employer.CompanyName
	}
	skills := []string(j.Skills)
	if skills == nil {
		skills = []string{}
	}
	return recommend.JobSummary{
		ID:         strconv.FormatUint(uint64(j.ID), 10),
		Title:      j.Title,
		Company:    company,
		Location:   j.Location,
		JobType:    j.JobType,
		Industry:   j.Industry,
		Experience: j.Experience,
		Skills:     skills,
		SalaryMin:  j.Salary.Min,
		SalaryMax:  j.Salary.Max,
		Currency:   j.Salary.Currency,
		IsRemote:   j.IsRemote,
		Reasons:    []string{},
	}
}

// matchingSkills returns job skills that contain, or are contained in, any user skill.
func matchingSkills(jobSkills, userSkills []string) []string {
	var out []string
	for _, js := range jobSkills {
		jl := strings.ToLower(js)
		for _, us := range userSkills {
			ul := strings.ToLower(strings.TrimSpace(us))
			if ul == "" {
				continue
			}
			if strings.Contains(jl, ul) || strings.Contains(ul, jl) {
				out = append(out, js)
				break
			}
		}
	}
	return out
}

// ladderDistance is -1 when either level is unknown.
func ladderDistance(a, b string) int {
	ia, ib := -1, -1
	for i, lvl := range experienceLadder {
		if lvl == a {
			ia = i
		}
		if lvl == b {
			ib = i
		}
	}
	if ia < 0 || ib < 0 {
		return -1
	}
	if ia > ib {
		return ia - ib
	}
	return ib - ia
}

func locationMatches(jobLoc, userLoc string, preferred []string) bool {
	jl := strings.ToLower(jobLoc)
	if jl == "" {
		return false
	}
	if userLoc != "" && strings.Contains(jl, strings.ToLower(userLoc)) {
		return true
	}
	for _, p := range preferred {
		if p != "" && strings.Contains(jl, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

func avoided(j models.Job, keywords []string) bool {
	text := strings.ToLower(j.Title + " " + j.Description)
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" && strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func contains(list []string, v string) bool {
	if v == "" {
		return false
	}
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

type TrendingJob struct {
	models.Job
	TrendScore int `json:"trendScore"`
}

const (
	DefaultTrendingDays  = 7
	DefaultTrendingLimit = 10
)

// Trending ranks active jobs posted within the last days by engagement.
func (s *MatcherService) Trending(ctx context.Context, limit, days int) ([]TrendingJob, error) {
	if limit <= 0 || limit > MaxPageLimit {
		limit = DefaultTrendingLimit
	}
	if days <= 0 {
		days = DefaultTrendingDays
	}
	since := s.now().Add(-time.Duration(days) * 24 * time.Hour)

	var jobs []models.Job
	err := s.DB.WithContext(ctx).Preload("Employer").
		Where("status = ? AND created_at >= ?", models.JobStatusActive, since).
		Order("view_count DESC").Order("application_count DESC").Order("created_at DESC").
		Limit(limit).
		Find(&jobs).Error
	if err != nil {
		return nil, apierr.Internal("failed to load trending jobs", err)
	}
	out := make([]TrendingJob, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, TrendingJob{Job: j, TrendScore: j.ViewCount + 2*j.ApplicationCount})
	}
	return out, nil
}
