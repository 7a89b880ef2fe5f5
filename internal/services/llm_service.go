package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"gorm.io/gorm"

	"github.com/justsurfingit/job-board/internal/apierr"
	"github.com/justsurfingit/job-board/internal/dtos"
	"github.com/justsurfingit/job-board/internal/logger"
	"github.com/justsurfingit/job-board/internal/models"
)

type LLMService struct {
	// nil when no API key is configured
	Client llms.Model
	DB     *gorm.DB
	log    *logger.Logger
}

// NewLLMService initializes the Gemini client. An empty apiKey yields a
// service whose AI calls report UpstreamUnavailable and whose salary
// prediction uses market data only.
func NewLLMService(ctx context.Context, apiKey, model string, db *gorm.DB, log *logger.Logger) (*LLMService, error) {
	s := &LLMService{DB: db, log: log.With("service", "LLMService")}
	if apiKey == "" {
		s.log.Warn("GEMINI_API_KEY is empty, AI features disabled")
		return s, nil
	}
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	s.Client = llm
	return s, nil
}

const maxExtractionInput = 20000

const jobExtractionPrompt = `
You are an expert Job Data Extraction Agent. Your task is to analyze the provided raw HTML/Text from a job posting and extract structured data.

### INSTRUCTIONS:
1. **Analyze** the text to identify the core job details.
2. **Ignore** navigation menus, footers, "similar jobs" lists, and site advertisements.
3. **Extract** the following fields strictly.
4. **Format** the output as valid JSON only. Do not wrap the output in markdown code blocks.

### OUTPUT SCHEMA:
{
    "title": "Job title (e.g., Senior Backend Engineer)",
    "company": "Name of the company (e.g., Google, StartupInc)",
    "location": "Job location or 'Remote'",
    "description": "A clean summary of the job. Focus on Responsibilities and Requirements. Remove HTML tags.",
    "jobType": "One of Full-time, Part-time, Contract, Internship, Freelance, Remote",
    "skills": ["Array", "of", "technologies", "mentioned"],
    "salaryMin": "Lower salary bound as a number if explicitly mentioned, otherwise null",
    "salaryMax": "Upper salary bound as a number if explicitly mentioned, otherwise null",
    "isRemote": "true if the role can be done remotely"
}

### CONSTRAINT:
If a piece of information is missing, set the value to null. Do not hallucinate or guess.

### RAW CONTENT:
%s
`

// ExtractJobDetails turns a raw job posting into JSON matching the job creation fields.
func (s *LLMService) ExtractJobDetails(ctx context.Context, rawHTML string) (json.RawMessage, error) {
	if s.Client == nil {
		return nil, apierr.UpstreamUnavailable("AI extraction is not configured", nil)
	}
	if len(rawHTML) > maxExtractionInput {
		rawHTML = rawHTML[:maxExtractionInput]
	}
	resp, err := llms.GenerateFromSinglePrompt(ctx, s.Client, fmt.Sprintf(jobExtractionPrompt, rawHTML), llms.WithTemperature(0))
	if err != nil {
		return nil, apierr.UpstreamUnavailable("AI extraction failed", err)
	}
	out := stripCodeFence(resp)
	if !json.Valid([]byte(out)) {
		return nil, apierr.UpstreamUnavailable("AI extraction returned invalid JSON", nil)
	}
	return json.RawMessage(out), nil
}

// stripCodeFence removes a ```json ... ``` wrapper the model sometimes adds anyway.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

type SalaryPrediction struct {
	Min        int    `json:"min"`
	Max        int    `json:"max"`
	Median     int    `json:"median"`
	Currency   string `json:"currency"`
	Source     string `json:"source"`
	SampleSize int    `json:"sampleSize,omitempty"`
}

const salaryPrompt = `You estimate annual salaries. Answer with JSON only, no markdown:
{"min": number, "max": number, "median": number, "currency": "USD"}

Role: %s
Location: %s
Experience level: %s
Industry: %s
Skills: %s
`

// PredictSalary asks the model first, then falls back to the average of
// similar active postings, then to a rule-based estimate.
func (s *LLMService) PredictSalary(ctx context.Context, req dtos.SalaryPredictionRequest) (*SalaryPrediction, error) {
	if s.Client != nil {
		p, err := s.predictWithModel(ctx, req)
		if err == nil {
			return p, nil
		}
		s.log.Warn("AI salary prediction failed, using market data", "error", err)
	}
	p, err := s.predictFromMarket(ctx, req)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return p, nil
	}
	return ruleBasedSalary(req), nil
}

func (s *LLMService) predictWithModel(ctx context.Context, req dtos.SalaryPredictionRequest) (*SalaryPrediction, error) {
	prompt := fmt.Sprintf(salaryPrompt, req.Title, req.Location, req.Experience, req.Industry, strings.Join(req.Skills, ", "))
	resp, err := llms.GenerateFromSinglePrompt(ctx, s.Client, prompt, llms.WithTemperature(0.2))
	if err != nil {
		return nil, err
	}
	var p SalaryPrediction
	if err := json.Unmarshal([]byte(stripCodeFence(resp)), &p); err != nil {
		return nil, err
	}
	if p.Min <= 0 || p.Max < p.Min {
		return nil, fmt.Errorf("implausible salary range %d-%d", p.Min, p.Max)
	}
	if p.Median == 0 {
		p.Median = (p.Min + p.Max) / 2
	}
	if p.Currency == "" {
		p.Currency = "USD"
	}
	p.Source = "ai"
	return &p, nil
}

// predictFromMarket returns nil when no similar posting carries a salary.
func (s *LLMService) predictFromMarket(ctx context.Context, req dtos.SalaryPredictionRequest) (*SalaryPrediction, error) {
	q := s.DB.WithContext(ctx).Model(&models.Job{}).
		Where("status = ? AND salary_min > 0", models.JobStatusActive)
	if title := strings.ToLower(strings.TrimSpace(req.Title)); title != "" {
		q = q.Where("LOWER(title) LIKE ?", "%"+title+"%")
	}
	if loc := strings.ToLower(strings.TrimSpace(req.Location)); loc != "" {
		q = q.Where("LOWER(location) LIKE ?", "%"+loc+"%")
	}
	if req.Experience != "" {
		q = q.Where("experience = ?", req.Experience)
	}

	var agg struct {
		N      int
		AvgMin float64
		AvgMax float64
	}
	err := q.Select("COUNT(*) AS n, COALESCE(AVG(salary_min), 0) AS avg_min, COALESCE(AVG(CASE WHEN salary_max > 0 THEN salary_max END), 0) AS avg_max").
		Scan(&agg).Error
	if err != nil {
		return nil, apierr.Internal("failed to aggregate salaries", err)
	}
	if agg.N == 0 {
		return nil, nil
	}
	lo := int(math.Round(agg.AvgMin))
	hi := int(math.Round(agg.AvgMax))
	if hi < lo {
		hi = lo
	}
	return &SalaryPrediction{Min: lo, Max: hi, Median: (lo + hi) / 2, Currency: "USD", Source: "market", SampleSize: agg.N}, nil
}

var (
	experienceMultipliers = map[string]float64{"Entry-level": 1.0, "Mid-level": 1.4, "Senior": 1.8, "Executive": 2.5}
	industryMultipliers   = map[string]float64{"Software": 1.3, "AI/ML": 1.4, "Fintech": 1.3, "Healthcare": 1.1, "Education": 0.9, "Media": 1.0}
	locationMultipliers   = []struct {
		City string
		Mult float64
	}{{"San Francisco", 1.4}, {"New York", 1.3}, {"Seattle", 1.2}, {"Austin", 1.1}, {"Boston", 1.2}, {"Remote", 1.1}}
)

func ruleBasedSalary(req dtos.SalaryPredictionRequest) *SalaryPrediction {
	base := 60000.0
	if m, ok := experienceMultipliers[req.Experience]; ok {
		base *= m
	}
	if m, ok := industryMultipliers[req.Industry]; ok {
		base *= m
	}
	for _, l := range locationMultipliers {
		if strings.Contains(req.Location, l.City) {
			base *= l.Mult
			break
		}
	}
	base *= 1 + float64(len(req.Skills))*0.05

	median := int(math.Round(base))
	return &SalaryPrediction{
		Min:      int(math.Round(base * 0.85)),
		Max:      int(math.Round(base * 1.15)),
		Median:   median,
		Currency: "USD",
		Source:   "rule-based",
	}
}
