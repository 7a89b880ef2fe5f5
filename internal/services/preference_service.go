package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/justsurfingit/job-board/internal/apierr"
	"github.com/justsurfingit/job-board/internal/logger"
	"github.com/justsurfingit/job-board/internal/models"
	"github.com/justsurfingit/job-board/internal/preferences"
)

type PreferenceService struct {
	DB  *gorm.DB
	log *logger.Logger
	now func() time.Time
}

func NewPreferenceService(db *gorm.DB, log *logger.Logger) *PreferenceService {
	return &PreferenceService{
		DB:  db,
		log: log.With("service", "PreferenceService"),
		now: func() time.Time { return time.Now().UTC() },
	}
}

type PreferencesResult struct {
	Preferences             models.JobPreferences `json:"preferences"`
	RecommendationReadiness int                   `json:"recommendationReadiness"`
}

func (s *PreferenceService) loadUser(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("user not found")
		}
		return nil, apierr.Internal("failed to load user", err)
	}
	return &user, nil
}

func (s *PreferenceService) Get(ctx context.Context, userID uint) (*PreferencesResult, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	prefs := user.Preferences.Data()
	return &PreferencesResult{Preferences: prefs, RecommendationReadiness: Readiness(user, prefs)}, nil
}

// Update validates the raw payload, merges it onto the stored preferences and
// persists the result.
func (s *PreferenceService) Update(ctx context.Context, userID uint, input any) (*PreferencesResult, error) {
	res := preferences.Validate(input)
	if !res.IsValid {
		return nil, apierr.Validation("invalid preferences", res.Errors...)
	}
	obj := input.(map[string]any)

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	next, err := preferences.Normalize(user.Preferences.Data(), obj, s.now())
	if err != nil {
		return nil, err
	}

	err = s.DB.WithContext(ctx).Model(user).Update("preferences", datatypes.NewJSONType(next)).Error
	if err != nil {
		return nil, apierr.Internal("failed to save preferences", err)
	}
	s.log.Info("preferences updated", "user_id", userID)
	return &PreferencesResult{Preferences: next, RecommendationReadiness: Readiness(user, next)}, nil
}

// Readiness scores 0-100 how much of the profile the recommender can use.
func Readiness(user *models.User, prefs models.JobPreferences) int {
	score := 0
	if len(user.Skills) > 0 {
		score += 25
	}
	if user.Location != "" {
		score += 15
	}
	if len(prefs.JobTypes) > 0 {
		score += 15
	}
	if len(prefs.Industries) > 0 {
		score += 15
	}
	if len(prefs.PreferredLocations) > 0 || prefs.RemoteWork {
		score += 15
	}
	if sr := prefs.SalaryRange; sr != nil && (sr.Min != nil || sr.Max != nil) {
		score += 15
	}
	return score
}
