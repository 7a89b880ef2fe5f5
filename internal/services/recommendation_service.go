package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/justsurfingit/job-board/internal/apierr"
	"github.com/justsurfingit/job-board/internal/cache"
	"github.com/justsurfingit/job-board/internal/logger"
	"github.com/justsurfingit/job-board/internal/models"
	"github.com/justsurfingit/job-board/internal/recommend"
)

// RecommendationService answers the AI recommendation endpoint: it builds the
// request from the stored profile, runs the primary/fallback strategy and
// caches answers from the primary provider. Fallback answers are never
// cached, so the next call retries the primary.
type RecommendationService struct {
	DB       *gorm.DB
	strategy *recommend.Strategy
	cache    cache.Cache
	ttl      time.Duration
	log      *logger.Logger
}

// NewRecommendationService accepts a nil cache.
func NewRecommendationService(db *gorm.DB, strategy *recommend.Strategy, c cache.Cache, ttl time.Duration, log *logger.Logger) *RecommendationService {
	return &RecommendationService{
		DB:       db,
		strategy: strategy,
		cache:    c,
		ttl:      ttl,
		log:      log.With("service", "RecommendationService"),
	}
}

type Recommendations struct {
	Source   recommend.Source    `json:"source"`
	Cached   bool                `json:"cached"`
	Response *recommend.Response `json:"response"`
}

func (s *RecommendationService) Recommend(ctx context.Context, userID uint, limit int) (*Recommendations, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("user not found")
		}
		return nil, apierr.Internal("failed to load user", err)
	}
	req := recommend.BuildRequest(&user, user.Preferences.Data(), recommend.Options{Limit: limit})

	fp, err := fingerprint(req)
	if err == nil {
		if hit, ok := s.lookup(ctx, userID, fp); ok {
			hit.Cached = true
			return hit, nil
		}
	}

	res := s.strategy.Fetch(ctx, req)
	if res.Source == recommend.SourceFailed {
		s.log.Error("recommendations failed", "user_id", userID, "error", res.Err)
		return nil, res.Err
	}
	out := &Recommendations{Source: res.Source, Response: res.Response}
	if fp != "" && res.Source == recommend.SourcePrimary {
		s.store(ctx, userID, fp, out)
	}
	return out, nil
}

// Invalidate drops the cached answer for the user. It is called whenever the
// inputs to the request change.
func (s *RecommendationService) Invalidate(ctx context.Context, userID uint) {
	if s == nil || s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cacheKey(userID)); err != nil {
		s.log.Warn("recommendation cache delete failed", "user_id", userID, "error", err)
	}
}

// Each user has one cache slot. The entry carries the fingerprint of the
// request it answered; a different request is a miss.
type cachedRecommendations struct {
	Fingerprint string           `json:"fingerprint"`
	Value       *Recommendations `json:"value"`
}

func cacheKey(userID uint) string {
	return fmt.Sprintf("recs:%d", userID)
}

func fingerprint(req recommend.Request) (string, error) {
	raw, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:8]), nil
}

func (s *RecommendationService) lookup(ctx context.Context, userID uint, fp string) (*Recommendations, bool) {
	if s.cache == nil {
		return nil, false
	}
	var raw string
	if err := s.cache.Get(ctx, cacheKey(userID), &raw); err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			s.log.Warn("recommendation cache read failed", "error", err)
		}
		return nil, false
	}
	var entry cachedRecommendations
	if err := json.Unmarshal([]byte(raw), &entry); err != nil || entry.Fingerprint != fp || entry.Value == nil || entry.Value.Response == nil {
		return nil, false
	}
	return entry.Value, true
}

func (s *RecommendationService) store(ctx context.Context, userID uint, fp string, rec *Recommendations) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(cachedRecommendations{Fingerprint: fp, Value: rec})
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(userID), string(raw), s.ttl); err != nil {
		s.log.Warn("recommendation cache write failed", "error", err)
	}
}
