package recommend

import (
	"context"

	"github.com/justsurfingit/job-board/internal/apierr"
	"github.com/justsurfingit/job-board/internal/logger"
)

type Source string

const (
	SourcePrimary  Source = "primary"
	SourceFallback Source = "fallback"
	SourceFailed   Source = "failed"
)

// Result is the tagged outcome of Fetch. Response is nil only when Source is
// SourceFailed, in which case Err is set.
type Result struct {
	Source   Source
	Response *Response
	// PrimaryErr is kept when the fallback answered, for logging.
	PrimaryErr error
	Err        error
}

// Strategy asks Primary first and, on any failure, Fallback exactly once.
// A nil Primary counts as a failed primary.
type Strategy struct {
	Primary  Provider
	Fallback Provider
	Log      *logger.Logger
}

func (s *Strategy) Fetch(ctx context.Context, req Request) Result {
	var primaryErr error
	if s.Primary != nil {
		resp, err := s.Primary.Recommend(ctx, req)
		if err == nil {
			return Result{Source: SourcePrimary, Response: resp}
		}
		primaryErr = err
		s.logWarn("primary recommender failed, using fallback", "provider", s.Primary.Name(), "error", err)
	} else {
		primaryErr = apierr.UpstreamUnavailable("recommendation service not configured", nil)
	}

	if s.Fallback == nil {
		return Result{Source: SourceFailed, PrimaryErr: primaryErr, Err: apierr.UpstreamUnavailable("recommendations are unavailable", primaryErr)}
	}
	resp, err := s.Fallback.Recommend(ctx, req)
	if err != nil {
		s.logWarn("fallback recommender failed", "provider", s.Fallback.Name(), "error", err)
		return Result{Source: SourceFailed, PrimaryErr: primaryErr, Err: apierr.UpstreamUnavailable("recommendations are unavailable", err)}
	}
	return Result{Source: SourceFallback, Response: resp, PrimaryErr: primaryErr}
}

func (s *Strategy) logWarn(msg string, kv ...interface{}) {
	if s.Log != nil {
		s.Log.Warn(msg, kv...)
	}
}
