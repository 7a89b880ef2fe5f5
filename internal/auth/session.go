// Package auth carries the authenticated identity through a request and
// issues the tokens that prove it.
package auth

import (
	"context"

	"github.com/justsurfingit/job-board/internal/models"
)

type sessionKey struct{}

// Session is the identity resolved from a request's bearer token.
type Session struct {
	UserID uint
	Role   models.Role
}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns nil when the request is anonymous.
func FromContext(ctx context.Context) *Session {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	if !ok {
		return nil
	}
	return s
}

func (s *Session) HasRole(roles ...models.Role) bool {
	if s == nil {
		return false
	}
	for _, r := range roles {
		if s.Role == r {
			return true
		}
	}
	return false
}
