package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/justsurfingit/job-board/internal/models"
)

func TestIssueAndParse(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	token, exp, err := m.Issue(&models.User{ID: 42, Role: models.RoleEmployer})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if !exp.After(time.Now()) {
		t.Fatalf("expiry should be in the future: %v", exp)
	}

	s, err := m.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if s.UserID != 42 || s.Role != models.RoleEmployer {
		t.Fatalf("session: %+v", s)
	}
}

func TestParseRejects(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	token, _, _ := m.Issue(&models.User{ID: 1, Role: models.RoleJobSeeker})

	other := NewTokenManager("other-secret", time.Hour)
	if _, err := other.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong secret: got=%v", err)
	}

	expired := NewTokenManager("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, _ := expired.Issue(&models.User{ID: 1})
	if _, err := m.Parse(old); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token: got=%v", err)
	}

	if _, err := m.Parse("not.a.jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("garbage: got=%v", err)
	}
}

func TestSessionContext(t *testing.T) {
	if FromContext(context.Background()) != nil {
		t.Fatalf("anonymous context should carry no session")
	}
	ctx := WithSession(context.Background(), &Session{UserID: 3, Role: models.RoleAdmin})
	s := FromContext(ctx)
	if s == nil || !s.HasRole(models.RoleEmployer, models.RoleAdmin) || s.HasRole(models.RoleJobSeeker) {
		t.Fatalf("session: %+v", s)
	}
	var nilSession *Session
	if nilSession.HasRole(models.RoleAdmin) {
		t.Fatalf("nil session has no roles")
	}
}
