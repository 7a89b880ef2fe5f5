package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/justsurfingit/job-board/internal/auth"
	"github.com/justsurfingit/job-board/internal/logger"
	"github.com/justsurfingit/job-board/internal/models"
)

func TestCORSAllowsConfiguredOrigins(t *testing.T) {
	gin.SetMode(gin.TestMode)
	allowed := "http://localhost:5173"

	r := gin.New()
	r.Use(CORS([]string{allowed}))
	r.OPTIONS("/api/v1/saved-jobs", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	cases := []struct {
		origin string
		want   string
	}{
		{origin: allowed, want: allowed},
		{origin: "http://evil.test", want: ""},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/saved-jobs", nil)
		req.Header.Set("Origin", tc.origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tc.want {
			t.Fatalf("allow-origin for %s: got=%q want=%q", tc.origin, got, tc.want)
		}
	}
}

func newAuthRouter(t *testing.T) (*gin.Engine, *auth.TokenManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tokens := auth.NewTokenManager("secret", time.Hour)
	am := NewAuthMiddleware(logger.Nop(), tokens)

	r := gin.New()
	r.Use(RequestID(), RequestLogger(logger.Nop()))
	protected := r.Group("/", am.RequireAuth())
	protected.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": auth.FromContext(c.Request.Context()).UserID})
	})
	protected.GET("/employers", am.RequireRole(models.RoleEmployer), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r, tokens
}

func TestRequireAuth(t *testing.T) {
	r, tokens := newAuthRouter(t)
	token, _, err := tokens.Issue(&models.User{ID: 7, Role: models.RoleJobSeeker})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status: got=%d want=%d body=%s", rec.Code, tc.want, rec.Body.String())
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	r, tokens := newAuthRouter(t)
	seeker, _, _ := tokens.Issue(&models.User{ID: 1, Role: models.RoleJobSeeker})
	employer, _, _ := tokens.Issue(&models.User{ID: 2, Role: models.RoleEmployer})

	for token, want := range map[string]int{seeker: http.StatusForbidden, employer: http.StatusOK} {
		req := httptest.NewRequest(http.MethodGet, "/employers", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Fatalf("status: got=%d want=%d", rec.Code, want)
		}
	}
}

func TestRequestID(t *testing.T) {
	r, _ := newAuthRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(headerRequestID, "abc-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if got := rec.Header().Get(headerRequestID); got != "abc-123" {
		t.Fatalf("echoed request id: got=%q", got)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	if got := rec.Header().Get(headerRequestID); len(got) != 36 {
		t.Fatalf("generated request id: got=%q", got)
	}
}
