package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/justsurfingit/job-board/internal/auth"
	"github.com/justsurfingit/job-board/internal/logger"
	"github.com/justsurfingit/job-board/internal/models"
)

type AuthMiddleware struct {
	log    *logger.Logger
	tokens *auth.TokenManager
}

func NewAuthMiddleware(log *logger.Logger, tokens *auth.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "AuthMiddleware"), tokens: tokens}
}

// RequireAuth rejects requests without a valid bearer token and attaches
// the session to the request context otherwise.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			abort(c, http.StatusUnauthorized, "missing or invalid token", "unauthorized")
			return
		}
		session, err := am.tokens.Parse(tokenString)
		if err != nil {
			am.log.Debug("token rejected", "error", err)
			abort(c, http.StatusUnauthorized, "missing or invalid token", "unauthorized")
			return
		}
		c.Request = c.Request.WithContext(auth.WithSession(c.Request.Context(), session))
		c.Set("user_id", session.UserID)
		c.Next()
	}
}

// OptionalAuth attaches a session when a valid token is present and lets
// anonymous requests through otherwise.
func (am *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := bearerToken(c); tokenString != "" {
			if session, err := am.tokens.Parse(tokenString); err == nil {
				c.Request = c.Request.WithContext(auth.WithSession(c.Request.Context(), session))
				c.Set("user_id", session.UserID)
			}
		}
		c.Next()
	}
}

// RequireRole must run after RequireAuth.
func (am *AuthMiddleware) RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := auth.FromContext(c.Request.Context())
		if session == nil {
			abort(c, http.StatusUnauthorized, "missing or invalid token", "unauthorized")
			return
		}
		if !session.HasRole(roles...) {
			abort(c, http.StatusForbidden, "access denied for role "+string(session.Role), "forbidden")
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}

func abort(c *gin.Context, status int, message, code string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   gin.H{"message": message, "code": code},
	})
}
