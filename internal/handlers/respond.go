package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/justsurfingit/job-board/internal/apierr"
	"github.com/justsurfingit/job-board/internal/auth"
	"github.com/justsurfingit/job-board/internal/logger"
)

// respondOK writes {"success": true, "data": data} plus any extra top-level keys.
func respondOK(c *gin.Context, status int, data interface{}, extra ...gin.H) {
	body := gin.H{"success": true, "data": data}
	for _, e := range extra {
		for k, v := range e {
			body[k] = v
		}
	}
	c.JSON(status, body)
}

// respondError maps err onto the failure envelope. Errors that are not
// *apierr.Error are reported as a generic 500.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	e, ok := apierr.As(err)
	if !ok {
		e = apierr.Internal("internal server error", err)
	}
	status := e.Status()
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "path", c.FullPath(), "error", err, "stack", string(e.Stack))
	}

	message := e.Message
	if e.Kind == apierr.KindInternal {
		message = "internal server error"
	}
	body := gin.H{"message": message, "code": e.Code()}
	if len(e.Details) > 0 {
		body["details"] = e.Details
	}
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": body})
}

// bindError turns a gin binding failure into a validation error listing every
// failed field rule.
func bindError(err error) error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		details := make([]string, 0, len(ve))
		for _, fe := range ve {
			details = append(details, describeField(fe))
		}
		return apierr.Validation("invalid request", details...)
	}
	if errors.Is(err, io.EOF) {
		return apierr.InvalidInput("request body is required")
	}
	return apierr.InvalidInput("invalid request: " + err.Error())
}

func describeField(fe validator.FieldError) string {
	field := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must have at least %s", field, fe.Param())
	case "email":
		return field + " must be a valid email"
	}
	return fmt.Sprintf("%s failed %s", field, fe.Tag())
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func pathID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apierr.InvalidInput("invalid " + name)
	}
	return uint(id), nil
}

// currentUserID is 0 for anonymous requests.
func currentUserID(c *gin.Context) uint {
	if s := auth.FromContext(c.Request.Context()); s != nil {
		return s.UserID
	}
	return 0
}

// currentSession is the zero Session for anonymous requests.
func currentSession(c *gin.Context) auth.Session {
	if s := auth.FromContext(c.Request.Context()); s != nil {
		return *s
	}
	return auth.Session{}
}

func queryInt(c *gin.Context, key string, def int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
