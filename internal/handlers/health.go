package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthHandler struct {
	DB *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{DB: db}
}

// HealthCheck reports the API status and whether the database answers.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	dbStatus := "up"
	if sqlDB, err := h.DB.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		dbStatus = "down"
	}
	status := http.StatusOK
	if dbStatus != "up" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"success":   dbStatus == "up",
		"status":    dbStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
