package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/justsurfingit/job-board/internal/dtos"
	"github.com/justsurfingit/job-board/internal/logger"
	"github.com/justsurfingit/job-board/internal/services"
)

type AuthHandler struct {
	AuthService *services.AuthService
	log         *logger.Logger
}

func NewAuthHandler(a *services.AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{AuthService: a, log: log.With("handler", "AuthHandler")}
}

// Register is POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dtos.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, bindError(err))
		return
	}
	res, err := h.AuthService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, http.StatusCreated, res)
}

// Login is POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dtos.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, bindError(err))
		return
	}
	res, err := h.AuthService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, http.StatusOK, res)
}
