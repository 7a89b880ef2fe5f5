package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/justsurfingit/job-board/internal/apierr"
	"github.com/justsurfingit/job-board/internal/auth"
	"github.com/justsurfingit/job-board/internal/database"
	"github.com/justsurfingit/job-board/internal/dtos"
	"github.com/justsurfingit/job-board/internal/logger"
	"github.com/justsurfingit/job-board/internal/models"
)

type AuthService struct {
	DB     *gorm.DB
	tokens *auth.TokenManager
	log    *logger.Logger
	cost   int
}

func NewAuthService(db *gorm.DB, tokens *auth.TokenManager, log *logger.Logger) *AuthService {
	return &AuthService{
		DB:     db,
		tokens: tokens,
		log:    log.With("service", "AuthService"),
		cost:   bcrypt.DefaultCost,
	}
}

func (s *AuthService) Register(ctx context.Context, req dtos.RegisterRequest) (*dtos.AuthResponse, error) {
	role := models.Role(req.Role)
	if role == "" {
		role = models.RoleJobSeeker
	}
	if role == models.RoleEmployer && strings.TrimSpace(req.CompanyName) == "" {
		return nil, apierr.Validation("invalid registration", "companyName is required for employers")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, apierr.Internal("failed to hash password", err)
	}
	user := models.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(req.Name),
		Role:         role,
		CompanyName:  strings.TrimSpace(req.CompanyName),
		Location:     strings.TrimSpace(req.Location),
		Skills:       cleanTags(req.Skills),
	}
	if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
		if database.IsDuplicateKey(err) {
			return nil, apierr.Conflict("email is already registered")
		}
		return nil, apierr.Internal("failed to create user", err)
	}
	s.log.Info("user registered", "user_id", user.ID, "role", user.Role)
	return s.respond(&user)
}

func (s *AuthService) Login(ctx context.Context, req dtos.LoginRequest) (*dtos.AuthResponse, error) {
	var user models.User
	err := s.DB.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.Unauthorized("invalid email or password")
		}
		return nil, apierr.Internal("failed to load user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apierr.Unauthorized("invalid email or password")
	}
	return s.respond(&user)
}

func (s *AuthService) respond(user *models.User) (*dtos.AuthResponse, error) {
	token, exp, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apierr.Internal("failed to issue token", err)
	}
	return &dtos.AuthResponse{Token: token, ExpiresAt: exp.Unix(), UserID: user.ID, Role: string(user.Role)}, nil
}
