package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dosecare/dosecare-backend/internal/apperr"
	"github.com/dosecare/dosecare-backend/internal/logger"
	"github.com/dosecare/dosecare-backend/internal/repos"
	"github.com/dosecare/dosecare-backend/internal/utils"
)

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthService issues and refreshes JWT token pairs.
type AuthService interface {
	Login(ctx context.Context, phone, password string) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
}

type authService struct {
	log          *logger.Logger
	userRepo     repos.UserRepo
	jwtSecretKey string
	accessTTL    time.Duration
	refreshTTL   time.Duration
}

func NewAuthService(
	log *logger.Logger,
	userRepo repos.UserRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	return &authService{
		log:          log.With("service", "AuthService"),
		userRepo:     userRepo,
		jwtSecretKey: jwtSecretKey,
		accessTTL:    accessTTL,
		refreshTTL:   refreshTTL,
	}
}

func (s *authService) Login(ctx context.Context, phone, password string) (*TokenPair, error) {
	user, err := s.userRepo.GetByPhone(ctx, nil, phone)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil || !user.IsActive || !utils.CheckPassword(user.PasswordHash, password) {
		return nil, apperr.Validation("invalid credentials")
	}
	return s.issuePair(user.ID)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	userID, err := utils.ParseToken(refreshToken, s.jwtSecretKey)
	if err != nil {
		return nil, apperr.Validation("invalid refresh token")
	}
	user, err := s.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, apperr.Validation("invalid refresh token")
	}
	return s.issuePair(user.ID)
}

func (s *authService) issuePair(userID uuid.UUID) (*TokenPair, error) {
	access, err := utils.GenerateToken(userID, s.jwtSecretKey, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := utils.GenerateToken(userID, s.jwtSecretKey, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
