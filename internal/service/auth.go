package service

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"library-lending-backend/internal/domain"
	"library-lending-backend/internal/logger"
	"library-lending-backend/internal/repository"
	"library-lending-backend/internal/security"
)

type authService struct {
	userRepo repository.UserRepository
	tokens   security.TokenManager
}

func NewAuthService(userRepo repository.UserRepository, tokens security.TokenManager) AuthService {
	return &authService{userRepo: userRepo, tokens: tokens}
}

func (s *authService) Login(ctx context.Context, username, password string) (*domain.User, string, string, error) {
	ve := domain.NewValidationError()
	if username == "" {
		ve.Add("username", "username is required")
	}
	if password == "" {
		ve.Add("password", "password is required")
	}
	if err := ve.OrNil(); err != nil {
		return nil, "", "", err
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		// Same failure for a missing account and a wrong password.
		return nil, "", "", fmt.Errorf("invalid credentials: %w", domain.ErrForbidden)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", "", fmt.Errorf("invalid credentials: %w", domain.ErrForbidden)
	}
	if user.Status != domain.UserStatusActive {
		return nil, "", "", domain.Conflictf("account is %s", user.Status)
	}

	access, err := s.tokens.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", "", fmt.Errorf("generating access token: %w", err)
	}
	refresh, err := s.tokens.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, "", "", fmt.Errorf("generating refresh token: %w", err)
	}

	if err := s.userRepo.RecordLogin(ctx, user.ID); err != nil {
		logger.Warn("recording login failed", "user_id", user.ID, "error", err)
	}
	return user, access, refresh, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.ValidateToken(refreshToken)
	if err != nil {
		return "", fmt.Errorf("invalid refresh token: %w", domain.ErrForbidden)
	}
	if claims.Type != security.TokenTypeRefresh {
		return "", fmt.Errorf("not a refresh token: %w", domain.ErrForbidden)
	}

	// Re-read the account so a suspension or deletion cuts token renewal off.
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return "", fmt.Errorf("invalid refresh token: %w", domain.ErrForbidden)
	}
	if user.Status != domain.UserStatusActive {
		return "", domain.Conflictf("account is %s", user.Status)
	}
	return s.tokens.GenerateAccessToken(user.ID, user.Email, user.Role)
}
