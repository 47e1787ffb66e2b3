package service

import (
	"context"
	"crypto/subtle"
	"errors"

	"bengkel-bot/internal/dto"
	"bengkel-bot/pkg/auth"

	"go.uber.org/zap"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService signs in the workshop operator configured through the
// environment. An empty password hash disables login.
type AuthService struct {
	username     string
	passwordHash string
	jwtManager   *auth.JWTManager
	logger       *zap.Logger
}

func NewAuthService(username, passwordHash string, jwtManager *auth.JWTManager, logger *zap.Logger) *AuthService {
	return &AuthService{
		username:     username,
		passwordHash: passwordHash,
		jwtManager:   jwtManager,
		logger:       logger,
	}
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	if s.passwordHash == "" {
		s.logger.Warn("Operator login attempted but no password hash is configured")
		return nil, ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(req.Username), []byte(s.username)) != 1 {
		return nil, ErrInvalidCredentials
	}
	if !auth.CheckPasswordHash(req.Password, s.passwordHash) {
		return nil, ErrInvalidCredentials
	}

	accessToken, err := s.jwtManager.GenerateToken(s.username)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.jwtManager.GetTokenDuration().Seconds()),
		Operator:    s.username,
	}, nil
}
