package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"rentride/internal/models"
	"rentride/internal/repositories/interfaces"
	"rentride/internal/utils"
	"rentride/pkg/logger"
)

type AuthService interface {
	Register(ctx context.Context, request *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, request *LoginRequest) (*AuthResponse, error)
	ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error)
}

type RegisterRequest struct {
	Name     string
	Email    string
	Password string
}

type LoginRequest struct {
	Email     string
	Password  string
	IPAddress string
}

type AuthResponse struct {
	User        *models.User `json:"user"`
	UserID      string       `json:"user_id"`
	AccessToken string       `json:"token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
}

type AuthConfig struct {
	MaxLoginAttempts int
	LoginLockoutTime time.Duration
}

type authService struct {
	userRepo interfaces.UserRepository
	tokens   *utils.TokenManager
	cache    CacheService
	config   AuthConfig
	logger   *logger.Logger
}

func NewAuthService(userRepo interfaces.UserRepository, tokens *utils.TokenManager, cache CacheService, config AuthConfig, log *logger.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		cache:    cache,
		config:   config,
		logger:   log,
	}
}

func (s *authService) Register(ctx context.Context, request *RegisterRequest) (*AuthResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:     strings.TrimSpace(request.Name),
		Email:    request.Email,
		Password: string(hash),
		Role:     models.UserRoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.WithUserID(user.ID).Info("User registered")
	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, request *LoginRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(request.Email))

	if err := s.checkLoginAttempts(ctx, email); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			s.logFailedLogin(email, request.IPAddress, "unknown_email")
			return nil, fmt.Errorf("%w: %s", utils.ErrUnauthorized, utils.MsgInvalidCredentials)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(request.Password)); err != nil {
		s.logFailedLogin(email, request.IPAddress, "wrong_password")
		return nil, fmt.Errorf("%w: %s", utils.ErrUnauthorized, utils.MsgInvalidCredentials)
	}

	s.logger.WithUserID(user.ID).Info("User logged in")
	return s.issue(user)
}

func (s *authService) ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrUnauthorized, err)
	}
	return claims, nil
}

func (s *authService) issue(user *models.User) (*AuthResponse, error) {
	token, err := s.tokens.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &AuthResponse{
		User:        user,
		UserID:      user.ID.Hex(),
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokens.TTL().Seconds()),
	}, nil
}

// checkLoginAttempts counts every attempt per email in a fixed window.
// Without Redis the per-IP middleware limiter is the only guard.
func (s *authService) checkLoginAttempts(ctx context.Context, email string) error {
	if s.cache == nil || s.config.MaxLoginAttempts <= 0 {
		return nil
	}

	count, err := s.cache.IncrementWindow(ctx, utils.CacheRateLimitPrefix+"login:"+email, s.config.LoginLockoutTime)
	if err != nil {
		s.logger.WithError(err).Warn("Login attempt counter unavailable")
		return nil
	}
	if count > int64(s.config.MaxLoginAttempts) {
		s.logger.LogSecurityEvent("login_rate_limited", "medium", map[string]interface{}{"email": email})
		return utils.ErrRateLimited
	}
	return nil
}

func (s *authService) logFailedLogin(email, ip, reason string) {
	s.logger.LogSecurityEvent("login_failed", "low", map[string]interface{}{
		"email":      email,
		"ip_address": ip,
		"reason":     reason,
	})
}
