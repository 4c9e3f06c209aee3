package services

import (
	"context"
	"strings"
	"time"

	"myhotel/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TokenStore maps opaque bearer tokens to user ids.
type TokenStore interface {
	SetToken(ctx context.Context, token string, userID uint, ttl time.Duration) error
	TokenUser(ctx context.Context, token string) (uint, bool, error)
	DeleteToken(ctx context.Context, token string) error
	HitLoginAttempt(ctx context.Context, username string, limit int, window time.Duration) (bool, error)
	ResetLoginAttempts(ctx context.Context, username string) error
}

type AuthService struct {
	DB          *gorm.DB
	Tokens      TokenStore
	TokenTTL    time.Duration
	MaxAttempts int
	Window      time.Duration
	Now         func() time.Time
	Log         *zap.Logger
}

func NewAuthService(db *gorm.DB, tokens TokenStore, ttl time.Duration, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &AuthService{
		DB:          db,
		Tokens:      tokens,
		TokenTTL:    ttl,
		MaxAttempts: 5,
		Window:      15 * time.Minute,
		Now:         time.Now,
		Log:         log,
	}
}

type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      models.User `json:"user"`
}

func (s *AuthService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || password == "" {
		return LoginResult{}, Validation("missing_credentials", "Username and password are required.")
	}
	limited, err := s.Tokens.HitLoginAttempt(ctx, username, s.MaxAttempts, s.Window)
	if err != nil {
		return LoginResult{}, Internal(err)
	}
	if limited {
		return LoginResult{}, Forbidden("too_many_attempts", "Too many login attempts. Try again later.")
	}

	var user models.User
	err = s.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil && !isNotFound(err) {
		return LoginResult{}, Internal(err)
	}
	if err != nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return LoginResult{}, Unauthorized("invalid_credentials", "Invalid username or password.")
	}
	if !user.IsActive {
		return LoginResult{}, Forbidden("user_inactive", "This account has been deactivated.")
	}

	token := uuid.NewString()
	if err := s.Tokens.SetToken(ctx, token, user.ID, s.TokenTTL); err != nil {
		return LoginResult{}, Internal(err)
	}
	now := s.Now().UTC()
	if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Update("last_login_at", now).Error; err != nil {
		s.Log.Warn("failed to record login time", zap.Uint("user_id", user.ID), zap.Error(err))
	}
	if err := s.Tokens.ResetLoginAttempts(ctx, username); err != nil {
		s.Log.Warn("failed to reset login attempts", zap.String("username", username), zap.Error(err))
	}
	user.LastLoginAt = &now
	return LoginResult{Token: token, ExpiresAt: now.Add(s.TokenTTL), User: user}, nil
}

// Resolve maps a bearer token to its user id.
func (s *AuthService) Resolve(ctx context.Context, token string) (uint, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, Unauthorized("missing_token", "Authentication required.")
	}
	id, ok, err := s.Tokens.TokenUser(ctx, token)
	if err != nil {
		return 0, Internal(err)
	}
	if !ok {
		return 0, Unauthorized("invalid_token", "Session expired or invalid.")
	}
	return id, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	if err := s.Tokens.DeleteToken(ctx, token); err != nil {
		return Internal(err)
	}
	return nil
}
