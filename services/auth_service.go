package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cmticaret/models"
	"cmticaret/pkg/apierr"
	"cmticaret/repository"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// WelcomeNotifier sends the post-registration welcome mail.
type WelcomeNotifier interface {
	SendWelcome(ctx context.Context, user *models.User)
}

// TokenService creates and validates session JWTs.
type TokenService struct {
	secretKey []byte
	ttl       time.Duration
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &TokenService{secretKey: []byte(secret), ttl: ttl}
}

// Generate signs a token carrying the user id and admin flag.
func (s *TokenService) Generate(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"email":    user.Email,
		"is_admin": user.IsAdmin,
		"exp":      now.Add(s.ttl).Unix(),
		"iat":      now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// Validate parses a token string and returns its claims.
func (s *TokenService) Validate(tokenStr string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return s.secretKey, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// AuthResult is returned on successful register or login.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type AuthService struct {
	users    repository.UserRepository
	tokens   *TokenService
	notifier WelcomeNotifier
	logger   *zap.Logger
}

func NewAuthService(users repository.UserRepository, tokens *TokenService, notifier WelcomeNotifier, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, notifier: notifier, logger: logger}
}

// Register creates a new non-admin account. The admin flag can never be
// set through this path.
func (s *AuthService) Register(ctx context.Context, name, email, password, phone string) (*AuthResult, *apierr.Error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if len(password) < 6 {
		return nil, apierr.BadRequest("Şifre en az 6 karakter olmalıdır")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apierr.Internal("Kayıt işlemi başarısız", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: string(hash),
		Phone:        strings.TrimSpace(phone),
		IsAdmin:      false,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apierr.New(http.StatusConflict, "Bu e-posta adresi zaten kayıtlı", nil)
		}
		return nil, apierr.Internal("Kayıt işlemi başarısız", err)
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, apierr.Internal("Oturum oluşturulamadı", err)
	}

	if s.notifier != nil {
		go s.notifier.SendWelcome(context.WithoutCancel(ctx), user)
	}

	return &AuthResult{Token: token, User: user}, nil
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password produce the same error so accounts cannot be enumerated.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, *apierr.Error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierr.ErrInvalidCredentials
		}
		return nil, apierr.Internal("Giriş işlemi başarısız", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apierr.ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, apierr.Internal("Oturum oluşturulamadı", err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

// GetProfile returns the account for the authenticated user.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*models.User, *apierr.Error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierr.NotFound("Kullanıcı bulunamadı")
		}
		return nil, apierr.Internal("Profil yüklenemedi", err)
	}
	return user, nil
}

// ListUsers returns a page of accounts for the admin panel.
func (s *AuthService) ListUsers(ctx context.Context, page, limit int) ([]models.User, int64, *apierr.Error) {
	users, total, err := s.users.FindAll(ctx, page, limit)
	if err != nil {
		return nil, 0, apierr.Internal("Kullanıcılar yüklenemedi", err)
	}
	return users, total, nil
}

// EnsureAdmin seeds the configured admin account at startup if it does
// not exist yet. It never overwrites an existing account.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := &models.User{
		ID:           uuid.NewString(),
		Name:         "Yönetici",
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hash),
		IsAdmin:      true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil
		}
		return err
	}
	s.logger.Info("admin account seeded", zap.String("email", admin.Email))
	return nil
}
