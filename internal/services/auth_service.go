// internal/services/auth_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/readify-backend/internal/config"
	"github.com/javajoker/readify-backend/internal/models"
	"github.com/javajoker/readify-backend/internal/repository"
	"github.com/javajoker/readify-backend/internal/utils"
)

type AuthService struct {
	store         repository.Store
	cfg           *config.Config
	notifications *NotificationService
}

type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token     string    `json:"token"`
	UserID    uuid.UUID `json:"userId"`
	Email     string    `json:"email"`
	TokenType string    `json:"token_type"`
	ExpiresIn int       `json:"expires_in"` // in seconds
}

func NewAuthService(store repository.Store, cfg *config.Config, notifications *NotificationService) *AuthService {
	return &AuthService{
		store:         store,
		cfg:           cfg,
		notifications: notifications,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Signup(ctx context.Context, req *SignupRequest) (*AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)

	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationError(err)
	}

	// Check if account already exists
	if _, err := s.store.GetAccountByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	account := &models.Account{Email: req.Email}
	if err := account.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.store.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"account_id": account.ID,
		"email":      account.Email,
	}).Info("Account created")

	// Send welcome email (async)
	if s.notifications != nil {
		created := *account
		s.notifications.NotifyAsync("welcome", func() error {
			return s.notifications.SendWelcomeEmail(&created)
		})
	}

	return s.issueToken(account)
}

func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)

	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationError(err)
	}

	account, err := s.store.GetAccountByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrUnknownEmail
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := account.CheckPassword(req.Password); err != nil {
		return nil, ErrIncorrectPassword
	}

	// Update last login time
	if err := s.store.TouchLastLogin(ctx, account.ID, time.Now()); err != nil {
		logrus.WithError(err).WithField("account_id", account.ID).Warn("Failed to record last login")
	}

	return s.issueToken(account)
}

// GetAccount returns the account or ErrAccountNotFound.
func (s *AuthService) GetAccount(ctx context.Context, accountID uuid.UUID) (*models.Account, error) {
	return requireAccount(ctx, s.store, accountID)
}

func (s *AuthService) issueToken(account *models.Account) (*AuthResponse, error) {
	ttl := s.cfg.JWT.AccessTTL()
	token, err := utils.GenerateJWT(account.ID, account.Email, ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &AuthResponse{
		Token:     token,
		UserID:    account.ID,
		Email:     account.Email,
		TokenType: "Bearer",
		ExpiresIn: int(ttl.Seconds()),
	}, nil
}

func requireAccount(ctx context.Context, store repository.AccountRepository, accountID uuid.UUID) (*models.Account, error) {
	account, err := store.GetAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return account, nil
}
