package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Pierre48/hrcard/internal/core/domain"
	"github.com/Pierre48/hrcard/internal/core/port"
	"github.com/Pierre48/hrcard/internal/infra/logger"
	"github.com/Pierre48/hrcard/internal/infra/security"
	"github.com/Pierre48/hrcard/internal/repository"
)

const (
	defaultResetKeyTTL = 24 * time.Hour

	passwordResetRateLimitScope = "password_reset"
	passwordResetReason         = "password_reset"
	passwordChangeReason        = "password_change"
)

var (
	// ErrInvalidPassword indicates the supplied current password does not match.
	ErrInvalidPassword = errors.New("current password is incorrect")
	// ErrResetKeyExpired indicates the reset key is older than the honored window.
	ErrResetKeyExpired = errors.New("reset key expired")
)

// RateLimitExceededError signals that an operation was throttled.
type RateLimitExceededError struct {
	Scope      string
	RetryAfter time.Duration
}

func (e *RateLimitExceededError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s rate limit exceeded, retry after %s", e.Scope, e.RetryAfter)
	}
	return fmt.Sprintf("%s rate limit exceeded", e.Scope)
}

// PasswordResetService coordinates reset key issuance and consumption plus
// authenticated password changes.
type PasswordResetService struct {
	accounts          port.AccountRepository
	rateLimits        port.RateLimitStore
	events            port.EventPublisher
	passwordValidator *security.PasswordValidator
	logger            *zap.Logger
	now               func() time.Time
	resetKeyTTL       time.Duration
	keyLength         int
	maxAttempts       int
	window            time.Duration
}

// NewPasswordResetService constructs a PasswordResetService.
func NewPasswordResetService(accounts port.AccountRepository, rateLimits port.RateLimitStore, events port.EventPublisher, validator *security.PasswordValidator, log *zap.Logger) *PasswordResetService {
	if validator == nil {
		validator = security.DefaultPasswordValidator()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &PasswordResetService{
		accounts:          accounts,
		rateLimits:        rateLimits,
		events:            events,
		passwordValidator: validator,
		logger:            log,
		now:               time.Now,
		resetKeyTTL:       defaultResetKeyTTL,
		keyLength:         security.DefaultKeyLength,
	}
}

// WithClock overrides the time source, primarily for tests.
func (s *PasswordResetService) WithClock(now func() time.Time) *PasswordResetService {
	if now != nil {
		s.now = now
	}
	return s
}

// WithResetKeyTTL overrides the window during which a reset key is honored.
func (s *PasswordResetService) WithResetKeyTTL(ttl time.Duration) *PasswordResetService {
	if ttl > 0 {
		s.resetKeyTTL = ttl
	}
	return s
}

// WithKeyLength overrides the generated reset key length.
func (s *PasswordResetService) WithKeyLength(length int) *PasswordResetService {
	if length > 0 {
		s.keyLength = length
	}
	return s
}

// WithRateLimit enables sliding-window throttling of reset requests.
func (s *PasswordResetService) WithRateLimit(maxAttempts int, window time.Duration) *PasswordResetService {
	s.maxAttempts = maxAttempts
	s.window = window
	return s
}

// RequestPasswordReset issues a fresh reset key for the activated account
// owning the supplied email. A repeated request overwrites any key still in
// flight. Non-activated accounts are not eligible and report ErrAccountNotFound
// just like unknown emails.
func (s *PasswordResetService) RequestPasswordReset(ctx context.Context, email string) (*domain.Account, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}

	now := s.now().UTC()
	if err := s.enforceResetRateLimit(ctx, email, now); err != nil {
		return nil, err
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("load account: %w", err)
	}
	if !account.Activated {
		return nil, ErrAccountNotFound
	}

	resetKey, err := security.GenerateNumericKey(s.keyLength)
	if err != nil {
		return nil, fmt.Errorf("generate reset key: %w", err)
	}

	if err := s.accounts.UpdateResetKey(ctx, account.ID, &resetKey, &now); err != nil {
		return nil, fmt.Errorf("store reset key: %w", err)
	}
	account.ResetKey = &resetKey
	account.ResetDate = &now

	s.logger.Info("password reset requested",
		zap.String("login", account.Login),
		zap.String("email", logger.MaskEmail(account.Email)))

	s.publishResetRequested(ctx, *account, now)
	return account, nil
}

// CompletePasswordReset consumes a reset key and installs the new password.
// The key is honored for the configured window after issuance; a key exactly
// at or beyond the window reports ErrResetKeyExpired.
func (s *PasswordResetService) CompletePasswordReset(ctx context.Context, key, newPassword string) error {
	if key == "" {
		return fmt.Errorf("reset key is required")
	}
	if newPassword == "" {
		return fmt.Errorf("new password is required")
	}
	if err := s.passwordValidator.Validate(newPassword); err != nil {
		return fmt.Errorf("%w: %s", ErrPasswordPolicyViolation, err)
	}

	account, err := s.accounts.GetByResetKey(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("load account: %w", err)
	}

	now := s.now().UTC()
	if account.ResetDate == nil || !account.ResetDate.After(now.Add(-s.resetKeyTTL)) {
		return ErrResetKeyExpired
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.accounts.UpdatePassword(ctx, account.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	// Consume the key so it cannot be replayed.
	if err := s.accounts.UpdateResetKey(ctx, account.ID, nil, nil); err != nil {
		return fmt.Errorf("clear reset key: %w", err)
	}

	s.logger.Info("password reset completed", zap.String("login", account.Login))

	s.publishPasswordChanged(ctx, *account, now, account.Login, passwordResetReason)
	return nil
}

// ChangePassword verifies the actor's current password and installs the new
// one. A wrong current password reports ErrInvalidPassword without mutating
// the account.
func (s *PasswordResetService) ChangePassword(ctx context.Context, actorLogin, currentPassword, newPassword string) error {
	login := domain.NormalizeLogin(actorLogin)
	if login == "" {
		return fmt.Errorf("login is required")
	}
	if currentPassword == "" {
		return fmt.Errorf("current password is required")
	}
	if newPassword == "" {
		return fmt.Errorf("new password is required")
	}
	if err := s.passwordValidator.Validate(newPassword); err != nil {
		return fmt.Errorf("%w: %s", ErrPasswordPolicyViolation, err)
	}

	account, err := s.accounts.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("load account: %w", err)
	}

	matches, err := security.VerifyPassword(currentPassword, account.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !matches {
		return ErrInvalidPassword
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	now := s.now().UTC()
	if err := s.accounts.UpdatePassword(ctx, account.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.logger.Info("password changed", zap.String("login", account.Login))

	s.publishPasswordChanged(ctx, *account, now, account.Login, passwordChangeReason)
	return nil
}

func (s *PasswordResetService) enforceResetRateLimit(ctx context.Context, identifier string, now time.Time) error {
	if s.rateLimits == nil || s.maxAttempts <= 0 {
		return nil
	}

	window := s.window
	if window <= 0 {
		window = time.Hour
	}

	storageKey := fmt.Sprintf("%s:%s", passwordResetRateLimitScope, identifier)

	if err := s.rateLimits.TrimWindow(ctx, storageKey, window, now); err != nil {
		s.logger.Warn("password reset rate limit trim failed", zap.Error(err))
		return nil
	}

	count, err := s.rateLimits.CountAttempts(ctx, storageKey, window, now)
	if err != nil {
		s.logger.Warn("password reset rate limit count failed", zap.Error(err))
		return nil
	}

	if count >= s.maxAttempts {
		retryAfter := time.Duration(0)
		if oldest, ok, err := s.rateLimits.OldestAttempt(ctx, storageKey, window, now); err == nil && ok {
			reset := oldest.Add(window)
			if reset.After(now) {
				retryAfter = reset.Sub(now)
			}
		} else if err != nil {
			s.logger.Warn("password reset rate limit oldest lookup failed", zap.Error(err))
		}
		return &RateLimitExceededError{Scope: passwordResetRateLimitScope, RetryAfter: retryAfter}
	}

	if err := s.rateLimits.RecordAttempt(ctx, storageKey, now); err != nil {
		s.logger.Warn("password reset rate limit record failed", zap.Error(err))
	}

	return nil
}

func (s *PasswordResetService) publishResetRequested(ctx context.Context, account domain.Account, requestedAt time.Time) {
	if s.events == nil {
		return
	}
	event := domain.PasswordResetRequestedEvent{
		EventID:     uuid.NewString(),
		AccountID:   account.ID,
		Login:       account.Login,
		Email:       account.Email,
		MaskedEmail: logger.MaskEmail(account.Email),
		RequestedAt: requestedAt,
		ExpiresAt:   requestedAt.Add(s.resetKeyTTL),
	}
	if err := s.events.PublishPasswordResetRequested(ctx, event); err != nil {
		s.logger.Warn("publish password reset requested event failed", zap.Error(err))
	}
}

func (s *PasswordResetService) publishPasswordChanged(ctx context.Context, account domain.Account, changedAt time.Time, changedBy, reason string) {
	if s.events == nil {
		return
	}
	event := domain.PasswordChangedEvent{
		EventID:   uuid.NewString(),
		AccountID: account.ID,
		Login:     account.Login,
		ChangedAt: changedAt,
		ChangedBy: changedBy,
		Metadata:  map[string]any{"reason": reason},
	}
	if err := s.events.PublishPasswordChanged(ctx, event); err != nil {
		s.logger.Warn("publish password changed event failed", zap.Error(err))
	}
}
