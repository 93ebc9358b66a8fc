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

// ErrPasswordPolicyViolation indicates the supplied password fails the
// configured complexity rules.
var ErrPasswordPolicyViolation = errors.New("password does not meet complexity requirements")

// RegistrationInput captures a self-service signup request.
type RegistrationInput struct {
	Login     string
	Email     string
	Password  string
	FirstName string
	LastName  string
	ImageURL  string
	LangKey   string
}

// RegistrationService handles self-service signup and activation.
type RegistrationService struct {
	accounts          port.AccountRepository
	events            port.EventPublisher
	passwordValidator *security.PasswordValidator
	logger            *zap.Logger
	now               func() time.Time
	keyLength         int
}

// NewRegistrationService constructs a RegistrationService.
func NewRegistrationService(accounts port.AccountRepository, events port.EventPublisher, validator *security.PasswordValidator, log *zap.Logger) *RegistrationService {
	if validator == nil {
		validator = security.DefaultPasswordValidator()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RegistrationService{
		accounts:          accounts,
		events:            events,
		passwordValidator: validator,
		logger:            log,
		now:               time.Now,
		keyLength:         security.DefaultKeyLength,
	}
}

// WithClock overrides the time source, primarily for tests.
func (s *RegistrationService) WithClock(now func() time.Time) *RegistrationService {
	if now != nil {
		s.now = now
	}
	return s
}

// WithKeyLength overrides the generated activation key length.
func (s *RegistrationService) WithKeyLength(length int) *RegistrationService {
	if length > 0 {
		s.keyLength = length
	}
	return s
}

// RegisterUser persists a new non-activated account carrying a fresh
// activation key.
//
// A login or email already held by an activated account is rejected. A
// non-activated holder is treated as an abandoned signup: the stale account is
// deleted and the login or email is reclaimed by the new registration.
func (s *RegistrationService) RegisterUser(ctx context.Context, input RegistrationInput) (*domain.Account, error) {
	login := domain.NormalizeLogin(input.Login)
	if login == "" {
		return nil, fmt.Errorf("login is required")
	}
	email := domain.NormalizeEmail(input.Email)
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if input.Password == "" {
		return nil, fmt.Errorf("password is required")
	}
	if err := s.passwordValidator.Validate(input.Password); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrPasswordPolicyViolation, err)
	}

	if err := s.reclaimAbandoned(ctx, func(c context.Context) (*domain.Account, error) {
		return s.accounts.GetByLogin(c, login)
	}, ErrLoginAlreadyUsed); err != nil {
		return nil, err
	}
	if err := s.reclaimAbandoned(ctx, func(c context.Context) (*domain.Account, error) {
		return s.accounts.GetByEmail(c, email)
	}, ErrEmailAlreadyUsed); err != nil {
		return nil, err
	}

	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	activationKey, err := security.GenerateNumericKey(s.keyLength)
	if err != nil {
		return nil, fmt.Errorf("generate activation key: %w", err)
	}

	langKey := input.LangKey
	if langKey == "" {
		langKey = domain.DefaultLangKey
	}

	now := s.now().UTC()
	account := domain.Account{
		ID:            uuid.NewString(),
		Login:         login,
		Email:         email,
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		ImageURL:      input.ImageURL,
		LangKey:       langKey,
		PasswordHash:  hash,
		Activated:     false,
		ActivationKey: &activationKey,
		CreatedAt:     now,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrLoginAlreadyUsed
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.logger.Info("registration recorded",
		zap.String("login", login),
		zap.String("email", logger.MaskEmail(email)))

	s.publishRegistered(ctx, account)
	return &account, nil
}

// ActivateRegistration consumes an activation key, marking the owning account
// activated and clearing the key so it cannot be replayed.
func (s *RegistrationService) ActivateRegistration(ctx context.Context, key string) (*domain.Account, error) {
	if key == "" {
		return nil, fmt.Errorf("activation key is required")
	}

	account, err := s.accounts.GetByActivationKey(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("load account: %w", err)
	}

	if err := s.accounts.UpdateActivation(ctx, account.ID, true, nil); err != nil {
		return nil, fmt.Errorf("activate account: %w", err)
	}
	account.Activated = true
	account.ActivationKey = nil

	s.logger.Info("registration activated", zap.String("login", account.Login))

	s.publishActivated(ctx, *account)
	return account, nil
}

// reclaimAbandoned enforces the uniqueness rules against whichever account the
// lookup returns. An activated holder yields held; a non-activated holder is
// deleted so the identifier can be reused.
func (s *RegistrationService) reclaimAbandoned(ctx context.Context, lookup func(context.Context) (*domain.Account, error), held error) error {
	existing, err := lookup(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("check existing account: %w", err)
	}
	if existing.Activated {
		return held
	}
	if err := s.accounts.Delete(ctx, existing.ID); err != nil {
		return fmt.Errorf("reclaim abandoned registration: %w", err)
	}
	s.logger.Info("abandoned registration reclaimed", zap.String("login", existing.Login))
	return nil
}

func (s *RegistrationService) publishRegistered(ctx context.Context, account domain.Account) {
	if s.events == nil {
		return
	}
	event := domain.AccountRegisteredEvent{
		EventID:      uuid.NewString(),
		AccountID:    account.ID,
		Login:        account.Login,
		Email:        account.Email,
		LangKey:      account.LangKey,
		RegisteredAt: account.CreatedAt,
	}
	if err := s.events.PublishAccountRegistered(ctx, event); err != nil {
		s.logger.Warn("publish account registered event failed", zap.Error(err))
	}
}

func (s *RegistrationService) publishActivated(ctx context.Context, account domain.Account) {
	if s.events == nil {
		return
	}
	event := domain.AccountActivatedEvent{
		EventID:     uuid.NewString(),
		AccountID:   account.ID,
		Login:       account.Login,
		ActivatedAt: s.now().UTC(),
	}
	if err := s.events.PublishAccountActivated(ctx, event); err != nil {
		s.logger.Warn("publish account activated event failed", zap.Error(err))
	}
}
