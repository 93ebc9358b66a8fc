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
	"github.com/Pierre48/hrcard/internal/infra/security"
	"github.com/Pierre48/hrcard/internal/repository"
)

var (
	// ErrAccountNotFound indicates the referenced account does not exist.
	ErrAccountNotFound = errors.New("account not found")
	// ErrLoginAlreadyUsed indicates the login is held by an activated account.
	ErrLoginAlreadyUsed = errors.New("login already in use")
	// ErrEmailAlreadyUsed indicates the email is held by an activated account.
	ErrEmailAlreadyUsed = errors.New("email already in use")
	// ErrAccountNotActivated indicates the account has not consumed its activation key yet.
	ErrAccountNotActivated = errors.New("account not activated")
)

// AccountInput carries the administrative representation of an account.
type AccountInput struct {
	Login       string
	Email       string
	FirstName   string
	LastName    string
	ImageURL    string
	LangKey     string
	Activated   bool
	Authorities []string
}

// ProfileInput carries the fields an authenticated user may edit on their own
// account. Login and activation state are not among them.
type ProfileInput struct {
	FirstName string
	LastName  string
	Email     string
	LangKey   string
	ImageURL  string
}

// AccountWithAuthorities pairs an account with its authority memberships.
type AccountWithAuthorities struct {
	Account     domain.Account
	Authorities []string
}

// AccountService implements the administrative account operations.
type AccountService struct {
	accounts    port.AccountRepository
	authorities port.AuthorityRepository
	events      port.EventPublisher
	logger      *zap.Logger
	now         func() time.Time
	keyLength   int
}

// NewAccountService constructs an AccountService.
func NewAccountService(accounts port.AccountRepository, authorities port.AuthorityRepository, events port.EventPublisher, logger *zap.Logger) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{
		accounts:    accounts,
		authorities: authorities,
		events:      events,
		logger:      logger,
		now:         time.Now,
		keyLength:   security.DefaultKeyLength,
	}
}

// WithClock overrides the time source, primarily for tests.
func (s *AccountService) WithClock(now func() time.Time) *AccountService {
	if now != nil {
		s.now = now
	}
	return s
}

// WithKeyLength overrides the generated reset key length.
func (s *AccountService) WithKeyLength(length int) *AccountService {
	if length > 0 {
		s.keyLength = length
	}
	return s
}

// CreateUserResult carries the created account together with the generated
// password, which exists nowhere else once this call returns.
type CreateUserResult struct {
	Account  domain.Account
	Password string
}

// CreateUser provisions an account on behalf of an administrator. The account
// is activated immediately, receives a random password, and carries a fresh
// reset key so the owner can choose their own password.
//
// Duplicate logins and emails are not pre-checked here; the store's uniqueness
// conflict surfaces to the caller as ErrLoginAlreadyUsed.
func (s *AccountService) CreateUser(ctx context.Context, input AccountInput) (*CreateUserResult, error) {
	login := domain.NormalizeLogin(input.Login)
	if login == "" {
		return nil, fmt.Errorf("login is required")
	}
	email := domain.NormalizeEmail(input.Email)
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}

	langKey := input.LangKey
	if langKey == "" {
		langKey = domain.DefaultLangKey
	}

	password, err := security.GenerateRandomPassword(24)
	if err != nil {
		return nil, fmt.Errorf("generate password: %w", err)
	}
	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	resetKey, err := security.GenerateNumericKey(s.keyLength)
	if err != nil {
		return nil, fmt.Errorf("generate reset key: %w", err)
	}

	now := s.now().UTC()
	account := domain.Account{
		ID:           uuid.NewString(),
		Login:        login,
		Email:        email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		ImageURL:     input.ImageURL,
		LangKey:      langKey,
		PasswordHash: hash,
		Activated:    true,
		ResetKey:     &resetKey,
		ResetDate:    &now,
		CreatedAt:    now,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrLoginAlreadyUsed
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	if names := dedupeNames(input.Authorities); len(names) > 0 {
		if err := s.accounts.AssignAuthorities(ctx, account.ID, names); err != nil {
			return nil, fmt.Errorf("assign authorities: %w", err)
		}
	}

	s.logger.Info("account created by administrator", zap.String("login", login))

	return &CreateUserResult{Account: account, Password: password}, nil
}

// UpdateUser overwrites an account's administrative fields and reconciles its
// authority memberships against the supplied set. Removals are applied before
// additions.
func (s *AccountService) UpdateUser(ctx context.Context, login string, input AccountInput) (*AccountWithAuthorities, error) {
	account, err := s.getByLogin(ctx, login)
	if err != nil {
		return nil, err
	}

	if input.Login != "" {
		account.Login = domain.NormalizeLogin(input.Login)
	}
	if input.Email != "" {
		account.Email = domain.NormalizeEmail(input.Email)
	}
	account.FirstName = input.FirstName
	account.LastName = input.LastName
	account.ImageURL = input.ImageURL
	if input.LangKey != "" {
		account.LangKey = input.LangKey
	}
	account.Activated = input.Activated
	if account.Activated {
		account.ActivationKey = nil
	}

	if err := s.accounts.Update(ctx, *account); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrLoginAlreadyUsed
		}
		return nil, fmt.Errorf("update account: %w", err)
	}

	current, err := s.accounts.ListAuthorities(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("list authorities: %w", err)
	}
	currentNames := authorityNames(current)
	desired := dedupeNames(input.Authorities)

	if toRemove := difference(currentNames, desired); len(toRemove) > 0 {
		if err := s.accounts.RevokeAuthorities(ctx, account.ID, toRemove); err != nil {
			return nil, fmt.Errorf("revoke authorities: %w", err)
		}
	}
	if toAdd := difference(desired, currentNames); len(toAdd) > 0 {
		if err := s.accounts.AssignAuthorities(ctx, account.ID, toAdd); err != nil {
			return nil, fmt.Errorf("assign authorities: %w", err)
		}
	}

	s.logger.Info("account updated by administrator", zap.String("login", account.Login))

	return &AccountWithAuthorities{Account: *account, Authorities: desired}, nil
}

// UpdateProfile applies the self-service edits an authenticated user may make
// to their own account.
func (s *AccountService) UpdateProfile(ctx context.Context, actorLogin string, input ProfileInput) (*domain.Account, error) {
	account, err := s.getByLogin(ctx, actorLogin)
	if err != nil {
		return nil, err
	}

	account.FirstName = input.FirstName
	account.LastName = input.LastName
	account.ImageURL = input.ImageURL
	if input.Email != "" {
		account.Email = domain.NormalizeEmail(input.Email)
	}
	if input.LangKey != "" {
		account.LangKey = input.LangKey
	}

	if err := s.accounts.Update(ctx, *account); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailAlreadyUsed
		}
		return nil, fmt.Errorf("update account: %w", err)
	}

	return account, nil
}

// DeleteUser removes an account and its authority memberships. Deleting an
// unknown login is a no-op.
func (s *AccountService) DeleteUser(ctx context.Context, login, deletedBy string) error {
	account, err := s.accounts.GetByLogin(ctx, domain.NormalizeLogin(login))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("load account: %w", err)
	}

	if err := s.accounts.Delete(ctx, account.ID); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}

	s.logger.Info("account deleted", zap.String("login", account.Login), zap.String("deleted_by", deletedBy))

	s.publishDeleted(ctx, *account, deletedBy)
	return nil
}

// GetAuthorities lists every authority name known to the system.
func (s *AccountService) GetAuthorities(ctx context.Context) ([]string, error) {
	authorities, err := s.authorities.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list authorities: %w", err)
	}
	return authorityNames(authorities), nil
}

// GetAccountWithAuthorities loads an account together with its memberships.
func (s *AccountService) GetAccountWithAuthorities(ctx context.Context, login string) (*AccountWithAuthorities, error) {
	account, err := s.getByLogin(ctx, login)
	if err != nil {
		return nil, err
	}
	authorities, err := s.accounts.ListAuthorities(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("list authorities: %w", err)
	}
	return &AccountWithAuthorities{Account: *account, Authorities: authorityNames(authorities)}, nil
}

// Authenticate verifies a login and password pair and returns the account with
// its authorities. Non-activated accounts cannot authenticate.
func (s *AccountService) Authenticate(ctx context.Context, login, password string) (*AccountWithAuthorities, error) {
	account, err := s.getByLogin(ctx, login)
	if err != nil {
		return nil, err
	}
	if !account.Activated {
		return nil, ErrAccountNotActivated
	}

	matches, err := security.VerifyPassword(password, account.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !matches {
		return nil, ErrInvalidPassword
	}

	authorities, err := s.accounts.ListAuthorities(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("list authorities: %w", err)
	}
	return &AccountWithAuthorities{Account: *account, Authorities: authorityNames(authorities)}, nil
}

func (s *AccountService) getByLogin(ctx context.Context, login string) (*domain.Account, error) {
	account, err := s.accounts.GetByLogin(ctx, domain.NormalizeLogin(login))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("load account: %w", err)
	}
	return account, nil
}

func (s *AccountService) publishDeleted(ctx context.Context, account domain.Account, deletedBy string) {
	if s.events == nil {
		return
	}
	event := domain.AccountDeletedEvent{
		EventID:   uuid.NewString(),
		AccountID: account.ID,
		Login:     account.Login,
		DeletedAt: s.now().UTC(),
		DeletedBy: deletedBy,
	}
	if err := s.events.PublishAccountDeleted(ctx, event); err != nil {
		s.logger.Warn("publish account deleted event failed", zap.Error(err))
	}
}

func authorityNames(authorities []domain.Authority) []string {
	names := make([]string, 0, len(authorities))
	for _, authority := range authorities {
		names = append(names, authority.Name)
	}
	return names
}

func dedupeNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	result := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		result = append(result, name)
	}
	return result
}

// difference returns the members of from that are absent from exclude,
// preserving order and dropping duplicates.
func difference(from, exclude []string) []string {
	excluded := make(map[string]struct{}, len(exclude))
	for _, name := range exclude {
		excluded[name] = struct{}{}
	}
	seen := make(map[string]struct{}, len(from))
	var result []string
	for _, name := range from {
		if _, ok := excluded[name]; ok {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		result = append(result, name)
	}
	return result
}
