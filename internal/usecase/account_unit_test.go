package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Pierre48/hrcard/internal/core/domain"
	"github.com/Pierre48/hrcard/internal/repository"
)

type mockAccountRepository struct {
	accounts    map[string]*domain.Account
	authorities map[string][]string

	createErr   error
	createCalls int

	updateErr   error
	updateCalls int

	deleteErr  error
	deletedIDs []string

	updatePasswordCalls int
	updatePasswordErr   error

	updateResetKeyCalls int
	updateResetKeyErr   error

	updateActivationCalls int
	updateActivationErr   error

	assignCalls [][]string
	assignErr   error
	revokeCalls [][]string
	revokeErr   error
}

func newMockAccountRepository() *mockAccountRepository {
	return &mockAccountRepository{
		accounts:    make(map[string]*domain.Account),
		authorities: make(map[string][]string),
	}
}

func (m *mockAccountRepository) seed(account domain.Account, authorities ...string) {
	copied := account
	m.accounts[account.ID] = &copied
	if len(authorities) > 0 {
		m.authorities[account.ID] = append([]string(nil), authorities...)
	}
}

func (m *mockAccountRepository) Create(_ context.Context, account domain.Account) error {
	m.createCalls++
	if m.createErr != nil {
		return m.createErr
	}
	copied := account
	m.accounts[account.ID] = &copied
	return nil
}

func (m *mockAccountRepository) Update(_ context.Context, account domain.Account) error {
	m.updateCalls++
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.accounts[account.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := account
	m.accounts[account.ID] = &copied
	return nil
}

func (m *mockAccountRepository) Delete(_ context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletedIDs = append(m.deletedIDs, id)
	delete(m.accounts, id)
	delete(m.authorities, id)
	return nil
}

func (m *mockAccountRepository) findBy(match func(*domain.Account) bool) (*domain.Account, error) {
	for _, account := range m.accounts {
		if match(account) {
			copied := *account
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockAccountRepository) GetByLogin(_ context.Context, login string) (*domain.Account, error) {
	return m.findBy(func(a *domain.Account) bool { return a.Login == login })
}

func (m *mockAccountRepository) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	return m.findBy(func(a *domain.Account) bool { return a.Email == email })
}

func (m *mockAccountRepository) GetByActivationKey(_ context.Context, key string) (*domain.Account, error) {
	return m.findBy(func(a *domain.Account) bool { return a.ActivationKey != nil && *a.ActivationKey == key })
}

func (m *mockAccountRepository) GetByResetKey(_ context.Context, key string) (*domain.Account, error) {
	return m.findBy(func(a *domain.Account) bool { return a.ResetKey != nil && *a.ResetKey == key })
}

func (m *mockAccountRepository) UpdatePassword(_ context.Context, id, passwordHash string) error {
	m.updatePasswordCalls++
	if m.updatePasswordErr != nil {
		return m.updatePasswordErr
	}
	account, ok := m.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	account.PasswordHash = passwordHash
	return nil
}

func (m *mockAccountRepository) UpdateActivation(_ context.Context, id string, activated bool, activationKey *string) error {
	m.updateActivationCalls++
	if m.updateActivationErr != nil {
		return m.updateActivationErr
	}
	account, ok := m.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	account.Activated = activated
	account.ActivationKey = activationKey
	return nil
}

func (m *mockAccountRepository) UpdateResetKey(_ context.Context, id string, resetKey *string, resetDate *time.Time) error {
	m.updateResetKeyCalls++
	if m.updateResetKeyErr != nil {
		return m.updateResetKeyErr
	}
	account, ok := m.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	account.ResetKey = resetKey
	account.ResetDate = resetDate
	return nil
}

func (m *mockAccountRepository) AssignAuthorities(_ context.Context, id string, names []string) error {
	m.assignCalls = append(m.assignCalls, append([]string(nil), names...))
	if m.assignErr != nil {
		return m.assignErr
	}
	m.authorities[id] = append(m.authorities[id], names...)
	return nil
}

func (m *mockAccountRepository) RevokeAuthorities(_ context.Context, id string, names []string) error {
	m.revokeCalls = append(m.revokeCalls, append([]string(nil), names...))
	if m.revokeErr != nil {
		return m.revokeErr
	}
	remaining := m.authorities[id][:0:0]
	drop := make(map[string]struct{}, len(names))
	for _, name := range names {
		drop[name] = struct{}{}
	}
	for _, name := range m.authorities[id] {
		if _, ok := drop[name]; !ok {
			remaining = append(remaining, name)
		}
	}
	m.authorities[id] = remaining
	return nil
}

func (m *mockAccountRepository) ListAuthorities(_ context.Context, id string) ([]domain.Authority, error) {
	names := m.authorities[id]
	authorities := make([]domain.Authority, 0, len(names))
	for _, name := range names {
		authorities = append(authorities, domain.Authority{Name: name})
	}
	return authorities, nil
}

type mockAuthorityRepository struct {
	authorities []domain.Authority
	err         error
}

func (m *mockAuthorityRepository) List(context.Context) ([]domain.Authority, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.authorities, nil
}

type mockEventPublisher struct {
	registered     []domain.AccountRegisteredEvent
	activated      []domain.AccountActivatedEvent
	resetRequested []domain.PasswordResetRequestedEvent
	changed        []domain.PasswordChangedEvent
	deleted        []domain.AccountDeletedEvent
	err            error
}

func (m *mockEventPublisher) PublishAccountRegistered(_ context.Context, event domain.AccountRegisteredEvent) error {
	m.registered = append(m.registered, event)
	return m.err
}

func (m *mockEventPublisher) PublishAccountActivated(_ context.Context, event domain.AccountActivatedEvent) error {
	m.activated = append(m.activated, event)
	return m.err
}

func (m *mockEventPublisher) PublishPasswordResetRequested(_ context.Context, event domain.PasswordResetRequestedEvent) error {
	m.resetRequested = append(m.resetRequested, event)
	return m.err
}

func (m *mockEventPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	m.changed = append(m.changed, event)
	return m.err
}

func (m *mockEventPublisher) PublishAccountDeleted(_ context.Context, event domain.AccountDeletedEvent) error {
	m.deleted = append(m.deleted, event)
	return m.err
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestCreateUserActivatesImmediately(t *testing.T) {
	repo := newMockAccountRepository()
	events := &mockEventPublisher{}
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	service := NewAccountService(repo, &mockAuthorityRepository{}, events, nil).WithClock(fixedClock(now))

	result, err := service.CreateUser(context.Background(), AccountInput{
		Login:       "MGR.Smith",
		Email:       "Manager.Smith@Example.COM",
		FirstName:   "Morgan",
		LastName:    "Smith",
		Authorities: []string{domain.AuthorityUser, domain.AuthorityUser, domain.AuthorityAdmin},
	})
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}

	account := result.Account
	if account.Login != "mgr.smith" {
		t.Fatalf("expected lowercased login, got %q", account.Login)
	}
	if account.Email != "manager.smith@example.com" {
		t.Fatalf("expected lowercased email, got %q", account.Email)
	}
	if !account.Activated {
		t.Fatal("expected account to be activated")
	}
	if account.ActivationKey != nil {
		t.Fatal("activated account must not carry an activation key")
	}
	if account.ResetKey == nil || account.ResetDate == nil {
		t.Fatal("expected a reset key and reset date to be issued")
	}
	if !account.ResetDate.Equal(now) {
		t.Fatalf("expected reset date %v, got %v", now, *account.ResetDate)
	}
	if account.LangKey != domain.DefaultLangKey {
		t.Fatalf("expected default lang key, got %q", account.LangKey)
	}
	if result.Password == "" {
		t.Fatal("expected a generated password")
	}

	if len(repo.assignCalls) != 1 {
		t.Fatalf("expected one authority assignment, got %d", len(repo.assignCalls))
	}
	assigned := repo.assignCalls[0]
	if len(assigned) != 2 || assigned[0] != domain.AuthorityUser || assigned[1] != domain.AuthorityAdmin {
		t.Fatalf("expected deduplicated authorities, got %v", assigned)
	}
}

func TestCreateUserDuplicateSurfacesConflict(t *testing.T) {
	repo := newMockAccountRepository()
	repo.createErr = repository.ErrDuplicate
	service := NewAccountService(repo, &mockAuthorityRepository{}, nil, nil)

	_, err := service.CreateUser(context.Background(), AccountInput{Login: "taken", Email: "taken@example.com"})
	if !errors.Is(err, ErrLoginAlreadyUsed) {
		t.Fatalf("expected ErrLoginAlreadyUsed, got %v", err)
	}
}

func TestUpdateUserReconcilesAuthorities(t *testing.T) {
	repo := newMockAccountRepository()
	repo.seed(domain.Account{
		ID:        "acc-1",
		Login:     "jdoe",
		Email:     "jdoe@example.com",
		Activated: true,
		LangKey:   "en",
	}, domain.AuthorityUser, "ROLE_AUDITOR")

	service := NewAccountService(repo, &mockAuthorityRepository{}, nil, nil)

	result, err := service.UpdateUser(context.Background(), "JDoe", AccountInput{
		Login:       "jdoe",
		Email:       "jdoe@example.com",
		Activated:   true,
		Authorities: []string{domain.AuthorityUser, domain.AuthorityAdmin},
	})
	if err != nil {
		t.Fatalf("UpdateUser returned error: %v", err)
	}

	if len(repo.revokeCalls) != 1 {
		t.Fatalf("expected one revoke call, got %d", len(repo.revokeCalls))
	}
	if revoked := repo.revokeCalls[0]; len(revoked) != 1 || revoked[0] != "ROLE_AUDITOR" {
		t.Fatalf("expected ROLE_AUDITOR to be revoked, got %v", revoked)
	}
	if len(repo.assignCalls) != 1 {
		t.Fatalf("expected one assign call, got %d", len(repo.assignCalls))
	}
	if assigned := repo.assignCalls[0]; len(assigned) != 1 || assigned[0] != domain.AuthorityAdmin {
		t.Fatalf("expected ROLE_ADMIN to be assigned, got %v", assigned)
	}

	if len(result.Authorities) != 2 {
		t.Fatalf("expected two authorities after reconciliation, got %v", result.Authorities)
	}
}

func TestUpdateUserIdenticalAuthoritiesNoChanges(t *testing.T) {
	repo := newMockAccountRepository()
	repo.seed(domain.Account{ID: "acc-1", Login: "jdoe", Email: "jdoe@example.com", Activated: true}, domain.AuthorityUser)

	service := NewAccountService(repo, &mockAuthorityRepository{}, nil, nil)

	_, err := service.UpdateUser(context.Background(), "jdoe", AccountInput{
		Login:       "jdoe",
		Email:       "jdoe@example.com",
		Activated:   true,
		Authorities: []string{domain.AuthorityUser},
	})
	if err != nil {
		t.Fatalf("UpdateUser returned error: %v", err)
	}
	if len(repo.revokeCalls) != 0 || len(repo.assignCalls) != 0 {
		t.Fatalf("expected no membership changes, got revokes=%v assigns=%v", repo.revokeCalls, repo.assignCalls)
	}
}

func TestUpdateUserActivatingClearsActivationKey(t *testing.T) {
	key := "9876543210"
	repo := newMockAccountRepository()
	repo.seed(domain.Account{ID: "acc-1", Login: "jdoe", Email: "jdoe@example.com", ActivationKey: &key})

	service := NewAccountService(repo, &mockAuthorityRepository{}, nil, nil)

	result, err := service.UpdateUser(context.Background(), "jdoe", AccountInput{
		Login:     "jdoe",
		Email:     "jdoe@example.com",
		Activated: true,
	})
	if err != nil {
		t.Fatalf("UpdateUser returned error: %v", err)
	}
	if !result.Account.Activated {
		t.Fatal("expected account to be activated")
	}
	if result.Account.ActivationKey != nil {
		t.Fatal("activation key must be cleared when an administrator activates an account")
	}
}

func TestUpdateUserUnknownLogin(t *testing.T) {
	service := NewAccountService(newMockAccountRepository(), &mockAuthorityRepository{}, nil, nil)

	_, err := service.UpdateUser(context.Background(), "ghost", AccountInput{Login: "ghost", Email: "ghost@example.com"})
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestUpdateProfileLowercasesEmail(t *testing.T) {
	repo := newMockAccountRepository()
	repo.seed(domain.Account{ID: "acc-1", Login: "jdoe", Email: "jdoe@example.com", Activated: true})

	service := NewAccountService(repo, &mockAuthorityRepository{}, nil, nil)

	account, err := service.UpdateProfile(context.Background(), "jdoe", ProfileInput{
		FirstName: "Jo",
		LastName:  "Doe",
		Email:     "New.Address@Example.COM",
		LangKey:   "fr",
	})
	if err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}
	if account.Email != "new.address@example.com" {
		t.Fatalf("expected lowercased email, got %q", account.Email)
	}
	if account.LangKey != "fr" {
		t.Fatalf("expected lang key fr, got %q", account.LangKey)
	}
}

func TestDeleteUserUnknownLoginIsNoOp(t *testing.T) {
	repo := newMockAccountRepository()
	events := &mockEventPublisher{}
	service := NewAccountService(repo, &mockAuthorityRepository{}, events, nil)

	if err := service.DeleteUser(context.Background(), "ghost", "admin"); err != nil {
		t.Fatalf("expected no error for unknown login, got %v", err)
	}
	if len(repo.deletedIDs) != 0 {
		t.Fatalf("expected no deletions, got %v", repo.deletedIDs)
	}
	if len(events.deleted) != 0 {
		t.Fatal("expected no deletion event")
	}
}

func TestDeleteUserPublishesEvent(t *testing.T) {
	repo := newMockAccountRepository()
	repo.seed(domain.Account{ID: "acc-1", Login: "jdoe", Email: "jdoe@example.com"}, domain.AuthorityUser)
	events := &mockEventPublisher{}
	service := NewAccountService(repo, &mockAuthorityRepository{}, events, nil)

	if err := service.DeleteUser(context.Background(), "JDoe", "admin"); err != nil {
		t.Fatalf("DeleteUser returned error: %v", err)
	}
	if len(repo.deletedIDs) != 1 || repo.deletedIDs[0] != "acc-1" {
		t.Fatalf("expected acc-1 to be deleted, got %v", repo.deletedIDs)
	}
	if len(events.deleted) != 1 {
		t.Fatalf("expected one deletion event, got %d", len(events.deleted))
	}
	if events.deleted[0].DeletedBy != "admin" {
		t.Fatalf("expected deleted_by admin, got %q", events.deleted[0].DeletedBy)
	}
}

func TestGetAuthorities(t *testing.T) {
	authorities := &mockAuthorityRepository{authorities: []domain.Authority{
		{Name: domain.AuthorityAdmin},
		{Name: domain.AuthorityUser},
	}}
	service := NewAccountService(newMockAccountRepository(), authorities, nil, nil)

	names, err := service.GetAuthorities(context.Background())
	if err != nil {
		t.Fatalf("GetAuthorities returned error: %v", err)
	}
	if len(names) != 2 || names[0] != domain.AuthorityAdmin || names[1] != domain.AuthorityUser {
		t.Fatalf("unexpected authority names: %v", names)
	}
}

func TestGetAccountWithAuthorities(t *testing.T) {
	repo := newMockAccountRepository()
	repo.seed(domain.Account{ID: "acc-1", Login: "jdoe", Email: "jdoe@example.com"}, domain.AuthorityUser, domain.AuthorityAdmin)
	service := NewAccountService(repo, &mockAuthorityRepository{}, nil, nil)

	result, err := service.GetAccountWithAuthorities(context.Background(), "JDOE")
	if err != nil {
		t.Fatalf("GetAccountWithAuthorities returned error: %v", err)
	}
	if result.Account.ID != "acc-1" {
		t.Fatalf("unexpected account: %+v", result.Account)
	}
	if len(result.Authorities) != 2 {
		t.Fatalf("expected two authorities, got %v", result.Authorities)
	}

	if _, err := service.GetAccountWithAuthorities(context.Background(), "ghost"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}
