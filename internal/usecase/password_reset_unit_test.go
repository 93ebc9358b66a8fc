package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Pierre48/hrcard/internal/core/domain"
	"github.com/Pierre48/hrcard/internal/infra/security"
)

const (
	strongCurrentPassword = "Curr3nt!SecurePass#7890"
	strongNewPassword     = "N3w!SecurePass#7890abc"
)

type mockRateLimitStore struct {
	attempts map[string][]time.Time
	err      error
}

func newMockRateLimitStore() *mockRateLimitStore {
	return &mockRateLimitStore{attempts: make(map[string][]time.Time)}
}

func (m *mockRateLimitStore) TrimWindow(_ context.Context, identifier string, window time.Duration, reference time.Time) error {
	if m.err != nil {
		return m.err
	}
	cutoff := reference.Add(-window)
	kept := m.attempts[identifier][:0:0]
	for _, at := range m.attempts[identifier] {
		if at.After(cutoff) {
			kept = append(kept, at)
		}
	}
	m.attempts[identifier] = kept
	return nil
}

func (m *mockRateLimitStore) CountAttempts(_ context.Context, identifier string, _ time.Duration, _ time.Time) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return len(m.attempts[identifier]), nil
}

func (m *mockRateLimitStore) RecordAttempt(_ context.Context, identifier string, at time.Time) error {
	if m.err != nil {
		return m.err
	}
	m.attempts[identifier] = append(m.attempts[identifier], at)
	return nil
}

func (m *mockRateLimitStore) OldestAttempt(_ context.Context, identifier string, _ time.Duration, _ time.Time) (time.Time, bool, error) {
	if m.err != nil {
		return time.Time{}, false, m.err
	}
	recorded := m.attempts[identifier]
	if len(recorded) == 0 {
		return time.Time{}, false, nil
	}
	oldest := recorded[0]
	for _, at := range recorded[1:] {
		if at.Before(oldest) {
			oldest = at
		}
	}
	return oldest, true, nil
}

func TestRequestPasswordResetIssuesKey(t *testing.T) {
	repo := newMockAccountRepository()
	repo.seed(domain.Account{ID: "acc-1", Login: "jdoe", Email: "jdoe@example.com", Activated: true})
	events := &mockEventPublisher{}
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	service := NewPasswordResetService(repo, nil, events, nil, nil).WithClock(fixedClock(now))

	account, err := service.RequestPasswordReset(context.Background(), "JDoe@Example.COM")
	if err != nil {
		t.Fatalf("RequestPasswordReset returned error: %v", err)
	}
	if account.ResetKey == nil || *account.ResetKey == "" {
		t.Fatal("expected a reset key to be issued")
	}
	if account.ResetDate == nil || !account.ResetDate.Equal(now) {
		t.Fatalf("expected reset date %v, got %v", now, account.ResetDate)
	}
	if len(events.resetRequested) != 1 {
		t.Fatalf("expected one reset requested event, got %d", len(events.resetRequested))
	}
}

func TestRequestPasswordResetOverwritesInFlightKey(t *testing.T) {
	priorKey := "1111111111"
	priorDate := time.Date(2025, 2, 28, 9, 0, 0, 0, time.UTC)
	repo := newMockAccountRepository()
	repo.seed(domain.Account{
		ID:        "acc-1",
		Login:     "jdoe",
		Email:     "jdoe@example.com",
		Activated: true,
		ResetKey:  &priorKey,
		ResetDate: &priorDate,
	})
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	service := NewPasswordResetService(repo, nil, nil, nil, nil).WithClock(fixedClock(now))

	account, err := service.RequestPasswordReset(context.Background(), "jdoe@example.com")
	if err != nil {
		t.Fatalf("RequestPasswordReset returned error: %v", err)
	}
	if *account.ResetKey == priorKey {
		t.Fatal("expected a fresh reset key to replace the in-flight one")
	}
	if !account.ResetDate.Equal(now) {
		t.Fatalf("expected reset date %v, got %v", now, account.ResetDate)
	}

	stored := repo.accounts["acc-1"]
	if stored.ResetKey == nil || *stored.ResetKey == priorKey {
		t.Fatal("expected the stored key to be replaced")
	}
}

func TestRequestPasswordResetNonActivatedAccount(t *testing.T) {
	repo := newMockAccountRepository()
	repo.seed(domain.Account{ID: "acc-1", Login: "jdoe", Email: "jdoe@example.com", Activated: false})
	service := NewPasswordResetService(repo, nil, nil, nil, nil)

	_, err := service.RequestPasswordReset(context.Background(), "jdoe@example.com")
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound for non-activated account, got %v", err)
	}
	if repo.updateResetKeyCalls != 0 {
		t.Fatal("expected no reset key mutation")
	}
}

func TestRequestPasswordResetUnknownEmail(t *testing.T) {
	service := NewPasswordResetService(newMockAccountRepository(), nil, nil, nil, nil)

	if _, err := service.RequestPasswordReset(context.Background(), "ghost@example.com"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestRequestPasswordResetRateLimited(t *testing.T) {
	repo := newMockAccountRepository()
	repo.seed(domain.Account{ID: "acc-1", Login: "jdoe", Email: "jdoe@example.com", Activated: true})
	limits := newMockRateLimitStore()
	service := NewPasswordResetService(repo, limits, nil, nil, nil).WithRateLimit(2, time.Hour)

	for i := 0; i < 2; i++ {
		if _, err := service.RequestPasswordReset(context.Background(), "jdoe@example.com"); err != nil {
			t.Fatalf("request %d returned error: %v", i+1, err)
		}
	}

	_, err := service.RequestPasswordReset(context.Background(), "jdoe@example.com")
	var rateErr *RateLimitExceededError
	if !errors.As(err, &rateErr) {
		t.Fatalf("expected RateLimitExceededError, got %v", err)
	}
	if rateErr.Scope != passwordResetRateLimitScope {
		t.Fatalf("unexpected scope %q", rateErr.Scope)
	}
}

func TestCompletePasswordResetWithinWindow(t *testing.T) {
	key := "2222222222"
	now := time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC)
	resetDate := now.Add(-(24*time.Hour - time.Second))
	repo := newMockAccountRepository()
	repo.seed(domain.Account{
		ID:        "acc-1",
		Login:     "jdoe",
		Email:     "jdoe@example.com",
		Activated: true,
		ResetKey:  &key,
		ResetDate: &resetDate,
	})
	events := &mockEventPublisher{}
	service := NewPasswordResetService(repo, nil, events, nil, nil).WithClock(fixedClock(now))

	if err := service.CompletePasswordReset(context.Background(), key, strongNewPassword); err != nil {
		t.Fatalf("CompletePasswordReset returned error: %v", err)
	}

	stored := repo.accounts["acc-1"]
	if stored.ResetKey != nil || stored.ResetDate != nil {
		t.Fatal("expected the reset key to be consumed")
	}
	if stored.PasswordHash == "" || stored.PasswordHash == strongNewPassword {
		t.Fatal("expected a new password hash to be stored")
	}
	if len(events.changed) != 1 {
		t.Fatalf("expected one password changed event, got %d", len(events.changed))
	}

	// Consumed keys cannot be replayed.
	if err := service.CompletePasswordReset(context.Background(), key, strongNewPassword); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound on replay, got %v", err)
	}
}

func TestCompletePasswordResetExactlyAtWindowBoundary(t *testing.T) {
	key := "3333333333"
	now := time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC)
	resetDate := now.Add(-24 * time.Hour)
	repo := newMockAccountRepository()
	repo.seed(domain.Account{
		ID:        "acc-1",
		Login:     "jdoe",
		Email:     "jdoe@example.com",
		Activated: true,
		ResetKey:  &key,
		ResetDate: &resetDate,
	})
	service := NewPasswordResetService(repo, nil, nil, nil, nil).WithClock(fixedClock(now))

	err := service.CompletePasswordReset(context.Background(), key, strongNewPassword)
	if !errors.Is(err, ErrResetKeyExpired) {
		t.Fatalf("expected ErrResetKeyExpired at the boundary, got %v", err)
	}
	if repo.updatePasswordCalls != 0 {
		t.Fatal("expected no password mutation for an expired key")
	}
}

func TestCompletePasswordResetStaleKey(t *testing.T) {
	key := "4444444444"
	now := time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC)
	resetDate := now.Add(-72 * time.Hour)
	repo := newMockAccountRepository()
	repo.seed(domain.Account{
		ID:        "acc-1",
		Login:     "jdoe",
		Email:     "jdoe@example.com",
		Activated: true,
		ResetKey:  &key,
		ResetDate: &resetDate,
	})
	service := NewPasswordResetService(repo, nil, nil, nil, nil).WithClock(fixedClock(now))

	if err := service.CompletePasswordReset(context.Background(), key, strongNewPassword); !errors.Is(err, ErrResetKeyExpired) {
		t.Fatalf("expected ErrResetKeyExpired, got %v", err)
	}
}

func TestCompletePasswordResetUnknownKey(t *testing.T) {
	service := NewPasswordResetService(newMockAccountRepository(), nil, nil, nil, nil)

	if err := service.CompletePasswordReset(context.Background(), "nope", strongNewPassword); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestChangePasswordVerifiesCurrentPassword(t *testing.T) {
	hash, err := security.HashPassword(strongCurrentPassword)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	repo := newMockAccountRepository()
	repo.seed(domain.Account{ID: "acc-1", Login: "jdoe", Email: "jdoe@example.com", Activated: true, PasswordHash: hash})
	events := &mockEventPublisher{}
	service := NewPasswordResetService(repo, nil, events, nil, nil)

	if err := service.ChangePassword(context.Background(), "JDoe", strongCurrentPassword, strongNewPassword); err != nil {
		t.Fatalf("ChangePassword returned error: %v", err)
	}

	stored := repo.accounts["acc-1"]
	if stored.PasswordHash == hash {
		t.Fatal("expected the password hash to change")
	}
	if len(events.changed) != 1 {
		t.Fatalf("expected one password changed event, got %d", len(events.changed))
	}
}

func TestChangePasswordWrongCurrentPassword(t *testing.T) {
	hash, err := security.HashPassword(strongCurrentPassword)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	repo := newMockAccountRepository()
	repo.seed(domain.Account{ID: "acc-1", Login: "jdoe", Email: "jdoe@example.com", Activated: true, PasswordHash: hash})
	service := NewPasswordResetService(repo, nil, nil, nil, nil)

	if err := service.ChangePassword(context.Background(), "jdoe", "Wr0ng!Password#1234", strongNewPassword); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
	if repo.updatePasswordCalls != 0 {
		t.Fatal("expected no password mutation")
	}
	if repo.accounts["acc-1"].PasswordHash != hash {
		t.Fatal("password hash must not change on a failed verification")
	}
}

func TestChangePasswordUnknownActor(t *testing.T) {
	service := NewPasswordResetService(newMockAccountRepository(), nil, nil, nil, nil)

	if err := service.ChangePassword(context.Background(), "ghost", strongCurrentPassword, strongNewPassword); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestChangePasswordRejectsWeakNewPassword(t *testing.T) {
	repo := newMockAccountRepository()
	repo.seed(domain.Account{ID: "acc-1", Login: "jdoe", Email: "jdoe@example.com", Activated: true})
	service := NewPasswordResetService(repo, nil, nil, nil, nil)

	if err := service.ChangePassword(context.Background(), "jdoe", strongCurrentPassword, "weak"); !errors.Is(err, ErrPasswordPolicyViolation) {
		t.Fatalf("expected ErrPasswordPolicyViolation, got %v", err)
	}
}
