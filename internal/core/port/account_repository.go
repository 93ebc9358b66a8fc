package port

import (
	"context"
	"time"

	"github.com/Pierre48/hrcard/internal/core/domain"
)

// AccountRepository exposes persistence behavior for accounts and their
// authority memberships.
type AccountRepository interface {
	Create(ctx context.Context, account domain.Account) error
	Update(ctx context.Context, account domain.Account) error
	Delete(ctx context.Context, id string) error

	GetByLogin(ctx context.Context, login string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByActivationKey(ctx context.Context, key string) (*domain.Account, error)
	GetByResetKey(ctx context.Context, key string) (*domain.Account, error)

	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	UpdateActivation(ctx context.Context, id string, activated bool, activationKey *string) error
	UpdateResetKey(ctx context.Context, id string, resetKey *string, resetDate *time.Time) error

	AssignAuthorities(ctx context.Context, id string, names []string) error
	RevokeAuthorities(ctx context.Context, id string, names []string) error
	ListAuthorities(ctx context.Context, id string) ([]domain.Authority, error)
}
