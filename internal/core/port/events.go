package port

import (
	"context"

	"github.com/Pierre48/hrcard/internal/core/domain"
)

// EventPublisher delivers account lifecycle events to downstream consumers.
// Publishing is best effort: callers log failures and never fail the
// originating operation because of them.
type EventPublisher interface {
	PublishAccountRegistered(ctx context.Context, event domain.AccountRegisteredEvent) error
	PublishAccountActivated(ctx context.Context, event domain.AccountActivatedEvent) error
	PublishPasswordResetRequested(ctx context.Context, event domain.PasswordResetRequestedEvent) error
	PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error
	PublishAccountDeleted(ctx context.Context, event domain.AccountDeletedEvent) error
}
