package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Pierre48/hrcard/internal/core/domain"
	"github.com/Pierre48/hrcard/internal/core/port"
	"github.com/Pierre48/hrcard/internal/infra/logger"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, accountID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("stub event published",
		zap.String("event_type", eventType),
		zap.String("account_id", accountID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishAccountRegistered logs account.registered events.
func (p *StubPublisher) PublishAccountRegistered(_ context.Context, event domain.AccountRegisteredEvent) error {
	payload := map[string]any{
		"login":         event.Login,
		"email":         logger.MaskEmail(event.Email),
		"lang_key":      event.LangKey,
		"registered_at": event.RegisteredAt,
	}
	p.logEvent(eventAccountRegistered, event.AccountID, event.RegisteredAt, payload)
	return nil
}

// PublishAccountActivated logs account.activated events.
func (p *StubPublisher) PublishAccountActivated(_ context.Context, event domain.AccountActivatedEvent) error {
	payload := map[string]any{
		"login":        event.Login,
		"activated_at": event.ActivatedAt,
	}
	p.logEvent(eventAccountActivated, event.AccountID, event.ActivatedAt, payload)
	return nil
}

// PublishPasswordResetRequested logs account.password.reset_requested events.
func (p *StubPublisher) PublishPasswordResetRequested(_ context.Context, event domain.PasswordResetRequestedEvent) error {
	payload := map[string]any{
		"login":        event.Login,
		"masked_email": event.MaskedEmail,
		"requested_at": event.RequestedAt,
		"expires_at":   event.ExpiresAt,
	}
	p.logEvent(eventPasswordResetRequested, event.AccountID, event.RequestedAt, payload)
	return nil
}

// PublishPasswordChanged logs account.password.changed events.
func (p *StubPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	payload := map[string]any{
		"login":      event.Login,
		"changed_at": event.ChangedAt,
		"changed_by": event.ChangedBy,
	}
	p.logEvent(eventPasswordChanged, event.AccountID, event.ChangedAt, payload)
	return nil
}

// PublishAccountDeleted logs account.deleted events.
func (p *StubPublisher) PublishAccountDeleted(_ context.Context, event domain.AccountDeletedEvent) error {
	payload := map[string]any{
		"login":      event.Login,
		"deleted_at": event.DeletedAt,
		"deleted_by": event.DeletedBy,
	}
	p.logEvent(eventAccountDeleted, event.AccountID, event.DeletedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
