package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Pierre48/hrcard/internal/core/domain"
	"github.com/Pierre48/hrcard/internal/core/port"
	"github.com/Pierre48/hrcard/internal/infra/config"
	"github.com/Pierre48/hrcard/internal/infra/logger"
)

const schemaVersion = "1.0"

const (
	eventAccountRegistered      = "account.registered"
	eventAccountActivated       = "account.activated"
	eventPasswordResetRequested = "account.password.reset_requested"
	eventPasswordChanged        = "account.password.changed"
	eventAccountDeleted         = "account.deleted"
)

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	AccountID string           `json:"account_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, accountID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		AccountID: accountID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Key:   sarama.StringEncoder(accountID),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		p.logger.Debug("event enqueued",
			zap.String("event_type", eventType),
			zap.String("event_id", id))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishAccountRegistered publishes account.registered events.
func (p *EventPublisher) PublishAccountRegistered(ctx context.Context, event domain.AccountRegisteredEvent) error {
	payload := struct {
		AccountID    string         `json:"account_id"`
		Login        string         `json:"login"`
		Email        string         `json:"email"`
		LangKey      string         `json:"lang_key"`
		RegisteredAt time.Time      `json:"registered_at"`
		Metadata     map[string]any `json:"metadata,omitempty"`
	}{
		AccountID:    event.AccountID,
		Login:        event.Login,
		Email:        logger.MaskEmail(event.Email),
		LangKey:      event.LangKey,
		RegisteredAt: event.RegisteredAt,
		Metadata:     event.Metadata,
	}

	return p.publish(ctx, event.EventID, eventAccountRegistered, event.AccountID, event.RegisteredAt, payload)
}

// PublishAccountActivated publishes account.activated events.
func (p *EventPublisher) PublishAccountActivated(ctx context.Context, event domain.AccountActivatedEvent) error {
	payload := struct {
		AccountID   string    `json:"account_id"`
		Login       string    `json:"login"`
		ActivatedAt time.Time `json:"activated_at"`
	}{
		AccountID:   event.AccountID,
		Login:       event.Login,
		ActivatedAt: event.ActivatedAt,
	}

	return p.publish(ctx, event.EventID, eventAccountActivated, event.AccountID, event.ActivatedAt, payload)
}

// PublishPasswordResetRequested publishes account.password.reset_requested events.
// The raw email is carried so the mail pipeline can deliver the key; logs only
// ever see the masked form.
func (p *EventPublisher) PublishPasswordResetRequested(ctx context.Context, event domain.PasswordResetRequestedEvent) error {
	payload := struct {
		AccountID   string    `json:"account_id"`
		Login       string    `json:"login"`
		Email       string    `json:"email"`
		MaskedEmail string    `json:"masked_email"`
		RequestedAt time.Time `json:"requested_at"`
		ExpiresAt   time.Time `json:"expires_at"`
	}{
		AccountID:   event.AccountID,
		Login:       event.Login,
		Email:       event.Email,
		MaskedEmail: event.MaskedEmail,
		RequestedAt: event.RequestedAt,
		ExpiresAt:   event.ExpiresAt,
	}

	return p.publish(ctx, event.EventID, eventPasswordResetRequested, event.AccountID, event.RequestedAt, payload)
}

// PublishPasswordChanged publishes account.password.changed events.
func (p *EventPublisher) PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error {
	payload := struct {
		AccountID string         `json:"account_id"`
		Login     string         `json:"login"`
		ChangedAt time.Time      `json:"changed_at"`
		ChangedBy string         `json:"changed_by"`
		Metadata  map[string]any `json:"metadata,omitempty"`
	}{
		AccountID: event.AccountID,
		Login:     event.Login,
		ChangedAt: event.ChangedAt,
		ChangedBy: event.ChangedBy,
		Metadata:  event.Metadata,
	}

	return p.publish(ctx, event.EventID, eventPasswordChanged, event.AccountID, event.ChangedAt, payload)
}

// PublishAccountDeleted publishes account.deleted events.
func (p *EventPublisher) PublishAccountDeleted(ctx context.Context, event domain.AccountDeletedEvent) error {
	payload := struct {
		AccountID string    `json:"account_id"`
		Login     string    `json:"login"`
		DeletedAt time.Time `json:"deleted_at"`
		DeletedBy string    `json:"deleted_by"`
	}{
		AccountID: event.AccountID,
		Login:     event.Login,
		DeletedAt: event.DeletedAt,
		DeletedBy: event.DeletedBy,
	}

	return p.publish(ctx, event.EventID, eventAccountDeleted, event.AccountID, event.DeletedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
