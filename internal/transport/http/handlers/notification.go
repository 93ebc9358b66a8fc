package handlers

import (
	"context"

	"go.uber.org/zap"

	"github.com/Pierre48/hrcard/internal/infra/logger"
)

// NotificationDispatcher fans out account lifecycle credentials to downstream notifiers.
// The default implementations log the dispatch without delivering anything;
// mail delivery is handled by the consumers of the published events.
type NotificationDispatcher interface {
	SendActivationKey(ctx context.Context, payload ActivationNotification) error
	SendResetKey(ctx context.Context, payload ResetNotification) error
}

// ActivationNotification captures data needed to deliver an activation key.
type ActivationNotification struct {
	Login   string
	Email   string
	LangKey string
	DevKey  string
}

// ResetNotification captures data needed to deliver a password reset key.
type ResetNotification struct {
	Login  string
	Email  string
	DevKey string
}

type noopDispatcher struct{}

func (noopDispatcher) SendActivationKey(context.Context, ActivationNotification) error {
	return nil
}

func (noopDispatcher) SendResetKey(context.Context, ResetNotification) error {
	return nil
}

// LoggingNotificationDispatcher records credential dispatch events for observability without delivering them.
type LoggingNotificationDispatcher struct {
	logger *zap.Logger
}

// NewLoggingNotificationDispatcher constructs a notification dispatcher backed by structured logging.
func NewLoggingNotificationDispatcher(log *zap.Logger) NotificationDispatcher {
	if log == nil {
		return noopDispatcher{}
	}
	return &LoggingNotificationDispatcher{logger: log}
}

func (d *LoggingNotificationDispatcher) SendActivationKey(_ context.Context, payload ActivationNotification) error {
	if d == nil || d.logger == nil {
		return nil
	}
	d.logger.Info("activation key dispatch requested",
		zap.String("login", payload.Login),
		zap.String("email", logger.MaskEmail(payload.Email)),
		zap.String("lang_key", payload.LangKey))
	return nil
}

func (d *LoggingNotificationDispatcher) SendResetKey(_ context.Context, payload ResetNotification) error {
	if d == nil || d.logger == nil {
		return nil
	}
	d.logger.Info("reset key dispatch requested",
		zap.String("login", payload.Login),
		zap.String("email", logger.MaskEmail(payload.Email)))
	return nil
}
