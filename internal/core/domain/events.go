package domain

import "time"

// AccountRegisteredEvent is emitted when a self-service registration is persisted.
type AccountRegisteredEvent struct {
	EventID      string         `json:"event_id"`
	AccountID    string         `json:"account_id"`
	Login        string         `json:"login"`
	Email        string         `json:"email"`
	LangKey      string         `json:"lang_key"`
	RegisteredAt time.Time      `json:"registered_at"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// AccountActivatedEvent is emitted when an activation key is consumed.
type AccountActivatedEvent struct {
	EventID     string    `json:"event_id"`
	AccountID   string    `json:"account_id"`
	Login       string    `json:"login"`
	ActivatedAt time.Time `json:"activated_at"`
}

// PasswordResetRequestedEvent is emitted when a reset key is issued so the
// delivery pipeline can mail it out.
type PasswordResetRequestedEvent struct {
	EventID     string    `json:"event_id"`
	AccountID   string    `json:"account_id"`
	Login       string    `json:"login"`
	Email       string    `json:"email"`
	MaskedEmail string    `json:"masked_email"`
	RequestedAt time.Time `json:"requested_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// PasswordChangedEvent is emitted after any successful password mutation.
type PasswordChangedEvent struct {
	EventID   string         `json:"event_id"`
	AccountID string         `json:"account_id"`
	Login     string         `json:"login"`
	ChangedAt time.Time      `json:"changed_at"`
	ChangedBy string         `json:"changed_by"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// AccountDeletedEvent is emitted when an account is removed by an administrator.
type AccountDeletedEvent struct {
	EventID   string    `json:"event_id"`
	AccountID string    `json:"account_id"`
	Login     string    `json:"login"`
	DeletedAt time.Time `json:"deleted_at"`
	DeletedBy string    `json:"deleted_by"`
}
