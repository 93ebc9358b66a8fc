package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Pierre48/hrcard/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// AccountResponse describes an account as returned by the API. The password
// hash and the pending keys never appear here.
type AccountResponse struct {
	ID          string    `json:"id"`
	Login       string    `json:"login"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name,omitempty"`
	LastName    string    `json:"last_name,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	LangKey     string    `json:"lang_key"`
	Activated   bool      `json:"activated"`
	CreatedAt   time.Time `json:"created_at"`
	Authorities []string  `json:"authorities,omitempty"`
}

func newAccountResponse(account domain.Account, authorities []string) AccountResponse {
	return AccountResponse{
		ID:          account.ID,
		Login:       account.Login,
		Email:       account.Email,
		FirstName:   account.FirstName,
		LastName:    account.LastName,
		ImageURL:    account.ImageURL,
		LangKey:     account.LangKey,
		Activated:   account.Activated,
		CreatedAt:   account.CreatedAt,
		Authorities: authorities,
	}
}

// AuthenticateRequest defines the payload for the token endpoint.
type AuthenticateRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthenticateResponse carries the issued bearer token.
type AuthenticateResponse struct {
	IDToken   string `json:"id_token"`
	TokenType string `json:"token_type"`
	ExpiresIn int    `json:"expires_in"`
}

// RegistrationRequest defines the payload for self-service signup.
type RegistrationRequest struct {
	Login     string `json:"login" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	LangKey   string `json:"lang_key"`
	ImageURL  string `json:"image_url"`
}

// RegistrationResponse describes the outcome of a signup request.
type RegistrationResponse struct {
	Account            AccountResponse `json:"account"`
	RequiresActivation bool            `json:"requires_activation"`
	// DevActivationKey is populated only in development environments where no
	// mail pipeline is attached.
	DevActivationKey string `json:"dev_activation_key,omitempty"`
}

// PasswordChangeRequest represents the payload for an authenticated password change.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// PasswordResetInitRequest starts a password reset flow.
type PasswordResetInitRequest struct {
	Email string `json:"email" binding:"required"`
}

// PasswordResetInitResponse acknowledges a reset request.
type PasswordResetInitResponse struct {
	Message string `json:"message"`
	// DevResetKey is populated only in development environments.
	DevResetKey string `json:"dev_reset_key,omitempty"`
}

// PasswordResetFinishRequest completes a password reset flow.
type PasswordResetFinishRequest struct {
	Key         string `json:"key" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ProfileUpdateRequest carries self-service profile edits.
type ProfileUpdateRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	LangKey   string `json:"lang_key"`
	ImageURL  string `json:"image_url"`
}

// AdminUserRequest carries the administrative representation of an account.
type AdminUserRequest struct {
	Login       string   `json:"login" binding:"required"`
	Email       string   `json:"email" binding:"required"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	ImageURL    string   `json:"image_url"`
	LangKey     string   `json:"lang_key"`
	Activated   bool     `json:"activated"`
	Authorities []string `json:"authorities"`
}

// AdminCreateUserResponse describes the outcome of administrative provisioning.
type AdminCreateUserResponse struct {
	Account AccountResponse `json:"account"`
	// DevResetKey is populated only in development environments so the owner
	// can be onboarded without a mail pipeline.
	DevResetKey string `json:"dev_reset_key,omitempty"`
}

// AuthoritiesResponse lists the authority names known to the system.
type AuthoritiesResponse struct {
	Authorities []string `json:"authorities"`
}

// HealthResponse describes the service health payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse describes the readiness payload with per-dependency results.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
