package domain

import (
	"strings"
	"time"
)

// Well-known authority names seeded with the schema.
const (
	AuthorityAdmin = "ROLE_ADMIN"
	AuthorityUser  = "ROLE_USER"
)

// DefaultLangKey is applied when a caller does not specify a language.
const DefaultLangKey = "en"

// Account mirrors the persisted representation in the accounts table.
// Login and Email are stored lowercased; NormalizeLogin/NormalizeEmail must be
// applied before every write.
type Account struct {
	ID            string
	Login         string
	Email         string
	FirstName     string
	LastName      string
	ImageURL      string
	LangKey       string
	PasswordHash  string
	Activated     bool
	ActivationKey *string
	ResetKey      *string
	ResetDate     *time.Time
	CreatedAt     time.Time
}

// ResetInFlight reports whether the account carries an unconsumed reset key.
func (a Account) ResetInFlight() bool {
	return a.ResetKey != nil && a.ResetDate != nil
}

// Authority is a named role an account can be a member of.
type Authority struct {
	Name string
}

// NormalizeLogin canonicalizes a login for storage and lookups.
func NormalizeLogin(login string) string {
	return strings.ToLower(strings.TrimSpace(login))
}

// NormalizeEmail canonicalizes an email address for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
