package security

import (
	"errors"
	"testing"
	"time"
)

func TestJWTManagerIssueAndParse(t *testing.T) {
	manager, err := NewJWTManager("test-secret", "hrcard", time.Minute)
	if err != nil {
		t.Fatalf("NewJWTManager returned error: %v", err)
	}

	token, err := manager.Issue("jdoe", []string{"ROLE_USER"})
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	claims, err := manager.Parse(token)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if claims.Login() != "jdoe" {
		t.Fatalf("expected login jdoe, got %s", claims.Login())
	}
	if len(claims.Authorities) != 1 || claims.Authorities[0] != "ROLE_USER" {
		t.Fatalf("unexpected authorities: %v", claims.Authorities)
	}
}

func TestJWTManagerParseWrongSecret(t *testing.T) {
	issuer, err := NewJWTManager("secret-a", "hrcard", time.Minute)
	if err != nil {
		t.Fatalf("NewJWTManager returned error: %v", err)
	}
	verifier, err := NewJWTManager("secret-b", "hrcard", time.Minute)
	if err != nil {
		t.Fatalf("NewJWTManager returned error: %v", err)
	}

	token, err := issuer.Issue("jdoe", nil)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, err := verifier.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTManagerRequiresSecret(t *testing.T) {
	if _, err := NewJWTManager("", "hrcard", time.Minute); err == nil {
		t.Fatal("expected error for empty secret")
	}
}
