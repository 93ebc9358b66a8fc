package security

import (
	"strings"
	"testing"
)

func TestHashPasswordAndVerifySuccess(t *testing.T) {
	password := "correct horse battery staple"

	encoded, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	parts := strings.Split(encoded, "$")
	if len(parts) != 5 {
		t.Fatalf("unexpected hash format: %q", encoded)
	}
	if parts[0] != argon2Variant {
		t.Fatalf("unexpected variant: %s", parts[0])
	}
	if parts[1] != argon2Version {
		t.Fatalf("unexpected version: %s", parts[1])
	}

	ok, err := VerifyPassword(password, encoded)
	if err != nil {
		t.Fatalf("VerifyPassword returned error: %v", err)
	}
	if !ok {
		t.Fatal("VerifyPassword returned false for correct password")
	}
}

func TestVerifyPasswordIncorrectPassword(t *testing.T) {
	encoded, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	ok, err := VerifyPassword("Tr0ub4dor&3", encoded)
	if err != nil {
		t.Fatalf("VerifyPassword returned error: %v", err)
	}
	if ok {
		t.Fatal("VerifyPassword returned true for incorrect password")
	}
}

func TestVerifyPasswordEmptyInputs(t *testing.T) {
	if ok, err := VerifyPassword("", "whatever"); err != nil || ok {
		t.Fatalf("expected false/nil for empty password, got %v/%v", ok, err)
	}
	if ok, err := VerifyPassword("whatever", ""); err != nil || ok {
		t.Fatalf("expected false/nil for empty hash, got %v/%v", ok, err)
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	if _, err := VerifyPassword("password", "not-an-argon2-hash"); err == nil {
		t.Fatal("expected error for malformed hash")
	}
}

func TestConfigureArgon2RejectsWeakParams(t *testing.T) {
	defer func() {
		if err := ConfigureArgon2(DefaultArgon2Config()); err != nil {
			t.Fatalf("restore default config: %v", err)
		}
	}()

	weak := Argon2Config{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
	if err := ConfigureArgon2(weak); err == nil {
		t.Fatal("expected error for sub-minimum memory")
	}
}

func TestGenerateNumericKeyLengthAndCharset(t *testing.T) {
	key, err := GenerateNumericKey(DefaultKeyLength)
	if err != nil {
		t.Fatalf("GenerateNumericKey returned error: %v", err)
	}
	if len(key) != DefaultKeyLength {
		t.Fatalf("expected %d digits, got %d", DefaultKeyLength, len(key))
	}
	for _, r := range key {
		if r < '0' || r > '9' {
			t.Fatalf("unexpected character %q in key %s", r, key)
		}
	}
}

func TestGenerateRandomPasswordDiffers(t *testing.T) {
	first, err := GenerateRandomPassword(24)
	if err != nil {
		t.Fatalf("GenerateRandomPassword returned error: %v", err)
	}
	second, err := GenerateRandomPassword(24)
	if err != nil {
		t.Fatalf("GenerateRandomPassword returned error: %v", err)
	}
	if first == second {
		t.Fatal("expected distinct random passwords")
	}
}
