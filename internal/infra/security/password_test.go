package security

import (
	"strings"
	"testing"
)

func TestHashPasswordProducesVerifiableHash(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	if strings.Contains(hash, "secret123") {
		t.Fatalf("hash must not embed the raw password: %s", hash)
	}
	if len(strings.Split(hash, ":")) != 2 {
		t.Fatalf("expected salt:hash encoding, got %s", hash)
	}

	ok, err := VerifyPassword("secret123", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected password to verify against its own hash")
	}
}

func TestVerifyPasswordRejectsWrongPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	ok, err := VerifyPassword("wrong-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error: %v", err)
	}
	if ok {
		t.Fatalf("expected mismatch for wrong password")
	}
}

func TestHashPasswordSaltsEveryHash(t *testing.T) {
	first, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	second, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	if first == second {
		t.Fatalf("expected distinct salts to yield distinct hashes")
	}
}

func TestVerifyPasswordInvalidEncoding(t *testing.T) {
	if _, err := VerifyPassword("secret123", "not-a-valid-hash"); err == nil {
		t.Fatalf("expected error for malformed hash encoding")
	}

	ok, err := VerifyPassword("", "")
	if err != nil {
		t.Fatalf("VerifyPassword returned error: %v", err)
	}
	if ok {
		t.Fatalf("empty password must never verify")
	}
}
