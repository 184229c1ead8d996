package auth

import (
	"errors"
	"testing"
	"time"
)

func TestSignAndVerify(t *testing.T) {
	iss, err := NewIssuer("s3cret", time.Hour, "dev")
	if err != nil {
		t.Fatalf("issuer: %v", err)
	}
	claims := Claims{Email: "ann@example.com", Role: "admin"}
	claims.Subject = "u1"
	token, err := iss.Sign(claims)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	got, err := iss.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got.Subject != "u1" || got.Email != "ann@example.com" || got.Role != "admin" {
		t.Fatalf("unexpected claims %+v", got)
	}
}

func TestVerifyRejectsExpiredAndForeignTokens(t *testing.T) {
	iss, _ := NewIssuer("s3cret", time.Minute, "dev")
	claims := Claims{}
	claims.Subject = "u1"
	token, err := iss.Sign(claims)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	iss.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := iss.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token rejected, got %v", err)
	}

	other, _ := NewIssuer("other", time.Minute, "dev")
	if _, err := other.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected foreign token rejected, got %v", err)
	}
	if _, err := other.Verify("garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected garbage rejected, got %v", err)
	}
}

func TestIssuerRequiresSecretInProduction(t *testing.T) {
	if _, err := NewIssuer("", time.Hour, "production"); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
	if _, err := NewIssuer("", time.Hour, "dev"); err != nil {
		t.Fatalf("dev should fall back, got %v", err)
	}
}

func TestPasswordHashing(t *testing.T) {
	if _, err := HashPassword("short"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected weak password error, got %v", err)
	}
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(hash, "correct horse") {
		t.Fatalf("password did not match")
	}
	if CheckPassword(hash, "wrong horse") || CheckPassword("", "correct horse") {
		t.Fatalf("mismatch accepted")
	}
}
