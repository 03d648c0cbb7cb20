package auth

import (
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "s3cret-pass" {
		t.Fatal("hash must not equal the plaintext password")
	}

	if !CheckPassword(hash, "s3cret-pass") {
		t.Error("CheckPassword should accept the correct password")
	}
	if CheckPassword(hash, "wrong-pass") {
		t.Error("CheckPassword should reject a wrong password")
	}
}

func TestHashPassword_InvalidCostFallsBack(t *testing.T) {
	hash, err := HashPassword("pw", 99)
	if err != nil {
		t.Fatalf("HashPassword with out-of-range cost should fall back, got error: %v", err)
	}
	if !CheckPassword(hash, "pw") {
		t.Error("fallback-cost hash should still verify")
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	const secret = "test-secret"

	tok, err := NewAccessToken(secret, "64f0aa11bb22cc33dd44ee55", "admin", 30*time.Minute)
	if err != nil {
		t.Fatalf("NewAccessToken failed: %v", err)
	}
	if tok.Token == "" {
		t.Fatal("expected a non-empty token")
	}

	ident, err := ParseAccessToken(secret, tok.Token)
	if err != nil {
		t.Fatalf("ParseAccessToken failed: %v", err)
	}
	if ident.UserID != "64f0aa11bb22cc33dd44ee55" {
		t.Errorf("expected user id to round-trip, got %q", ident.UserID)
	}
	if ident.Role != "admin" {
		t.Errorf("expected role 'admin', got %q", ident.Role)
	}
}

func TestParseAccessToken_WrongSecret(t *testing.T) {
	tok, err := NewAccessToken("secret-a", "user-1", "user", time.Minute)
	if err != nil {
		t.Fatalf("NewAccessToken failed: %v", err)
	}

	if _, err := ParseAccessToken("secret-b", tok.Token); err == nil {
		t.Error("expected error when parsing with the wrong secret")
	}
}

func TestParseAccessToken_Expired(t *testing.T) {
	tok, err := NewAccessToken("secret", "user-1", "user", -time.Minute)
	if err != nil {
		t.Fatalf("NewAccessToken failed: %v", err)
	}

	if _, err := ParseAccessToken("secret", tok.Token); err != ErrExpiredToken {
		t.Errorf("expected ErrExpiredToken, got %v", err)
	}
}

func TestParseAccessToken_Garbage(t *testing.T) {
	if _, err := ParseAccessToken("secret", "not-a-token"); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}
