package auth

import (
	"strings"
	"testing"
	"time"
)

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{"valid bearer", "Bearer abc123", "abc123", false},
		{"case insensitive scheme", "bearer abc123", "abc123", false},
		{"empty header", "", "", true},
		{"missing token", "Bearer ", "", true},
		{"wrong scheme", "Basic abc123", "", true},
		{"no scheme", "abc123", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractToken(tt.header)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ExtractToken(%q) = %q, want error", tt.header, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractToken(%q) failed: %v", tt.header, err)
			}
			if got != tt.want {
				t.Errorf("ExtractToken(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

func TestNewTokenAuthRequiresSecret(t *testing.T) {
	if _, err := NewTokenAuth("", time.Hour); err == nil {
		t.Error("Expected error for empty secret")
	}

	a, err := NewTokenAuth("secret", 0)
	if err != nil {
		t.Fatalf("NewTokenAuth failed: %v", err)
	}
	if a.Expiry != 30*24*time.Hour {
		t.Errorf("Default expiry = %v, want 30 days", a.Expiry)
	}
}

func TestIssueAndVerify(t *testing.T) {
	a, err := NewTokenAuth("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenAuth failed: %v", err)
	}

	token, err := a.Issue("u1", "a@b.c")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := a.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.UserID != "u1" {
		t.Errorf("UserID = %q, want u1", claims.UserID)
	}
	if claims.Email != "a@b.c" {
		t.Errorf("Email = %q, want a@b.c", claims.Email)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer, _ := NewTokenAuth("secret-one", time.Hour)
	verifier, _ := NewTokenAuth("secret-two", time.Hour)

	token, err := issuer.Issue("u1", "a@b.c")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := verifier.Verify(token); err == nil {
		t.Error("Expected verification to fail with a different secret")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	a, _ := NewTokenAuth("secret", -time.Minute)

	token, err := a.Issue("u1", "a@b.c")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := a.Verify(token); err == nil {
		t.Error("Expected verification to fail for an expired token")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	a, _ := NewTokenAuth("secret", time.Hour)
	if _, err := a.Verify("not.a.token"); err == nil {
		t.Error("Expected verification to fail for malformed input")
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if !strings.HasPrefix(hash, "argon2id$") {
		t.Errorf("Hash = %q, want argon2id$ prefix", hash)
	}

	ok, err := VerifyPassword(hash, "correct horse battery staple")
	if err != nil {
		t.Fatalf("VerifyPassword failed: %v", err)
	}
	if !ok {
		t.Error("Correct password rejected")
	}

	ok, err = VerifyPassword(hash, "wrong password")
	if err != nil {
		t.Fatalf("VerifyPassword failed: %v", err)
	}
	if ok {
		t.Error("Wrong password accepted")
	}
}

func TestHashPasswordSaltsEachCall(t *testing.T) {
	h1, err := HashPassword("same input")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	h2, err := HashPassword("same input")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if h1 == h2 {
		t.Error("Identical hashes for the same password; salt is not random")
	}
}

func TestVerifyPasswordRejectsBadFormat(t *testing.T) {
	tests := []string{
		"",
		"plainhash",
		"bcrypt$salt$hash",
		"argon2id$onlyone",
		"argon2id$!!!$hash",
	}
	for _, hash := range tests {
		if ok, err := VerifyPassword(hash, "pw"); err == nil && ok {
			t.Errorf("VerifyPassword(%q) accepted malformed hash", hash)
		}
	}
}
