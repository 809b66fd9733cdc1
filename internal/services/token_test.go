package services

import (
	"errors"
	"testing"
	"time"
)

func TestIssueAndVerifyToken(t *testing.T) {
	InitTokenService("test-secret", time.Hour)

	userID := "507f1f77bcf86cd799439011"
	token, err := IssueToken(userID)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	if token == "" {
		t.Fatal("IssueToken() returned empty token")
	}

	got, err := VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken() error = %v", err)
	}
	if got != userID {
		t.Errorf("VerifyToken() userID = %q, want %q", got, userID)
	}
}

func TestVerifyTokenExpired(t *testing.T) {
	InitTokenService("test-secret", -time.Minute)
	token, err := IssueToken("507f1f77bcf86cd799439011")
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}

	InitTokenService("test-secret", time.Hour)
	_, err = VerifyToken(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("VerifyToken() error = %v, want ErrTokenExpired", err)
	}
}

func TestInitTokenServiceHonorsExpiry(t *testing.T) {
	// A negative lifetime must take effect immediately, not be ignored in
	// favor of a previously configured one.
	InitTokenService("test-secret", time.Hour)
	InitTokenService("test-secret", -time.Minute)

	token, err := IssueToken("507f1f77bcf86cd799439011")
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	if _, err := VerifyToken(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("VerifyToken() error = %v, want ErrTokenExpired", err)
	}
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	InitTokenService("first-secret", time.Hour)
	token, err := IssueToken("507f1f77bcf86cd799439011")
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}

	InitTokenService("second-secret", time.Hour)
	_, err = VerifyToken(token)
	if !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("VerifyToken() error = %v, want ErrTokenInvalid", err)
	}
}

func TestVerifyTokenMalformed(t *testing.T) {
	InitTokenService("test-secret", time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{"empty string", ""},
		{"garbage", "not-a-jwt"},
		{"truncated", "eyJhbGciOiJIUzI1NiJ9.eyJ1c2VySWQiOiJ4In0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := VerifyToken(tt.token)
			if !errors.Is(err, ErrTokenInvalid) {
				t.Errorf("VerifyToken(%q) error = %v, want ErrTokenInvalid", tt.token, err)
			}
		})
	}
}

func TestVerifyTokenEmptyUserID(t *testing.T) {
	InitTokenService("test-secret", time.Hour)
	token, err := IssueToken("")
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}

	_, err = VerifyToken(token)
	if !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("VerifyToken() error = %v, want ErrTokenInvalid", err)
	}
}
