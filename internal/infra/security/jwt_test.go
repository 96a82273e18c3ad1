package security

import (
	"errors"
	"testing"
	"time"
)

func TestTokenManagerIssueAndValidate(t *testing.T) {
	manager, err := NewTokenManager("test-secret-value", "oddl-service", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager returned error: %v", err)
	}

	signed, expiresAt, err := manager.Issue("user-123", "mkamga", "MANAGER")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatal("expected expiry in the future")
	}

	claims, err := manager.Validate(signed)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if claims.Subject != "user-123" {
		t.Errorf("unexpected subject: %s", claims.Subject)
	}
	if claims.Username != "mkamga" {
		t.Errorf("unexpected username: %s", claims.Username)
	}
	if claims.Role != "MANAGER" {
		t.Errorf("unexpected role: %s", claims.Role)
	}
}

func TestTokenManagerRejectsForeignSignature(t *testing.T) {
	manager, err := NewTokenManager("test-secret-value", "oddl-service", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager returned error: %v", err)
	}

	other, err := NewTokenManager("another-secret", "oddl-service", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager returned error: %v", err)
	}

	signed, _, err := other.Issue("user-123", "mkamga", "EMPLOYEE")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, err := manager.Validate(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenManagerRejectsExpired(t *testing.T) {
	manager, err := NewTokenManager("test-secret-value", "oddl-service", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager returned error: %v", err)
	}
	manager.ttl = -time.Minute

	signed, _, err := manager.Issue("user-123", "mkamga", "EMPLOYEE")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, err := manager.Validate(signed); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestNewTokenManagerRequiresSecret(t *testing.T) {
	if _, err := NewTokenManager("", "oddl-service", time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
}
