package auth

import (
	"errors"
	"testing"
	"time"

	"parkride/internal/domain"
)

const testSecret = "test-secret"

func TestParseToken_RoundTrip(t *testing.T) {
	token, err := CreateAccessToken(testSecret, "user-1", domain.RoleAdmin, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	principal, err := ParseToken(testSecret, token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if principal.UserID != "user-1" {
		t.Errorf("expected user-1, got %s", principal.UserID)
	}
	if !principal.IsAdmin() {
		t.Errorf("expected admin role, got %s", principal.Role)
	}
}

func TestParseToken_UnknownRoleIsUser(t *testing.T) {
	token, err := CreateAccessToken(testSecret, "user-1", domain.Role("driver"), time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	principal, err := ParseToken(testSecret, token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if principal.Role != domain.RoleUser {
		t.Errorf("expected user role, got %s", principal.Role)
	}
}

func TestParseToken_Rejects(t *testing.T) {
	valid, _ := CreateAccessToken(testSecret, "user-1", domain.RoleUser, time.Hour)
	expired, _ := CreateAccessToken(testSecret, "user-1", domain.RoleUser, -time.Minute)
	noSubject, _ := CreateAccessToken(testSecret, "", domain.RoleUser, time.Hour)

	tests := []struct {
		name   string
		secret string
		token  string
	}{
		{"wrong secret", "other-secret", valid},
		{"expired", testSecret, expired},
		{"missing subject", testSecret, noSubject},
		{"garbage", testSecret, "not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseToken(tt.secret, tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}
