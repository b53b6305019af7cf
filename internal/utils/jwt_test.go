package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/example/kopipos/internal/models"
)

func TestTokenRoundTrip(t *testing.T) {
	secret := "test-secret"
	userID := uuid.New()

	token, err := GenerateToken(secret, userID, models.RoleKasir, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	gotID, gotRole, err := ParseToken(secret, token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if gotID != userID {
		t.Errorf("user id = %s, want %s", gotID, userID)
	}
	if gotRole != models.RoleKasir {
		t.Errorf("role = %s, want %s", gotRole, models.RoleKasir)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken("right-secret", uuid.New(), models.RoleAdmin, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, _, err := ParseToken("wrong-secret", token); err == nil {
		t.Fatal("expected signature validation error")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, err := GenerateToken("secret", uuid.New(), models.RoleKasir, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, _, err := ParseToken("secret", token); err == nil {
		t.Fatal("expected expiry error")
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	if _, _, err := ParseToken("secret", "not.a.token"); err == nil {
		t.Fatal("expected parse error")
	}
}
