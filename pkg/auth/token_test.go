package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/omarhassan/retailops-backend/pkg/config"
)

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "retailops",
		ExpirationMinutes: 30,
	}
	now := time.Now().UTC()
	userID := uuid.New()
	branchID := uuid.New()

	token, err := MintAccessToken(cfg, now, AccessTokenPayload{
		UserID:   userID,
		BranchID: &branchID,
		Role:     "cashier",
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}

	if claims.UserID != userID {
		t.Fatalf("expected user_id %s, got %s", userID, claims.UserID)
	}
	if claims.BranchID == nil || *claims.BranchID != branchID {
		t.Fatalf("branch id not preserved")
	}
	if claims.Role != "cashier" {
		t.Fatalf("unexpected role %s", claims.Role)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("expected issuer %s, got %s", cfg.Issuer, claims.Issuer)
	}
	if claims.ID == "" {
		t.Fatalf("expected a generated jti")
	}

	exp := now.Add(30 * time.Minute)
	diff := claims.ExpiresAt.Sub(exp)
	if diff < 0 {
		diff = -diff
	}
	if diff >= time.Second {
		t.Fatalf("expected exp roughly %v, got %v", exp, claims.ExpiresAt)
	}
}

func TestParseAccessTokenInvalidSignature(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "retailops",
		ExpirationMinutes: 10,
	}

	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: uuid.New()})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	cfg.Secret = "other-secret"
	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatalf("expected signature validation failure")
	}
}

func TestParseAccessTokenIssuerMismatch(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "retailops",
		ExpirationMinutes: 10,
	}

	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: uuid.New()})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	cfg.Issuer = "someone-else"
	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatalf("expected issuer validation failure")
	}
}

func TestMintAccessTokenRequiresConfig(t *testing.T) {
	payload := AccessTokenPayload{UserID: uuid.New()}

	if _, err := MintAccessToken(config.JWTConfig{Issuer: "retailops", ExpirationMinutes: 10}, time.Now(), payload); err == nil {
		t.Fatalf("expected missing secret to fail")
	}
	if _, err := MintAccessToken(config.JWTConfig{Secret: "secret", ExpirationMinutes: 10}, time.Now(), payload); err == nil {
		t.Fatalf("expected missing issuer to fail")
	}
	if _, err := MintAccessToken(config.JWTConfig{Secret: "secret", Issuer: "retailops"}, time.Now(), payload); err == nil {
		t.Fatalf("expected zero expiration to fail")
	}
	if _, err := MintAccessToken(config.JWTConfig{Secret: "secret", Issuer: "retailops", ExpirationMinutes: 10}, time.Now(), AccessTokenPayload{}); err == nil {
		t.Fatalf("expected missing user id to fail")
	}
}
