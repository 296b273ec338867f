package utils

import (
	"errors"
	"testing"
	"time"
)

func TestTokenGenerateValidate(t *testing.T) {
	manager := NewTokenManager("secret", time.Hour, "issuer")
	token, err := manager.Generate("user-1", Claims{Email: "a@b.c", Role: "admin"})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	claims, err := manager.Validate(token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.Subject != "user-1" || claims.Role != "admin" || claims.Email != "a@b.c" {
		t.Fatalf("unexpected claims: %#v", claims)
	}
}

func TestTokensAreUnique(t *testing.T) {
	manager := NewTokenManager("secret", time.Hour, "issuer")
	first, err := manager.Generate("user-1", Claims{})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	second, err := manager.Generate("user-1", Claims{})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if first == second {
		t.Fatal("expected distinct tokens for the same subject")
	}
}

func TestTokenGenerateInvalid(t *testing.T) {
	manager := NewTokenManager("secret", time.Hour, "issuer")
	if _, err := manager.Generate("", Claims{}); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token error, got %v", err)
	}
}

func TestTokenValidateMissing(t *testing.T) {
	manager := NewTokenManager("secret", time.Hour, "issuer")
	if _, err := manager.Validate(""); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected missing token error, got %v", err)
	}
}

func TestTokenValidateWrongSecret(t *testing.T) {
	signer := NewTokenManager("secret", time.Hour, "issuer")
	verifier := NewTokenManager("other", time.Hour, "issuer")

	token, err := signer.Generate("user-1", Claims{})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if _, err := verifier.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token error, got %v", err)
	}
}

func TestTokenValidateExpired(t *testing.T) {
	manager := NewTokenManager("secret", -time.Minute, "issuer")
	token, err := manager.Generate("user-1", Claims{})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if _, err := manager.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token error, got %v", err)
	}
}

func TestTokenFromHeader(t *testing.T) {
	if _, err := TokenFromHeader("nope"); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected missing token error, got %v", err)
	}
	if token, err := TokenFromHeader("Bearer token"); err != nil || token != "token" {
		t.Fatalf("expected token, got %s err %v", token, err)
	}
}
