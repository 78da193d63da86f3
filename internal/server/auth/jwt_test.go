package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/mailvault/internal/common"
)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")
	userID := "user-123"

	tok, err := GenerateToken(userID, TokenTypeAccess, secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	claims, err := ParseToken(tok, secret)
	if err != nil {
		t.Fatalf("ParseToken error: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("userID mismatch: got %q want %q", claims.UserID, userID)
	}
	if claims.TokenType != TokenTypeAccess {
		t.Fatalf("token type mismatch: got %q want %q", claims.TokenType, TokenTypeAccess)
	}
	if claims.ID == "" {
		t.Fatalf("expected non-empty jti")
	}
}

func TestGenerateToken_UniqueJTI(t *testing.T) {
	t.Parallel()

	secret := []byte("s")
	a, err := GenerateToken("u1", TokenTypeRefresh, secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	b, err := GenerateToken("u1", TokenTypeRefresh, secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	ca, err := ParseToken(a, secret)
	if err != nil {
		t.Fatalf("ParseToken error: %v", err)
	}
	cb, err := ParseToken(b, secret)
	if err != nil {
		t.Fatalf("ParseToken error: %v", err)
	}
	if ca.ID == cb.ID {
		t.Fatalf("expected distinct jti values, got %q twice", ca.ID)
	}
}

func TestParseToken_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")

	tok, err := GenerateToken("u1", TokenTypeAccess, secret, -1*time.Second)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	_, err = ParseToken(tok, secret)
	if !errors.Is(err, common.ErrTokenExpired) {
		t.Fatalf("expected common.ErrTokenExpired, got %v", err)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken("u2", TokenTypeAccess, []byte("right-secret"), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	_, err = ParseToken(tok, []byte("wrong-secret"))
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

func TestParseToken_MalformedString(t *testing.T) {
	t.Parallel()

	_, err := ParseToken("not.a.jwt", []byte("k"))
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

func TestParseTokenAllowExpired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")

	tok, err := GenerateToken("u3", TokenTypeRefresh, secret, -1*time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	claims, err := ParseTokenAllowExpired(tok, secret)
	if err != nil {
		t.Fatalf("ParseTokenAllowExpired error: %v", err)
	}
	if claims.UserID != "u3" {
		t.Fatalf("userID mismatch: got %q", claims.UserID)
	}

	// The signature is still checked.
	if _, err := ParseTokenAllowExpired(tok, []byte("other")); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected common.ErrInvalidToken for wrong secret, got %v", err)
	}
}
