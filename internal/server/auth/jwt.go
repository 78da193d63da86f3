// Package auth implements JWT minting/verification and account password
// hashing for the mailvault server.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/mailvault/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token type claim values. A refresh token can never be used as an access
// token and vice versa.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims includes the registered claims plus the account identity and the
// token kind. The jti (RegisteredClaims.ID) identifies a refresh token in
// the blacklist.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"uid"`
	TokenType string `json:"typ"`
}

// GenerateToken mints a signed HS256 token of the given type for userID.
// Every token carries a fresh jti so refresh tokens can be revoked
// individually.
func GenerateToken(userID, tokenType string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		UserID:    userID,
		TokenType: tokenType,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies the signature and validity window of tokenString and
// returns its claims. The signing method is checked before any claim is
// trusted. Expired tokens yield common.ErrTokenExpired; anything else
// malformed yields common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, common.ErrInvalidToken
		}
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// ParseTokenAllowExpired verifies the signature of tokenString but accepts
// an expired validity window. Used by revocation, where blacklisting an
// already-expired refresh token must stay idempotent.
func ParseTokenAllowExpired(tokenString string, secretKey []byte) (*Claims, error) {
	claims, err := ParseToken(tokenString, secretKey)
	if err == nil {
		return claims, nil
	}
	if !errors.Is(err, common.ErrTokenExpired) {
		return nil, err
	}

	// Re-parse without expiry validation; the signature is still checked.
	claims = &Claims{}
	_, err = jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, common.ErrInvalidToken
		}
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}
