// Package services contains server-side business logic. This file implements
// TokenService: issuing, validating, refreshing, and revoking JWT pairs
// backed by a blacklist of revoked refresh-token identifiers.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/mailvault/internal/common"
	"github.com/dmitrijs2005/mailvault/internal/dbx"
	"github.com/dmitrijs2005/mailvault/internal/server/auth"
	"github.com/dmitrijs2005/mailvault/internal/server/cache"
	"github.com/dmitrijs2005/mailvault/internal/server/config"
	"github.com/dmitrijs2005/mailvault/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// TokenPair bundles a short-lived access token and a longer-lived refresh
// token. AccessExpiresAt tells the client when to start refreshing.
type TokenPair struct {
	AccessToken     string
	RefreshToken    string
	AccessExpiresAt time.Time
}

// TokenService provides the token lifecycle:
//   - Issue: mint an access/refresh pair for an account
//   - ValidateAccess: verify an access token and extract the account id
//   - Refresh: rotate a refresh token and mint a new pair
//   - Revoke: blacklist a refresh token (idempotent)
//
// The blacklist lives in Postgres; an optional RevocationCache spares a DB
// lookup on the hot path. revocations may be nil.
type TokenService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	revocations                  cache.RevocationCache
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

// NewTokenService constructs a TokenService using repositories and server config.
func NewTokenService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, revocations cache.RevocationCache) *TokenService {
	return &TokenService{
		db:                           db,
		repomanager:                  m,
		revocations:                  revocations,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// Issue mints a fresh token pair for accountID.
func (s *TokenService) Issue(ctx context.Context, accountID uuid.UUID) (*TokenPair, error) {
	access, err := auth.GenerateToken(accountID.String(), auth.TokenTypeAccess, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrInternal
	}
	refresh, err := auth.GenerateToken(accountID.String(), auth.TokenTypeRefresh, s.jwtSecret, s.refreshTokenValidityDuration)
	if err != nil {
		return nil, common.ErrInternal
	}
	return &TokenPair{
		AccessToken:     access,
		RefreshToken:    refresh,
		AccessExpiresAt: time.Now().Add(s.accessTokenValidityDuration),
	}, nil
}

// ValidateAccess checks signature, validity window and token type, and
// returns the account id the token was issued for.
func (s *TokenService) ValidateAccess(ctx context.Context, token string) (uuid.UUID, error) {
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return uuid.Nil, err
	}
	if claims.TokenType != auth.TokenTypeAccess {
		return uuid.Nil, common.ErrInvalidToken
	}

	accountID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, common.ErrInvalidToken
	}

	return accountID, nil
}

// Refresh validates refreshToken, rotates it, and returns a fresh pair.
// An expired, malformed, mistyped, or blacklisted token yields
// common.ErrInvalidToken. Rotation blacklists the old jti in the same
// transaction, so presenting one refresh token concurrently lets exactly
// one caller win.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := auth.ParseToken(refreshToken, s.jwtSecret)
	if err != nil {
		// Expired and malformed refresh tokens are reported alike.
		return nil, common.ErrInvalidToken
	}
	if claims.TokenType != auth.TokenTypeRefresh {
		return nil, common.ErrInvalidToken
	}

	accountID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, common.ErrInvalidToken
	}
	jti, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, common.ErrInvalidToken
	}
	if claims.ExpiresAt == nil {
		return nil, common.ErrInvalidToken
	}

	if s.revocations != nil {
		if revoked, found, cacheErr := s.revocations.IsRevoked(ctx, jti.String()); cacheErr == nil && found && revoked {
			return nil, common.ErrInvalidToken
		}
		// Cache errors fall through to the store.
	}

	expiresAt := claims.ExpiresAt.Time

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		inserted, err := s.repomanager.TokenBlacklist(tx).Add(ctx, jti, expiresAt)
		if err != nil {
			return fmt.Errorf("error blacklisting refresh token: %w", err)
		}
		if !inserted {
			// Already revoked or already rotated by a concurrent call.
			return common.ErrInvalidToken
		}
		var issueErr error
		pair, issueErr = s.Issue(ctx, accountID)
		return issueErr
	}); err != nil {
		return nil, err
	}

	s.markRevokedInCache(ctx, jti, expiresAt)

	return pair, nil
}

// Revoke blacklists refreshToken's jti. Revoking twice, or revoking an
// already-expired token, is not an error. A token that fails signature or
// type checks yields common.ErrInvalidToken.
func (s *TokenService) Revoke(ctx context.Context, refreshToken string) error {
	claims, err := auth.ParseTokenAllowExpired(refreshToken, s.jwtSecret)
	if err != nil {
		return err
	}
	if claims.TokenType != auth.TokenTypeRefresh {
		return common.ErrInvalidToken
	}

	jti, err := uuid.Parse(claims.ID)
	if err != nil {
		return common.ErrInvalidToken
	}
	if claims.ExpiresAt == nil {
		return common.ErrInvalidToken
	}

	expiresAt := claims.ExpiresAt.Time
	repo := s.repomanager.TokenBlacklist(s.db)
	if _, err := repo.Add(ctx, jti, expiresAt); err != nil {
		return fmt.Errorf("error blacklisting refresh token: %w", err)
	}

	s.markRevokedInCache(ctx, jti, expiresAt)

	return nil
}

// PurgeExpired removes blacklist entries whose tokens are past expiry.
// Called periodically by the app.
func (s *TokenService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.repomanager.TokenBlacklist(s.db).PurgeExpired(ctx, time.Now())
}

func (s *TokenService) markRevokedInCache(ctx context.Context, jti uuid.UUID, expiresAt time.Time) {
	if s.revocations == nil {
		return
	}
	// Best effort: the blacklist row is already committed.
	_ = s.revocations.MarkRevoked(ctx, jti.String(), time.Until(expiresAt))
}
