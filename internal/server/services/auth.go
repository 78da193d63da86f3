package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/dmitrijs2005/mailvault/internal/common"
	"github.com/dmitrijs2005/mailvault/internal/server/auth"
	"github.com/dmitrijs2005/mailvault/internal/server/models"
	"github.com/dmitrijs2005/mailvault/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// dummyHash is verified against when login hits an unknown email, so the
// request costs the same whether or not the account exists.
const dummyHash = "$argon2id$v=19$m=65536,t=3,p=2$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// AuthService implements signup, login, and logout on top of the account
// repository and TokenService.
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      *TokenService
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, tokens *TokenService) *AuthService {
	return &AuthService{db: db, repomanager: m, tokens: tokens}
}

// Signup registers a new account and returns it together with an initial
// token pair. The email is normalized to lower case before the uniqueness
// check. A malformed email, empty name, or a password shorter than 8
// characters yields common.ErrValidation.
func (s *AuthService) Signup(ctx context.Context, email, name, password string) (*models.Account, *TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)

	if err := validateSignup(email, name, password); err != nil {
		return nil, nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, nil, common.ErrInternal
	}

	account := &models.Account{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		IsActive:     true,
	}

	repo := s.repomanager.Accounts(s.db)
	created, err := repo.Create(ctx, account)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, nil, common.ErrAlreadyExists
		}
		return nil, nil, fmt.Errorf("error creating account: %w", err)
	}

	pair, err := s.tokens.Issue(ctx, created.ID)
	if err != nil {
		return nil, nil, err
	}

	return created, pair, nil
}

// Login verifies credentials and returns the account with a fresh token
// pair. Unknown email and wrong password are indistinguishable to the
// caller: both yield common.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.Account, *TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	repo := s.repomanager.Accounts(s.db)
	account, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			_, _ = auth.VerifyPassword(password, dummyHash)
			return nil, nil, common.ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("error fetching account: %w", err)
	}

	ok, err := auth.VerifyPassword(password, account.PasswordHash)
	if err != nil || !ok || !account.IsActive {
		return nil, nil, common.ErrInvalidCredentials
	}

	pair, err := s.tokens.Issue(ctx, account.ID)
	if err != nil {
		return nil, nil, err
	}

	return account, pair, nil
}

// Logout revokes the presented refresh token. The access token is left to
// expire on its own.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.tokens.Revoke(ctx, refreshToken)
}

func validateSignup(email, name, password string) error {
	if email == "" || name == "" {
		return common.ErrValidation
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return common.ErrValidation
	}
	if len(password) < 8 {
		return common.ErrValidation
	}
	return nil
}
