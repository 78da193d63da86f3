// Package httpapi exposes the service layer as a JSON API over chi.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/mailvault/internal/logging"
	"github.com/dmitrijs2005/mailvault/internal/server/models"
	"github.com/dmitrijs2005/mailvault/internal/server/services"
	"github.com/google/uuid"
)

// AuthService is the slice of the auth service the handlers need.
type AuthService interface {
	Signup(ctx context.Context, email, name, password string) (*models.Account, *services.TokenPair, error)
	Login(ctx context.Context, email, password string) (*models.Account, *services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
}

// TokenService validates access tokens and rotates refresh tokens.
type TokenService interface {
	ValidateAccess(ctx context.Context, token string) (uuid.UUID, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
}

// ConfigService manages email configurations for an account.
type ConfigService interface {
	Create(ctx context.Context, accountID uuid.UUID, email, appPassword string, active bool) (*services.ConfigurationView, error)
	Update(ctx context.Context, accountID uuid.UUID, id int64, email, appPassword *string, active *bool) (*services.ConfigurationView, error)
	Activate(ctx context.Context, accountID uuid.UUID, id int64) (*services.ConfigurationView, error)
	Get(ctx context.Context, accountID uuid.UUID, id int64) (*services.ConfigurationView, error)
	List(ctx context.Context, accountID uuid.UUID) ([]services.ConfigurationView, error)
	Delete(ctx context.Context, accountID uuid.UUID, id int64) error
}

// Handlers aggregates handler dependencies.
type Handlers struct {
	auth    AuthService
	tokens  TokenService
	configs ConfigService
	logger  logging.Logger
}

func NewHandlers(auth AuthService, tokens TokenService, configs ConfigService, logger logging.Logger) *Handlers {
	return &Handlers{auth: auth, tokens: tokens, configs: configs, logger: logger}
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict rejects unknown fields so client typos fail loudly.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}
