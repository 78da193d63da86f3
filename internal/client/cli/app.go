// Package cli implements the interactive mailvault client: a small REPL
// over the HTTP API with a persisted session.
package cli

import (
	"bufio"
	"context"
	"os"
	"time"

	"github.com/dmitrijs2005/mailvault/internal/client/api"
	"github.com/dmitrijs2005/mailvault/internal/client/config"
	"github.com/dmitrijs2005/mailvault/internal/client/tokens"
)

// apiClient is the slice of the API client the commands need. The real
// *api.Client satisfies it; tests provide a stub.
type apiClient interface {
	Signup(ctx context.Context, email, name, password string) (*api.User, error)
	Login(ctx context.Context, email, password string) (*api.User, error)
	Logout(ctx context.Context) error
	Configurations(ctx context.Context) ([]api.Configuration, error)
	Configuration(ctx context.Context, id int64) (*api.Configuration, error)
	CreateConfiguration(ctx context.Context, in api.ConfigurationInput) (*api.Configuration, error)
	UpdateConfiguration(ctx context.Context, id int64, in api.ConfigurationUpdate) (*api.Configuration, error)
	DeleteConfiguration(ctx context.Context, id int64) error
	UseConfiguration(ctx context.Context, id int64) (*api.Configuration, error)
}

// defaultLogoutGrace bounds how long logout waits for the server before
// dropping the session locally.
const defaultLogoutGrace = 2 * time.Second

type App struct {
	config      *config.Config
	client      apiClient
	tokens      *tokens.Manager
	reader      *bufio.Reader
	logoutGrace time.Duration
}

func NewApp(c *config.Config) (*App, error) {
	tm := tokens.NewManager(c.TokensPath)
	client := api.New(c.ServerBaseURL, c.RequestTimeout, tm)

	return &App{
		config:      c,
		client:      client,
		tokens:      tm,
		reader:      bufio.NewReader(os.Stdin),
		logoutGrace: defaultLogoutGrace,
	}, nil
}

func (a *App) Run(ctx context.Context) {
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.status, scanner)
}

func (a *App) isLoggedIn() bool {
	return a.tokens.Refresh() != ""
}

func (a *App) status() string {
	if a.isLoggedIn() {
		return "logged in"
	}
	return "logged out"
}
