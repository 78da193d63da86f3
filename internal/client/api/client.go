// Package api is the HTTP client for the mailvault server. It owns the
// persisted token record, attaches bearer credentials to authenticated
// calls, and transparently refreshes the access token on expiry. Refresh
// attempts are serialized: concurrent callers share one in-flight refresh
// instead of each firing their own.
package api

import (
	"bytes"
	"errors"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/mailvault/internal/client/tokens"
	"golang.org/x/sync/singleflight"
)

// DefaultTimeout bounds every network operation.
const DefaultTimeout = 10 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
	tokens  *tokens.Manager

	refreshGroup singleflight.Group
}

// New creates a Client for the API rooted at baseURL (e.g.
// "http://localhost:8080/api"). timeout <= 0 falls back to DefaultTimeout.
func New(baseURL string, timeout time.Duration, tm *tokens.Manager) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tm,
	}
}

// Tokens exposes the token record, mainly so the UI can tell whether a
// session exists.
func (c *Client) Tokens() *tokens.Manager {
	return c.tokens
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// do sends one request and decodes the response into out (when non-nil).
// Error replies are mapped to the package sentinels.
func (c *Client) do(ctx context.Context, method, path, authHeader string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("error marshalling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("error building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnavailable, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return mapStatus(resp)
	}

	if out != nil && resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusResetContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("error decoding response: %w", err)
		}
	}
	return nil
}

func mapStatus(resp *http.Response) error {
	var env errorEnvelope
	_ = json.NewDecoder(resp.Body).Decode(&env)

	switch resp.StatusCode {
	case http.StatusBadRequest:
		if env.Error.Code == "duplicate" {
			return ErrDuplicate
		}
		if env.Error.Message != "" {
			return fmt.Errorf("%w: %s", ErrValidation, env.Error.Message)
		}
		return ErrValidation
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return ErrServer
	}
}

// doAuthed runs an authenticated request, refreshing the access token when
// it is missing, expired, or rejected. At most one retry after a refresh.
func (c *Client) doAuthed(ctx context.Context, method, path string, body, out any) error {
	if !c.tokens.Valid() {
		if err := c.refreshTokens(ctx); err != nil {
			return err
		}
	}

	err := c.do(ctx, method, path, c.tokens.AuthHeader(), body, out)
	if err == nil || !errors.Is(err, ErrUnauthorized) {
		return err
	}

	// The server rejected a token we thought was fresh; refresh once and
	// retry.
	if err := c.refreshTokens(ctx); err != nil {
		return err
	}
	return c.do(ctx, method, path, c.tokens.AuthHeader(), body, out)
}

// refreshTokens rotates the refresh token. Concurrent callers collapse into
// a single request through the singleflight group. A rejected refresh
// clears the token record and reports ErrSessionExpired; a network failure
// leaves the record alone so the call can be retried.
func (c *Client) refreshTokens(ctx context.Context) error {
	_, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		refresh := c.tokens.Refresh()
		if refresh == "" {
			return nil, ErrSessionExpired
		}

		var pair tokensPayload
		err := c.do(ctx, http.MethodPost, "/auth/refresh", "", refreshRequest{Refresh: refresh}, &pair)
		if err != nil {
			if errors.Is(err, ErrUnavailable) {
				return nil, err
			}
			// The refresh token is dead; force a local logout.
			_ = c.tokens.Clear()
			return nil, ErrSessionExpired
		}

		if err := c.tokens.Set(pair.Access, pair.Refresh, time.Duration(pair.ExpiresIn)*time.Second); err != nil {
			return nil, err
		}
		return nil, nil
	})
	return err
}
