// Package tokens persists the client's token pair between runs.
//
// The record lives in a small JSON file next to the binary (tokens.json by
// default). Loading is tolerant: a missing file, unreadable JSON, or an
// unparsable expiry yields an empty record rather than an error, so a
// corrupted file just means the user logs in again.
package tokens

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"sync"
	"time"
)

// record is the on-disk layout. TokenExpiry is RFC 3339; files written by
// older builds may hold a unix timestamp instead, which Load still accepts.
type record struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenExpiry  string `json:"token_expiry,omitempty"`
}

// Manager owns the persisted token pair. All methods are safe for
// concurrent use.
type Manager struct {
	mu sync.Mutex

	path string

	access  string
	refresh string
	expiry  time.Time
}

// NewManager creates a Manager backed by the file at path and loads any
// existing record.
func NewManager(path string) *Manager {
	m := &Manager{path: path}
	m.load()
	return m
}

func (m *Manager) load() {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return
	}

	m.access = rec.AccessToken
	m.refresh = rec.RefreshToken
	m.expiry = parseExpiry(rec.TokenExpiry)
}

// parseExpiry accepts RFC 3339 first, then a unix timestamp written by
// older builds. Anything else means "unknown expiry" (zero time).
func parseExpiry(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if sec, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Unix(int64(sec), 0)
	}
	return time.Time{}
}

// Set replaces the stored pair and persists it. expiresIn counts from now.
func (m *Manager) Set(access, refresh string, expiresIn time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.access = access
	m.refresh = refresh
	m.expiry = time.Now().Add(expiresIn)

	return m.save()
}

func (m *Manager) save() error {
	rec := record{
		AccessToken:  m.access,
		RefreshToken: m.refresh,
	}
	if !m.expiry.IsZero() {
		rec.TokenExpiry = m.expiry.Format(time.RFC3339)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("error marshalling token record: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0o600); err != nil {
		return fmt.Errorf("error writing token record: %w", err)
	}
	return nil
}

// Clear wipes the in-memory pair and removes the file. A missing file is
// not an error.
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.access = ""
	m.refresh = ""
	m.expiry = time.Time{}

	if err := os.Remove(m.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error removing token record: %w", err)
	}
	return nil
}

// Valid reports whether the access token exists and has not expired.
// A record without a known expiry counts as invalid, forcing a refresh.
func (m *Manager) Valid() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.access != "" && !m.expiry.IsZero() && time.Now().Before(m.expiry)
}

// Access returns the current access token, empty when logged out.
func (m *Manager) Access() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.access
}

// Refresh returns the current refresh token, empty when logged out.
func (m *Manager) Refresh() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refresh
}

// AuthHeader returns the Authorization header value for the access token,
// or empty when no valid token is held.
func (m *Manager) AuthHeader() string {
	if !m.Valid() {
		return ""
	}
	return "Bearer " + m.Access()
}
