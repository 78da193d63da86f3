package api

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

type signupRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type tokensPayload struct {
	Access    string `json:"access"`
	Refresh   string `json:"refresh"`
	ExpiresIn int64  `json:"expires_in"`
}

type userPayload struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type authResponse struct {
	Message string        `json:"message"`
	Tokens  tokensPayload `json:"tokens"`
	User    userPayload   `json:"user"`
}

// User identifies the logged-in account.
type User struct {
	Email string
	Name  string
}

// Configuration is a stored email configuration as the server reports it.
// AppPassword is filled only by Configuration (get by id) calls.
type Configuration struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	AppPassword string `json:"app_password"`
	IsActive    bool   `json:"is_active"`
}

// ConfigurationInput is the write shape for create calls.
type ConfigurationInput struct {
	Email       string `json:"email"`
	AppPassword string `json:"app_password"`
	IsActive    bool   `json:"is_active"`
}

// ConfigurationUpdate carries a partial update. Nil fields are left out of
// the request body and keep their server-side values.
type ConfigurationUpdate struct {
	Email       *string `json:"email,omitempty"`
	AppPassword *string `json:"app_password,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// Signup registers a new account and stores the returned token pair, so the
// user is logged in without a separate login call.
func (c *Client) Signup(ctx context.Context, email, name, password string) (*User, error) {
	var resp authResponse
	err := c.do(ctx, http.MethodPost, "/auth/signup", "", signupRequest{Email: email, Name: name, Password: password}, &resp)
	if err != nil {
		return nil, err
	}

	if err := c.storePair(resp.Tokens); err != nil {
		return nil, err
	}
	return &User{Email: resp.User.Email, Name: resp.User.Name}, nil
}

// Login authenticates and stores the returned token pair.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	var resp authResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", "", loginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}

	if err := c.storePair(resp.Tokens); err != nil {
		return nil, err
	}
	return &User{Email: resp.User.Email, Name: resp.User.Name}, nil
}

func (c *Client) storePair(pair tokensPayload) error {
	return c.tokens.Set(pair.Access, pair.Refresh, time.Duration(pair.ExpiresIn)*time.Second)
}

// Logout tells the server to revoke the refresh token, then clears the
// local record. The local clear happens regardless of the server's answer:
// logging out must always work.
func (c *Client) Logout(ctx context.Context) error {
	refresh := c.tokens.Refresh()
	if refresh != "" {
		_ = c.do(ctx, http.MethodPost, "/auth/logout", c.tokens.AuthHeader(), refreshRequest{Refresh: refresh}, nil)
	}
	return c.tokens.Clear()
}

// Configurations lists the account's configurations. App passwords are not
// included in list responses.
func (c *Client) Configurations(ctx context.Context) ([]Configuration, error) {
	var out []Configuration
	if err := c.doAuthed(ctx, http.MethodGet, "/configurations/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Configuration fetches one configuration including the decrypted app
// password.
func (c *Client) Configuration(ctx context.Context, id int64) (*Configuration, error) {
	var out Configuration
	if err := c.doAuthed(ctx, http.MethodGet, fmt.Sprintf("/configurations/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateConfiguration(ctx context.Context, in ConfigurationInput) (*Configuration, error) {
	var out Configuration
	if err := c.doAuthed(ctx, http.MethodPost, "/configurations/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateConfiguration(ctx context.Context, id int64, in ConfigurationUpdate) (*Configuration, error) {
	var out Configuration
	if err := c.doAuthed(ctx, http.MethodPut, fmt.Sprintf("/configurations/%d", id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteConfiguration(ctx context.Context, id int64) error {
	return c.doAuthed(ctx, http.MethodDelete, fmt.Sprintf("/configurations/%d", id), nil, nil)
}

// UseConfiguration makes the configuration the account's active one. The
// server deactivates any sibling as part of the same write.
func (c *Client) UseConfiguration(ctx context.Context, id int64) (*Configuration, error) {
	var out Configuration
	if err := c.doAuthed(ctx, http.MethodPost, fmt.Sprintf("/configurations/%d/activate", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
