package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/mailvault/internal/common"
	"github.com/dmitrijs2005/mailvault/internal/logging"
	"github.com/dmitrijs2005/mailvault/internal/server/models"
	"github.com/dmitrijs2005/mailvault/internal/server/services"
	"github.com/google/uuid"
)

// --- fakes ---

var testAccountID = uuid.MustParse("11111111-2222-3333-4444-555555555555")

func testPair() *services.TokenPair {
	return &services.TokenPair{
		AccessToken:     "access-token",
		RefreshToken:    "refresh-token",
		AccessExpiresAt: time.Now().Add(time.Hour),
	}
}

type fakeAuth struct {
	signupErr error
	loginErr  error
	logoutErr error
}

func (f *fakeAuth) Signup(ctx context.Context, email, name, password string) (*models.Account, *services.TokenPair, error) {
	if f.signupErr != nil {
		return nil, nil, f.signupErr
	}
	return &models.Account{ID: testAccountID, Email: email, Name: name}, testPair(), nil
}
func (f *fakeAuth) Login(ctx context.Context, email, password string) (*models.Account, *services.TokenPair, error) {
	if f.loginErr != nil {
		return nil, nil, f.loginErr
	}
	return &models.Account{ID: testAccountID, Email: email, Name: "Jane"}, testPair(), nil
}
func (f *fakeAuth) Logout(ctx context.Context, refreshToken string) error {
	return f.logoutErr
}

type fakeTokens struct {
	validateErr error
	refreshErr  error
}

func (f *fakeTokens) ValidateAccess(ctx context.Context, token string) (uuid.UUID, error) {
	if f.validateErr != nil {
		return uuid.Nil, f.validateErr
	}
	if token != "access-token" {
		return uuid.Nil, common.ErrInvalidToken
	}
	return testAccountID, nil
}
func (f *fakeTokens) Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error) {
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return testPair(), nil
}

type fakeConfigs struct {
	getErr    error
	deleteErr error
	views     []services.ConfigurationView

	updEmail    *string
	updPassword *string
	updActive   *bool
}

func (f *fakeConfigs) Create(ctx context.Context, accountID uuid.UUID, email, appPassword string, active bool) (*services.ConfigurationView, error) {
	return &services.ConfigurationView{ID: 1, Email: email, IsActive: active}, nil
}
func (f *fakeConfigs) Update(ctx context.Context, accountID uuid.UUID, id int64, email, appPassword *string, active *bool) (*services.ConfigurationView, error) {
	f.updEmail = email
	f.updPassword = appPassword
	f.updActive = active
	view := &services.ConfigurationView{ID: id, Email: "box@example.com", IsActive: true}
	if email != nil {
		view.Email = *email
	}
	if active != nil {
		view.IsActive = *active
	}
	return view, nil
}
func (f *fakeConfigs) Activate(ctx context.Context, accountID uuid.UUID, id int64) (*services.ConfigurationView, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &services.ConfigurationView{ID: id, Email: "box@example.com", IsActive: true}, nil
}
func (f *fakeConfigs) Get(ctx context.Context, accountID uuid.UUID, id int64) (*services.ConfigurationView, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &services.ConfigurationView{ID: id, Email: "box@example.com", AppPassword: "plain-pass", IsActive: true}, nil
}
func (f *fakeConfigs) List(ctx context.Context, accountID uuid.UUID) ([]services.ConfigurationView, error) {
	return f.views, nil
}
func (f *fakeConfigs) Delete(ctx context.Context, accountID uuid.UUID, id int64) error {
	return f.deleteErr
}

func newTestRouter(auth *fakeAuth, tokens *fakeTokens, configs *fakeConfigs) http.Handler {
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	h := NewHandlers(auth, tokens, configs, logger)
	return NewRouter(h, Options{Logger: logger})
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
}

// --- auth endpoints ---

func TestSignup_Created(t *testing.T) {
	router := newTestRouter(&fakeAuth{}, &fakeTokens{}, &fakeConfigs{})

	rr := doJSON(t, router, http.MethodPost, "/auth/signup", "", map[string]string{
		"email": "user@example.com", "name": "Jane", "password": "s3cret-pass",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", rr.Code, rr.Body.String())
	}

	var resp authResponse
	decodeBody(t, rr, &resp)
	if resp.Tokens.Access == "" || resp.Tokens.Refresh == "" {
		t.Errorf("expected tokens in signup response")
	}
	if resp.User.Email != "user@example.com" {
		t.Errorf("user email = %q", resp.User.Email)
	}
}

func TestSignup_DuplicateIsBadRequest(t *testing.T) {
	router := newTestRouter(&fakeAuth{signupErr: common.ErrAlreadyExists}, &fakeTokens{}, &fakeConfigs{})

	rr := doJSON(t, router, http.MethodPost, "/auth/signup", "", map[string]string{
		"email": "user@example.com", "name": "Jane", "password": "s3cret-pass",
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}

	var resp ErrorResponse
	decodeBody(t, rr, &resp)
	if resp.Error.Code != "duplicate" {
		t.Errorf("error code = %q, want duplicate", resp.Error.Code)
	}
}

func TestSignup_UnknownFieldRejected(t *testing.T) {
	router := newTestRouter(&fakeAuth{}, &fakeTokens{}, &fakeConfigs{})

	rr := doJSON(t, router, http.MethodPost, "/auth/signup", "", map[string]string{
		"email": "user@example.com", "name": "Jane", "password": "s3cret-pass", "extra": "x",
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestLogin_OKAndUnauthorized(t *testing.T) {
	router := newTestRouter(&fakeAuth{}, &fakeTokens{}, &fakeConfigs{})
	rr := doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "user@example.com", "password": "s3cret-pass",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	router = newTestRouter(&fakeAuth{loginErr: common.ErrInvalidCredentials}, &fakeTokens{}, &fakeConfigs{})
	rr = doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "user@example.com", "password": "wrong",
	})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
	var resp ErrorResponse
	decodeBody(t, rr, &resp)
	if resp.Error.Code != "invalid_credentials" {
		t.Errorf("error code = %q", resp.Error.Code)
	}
}

func TestRefresh_OK(t *testing.T) {
	router := newTestRouter(&fakeAuth{}, &fakeTokens{}, &fakeConfigs{})

	rr := doJSON(t, router, http.MethodPost, "/auth/refresh", "", map[string]string{"refresh": "refresh-token"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var resp tokensPayload
	decodeBody(t, rr, &resp)
	if resp.Access == "" || resp.Refresh == "" {
		t.Errorf("expected rotated pair, got %+v", resp)
	}
	if resp.ExpiresIn <= 0 {
		t.Errorf("expires_in should be positive, got %d", resp.ExpiresIn)
	}
}

func TestRefresh_MissingTokenIsBadRequest(t *testing.T) {
	router := newTestRouter(&fakeAuth{}, &fakeTokens{}, &fakeConfigs{})

	rr := doJSON(t, router, http.MethodPost, "/auth/refresh", "", map[string]string{})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestRefresh_InvalidTokenIsUnauthorized(t *testing.T) {
	router := newTestRouter(&fakeAuth{}, &fakeTokens{refreshErr: common.ErrInvalidToken}, &fakeConfigs{})

	rr := doJSON(t, router, http.MethodPost, "/auth/refresh", "", map[string]string{"refresh": "bad"})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
}

func TestLogout_ResetContent(t *testing.T) {
	router := newTestRouter(&fakeAuth{}, &fakeTokens{}, &fakeConfigs{})

	rr := doJSON(t, router, http.MethodPost, "/auth/logout", "access-token", map[string]string{"refresh": "refresh-token"})
	if rr.Code != http.StatusResetContent {
		t.Fatalf("status = %d, want 205; body %s", rr.Code, rr.Body.String())
	}
}

func TestLogout_RequiresAccessToken(t *testing.T) {
	router := newTestRouter(&fakeAuth{}, &fakeTokens{}, &fakeConfigs{})

	rr := doJSON(t, router, http.MethodPost, "/auth/logout", "", map[string]string{"refresh": "refresh-token"})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
}

func TestLogout_InvalidRefreshIsBadRequest(t *testing.T) {
	router := newTestRouter(&fakeAuth{logoutErr: common.ErrInvalidToken}, &fakeTokens{}, &fakeConfigs{})

	rr := doJSON(t, router, http.MethodPost, "/auth/logout", "access-token", map[string]string{"refresh": "garbage"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestLogout_StoreFailureIsServerError(t *testing.T) {
	router := newTestRouter(&fakeAuth{logoutErr: errors.New("adding jti: connection refused")}, &fakeTokens{}, &fakeConfigs{})

	rr := doJSON(t, router, http.MethodPost, "/auth/logout", "access-token", map[string]string{"refresh": "refresh-token"})
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500; body %s", rr.Code, rr.Body.String())
	}
	var resp ErrorResponse
	decodeBody(t, rr, &resp)
	if resp.Error.Code != "internal" {
		t.Errorf("error code = %q, want internal", resp.Error.Code)
	}
}

// --- configuration endpoints ---

func TestConfigurations_RequireAuth(t *testing.T) {
	router := newTestRouter(&fakeAuth{}, &fakeTokens{}, &fakeConfigs{})

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/configurations/"},
		{http.MethodPost, "/configurations/"},
		{http.MethodGet, "/configurations/1"},
		{http.MethodPut, "/configurations/1"},
		{http.MethodDelete, "/configurations/1"},
	} {
		rr := doJSON(t, router, tc.method, tc.path, "", nil)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without token: status = %d, want 401", tc.method, tc.path, rr.Code)
		}
	}
}

func TestConfigurations_ExpiredAccessToken(t *testing.T) {
	router := newTestRouter(&fakeAuth{}, &fakeTokens{validateErr: common.ErrTokenExpired}, &fakeConfigs{})

	rr := doJSON(t, router, http.MethodGet, "/configurations/", "access-token", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
	var resp ErrorResponse
	decodeBody(t, rr, &resp)
	if resp.Error.Code != "token_expired" {
		t.Errorf("error code = %q", resp.Error.Code)
	}
}

func TestListConfigurations_MasksPasswords(t *testing.T) {
	configs := &fakeConfigs{views: []services.ConfigurationView{
		{ID: 1, Email: "a@example.com", IsActive: true},
		{ID: 2, Email: "b@example.com"},
	}}
	router := newTestRouter(&fakeAuth{}, &fakeTokens{}, configs)

	rr := doJSON(t, router, http.MethodGet, "/configurations/", "access-token", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var out []map[string]any
	decodeBody(t, rr, &out)
	if len(out) != 2 {
		t.Fatalf("expected 2 configurations, got %d", len(out))
	}
	for _, item := range out {
		if _, ok := item["app_password"]; ok {
			t.Errorf("list item leaks app_password: %v", item)
		}
	}
}

func TestGetConfiguration_IncludesPassword(t *testing.T) {
	router := newTestRouter(&fakeAuth{}, &fakeTokens{}, &fakeConfigs{})

	rr := doJSON(t, router, http.MethodGet, "/configurations/7", "access-token", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var out configurationPayload
	decodeBody(t, rr, &out)
	if out.ID != 7 {
		t.Errorf("id = %d, want 7", out.ID)
	}
	if out.AppPassword != "plain-pass" {
		t.Errorf("get-by-id must include the decrypted password, got %q", out.AppPassword)
	}
}

func TestGetConfiguration_NotFound(t *testing.T) {
	router := newTestRouter(&fakeAuth{}, &fakeTokens{}, &fakeConfigs{getErr: common.ErrNotFound})

	rr := doJSON(t, router, http.MethodGet, "/configurations/7", "access-token", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestGetConfiguration_BadIDIsNotFound(t *testing.T) {
	router := newTestRouter(&fakeAuth{}, &fakeTokens{}, &fakeConfigs{})

	rr := doJSON(t, router, http.MethodGet, "/configurations/abc", "access-token", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestCreateConfiguration_Created(t *testing.T) {
	router := newTestRouter(&fakeAuth{}, &fakeTokens{}, &fakeConfigs{})

	rr := doJSON(t, router, http.MethodPost, "/configurations/", "access-token", map[string]any{
		"email": "box@example.com", "app_password": "app-pass", "is_active": true,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", rr.Code, rr.Body.String())
	}

	var out configurationPayload
	decodeBody(t, rr, &out)
	if !out.IsActive {
		t.Errorf("expected created configuration active")
	}
}

func TestUpdateConfiguration_OK(t *testing.T) {
	router := newTestRouter(&fakeAuth{}, &fakeTokens{}, &fakeConfigs{})

	rr := doJSON(t, router, http.MethodPut, "/configurations/3", "access-token", map[string]any{
		"email": "renamed@example.com", "is_active": true,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rr.Code, rr.Body.String())
	}
}

func TestUpdateConfiguration_OmittedFieldsStayNil(t *testing.T) {
	configs := &fakeConfigs{}
	router := newTestRouter(&fakeAuth{}, &fakeTokens{}, configs)

	rr := doJSON(t, router, http.MethodPut, "/configurations/3", "access-token", map[string]any{
		"app_password": "rotated-pass",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rr.Code, rr.Body.String())
	}

	if configs.updEmail != nil {
		t.Errorf("omitted email decoded as %q, want nil", *configs.updEmail)
	}
	if configs.updActive != nil {
		t.Errorf("omitted is_active decoded as %v, want nil", *configs.updActive)
	}
	if configs.updPassword == nil || *configs.updPassword != "rotated-pass" {
		t.Errorf("app_password not passed through: %v", configs.updPassword)
	}
}

func TestActivateConfiguration_OK(t *testing.T) {
	router := newTestRouter(&fakeAuth{}, &fakeTokens{}, &fakeConfigs{})

	rr := doJSON(t, router, http.MethodPost, "/configurations/3/activate", "access-token", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rr.Code, rr.Body.String())
	}

	var out configurationPayload
	decodeBody(t, rr, &out)
	if !out.IsActive {
		t.Errorf("activated configuration should report active")
	}
}

func TestActivateConfiguration_NotFound(t *testing.T) {
	router := newTestRouter(&fakeAuth{}, &fakeTokens{}, &fakeConfigs{getErr: common.ErrNotFound})

	rr := doJSON(t, router, http.MethodPost, "/configurations/3/activate", "access-token", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestDeleteConfiguration_NoContent(t *testing.T) {
	router := newTestRouter(&fakeAuth{}, &fakeTokens{}, &fakeConfigs{})

	rr := doJSON(t, router, http.MethodDelete, "/configurations/3", "access-token", nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rr.Code)
	}
}

func TestDeleteConfiguration_NotFound(t *testing.T) {
	router := newTestRouter(&fakeAuth{}, &fakeTokens{}, &fakeConfigs{deleteErr: common.ErrNotFound})

	rr := doJSON(t, router, http.MethodDelete, "/configurations/3", "access-token", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestRecoverMiddleware(t *testing.T) {
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	h := Recover(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
}
