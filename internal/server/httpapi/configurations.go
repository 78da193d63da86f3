package httpapi

import (
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/mailvault/internal/common"
	"github.com/dmitrijs2005/mailvault/internal/server/services"
	"github.com/go-chi/chi/v5"
)

type configurationRequest struct {
	Email       string `json:"email"`
	AppPassword string `json:"app_password"`
	IsActive    bool   `json:"is_active"`
}

// configurationUpdateRequest distinguishes omitted fields from zero values:
// a field left out of a PUT body keeps its stored value.
type configurationUpdateRequest struct {
	Email       *string `json:"email"`
	AppPassword *string `json:"app_password"`
	IsActive    *bool   `json:"is_active"`
}

type configurationPayload struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	AppPassword string `json:"app_password,omitempty"`
	IsActive    bool   `json:"is_active"`
}

func newConfigurationPayload(view *services.ConfigurationView) configurationPayload {
	return configurationPayload{
		ID:          view.ID,
		Email:       view.Email,
		AppPassword: view.AppPassword,
		IsActive:    view.IsActive,
	}
}

func configID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, common.ErrNotFound
	}
	return id, nil
}

func (h *Handlers) ListConfigurations(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrInvalidToken)
		return
	}

	views, err := h.configs.List(r.Context(), accountID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]configurationPayload, 0, len(views))
	for i := range views {
		out = append(out, newConfigurationPayload(&views[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) CreateConfiguration(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrInvalidToken)
		return
	}

	var in configurationRequest
	if err := decodeStrict(r, &in); err != nil {
		writeError(w, common.ErrValidation)
		return
	}

	view, err := h.configs.Create(r.Context(), accountID, in.Email, in.AppPassword, in.IsActive)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newConfigurationPayload(view))
}

// GetConfiguration is the only read that returns the decrypted app password.
func (h *Handlers) GetConfiguration(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrInvalidToken)
		return
	}

	id, err := configID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	view, err := h.configs.Get(r.Context(), accountID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newConfigurationPayload(view))
}

func (h *Handlers) UpdateConfiguration(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrInvalidToken)
		return
	}

	id, err := configID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var in configurationUpdateRequest
	if err := decodeStrict(r, &in); err != nil {
		writeError(w, common.ErrValidation)
		return
	}

	view, err := h.configs.Update(r.Context(), accountID, id, in.Email, in.AppPassword, in.IsActive)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newConfigurationPayload(view))
}

// ActivateConfiguration makes the configuration the account's active one;
// any sibling is deactivated as part of the same write.
func (h *Handlers) ActivateConfiguration(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrInvalidToken)
		return
	}

	id, err := configID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	view, err := h.configs.Activate(r.Context(), accountID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newConfigurationPayload(view))
}

func (h *Handlers) DeleteConfiguration(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrInvalidToken)
		return
	}

	id, err := configID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.configs.Delete(r.Context(), accountID, id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
