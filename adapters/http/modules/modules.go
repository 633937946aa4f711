// Package modules provides HTTP handlers for the module settings API.
package modules

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/artpar/modhost/adapters/auth"
	"github.com/artpar/modhost/adapters/metrics"
	"github.com/artpar/modhost/app"
	"github.com/artpar/modhost/core/module"
	"github.com/artpar/modhost/domain/schema"
	"github.com/artpar/modhost/ports"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/spf13/cast"
)

// Error codes returned in the error envelope.
const (
	CodeNotFound       = "module_not_found"
	CodeSaveFailed     = "save_failed"
	CodeToggleFailed   = "toggle_failed"
	CodeUpdateFailed   = "settings_update_failed"
	CodeLoadFailed     = "modules_load_failed"
	CodeInvalidRequest = "invalid_request"
	CodeUnauthorized   = "unauthorized"
)

const maxBodySize = 1 << 20

// ErrorResponse is the error envelope.
type ErrorResponse struct {
	Success bool        `json:"success" example:"false"`
	Error   ErrorDetail `json:"error"`
}

// ErrorDetail carries a stable machine-readable code.
type ErrorDetail struct {
	Code    string `json:"code" example:"module_not_found"`
	Message string `json:"message" example:"Module not found."`
}

// ListResponse is returned by the list endpoint.
type ListResponse struct {
	Success bool                         `json:"success" example:"true"`
	Data    map[string]app.ModuleSummary `json:"data"`
}

// ModuleResponse is returned by the single module endpoint.
type ModuleResponse struct {
	Success bool              `json:"success" example:"true"`
	Data    app.ModuleSummary `json:"data"`
}

// ToggleRequest is the body of the toggle endpoint.
type ToggleRequest struct {
	Enabled any `json:"enabled" swaggertype:"boolean" example:"true"`
}

// MessageResponse acknowledges a write.
type MessageResponse struct {
	Success bool          `json:"success" example:"true"`
	Message string        `json:"message" example:"Settings saved."`
	Data    *UpdateDetail `json:"data,omitempty"`
}

// UpdateDetail reports what a settings write did.
type UpdateDetail struct {
	Changed []string      `json:"changed"`
	Dropped []schema.Drop `json:"dropped"`
}

// Handler serves the module settings API.
type Handler struct {
	settings *app.SettingsService
	verifier ports.RequestVerifier
	metrics  *metrics.Collector
	logger   zerolog.Logger
}

// Deps contains dependencies for the settings API handler.
type Deps struct {
	Settings *app.SettingsService
	Verifier ports.RequestVerifier
	Metrics  *metrics.Collector
	Logger   zerolog.Logger
}

// NewHandler creates a settings API handler. A nil verifier rejects every
// request.
func NewHandler(deps Deps) *Handler {
	return &Handler{
		settings: deps.Settings,
		verifier: deps.Verifier,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
	}
}

// Router returns the settings API router.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(h.AuthMiddleware)

	r.Get("/", h.ListModules)
	r.Get("/{slug}", h.GetModule)
	r.Post("/{slug}", h.ToggleModule)
	r.Post("/{slug}/settings", h.UpdateSettings)

	return r
}

// AuthMiddleware requires the administrative capability on every request.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := auth.BearerToken(r)
		if h.verifier != nil && h.verifier.Verify(r.Context(), token) {
			next.ServeHTTP(w, r)
			return
		}

		if token == "" {
			h.authFailed("missing_token")
			writeError(w, http.StatusUnauthorized, CodeUnauthorized, "Authentication required.")
			return
		}
		h.authFailed("invalid_token")
		writeError(w, http.StatusUnauthorized, CodeUnauthorized, "Invalid credentials.")
	})
}

func (h *Handler) authFailed(reason string) {
	if h.metrics != nil {
		h.metrics.AuthFailures.WithLabelValues(reason).Inc()
	}
}

// ListModules returns every module with options and annotated settings.
//
//	@Summary		List modules
//	@Description	Returns every exposed module keyed by slug, with current options and settings annotated with dependency status and visibility
//	@Tags			Modules
//	@Produce		json
//	@Success		200	{object}	ListResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/v1/modules [get]
func (h *Handler) ListModules(w http.ResponseWriter, r *http.Request) {
	list, err := h.settings.ListModules(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list modules")
		writeError(w, http.StatusInternalServerError, CodeLoadFailed, "Failed to load modules.")
		return
	}
	writeJSON(w, http.StatusOK, ListResponse{Success: true, Data: list})
}

// GetModule returns one module.
//
//	@Summary		Get module
//	@Description	Returns one module with current options and annotated settings
//	@Tags			Modules
//	@Produce		json
//	@Param			slug	path		string	true	"Module slug"
//	@Success		200		{object}	ModuleResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/v1/modules/{slug} [get]
func (h *Handler) GetModule(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	summary, err := h.settings.GetModule(r.Context(), slug)
	if err != nil {
		if notFound(err) {
			writeError(w, http.StatusNotFound, CodeNotFound, "Module not found.")
			return
		}
		h.logger.Error().Err(err).Str("slug", slug).Msg("failed to load module")
		writeError(w, http.StatusInternalServerError, CodeLoadFailed, "Failed to load modules.")
		return
	}
	writeJSON(w, http.StatusOK, ModuleResponse{Success: true, Data: summary})
}

// ToggleModule enables or disables a module.
//
//	@Summary		Toggle module
//	@Description	Sets the enabled flag of a module. Every other option is kept.
//	@Tags			Modules
//	@Accept			json
//	@Produce		json
//	@Param			slug	path		string			true	"Module slug"
//	@Param			request	body		ToggleRequest	true	"Enabled flag"
//	@Success		200		{object}	MessageResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/v1/modules/{slug} [post]
func (h *Handler) ToggleModule(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	var req ToggleRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "Invalid JSON body.")
		return
	}
	if req.Enabled == nil {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "enabled is required.")
		return
	}
	enabled, err := cast.ToBoolE(req.Enabled)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "enabled must be a boolean.")
		return
	}

	if err := h.settings.ToggleModule(r.Context(), slug, enabled); err != nil {
		switch {
		case notFound(err):
			writeError(w, http.StatusNotFound, CodeNotFound, "Module not found.")
		case errors.Is(err, app.ErrPersistence):
			h.logger.Error().Err(err).Str("slug", slug).Msg("failed to save module toggle")
			writeError(w, http.StatusInternalServerError, CodeSaveFailed, "Failed to save module settings.")
		default:
			h.logger.Error().Err(err).Str("slug", slug).Msg("failed to toggle module")
			writeError(w, http.StatusInternalServerError, CodeToggleFailed, "Failed to toggle module.")
		}
		return
	}

	msg := "Module disabled."
	if enabled {
		msg = "Module enabled."
	}
	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: msg})
}

// UpdateSettings sanitizes and saves module settings.
//
//	@Summary		Update module settings
//	@Description	Sanitizes the submitted settings against the module schema and merges them into the stored options. Invalid values are dropped and reported. The enabled flag cannot be changed here.
//	@Tags			Modules
//	@Accept			json
//	@Produce		json
//	@Param			slug		path		string					true	"Module slug"
//	@Param			settings	body		map[string]interface{}	true	"Raw settings"
//	@Success		200			{object}	MessageResponse
//	@Failure		400			{object}	ErrorResponse
//	@Failure		401			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/v1/modules/{slug}/settings [post]
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "Invalid JSON body.")
		return
	}

	res, err := h.settings.UpdateModuleSettings(r.Context(), slug, raw)
	if err != nil {
		switch {
		case notFound(err):
			writeError(w, http.StatusNotFound, CodeNotFound, "Module not found.")
		case errors.Is(err, app.ErrPersistence):
			h.logger.Error().Err(err).Str("slug", slug).Msg("failed to save module settings")
			writeError(w, http.StatusInternalServerError, CodeSaveFailed, "Failed to save settings.")
		default:
			h.logger.Error().Err(err).Str("slug", slug).Msg("failed to update module settings")
			writeError(w, http.StatusInternalServerError, CodeUpdateFailed, "Failed to update settings.")
		}
		return
	}

	dropped := res.Dropped
	if dropped == nil {
		dropped = []schema.Drop{}
	}
	changed := res.Changed
	if changed == nil {
		changed = []string{}
	}
	writeJSON(w, http.StatusOK, MessageResponse{
		Success: true,
		Message: "Settings saved.",
		Data:    &UpdateDetail{Changed: changed, Dropped: dropped},
	})
}

// notFound reports errors answered with 404. Restricted modules are not
// revealed.
func notFound(err error) bool {
	return errors.Is(err, module.ErrNotFound) || errors.Is(err, module.ErrRestricted)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Error: ErrorDetail{Code: code, Message: message},
	})
}
