package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"

	"contentpilot/internal/domain/models"
	"contentpilot/internal/domain/services"
	"contentpilot/internal/httputil"
)

// UserSettingsHandler handles user settings HTTP requests
type UserSettingsHandler struct {
	service services.UserSettingsService
	logger  *slog.Logger
}

// NewUserSettingsHandler creates a new user settings handler
func NewUserSettingsHandler(service services.UserSettingsService, logger *slog.Logger) *UserSettingsHandler {
	return &UserSettingsHandler{
		service: service,
		logger:  logger,
	}
}

// optionalWordPress distinguishes an absent wordpress block from an explicit null.
type optionalWordPress struct {
	Present bool
	Value   *models.WordPressCredentials
}

func (o *optionalWordPress) UnmarshalJSON(data []byte) error {
	o.Present = true
	if string(bytes.TrimSpace(data)) == "null" {
		o.Value = nil
		return nil
	}
	var creds models.WordPressCredentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return err
	}
	o.Value = &creds
	return nil
}

type updateSettingsBody struct {
	Language  *string                 `json:"language"`
	Theme     *string                 `json:"theme"`
	AIAPIKey  httputil.OptionalString `json:"ai_api_key"`
	WordPress optionalWordPress       `json:"wordpress"`
	Billing   *models.Billing         `json:"billing"`
}

// GetSettings retrieves the user's settings, secrets masked
// GET /api/users/me/settings
func (h *UserSettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.GetSettings(r.Context(), httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, settings)
}

// UpdateSettings applies a partial update
// PATCH /api/users/me/settings
func (h *UserSettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var body updateSettingsBody
	if !parseBody(w, r, &body) {
		return
	}

	req := &services.UpdateSettingsRequest{
		Language: body.Language,
		Theme:    body.Theme,
		AIAPIKey: services.OptionalString{
			Present: body.AIAPIKey.Present,
			Value:   body.AIAPIKey.Value,
		},
		WordPress: body.WordPress.Value,
		ClearWP:   body.WordPress.Present && body.WordPress.Value == nil,
		Billing:   body.Billing,
	}

	settings, err := h.service.UpdateSettings(r.Context(), httputil.GetUserID(r), req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, settings)
}
