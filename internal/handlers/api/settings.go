package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"

	"serptrack/internal/db"
	"serptrack/internal/middleware"
	"serptrack/internal/provider"
	"serptrack/internal/ranking"
)

// SettingsHandler manages the active-provider selection and provider
// API keys. Settings are instance wide, not per user.
type SettingsHandler struct {
	db       *db.DB
	registry *provider.Registry
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(database *db.DB, registry *provider.Registry) *SettingsHandler {
	return &SettingsHandler{db: database, registry: registry}
}

// GetProvider returns the currently selected ranking provider and the
// set of registered ones.
func (h *SettingsHandler) GetProvider(c fiber.Ctx) error {
	if _, ok := middleware.CurrentUser(c); !ok {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	active, err := h.db.GetSetting(c.Context(), ranking.ActiveProviderSetting)
	if err != nil {
		if !errors.Is(err, db.ErrSettingNotFound) {
			return jsonError(c, fiber.StatusInternalServerError, "failed to read settings")
		}
		active = ranking.DefaultProvider
	}
	return jsonSuccess(c, fiber.Map{
		"provider":  active,
		"available": h.registry.Names(),
	})
}

// SetProvider changes the active ranking provider. The change takes
// effect on the next check without a restart.
func (h *SettingsHandler) SetProvider(c fiber.Ctx) error {
	if _, ok := middleware.CurrentUser(c); !ok {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req struct {
		Provider string `json:"provider"`
	}
	if err := c.Bind().Body(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	name := strings.ToLower(strings.TrimSpace(req.Provider))
	if !h.registry.Has(name) {
		return jsonError(c, fiber.StatusBadRequest, "unknown provider")
	}

	if err := h.db.SetSetting(c.Context(), ranking.ActiveProviderSetting, name); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to save setting")
	}
	return jsonSuccess(c, fiber.Map{"provider": name})
}

// SetAPIKey stores the API key for a registered provider.
func (h *SettingsHandler) SetAPIKey(c fiber.Ctx) error {
	if _, ok := middleware.CurrentUser(c); !ok {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req struct {
		Provider string `json:"provider"`
		APIKey   string `json:"api_key"`
	}
	if err := c.Bind().Body(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	name := strings.ToLower(strings.TrimSpace(req.Provider))
	if !h.registry.Has(name) {
		return jsonError(c, fiber.StatusBadRequest, "unknown provider")
	}
	if strings.TrimSpace(req.APIKey) == "" {
		return jsonError(c, fiber.StatusBadRequest, "api_key is required")
	}

	if err := h.db.SetSetting(c.Context(), name+"_api_key", req.APIKey); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to save setting")
	}
	return jsonSuccess(c, fiber.Map{"provider": name})
}
