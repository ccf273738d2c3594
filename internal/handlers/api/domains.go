package api

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"serptrack/internal/db"
	"serptrack/internal/middleware"
	"serptrack/internal/models"
	"serptrack/internal/validation"
)

// DomainHandler handles tracked-domain CRUD.
type DomainHandler struct {
	db *db.DB
}

// NewDomainHandler creates a new domain handler.
func NewDomainHandler(database *db.DB) *DomainHandler {
	return &DomainHandler{db: database}
}

// Create registers a new tracked domain. The URL is immutable afterwards;
// changing it means delete and recreate.
func (h *DomainHandler) Create(c fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req struct {
		URL string `json:"url"`
	}
	if err := c.Bind().Body(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if valid, msg := validation.ValidateDomainURL(req.URL); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	domain := &models.Domain{UserID: user.ID, URL: req.URL}
	if err := h.db.CreateDomain(c.Context(), domain); err != nil {
		if errors.Is(err, db.ErrDuplicateDomain) {
			return jsonError(c, fiber.StatusConflict, "domain already tracked")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to create domain")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "ok", "data": domain})
}

// List returns the caller's domains.
func (h *DomainHandler) List(c fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	domains, err := h.db.ListDomainsByUser(c.Context(), user.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to list domains")
	}
	return jsonSuccess(c, domains)
}

// SetActive toggles whether a domain (and therefore all its keywords)
// participates in scheduled checks.
func (h *DomainHandler) SetActive(c fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	domainID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid domain id")
	}

	var req struct {
		IsActive *bool `json:"is_active"`
	}
	if err := c.Bind().Body(&req); err != nil || req.IsActive == nil {
		return jsonError(c, fiber.StatusBadRequest, "is_active is required")
	}

	if err := h.db.SetDomainActive(c.Context(), domainID, user.ID, *req.IsActive); err != nil {
		if errors.Is(err, db.ErrDomainNotFound) {
			return jsonError(c, fiber.StatusNotFound, "domain not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to update domain")
	}
	return jsonSuccess(c, fiber.Map{"id": domainID, "is_active": *req.IsActive})
}

// Delete removes a domain; keywords and their history cascade away.
func (h *DomainHandler) Delete(c fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	domainID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid domain id")
	}

	if err := h.db.DeleteDomain(c.Context(), domainID, user.ID); err != nil {
		if errors.Is(err, db.ErrDomainNotFound) {
			return jsonError(c, fiber.StatusNotFound, "domain not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to delete domain")
	}
	return jsonSuccess(c, fiber.Map{"deleted": domainID})
}
