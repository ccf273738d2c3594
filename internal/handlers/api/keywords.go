package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"serptrack/internal/db"
	"serptrack/internal/middleware"
	"serptrack/internal/models"
	"serptrack/internal/ranking"
	"serptrack/internal/validation"
)

// KeywordHandler handles keyword CRUD and keyword-scoped check operations.
type KeywordHandler struct {
	db  *db.DB
	svc *ranking.Service
}

// NewKeywordHandler creates a new keyword handler.
func NewKeywordHandler(database *db.DB, svc *ranking.Service) *KeywordHandler {
	return &KeywordHandler{db: database, svc: svc}
}

type keywordRequest struct {
	DomainID uuid.UUID `json:"domain_id"`
	Text     string    `json:"text"`
	Location string    `json:"location"`
	Device   string    `json:"device"`
	IsActive *bool     `json:"is_active"`
	Tags     []string  `json:"tags"`
}

// Create registers a new tracked keyword under one of the caller's domains.
func (h *KeywordHandler) Create(c fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req keywordRequest
	if err := c.Bind().Body(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.Location == "" {
		req.Location = "us"
	}
	if req.Device == "" {
		req.Device = models.DeviceDesktop
	}

	if valid, msg := validation.ValidateKeywordText(req.Text); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}
	if valid, msg := validation.ValidateDevice(req.Device); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}
	if valid, msg := validation.ValidateLocation(req.Location); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	domain, err := h.db.GetDomainByID(c.Context(), req.DomainID)
	if err != nil || domain.UserID != user.ID {
		return jsonError(c, fiber.StatusNotFound, "domain not found")
	}

	kw := &models.Keyword{
		DomainID: domain.ID,
		UserID:   user.ID,
		Text:     req.Text,
		Location: validation.NormalizeLocation(req.Location),
		Device:   req.Device,
		Tags:     req.Tags,
	}
	if kw.Tags == nil {
		kw.Tags = []string{}
	}
	if err := h.db.CreateKeyword(c.Context(), kw); err != nil {
		if errors.Is(err, db.ErrDuplicateKeyword) {
			return jsonError(c, fiber.StatusConflict, "keyword already tracked for this domain")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to create keyword")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "ok", "data": kw})
}

// List returns the caller's keywords.
func (h *KeywordHandler) List(c fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	keywords, err := h.db.ListKeywordsByUser(c.Context(), user.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to list keywords")
	}
	return jsonSuccess(c, keywords)
}

// Get returns one keyword.
func (h *KeywordHandler) Get(c fiber.Ctx) error {
	_, kw, ok := h.ownedKeyword(c)
	if !ok {
		return nil
	}
	return jsonSuccess(c, kw)
}

// Update edits a keyword's mutable fields (text, location, device, active
// flag, tags).
func (h *KeywordHandler) Update(c fiber.Ctx) error {
	_, kw, ok := h.ownedKeyword(c)
	if !ok {
		return nil
	}

	var req keywordRequest
	if err := c.Bind().Body(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if req.Text != "" {
		if valid, msg := validation.ValidateKeywordText(req.Text); !valid {
			return jsonError(c, fiber.StatusBadRequest, msg)
		}
		kw.Text = req.Text
	}
	if req.Location != "" {
		if valid, msg := validation.ValidateLocation(req.Location); !valid {
			return jsonError(c, fiber.StatusBadRequest, msg)
		}
		kw.Location = validation.NormalizeLocation(req.Location)
	}
	if req.Device != "" {
		if valid, msg := validation.ValidateDevice(req.Device); !valid {
			return jsonError(c, fiber.StatusBadRequest, msg)
		}
		kw.Device = req.Device
	}
	if req.IsActive != nil {
		kw.IsActive = *req.IsActive
	}
	if req.Tags != nil {
		kw.Tags = req.Tags
	}

	if err := h.db.UpdateKeyword(c.Context(), kw); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to update keyword")
	}
	return jsonSuccess(c, kw)
}

// Delete removes a keyword; its history and notifications cascade away.
func (h *KeywordHandler) Delete(c fiber.Ctx) error {
	user, kw, ok := h.ownedKeyword(c)
	if !ok {
		return nil
	}

	if err := h.db.DeleteKeyword(c.Context(), kw.ID, user.ID); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to delete keyword")
	}
	return jsonSuccess(c, fiber.Map{"deleted": kw.ID})
}

// Check runs a single on-demand ranking check and persists one history row.
// Provider failures surface as failures; they are never presented as a "not
// found" ranking.
func (h *KeywordHandler) Check(c fiber.Ctx) error {
	_, kw, ok := h.ownedKeyword(c)
	if !ok {
		return nil
	}

	domain, err := h.db.GetDomainByID(c.Context(), kw.DomainID)
	if err != nil {
		return jsonError(c, fiber.StatusNotFound, "domain not found")
	}

	pair := models.KeywordWithDomain{Keyword: *kw, Domain: *domain}
	rankingRow, err := h.svc.CheckKeyword(c.Context(), pair)
	if err != nil {
		return providerError(c, err)
	}
	return jsonSuccess(c, rankingRow)
}

// Rankings returns a keyword's history, default last 90 days.
func (h *KeywordHandler) Rankings(c fiber.Ctx) error {
	_, kw, ok := h.ownedKeyword(c)
	if !ok {
		return nil
	}

	days := fiber.Query(c, "days", 90)
	if days < 1 {
		days = 90
	}
	since := time.Now().AddDate(0, 0, -days)

	history, err := h.db.GetRankingHistory(c.Context(), kw.ID, since)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to load ranking history")
	}
	return jsonSuccess(c, history)
}

// Serp returns the full organic result list for a keyword, for UI preview.
func (h *KeywordHandler) Serp(c fiber.Ctx) error {
	_, kw, ok := h.ownedKeyword(c)
	if !ok {
		return nil
	}

	domain, err := h.db.GetDomainByID(c.Context(), kw.DomainID)
	if err != nil {
		return jsonError(c, fiber.StatusNotFound, "domain not found")
	}

	results, err := h.svc.SearchResults(c.Context(), models.KeywordWithDomain{Keyword: *kw, Domain: *domain})
	if err != nil {
		return providerError(c, err)
	}
	return jsonSuccess(c, results)
}

// ownedKeyword loads the path keyword and enforces ownership. When ok is
// false the error response has already been written.
func (h *KeywordHandler) ownedKeyword(c fiber.Ctx) (*models.User, *models.Keyword, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		jsonError(c, fiber.StatusUnauthorized, "unauthorized")
		return nil, nil, false
	}

	keywordID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		jsonError(c, fiber.StatusBadRequest, "invalid keyword id")
		return nil, nil, false
	}

	kw, err := h.db.GetKeywordByID(c.Context(), keywordID)
	if err != nil || kw.UserID != user.ID {
		jsonError(c, fiber.StatusNotFound, "keyword not found")
		return nil, nil, false
	}
	return user, kw, true
}
