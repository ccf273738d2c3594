package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"serptrack/internal/config"
	"serptrack/internal/db"
	"serptrack/internal/models"
)

// AuthMiddleware resolves the caller identity from a trusted header set by
// the authenticating proxy in front of this service.
type AuthMiddleware struct {
	db     *db.DB
	header string
}

// NewAuthMiddleware creates a new auth middleware instance.
func NewAuthMiddleware(database *db.DB, cfg *config.Config) *AuthMiddleware {
	return &AuthMiddleware{db: database, header: cfg.UserIDHeader}
}

// RequireUser loads the user named by the identity header and stores it in
// request locals. Requests without a resolvable user are rejected.
func (m *AuthMiddleware) RequireUser(c fiber.Ctx) error {
	raw := c.Get(m.header)
	if raw == "" {
		return unauthorized(c, "authentication required")
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		return unauthorized(c, "invalid user identity")
	}

	user, err := m.db.GetUserByID(c.Context(), userID)
	if errors.Is(err, db.ErrUserNotFound) {
		// First request from this identity. The proxy already vouched for
		// it, so provision the local reference row.
		user = &models.User{
			ID:    userID,
			Email: c.Get("X-User-Email"),
			Name:  c.Get("X-User-Name"),
		}
		err = m.db.UpsertUser(c.Context(), user)
	}
	if err != nil {
		return unauthorized(c, "unknown user")
	}

	c.Locals("user", user)
	return c.Next()
}

// CurrentUser returns the user placed in locals by RequireUser.
func CurrentUser(c fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals("user").(*models.User)
	return user, ok
}

func unauthorized(c fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"status": "error",
		"error":  message,
	})
}
