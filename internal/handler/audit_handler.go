package handler

import (
	"github.com/gofiber/fiber/v3"
	"github.com/lexflowhq/lexflow-api/internal/adapter/store"
	"github.com/lexflowhq/lexflow-api/internal/domain"
	"github.com/lexflowhq/lexflow-api/internal/middleware"
)

// AuditHandler exposes the compliance trail to office admins.
type AuditHandler struct {
	store *store.PostgresStore
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(store *store.PostgresStore) *AuditHandler {
	return &AuditHandler{store: store}
}

// Register sets up audit routes on a protected group.
func (h *AuditHandler) Register(api fiber.Router) {
	api.Get("/audit", h.List)
}

// List returns recent audit logs. Admin only.
func (h *AuditHandler) List(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}
	if uc.Role != domain.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "admin only"})
	}

	limit := queryInt(c, "limit", 100)
	action := c.Query("action")

	logs, err := h.store.ListAuditLogs(c.Context(), limit, action)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"logs": logs, "count": len(logs)})
}
