package handler

import (
	"github.com/gofiber/fiber/v3"
	"github.com/lexflowhq/lexflow-api/internal/adapter/store"
	"github.com/lexflowhq/lexflow-api/internal/middleware"
)

// DashboardHandler serves the office overview aggregates.
type DashboardHandler struct {
	store *store.PostgresStore
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(store *store.PostgresStore) *DashboardHandler {
	return &DashboardHandler{store: store}
}

// Register sets up dashboard routes on a protected group.
func (h *DashboardHandler) Register(api fiber.Router) {
	api.Get("/dashboard/summary", h.Summary)
}

// Summary returns workload counts and the current month's money flow.
func (h *DashboardHandler) Summary(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	summary, err := h.store.GetDashboardSummary(c.Context(), uc.OfficeID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}
