package handler

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/lexflowhq/lexflow-api/internal/adapter/store"
	"github.com/lexflowhq/lexflow-api/internal/domain"
	"github.com/lexflowhq/lexflow-api/internal/middleware"
)

// DeadlineHandler handles case deadlines.
type DeadlineHandler struct {
	store *store.PostgresStore
}

// NewDeadlineHandler creates a new deadline handler.
func NewDeadlineHandler(store *store.PostgresStore) *DeadlineHandler {
	return &DeadlineHandler{store: store}
}

// Register sets up deadline routes on a protected group.
func (h *DeadlineHandler) Register(api fiber.Router) {
	deadlines := api.Group("/deadlines")
	deadlines.Get("/", h.ListUpcoming)
	deadlines.Post("/", h.Create)
	deadlines.Put("/:id/done", h.MarkDone)
}

// ListUpcoming returns undone deadlines, soonest first.
func (h *DeadlineHandler) ListUpcoming(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	limit := queryInt(c, "limit", 50)
	deadlines, err := h.store.ListUpcomingDeadlines(c.Context(), uc.OfficeID, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"deadlines": deadlines, "count": len(deadlines)})
}

// Create adds a deadline to a case.
func (h *DeadlineHandler) Create(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	var body struct {
		CaseID string `json:"case_id"`
		Title  string `json:"title"`
		DueAt  string `json:"due_at"`
	}
	if err := c.Bind().JSON(&body); err != nil || body.Title == "" || body.DueAt == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "title and due_at are required"})
	}

	dueAt, err := time.Parse(time.RFC3339, body.DueAt)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid due_at"})
	}

	created, err := h.store.CreateDeadline(c.Context(), &domain.Deadline{
		OfficeID: uc.OfficeID,
		CaseID:   body.CaseID,
		Title:    body.Title,
		DueAt:    dueAt,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// MarkDone flags a deadline as handled.
func (h *DeadlineHandler) MarkDone(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	if err := h.store.MarkDeadlineDone(c.Context(), uc.OfficeID, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}
