package handler

import (
	"github.com/gofiber/fiber/v3"
	"github.com/lexflowhq/lexflow-api/internal/adapter/store"
	"github.com/lexflowhq/lexflow-api/internal/domain"
	"github.com/lexflowhq/lexflow-api/internal/middleware"
)

// CaseHandler handles case tracking CRUD, scoped to the caller's office.
type CaseHandler struct {
	store *store.PostgresStore
}

// NewCaseHandler creates a new case handler.
func NewCaseHandler(store *store.PostgresStore) *CaseHandler {
	return &CaseHandler{store: store}
}

// Register sets up case routes on a protected group.
func (h *CaseHandler) Register(api fiber.Router) {
	cases := api.Group("/cases")
	cases.Get("/", h.List)
	cases.Post("/", h.Create)
	cases.Get("/:id", h.Get)
	cases.Put("/:id/status", h.UpdateStatus)
}

// List returns the office's cases, optionally filtered by ?status=.
func (h *CaseHandler) List(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	cases, err := h.store.ListCases(c.Context(), uc.OfficeID, c.Query("status"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"cases": cases, "count": len(cases)})
}

// Create opens a new case.
func (h *CaseHandler) Create(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	var body struct {
		ClientID    string `json:"client_id"`
		Number      string `json:"number"`
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := c.Bind().JSON(&body); err != nil || body.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "title is required"})
	}

	created, err := h.store.CreateCase(c.Context(), &domain.Case{
		OfficeID:    uc.OfficeID,
		ClientID:    body.ClientID,
		Number:      body.Number,
		Title:       body.Title,
		Description: body.Description,
		Status:      domain.CaseOpen,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// Get returns one case.
func (h *CaseHandler) Get(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	found, err := h.store.GetCase(c.Context(), uc.OfficeID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(found)
}

// UpdateStatus moves a case between open/closed/archived.
func (h *CaseHandler) UpdateStatus(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	switch body.Status {
	case domain.CaseOpen, domain.CaseClosed, domain.CaseArchived:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid status"})
	}

	if err := h.store.UpdateCaseStatus(c.Context(), uc.OfficeID, c.Params("id"), body.Status); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}
