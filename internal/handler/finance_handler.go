package handler

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/lexflowhq/lexflow-api/internal/adapter/store"
	"github.com/lexflowhq/lexflow-api/internal/domain"
	"github.com/lexflowhq/lexflow-api/internal/middleware"
)

// FinanceHandler handles income/expense records.
type FinanceHandler struct {
	store *store.PostgresStore
}

// NewFinanceHandler creates a new finance handler.
func NewFinanceHandler(store *store.PostgresStore) *FinanceHandler {
	return &FinanceHandler{store: store}
}

// Register sets up finance routes on a protected group.
func (h *FinanceHandler) Register(api fiber.Router) {
	finance := api.Group("/finance")
	finance.Get("/", h.List)
	finance.Post("/", h.Create)
}

// List returns finance entries, optionally bounded by ?from= and ?to= dates.
func (h *FinanceHandler) List(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	var from, to time.Time
	if v := c.Query("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid from date"})
		}
		from = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid to date"})
		}
		to = t
	}

	entries, err := h.store.ListFinanceEntries(c.Context(), uc.OfficeID, from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"entries": entries, "count": len(entries)})
}

// Create records an income or expense line.
func (h *FinanceHandler) Create(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	var body struct {
		CaseID      *string `json:"case_id"`
		Kind        string  `json:"kind"`
		AmountCents int64   `json:"amount_cents"`
		Description string  `json:"description"`
		EntryDate   string  `json:"entry_date"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	if body.Kind != domain.FinanceIncome && body.Kind != domain.FinanceExpense {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "kind must be income or expense"})
	}
	if body.AmountCents <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "amount_cents must be positive"})
	}

	entryDate := time.Now()
	if body.EntryDate != "" {
		t, err := time.Parse("2006-01-02", body.EntryDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid entry_date"})
		}
		entryDate = t
	}

	created, err := h.store.CreateFinanceEntry(c.Context(), &domain.FinanceEntry{
		OfficeID:    uc.OfficeID,
		CaseID:      body.CaseID,
		Kind:        body.Kind,
		AmountCents: body.AmountCents,
		Description: body.Description,
		EntryDate:   entryDate,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}
