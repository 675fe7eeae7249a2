package handler

import (
	"github.com/gofiber/fiber/v3"
	"github.com/lexflowhq/lexflow-api/internal/adapter/store"
	"github.com/lexflowhq/lexflow-api/internal/domain"
	"github.com/lexflowhq/lexflow-api/internal/middleware"
)

// ClientHandler handles client contact records.
type ClientHandler struct {
	store *store.PostgresStore
}

// NewClientHandler creates a new client handler.
func NewClientHandler(store *store.PostgresStore) *ClientHandler {
	return &ClientHandler{store: store}
}

// Register sets up client routes on a protected group.
func (h *ClientHandler) Register(api fiber.Router) {
	clients := api.Group("/clients")
	clients.Get("/", h.List)
	clients.Post("/", h.Create)
}

// List returns all clients of the office.
func (h *ClientHandler) List(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	clients, err := h.store.ListClients(c.Context(), uc.OfficeID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"clients": clients, "count": len(clients)})
}

// Create adds a client record.
func (h *ClientHandler) Create(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	var body struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
		Notes string `json:"notes"`
	}
	if err := c.Bind().JSON(&body); err != nil || body.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}

	created, err := h.store.CreateClient(c.Context(), &domain.Client{
		OfficeID: uc.OfficeID,
		Name:     body.Name,
		Email:    body.Email,
		Phone:    body.Phone,
		Notes:    body.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}
