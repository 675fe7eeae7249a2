package handler

import (
	"github.com/gofiber/fiber/v3"
	"github.com/lexflowhq/lexflow-api/internal/middleware"
	"github.com/lexflowhq/lexflow-api/internal/service"
)

// InviteHandler exposes invite issuance (protected) and acceptance (public).
type InviteHandler struct {
	inviteService *service.InviteService
}

// NewInviteHandler creates a new invite handler.
func NewInviteHandler(inviteService *service.InviteService) *InviteHandler {
	return &InviteHandler{inviteService: inviteService}
}

// Register sets up the protected invite routes.
func (h *InviteHandler) Register(api fiber.Router) {
	api.Post("/invites", h.Send)
}

// RegisterPublic sets up acceptance, reachable without a bearer token.
func (h *InviteHandler) RegisterPublic(app *fiber.App) {
	app.Post("/api/v1/invites/accept", h.Accept)
}

// Send issues an invite on behalf of the authenticated user.
func (h *InviteHandler) Send(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	var body struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := c.Bind().JSON(&body); err != nil || body.Email == "" || body.Role == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "email and role are required"})
	}

	invite, err := h.inviteService.Send(c.Context(), uc, body.Email, body.Role)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "invite sent",
		"invite":  invite,
	})
}

// Accept consumes an invite token and creates the account.
func (h *InviteHandler) Accept(c fiber.Ctx) error {
	var body struct {
		Token    string `json:"token"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
	}
	if err := c.Bind().JSON(&body); err != nil || body.Token == "" || body.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "token and password are required"})
	}

	user, err := h.inviteService.Accept(c.Context(), body.Token, body.Password, body.FullName)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "user_id": user.ID})
}
