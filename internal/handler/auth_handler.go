package handler

import (
	"github.com/gofiber/fiber/v3"
	"github.com/lexflowhq/lexflow-api/internal/service"
)

// AuthHandler handles login for invited accounts.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register sets up the public auth routes.
func (h *AuthHandler) Register(app *fiber.App) {
	app.Post("/api/v1/auth/login", h.Login)
}

// Login verifies credentials and returns a JWT with the user profile.
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind().JSON(&body); err != nil || body.Email == "" || body.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "email and password are required"})
	}

	jwt, user, err := h.authService.Login(c.Context(), body.Email, body.Password)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"token": jwt, "user": user})
}
