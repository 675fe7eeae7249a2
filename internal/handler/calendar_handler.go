package handler

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/lexflowhq/lexflow-api/internal/middleware"
	"github.com/lexflowhq/lexflow-api/internal/service"
)

// CalendarHandler exposes the calendar integration gateway: handshake,
// redirect callback, and the event operation proxy.
type CalendarHandler struct {
	calendarService *service.CalendarService
	frontendURL     string
}

// NewCalendarHandler creates a new calendar handler.
func NewCalendarHandler(calendarService *service.CalendarService, frontendURL string) *CalendarHandler {
	return &CalendarHandler{calendarService: calendarService, frontendURL: frontendURL}
}

// Register sets up the protected calendar routes.
func (h *CalendarHandler) Register(api fiber.Router) {
	cal := api.Group("/calendar")
	cal.Get("/url", h.AuthURL)
	cal.Post("/exchange", h.Exchange)
	cal.Get("/events", h.ListEvents)
	cal.Post("/events", h.CreateEvent)
	cal.Delete("/events", h.DeleteEvent)
}

// RegisterPublic sets up the OAuth redirect callback, which arrives from the
// provider without a bearer token; identity comes from the signed state.
func (h *CalendarHandler) RegisterPublic(app *fiber.App) {
	app.Get("/calendar/callback", h.Callback)
}

// AuthURL returns the provider consent URL for the current user.
func (h *CalendarHandler) AuthURL(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	redirectTo := c.Query("redirect_to", h.frontendURL+"/settings/calendar")

	url, err := h.calendarService.AuthURL(uc.UserID, redirectTo)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"url": url})
}

// Exchange performs the caller-initiated handshake with an authorization code.
func (h *CalendarHandler) Exchange(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	var body struct {
		Code string `json:"code"`
	}
	if err := c.Bind().JSON(&body); err != nil || body.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing authorization code"})
	}

	rec, err := h.calendarService.Connect(c.Context(), uc.UserID, body.Code)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "email": rec.ConnectedEmail})
}

// Callback completes the redirect-based handshake and sends the browser back
// to the target embedded in the signed state.
func (h *CalendarHandler) Callback(c fiber.Ctx) error {
	code := c.Query("code")
	state := c.Query("state")

	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing authorization code"})
	}

	redirectTo, err := h.calendarService.CompleteRedirect(c.Context(), code, state)
	if err != nil {
		return respondError(c, err)
	}

	return c.Redirect().To(redirectTo + "?calendar=connected")
}

// ListEvents proxies the event list. timeMin defaults upstream to now.
func (h *CalendarHandler) ListEvents(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	var timeMin, timeMax time.Time
	if v := c.Query("timeMin"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid timeMin"})
		}
		timeMin = t
	}
	if v := c.Query("timeMax"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid timeMax"})
		}
		timeMax = t
	}

	body, err := h.calendarService.ListEvents(c.Context(), uc.UserID, timeMin, timeMax)
	if err != nil {
		return respondError(c, err)
	}

	c.Set("Content-Type", "application/json")
	return c.Send(body)
}

// CreateEvent relays the event payload to the provider.
func (h *CalendarHandler) CreateEvent(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	body, err := h.calendarService.CreateEvent(c.Context(), uc.UserID, c.Body())
	if err != nil {
		return respondError(c, err)
	}

	c.Set("Content-Type", "application/json")
	return c.Send(body)
}

// DeleteEvent removes an event identified by the x-event-id header.
func (h *CalendarHandler) DeleteEvent(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	eventID := c.Get("x-event-id")
	if eventID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing x-event-id header"})
	}

	if err := h.calendarService.DeleteEvent(c.Context(), uc.UserID, eventID); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}
