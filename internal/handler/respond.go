package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/lexflowhq/lexflow-api/internal/port"
)

// respondError maps service errors onto the JSON error contract: 401 for
// identity failures, 404 for missing records, 500 for server-side persistence
// failures, 400 for everything else.
func respondError(c fiber.Ctx, err error) error {
	status := fiber.StatusBadRequest
	switch {
	case errors.Is(err, port.ErrUnauthorized):
		status = fiber.StatusUnauthorized
	case errors.Is(err, port.ErrNotFound), errors.Is(err, port.ErrEventNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, port.ErrDatabase):
		status = fiber.StatusInternalServerError
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// queryInt reads an integer query param with a default value.
func queryInt(c fiber.Ctx, key string, defaultVal int) int {
	v := c.Query(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return n
}
