package handlers

import (
	"github.com/gofiber/fiber/v2"

	"shop/internal/apperr"
)

// statusForError maps the service error taxonomy onto HTTP statuses.
// Validation problems are the caller's fault, missing references are 404,
// and business-rule conflicts (stock, inactive products, lifecycle) are 409.
func statusForError(err error) int {
	switch apperr.KindOf(err) {
	case apperr.Validation, apperr.EmptyOrder:
		return fiber.StatusBadRequest
	case apperr.NotFound:
		return fiber.StatusNotFound
	case apperr.InsufficientStock, apperr.ProductInactive, apperr.IllegalTransition:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func errorResponse(c *fiber.Ctx, err error, message string) error {
	return c.Status(statusForError(err)).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

func parseIDParam(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, apperr.New(apperr.Validation, "ID must be a positive integer")
	}
	return uint(id), nil
}
