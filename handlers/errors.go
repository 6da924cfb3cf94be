package handlers

import (
	"github.com/fenilmodi00/sahayak-backend/shared"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// internalErrorMessage replaces the error text of 5xx responses that carry no explicit message
const internalErrorMessage = "Internal server error"

// respondError writes the standard failure body. message overrides err's text when set.
func respondError(c *fiber.Ctx, err error, message string) error {
	status := shared.HTTPStatusFor(err)
	if message == "" {
		message = err.Error()
		if status >= fiber.StatusInternalServerError {
			message = internalErrorMessage
		}
	}

	if status >= fiber.StatusInternalServerError {
		logrus.WithFields(logrus.Fields{
			"component": "handlers",
			"path":      c.Path(),
			"method":    c.Method(),
		}).WithError(err).Error("Request failed")
	}

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}
