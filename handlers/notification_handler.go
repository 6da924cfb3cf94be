package handlers

import (
	"github.com/fenilmodi00/sahayak-backend/services"
	"github.com/gofiber/fiber/v2"
)

// NotificationListLimit caps how many notifications one request returns
const NotificationListLimit = 100

type NotificationHandler struct {
	Service services.NotificationRepository
}

func NewNotificationHandler(service services.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{Service: service}
}

func (h *NotificationHandler) ListByUser(c *fiber.Ctx) error {
	notifications, err := h.Service.ListNotificationsByUser(c.UserContext(), c.Params("user_id"), NotificationListLimit)
	if err != nil {
		return respondError(c, err, "")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    notifications,
	})
}
