package handlers

import (
	"strings"

	"github.com/fenilmodi00/sahayak-backend/services"
	"github.com/gofiber/fiber/v2"
)

type ChatHandler struct {
	Service      *services.ChatService
	Schemes      services.SchemeRepository
	Explanations *services.ExplanationService
}

func NewChatHandler(chat *services.ChatService, schemes services.SchemeRepository, explanations *services.ExplanationService) *ChatHandler {
	return &ChatHandler{
		Service:      chat,
		Schemes:      schemes,
		Explanations: explanations,
	}
}

type chatRequest struct {
	Message string `json:"message"`
}

func parseChatMessage(c *fiber.Ctx) (string, bool) {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return "", false
	}
	message := strings.TrimSpace(req.Message)
	return message, message != ""
}

// Chat answers an authenticated user and records the exchange in their history
func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	message, ok := parseChatMessage(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Message is required",
		})
	}

	userID, _ := c.Locals(localUserID).(string)
	response := h.Service.AskAsUser(c.UserContext(), userID, message)

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"response": response},
	})
}

func (h *ChatHandler) PublicChat(c *fiber.Ctx) error {
	message, ok := parseChatMessage(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Message is required",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"response": h.Service.Ask(c.UserContext(), message)},
	})
}

func (h *ChatHandler) SchemeInfo(c *fiber.Ctx) error {
	scheme, err := h.Schemes.GetSchemeByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "")
	}
	if scheme == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Scheme not found",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"explanation": h.Explanations.Explain(c.UserContext(), scheme)},
	})
}
