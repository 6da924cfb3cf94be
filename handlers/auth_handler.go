package handlers

import (
	"errors"

	"github.com/fenilmodi00/sahayak-backend/services"
	"github.com/fenilmodi00/sahayak-backend/shared"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	Service *services.AuthService
}

func NewAuthHandler(service *services.AuthService) *AuthHandler {
	return &AuthHandler{Service: service}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in services.RegisterInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	user, err := h.Service.Register(c.UserContext(), in)
	if err != nil {
		if errors.Is(err, shared.ErrConflict) {
			return respondError(c, err, "Email already registered")
		}
		return respondError(c, err, "")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "User registered successfully",
		"data":    user,
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in loginRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	token, err := h.Service.Login(c.UserContext(), in.Email, in.Password)
	if err != nil {
		if errors.Is(err, shared.ErrUnauthorized) {
			return respondError(c, err, "Invalid credentials")
		}
		return respondError(c, err, "")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"access_token": token,
			"token_type":   "bearer",
		},
	})
}

// Me returns the authenticated user. The password hash is never serialized.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Not authenticated",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    user,
	})
}
