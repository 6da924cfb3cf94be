package handlers

import (
	"strings"

	"github.com/fenilmodi00/sahayak-backend/models"
	"github.com/fenilmodi00/sahayak-backend/services"
	"github.com/gofiber/fiber/v2"
)

const (
	localUser   = "user"
	localUserID = "user_id"
)

// RequireAuth resolves the bearer token to a user and stores it in the request locals
func RequireAuth(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Not authenticated",
			})
		}

		user, err := auth.Authenticate(c.UserContext(), strings.TrimSpace(token))
		if err != nil {
			return respondError(c, err, "Invalid token")
		}

		c.Locals(localUser, user)
		c.Locals(localUserID, user.ID)
		return c.Next()
	}
}

func currentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(localUser).(*models.User)
	return user
}
