package handlers

import (
	"github.com/fenilmodi00/sahayak-backend/services"
	"github.com/gofiber/fiber/v2"
)

type CacheHandler struct {
	Cache *services.SchemeCache
}

func NewCacheHandler(cache *services.SchemeCache) *CacheHandler {
	return &CacheHandler{Cache: cache}
}

func (h *CacheHandler) GetStats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    h.Cache.Stats(),
	})
}

func (h *CacheHandler) Clear(c *fiber.Ctx) error {
	h.Cache.Clear()
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Scheme cache cleared",
	})
}
