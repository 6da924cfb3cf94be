package handlers

import (
	"time"

	"github.com/fenilmodi00/sahayak-backend/services"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type SchemeHandler struct {
	Schemes   services.SchemeRepository
	Ingestion *services.IngestionService
}

func NewSchemeHandler(schemes services.SchemeRepository, ingestion *services.IngestionService) *SchemeHandler {
	return &SchemeHandler{
		Schemes:   schemes,
		Ingestion: ingestion,
	}
}

func (h *SchemeHandler) ListSchemes(c *fiber.Ctx) error {
	schemes, err := h.Schemes.ListSchemes(c.UserContext(), services.MaxSchemeListLimit)
	if err != nil {
		return respondError(c, err, "")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    schemes,
	})
}

func (h *SchemeHandler) GetScheme(c *fiber.Ctx) error {
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
		"data":    scheme,
	})
}

// FetchSchemes runs one ingestion synchronously and returns its summary
func (h *SchemeHandler) FetchSchemes(c *fiber.Ctx) error {
	logrus.Info("Manual scheme ingestion triggered via API")
	startTime := time.Now()

	summary, err := h.Ingestion.RunIngestion(c.UserContext())
	if err != nil {
		return respondError(c, err, "Failed to fetch schemes")
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"message":  "Schemes fetched and stored successfully",
		"data":     summary,
		"duration": time.Since(startTime).String(),
	})
}
