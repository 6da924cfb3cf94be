package handlers

import (
	"database/sql"

	"github.com/fenilmodi00/sahayak-backend/services"
	"github.com/fenilmodi00/sahayak-backend/shared"
	"github.com/gofiber/fiber/v2"
)

type MetricsHandler struct {
	DB       *sql.DB
	Registry *shared.MetricsRegistry
	Cache    *services.SchemeCache
}

func NewMetricsHandler(db *sql.DB, registry *shared.MetricsRegistry, cache *services.SchemeCache) *MetricsHandler {
	return &MetricsHandler{
		DB:       db,
		Registry: registry,
		Cache:    cache,
	}
}

// GetMetrics returns service counters, cache state and connection pool stats
func (h *MetricsHandler) GetMetrics(c *fiber.Ctx) error {
	metrics := h.Registry.Snapshot()
	metrics["scheme_cache"] = h.Cache.Stats()

	if h.DB != nil {
		dbStats := h.DB.Stats()
		metrics["database_stats"] = map[string]interface{}{
			"open_connections":    dbStats.OpenConnections,
			"in_use":              dbStats.InUse,
			"idle":                dbStats.Idle,
			"wait_count":          dbStats.WaitCount,
			"wait_duration_ms":    dbStats.WaitDuration.Milliseconds(),
			"max_idle_closed":     dbStats.MaxIdleClosed,
			"max_lifetime_closed": dbStats.MaxLifetimeClosed,
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    metrics,
	})
}
