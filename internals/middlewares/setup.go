package middlewares

import (
	"github.com/gofiber/fiber/v2"

	"absensi_backend/internals/middlewares/logger"
)

// SetupMiddlewares: recover → logger → CORS → global limiter
func SetupMiddlewares(app *fiber.App, timezone string) {
	app.Use(RecoveryMiddleware())
	app.Use(logger.LoggerMiddleware(timezone))
	app.Use(CorsMiddleware())
	app.Use(GlobalRateLimiter())
}
