package logger

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

// LoggerMiddleware: satu baris per request, jam di zona aplikasi.
// /health & /metrics di-skip supaya health check tidak membanjiri log.
func LoggerMiddleware(timezone string) fiber.Handler {
	if timezone == "" {
		timezone = "America/Lima"
	}
	return logger.New(logger.Config{
		Next: func(c *fiber.Ctx) bool {
			p := c.Path()
			return p == "/health" || p == "/metrics"
		},
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   timezone,
		Format:     "[${time}] ${respHeader:X-Request-ID} ${ip} - ${method} ${path} - ${status} - ${latency} ${locals:user_name}\n",
	})
}
