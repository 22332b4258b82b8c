package middleware

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

// ============================================================
// Logger Middleware
// ============================================================

// Logger logs one line per request with the export id when one was issued.
func Logger() fiber.Handler {
	return logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path} | ${respHeader:Content-Type} ${respHeader:X-Export-Id}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	})
}
