package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Health Check Handlers
// ============================================================

// Checker reports whether a dependency is ready.
type Checker interface {
	Check(ctx context.Context) error
}

// LivenessProbe reports that the process is serving.
func LivenessProbe(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "alive",
	})
}

// ReadinessProbe reports ready once every upstream answers its own probe.
func ReadinessProbe(upstreams map[string]Checker) fiber.Handler {
	return func(c fiber.Ctx) error {
		failed := fiber.Map{}
		for name, u := range upstreams {
			if err := u.Check(c.Context()); err != nil {
				failed[name] = err.Error()
			}
		}
		if len(failed) > 0 {
			return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
				"status":    "unavailable",
				"upstreams": failed,
			})
		}
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	}
}
