package http

import (
	"context"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthCheck verifica una dependencia externa (PostgreSQL, Redis).
type HealthCheck func(ctx context.Context) error

// Health responde 200 si todos los checks pasan y 503 "degraded" si alguno falla.
// Cada check corre con un timeout de 2s.
func Health(service string, checks map[string]HealthCheck) fiber.Handler {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(c *fiber.Ctx) error {
		status, code := "ok", fiber.StatusOK
		results := make(fiber.Map, len(names))
		for _, name := range names {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			err := checks[name](ctx)
			cancel()
			if err != nil {
				results[name] = "error"
				status, code = "degraded", fiber.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}
		return c.Status(code).JSON(fiber.Map{"status": status, "service": service, "checks": results})
	}
}
