package middleware

import (
	"quizforge/internal/config"
	"quizforge/internal/domain"

	"github.com/gofiber/fiber/v2"
)

// SecretHeader carries the shared secret on protected routes.
const SecretHeader = "X-Quiz-Secret"

// SecretGate validates the shared-secret header against the configured
// value. With SecretRequired unset the gate is a no-op regardless of what
// the caller sends; with it set, only a byte-for-byte match passes.
func SecretGate(cfg config.AuthConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !cfg.SecretRequired {
			return c.Next()
		}
		if cfg.SharedSecret == "" {
			return domain.NewMisconfiguredError("auth.shared_secret")
		}
		if c.Get(SecretHeader) != cfg.SharedSecret {
			return domain.NewUnauthorizedError("invalid or missing shared secret")
		}
		return c.Next()
	}
}
