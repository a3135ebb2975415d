package httpapi

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"github.com/roach88/potwager/internal/wager"
)

const (
	headerAPIKey   = "X-API-Key"
	headerIdentity = "X-Wager-Identity"
	localsIdentity = "identity"
)

// APIKeyGuard rejects requests whose X-API-Key matches none of keys.
// With no keys configured every request passes.
func APIKeyGuard(keys []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if len(keys) == 0 {
			return c.Next()
		}
		got := []byte(c.Get(headerAPIKey))
		for _, k := range keys {
			if subtle.ConstantTimeCompare(got, []byte(k)) == 1 {
				return c.Next()
			}
		}
		return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "invalid api key")
	}
}

// IdentityFromHeader stores the caller identity asserted by the
// authenticated client. Absent identities are left for the engine to reject.
func IdentityFromHeader() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(localsIdentity, wager.NewIdentity(c.Get(headerIdentity)))
		return c.Next()
	}
}

func identity(c *fiber.Ctx) wager.Identity {
	id, _ := c.Locals(localsIdentity).(wager.Identity)
	return id
}
