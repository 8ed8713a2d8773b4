package http

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/audit-portal-api/pkg/jwt"
)

// HeaderAdminKey cabecera con la clave de administración de AUTH_ADMIN_KEY.
const HeaderAdminKey = "X-Admin-Key"

// RequireAdmin deja pasar con la clave de administración o con una sesión admin=true.
// Con adminKey vacío solo vale la sesión.
func RequireAdmin(verifier TokenVerifier, adminKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if adminKey != "" {
			if got := c.Get(HeaderAdminKey); got != "" &&
				subtle.ConstantTimeCompare([]byte(got), []byte(adminKey)) == 1 {
				return c.Next()
			}
		}
		if p, err := bearerPrincipal(c, verifier); err == nil {
			if s, ok := jwt.FullSession(p); ok && s.Admin {
				c.Locals(LocalPrincipal, p)
				return c.Next()
			}
		}
		return abort(c, fiber.StatusForbidden, "FORBIDDEN", "se requiere administrador", nil)
	}
}
