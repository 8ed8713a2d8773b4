package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/audit-portal-api/pkg/jwt"
)

// LocalPrincipal clave de Fiber locals donde queda el jwt.Principal verificado.
const LocalPrincipal = "principal"

// TokenVerifier lo implementa *jwt.Issuer.
type TokenVerifier interface {
	Verify(token string) (jwt.Principal, error)
}

var (
	errMissingToken  = errors.New("falta el bearer token")
	errMalformedAuth = errors.New("formato: Bearer <token>")
)

// bearerPrincipal extrae y verifica el token. Cualquier fallo es 401.
func bearerPrincipal(c *fiber.Ctx, verifier TokenVerifier) (jwt.Principal, error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return nil, errMissingToken
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, errMalformedAuth
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return nil, errMissingToken
	}
	return verifier.Verify(token)
}

func unauthorized(c *fiber.Ctx, err error) error {
	code := "INVALID_TOKEN"
	msg := "token inválido o expirado"
	switch {
	case errors.Is(err, errMissingToken):
		code, msg = "MISSING_TOKEN", "Authorization header requerido"
	case errors.Is(err, errMalformedAuth):
		msg = errMalformedAuth.Error()
	}
	return abort(c, fiber.StatusUnauthorized, code, msg, err)
}

// AuthMiddleware exige una sesión completa (con o sin empresa/proyecto).
// Un token de cambio de contraseña se rechaza con 403 PASSWORD_CHANGE_REQUIRED.
func AuthMiddleware(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := bearerPrincipal(c, verifier)
		if err != nil {
			return unauthorized(c, err)
		}
		if _, ok := jwt.FullSession(p); !ok {
			return abort(c, fiber.StatusForbidden, "PASSWORD_CHANGE_REQUIRED",
				"debe cambiar la contraseña antes de continuar", nil)
		}
		c.Locals(LocalPrincipal, p)
		return c.Next()
	}
}

// PasswordChangeMiddleware es el único gate que acepta el token de cambio de contraseña;
// cualquier otro perfil recibe 403.
func PasswordChangeMiddleware(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := bearerPrincipal(c, verifier)
		if err != nil {
			return unauthorized(c, err)
		}
		if _, ok := p.(jwt.PasswordChange); !ok {
			return abort(c, fiber.StatusForbidden, "FORBIDDEN",
				"este endpoint requiere el token de cambio de contraseña", nil)
		}
		c.Locals(LocalPrincipal, p)
		return c.Next()
	}
}

// RequireCompany debe ir después de AuthMiddleware; 400 si no hay empresa seleccionada.
func RequireCompany() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetCompanyID(c) == "" {
			return abort(c, fiber.StatusBadRequest, "COMPANY_NOT_SELECTED", "seleccione una empresa", nil)
		}
		return c.Next()
	}
}

// RequireProject debe ir después de AuthMiddleware; 400 si no hay proyecto seleccionado.
func RequireProject() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetProjectID(c) == "" {
			return abort(c, fiber.StatusBadRequest, "PROJECT_NOT_SELECTED", "seleccione un proyecto", nil)
		}
		return c.Next()
	}
}

// GetPrincipal devuelve el perfil verificado, o nil fuera de los gates.
func GetPrincipal(c *fiber.Ctx) jwt.Principal {
	p, _ := c.Locals(LocalPrincipal).(jwt.Principal)
	return p
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	if p := GetPrincipal(c); p != nil {
		return p.Subject()
	}
	return ""
}

// GetCompanyID devuelve la empresa seleccionada, o "".
func GetCompanyID(c *fiber.Ctx) string {
	cs, _ := jwt.Company(GetPrincipal(c))
	return cs.CompanyID
}

// GetProjectID devuelve el proyecto seleccionado, o "".
func GetProjectID(c *fiber.Ctx) string {
	ps, _ := GetPrincipal(c).(jwt.ProjectSession)
	return ps.ProjectID
}

// GetRole rol en la empresa seleccionada, o "".
func GetRole(c *fiber.Ctx) string {
	cs, _ := jwt.Company(GetPrincipal(c))
	return cs.Role
}
