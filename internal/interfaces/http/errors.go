package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/audit-portal-api/internal/application/dto"
	"github.com/jhoicas/audit-portal-api/internal/domain"
)

// errorMapping traduce un error de dominio a status HTTP y código de respuesta.
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrInvalidCredentials, fiber.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrDuplicateUser, fiber.StatusConflict, "USER_EXISTS"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrWeakPassword, fiber.StatusBadRequest, "WEAK_PASSWORD"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrUpstream, fiber.StatusBadGateway, "UPSTREAM_UNAVAILABLE"},
}

// respondError registra el error y responde según errorMapping.
// Los errores no mapeados salen como 500 sin exponer el detalle.
func respondError(c *fiber.Ctx, err error) error {
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			return abort(c, m.status, m.code, clientMessage(err, m.status), err)
		}
	}
	return abort(c, fiber.StatusInternalServerError, "INTERNAL", "error interno", err)
}

// abort escribe el cuerpo de error después de dejarlo en el log.
func abort(c *fiber.Ctx, status int, code, message string, cause error) error {
	ev := log.Warn()
	if status >= fiber.StatusInternalServerError {
		ev = log.Error()
	}
	ev.Err(cause).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", status).
		Str("code", code).
		Msg(message)
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: message})
}

// clientMessage el texto de los errores de dominio es apto para el cliente;
// los de upstream pueden llevar detalle de infraestructura y se resumen.
func clientMessage(err error, status int) string {
	if status == fiber.StatusBadGateway {
		return "servicio externo no disponible"
	}
	return err.Error()
}

func badBody(c *fiber.Ctx, err error) error {
	return abort(c, fiber.StatusBadRequest, "INVALID_BODY", "cuerpo inválido", err)
}
