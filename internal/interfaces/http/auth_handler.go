package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/audit-portal-api/internal/application/dto"
	"github.com/jhoicas/audit-portal-api/pkg/jwt"
)

// AuthService lo implementa *auth.AuthUseCase.
type AuthService interface {
	RegisterUser(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error)
	SelectCompany(ctx context.Context, principal jwt.Principal, companyID string) (*dto.SelectCompanyResponse, error)
	SelectProject(ctx context.Context, principal jwt.Principal, projectID string) (*dto.SelectProjectResponse, error)
	ChangePassword(ctx context.Context, principal jwt.Principal, in dto.ChangePasswordRequest) error
	ChangeOwnPassword(ctx context.Context, principal jwt.Principal, in dto.ChangePasswordRequest) error
	AdminResetPassword(ctx context.Context, userID, temporaryPassword string) error
	Me(ctx context.Context, userID string) (*dto.UserResponse, error)
}

// AuthHandler maneja registro, login, selección de alcance y contraseñas.
type AuthHandler struct {
	uc AuthService
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc AuthService) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// Register godoc
// @Summary      Registrar usuario
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterRequest  true  "username, password, company_id"
// @Success      201   {object}  dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}
	user, err := h.uc.RegisterUser(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// Login godoc
// @Summary      Iniciar sesión
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "username, password"
// @Success      200   {object}  dto.LoginResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      429   {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}
	out, err := h.uc.Login(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ChangePassword godoc
// @Summary      Cambio de contraseña obligatorio
// @Description  Solo acepta el token devuelto por login con password_change_required=true.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.ChangePasswordRequest  true  "current_password, new_password"
// @Success      200   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/auth/change-password [post]
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var in dto.ChangePasswordRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}
	if err := h.uc.ChangePassword(c.UserContext(), GetPrincipal(c), in); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "contraseña actualizada, inicie sesión de nuevo"})
}

// ChangeOwnPassword godoc
// @Summary      Cambiar la propia contraseña
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.ChangePasswordRequest  true  "current_password, new_password"
// @Success      200   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/auth/password [put]
func (h *AuthHandler) ChangeOwnPassword(c *fiber.Ctx) error {
	var in dto.ChangePasswordRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}
	if err := h.uc.ChangeOwnPassword(c.UserContext(), GetPrincipal(c), in); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "contraseña actualizada"})
}

// Me godoc
// @Summary      Perfil del usuario autenticado
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.UserResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := h.uc.Me(c.UserContext(), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// SelectCompany godoc
// @Summary      Seleccionar empresa
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.SelectCompanyRequest  true  "company_id"
// @Success      200   {object}  dto.SelectCompanyResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/auth/select-company [post]
func (h *AuthHandler) SelectCompany(c *fiber.Ctx) error {
	var in dto.SelectCompanyRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}
	out, err := h.uc.SelectCompany(c.UserContext(), GetPrincipal(c), strings.TrimSpace(in.CompanyID))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// SelectProject godoc
// @Summary      Seleccionar proyecto
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.SelectProjectRequest  true  "project_id"
// @Success      200   {object}  dto.SelectProjectResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/auth/select-project [post]
func (h *AuthHandler) SelectProject(c *fiber.Ctx) error {
	var in dto.SelectProjectRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}
	out, err := h.uc.SelectProject(c.UserContext(), GetPrincipal(c), strings.TrimSpace(in.ProjectID))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// AdminResetPassword godoc
// @Summary      Fijar contraseña temporal
// @Description  El usuario deberá cambiarla en el próximo login.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        X-Admin-Key  header  string  false  "clave de administración"
// @Param        id    path  string  true  "ID del usuario"
// @Param        body  body  dto.AdminResetPasswordRequest  true  "temporary_password"
// @Success      200   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/admin/users/{id}/reset-password [post]
func (h *AuthHandler) AdminResetPassword(c *fiber.Ctx) error {
	var in dto.AdminResetPasswordRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}
	userID := c.Params("id")
	if err := h.uc.AdminResetPassword(c.UserContext(), userID, in.TemporaryPassword); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "contraseña temporal asignada"})
}
