package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/audit-portal-api/internal/application/dto"
	"github.com/jhoicas/audit-portal-api/internal/domain"
)

// CRMService lo implementa *crm.UseCase.
type CRMService interface {
	Projects(ctx context.Context, companyID string) ([]dto.CRMProjectDTO, error)
}

// DynamicsHandler proyectos del CRM de la empresa seleccionada.
type DynamicsHandler struct {
	uc CRMService
}

// NewDynamicsHandler construye el handler.
func NewDynamicsHandler(uc CRMService) *DynamicsHandler {
	return &DynamicsHandler{uc: uc}
}

// Projects godoc
// @Summary      Proyectos de Dynamics 365 de la empresa
// @Tags         dynamics
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   dto.CRMProjectDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/dynamics/projects [get]
func (h *DynamicsHandler) Projects(c *fiber.Ctx) error {
	out, err := h.uc.Projects(c.UserContext(), GetCompanyID(c))
	if err != nil {
		if errors.Is(err, domain.ErrUpstream) {
			return abort(c, fiber.StatusBadGateway, "CRM_UNAVAILABLE", "Dynamics 365 no disponible", err)
		}
		return respondError(c, err)
	}
	return c.JSON(out)
}
