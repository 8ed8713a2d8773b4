package http

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/audit-portal-api/internal/application/dto"
)

// DashboardService lo implementa *analytics.DashboardUseCase.
type DashboardService interface {
	GetStats(ctx context.Context, projectID string) (*dto.DashboardDTO, error)
	StatusReportPDF(ctx context.Context, companyID, projectID string) ([]byte, error)
}

// DashboardHandler maneja los endpoints del módulo de Dashboard.
type DashboardHandler struct {
	uc DashboardService
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc DashboardService) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// Stats contadores por estado y solicitudes sin enviar del proyecto seleccionado.
// GET /api/dashboard/stats
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	out, err := h.uc.GetStats(c.UserContext(), GetProjectID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Report informe de estado en PDF.
// GET /api/dashboard/report.pdf
func (h *DashboardHandler) Report(c *fiber.Ctx) error {
	projectID := GetProjectID(c)
	pdf, err := h.uc.StatusReportPDF(c.UserContext(), GetCompanyID(c), projectID)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="status-report-%s.pdf"`, projectID))
	return c.Send(pdf)
}
