// Package ports define los puertos de salida hacia servicios externos.
// La aplicación solo conoce estos contratos; los adaptadores viven en infrastructure.
package ports

import (
	"context"
	"io"
	"time"

	"github.com/jhoicas/audit-portal-api/internal/application/dto"
	"github.com/jhoicas/audit-portal-api/internal/domain/entity"
)

// BlobStorage almacén de archivos subidos por los clientes.
type BlobStorage interface {
	// Put guarda el contenido bajo key. size puede ser -1 si se desconoce.
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	// PresignGet devuelve una URL de solo lectura válida durante ttl.
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// CRMClient lectura de proyectos en Dynamics 365.
// Los errores de red o del servicio se devuelven envolviendo domain.ErrUpstream.
type CRMClient interface {
	// ProjectsByCompanyCode lista los proyectos de la empresa CRM con ese código.
	// Un código sin empresa en el CRM devuelve lista vacía.
	ProjectsByCompanyCode(ctx context.Context, code string) ([]dto.CRMProjectDTO, error)
}

// ReportPDFGenerator renderiza el informe de estado de documentos de un proyecto.
type ReportPDFGenerator interface {
	GenerateStatusReport(ctx context.Context, in StatusReport) ([]byte, error)
}

// StatusReport datos que necesita el informe PDF.
type StatusReport struct {
	Company     entity.Company
	Project     entity.Project
	Stats       entity.DocumentStats
	Missing     []entity.RequestedDocument
	GeneratedAt time.Time
}
