package repository

import (
	"context"

	"github.com/jhoicas/audit-portal-api/internal/domain/entity"
)

// DocumentRepository solicitudes de documentos y archivos recibidos de un proyecto.
type DocumentRepository interface {
	ListRequested(ctx context.Context, projectID string) ([]entity.RequestedDocument, error)
	// LatestRequestID devuelve el id de la solicitud más reciente con ese nombre, o nil.
	LatestRequestID(ctx context.Context, projectID, documentName string) (*int64, error)
	SetRequestStatus(ctx context.Context, projectID, documentName, status string) error
	CreateReceived(ctx context.Context, doc *entity.ReceivedDocument) error
	ListReceived(ctx context.Context, projectID string) ([]entity.ReceivedDocument, error)
}

// AnalyticsRepository consultas read-only para el dashboard.
type AnalyticsRepository interface {
	DocumentStats(ctx context.Context, projectID string) (entity.DocumentStats, error)
	MissingDocuments(ctx context.Context, projectID string) ([]entity.RequestedDocument, error)
}
