package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/audit-portal-api/internal/domain/entity"
	"github.com/jhoicas/audit-portal-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para el dashboard del proyecto.
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

// DocumentStats cuenta solicitudes por estado.
// Requeridas = todo lo que no está marcado como innecesario; acción necesaria = rechazados + incompletos.
func (r *AnalyticsRepo) DocumentStats(ctx context.Context, projectID string) (entity.DocumentStats, error) {
	const query = `
	SELECT
	    COUNT(*) FILTER (WHERE status <> $2)        AS total_required,
	    COUNT(*) FILTER (WHERE status = $3)         AS count_missing,
	    COUNT(*) FILTER (WHERE status = $4)         AS count_pending,
	    COUNT(*) FILTER (WHERE status = $5)         AS count_approved,
	    COUNT(*) FILTER (WHERE status IN ($6, $7))  AS count_action_needed
	FROM requested_documents
	WHERE project_id = $1`

	var s entity.DocumentStats
	err := r.q.QueryRow(ctx, query, projectID,
		entity.DocStatusNotRequired,
		entity.DocStatusNotSent,
		entity.DocStatusPending,
		entity.DocStatusApproved,
		entity.DocStatusRejected, entity.DocStatusIncomplete,
	).Scan(&s.TotalRequired, &s.Missing, &s.Pending, &s.Approved, &s.ActionNeeded)
	if err != nil {
		return entity.DocumentStats{}, fmt.Errorf("document stats: %w", err)
	}
	return s, nil
}

// MissingDocuments solicitudes aún no enviadas, la más urgente primero.
func (r *AnalyticsRepo) MissingDocuments(ctx context.Context, projectID string) ([]entity.RequestedDocument, error) {
	const query = `
	SELECT id, project_id, document_name, status, due_date, COALESCE(comment, ''), created_at
	FROM requested_documents
	WHERE project_id = $1 AND status = $2
	ORDER BY due_date ASC NULLS LAST, id`
	return queryRequested(ctx, r.q, query, projectID, entity.DocStatusNotSent)
}
