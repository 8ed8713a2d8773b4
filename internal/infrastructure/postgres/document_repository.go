package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/audit-portal-api/internal/domain/entity"
	"github.com/jhoicas/audit-portal-api/internal/domain/repository"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

// DocumentRepo solicitudes y archivos recibidos por proyecto.
type DocumentRepo struct {
	q Querier
}

// NewDocumentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDocumentRepository(q Querier) *DocumentRepo {
	return &DocumentRepo{q: q}
}

// ListRequested documentos solicitados del proyecto, por fecha límite.
func (r *DocumentRepo) ListRequested(ctx context.Context, projectID string) ([]entity.RequestedDocument, error) {
	query := `
		SELECT id, project_id, document_name, status, due_date, COALESCE(comment, ''), created_at
		FROM requested_documents
		WHERE project_id = $1
		ORDER BY due_date ASC NULLS LAST, id`
	return queryRequested(ctx, r.q, query, projectID)
}

// LatestRequestID id de la solicitud más reciente con ese nombre, o nil.
func (r *DocumentRepo) LatestRequestID(ctx context.Context, projectID, documentName string) (*int64, error) {
	query := `
		SELECT id FROM requested_documents
		WHERE project_id = $1 AND document_name = $2
		ORDER BY created_at DESC, id DESC
		LIMIT 1`
	var id int64
	err := r.q.QueryRow(ctx, query, projectID, documentName).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest request id: %w", err)
	}
	return &id, nil
}

// SetRequestStatus actualiza todas las solicitudes del proyecto con ese nombre.
func (r *DocumentRepo) SetRequestStatus(ctx context.Context, projectID, documentName, status string) error {
	query := `UPDATE requested_documents SET status = $3 WHERE project_id = $1 AND document_name = $2`
	if _, err := r.q.Exec(ctx, query, projectID, documentName, status); err != nil {
		return fmt.Errorf("set request status: %w", err)
	}
	return nil
}

// CreateReceived inserta un archivo recibido y rellena doc.ID.
func (r *DocumentRepo) CreateReceived(ctx context.Context, doc *entity.ReceivedDocument) error {
	query := `
		INSERT INTO received_documents (project_id, request_id, document_name, document_category,
			filename, blob_path, uploaded_at, status, comment, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		doc.ProjectID, doc.RequestID, doc.DocumentName, nullIfEmpty(doc.DocumentCategory),
		doc.Filename, doc.BlobPath, doc.UploadedAt, doc.Status, nullIfEmpty(doc.Comment), doc.UploadedBy,
	).Scan(&doc.ID)
	if err != nil {
		return fmt.Errorf("insert received document: %w", err)
	}
	return nil
}

// ListReceived archivos del proyecto, el más reciente primero.
func (r *DocumentRepo) ListReceived(ctx context.Context, projectID string) ([]entity.ReceivedDocument, error) {
	query := `
		SELECT id, project_id, request_id, document_name, COALESCE(document_category, ''), filename,
			blob_path, uploaded_at, status, COALESCE(comment, ''), uploaded_by
		FROM received_documents
		WHERE project_id = $1
		ORDER BY uploaded_at DESC, id DESC`
	rows, err := r.q.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list received: %w", err)
	}
	defer rows.Close()

	var out []entity.ReceivedDocument
	for rows.Next() {
		var d entity.ReceivedDocument
		if err := rows.Scan(&d.ID, &d.ProjectID, &d.RequestID, &d.DocumentName, &d.DocumentCategory, &d.Filename,
			&d.BlobPath, &d.UploadedAt, &d.Status, &d.Comment, &d.UploadedBy); err != nil {
			return nil, fmt.Errorf("scan received document: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func queryRequested(ctx context.Context, q Querier, query string, args ...any) ([]entity.RequestedDocument, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list requested: %w", err)
	}
	defer rows.Close()

	var out []entity.RequestedDocument
	for rows.Next() {
		var d entity.RequestedDocument
		if err := rows.Scan(&d.ID, &d.ProjectID, &d.DocumentName, &d.Status, &d.DueDate, &d.Comment, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan requested document: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
