// Package documents gestiona las solicitudes de documentos de un proyecto y los
// archivos que sube el cliente para cubrirlas.
package documents

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jhoicas/audit-portal-api/internal/application/dto"
	"github.com/jhoicas/audit-portal-api/internal/application/ports"
	"github.com/jhoicas/audit-portal-api/internal/domain"
	"github.com/jhoicas/audit-portal-api/internal/domain/entity"
	"github.com/jhoicas/audit-portal-api/internal/domain/repository"
)

// DefaultURLTTL validez de las URLs de descarga.
const DefaultURLTTL = time.Hour

// TxRunner agrupa las escrituras de una subida en una transacción.
type TxRunner interface {
	RunUpload(ctx context.Context, fn func(docs repository.DocumentRepository) error) error
}

// UploadInput archivo recibido por multipart.
type UploadInput struct {
	ProjectID   string
	UserID      string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
	Categories  []string // nombres de las solicitudes que cubre el archivo
	FileTypes   []string // tipo por categoría; si falta se usa el primero
}

// UseCase casos de uso de documentos.
type UseCase struct {
	docs   repository.DocumentRepository
	tx     TxRunner
	blobs  ports.BlobStorage
	urlTTL time.Duration
	now    func() time.Time
}

// NewUseCase construye el caso de uso. urlTTL <= 0 usa DefaultURLTTL.
func NewUseCase(docs repository.DocumentRepository, tx TxRunner, blobs ports.BlobStorage, urlTTL time.Duration) *UseCase {
	if urlTTL <= 0 {
		urlTTL = DefaultURLTTL
	}
	return &UseCase{docs: docs, tx: tx, blobs: blobs, urlTTL: urlTTL, now: time.Now}
}

// ListCategories solicitudes del proyecto. Con availableOnly solo las que aún admiten archivos.
func (uc *UseCase) ListCategories(ctx context.Context, projectID string, availableOnly bool) ([]dto.CategoryResponse, error) {
	if projectID == "" {
		return nil, fmt.Errorf("%w: proyecto no seleccionado", domain.ErrInvalidInput)
	}
	reqs, err := uc.docs.ListRequested(ctx, projectID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryResponse, 0, len(reqs))
	for _, r := range reqs {
		if availableOnly && !r.Uploadable() {
			continue
		}
		out = append(out, dto.CategoryResponse{
			ID:           r.ID,
			CategoryName: r.DocumentName,
			Status:       r.Status,
			DueDate:      r.DueDate,
			Comment:      r.Comment,
		})
	}
	return out, nil
}

// ListFiles archivos recibidos del proyecto, el más reciente primero.
func (uc *UseCase) ListFiles(ctx context.Context, projectID string) ([]dto.FileResponse, error) {
	if projectID == "" {
		return nil, fmt.Errorf("%w: proyecto no seleccionado", domain.ErrInvalidInput)
	}
	docs, err := uc.docs.ListReceived(ctx, projectID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.FileResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, dto.FileResponse{
			ID:         d.ID,
			Category:   d.DocumentName,
			FileType:   d.DocumentCategory,
			Filename:   d.Filename,
			Status:     d.Status,
			BlobPath:   d.BlobPath,
			UploadedAt: d.UploadedAt,
			Comment:    d.Comment,
			UploadedBy: d.UploadedBy,
		})
	}
	return out, nil
}

// Upload guarda el archivo en el blob store y registra una fila recibida por categoría,
// marcando cada solicitud como pendiente de revisión.
//
// Si la transacción falla el blob queda huérfano; no se borra.
func (uc *UseCase) Upload(ctx context.Context, in UploadInput) (*dto.UploadResponse, error) {
	if in.ProjectID == "" {
		return nil, fmt.Errorf("%w: proyecto no seleccionado", domain.ErrInvalidInput)
	}
	if in.Body == nil {
		return nil, fmt.Errorf("%w: archivo requerido", domain.ErrInvalidInput)
	}
	filename := cleanFilename(in.Filename)
	if filename == "" {
		return nil, fmt.Errorf("%w: nombre de archivo inválido", domain.ErrInvalidInput)
	}
	categories := nonBlank(in.Categories)
	if len(categories) == 0 {
		return nil, fmt.Errorf("%w: categories es requerido", domain.ErrInvalidInput)
	}
	fileTypes := nonBlank(in.FileTypes)
	if len(fileTypes) == 0 {
		return nil, fmt.Errorf("%w: filetypes es requerido", domain.ErrInvalidInput)
	}

	now := uc.now().UTC()
	key := blobKey(in.ProjectID, now, filename)

	if err := uc.blobs.Put(ctx, key, in.Body, in.Size, in.ContentType); err != nil {
		return nil, err
	}

	err := uc.tx.RunUpload(ctx, func(docs repository.DocumentRepository) error {
		for i, category := range categories {
			fileType := fileTypes[0]
			if i < len(fileTypes) {
				fileType = fileTypes[i]
			}
			reqID, err := docs.LatestRequestID(ctx, in.ProjectID, category)
			if err != nil {
				return err
			}
			if err := docs.CreateReceived(ctx, &entity.ReceivedDocument{
				ProjectID:        in.ProjectID,
				RequestID:        reqID,
				DocumentName:     category,
				DocumentCategory: fileType,
				Filename:         filename,
				BlobPath:         key,
				UploadedAt:       now,
				Status:           entity.DocStatusPending,
				UploadedBy:       in.UserID,
			}); err != nil {
				return err
			}
			if err := docs.SetRequestStatus(ctx, in.ProjectID, category, entity.DocStatusPending); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("blob_path", key).Msg("archivo subido sin registrar")
		return nil, err
	}

	log.Info().Str("project_id", in.ProjectID).Str("blob_path", key).Int("categories", len(categories)).Msg("archivo subido")
	return &dto.UploadResponse{Message: "Uploaded successfully", BlobPath: key, InsertedRows: len(categories)}, nil
}

// FileURL URL firmada de descarga. Solo para blobs del proyecto del llamador.
func (uc *UseCase) FileURL(ctx context.Context, projectID, blobPath string) (*dto.FileURLResponse, error) {
	if projectID == "" {
		return nil, fmt.Errorf("%w: proyecto no seleccionado", domain.ErrInvalidInput)
	}
	if blobPath == "" {
		return nil, fmt.Errorf("%w: blobPath es requerido", domain.ErrInvalidInput)
	}
	if !strings.HasPrefix(blobPath, projectID+"/") || path.Clean(blobPath) != blobPath {
		return nil, domain.ErrForbidden
	}
	url, err := uc.blobs.PresignGet(ctx, blobPath, uc.urlTTL)
	if err != nil {
		return nil, err
	}
	return &dto.FileURLResponse{URL: url, ExpiresAt: uc.now().Add(uc.urlTTL)}, nil
}

// blobKey <proyecto>/<timestamp UTC compacto>-<nombre>, p.ej. p1/20260316T101500123Z-acta.pdf
func blobKey(projectID string, at time.Time, filename string) string {
	ts := strings.ReplaceAll(at.Format("20060102T150405.000Z"), ".", "")
	return projectID + "/" + ts + "-" + filename
}

// cleanFilename descarta directorios del nombre que envía el navegador.
func cleanFilename(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	if name == "" {
		return ""
	}
	base := path.Base(name)
	if base == "." || base == "/" || base == ".." {
		return ""
	}
	return base
}

func nonBlank(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
