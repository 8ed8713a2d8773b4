// Package analytics contiene los casos de uso del dashboard de seguimiento de
// documentos de un proyecto de auditoría.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/audit-portal-api/internal/application/dto"
	"github.com/jhoicas/audit-portal-api/internal/application/ports"
	"github.com/jhoicas/audit-portal-api/internal/domain"
	"github.com/jhoicas/audit-portal-api/internal/domain/entity"
	"github.com/jhoicas/audit-portal-api/internal/domain/repository"
)

// DashboardUseCase resume el estado de las solicitudes del proyecto.
//
// Fuente de datos: AnalyticsRepository (consultas read-only).
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	companyRepo   repository.CompanyRepository
	projectRepo   repository.ProjectRepository
	pdf           ports.ReportPDFGenerator
	now           func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(
	analyticsRepo repository.AnalyticsRepository,
	companyRepo repository.CompanyRepository,
	projectRepo repository.ProjectRepository,
	pdf ports.ReportPDFGenerator,
) *DashboardUseCase {
	return &DashboardUseCase{
		analyticsRepo: analyticsRepo,
		companyRepo:   companyRepo,
		projectRepo:   projectRepo,
		pdf:           pdf,
		now:           time.Now,
	}
}

// GetStats contadores por estado + lista de documentos pendientes de envío.
func (uc *DashboardUseCase) GetStats(ctx context.Context, projectID string) (*dto.DashboardDTO, error) {
	stats, missing, err := uc.load(ctx, projectID)
	if err != nil {
		return nil, err
	}

	out := &dto.DashboardDTO{
		Stats: dto.DashboardStatsDTO{
			TotalRequired:     stats.TotalRequired,
			CountMissing:      stats.Missing,
			CountPending:      stats.Pending,
			CountApproved:     stats.Approved,
			CountActionNeeded: stats.ActionNeeded,
		},
		MissingFiles: make([]dto.MissingFileDTO, 0, len(missing)),
	}
	for _, m := range missing {
		out.MissingFiles = append(out.MissingFiles, dto.MissingFileDTO{
			CategoryName: m.DocumentName,
			DueDate:      m.DueDate,
			Comment:      m.Comment,
		})
	}
	return out, nil
}

// StatusReportPDF renderiza los mismos datos de GetStats como PDF.
func (uc *DashboardUseCase) StatusReportPDF(ctx context.Context, companyID, projectID string) ([]byte, error) {
	project, err := uc.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, domain.ErrNotFound
	}
	if project.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	company, err := uc.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}

	stats, missing, err := uc.load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return uc.pdf.GenerateStatusReport(ctx, ports.StatusReport{
		Company:     *company,
		Project:     *project,
		Stats:       stats,
		Missing:     missing,
		GeneratedAt: uc.now(),
	})
}

// load lanza las dos consultas en paralelo.
func (uc *DashboardUseCase) load(ctx context.Context, projectID string) (entity.DocumentStats, []entity.RequestedDocument, error) {
	if projectID == "" {
		return entity.DocumentStats{}, nil, fmt.Errorf("%w: proyecto no seleccionado", domain.ErrInvalidInput)
	}

	type statsResult struct {
		stats entity.DocumentStats
		err   error
	}
	type missingResult struct {
		docs []entity.RequestedDocument
		err  error
	}

	statsCh := make(chan statsResult, 1)
	missingCh := make(chan missingResult, 1)

	go func() {
		s, err := uc.analyticsRepo.DocumentStats(ctx, projectID)
		statsCh <- statsResult{s, err}
	}()
	go func() {
		d, err := uc.analyticsRepo.MissingDocuments(ctx, projectID)
		missingCh <- missingResult{d, err}
	}()

	stats := <-statsCh
	missing := <-missingCh

	if stats.err != nil {
		return entity.DocumentStats{}, nil, fmt.Errorf("dashboard: stats: %w", stats.err)
	}
	if missing.err != nil {
		return entity.DocumentStats{}, nil, fmt.Errorf("dashboard: missing: %w", missing.err)
	}
	return stats.stats, missing.docs, nil
}
