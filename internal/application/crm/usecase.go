// Package crm expone los proyectos de Dynamics 365 vinculados a la empresa seleccionada.
package crm

import (
	"context"

	"github.com/jhoicas/audit-portal-api/internal/application/dto"
	"github.com/jhoicas/audit-portal-api/internal/application/ports"
	"github.com/jhoicas/audit-portal-api/internal/domain"
	"github.com/jhoicas/audit-portal-api/internal/domain/repository"
)

// UseCase proyectos CRM de una empresa.
type UseCase struct {
	companyRepo repository.CompanyRepository
	client      ports.CRMClient
}

// NewUseCase construye el caso de uso. client nil deja la integración deshabilitada.
func NewUseCase(companyRepo repository.CompanyRepository, client ports.CRMClient) *UseCase {
	return &UseCase{companyRepo: companyRepo, client: client}
}

// Projects lista los proyectos CRM de la empresa. Sin código CRM la lista es vacía.
func (uc *UseCase) Projects(ctx context.Context, companyID string) ([]dto.CRMProjectDTO, error) {
	company, err := uc.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	if company.CRMCode == "" {
		return []dto.CRMProjectDTO{}, nil
	}
	if uc.client == nil {
		return nil, domain.ErrUpstream
	}
	projects, err := uc.client.ProjectsByCompanyCode(ctx, company.CRMCode)
	if err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []dto.CRMProjectDTO{}
	}
	return projects, nil
}
