package repository

import (
	"context"

	"github.com/jhoicas/audit-portal-api/internal/domain/entity"
)

// AccessRepository concesiones usuario→empresa y usuario→proyecto.
type AccessRepository interface {
	GrantCompany(ctx context.Context, grant *entity.CompanyAccess) error
	GrantProject(ctx context.Context, grant *entity.ProjectAccess) error
	// GetCompanyAccess devuelve (nil, nil) si no hay concesión.
	GetCompanyAccess(ctx context.Context, userID, companyID string) (*entity.CompanyAccess, error)
	// GetProjectAccess devuelve (nil, nil) si no hay concesión; CompanyID se rellena con la empresa del proyecto.
	GetProjectAccess(ctx context.Context, userID, projectID string) (*entity.ProjectAccess, error)
	ListCompanies(ctx context.Context, userID string) ([]entity.CompanyGrant, error)
	ListProjects(ctx context.Context, userID, companyID string) ([]entity.ProjectGrant, error)
}
