package repository

import (
	"context"

	"github.com/jhoicas/audit-portal-api/internal/domain/entity"
)

// CompanyRepository define el puerto de persistencia para Company (DIP).
// La implementación vive en infrastructure.
type CompanyRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Company, error)
}

// ProjectRepository define el puerto de persistencia para Project.
type ProjectRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Project, error)
}
