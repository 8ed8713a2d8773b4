package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/audit-portal-api/internal/domain"
	"github.com/jhoicas/audit-portal-api/internal/domain/entity"
	"github.com/jhoicas/audit-portal-api/internal/domain/repository"
)

var _ repository.AccessRepository = (*AccessRepo)(nil)

// AccessRepo concesiones de acceso a empresas y proyectos.
type AccessRepo struct {
	q Querier
}

// NewAccessRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAccessRepository(q Querier) *AccessRepo {
	return &AccessRepo{q: q}
}

// GrantCompany inserta o actualiza el rol del usuario en la empresa.
func (r *AccessRepo) GrantCompany(ctx context.Context, g *entity.CompanyAccess) error {
	query := `
		INSERT INTO company_access (user_id, company_id, role, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, company_id) DO UPDATE SET role = EXCLUDED.role`
	if _, err := r.q.Exec(ctx, query, g.UserID, g.CompanyID, g.Role, g.CreatedAt); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("grant company: %w", err)
	}
	return nil
}

// GrantProject inserta o actualiza el rol del usuario en el proyecto.
func (r *AccessRepo) GrantProject(ctx context.Context, g *entity.ProjectAccess) error {
	query := `
		INSERT INTO project_access (user_id, project_id, role, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, project_id) DO UPDATE SET role = EXCLUDED.role`
	if _, err := r.q.Exec(ctx, query, g.UserID, g.ProjectID, g.Role, g.CreatedAt); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("grant project: %w", err)
	}
	return nil
}

// GetCompanyAccess devuelve (nil, nil) si no hay concesión.
func (r *AccessRepo) GetCompanyAccess(ctx context.Context, userID, companyID string) (*entity.CompanyAccess, error) {
	query := `SELECT user_id, company_id, role, created_at
		FROM company_access WHERE user_id = $1 AND company_id = $2`
	var g entity.CompanyAccess
	err := r.q.QueryRow(ctx, query, userID, companyID).Scan(&g.UserID, &g.CompanyID, &g.Role, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company access: %w", err)
	}
	return &g, nil
}

// GetProjectAccess devuelve (nil, nil) si no hay concesión. CompanyID sale del proyecto.
func (r *AccessRepo) GetProjectAccess(ctx context.Context, userID, projectID string) (*entity.ProjectAccess, error) {
	query := `
		SELECT pa.user_id, pa.project_id, p.company_id, pa.role, pa.created_at
		FROM project_access pa
		JOIN projects p ON p.id = pa.project_id
		WHERE pa.user_id = $1 AND pa.project_id = $2`
	var g entity.ProjectAccess
	err := r.q.QueryRow(ctx, query, userID, projectID).Scan(&g.UserID, &g.ProjectID, &g.CompanyID, &g.Role, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get project access: %w", err)
	}
	return &g, nil
}

// ListCompanies empresas accesibles por el usuario, ordenadas por nombre.
func (r *AccessRepo) ListCompanies(ctx context.Context, userID string) ([]entity.CompanyGrant, error) {
	query := `
		SELECT c.id, c.name, COALESCE(c.name_local, ''), COALESCE(c.crm_code, ''), c.created_at, ca.role
		FROM company_access ca
		JOIN companies c ON c.id = ca.company_id
		WHERE ca.user_id = $1
		ORDER BY c.name`
	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	var out []entity.CompanyGrant
	for rows.Next() {
		var g entity.CompanyGrant
		if err := rows.Scan(&g.Company.ID, &g.Company.Name, &g.Company.NameLocal, &g.Company.CRMCode, &g.Company.CreatedAt, &g.Role); err != nil {
			return nil, fmt.Errorf("scan company grant: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// ListProjects proyectos de la empresa a los que el usuario tiene acceso.
func (r *AccessRepo) ListProjects(ctx context.Context, userID, companyID string) ([]entity.ProjectGrant, error) {
	query := `
		SELECT p.id, p.company_id, p.name, p.created_at, pa.role
		FROM project_access pa
		JOIN projects p ON p.id = pa.project_id
		WHERE pa.user_id = $1 AND p.company_id = $2
		ORDER BY p.created_at DESC`
	rows, err := r.q.Query(ctx, query, userID, companyID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var out []entity.ProjectGrant
	for rows.Next() {
		var g entity.ProjectGrant
		if err := rows.Scan(&g.Project.ID, &g.Project.CompanyID, &g.Project.Name, &g.Project.CreatedAt, &g.Role); err != nil {
			return nil, fmt.Errorf("scan project grant: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
