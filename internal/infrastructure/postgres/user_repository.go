package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/audit-portal-api/internal/domain"
	"github.com/jhoicas/audit-portal-api/internal/domain/entity"
	"github.com/jhoicas/audit-portal-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

const userColumns = `id, company_id, username, email, name, password_hash, is_admin,
	must_change_password, password_changed_at, created_at, updated_at`

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios. Pasar pool o tx (Querier).
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

// Create persiste un nuevo usuario. La unicidad de identidad la garantiza el índice único.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (id, company_id, username, email, name, password_hash, is_admin,
			must_change_password, password_changed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		user.ID, user.CompanyID, user.Username, nullIfEmpty(user.Email), nullIfEmpty(user.Name),
		user.PasswordHash, user.IsAdmin, user.MustChangePassword, user.PasswordChangedAt,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateUser
		}
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.scanOne(ctx, "get user by id",
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByUsername busca en todas las empresas (estrategia de identidad global).
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.scanOne(ctx, "get user by username",
		`SELECT `+userColumns+` FROM users WHERE lower(username) = lower($1)
		ORDER BY created_at LIMIT 1`, username)
}

// GetByUsernameAndCompany busca dentro de una empresa.
func (r *UserRepo) GetByUsernameAndCompany(ctx context.Context, username, companyID string) (*entity.User, error) {
	return r.scanOne(ctx, "get user by username and company",
		`SELECT `+userColumns+` FROM users WHERE lower(username) = lower($1) AND company_id = $2`,
		username, companyID)
}

// UpdatePassword reemplaza hash, bandera de cambio obligatorio y fecha de cambio.
func (r *UserRepo) UpdatePassword(ctx context.Context, userID, passwordHash string, mustChange bool, changedAt *time.Time) error {
	query := `
		UPDATE users
		SET password_hash = $2, must_change_password = $3, password_changed_at = $4, updated_at = NOW()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, userID, passwordHash, mustChange, changedAt)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRepo) scanOne(ctx context.Context, op, query string, args ...any) (*entity.User, error) {
	var (
		u           entity.User
		email, name *string
	)
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&u.ID, &u.CompanyID, &u.Username, &email, &name, &u.PasswordHash, &u.IsAdmin,
		&u.MustChangePassword, &u.PasswordChangedAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	u.Email = derefString(email)
	u.Name = derefString(name)
	return &u, nil
}
