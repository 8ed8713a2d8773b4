package repository

import (
	"context"
	"time"

	"github.com/jhoicas/audit-portal-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
// Los Get* devuelven (nil, nil) si no existe.
type UserRepository interface {
	// Create devuelve domain.ErrDuplicateUser si la restricción única de identidad se viola.
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	GetByUsernameAndCompany(ctx context.Context, username, companyID string) (*entity.User, error)
	// UpdatePassword reemplaza hash, bandera de cambio obligatorio y fecha de cambio.
	UpdatePassword(ctx context.Context, userID, passwordHash string, mustChange bool, changedAt *time.Time) error
}
