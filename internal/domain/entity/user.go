package entity

import "time"

// Roles por defecto de las concesiones de acceso.
const (
	RoleMember = "Member"
)

// User representa a un usuario de una empresa cliente.
// Nunca se borra físicamente.
type User struct {
	ID                 string
	CompanyID          string // empresa en la que se registró
	Username           string
	Email              string
	Name               string
	PasswordHash       string // bcrypt, nunca la contraseña en claro
	IsAdmin            bool
	MustChangePassword bool
	PasswordChangedAt  *time.Time // nil tras un reseteo administrativo
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
