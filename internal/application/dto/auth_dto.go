package dto

import "time"

// RegisterRequest entrada para registro.
type RegisterRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	CompanyID string `json:"company_id"`
	ProjectID string `json:"project_id"` // opcional: concede además acceso al proyecto
}

// UserResponse salida de un usuario (sin hash).
type UserResponse struct {
	ID                 string     `json:"id"`
	CompanyID          string     `json:"company_id"`
	Username           string     `json:"username"`
	Email              string     `json:"email,omitempty"`
	Name               string     `json:"name,omitempty"`
	IsAdmin            bool       `json:"is_admin"`
	MustChangePassword bool       `json:"must_change_password"`
	PasswordChangedAt  *time.Time `json:"password_changed_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// LoginRequest entrada para login. CompanyID es obligatorio con la estrategia de identidad por empresa.
type LoginRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	CompanyID string `json:"company_id"`
}

// LoginResponse salida del login.
// Si PasswordChangeRequired es true, Token solo sirve para /api/auth/change-password
// y Companies/User van vacíos.
type LoginResponse struct {
	Token                  string            `json:"token"`
	ExpiresIn              int               `json:"expires_in"` // segundos
	PasswordChangeRequired bool              `json:"password_change_required"`
	User                   *UserResponse     `json:"user,omitempty"`
	Companies              []CompanyResponse `json:"companies,omitempty"`
}

// CompanyResponse empresa accesible por el usuario.
type CompanyResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	NameLocal string `json:"name_local,omitempty"`
	Role      string `json:"role"`
}

// ProjectResponse proyecto seleccionable.
type ProjectResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// SelectCompanyRequest entrada para seleccionar empresa.
type SelectCompanyRequest struct {
	CompanyID string `json:"company_id"`
}

// SelectCompanyResponse token con empresa + proyectos disponibles en ella.
type SelectCompanyResponse struct {
	Token     string            `json:"token"`
	ExpiresIn int               `json:"expires_in"`
	Company   CompanyResponse   `json:"company"`
	Projects  []ProjectResponse `json:"projects"`
}

// SelectProjectRequest entrada para seleccionar proyecto.
type SelectProjectRequest struct {
	ProjectID string `json:"project_id"`
}

// SelectProjectResponse token con empresa y proyecto.
type SelectProjectResponse struct {
	Token     string          `json:"token"`
	ExpiresIn int             `json:"expires_in"`
	Project   ProjectResponse `json:"project"`
}

// ChangePasswordRequest cambio de contraseña (forzado o voluntario).
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// AdminResetPasswordRequest contraseña temporal fijada por un administrador.
type AdminResetPasswordRequest struct {
	TemporaryPassword string `json:"temporary_password"`
}
