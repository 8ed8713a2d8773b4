package entity

import "time"

// CompanyAccess concede a un usuario acceso a una empresa con un rol.
// Sin fila no hay acceso a los recursos de esa empresa.
type CompanyAccess struct {
	UserID    string
	CompanyID string
	Role      string
	CreatedAt time.Time
}

// ProjectAccess concede a un usuario acceso a un proyecto con un rol.
type ProjectAccess struct {
	UserID    string
	ProjectID string
	CompanyID string // empresa dueña del proyecto (desnormalizado en la consulta)
	Role      string
	CreatedAt time.Time
}

// CompanyGrant es la vista que se devuelve tras el login: empresa + rol del usuario.
type CompanyGrant struct {
	Company Company
	Role    string
}

// ProjectGrant es la vista de proyectos seleccionables dentro de una empresa.
type ProjectGrant struct {
	Project Project
	Role    string
}
