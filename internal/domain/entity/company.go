package entity

import "time"

// Company representa a una empresa cliente (tenant del portal).
type Company struct {
	ID        string
	Name      string
	NameLocal string // nombre en mongol, usado en carpetas y reportes
	CRMCode   string // go_companyid en Dynamics; vacío si no está vinculada
	CreatedAt time.Time
}

// Project representa un encargo de auditoría de una empresa.
type Project struct {
	ID        string
	CompanyID string
	Name      string
	CreatedAt time.Time
}
