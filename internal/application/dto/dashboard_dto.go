package dto

import "time"

// DashboardStatsDTO contadores por estado de las solicitudes del proyecto.
type DashboardStatsDTO struct {
	TotalRequired int `json:"total_required"`
	CountMissing  int `json:"count_missing"`
	CountPending  int `json:"count_pending"`
	CountApproved int `json:"count_approved"`
	// CountActionNeeded = rechazados + incompletos.
	CountActionNeeded int `json:"count_action_needed"`
}

// MissingFileDTO solicitud aún no enviada.
type MissingFileDTO struct {
	CategoryName string     `json:"category_name"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	Comment      string     `json:"comment,omitempty"`
}

// DashboardDTO respuesta de /api/dashboard/stats.
type DashboardDTO struct {
	Stats        DashboardStatsDTO `json:"stats"`
	MissingFiles []MissingFileDTO  `json:"missing_files"`
}
