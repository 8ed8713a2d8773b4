package entity

import "time"

// Estados de un documento solicitado/recibido. Se guardan tal cual los muestra el portal.
const (
	DocStatusNotSent     = "Илгээгээгүй"
	DocStatusPending     = "Хүлээгдэж буй"
	DocStatusApproved    = "Баталсан"
	DocStatusRejected    = "Шаардлага хангаагүй"
	DocStatusIncomplete  = "Дутуу"
	DocStatusNotRequired = "Хэрэггүй"
	DocStatusCancelled   = "Цуцалсан"
)

// RequestedDocument es un documento que el auditor pidió al cliente para un proyecto.
type RequestedDocument struct {
	ID           int64
	ProjectID    string
	DocumentName string
	Status       string
	DueDate      *time.Time
	Comment      string
	CreatedAt    time.Time
}

// Uploadable indica si el cliente todavía puede subir archivos para esta solicitud.
func (d RequestedDocument) Uploadable() bool {
	return d.Status == DocStatusNotSent || d.Status == DocStatusCancelled
}

// ReceivedDocument es un archivo subido por el cliente.
type ReceivedDocument struct {
	ID               int64
	ProjectID        string
	RequestID        *int64
	DocumentName     string
	DocumentCategory string
	Filename         string
	BlobPath         string
	UploadedAt       time.Time
	Status           string
	Comment          string
	UploadedBy       string
}

// DocumentStats resume el estado de las solicitudes de un proyecto.
type DocumentStats struct {
	TotalRequired int
	Missing       int
	Pending       int
	Approved      int
	ActionNeeded  int // rechazados + incompletos
}
