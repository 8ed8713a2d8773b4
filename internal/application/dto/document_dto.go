package dto

import "time"

// CategoryResponse documento solicitado al cliente.
type CategoryResponse struct {
	ID           int64      `json:"id"`
	CategoryName string     `json:"category_name"`
	Status       string     `json:"status"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	Comment      string     `json:"comment,omitempty"`
}

// FileResponse archivo recibido.
type FileResponse struct {
	ID         int64     `json:"id"`
	Category   string    `json:"category"`
	FileType   string    `json:"file_type,omitempty"`
	Filename   string    `json:"filename"`
	Status     string    `json:"status"`
	BlobPath   string    `json:"blob_path"`
	UploadedAt time.Time `json:"uploaded_at"`
	Comment    string    `json:"comment,omitempty"`
	UploadedBy string    `json:"uploaded_by"`
}

// UploadResponse resultado de una subida.
type UploadResponse struct {
	Message      string `json:"message"`
	BlobPath     string `json:"blob_path"`
	InsertedRows int    `json:"inserted_rows"`
}

// FileURLResponse URL firmada de descarga.
type FileURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
