package dto

import "time"

// CRMProjectDTO proyecto de Dynamics 365 (msdyn_project) vinculado a la empresa.
type CRMProjectDTO struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Code       string    `json:"code"`
	CreatedOn  time.Time `json:"created_on"`
	StatusCode int       `json:"status_code"`
	StateCode  int       `json:"state_code"`
}
