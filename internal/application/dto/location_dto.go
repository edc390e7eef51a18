package dto

import "time"

// CreateLocationRequest alta de una ubicación.
type CreateLocationRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Personnel   string `json:"personnel,omitempty"`
	PersonnelID string `json:"personnel_id,omitempty"`
}

// UpdateLocationRequest cambios parciales.
type UpdateLocationRequest struct {
	Name        *string `json:"name,omitempty"`
	Personnel   *string `json:"personnel,omitempty"`
	PersonnelID *string `json:"personnel_id,omitempty"`
}

// LocationResponse salida de una ubicación.
type LocationResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Personnel     string    `json:"personnel,omitempty"`
	PersonnelID   string    `json:"personnel_id,omitempty"`
	PersonnelCode string    `json:"personnel_code,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// LocationListResponse listado paginado.
type LocationListResponse struct {
	Items []LocationResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
