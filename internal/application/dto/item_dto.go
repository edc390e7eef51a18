package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
)

// CreateItemRequest alta de un ítem (ingreso a inventario).
type CreateItemRequest struct {
	Name         string          `json:"name" validate:"required,min=1,max=200"`
	Description  string          `json:"description,omitempty"`
	Category     string          `json:"category,omitempty"`
	Condition    string          `json:"condition,omitempty"`
	SerialNumber string          `json:"serial_number,omitempty"`
	Quantity     int             `json:"quantity" validate:"min=0"`
	UnitValue    decimal.Decimal `json:"unit_value"`
}

// UpdateItemRequest cambios descriptivos. Cantidad y custodia sólo cambian por sus operaciones.
type UpdateItemRequest struct {
	Name         *string `json:"name,omitempty"`
	Description  *string `json:"description,omitempty"`
	Category     *string `json:"category,omitempty"`
	Condition    *string `json:"condition,omitempty"`
	SerialNumber *string `json:"serial_number,omitempty"`
}

// DeleteItemRequest eliminación lógica con motivo.
type DeleteItemRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// ItemResponse salida de un ítem.
type ItemResponse struct {
	ID             string                `json:"id"`
	UUID           string                `json:"uuid"`
	Name           string                `json:"name"`
	Description    string                `json:"description,omitempty"`
	Category       string                `json:"category,omitempty"`
	Condition      string                `json:"condition,omitempty"`
	SerialNumber   string                `json:"serial_number,omitempty"`
	Quantity       int                   `json:"quantity"`
	UnitValue      decimal.Decimal       `json:"unit_value"`
	TotalValue     decimal.Decimal       `json:"total_value"`
	Custody        entity.CustodyPointer `json:"custody"`
	Status         string                `json:"status"`
	DeletionReason string                `json:"deletion_reason,omitempty"`
	DeletedAt      *time.Time            `json:"deleted_at,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// ItemListResponse listado paginado.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
