package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de ciclo de vida del ítem.
const (
	ItemStatusActive  = "active"
	ItemStatusDeleted = "deleted"
	ItemStatusPurged  = "purged"
)

// Item representa un equipo o insumo del inventario.
// Quantity nunca es negativa; Custody tiene a lo sumo un lado asignado.
type Item struct {
	ID             string          `json:"id"`
	UUID           string          `json:"uuid"` // token público (QR)
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	Category       string          `json:"category,omitempty"`
	Condition      string          `json:"condition,omitempty"`
	SerialNumber   string          `json:"serial_number,omitempty"`
	Quantity       int             `json:"quantity"`
	UnitValue      decimal.Decimal `json:"unit_value"`
	Custody        CustodyPointer  `json:"custody"`
	Status         string          `json:"status"`
	DeletionReason string          `json:"deletion_reason,omitempty"`
	DeletedAt      *time.Time      `json:"deleted_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// IsActive el ítem no está eliminado.
func (i *Item) IsActive() bool { return i.Status == ItemStatusActive }

// AssignTo fija el puntero al custodio, limpiando el otro lado.
func (i *Item) AssignTo(c Custodian) { i.Custody = c.Pointer() }

// ClearCustody deja el ítem sin asignar.
func (i *Item) ClearCustody() { i.Custody = CustodyPointer{} }

// TotalValue valor del stock actual (cantidad × valor unitario).
func (i *Item) TotalValue() decimal.Decimal {
	return i.UnitValue.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
