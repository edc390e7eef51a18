package entity

import "time"

// Tipos de movimiento de inventario.
const (
	MovementTypeIN  = "IN"  // reposición / devolución de stock consumido
	MovementTypeOUT = "OUT" // consumo (despacho de requisición, préstamo)
)

// InventoryMovement registro de cada mutación de cantidad de un ítem.
type InventoryMovement struct {
	ID             string    `json:"id"`
	TransactionID  string    `json:"transaction_id"` // requisición, recibo u operación manual
	ItemID         string    `json:"item_id"`
	Type           string    `json:"type"`
	Quantity       int       `json:"quantity"`
	QuantityBefore int       `json:"quantity_before"`
	QuantityAfter  int       `json:"quantity_after"`
	Reason         string    `json:"reason,omitempty"`
	Period         string    `json:"period"`
	CreatedAt      time.Time `json:"created_at"`
	CreatedBy      string    `json:"created_by,omitempty"`
}
