package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
)

// IssueRequest body para POST /api/custody/issue.
type IssueRequest struct {
	ItemID    string           `json:"item_id" validate:"required"`
	Custodian entity.Custodian `json:"custodian" validate:"required"`
	Note      string           `json:"note,omitempty"`
}

// NoteRequest observación libre (devolución).
type NoteRequest struct {
	Note string `json:"note,omitempty"`
}

// ReportIncidentRequest reporte de pérdida o daño.
type ReportIncidentRequest struct {
	Type               string           `json:"type" validate:"required,oneof=LOST DAMAGED"`
	Description        string           `json:"description" validate:"required"`
	IncidentDate       *time.Time       `json:"incident_date,omitempty"`
	EstimatedValueLoss *decimal.Decimal `json:"estimated_value_loss,omitempty"`
}

// RecoverRequest datos de recuperación (también "encontrado y devuelto").
type RecoverRequest struct {
	RecoveredBy  string     `json:"recovered_by,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	RecoveryDate *time.Time `json:"recovery_date,omitempty"`
}

// TargetRequest traspaso o reemisión hacia otro custodio.
type TargetRequest struct {
	Target entity.Custodian `json:"target" validate:"required"`
	Note   string           `json:"note,omitempty"`
}

// BulkEntryRequest acción por recibo.
type BulkEntryRequest struct {
	ReceiptID string            `json:"receipt_id"`
	Action    string            `json:"action" validate:"oneof=RETURN REASSIGN LOST DAMAGED"`
	Target    *entity.Custodian `json:"target,omitempty"`
	Note      string            `json:"note,omitempty"`
}

// BulkClearRequest liberación masiva.
type BulkClearRequest struct {
	Custodian   entity.Custodian   `json:"custodian"`
	Description string             `json:"description,omitempty"`
	Entries     []BulkEntryRequest `json:"entries"`
}

// FormalizeResponse recibo resultante y si fue creado en esta llamada.
type FormalizeResponse struct {
	Receipt *entity.CustodyReceipt `json:"receipt"`
	Created bool                   `json:"created"`
}
