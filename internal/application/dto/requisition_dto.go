package dto

import "time"

// RequisitionLineRequest línea solicitada.
type RequisitionLineRequest struct {
	ItemID   string `json:"item_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

// CreateRequisitionRequest body para POST /api/requisitions.
type CreateRequisitionRequest struct {
	TargetOfficeID string                   `json:"target_office_id,omitempty"`
	Urgency        string                   `json:"urgency,omitempty"`
	Notes          string                   `json:"notes,omitempty"`
	Lines          []RequisitionLineRequest `json:"lines" validate:"required,min=1"`
}

// NotesRequest cuerpo opcional de las transiciones de aprobación y despacho.
type NotesRequest struct {
	Notes string `json:"notes,omitempty"`
}

// AssignApproverRequest delegación a un aprobador.
type AssignApproverRequest struct {
	ApproverID string `json:"approver_id" validate:"required"`
}

// ReadyForPickupRequest programación opcional del retiro.
type ReadyForPickupRequest struct {
	PickupAt *time.Time `json:"pickup_at,omitempty"`
	Notes    string     `json:"notes,omitempty"`
}

// ReasonRequest motivo de rechazo o cancelación.
type ReasonRequest struct {
	Reason string `json:"reason"`
}
