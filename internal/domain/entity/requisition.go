package entity

import (
	"sort"
	"time"
)

// Estados de una requisición de suministros.
const (
	RequisitionPending        = "pending"
	RequisitionSupplyApproved = "supply_approved"
	RequisitionAdminAssigned  = "admin_assigned"
	RequisitionApproved       = "approved"
	RequisitionReadyForPickup = "ready_for_pickup"
	RequisitionFulfilled      = "fulfilled"
	RequisitionRejected       = "rejected"
	RequisitionCancelled      = "cancelled"
)

// Estados de línea.
const (
	LinePending  = "pending"
	LineRejected = "rejected"
)

// requisitionTransitions DAG de estados; cada destino lista sus orígenes válidos.
var requisitionTransitions = map[string][]string{
	RequisitionSupplyApproved: {RequisitionPending},
	RequisitionAdminAssigned:  {RequisitionSupplyApproved},
	RequisitionApproved:       {RequisitionAdminAssigned},
	RequisitionReadyForPickup: {RequisitionApproved},
	RequisitionFulfilled:      {RequisitionReadyForPickup},
	RequisitionRejected:       {RequisitionPending, RequisitionSupplyApproved, RequisitionAdminAssigned},
	RequisitionCancelled:      {RequisitionPending},
}

// CanTransitionRequisition indica si from → to es una arista del DAG.
func CanTransitionRequisition(from, to string) bool {
	for _, s := range requisitionTransitions[to] {
		if s == from {
			return true
		}
	}
	return false
}

// RequisitionLine ítem + cantidad dentro de una requisición.
type RequisitionLine struct {
	ID              string     `json:"id"`
	RequisitionID   string     `json:"requisition_id"`
	ItemID          string     `json:"item_id"`
	Quantity        int        `json:"quantity"`
	Status          string     `json:"status"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	RejectedBy      string     `json:"rejected_by,omitempty"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty"`
}

// Requisition solicitud de suministros con aprobación en varios niveles.
// Cada actor queda en su propio campo; ninguno se sobrescribe en transiciones posteriores.
type Requisition struct {
	ID                 string            `json:"id"`
	Number             string            `json:"number"`
	RequesterID        string            `json:"requester_id"`
	TargetOfficeID     string            `json:"target_office_id,omitempty"`
	AssignedApproverID string            `json:"assigned_approver_id,omitempty"`
	Status             string            `json:"status"`
	Urgency            string            `json:"urgency,omitempty"`
	Notes              string            `json:"notes,omitempty"`
	Lines              []RequisitionLine `json:"lines"`

	OfficeApprovedBy string `json:"office_approved_by,omitempty"`
	AssignedBy       string `json:"assigned_by,omitempty"`
	ApprovedBy       string `json:"approved_by,omitempty"`
	ReadiedBy        string `json:"readied_by,omitempty"`
	FulfilledBy      string `json:"fulfilled_by,omitempty"`
	RejectedBy       string `json:"rejected_by,omitempty"`
	CancelledBy      string `json:"cancelled_by,omitempty"`

	RejectionReason  string     `json:"rejection_reason,omitempty"`
	FulfillmentNotes string     `json:"fulfillment_notes,omitempty"`
	ReceiptRef       string     `json:"receipt_ref,omitempty"`
	PickupAt         *time.Time `json:"pickup_at,omitempty"`

	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	OfficeApprovedAt *time.Time `json:"office_approved_at,omitempty"`
	AssignedAt       *time.Time `json:"assigned_at,omitempty"`
	ApprovedAt       *time.Time `json:"approved_at,omitempty"`
	ReadyAt          *time.Time `json:"ready_at,omitempty"`
	FulfilledAt      *time.Time `json:"fulfilled_at,omitempty"`
	RejectedAt       *time.Time `json:"rejected_at,omitempty"`
	CancelledAt      *time.Time `json:"cancelled_at,omitempty"`
}

// IsOpen la requisición admite rechazo y cambios de línea.
func (r *Requisition) IsOpen() bool {
	switch r.Status {
	case RequisitionPending, RequisitionSupplyApproved, RequisitionAdminAssigned:
		return true
	}
	return false
}

// ActiveLines líneas no rechazadas; son las únicas que se validan y despachan.
func (r *Requisition) ActiveLines() []RequisitionLine {
	out := make([]RequisitionLine, 0, len(r.Lines))
	for _, l := range r.Lines {
		if l.Status != LineRejected {
			out = append(out, l)
		}
	}
	return out
}

// ActiveLinesByItem líneas activas ordenadas por ItemID: el orden fijo en que se
// bloquean los ítems al despachar.
func (r *Requisition) ActiveLinesByItem() []RequisitionLine {
	out := r.ActiveLines()
	sort.SliceStable(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out
}

// Line devuelve la línea por ID.
func (r *Requisition) Line(id string) (*RequisitionLine, bool) {
	for i := range r.Lines {
		if r.Lines[i].ID == id {
			return &r.Lines[i], true
		}
	}
	return nil, false
}
