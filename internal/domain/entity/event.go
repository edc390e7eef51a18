package entity

import "time"

// Tipos de evento de dominio emitidos después de cada transición.
const (
	EventRequisitionCreated        = "requisition.created"
	EventRequisitionCancelled      = "requisition.cancelled"
	EventRequisitionOfficeApproved = "requisition.supply_approved"
	EventRequisitionAssigned       = "requisition.admin_assigned"
	EventRequisitionApproved       = "requisition.approved"
	EventRequisitionReady          = "requisition.ready_for_pickup"
	EventRequisitionFulfilled      = "requisition.fulfilled"
	EventRequisitionRejected       = "requisition.rejected"
	EventRequisitionLineRejected   = "requisition.line_rejected"
	EventRequisitionLineRestored   = "requisition.line_restored"

	EventReceiptIssued     = "custody.issued"
	EventReceiptReturned   = "custody.returned"
	EventReceiptIncident   = "custody.incident_reported"
	EventReceiptRecovered  = "custody.recovered"
	EventReceiptFound      = "custody.found_returned"
	EventReceiptReassigned = "custody.reassigned"
	EventReceiptReissued   = "custody.reissued"
	EventReceiptFormalized = "custody.formalized"

	EventStockDeducted  = "stock.deducted"
	EventStockIncreased = "stock.increased"
)

// DomainEvent registro notificable de una transición confirmada.
// Recipients son los usuarios a notificar; la entrega es externa.
type DomainEvent struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	EntityID   string            `json:"entity_id"`
	ActorID    string            `json:"actor_id"`
	Recipients []string          `json:"recipients,omitempty"`
	Data       map[string]string `json:"data,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}
