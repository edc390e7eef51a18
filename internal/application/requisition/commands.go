package requisition

import (
	"time"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
)

// LineInput línea solicitada al crear la requisición.
type LineInput struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// CreateCommand alta de una requisición.
type CreateCommand struct {
	Actor          entity.Actor
	TargetOfficeID string
	Urgency        string
	Notes          string
	Lines          []LineInput
}

// TransitionCommand transición sin datos adicionales (aprobaciones).
type TransitionCommand struct {
	Actor         entity.Actor
	RequisitionID string
	Notes         string
}

// AssignCommand delegación a un aprobador.
type AssignCommand struct {
	Actor         entity.Actor
	RequisitionID string
	ApproverID    string
}

// ReadyCommand marca lista para retiro; PickupAt opcional.
type ReadyCommand struct {
	Actor         entity.Actor
	RequisitionID string
	PickupAt      *time.Time
	Notes         string
}

// RejectCommand rechazo o cancelación con motivo.
type RejectCommand struct {
	Actor         entity.Actor
	RequisitionID string
	Reason        string
}

// LineCommand rechazo o restauración de una línea.
type LineCommand struct {
	Actor         entity.Actor
	RequisitionID string
	LineID        string
	Reason        string
}
