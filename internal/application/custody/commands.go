package custody

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
)

// IssueCommand emisión de un ítem sin custodio.
type IssueCommand struct {
	Actor     entity.Actor
	ItemID    string
	Custodian entity.Custodian
	Note      string
}

// ReturnCommand devolución de un recibo ISSUED.
type ReturnCommand struct {
	Actor     entity.Actor
	ReceiptID string
	Note      string
}

// ReportCommand reporte de pérdida o daño (Type = LOST | DAMAGED).
type ReportCommand struct {
	Actor              entity.Actor
	ReceiptID          string
	Type               string
	Description        string
	IncidentDate       time.Time
	EstimatedValueLoss *decimal.Decimal
}

// RecoverCommand recuperación de un ítem LOST/DAMAGED. También la usa ReturnFound.
type RecoverCommand struct {
	Actor        entity.Actor
	ReceiptID    string
	RecoveredBy  string
	Notes        string
	RecoveryDate time.Time
}

// ReassignCommand traspaso directo a otro custodio.
type ReassignCommand struct {
	Actor     entity.Actor
	ReceiptID string
	Target    entity.Custodian
	Note      string
}

// ReissueCommand nueva emisión a partir de una devolución.
type ReissueCommand struct {
	Actor     entity.Actor
	ReceiptID string
	Target    entity.Custodian
	Note      string
}

// Acciones de liberación masiva.
const (
	BulkReturn   = "RETURN"
	BulkReassign = "REASSIGN"
	BulkLost     = "LOST"
	BulkDamaged  = "DAMAGED"
)

// BulkEntry acción por recibo dentro de una liberación masiva.
type BulkEntry struct {
	ReceiptID string            `json:"receipt_id"`
	Action    string            `json:"action"`
	Target    *entity.Custodian `json:"target,omitempty"`
	Note      string            `json:"note,omitempty"`
}

// BulkClearCommand liberación masiva (p. ej. baja de un funcionario). Todos los
// recibos deben pertenecer a Custodian.
type BulkClearCommand struct {
	Actor       entity.Actor
	Custodian   entity.Custodian
	Entries     []BulkEntry
	Description string
}

// BulkResult resultado de una entrada; Error vacío si tuvo éxito.
type BulkResult struct {
	ReceiptID    string `json:"receipt_id"`
	ItemID       string `json:"item_id,omitempty"`
	Action       string `json:"action"`
	NewReceiptID string `json:"new_receipt_id,omitempty"`
	Error        string `json:"error,omitempty"`
}

// BulkSummary resumen de una operación por lotes.
type BulkSummary struct {
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Results   []BulkResult `json:"results"`
}

func (s *BulkSummary) add(r BulkResult) {
	if r.Error == "" {
		s.Succeeded++
	} else {
		s.Failed++
	}
	s.Results = append(s.Results, r)
}

// Outcome resultado de una transición: el recibo afectado, el recibo abierto
// a continuación (si lo hubo) y el ítem tras la operación.
type Outcome struct {
	Receipt *entity.CustodyReceipt `json:"receipt"`
	Opened  *entity.CustodyReceipt `json:"opened,omitempty"`
	Item    *entity.Item           `json:"item"`
}
