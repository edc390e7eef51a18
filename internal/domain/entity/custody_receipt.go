package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un recibo de custodia.
const (
	ReceiptIssued   = "ISSUED"
	ReceiptReturned = "RETURNED"
	ReceiptLost     = "LOST"
	ReceiptDamaged  = "DAMAGED"
)

// receiptTransitions destino → orígenes válidos.
// LOST → RETURNED es el cierre por "encontrado y devuelto".
var receiptTransitions = map[string][]string{
	ReceiptReturned: {ReceiptIssued, ReceiptLost},
	ReceiptLost:     {ReceiptIssued},
	ReceiptDamaged:  {ReceiptIssued},
	ReceiptIssued:   {ReceiptLost, ReceiptDamaged},
}

// CanTransitionReceipt indica si from → to es válida.
func CanTransitionReceipt(from, to string) bool {
	for _, s := range receiptTransitions[to] {
		if s == from {
			return true
		}
	}
	return false
}

// IsIncidentStatus LOST o DAMAGED.
func IsIncidentStatus(s string) bool { return s == ReceiptLost || s == ReceiptDamaged }

// CustodyReceipt emisión de un ítem a un custodio. Los recibos forman una
// cadena sólo-anexar que constituye la historia de custodia del ítem.
type CustodyReceipt struct {
	ID                string     `json:"id"`
	ItemID            string     `json:"item_id"`
	Custodian         Custodian  `json:"custodian"`
	IssuedBy          string     `json:"issued_by"`
	IssuedAt          time.Time  `json:"issued_at"`
	Status            string     `json:"status"`
	ReturnedAt        *time.Time `json:"returned_at,omitempty"`
	ProcessedBy       string     `json:"processed_by,omitempty"`
	Remarks           Remarks    `json:"remarks"`
	ReassignedTo      *Custodian `json:"reassigned_to,omitempty"`
	SupersededBy      string     `json:"superseded_by,omitempty"`
	PreviousReceiptID string     `json:"previous_receipt_id,omitempty"`
	Formalized        bool       `json:"formalized,omitempty"`
	Version           int        `json:"version"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// IsLive el recibo mantiene al custodio como responsable (ISSUED, LOST o DAMAGED).
func (r *CustodyReceipt) IsLive() bool {
	return r.Status == ReceiptIssued || IsIncidentStatus(r.Status)
}

// Remarks observaciones estructuradas del recibo.
type Remarks struct {
	Note       string            `json:"note,omitempty"`
	Reassigned bool              `json:"reassigned,omitempty"`
	Incident   *Incident         `json:"incident,omitempty"`
	Recovery   *RecoveryEnvelope `json:"recovery,omitempty"`
}

// Incident reporte estructurado de pérdida o daño.
type Incident struct {
	Type               string           `json:"type"` // LOST | DAMAGED
	Number             int              `json:"incident_number"`
	ReportedBy         string           `json:"reported_by"`
	ReportedByName     string           `json:"reported_by_name,omitempty"`
	SelfReported       bool             `json:"self_reported"`
	IncidentDate       time.Time        `json:"incident_date"`
	Description        string           `json:"description"`
	EstimatedValueLoss *decimal.Decimal `json:"estimated_value_loss,omitempty"`
	ReportedAt         time.Time        `json:"reported_at"`
	PreviousIncidents  []IncidentRecord `json:"previous_incidents,omitempty"`
	RepeatIncident     bool             `json:"is_repeat_incident"`
}

// IncidentRecord incidente ya cerrado por una recuperación.
type IncidentRecord struct {
	Number   int          `json:"incident_number"`
	Incident Incident     `json:"incident"`
	Recovery RecoveryInfo `json:"recovery"`
}

// RecoveryInfo datos de una recuperación.
type RecoveryInfo struct {
	Notes        string    `json:"recovery_notes,omitempty"`
	RecoveredBy  string    `json:"recovered_by"`
	RecoveryDate time.Time `json:"recovery_date"`
	RecoveredAt  time.Time `json:"recovered_at"`
	ProcessedBy  string    `json:"processed_by"`
}

// RecoveryEnvelope observaciones tras recuperar un ítem: anida el incidente
// original y acumula el historial de incidentes previos.
type RecoveryEnvelope struct {
	Recovered        bool             `json:"recovered"`
	OriginalStatus   string           `json:"original_status"`
	OriginalIncident *Incident        `json:"original_incident,omitempty"`
	OriginalNote     string           `json:"original_note,omitempty"`
	Info             RecoveryInfo     `json:"info"`
	IncidentCount    int              `json:"incident_count"`
	History          []IncidentRecord `json:"history,omitempty"`
}
