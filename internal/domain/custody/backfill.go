package custody

import (
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
)

// Acciones de saneamiento de custodia heredada.
const (
	RepairSetPointer   = "set_pointer"
	RepairClearPointer = "clear_pointer"
	RepairNone         = "report"
)

// Finding diagnóstico de un ítem cuyo puntero y cadena de recibos no concuerdan.
// Si Action es RepairNone sólo se reporta; After es el puntero resultante de reparar.
type Finding struct {
	ItemID string                `json:"item_id"`
	Reason string                `json:"reason"`
	Action string                `json:"action"`
	Before entity.CustodyPointer `json:"before"`
	After  entity.CustodyPointer `json:"after"`
}

// Motivos de diagnóstico.
const (
	ReasonManyLive      = "más de un recibo vigente"
	ReasonBothSides     = AnomalyBothSides
	ReasonMismatch      = AnomalyPointerMismatch
	ReasonLiveNoPointer = AnomalyLiveWithoutPointer
	ReasonStalePointer  = "puntero de un custodio que ya devolvió el ítem"
	ReasonNoReceipts    = "puntero sin recibos (formalizable)"
	ReasonUndetermined  = "puntero sin recibo vigente y sin devolución que lo explique"
)

// Diagnose compara el puntero del ítem con sus recibos. Sólo propone reparar
// cuando la cadena de recibos determina la respuesta; el resto se reporta.
// ok=false significa que el ítem es consistente.
func Diagnose(item entity.Item, receipts []entity.CustodyReceipt) (Finding, bool) {
	f := Finding{ItemID: item.ID, Before: item.Custody, After: item.Custody, Action: RepairNone}

	var live []entity.CustodyReceipt
	for _, r := range receipts {
		if r.IsLive() {
			live = append(live, r)
		}
	}
	if len(live) > 1 {
		f.Reason = ReasonManyLive
		return f, true
	}
	if len(live) == 1 {
		c := live[0].Custodian
		switch {
		case !item.Custody.Valid():
			f.Reason = ReasonBothSides
		case item.Custody.IsEmpty():
			f.Reason = ReasonLiveNoPointer
		case !item.Custody.Matches(c):
			f.Reason = ReasonMismatch
		default:
			return f, false
		}
		f.Action = RepairSetPointer
		f.After = c.Pointer()
		return f, true
	}

	if item.Custody.IsEmpty() {
		return f, false
	}
	if !item.Custody.Valid() {
		f.Reason = ReasonBothSides
		return f, true
	}
	if len(receipts) == 0 {
		f.Reason = ReasonNoReceipts
		return f, true
	}
	latest := receipts[0]
	for _, r := range receipts[1:] {
		if r.IssuedAt.After(latest.IssuedAt) {
			latest = r
		}
	}
	if latest.Status == entity.ReceiptReturned && item.Custody.Matches(latest.Custodian) {
		f.Reason = ReasonStalePointer
		f.Action = RepairClearPointer
		f.After = entity.CustodyPointer{}
		return f, true
	}
	f.Reason = ReasonUndetermined
	return f, true
}
