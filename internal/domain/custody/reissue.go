package custody

import (
	"sort"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
)

// LatestReturn último recibo RETURNED del ítem (por fecha de devolución). Con
// la misma fecha gana el sucesor: el emitido después o el que continúa al otro.
func LatestReturn(receipts []entity.CustodyReceipt) (*entity.CustodyReceipt, bool) {
	var best *entity.CustodyReceipt
	for i := range receipts {
		r := &receipts[i]
		if r.Status != entity.ReceiptReturned || r.ReturnedAt == nil {
			continue
		}
		if best == nil || returnedLater(*r, *best) {
			best = r
		}
	}
	return best, best != nil
}

func returnedLater(a, b entity.CustodyReceipt) bool {
	if !a.ReturnedAt.Equal(*b.ReturnedAt) {
		return a.ReturnedAt.After(*b.ReturnedAt)
	}
	if !a.IssuedAt.Equal(b.IssuedAt) {
		return a.IssuedAt.After(b.IssuedAt)
	}
	return a.PreviousReceiptID == b.ID
}

// Superseded la devolución quedó obsoleta: existe un recibo ISSUED del mismo
// ítem emitido estrictamente después de ella.
func Superseded(ret entity.CustodyReceipt, receipts []entity.CustodyReceipt) bool {
	if ret.ReturnedAt == nil {
		return true
	}
	for _, r := range receipts {
		if r.ID == ret.ID || r.ItemID != ret.ItemID {
			continue
		}
		if r.Status == entity.ReceiptIssued && r.IssuedAt.After(*ret.ReturnedAt) {
			return true
		}
	}
	return false
}

// Reissuable indica si ret habilita reemitir el ítem: es la devolución más
// reciente, no fue superada por una emisión posterior y el ítem sigue activo y
// sin asignar.
func Reissuable(item entity.Item, ret entity.CustodyReceipt, receipts []entity.CustodyReceipt) bool {
	if !item.IsActive() || !item.Custody.IsEmpty() {
		return false
	}
	if ret.Status != entity.ReceiptReturned {
		return false
	}
	latest, ok := LatestReturn(receipts)
	if !ok || latest.ID != ret.ID {
		return false
	}
	for _, r := range receipts {
		if r.IsLive() {
			return false
		}
	}
	return !Superseded(ret, receipts)
}

// ReissueCandidate ítem disponible para reemisión junto con su última devolución.
type ReissueCandidate struct {
	Item          entity.Item           `json:"item"`
	LastReturn    entity.CustodyReceipt `json:"last_return"`
	PreviousOwner entity.Custodian      `json:"previous_owner"`
}

// ReissueCandidates filtra los ítems reemitibles. byItem agrupa los recibos por ítem.
func ReissueCandidates(items []entity.Item, byItem map[string][]entity.CustodyReceipt) []ReissueCandidate {
	var out []ReissueCandidate
	for _, it := range items {
		recs := byItem[it.ID]
		ret, ok := LatestReturn(recs)
		if !ok || !Reissuable(it, *ret, recs) {
			continue
		}
		out = append(out, ReissueCandidate{Item: it, LastReturn: *ret, PreviousOwner: ret.Custodian})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastReturn.ReturnedAt.After(*out[j].LastReturn.ReturnedAt)
	})
	return out
}
