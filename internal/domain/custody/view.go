package custody

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
)

// ViewEntry una fila de la vista efectiva de custodia. Virtual indica que no
// existe recibo formal y la fila se sintetizó a partir del puntero del ítem.
type ViewEntry struct {
	Item      entity.Item            `json:"item"`
	Custodian entity.Custodian       `json:"custodian"`
	Receipt   *entity.CustodyReceipt `json:"receipt,omitempty"`
	Status    string                 `json:"status"`
	Virtual   bool                   `json:"virtual"`
}

// Anomaly inconsistencia detectada entre puntero y recibos; la vista la reporta
// sin corregirla.
type Anomaly struct {
	ItemID   string             `json:"item_id"`
	Reason   string             `json:"reason"`
	Involved []entity.Custodian `json:"involved"`
}

// involves el custodio aparece en el puntero o en el recibo en conflicto.
func (a Anomaly) involves(c entity.Custodian) bool {
	for _, x := range a.Involved {
		if x == c {
			return true
		}
	}
	return false
}

// View resultado de ComputeEffectiveCustodyView.
type View struct {
	Entries    []ViewEntry     `json:"entries"`
	Anomalies  []Anomaly       `json:"anomalies,omitempty"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// Motivos de anomalía.
const (
	AnomalyBothSides          = "puntero con usuario y ubicación a la vez"
	AnomalyPointerMismatch    = "el recibo vigente no coincide con el puntero"
	AnomalyLiveWithoutPointer = "recibo vigente sin puntero en el ítem"
)

// ComputeEffectiveCustodyView combina los recibos vigentes con filas virtuales
// para la custodia que no tiene recibo. Es una proyección pura: no persiste nada.
// receipts puede contener recibos de cualquier ítem; sólo se usan los de items.
func ComputeEffectiveCustodyView(items []entity.Item, receipts []entity.CustodyReceipt) View {
	live := make(map[string]*entity.CustodyReceipt)
	for i := range receipts {
		r := &receipts[i]
		if !r.IsLive() {
			continue
		}
		if cur, ok := live[r.ItemID]; !ok || r.IssuedAt.After(cur.IssuedAt) {
			live[r.ItemID] = r
		}
	}

	v := View{TotalValue: decimal.Zero}
	for _, it := range items {
		if !it.Custody.Valid() {
			v.Anomalies = append(v.Anomalies, Anomaly{ItemID: it.ID, Reason: AnomalyBothSides, Involved: []entity.Custodian{
				entity.UserCustodian(it.Custody.UserID), entity.LocationCustodian(it.Custody.LocationID),
			}})
			continue
		}
		rec := live[it.ID]
		owner, assigned := it.Custody.Custodian()
		switch {
		case rec != nil && assigned && rec.Custodian == owner:
			cp := *rec
			v.Entries = append(v.Entries, ViewEntry{Item: it, Custodian: owner, Receipt: &cp, Status: rec.Status})
		case rec != nil && assigned:
			v.Anomalies = append(v.Anomalies, Anomaly{ItemID: it.ID, Reason: AnomalyPointerMismatch,
				Involved: []entity.Custodian{owner, rec.Custodian}})
			continue
		case rec != nil:
			v.Anomalies = append(v.Anomalies, Anomaly{ItemID: it.ID, Reason: AnomalyLiveWithoutPointer,
				Involved: []entity.Custodian{rec.Custodian}})
			continue
		case assigned:
			v.Entries = append(v.Entries, ViewEntry{Item: it, Custodian: owner, Status: entity.ReceiptIssued, Virtual: true})
		default:
			continue
		}
		v.TotalValue = v.TotalValue.Add(it.TotalValue())
	}
	sort.SliceStable(v.Entries, func(i, j int) bool { return v.Entries[i].Item.Name < v.Entries[j].Item.Name })
	return v
}

// Filter conserva sólo las filas y anomalías en las que participa el custodio dado.
func (v View) Filter(c entity.Custodian) View {
	out := View{TotalValue: decimal.Zero}
	for _, a := range v.Anomalies {
		if a.involves(c) {
			out.Anomalies = append(out.Anomalies, a)
		}
	}
	for _, e := range v.Entries {
		if e.Custodian == c {
			out.Entries = append(out.Entries, e)
			out.TotalValue = out.TotalValue.Add(e.Item.TotalValue())
		}
	}
	return out
}
