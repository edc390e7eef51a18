// Package custody implementa el motor de recibos de custodia: emisión,
// devolución, incidentes, recuperación, traspasos y reemisión de ítems.
package custody

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/notify"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/ports"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain"
	domcustody "github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/custody"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/policy"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/repository"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/pkg/logger"
)

const receiptEntity = "receipt"

// UseCase motor de custodia.
type UseCase struct {
	txRunner  ports.TxRunner
	items     repository.ItemRepository
	receipts  repository.ReceiptRepository
	directory ports.CustodianDirectory
	events    *notify.Dispatcher
	clock     ports.Clock
	log       *logger.Logger
}

// NewUseCase construye el motor. items y receipts se usan para lecturas fuera de transacción.
func NewUseCase(
	txRunner ports.TxRunner,
	items repository.ItemRepository,
	receipts repository.ReceiptRepository,
	directory ports.CustodianDirectory,
	events *notify.Dispatcher,
	clock ports.Clock,
	log *logger.Logger,
) *UseCase {
	if clock == nil {
		clock = ports.SystemClock
	}
	if log == nil {
		log = logger.Nop()
	}
	log = log.Named("custody")
	return &UseCase{
		txRunner:  txRunner,
		items:     items,
		receipts:  receipts,
		directory: directory,
		events:    events,
		clock:     clock,
		log:       log,
	}
}

// ── Emisión ───────────────────────────────────────────────────────────────────

// Issue emite un ítem activo y sin custodio a un custodio válido.
func (uc *UseCase) Issue(ctx context.Context, cmd IssueCommand) (*Outcome, error) {
	if err := policy.Authorize(policy.ReceiptIssue, cmd.Actor.Role); err != nil {
		return nil, err
	}
	if cmd.ItemID == "" {
		return nil, domain.Invalid("item", "", "issue", "item_id requerido")
	}
	if err := uc.validateTarget(ctx, cmd.Custodian); err != nil {
		return nil, err
	}
	var out Outcome
	err := uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		now := uc.clock.Now()
		item, err := lockItem(ctx, repos, cmd.ItemID, "issue")
		if err != nil {
			return err
		}
		existing, err := repos.Receipts.ListByItem(ctx, item.ID)
		if err != nil {
			return err
		}
		for _, r := range existing {
			if !r.IsLive() {
				continue
			}
			if r.Custodian == cmd.Custodian && item.Custody.Matches(cmd.Custodian) {
				return domain.AlreadyProcessed("item", item.ID, r.Status, "issue")
			}
			return domain.Conflict("item", item.ID, r.Status, "issue", "el ítem tiene un recibo vigente")
		}
		if !item.Custody.IsEmpty() {
			return domain.Conflict("item", item.ID, item.Status, "issue", "el ítem ya tiene custodio asignado")
		}
		rec := newReceipt(item.ID, cmd.Custodian, cmd.Actor.ID, now)
		rec.Remarks.Note = cmd.Note
		if err := repos.Receipts.Create(ctx, rec); err != nil {
			return err
		}
		item.AssignTo(cmd.Custodian)
		item.UpdatedAt = now
		if err := repos.Items.Update(ctx, item); err != nil {
			return err
		}
		out = Outcome{Receipt: rec, Item: item}
		return audit(ctx, repos, rec.ID, "issued", cmd.Actor.ID, now, map[string]any{
			"item_id": item.ID, "custodian": cmd.Custodian.String(),
		})
	})
	if err != nil {
		return nil, err
	}
	uc.emit(ctx, entity.EventReceiptIssued, out.Receipt, cmd.Actor.ID, out.Receipt.Custodian)
	return &out, nil
}

// ── Transiciones sobre un recibo ──────────────────────────────────────────────

// Return ISSUED → RETURNED; libera el puntero del ítem.
func (uc *UseCase) Return(ctx context.Context, cmd ReturnCommand) (*Outcome, error) {
	return uc.transition(ctx, cmd.Actor, cmd.ReceiptID, receiptStep{
		action:    policy.ReceiptReturn,
		from:      []string{entity.ReceiptIssued},
		to:        entity.ReceiptReturned,
		requested: "return",
		event:     entity.EventReceiptReturned,
		apply: func(_ context.Context, _ repository.TxRepos, rec *entity.CustodyReceipt, item *entity.Item, now time.Time) (*entity.CustodyReceipt, error) {
			rec.ReturnedAt = &now
			rec.ProcessedBy = cmd.Actor.ID
			if cmd.Note != "" {
				rec.Remarks.Note = cmd.Note
			}
			if item.Custody.Matches(rec.Custodian) {
				item.ClearCustody()
			}
			return nil, nil
		},
	})
}

// ReportLostOrDamaged ISSUED → LOST | DAMAGED. El puntero se conserva. Puede
// reportarlo un administrador o el propio custodio (usuario o responsable de
// la ubicación).
func (uc *UseCase) ReportLostOrDamaged(ctx context.Context, cmd ReportCommand) (*Outcome, error) {
	if !entity.IsIncidentStatus(cmd.Type) {
		return nil, domain.Invalid(receiptEntity, cmd.ReceiptID, "report", "tipo debe ser LOST o DAMAGED")
	}
	if strings.TrimSpace(cmd.Description) == "" {
		return nil, domain.Invalid(receiptEntity, cmd.ReceiptID, "report", "descripción requerida")
	}
	if cmd.EstimatedValueLoss != nil && cmd.EstimatedValueLoss.IsNegative() {
		return nil, domain.Invalid(receiptEntity, cmd.ReceiptID, "report", "pérdida estimada negativa")
	}
	reporterName := ""
	if u, err := uc.directory.User(ctx, cmd.Actor.ID); err == nil && u != nil {
		reporterName = u.Name
	}
	return uc.transition(ctx, cmd.Actor, cmd.ReceiptID, receiptStep{
		action:    policy.ReceiptReport,
		from:      []string{entity.ReceiptIssued},
		to:        cmd.Type,
		requested: "report_" + strings.ToLower(cmd.Type),
		event:     entity.EventReceiptIncident,
		apply: func(_ context.Context, _ repository.TxRepos, rec *entity.CustodyReceipt, _ *entity.Item, now time.Time) (*entity.CustodyReceipt, error) {
			date := cmd.IncidentDate
			if date.IsZero() {
				date = now
			}
			if date.After(now) {
				return nil, domain.Invalid(receiptEntity, rec.ID, "report", "la fecha del incidente es futura")
			}
			rec.Remarks.Incident = domcustody.NewIncident(rec.Remarks, entity.Incident{
				Type:               cmd.Type,
				ReportedBy:         cmd.Actor.ID,
				ReportedByName:     reporterName,
				SelfReported:       cmd.Actor.Role != entity.RoleAdmin,
				IncidentDate:       date,
				Description:        cmd.Description,
				EstimatedValueLoss: cmd.EstimatedValueLoss,
				ReportedAt:         now,
			})
			rec.ProcessedBy = cmd.Actor.ID
			return nil, nil
		},
	})
}

// Recover LOST | DAMAGED → ISSUED. Las observaciones pasan a un sobre de
// recuperación que anida el incidente; el puntero vuelve al custodio del recibo.
func (uc *UseCase) Recover(ctx context.Context, cmd RecoverCommand) (*Outcome, error) {
	return uc.transition(ctx, cmd.Actor, cmd.ReceiptID, receiptStep{
		action:    policy.ReceiptRecover,
		from:      []string{entity.ReceiptLost, entity.ReceiptDamaged},
		to:        entity.ReceiptIssued,
		requested: "recover",
		event:     entity.EventReceiptRecovered,
		apply: func(_ context.Context, _ repository.TxRepos, rec *entity.CustodyReceipt, item *entity.Item, now time.Time) (*entity.CustodyReceipt, error) {
			info := domcustody.RecoveryInfoAt(cmd.Actor.ID, cmd.RecoveredBy, cmd.Notes, cmd.RecoveryDate, now)
			rec.Remarks = domcustody.RecoveryEnvelope(rec.Status, rec.Remarks, info)
			rec.ProcessedBy = cmd.Actor.ID
			item.AssignTo(rec.Custodian)
			return nil, nil
		},
	})
}

// ReturnFound LOST → RETURNED y nuevo recibo ISSUED al mismo custodio, emitido
// un segundo después del cierre y con los datos de recuperación.
func (uc *UseCase) ReturnFound(ctx context.Context, cmd RecoverCommand) (*Outcome, error) {
	return uc.transition(ctx, cmd.Actor, cmd.ReceiptID, receiptStep{
		action:    policy.ReceiptReturnFound,
		from:      []string{entity.ReceiptLost},
		to:        entity.ReceiptReturned,
		requested: "return_found",
		event:     entity.EventReceiptFound,
		apply: func(ctx context.Context, repos repository.TxRepos, rec *entity.CustodyReceipt, item *entity.Item, now time.Time) (*entity.CustodyReceipt, error) {
			info := domcustody.RecoveryInfoAt(cmd.Actor.ID, cmd.RecoveredBy, cmd.Notes, cmd.RecoveryDate, now)
			remarks := domcustody.RecoveryEnvelope(rec.Status, rec.Remarks, info)
			rec.Remarks = remarks
			rec.ReturnedAt = &now
			rec.ProcessedBy = cmd.Actor.ID

			next := newReceipt(item.ID, rec.Custodian, cmd.Actor.ID, now)
			next.PreviousReceiptID = rec.ID
			next.Remarks = remarks
			if err := repos.Receipts.Create(ctx, next); err != nil {
				return nil, err
			}
			rec.SupersededBy = next.ID
			item.AssignTo(rec.Custodian)
			return next, nil
		},
	})
}

// Reassign cierra el recibo ISSUED como RETURNED con marca de traspaso y abre
// uno nuevo para el destino, moviendo el puntero.
func (uc *UseCase) Reassign(ctx context.Context, cmd ReassignCommand) (*Outcome, error) {
	if err := uc.validateTarget(ctx, cmd.Target); err != nil {
		return nil, err
	}
	return uc.transition(ctx, cmd.Actor, cmd.ReceiptID, receiptStep{
		action:    policy.ReceiptReassign,
		from:      []string{entity.ReceiptIssued},
		to:        entity.ReceiptReturned,
		requested: "reassign",
		event:     entity.EventReceiptReassigned,
		apply: func(ctx context.Context, repos repository.TxRepos, rec *entity.CustodyReceipt, item *entity.Item, now time.Time) (*entity.CustodyReceipt, error) {
			if rec.Custodian == cmd.Target {
				return nil, domain.Invalid(receiptEntity, rec.ID, "reassign", "el destino es el custodio actual")
			}
			target := cmd.Target
			rec.ReturnedAt = &now
			rec.ProcessedBy = cmd.Actor.ID
			rec.ReassignedTo = &target
			rec.Remarks.Reassigned = true
			if cmd.Note != "" {
				rec.Remarks.Note = cmd.Note
			}

			next := newReceipt(item.ID, target, cmd.Actor.ID, now)
			next.PreviousReceiptID = rec.ID
			next.Remarks.Note = cmd.Note
			if err := repos.Receipts.Create(ctx, next); err != nil {
				return nil, err
			}
			rec.SupersededBy = next.ID
			item.AssignTo(target)
			return next, nil
		},
	})
}

// Reissue emite de nuevo un ítem a partir de su devolución más reciente, si no
// fue superada por una emisión posterior y el ítem sigue sin custodio.
func (uc *UseCase) Reissue(ctx context.Context, cmd ReissueCommand) (*Outcome, error) {
	if err := policy.Authorize(policy.ReceiptReissue, cmd.Actor.Role); err != nil {
		return nil, err
	}
	if cmd.ReceiptID == "" {
		return nil, domain.Invalid(receiptEntity, "", "reissue", "receipt_id requerido")
	}
	if err := uc.validateTarget(ctx, cmd.Target); err != nil {
		return nil, err
	}
	var out Outcome
	err := uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		now := uc.clock.Now()
		ret, err := repos.Receipts.GetForUpdate(ctx, cmd.ReceiptID)
		if err != nil {
			return err
		}
		if ret == nil {
			return domain.ErrNotFound
		}
		if ret.Status != entity.ReceiptReturned {
			return domain.Conflict(receiptEntity, ret.ID, ret.Status, "reissue", "sólo se reemite desde una devolución")
		}
		if ret.SupersededBy != "" {
			return domain.AlreadyProcessed(receiptEntity, ret.ID, ret.Status, "reissue")
		}
		item, err := lockItem(ctx, repos, ret.ItemID, "reissue")
		if err != nil {
			return err
		}
		history, err := repos.Receipts.ListByItem(ctx, item.ID)
		if err != nil {
			return err
		}
		if !domcustody.Reissuable(*item, *ret, history) {
			return domain.Conflict(receiptEntity, ret.ID, ret.Status, "reissue",
				"la devolución no es la vigente o el ítem ya tiene custodio")
		}
		next := newReceipt(item.ID, cmd.Target, cmd.Actor.ID, now)
		next.PreviousReceiptID = ret.ID
		next.Remarks.Note = cmd.Note
		if err := repos.Receipts.Create(ctx, next); err != nil {
			return err
		}
		ret.SupersededBy = next.ID
		ret.UpdatedAt = now
		if err := repos.Receipts.Update(ctx, ret); err != nil {
			return err
		}
		item.AssignTo(cmd.Target)
		item.UpdatedAt = now
		if err := repos.Items.Update(ctx, item); err != nil {
			return err
		}
		out = Outcome{Receipt: ret, Opened: next, Item: item}
		return audit(ctx, repos, next.ID, "reissued", cmd.Actor.ID, now, map[string]any{
			"item_id": item.ID, "from_receipt": ret.ID, "custodian": cmd.Target.String(),
		})
	})
	if err != nil {
		return nil, err
	}
	uc.emit(ctx, entity.EventReceiptReissued, out.Opened, cmd.Actor.ID, out.Opened.Custodian)
	return &out, nil
}

// ── Formalización ─────────────────────────────────────────────────────────────

// Formalize sintetiza un recibo ISSUED para un ítem con custodio asignado pero
// sin recibo vigente. El puntero no cambia. Si ya existe un recibo vigente que
// coincide, se devuelve ese recibo y created=false.
func (uc *UseCase) Formalize(ctx context.Context, actor entity.Actor, itemID string) (rec *entity.CustodyReceipt, created bool, err error) {
	if err := policy.Authorize(policy.ReceiptFormalize, actor.Role); err != nil {
		return nil, false, err
	}
	err = uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		now := uc.clock.Now()
		item, err := repos.Items.GetForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		c, ok := item.Custody.Custodian()
		if !ok {
			return domain.Conflict("item", item.ID, item.Status, "formalize", "el ítem no tiene un custodio único asignado")
		}
		existing, err := repos.Receipts.ListByItem(ctx, item.ID)
		if err != nil {
			return err
		}
		for i := range existing {
			r := existing[i]
			if !r.IsLive() {
				continue
			}
			if r.Custodian != c {
				return domain.Conflict("item", item.ID, r.Status, "formalize", domcustody.AnomalyPointerMismatch)
			}
			rec = &r
			return nil
		}
		rec = newReceipt(item.ID, c, actor.ID, now)
		rec.Formalized = true
		rec.Remarks.Note = "formalización de custodia existente"
		if err := repos.Receipts.Create(ctx, rec); err != nil {
			return err
		}
		created = true
		return audit(ctx, repos, rec.ID, "formalized", actor.ID, now, map[string]any{
			"item_id": item.ID, "custodian": c.String(),
		})
	})
	if err != nil {
		return nil, false, err
	}
	if created {
		uc.emit(ctx, entity.EventReceiptFormalized, rec, actor.ID, rec.Custodian)
	}
	return rec, created, nil
}

// FormalizeCustodian aplica Formalize a cada ítem atribuido al custodio, cada uno
// en su propia transacción.
func (uc *UseCase) FormalizeCustodian(ctx context.Context, actor entity.Actor, c entity.Custodian) (*BulkSummary, error) {
	if err := policy.Authorize(policy.ReceiptFormalize, actor.Role); err != nil {
		return nil, err
	}
	if !c.Valid() {
		return nil, domain.Invalid(receiptEntity, "", "formalize", "custodio inválido")
	}
	filter := repository.ItemFilter{}
	if c.Kind == entity.CustodianUser {
		filter.UserID = c.ID
	} else {
		filter.LocationID = c.ID
	}
	items, err := uc.items.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	summary := &BulkSummary{}
	for _, it := range items {
		res := BulkResult{ItemID: it.ID, Action: "FORMALIZE"}
		rec, created, err := uc.Formalize(ctx, actor, it.ID)
		switch {
		case err != nil:
			res.Error = err.Error()
		case created:
			res.ReceiptID = rec.ID
			res.NewReceiptID = rec.ID
		default:
			res.ReceiptID = rec.ID
		}
		summary.add(res)
	}
	return summary, nil
}

// ── Liberación masiva ─────────────────────────────────────────────────────────

// BulkClear aplica una acción por recibo, cada una en su propia transacción. Un
// fallo individual queda en el resumen y no detiene al resto.
func (uc *UseCase) BulkClear(ctx context.Context, cmd BulkClearCommand) (*BulkSummary, error) {
	if err := policy.Authorize(policy.ReceiptBulkClear, cmd.Actor.Role); err != nil {
		return nil, err
	}
	if !cmd.Custodian.Valid() {
		return nil, domain.Invalid(receiptEntity, "", "bulk_clear", "custodio requerido")
	}
	if len(cmd.Entries) == 0 {
		return nil, domain.Invalid(receiptEntity, "", "bulk_clear", "sin entradas")
	}
	summary := &BulkSummary{}
	for _, e := range cmd.Entries {
		if err := uc.heldBy(ctx, e.ReceiptID, cmd.Custodian); err != nil {
			uc.log.Warn().Err(err).Str("receipt_id", e.ReceiptID).Str("custodian", cmd.Custodian.String()).
				Msg("liberación masiva: recibo ajeno al custodio")
			summary.add(BulkResult{ReceiptID: e.ReceiptID, Action: e.Action, Error: err.Error()})
			continue
		}
		note := e.Note
		if note == "" {
			note = cmd.Description
		}
		var (
			out *Outcome
			err error
		)
		switch e.Action {
		case BulkReturn:
			out, err = uc.Return(ctx, ReturnCommand{Actor: cmd.Actor, ReceiptID: e.ReceiptID, Note: note})
		case BulkReassign:
			if e.Target == nil {
				err = domain.Invalid(receiptEntity, e.ReceiptID, "reassign", "destino requerido")
				break
			}
			out, err = uc.Reassign(ctx, ReassignCommand{Actor: cmd.Actor, ReceiptID: e.ReceiptID, Target: *e.Target, Note: note})
		case BulkLost, BulkDamaged:
			if note == "" {
				note = "liberación masiva"
			}
			out, err = uc.ReportLostOrDamaged(ctx, ReportCommand{Actor: cmd.Actor, ReceiptID: e.ReceiptID, Type: e.Action, Description: note})
		default:
			err = domain.Invalid(receiptEntity, e.ReceiptID, "bulk_clear", "acción desconocida: "+e.Action)
		}
		res := BulkResult{ReceiptID: e.ReceiptID, Action: e.Action}
		if err != nil {
			res.Error = err.Error()
			uc.log.Warn().Err(err).Str("receipt_id", e.ReceiptID).Str("action", e.Action).Msg("liberación masiva: entrada fallida")
		} else {
			res.ItemID = out.Item.ID
			if out.Opened != nil {
				res.NewReceiptID = out.Opened.ID
			}
		}
		summary.add(res)
	}
	return summary, nil
}

// heldBy el recibo existe y fue emitido a c. El custodio de un recibo no cambia
// nunca, así que basta leerlo fuera de la transacción de la acción.
func (uc *UseCase) heldBy(ctx context.Context, receiptID string, c entity.Custodian) error {
	rec, err := uc.receipts.GetByID(ctx, receiptID)
	if err != nil {
		return err
	}
	if rec == nil {
		return domain.ErrNotFound
	}
	if rec.Custodian != c {
		return domain.Conflict(receiptEntity, rec.ID, rec.Status, "bulk_clear", "el recibo no pertenece a "+c.String())
	}
	return nil
}

// ── Consultas ─────────────────────────────────────────────────────────────────

// Get devuelve un recibo si el actor puede verlo.
func (uc *UseCase) Get(ctx context.Context, actor entity.Actor, id string) (*entity.CustodyReceipt, error) {
	rec, err := uc.receipts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	rels, err := uc.relations(ctx, rec.Custodian, actor)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(policy.ReceiptRead, actor.Role, rels...); err != nil {
		return nil, err
	}
	return rec, nil
}

// History todos los recibos del ítem en orden de emisión.
func (uc *UseCase) History(ctx context.Context, actor entity.Actor, itemID string) ([]entity.CustodyReceipt, error) {
	recs, err := uc.receipts.ListByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	var rels []policy.Relation
	for _, r := range recs {
		got, err := uc.relations(ctx, r.Custodian, actor)
		if err != nil {
			return nil, err
		}
		rels = append(rels, got...)
	}
	if err := policy.Authorize(policy.ReceiptRead, actor.Role, rels...); err != nil {
		return nil, err
	}
	return recs, nil
}

// ListReissuable ítems disponibles para reemisión con su última devolución.
func (uc *UseCase) ListReissuable(ctx context.Context, actor entity.Actor) ([]domcustody.ReissueCandidate, error) {
	if err := policy.Authorize(policy.ReceiptReissue, actor.Role); err != nil {
		return nil, err
	}
	items, err := uc.items.List(ctx, repository.ItemFilter{Status: entity.ItemStatusActive})
	if err != nil {
		return nil, err
	}
	var free []entity.Item
	var ids []string
	for _, it := range items {
		if it.Custody.IsEmpty() {
			free = append(free, *it)
			ids = append(ids, it.ID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}
	recs, err := uc.receipts.ListByItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	return domcustody.ReissueCandidates(free, groupByItem(recs)), nil
}

// EffectiveCustodyView proyección de custodia vigente: recibos vivos más filas
// virtuales para punteros sin recibo. Con filter, sólo la de ese custodio.
func (uc *UseCase) EffectiveCustodyView(ctx context.Context, actor entity.Actor, filter *entity.Custodian) (*domcustody.View, error) {
	var rels []policy.Relation
	if filter != nil {
		if !filter.Valid() {
			return nil, domain.Invalid(receiptEntity, "", "view", "custodio inválido")
		}
		got, err := uc.relations(ctx, *filter, actor)
		if err != nil {
			return nil, err
		}
		rels = got
	}
	if err := policy.Authorize(policy.ReceiptRead, actor.Role, rels...); err != nil {
		return nil, err
	}
	items, err := uc.items.List(ctx, repository.ItemFilter{Status: entity.ItemStatusActive})
	if err != nil {
		return nil, err
	}
	list := make([]entity.Item, 0, len(items))
	ids := make([]string, 0, len(items))
	for _, it := range items {
		list = append(list, *it)
		ids = append(ids, it.ID)
	}
	var recs []entity.CustodyReceipt
	if len(ids) > 0 {
		if recs, err = uc.receipts.ListByItems(ctx, ids); err != nil {
			return nil, err
		}
	}
	view := domcustody.ComputeEffectiveCustodyView(list, recs)
	if filter != nil {
		view = view.Filter(*filter)
	}
	return &view, nil
}

// ── Núcleo ────────────────────────────────────────────────────────────────────

type receiptStep struct {
	action    policy.Action
	from      []string
	to        string
	requested string
	event     string
	// apply muta recibo e ítem; devuelve el recibo sucesor si abrió uno.
	apply func(ctx context.Context, repos repository.TxRepos, rec *entity.CustodyReceipt, item *entity.Item, now time.Time) (*entity.CustodyReceipt, error)
}

// transition bloquea recibo e ítem, valida estado y capacidad, aplica el paso y
// persiste recibo, ítem y bitácora en la misma transacción.
func (uc *UseCase) transition(ctx context.Context, actor entity.Actor, receiptID string, s receiptStep) (*Outcome, error) {
	if receiptID == "" {
		return nil, domain.Invalid(receiptEntity, "", s.requested, "receipt_id requerido")
	}
	var out Outcome
	err := uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		now := uc.clock.Now()
		rec, err := repos.Receipts.GetForUpdate(ctx, receiptID)
		if err != nil {
			return err
		}
		if rec == nil {
			return domain.ErrNotFound
		}
		if rec.Status == s.to {
			return domain.AlreadyProcessed(receiptEntity, rec.ID, rec.Status, s.requested)
		}
		if !contains(s.from, rec.Status) || !entity.CanTransitionReceipt(rec.Status, s.to) {
			return domain.Conflict(receiptEntity, rec.ID, rec.Status, s.requested, "transición no permitida")
		}
		rels, err := uc.relations(ctx, rec.Custodian, actor)
		if err != nil {
			return err
		}
		if !policy.Allowed(s.action, actor.Role, rels...) {
			return domain.Forbidden(receiptEntity, rec.ID, rec.Status, s.requested,
				fmt.Sprintf("rol %q sin capacidad para %s", actor.Role, s.action))
		}
		item, err := repos.Items.GetForUpdate(ctx, rec.ItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("ítem %s del recibo %s: %w", rec.ItemID, rec.ID, domain.ErrNotFound)
		}

		from := rec.Status
		opened, err := s.apply(ctx, repos, rec, item, now)
		if err != nil {
			return err
		}
		rec.Status = s.to
		rec.UpdatedAt = now
		if err := repos.Receipts.Update(ctx, rec); err != nil {
			return err
		}
		item.UpdatedAt = now
		if err := repos.Items.Update(ctx, item); err != nil {
			return err
		}
		detail := map[string]any{"from": from, "to": rec.Status, "item_id": item.ID}
		if opened != nil {
			detail["opened"] = opened.ID
		}
		out = Outcome{Receipt: rec, Opened: opened, Item: item}
		return audit(ctx, repos, rec.ID, s.requested, actor.ID, now, detail)
	})
	if err != nil {
		return nil, err
	}
	custodian := out.Receipt.Custodian
	if out.Opened != nil {
		custodian = out.Opened.Custodian
	}
	uc.emit(ctx, s.event, out.Receipt, actor.ID, custodian)
	return &out, nil
}

// validateTarget el custodio destino existe y puede recibir custodia.
func (uc *UseCase) validateTarget(ctx context.Context, c entity.Custodian) error {
	if !c.Valid() {
		return domain.Invalid(receiptEntity, "", "target", "custodio inválido: se requiere exactamente un usuario o una ubicación")
	}
	switch c.Kind {
	case entity.CustodianUser:
		u, err := uc.directory.User(ctx, c.ID)
		if err != nil {
			return err
		}
		if u == nil {
			return fmt.Errorf("usuario %s: %w", c.ID, domain.ErrNotFound)
		}
		if !u.IsActive() {
			return domain.Invalid(receiptEntity, "", "target", "el usuario destino está inactivo")
		}
	case entity.CustodianLocation:
		l, err := uc.directory.Location(ctx, c.ID)
		if err != nil {
			return err
		}
		if l == nil {
			return fmt.Errorf("ubicación %s: %w", c.ID, domain.ErrNotFound)
		}
		if !l.HasPersonnel() {
			return domain.Invalid(receiptEntity, "", "target", "la ubicación no tiene responsable de registro")
		}
	}
	return nil
}

// relations vínculo del actor con el custodio de un recibo.
func (uc *UseCase) relations(ctx context.Context, c entity.Custodian, actor entity.Actor) ([]policy.Relation, error) {
	switch c.Kind {
	case entity.CustodianUser:
		if c.ID == actor.ID {
			return []policy.Relation{policy.Custodian}, nil
		}
	case entity.CustodianLocation:
		l, err := uc.directory.Location(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		if l != nil && l.PersonnelID != "" && l.PersonnelID == actor.ID {
			return []policy.Relation{policy.PersonnelOf}, nil
		}
	}
	return nil, nil
}

// recipients usuario a notificar por el custodio: el propio usuario o el
// responsable de la ubicación.
func (uc *UseCase) recipients(ctx context.Context, c entity.Custodian) []string {
	if c.Kind == entity.CustodianUser {
		return []string{c.ID}
	}
	l, err := uc.directory.Location(ctx, c.ID)
	if err != nil || l == nil || l.PersonnelID == "" {
		return nil
	}
	return []string{l.PersonnelID}
}

func (uc *UseCase) emit(ctx context.Context, kind string, rec *entity.CustodyReceipt, actorID string, notifyTo entity.Custodian) {
	uc.events.Dispatch(ctx, notify.Event(kind, rec.ID, actorID, rec.UpdatedAt, map[string]string{
		"item_id":   rec.ItemID,
		"status":    rec.Status,
		"custodian": notifyTo.String(),
	}, uc.recipients(ctx, notifyTo)...))
}

func lockItem(ctx context.Context, repos repository.TxRepos, itemID, op string) (*entity.Item, error) {
	item, err := repos.Items.GetForUpdate(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	if !item.IsActive() {
		return nil, domain.Conflict("item", item.ID, item.Status, op, "ítem eliminado")
	}
	return item, nil
}

func newReceipt(itemID string, c entity.Custodian, actorID string, issuedAt time.Time) *entity.CustodyReceipt {
	return &entity.CustodyReceipt{
		ID:        uuid.New().String(),
		ItemID:    itemID,
		Custodian: c,
		IssuedBy:  actorID,
		IssuedAt:  issuedAt,
		Status:    entity.ReceiptIssued,
		Version:   1,
		CreatedAt: issuedAt,
		UpdatedAt: issuedAt,
	}
}

func audit(ctx context.Context, repos repository.TxRepos, receiptID, action, actorID string, now time.Time, detail map[string]any) error {
	raw, err := json.Marshal(detail)
	if err != nil {
		return err
	}
	return repos.Audit.Create(ctx, &entity.AuditRecord{
		ID:         uuid.New().String(),
		EntityType: receiptEntity,
		EntityID:   receiptID,
		Action:     action,
		ActorID:    actorID,
		Detail:     raw,
		CreatedAt:  now,
	})
}

// auditItem asiento de bitácora sobre el ítem, para operaciones de mantenimiento.
func auditItem(ctx context.Context, repos repository.TxRepos, itemID, action string, now time.Time, detail map[string]any) error {
	raw, err := json.Marshal(detail)
	if err != nil {
		return err
	}
	return repos.Audit.Create(ctx, &entity.AuditRecord{
		ID:         uuid.New().String(),
		EntityType: "item",
		EntityID:   itemID,
		Action:     action,
		ActorID:    "system",
		Detail:     raw,
		CreatedAt:  now,
	})
}

func groupByItem(recs []entity.CustodyReceipt) map[string][]entity.CustodyReceipt {
	out := make(map[string][]entity.CustodyReceipt)
	for _, r := range recs {
		out[r.ItemID] = append(out[r.ItemID], r)
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
