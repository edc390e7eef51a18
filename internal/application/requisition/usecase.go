// Package requisition implementa el motor de requisiciones de suministros:
// aprobación en varios niveles, validación de stock y despacho atómico.
package requisition

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	appinventory "github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/inventory"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/notify"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/ports"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/policy"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/repository"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/pkg/logger"
)

const entityName = "requisition"

// UseCase motor de requisiciones. Cada operación es una unidad de trabajo
// serializable; los eventos se publican sólo después del commit.
type UseCase struct {
	txRunner     ports.TxRunner
	ledger       *appinventory.LedgerUseCase
	requisitions repository.RequisitionRepository
	directory    ports.CustodianDirectory
	artifacts    ports.ReceiptArtifactGenerator
	events       *notify.Dispatcher
	clock        ports.Clock
	log          *logger.Logger
}

// NewUseCase construye el motor.
func NewUseCase(
	txRunner ports.TxRunner,
	ledger *appinventory.LedgerUseCase,
	requisitions repository.RequisitionRepository,
	directory ports.CustodianDirectory,
	artifacts ports.ReceiptArtifactGenerator,
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
	log = log.Named("requisition")
	return &UseCase{
		txRunner:     txRunner,
		ledger:       ledger,
		requisitions: requisitions,
		directory:    directory,
		artifacts:    artifacts,
		events:       events,
		clock:        clock,
		log:          log,
	}
}

// ── Creación ──────────────────────────────────────────────────────────────────

// Create registra una requisición pendiente. Las líneas deben referir ítems
// activos distintos con cantidad positiva.
func (uc *UseCase) Create(ctx context.Context, cmd CreateCommand) (*entity.Requisition, error) {
	if err := policy.Authorize(policy.RequisitionCreate, cmd.Actor.Role); err != nil {
		return nil, err
	}
	if len(cmd.Lines) == 0 {
		return nil, domain.Invalid(entityName, "", "create", "se requiere al menos una línea")
	}
	seen := make(map[string]bool, len(cmd.Lines))
	for _, l := range cmd.Lines {
		if l.ItemID == "" || l.Quantity <= 0 {
			return nil, domain.Invalid(entityName, "", "create", "línea sin ítem o con cantidad no positiva")
		}
		if seen[l.ItemID] {
			return nil, domain.Invalid(entityName, "", "create", "ítem repetido: "+l.ItemID)
		}
		seen[l.ItemID] = true
	}
	if cmd.TargetOfficeID != "" {
		office, err := uc.directory.User(ctx, cmd.TargetOfficeID)
		if err != nil {
			return nil, err
		}
		if !office.IsActive() || office.Role != entity.RoleSupply {
			return nil, domain.Invalid(entityName, "", "create", "la oficina destino no es una cuenta de suministros activa")
		}
	}

	var out *entity.Requisition
	err := uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		now := uc.clock.Now()
		r := &entity.Requisition{
			ID:             uuid.New().String(),
			Number:         requestNumber(now),
			RequesterID:    cmd.Actor.ID,
			TargetOfficeID: cmd.TargetOfficeID,
			Status:         entity.RequisitionPending,
			Urgency:        cmd.Urgency,
			Notes:          cmd.Notes,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		for _, l := range cmd.Lines {
			item, err := repos.Items.GetByID(ctx, l.ItemID)
			if err != nil {
				return err
			}
			if item == nil {
				return fmt.Errorf("ítem %s: %w", l.ItemID, domain.ErrNotFound)
			}
			if !item.IsActive() {
				return domain.Conflict("item", item.ID, item.Status, "request", "ítem eliminado")
			}
			r.Lines = append(r.Lines, entity.RequisitionLine{
				ID:            uuid.New().String(),
				RequisitionID: r.ID,
				ItemID:        l.ItemID,
				Quantity:      l.Quantity,
				Status:        entity.LinePending,
			})
		}
		if err := repos.Requisitions.Create(ctx, r); err != nil {
			return err
		}
		if err := audit(ctx, repos, r, "created", cmd.Actor.ID, now, map[string]any{"lines": len(r.Lines)}); err != nil {
			return err
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.events.Dispatch(ctx, notify.Event(entity.EventRequisitionCreated, out.ID, cmd.Actor.ID, out.CreatedAt,
		map[string]string{"number": out.Number}, nonEmpty(out.TargetOfficeID)...))
	return out, nil
}

// requestNumber "SR-YYYYMMDD-XXXXXXXX".
func requestNumber(now time.Time) string {
	token := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return "SR-" + now.Format("20060102") + "-" + token
}

// ── Transiciones ──────────────────────────────────────────────────────────────

// Cancel pending → cancelled; sólo el solicitante.
func (uc *UseCase) Cancel(ctx context.Context, cmd RejectCommand) (*entity.Requisition, error) {
	return uc.execute(ctx, cmd.Actor, cmd.RequisitionID, step{
		action:    policy.RequisitionCancel,
		to:        entity.RequisitionCancelled,
		requested: "cancel",
		event:     entity.EventRequisitionCancelled,
		notify:    func(r *entity.Requisition) []string { return nonEmpty(r.TargetOfficeID) },
		apply: func(_ context.Context, _ repository.TxRepos, r *entity.Requisition, now time.Time) error {
			r.CancelledBy = cmd.Actor.ID
			r.CancelledAt = &now
			if cmd.Reason != "" {
				r.RejectionReason = cmd.Reason
			}
			return nil
		},
	})
}

// OfficeApprove pending → supply_approved. No toca stock.
func (uc *UseCase) OfficeApprove(ctx context.Context, cmd TransitionCommand) (*entity.Requisition, error) {
	return uc.execute(ctx, cmd.Actor, cmd.RequisitionID, step{
		action:    policy.RequisitionOfficeApprove,
		to:        entity.RequisitionSupplyApproved,
		requested: "office_approve",
		event:     entity.EventRequisitionOfficeApproved,
		notify:    func(r *entity.Requisition) []string { return nonEmpty(r.RequesterID) },
		apply: func(_ context.Context, _ repository.TxRepos, r *entity.Requisition, now time.Time) error {
			r.OfficeApprovedBy = cmd.Actor.ID
			r.OfficeApprovedAt = &now
			if r.TargetOfficeID == "" {
				r.TargetOfficeID = cmd.Actor.ID
			}
			return nil
		},
	})
}

// AssignApprover supply_approved → admin_assigned. El destinatario debe ser
// un aprobador (o administrador) activo.
func (uc *UseCase) AssignApprover(ctx context.Context, cmd AssignCommand) (*entity.Requisition, error) {
	if cmd.ApproverID == "" {
		return nil, domain.Invalid(entityName, cmd.RequisitionID, "assign", "approver_id requerido")
	}
	approver, err := uc.directory.User(ctx, cmd.ApproverID)
	if err != nil {
		return nil, err
	}
	if approver == nil {
		return nil, fmt.Errorf("aprobador %s: %w", cmd.ApproverID, domain.ErrNotFound)
	}
	if !approver.IsActive() || (approver.Role != entity.RoleApprover && approver.Role != entity.RoleAdmin) {
		return nil, domain.Invalid(entityName, cmd.RequisitionID, "assign", "el destinatario no es un aprobador activo")
	}
	return uc.execute(ctx, cmd.Actor, cmd.RequisitionID, step{
		action:    policy.RequisitionAssignApprover,
		to:        entity.RequisitionAdminAssigned,
		requested: "assign",
		event:     entity.EventRequisitionAssigned,
		notify:    func(r *entity.Requisition) []string { return nonEmpty(r.AssignedApproverID, r.RequesterID) },
		apply: func(_ context.Context, _ repository.TxRepos, r *entity.Requisition, now time.Time) error {
			r.AssignedApproverID = cmd.ApproverID
			r.AssignedBy = cmd.Actor.ID
			r.AssignedAt = &now
			return nil
		},
	})
}

// Approve admin_assigned → approved. Valida stock de las líneas no rechazadas
// sin descontar y genera el comprobante antes del commit: si el generador
// falla, la transición completa se aborta.
func (uc *UseCase) Approve(ctx context.Context, cmd TransitionCommand) (*entity.Requisition, error) {
	return uc.execute(ctx, cmd.Actor, cmd.RequisitionID, step{
		action:    policy.RequisitionApprove,
		to:        entity.RequisitionApproved,
		requested: "approve",
		event:     entity.EventRequisitionApproved,
		notify:    func(r *entity.Requisition) []string { return nonEmpty(r.RequesterID, r.TargetOfficeID) },
		apply: func(ctx context.Context, repos repository.TxRepos, r *entity.Requisition, now time.Time) error {
			lines, err := checkStock(ctx, repos, r)
			if err != nil {
				return err
			}
			r.ApprovedBy = cmd.Actor.ID
			r.ApprovedAt = &now
			if cmd.Notes != "" {
				r.Notes = strings.TrimSpace(r.Notes + "\n" + cmd.Notes)
			}
			ref, err := uc.generateReceipt(ctx, r, lines, now)
			if err != nil {
				return err
			}
			r.ReceiptRef = ref
			return nil
		},
	})
}

// MarkReadyForPickup approved → ready_for_pickup, con nueva verificación de stock.
func (uc *UseCase) MarkReadyForPickup(ctx context.Context, cmd ReadyCommand) (*entity.Requisition, error) {
	return uc.execute(ctx, cmd.Actor, cmd.RequisitionID, step{
		action:    policy.RequisitionMarkReady,
		to:        entity.RequisitionReadyForPickup,
		requested: "mark_ready",
		event:     entity.EventRequisitionReady,
		notify:    func(r *entity.Requisition) []string { return nonEmpty(r.RequesterID) },
		apply: func(ctx context.Context, repos repository.TxRepos, r *entity.Requisition, now time.Time) error {
			if cmd.PickupAt != nil && cmd.PickupAt.Before(now) {
				return domain.Invalid(entityName, r.ID, "mark_ready", "la fecha de retiro ya pasó")
			}
			if _, err := checkStock(ctx, repos, r); err != nil {
				return err
			}
			if r.ReceiptRef == "" {
				return domain.Conflict(entityName, r.ID, r.Status, "mark_ready", "sin comprobante generado")
			}
			r.ReadiedBy = cmd.Actor.ID
			r.ReadyAt = &now
			r.PickupAt = cmd.PickupAt
			if cmd.Notes != "" {
				r.FulfillmentNotes = cmd.Notes
			}
			return nil
		},
	})
}

// Fulfill ready_for_pickup → fulfilled. Re-verifica y descuenta cada línea no
// rechazada en la misma transacción, en orden de ItemID; un faltante aborta todo
// y reporta el déficit.
func (uc *UseCase) Fulfill(ctx context.Context, cmd TransitionCommand) (*entity.Requisition, error) {
	return uc.execute(ctx, cmd.Actor, cmd.RequisitionID, step{
		action:    policy.RequisitionFulfill,
		to:        entity.RequisitionFulfilled,
		requested: "fulfill",
		event:     entity.EventRequisitionFulfilled,
		notify:    func(r *entity.Requisition) []string { return nonEmpty(r.RequesterID, r.AssignedApproverID) },
		apply: func(ctx context.Context, repos repository.TxRepos, r *entity.Requisition, now time.Time) error {
			reason := "requisición " + r.Number
			for _, l := range r.ActiveLinesByItem() {
				if _, err := uc.ledger.DeductInTx(ctx, repos, l.ItemID, l.Quantity, cmd.Actor.ID, r.ID, reason, now); err != nil {
					return err
				}
			}
			r.FulfilledBy = cmd.Actor.ID
			r.FulfilledAt = &now
			if cmd.Notes != "" {
				r.FulfillmentNotes = cmd.Notes
			}
			return nil
		},
	})
}

// Reject lleva una requisición abierta a rejected. Con aprobador asignado,
// sólo éste puede rechazar.
func (uc *UseCase) Reject(ctx context.Context, cmd RejectCommand) (*entity.Requisition, error) {
	if strings.TrimSpace(cmd.Reason) == "" {
		return nil, domain.Invalid(entityName, cmd.RequisitionID, "reject", "motivo requerido")
	}
	return uc.execute(ctx, cmd.Actor, cmd.RequisitionID, step{
		actionFor: rejectAction,
		to:        entity.RequisitionRejected,
		requested: "reject",
		event:     entity.EventRequisitionRejected,
		notify:    func(r *entity.Requisition) []string { return nonEmpty(r.RequesterID) },
		apply: func(_ context.Context, _ repository.TxRepos, r *entity.Requisition, now time.Time) error {
			r.RejectedBy = cmd.Actor.ID
			r.RejectedAt = &now
			r.RejectionReason = cmd.Reason
			return nil
		},
	})
}

// RejectLine rechaza una línea; debe quedar al menos una línea vigente.
func (uc *UseCase) RejectLine(ctx context.Context, cmd LineCommand) (*entity.Requisition, error) {
	if strings.TrimSpace(cmd.Reason) == "" {
		return nil, domain.Invalid(entityName, cmd.RequisitionID, "reject_line", "motivo requerido")
	}
	return uc.execute(ctx, cmd.Actor, cmd.RequisitionID, step{
		actionFor: rejectAction,
		requested: "reject_line",
		event:     entity.EventRequisitionLineRejected,
		notify:    func(r *entity.Requisition) []string { return nonEmpty(r.RequesterID) },
		apply: func(_ context.Context, _ repository.TxRepos, r *entity.Requisition, now time.Time) error {
			line, err := openLine(r, cmd.LineID, "reject_line")
			if err != nil {
				return err
			}
			if line.Status == entity.LineRejected {
				return domain.AlreadyProcessed("requisition_line", line.ID, line.Status, "reject_line")
			}
			if len(r.ActiveLines()) <= 1 {
				return domain.Conflict(entityName, r.ID, r.Status, "reject_line",
					"es la última línea vigente; rechace la requisición completa")
			}
			line.Status = entity.LineRejected
			line.RejectionReason = cmd.Reason
			line.RejectedBy = cmd.Actor.ID
			line.RejectedAt = &now
			return nil
		},
	})
}

// RestoreLine devuelve una línea rechazada a pending mientras la requisición siga abierta.
func (uc *UseCase) RestoreLine(ctx context.Context, cmd LineCommand) (*entity.Requisition, error) {
	return uc.execute(ctx, cmd.Actor, cmd.RequisitionID, step{
		actionFor: rejectAction,
		requested: "restore_line",
		event:     entity.EventRequisitionLineRestored,
		notify:    func(r *entity.Requisition) []string { return nonEmpty(r.RequesterID) },
		apply: func(_ context.Context, _ repository.TxRepos, r *entity.Requisition, _ time.Time) error {
			line, err := openLine(r, cmd.LineID, "restore_line")
			if err != nil {
				return err
			}
			if line.Status != entity.LineRejected {
				return domain.AlreadyProcessed("requisition_line", line.ID, line.Status, "restore_line")
			}
			line.Status = entity.LinePending
			line.RejectionReason = ""
			line.RejectedBy = ""
			line.RejectedAt = nil
			return nil
		},
	})
}

// ── Consultas ─────────────────────────────────────────────────────────────────

// Get devuelve la requisición si el actor puede verla.
func (uc *UseCase) Get(ctx context.Context, actor entity.Actor, id string) (*entity.Requisition, error) {
	r, err := uc.requisitions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.ErrNotFound
	}
	if err := policy.Authorize(policy.RequisitionRead, actor.Role, relations(r, actor)...); err != nil {
		return nil, err
	}
	return r, nil
}

// List lista requisiciones; un solicitante sólo ve las propias.
func (uc *UseCase) List(ctx context.Context, actor entity.Actor, f repository.RequisitionFilter) ([]*entity.Requisition, error) {
	if !policy.Allowed(policy.RequisitionRead, actor.Role, policy.Any) {
		f.RequesterID = actor.ID
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	return uc.requisitions.List(ctx, f)
}

// Receipt bytes del comprobante generado en la aprobación.
func (uc *UseCase) Receipt(ctx context.Context, actor entity.Actor, id string) ([]byte, *entity.Requisition, error) {
	r, err := uc.Get(ctx, actor, id)
	if err != nil {
		return nil, nil, err
	}
	if r.ReceiptRef == "" {
		return nil, nil, domain.ErrNotFound
	}
	data, err := uc.artifacts.Fetch(ctx, r.ReceiptRef)
	if err != nil {
		return nil, nil, &domain.DependencyError{Dependency: "artifacts", Err: err}
	}
	return data, r, nil
}

// ── Núcleo ────────────────────────────────────────────────────────────────────

type step struct {
	action    policy.Action
	actionFor func(r *entity.Requisition) policy.Action
	to        string // vacío: la operación no cambia el estado agregado
	requested string
	apply     func(ctx context.Context, repos repository.TxRepos, r *entity.Requisition, now time.Time) error
	event     string
	notify    func(r *entity.Requisition) []string
}

// execute bloquea la requisición, valida estado y capacidad, aplica el paso y
// persiste junto con la bitácora. Cualquier error deja todo sin cambios.
func (uc *UseCase) execute(ctx context.Context, actor entity.Actor, id string, s step) (*entity.Requisition, error) {
	if id == "" {
		return nil, domain.Invalid(entityName, "", s.requested, "id requerido")
	}
	var out *entity.Requisition
	err := uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		now := uc.clock.Now()
		r, err := repos.Requisitions.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if r == nil {
			return domain.ErrNotFound
		}
		if s.to != "" {
			if r.Status == s.to {
				return domain.AlreadyProcessed(entityName, r.ID, r.Status, s.requested)
			}
			if !entity.CanTransitionRequisition(r.Status, s.to) {
				return domain.Conflict(entityName, r.ID, r.Status, s.requested, "transición no permitida")
			}
		} else if !r.IsOpen() {
			return domain.Conflict(entityName, r.ID, r.Status, s.requested, "la requisición ya no está abierta")
		}
		action := s.action
		if s.actionFor != nil {
			action = s.actionFor(r)
		}
		if !policy.Allowed(action, actor.Role, relations(r, actor)...) {
			return domain.Forbidden(entityName, r.ID, r.Status, s.requested,
				fmt.Sprintf("rol %q sin capacidad para %s", actor.Role, action))
		}
		from := r.Status
		if err := s.apply(ctx, repos, r, now); err != nil {
			return err
		}
		if s.to != "" {
			r.Status = s.to
		}
		r.UpdatedAt = now
		if err := repos.Requisitions.Update(ctx, r); err != nil {
			return err
		}
		if err := audit(ctx, repos, r, s.requested, actor.ID, now, map[string]any{
			"from": from, "to": r.Status, "lines": lineSummary(r),
		}); err != nil {
			return err
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	var recipients []string
	if s.notify != nil {
		recipients = s.notify(out)
	}
	uc.events.Dispatch(ctx, notify.Event(s.event, out.ID, actor.ID, out.UpdatedAt,
		map[string]string{"number": out.Number, "status": out.Status}, recipients...))
	return out, nil
}

func rejectAction(r *entity.Requisition) policy.Action {
	if r.AssignedApproverID != "" {
		return policy.RequisitionRejectAssigned
	}
	return policy.RequisitionReject
}

// relations vínculos del actor con la requisición para la matriz de capacidades.
func relations(r *entity.Requisition, a entity.Actor) []policy.Relation {
	var rels []policy.Relation
	if r.RequesterID == a.ID {
		rels = append(rels, policy.Requester)
	}
	if r.TargetOfficeID == "" || r.TargetOfficeID == a.ID {
		rels = append(rels, policy.TargetOffice)
	}
	if r.AssignedApproverID != "" && r.AssignedApproverID == a.ID {
		rels = append(rels, policy.AssignedApprover)
	}
	return rels
}

func openLine(r *entity.Requisition, lineID, requested string) (*entity.RequisitionLine, error) {
	if lineID == "" {
		return nil, domain.Invalid(entityName, r.ID, requested, "line_id requerido")
	}
	line, ok := r.Line(lineID)
	if !ok {
		return nil, fmt.Errorf("línea %s: %w", lineID, domain.ErrNotFound)
	}
	return line, nil
}

// checkStock verifica (sin descontar) que cada línea vigente quepa en el stock actual.
func checkStock(ctx context.Context, repos repository.TxRepos, r *entity.Requisition) ([]ports.ReceiptLine, error) {
	active := r.ActiveLines()
	lines := make([]ports.ReceiptLine, 0, len(active))
	for _, l := range active {
		item, err := repos.Items.GetByID(ctx, l.ItemID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, fmt.Errorf("ítem %s: %w", l.ItemID, domain.ErrNotFound)
		}
		if !item.IsActive() {
			return nil, domain.Conflict("item", item.ID, item.Status, "stock_check", "ítem eliminado")
		}
		if item.Quantity < l.Quantity {
			return nil, &domain.InsufficientStockError{ItemID: item.ID, Needed: l.Quantity, Available: item.Quantity}
		}
		lines = append(lines, ports.ReceiptLine{ItemName: item.Name, ItemUUID: item.UUID, Quantity: l.Quantity})
	}
	return lines, nil
}

func (uc *UseCase) generateReceipt(ctx context.Context, r *entity.Requisition, lines []ports.ReceiptLine, now time.Time) (string, error) {
	if uc.artifacts == nil {
		return "", &domain.DependencyError{Dependency: "artifacts", Err: fmt.Errorf("generador no configurado")}
	}
	doc := ports.ReceiptDocument{Requisition: *r, Lines: lines, IssuedAt: now}
	if u, err := uc.directory.User(ctx, r.RequesterID); err == nil && u != nil {
		doc.RequesterName = u.Name
	}
	if u, err := uc.directory.User(ctx, r.ApprovedBy); err == nil && u != nil {
		doc.ApproverName = u.Name
	}
	ref, err := uc.artifacts.GenerateRequisitionReceipt(ctx, doc)
	if err != nil {
		uc.log.Error().Err(err).Str("requisition_id", r.ID).Msg("generar comprobante")
		return "", &domain.DependencyError{Dependency: "artifacts", Err: err}
	}
	return ref, nil
}

func audit(ctx context.Context, repos repository.TxRepos, r *entity.Requisition, action, actorID string, now time.Time, detail map[string]any) error {
	raw, err := json.Marshal(detail)
	if err != nil {
		return err
	}
	return repos.Audit.Create(ctx, &entity.AuditRecord{
		ID:         uuid.New().String(),
		EntityType: entityName,
		EntityID:   r.ID,
		Action:     action,
		ActorID:    actorID,
		Detail:     raw,
		CreatedAt:  now,
	})
}

// lineSummary estado de cada línea para la bitácora ("item:qty:status").
func lineSummary(r *entity.Requisition) []string {
	out := make([]string, 0, len(r.Lines))
	for _, l := range r.Lines {
		out = append(out, l.ItemID+":"+strconv.Itoa(l.Quantity)+":"+l.Status)
	}
	return out
}

func nonEmpty(ids ...string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}
