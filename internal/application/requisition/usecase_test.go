package requisition_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinventory "github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/inventory"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/notify"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/ports"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/requisition"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/repository"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/infrastructure/memory"
)

var (
	requester = entity.Actor{ID: "req-1", Role: entity.RoleRequester}
	supply    = entity.Actor{ID: "sup-1", Role: entity.RoleSupply}
	approver  = entity.Actor{ID: "apr-1", Role: entity.RoleApprover}
	otherApr  = entity.Actor{ID: "apr-2", Role: entity.RoleApprover}
	admin     = entity.Actor{ID: "adm-1", Role: entity.RoleAdmin}
	fixedNow  = time.Date(2025, 5, 6, 9, 0, 0, 0, time.UTC)
)

type fakeArtifacts struct {
	fail  bool
	calls int
	docs  map[string][]byte
}

func (f *fakeArtifacts) GenerateRequisitionReceipt(_ context.Context, doc ports.ReceiptDocument) (string, error) {
	f.calls++
	if f.fail {
		return "", errors.New("disco lleno")
	}
	if f.docs == nil {
		f.docs = map[string][]byte{}
	}
	ref := "receipts/" + doc.Requisition.Number + ".pdf"
	f.docs[ref] = []byte(fmt.Sprintf("%s:%d", doc.RequesterName, len(doc.Lines)))
	return ref, nil
}

func (f *fakeArtifacts) Fetch(_ context.Context, ref string) ([]byte, error) {
	b, ok := f.docs[ref]
	if !ok {
		return nil, errors.New("no existe")
	}
	return b, nil
}

type recordingSink struct {
	fail   bool
	events []entity.DomainEvent
}

func (s *recordingSink) Publish(_ context.Context, ev entity.DomainEvent) error {
	s.events = append(s.events, ev)
	if s.fail {
		return errors.New("broker caído")
	}
	return nil
}

type fixture struct {
	uc        *requisition.UseCase
	ledger    *appinventory.LedgerUseCase
	store     *memory.Store
	artifacts *fakeArtifacts
	sink      *recordingSink
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	for _, u := range []entity.User{
		{ID: requester.ID, Name: "Ana Solicitante", Role: entity.RoleRequester, Status: entity.UserStatusActive},
		{ID: supply.ID, Name: "Oficina Suministros", Role: entity.RoleSupply, Status: entity.UserStatusActive},
		{ID: approver.ID, Name: "Beto Aprobador", Role: entity.RoleApprover, Status: entity.UserStatusActive},
		{ID: otherApr.ID, Name: "Carla Aprobadora", Role: entity.RoleApprover, Status: entity.UserStatusActive},
		{ID: admin.ID, Name: "Admin", Role: entity.RoleAdmin, Status: entity.UserStatusActive},
	} {
		u := u
		u.Email = u.ID + "@example.org"
		require.NoError(t, store.Users().Create(ctx, &u))
	}
	for _, it := range []entity.Item{
		{ID: "item-1", UUID: "tok-1", Name: "Resma carta", Quantity: 10, UnitValue: decimal.NewFromInt(12), Status: entity.ItemStatusActive},
		{ID: "item-2", UUID: "tok-2", Name: "Tóner", Quantity: 3, UnitValue: decimal.NewFromInt(90), Status: entity.ItemStatusActive},
	} {
		it := it
		require.NoError(t, store.Repos().Items.Create(ctx, &it))
	}
	clock := ports.ClockFunc(func() time.Time { return fixedNow })
	sink := &recordingSink{}
	events := notify.NewDispatcher(sink, nil)
	ledger := appinventory.NewLedgerUseCase(store, clock, events)
	artifacts := &fakeArtifacts{}
	uc := requisition.NewUseCase(store, ledger, store.Repos().Requisitions, store.Directory(), artifacts, events, clock, nil)
	return &fixture{uc: uc, ledger: ledger, store: store, artifacts: artifacts, sink: sink}
}

func (f *fixture) create(t *testing.T, lines ...requisition.LineInput) *entity.Requisition {
	t.Helper()
	r, err := f.uc.Create(context.Background(), requisition.CreateCommand{
		Actor: requester, TargetOfficeID: supply.ID, Urgency: "normal", Lines: lines,
	})
	require.NoError(t, err)
	return r
}

// toReady lleva la requisición hasta ready_for_pickup.
func (f *fixture) toReady(t *testing.T, id string) *entity.Requisition {
	t.Helper()
	ctx := context.Background()
	_, err := f.uc.OfficeApprove(ctx, requisition.TransitionCommand{Actor: supply, RequisitionID: id})
	require.NoError(t, err)
	_, err = f.uc.AssignApprover(ctx, requisition.AssignCommand{Actor: supply, RequisitionID: id, ApproverID: approver.ID})
	require.NoError(t, err)
	_, err = f.uc.Approve(ctx, requisition.TransitionCommand{Actor: approver, RequisitionID: id})
	require.NoError(t, err)
	r, err := f.uc.MarkReadyForPickup(ctx, requisition.ReadyCommand{Actor: supply, RequisitionID: id})
	require.NoError(t, err)
	return r
}

func TestFlujoCompleto_DescuentaStockYRegistraActores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.create(t, requisition.LineInput{ItemID: "item-1", Quantity: 4}, requisition.LineInput{ItemID: "item-2", Quantity: 1})
	assert.Equal(t, entity.RequisitionPending, r.Status)
	assert.Regexp(t, `^SR-20250506-[0-9A-F]{8}$`, r.Number)

	r = f.toReady(t, r.ID)
	assert.NotEmpty(t, r.ReceiptRef)
	assert.Equal(t, 1, f.artifacts.calls)

	done, err := f.uc.Fulfill(ctx, requisition.TransitionCommand{Actor: supply, RequisitionID: r.ID})
	require.NoError(t, err)
	assert.Equal(t, entity.RequisitionFulfilled, done.Status)
	assert.Equal(t, supply.ID, done.OfficeApprovedBy)
	assert.Equal(t, supply.ID, done.AssignedBy)
	assert.Equal(t, approver.ID, done.ApprovedBy)
	assert.Equal(t, supply.ID, done.FulfilledBy)

	item, _ := f.store.Repos().Items.GetByID(ctx, "item-1")
	assert.Equal(t, 6, item.Quantity)
	item2, _ := f.store.Repos().Items.GetByID(ctx, "item-2")
	assert.Equal(t, 2, item2.Quantity)

	movs, err := f.store.Repos().Movements.ListByTransaction(ctx, r.ID)
	require.NoError(t, err)
	assert.Len(t, movs, 2)

	data, got, err := f.uc.Receipt(ctx, requester, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
	assert.Equal(t, "Ana Solicitante:2", string(data))
}

func TestFulfill_FaltanteTrasPrestamoAbortaSinCambios(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.create(t, requisition.LineInput{ItemID: "item-1", Quantity: 4})
	f.toReady(t, r.ID)

	// Un préstamo posterior a la aprobación deja 2 unidades.
	_, err := f.ledger.Deduct(ctx, appinventory.DeductCommand{Actor: supply, ItemID: "item-1", Amount: 8, Reason: "préstamo"})
	require.NoError(t, err)

	_, err = f.uc.Fulfill(ctx, requisition.TransitionCommand{Actor: supply, RequisitionID: r.ID})
	require.Error(t, err)
	var stockErr *domain.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 4, stockErr.Needed)
	assert.Equal(t, 2, stockErr.Available)

	cur, _ := f.store.Repos().Requisitions.GetByID(ctx, r.ID)
	assert.Equal(t, entity.RequisitionReadyForPickup, cur.Status)
	item, _ := f.store.Repos().Items.GetByID(ctx, "item-1")
	assert.Equal(t, 2, item.Quantity)
	movs, _ := f.store.Repos().Movements.ListByTransaction(ctx, r.ID)
	assert.Empty(t, movs)
}

func TestFulfill_FaltanteEnSegundaLineaNoDejaDescuentoParcial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.create(t, requisition.LineInput{ItemID: "item-1", Quantity: 2}, requisition.LineInput{ItemID: "item-2", Quantity: 3})
	f.toReady(t, r.ID)
	_, err := f.ledger.Deduct(ctx, appinventory.DeductCommand{Actor: supply, ItemID: "item-2", Amount: 2})
	require.NoError(t, err)

	_, err = f.uc.Fulfill(ctx, requisition.TransitionCommand{Actor: supply, RequisitionID: r.ID})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	item, _ := f.store.Repos().Items.GetByID(ctx, "item-1")
	assert.Equal(t, 10, item.Quantity)
}

func TestFulfill_BloqueaItemsEnOrdenDeID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.create(t, requisition.LineInput{ItemID: "item-2", Quantity: 3}, requisition.LineInput{ItemID: "item-1", Quantity: 10})
	f.toReady(t, r.ID)
	_, err := f.ledger.Deduct(ctx, appinventory.DeductCommand{Actor: supply, ItemID: "item-1", Amount: 5})
	require.NoError(t, err)
	_, err = f.ledger.Deduct(ctx, appinventory.DeductCommand{Actor: supply, ItemID: "item-2", Amount: 1})
	require.NoError(t, err)

	_, err = f.uc.Fulfill(ctx, requisition.TransitionCommand{Actor: supply, RequisitionID: r.ID})
	var short *domain.InsufficientStockError
	require.True(t, errors.As(err, &short))
	assert.Equal(t, "item-1", short.ItemID, "item-1 se bloquea antes que item-2 aunque la línea venga después")

	item2, _ := f.store.Repos().Items.GetByID(ctx, "item-2")
	assert.Equal(t, 2, item2.Quantity)
}

func TestApprove_SinStockSuficienteFalla(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.create(t, requisition.LineInput{ItemID: "item-2", Quantity: 5})
	_, err := f.uc.OfficeApprove(ctx, requisition.TransitionCommand{Actor: supply, RequisitionID: r.ID})
	require.NoError(t, err)
	_, err = f.uc.AssignApprover(ctx, requisition.AssignCommand{Actor: supply, RequisitionID: r.ID, ApproverID: approver.ID})
	require.NoError(t, err)

	_, err = f.uc.Approve(ctx, requisition.TransitionCommand{Actor: approver, RequisitionID: r.ID})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Zero(t, f.artifacts.calls)
}

func TestApprove_FalloDelGeneradorAbortaTransicion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.artifacts.fail = true
	r := f.create(t, requisition.LineInput{ItemID: "item-1", Quantity: 1})
	_, err := f.uc.OfficeApprove(ctx, requisition.TransitionCommand{Actor: supply, RequisitionID: r.ID})
	require.NoError(t, err)
	_, err = f.uc.AssignApprover(ctx, requisition.AssignCommand{Actor: supply, RequisitionID: r.ID, ApproverID: approver.ID})
	require.NoError(t, err)

	_, err = f.uc.Approve(ctx, requisition.TransitionCommand{Actor: approver, RequisitionID: r.ID})
	assert.ErrorIs(t, err, domain.ErrDependency)

	cur, _ := f.store.Repos().Requisitions.GetByID(ctx, r.ID)
	assert.Equal(t, entity.RequisitionAdminAssigned, cur.Status)
	assert.Empty(t, cur.ReceiptRef)
}

func TestApprove_SoloElAprobadorAsignado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.create(t, requisition.LineInput{ItemID: "item-1", Quantity: 1})
	_, err := f.uc.OfficeApprove(ctx, requisition.TransitionCommand{Actor: supply, RequisitionID: r.ID})
	require.NoError(t, err)
	_, err = f.uc.AssignApprover(ctx, requisition.AssignCommand{Actor: supply, RequisitionID: r.ID, ApproverID: approver.ID})
	require.NoError(t, err)

	_, err = f.uc.Approve(ctx, requisition.TransitionCommand{Actor: otherApr, RequisitionID: r.ID})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.uc.Approve(ctx, requisition.TransitionCommand{Actor: admin, RequisitionID: r.ID})
	assert.ErrorIs(t, err, domain.ErrForbidden, "ni siquiera un administrador no asignado")
}

func TestTransiciones_FueraDeOrdenYRepetidas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.create(t, requisition.LineInput{ItemID: "item-1", Quantity: 1})

	_, err := f.uc.Fulfill(ctx, requisition.TransitionCommand{Actor: supply, RequisitionID: r.ID})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.uc.OfficeApprove(ctx, requisition.TransitionCommand{Actor: supply, RequisitionID: r.ID})
	require.NoError(t, err)
	_, err = f.uc.OfficeApprove(ctx, requisition.TransitionCommand{Actor: supply, RequisitionID: r.ID})
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)

	_, err = f.uc.Cancel(ctx, requisition.RejectCommand{Actor: requester, RequisitionID: r.ID})
	assert.ErrorIs(t, err, domain.ErrConflict, "sólo se cancela en pending")

	_, err = f.uc.OfficeApprove(ctx, requisition.TransitionCommand{Actor: supply, RequisitionID: "no-existe"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReject_ReglasSegunAsignacion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Reject(ctx, requisition.RejectCommand{Actor: supply, RequisitionID: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "motivo obligatorio")

	r := f.create(t, requisition.LineInput{ItemID: "item-1", Quantity: 1})
	_, err = f.uc.Reject(ctx, requisition.RejectCommand{Actor: approver, RequisitionID: r.ID, Reason: "no"})
	assert.ErrorIs(t, err, domain.ErrForbidden, "sin asignación un aprobador no rechaza")

	_, err = f.uc.OfficeApprove(ctx, requisition.TransitionCommand{Actor: supply, RequisitionID: r.ID})
	require.NoError(t, err)
	_, err = f.uc.AssignApprover(ctx, requisition.AssignCommand{Actor: supply, RequisitionID: r.ID, ApproverID: approver.ID})
	require.NoError(t, err)

	_, err = f.uc.Reject(ctx, requisition.RejectCommand{Actor: supply, RequisitionID: r.ID, Reason: "no"})
	assert.ErrorIs(t, err, domain.ErrForbidden, "asignada: sólo el aprobador")

	out, err := f.uc.Reject(ctx, requisition.RejectCommand{Actor: approver, RequisitionID: r.ID, Reason: "sin presupuesto"})
	require.NoError(t, err)
	assert.Equal(t, entity.RequisitionRejected, out.Status)
	assert.Equal(t, approver.ID, out.RejectedBy)
	assert.Equal(t, "sin presupuesto", out.RejectionReason)
}

func TestRejectLine_NoRechazaLaUltimaYSeRestaura(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.create(t, requisition.LineInput{ItemID: "item-1", Quantity: 2}, requisition.LineInput{ItemID: "item-2", Quantity: 1})
	l1, l2 := r.Lines[0].ID, r.Lines[1].ID

	out, err := f.uc.RejectLine(ctx, requisition.LineCommand{Actor: supply, RequisitionID: r.ID, LineID: l2, Reason: "agotado"})
	require.NoError(t, err)
	assert.Len(t, out.ActiveLines(), 1)

	_, err = f.uc.RejectLine(ctx, requisition.LineCommand{Actor: supply, RequisitionID: r.ID, LineID: l1, Reason: "x"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.uc.RejectLine(ctx, requisition.LineCommand{Actor: supply, RequisitionID: r.ID, LineID: l2, Reason: "otra vez"})
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)

	out, err = f.uc.RestoreLine(ctx, requisition.LineCommand{Actor: supply, RequisitionID: r.ID, LineID: l2})
	require.NoError(t, err)
	assert.Len(t, out.ActiveLines(), 2)
}

func TestFulfill_LineasRechazadasNoSeDescuentan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.create(t, requisition.LineInput{ItemID: "item-1", Quantity: 2}, requisition.LineInput{ItemID: "item-2", Quantity: 3})
	_, err := f.uc.RejectLine(ctx, requisition.LineCommand{Actor: supply, RequisitionID: r.ID, LineID: r.Lines[1].ID, Reason: "agotado"})
	require.NoError(t, err)
	f.toReady(t, r.ID)

	_, err = f.uc.Fulfill(ctx, requisition.TransitionCommand{Actor: supply, RequisitionID: r.ID})
	require.NoError(t, err)
	item2, _ := f.store.Repos().Items.GetByID(ctx, "item-2")
	assert.Equal(t, 3, item2.Quantity)
	item1, _ := f.store.Repos().Items.GetByID(ctx, "item-1")
	assert.Equal(t, 8, item1.Quantity)

	trail, err := f.store.Repos().Audit.ListByEntity(ctx, "requisition", r.ID)
	require.NoError(t, err)
	require.NotEmpty(t, trail)
	last := trail[len(trail)-1]
	assert.Equal(t, "fulfill", last.Action)
	assert.Contains(t, string(last.Detail), "item-2:3:rejected")
}

func TestEventos_FalloDelSinkNoRevierte(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.sink.fail = true
	r := f.create(t, requisition.LineInput{ItemID: "item-1", Quantity: 1})

	out, err := f.uc.OfficeApprove(ctx, requisition.TransitionCommand{Actor: supply, RequisitionID: r.ID})
	require.NoError(t, err)
	assert.Equal(t, entity.RequisitionSupplyApproved, out.Status)
	require.Len(t, f.sink.events, 2)
	assert.Equal(t, entity.EventRequisitionOfficeApproved, f.sink.events[1].Type)
	assert.Equal(t, []string{requester.ID}, f.sink.events[1].Recipients)
}

func TestGetList_SolicitanteSoloVeLasPropias(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.create(t, requisition.LineInput{ItemID: "item-1", Quantity: 1})
	intruso := entity.Actor{ID: "req-9", Role: entity.RoleRequester}

	_, err := f.uc.Get(ctx, intruso, r.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	list, err := f.uc.List(ctx, intruso, repository.RequisitionFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = f.uc.List(ctx, supply, repository.RequisitionFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCreate_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.uc.Create(ctx, requisition.CreateCommand{Actor: requester})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.uc.Create(ctx, requisition.CreateCommand{Actor: requester, Lines: []requisition.LineInput{
		{ItemID: "item-1", Quantity: 1}, {ItemID: "item-1", Quantity: 2},
	}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.uc.Create(ctx, requisition.CreateCommand{Actor: requester, TargetOfficeID: approver.ID, Lines: []requisition.LineInput{
		{ItemID: "item-1", Quantity: 1},
	}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "la oficina destino debe ser de suministros")
	_, err = f.uc.Create(ctx, requisition.CreateCommand{Actor: requester, Lines: []requisition.LineInput{
		{ItemID: "no-existe", Quantity: 1},
	}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
