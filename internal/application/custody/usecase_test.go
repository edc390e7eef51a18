package custody_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appcustody "github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/custody"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/infrastructure/memory"
)

var (
	admin  = entity.Actor{ID: "adm", Role: entity.RoleAdmin}
	supply = entity.Actor{ID: "sup", Role: entity.RoleSupply}
	u1     = entity.Actor{ID: "u1", Role: entity.RoleRequester}
	u2     = entity.Actor{ID: "u2", Role: entity.RoleRequester}
)

// stepClock avanza un minuto en cada lectura salvo que esté congelado.
type stepClock struct {
	t      time.Time
	frozen bool
}

func (c *stepClock) Now() time.Time {
	if !c.frozen {
		c.t = c.t.Add(time.Minute)
	}
	return c.t
}

type fixture struct {
	uc    *appcustody.UseCase
	store *memory.Store
	clock *stepClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	users := []entity.User{
		{ID: admin.ID, Name: "Admin", Role: entity.RoleAdmin, Status: entity.UserStatusActive},
		{ID: supply.ID, Name: "Suministros", Role: entity.RoleSupply, Status: entity.UserStatusActive},
		{ID: u1.ID, Name: "Uno", Role: entity.RoleRequester, Status: entity.UserStatusActive},
		{ID: u2.ID, Name: "Dos", Role: entity.RoleRequester, Status: entity.UserStatusActive},
		{ID: "u3", Name: "Tres", Role: entity.RoleRequester, Status: entity.UserStatusInactive},
	}
	for i := range users {
		users[i].Email = users[i].ID + "@example.org"
		require.NoError(t, store.Users().Create(ctx, &users[i]))
	}
	require.NoError(t, store.Locations().Create(ctx, &entity.Location{ID: "loc-1", Name: "Bodega", Personnel: "Dos", PersonnelID: u2.ID}))
	require.NoError(t, store.Locations().Create(ctx, &entity.Location{ID: "loc-2", Name: "Pasillo"}))
	for _, id := range []string{"item-y", "item-z", "item-w"} {
		require.NoError(t, store.Repos().Items.Create(ctx, &entity.Item{
			ID: id, UUID: "tok-" + id, Name: "Equipo " + id, Quantity: 1,
			UnitValue: decimal.NewFromInt(500), Status: entity.ItemStatusActive,
		}))
	}
	clock := &stepClock{t: time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)}
	repos := store.Repos()
	uc := appcustody.NewUseCase(store, repos.Items, repos.Receipts, store.Directory(), nil, clock, nil)
	return &fixture{uc: uc, store: store, clock: clock}
}

func (f *fixture) issue(t *testing.T, itemID string, c entity.Custodian) *entity.CustodyReceipt {
	t.Helper()
	out, err := f.uc.Issue(context.Background(), appcustody.IssueCommand{Actor: supply, ItemID: itemID, Custodian: c})
	require.NoError(t, err)
	return out.Receipt
}

func (f *fixture) item(t *testing.T, id string) *entity.Item {
	t.Helper()
	it, err := f.store.Repos().Items.GetByID(context.Background(), id)
	require.NoError(t, err)
	return it
}

func TestIssue_FijaPunteroYRechazaDobleEmision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec := f.issue(t, "item-y", entity.UserCustodian(u1.ID))
	assert.Equal(t, entity.ReceiptIssued, rec.Status)
	assert.Equal(t, entity.CustodyPointer{UserID: u1.ID}, f.item(t, "item-y").Custody)

	_, err := f.uc.Issue(ctx, appcustody.IssueCommand{Actor: supply, ItemID: "item-y", Custodian: entity.UserCustodian(u1.ID)})
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)
	_, err = f.uc.Issue(ctx, appcustody.IssueCommand{Actor: supply, ItemID: "item-y", Custodian: entity.UserCustodian(u2.ID)})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.uc.Issue(ctx, appcustody.IssueCommand{Actor: supply, ItemID: "item-z", Custodian: entity.UserCustodian("u3")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "usuario inactivo")
	_, err = f.uc.Issue(ctx, appcustody.IssueCommand{Actor: supply, ItemID: "item-z", Custodian: entity.LocationCustodian("loc-2")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "ubicación sin responsable")
	_, err = f.uc.Issue(ctx, appcustody.IssueCommand{Actor: supply, ItemID: "item-z", Custodian: entity.Custodian{Kind: entity.CustodianUser}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.uc.Issue(ctx, appcustody.IssueCommand{Actor: u1, ItemID: "item-z", Custodian: entity.UserCustodian(u1.ID)})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestReturn_LiberaPuntero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec := f.issue(t, "item-y", entity.LocationCustodian("loc-1"))

	out, err := f.uc.Return(ctx, appcustody.ReturnCommand{Actor: supply, ReceiptID: rec.ID, Note: "fin de préstamo"})
	require.NoError(t, err)
	assert.Equal(t, entity.ReceiptReturned, out.Receipt.Status)
	require.NotNil(t, out.Receipt.ReturnedAt)
	assert.True(t, f.item(t, "item-y").Custody.IsEmpty())

	_, err = f.uc.Return(ctx, appcustody.ReturnCommand{Actor: supply, ReceiptID: rec.ID})
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)
}

func TestReassign_CierraConMarcaYAbreNuevoRecibo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	old := f.issue(t, "item-y", entity.UserCustodian(u1.ID))

	out, err := f.uc.Reassign(ctx, appcustody.ReassignCommand{Actor: admin, ReceiptID: old.ID, Target: entity.UserCustodian(u2.ID)})
	require.NoError(t, err)

	closed := out.Receipt
	assert.Equal(t, entity.ReceiptReturned, closed.Status)
	assert.True(t, closed.Remarks.Reassigned)
	assert.Equal(t, entity.UserCustodian(u1.ID), closed.Custodian)
	require.NotNil(t, closed.ReassignedTo)
	assert.Equal(t, entity.UserCustodian(u2.ID), *closed.ReassignedTo)

	require.NotNil(t, out.Opened)
	assert.Equal(t, entity.ReceiptIssued, out.Opened.Status)
	assert.Equal(t, entity.UserCustodian(u2.ID), out.Opened.Custodian)
	assert.Equal(t, old.ID, out.Opened.PreviousReceiptID)
	assert.Equal(t, out.Opened.ID, closed.SupersededBy)
	assert.Equal(t, *closed.ReturnedAt, out.Opened.IssuedAt, "el sucesor se emite en el instante del cierre")
	assert.Equal(t, entity.CustodyPointer{UserID: u2.ID}, f.item(t, "item-y").Custody)

	hist, err := f.uc.History(ctx, u1, "item-y")
	require.NoError(t, err, "el custodio anterior ve el historial")
	require.Len(t, hist, 2)
	assert.Equal(t, old.ID, hist[0].ID)
	assert.Equal(t, out.Opened.ID, hist[1].ID)

	_, err = f.uc.Reassign(ctx, appcustody.ReassignCommand{Actor: supply, ReceiptID: out.Opened.ID, Target: entity.UserCustodian(u1.ID)})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.uc.Reassign(ctx, appcustody.ReassignCommand{Actor: admin, ReceiptID: out.Opened.ID, Target: entity.UserCustodian(u2.ID)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReassign_MismoInstanteNoInvierteElOrden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	old := f.issue(t, "item-y", entity.UserCustodian(u1.ID))
	f.clock.frozen = true

	out, err := f.uc.Reassign(ctx, appcustody.ReassignCommand{Actor: admin, ReceiptID: old.ID, Target: entity.UserCustodian(u2.ID)})
	require.NoError(t, err)
	back, err := f.uc.Return(ctx, appcustody.ReturnCommand{Actor: supply, ReceiptID: out.Opened.ID})
	require.NoError(t, err)

	assert.False(t, back.Receipt.ReturnedAt.Before(back.Receipt.IssuedAt), "devuelto antes de emitido")
	assert.Equal(t, *out.Receipt.ReturnedAt, out.Opened.IssuedAt)

	cands, err := f.uc.ListReissuable(ctx, supply)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, out.Opened.ID, cands[0].LastReturn.ID, "con igual fecha gana el recibo sucesor")
	assert.Equal(t, entity.UserCustodian(u2.ID), cands[0].PreviousOwner)
}

func TestReportadoPerdidoYEncontrado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec := f.issue(t, "item-z", entity.UserCustodian(u1.ID))

	_, err := f.uc.ReportLostOrDamaged(ctx, appcustody.ReportCommand{Actor: u2, ReceiptID: rec.ID, Type: entity.ReceiptLost, Description: "no es mío"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	loss := decimal.NewFromInt(500)
	out, err := f.uc.ReportLostOrDamaged(ctx, appcustody.ReportCommand{
		Actor: u1, ReceiptID: rec.ID, Type: entity.ReceiptLost, Description: "olvidado en el bus", EstimatedValueLoss: &loss,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ReceiptLost, out.Receipt.Status)
	require.NotNil(t, out.Receipt.Remarks.Incident)
	assert.True(t, out.Receipt.Remarks.Incident.SelfReported)
	assert.Equal(t, "Uno", out.Receipt.Remarks.Incident.ReportedByName)
	assert.Equal(t, entity.CustodyPointer{UserID: u1.ID}, f.item(t, "item-z").Custody, "el puntero se conserva")

	found, err := f.uc.ReturnFound(ctx, appcustody.RecoverCommand{Actor: supply, ReceiptID: rec.ID, Notes: "apareció en portería"})
	require.NoError(t, err)
	assert.Equal(t, entity.ReceiptReturned, found.Receipt.Status)
	require.NotNil(t, found.Receipt.Remarks.Recovery)
	assert.Equal(t, entity.ReceiptLost, found.Receipt.Remarks.Recovery.OriginalStatus)

	require.NotNil(t, found.Opened)
	assert.Equal(t, entity.ReceiptIssued, found.Opened.Status)
	assert.Equal(t, entity.UserCustodian(u1.ID), found.Opened.Custodian)
	assert.Equal(t, *found.Receipt.ReturnedAt, found.Opened.IssuedAt)
	require.NotNil(t, found.Opened.Remarks.Recovery)
	assert.Equal(t, "apareció en portería", found.Opened.Remarks.Recovery.Info.Notes)
	assert.Equal(t, entity.CustodyPointer{UserID: u1.ID}, f.item(t, "item-z").Custody)

	_, err = f.uc.ReturnFound(ctx, appcustody.RecoverCommand{Actor: supply, ReceiptID: rec.ID})
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)
}

func TestReporteYRecuperacion_IdaYVuelta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec := f.issue(t, "item-w", entity.LocationCustodian("loc-1"))

	// el responsable de la ubicación puede reportar
	_, err := f.uc.ReportLostOrDamaged(ctx, appcustody.ReportCommand{Actor: u2, ReceiptID: rec.ID, Type: entity.ReceiptDamaged, Description: "pantalla rota"})
	require.NoError(t, err)

	_, err = f.uc.Recover(ctx, appcustody.RecoverCommand{Actor: u2, ReceiptID: rec.ID})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	out, err := f.uc.Recover(ctx, appcustody.RecoverCommand{Actor: admin, ReceiptID: rec.ID, Notes: "reparado"})
	require.NoError(t, err)
	assert.Equal(t, entity.ReceiptIssued, out.Receipt.Status)
	env := out.Receipt.Remarks.Recovery
	require.NotNil(t, env)
	assert.Equal(t, 1, env.IncidentCount)
	assert.Equal(t, entity.ReceiptDamaged, env.OriginalStatus)
	assert.Equal(t, entity.CustodyPointer{LocationID: "loc-1"}, f.item(t, "item-w").Custody)

	out, err = f.uc.ReportLostOrDamaged(ctx, appcustody.ReportCommand{Actor: admin, ReceiptID: rec.ID, Type: entity.ReceiptLost, Description: "otra vez"})
	require.NoError(t, err)
	inc := out.Receipt.Remarks.Incident
	require.NotNil(t, inc)
	assert.Equal(t, 2, inc.Number)
	assert.True(t, inc.RepeatIncident)
	assert.False(t, inc.SelfReported)
	assert.Len(t, inc.PreviousIncidents, 1)

	out, err = f.uc.Recover(ctx, appcustody.RecoverCommand{Actor: admin, ReceiptID: rec.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Receipt.Remarks.Recovery.IncidentCount)

	_, err = f.uc.Recover(ctx, appcustody.RecoverCommand{Actor: admin, ReceiptID: rec.ID})
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)
}

func TestFormalize_Idempotente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.item(t, "item-y")
	it.Custody = entity.CustodyPointer{UserID: u1.ID}
	require.NoError(t, f.store.Repos().Items.Update(ctx, it))

	view, err := f.uc.EffectiveCustodyView(ctx, admin, nil)
	require.NoError(t, err)
	var virtual int
	for _, e := range view.Entries {
		if e.Virtual {
			virtual++
		}
	}
	assert.Equal(t, 1, virtual)

	first, created, err := f.uc.Formalize(ctx, admin, "item-y")
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, first.Formalized)
	assert.Equal(t, entity.UserCustodian(u1.ID), first.Custodian)

	second, created, err := f.uc.Formalize(ctx, admin, "item-y")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	hist, err := f.uc.History(ctx, admin, "item-y")
	require.NoError(t, err)
	assert.Len(t, hist, 1)
	assert.Equal(t, entity.CustodyPointer{UserID: u1.ID}, f.item(t, "item-y").Custody)

	_, _, err = f.uc.Formalize(ctx, admin, "item-z")
	assert.ErrorIs(t, err, domain.ErrConflict, "sin puntero no hay nada que formalizar")
}

func TestFormalizeCustodian(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, id := range []string{"item-y", "item-z"} {
		it := f.item(t, id)
		it.Custody = entity.CustodyPointer{LocationID: "loc-1"}
		require.NoError(t, f.store.Repos().Items.Update(ctx, it))
	}
	sum, err := f.uc.FormalizeCustodian(ctx, admin, entity.LocationCustodian("loc-1"))
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Succeeded)
	assert.Zero(t, sum.Failed)
	for _, r := range sum.Results {
		assert.NotEmpty(t, r.NewReceiptID)
	}
}

func TestBulkClear_FalloParcialNoDetieneElResto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ry := f.issue(t, "item-y", entity.UserCustodian(u1.ID))
	rz := f.issue(t, "item-z", entity.UserCustodian(u1.ID))
	rw := f.issue(t, "item-w", entity.UserCustodian(u1.ID))
	target := entity.LocationCustodian("loc-1")

	sum, err := f.uc.BulkClear(ctx, appcustody.BulkClearCommand{
		Actor:       admin,
		Custodian:   entity.UserCustodian(u1.ID),
		Description: "retiro del funcionario",
		Entries: []appcustody.BulkEntry{
			{ReceiptID: ry.ID, Action: appcustody.BulkReturn},
			{ReceiptID: rz.ID, Action: appcustody.BulkReassign, Target: &target},
			{ReceiptID: "no-existe", Action: appcustody.BulkReturn},
			{ReceiptID: rw.ID, Action: appcustody.BulkLost},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Succeeded)
	assert.Equal(t, 1, sum.Failed)
	assert.NotEmpty(t, sum.Results[2].Error)
	assert.NotEmpty(t, sum.Results[1].NewReceiptID)

	assert.True(t, f.item(t, "item-y").Custody.IsEmpty())
	assert.Equal(t, target.Pointer(), f.item(t, "item-z").Custody)
	assert.Equal(t, entity.CustodyPointer{UserID: u1.ID}, f.item(t, "item-w").Custody)

	_, err = f.uc.BulkClear(ctx, appcustody.BulkClearCommand{Actor: supply, Custodian: entity.UserCustodian(u1.ID), Entries: []appcustody.BulkEntry{{ReceiptID: ry.ID, Action: appcustody.BulkReturn}}})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestBulkClear_SoloRecibosDelCustodio(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mine := f.issue(t, "item-y", entity.UserCustodian(u1.ID))
	bodega := entity.LocationCustodian("loc-1")
	foreign := f.issue(t, "item-z", bodega)

	sum, err := f.uc.BulkClear(ctx, appcustody.BulkClearCommand{
		Actor:     admin,
		Custodian: entity.UserCustodian(u1.ID),
		Entries: []appcustody.BulkEntry{
			{ReceiptID: mine.ID, Action: appcustody.BulkReturn},
			{ReceiptID: foreign.ID, Action: appcustody.BulkReturn},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Succeeded)
	assert.Equal(t, 1, sum.Failed)
	assert.Contains(t, sum.Results[1].Error, "no pertenece")

	assert.True(t, f.item(t, "item-y").Custody.IsEmpty())
	assert.Equal(t, bodega.Pointer(), f.item(t, "item-z").Custody, "el ítem de la ubicación sigue asignado")
	still, err := f.uc.Get(ctx, admin, foreign.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReceiptIssued, still.Status)

	_, err = f.uc.BulkClear(ctx, appcustody.BulkClearCommand{Actor: admin, Entries: []appcustody.BulkEntry{{ReceiptID: mine.ID, Action: appcustody.BulkReturn}}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReissue_DesdeUltimaDevolucion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.issue(t, "item-y", entity.UserCustodian(u1.ID))
	_, err := f.uc.Return(ctx, appcustody.ReturnCommand{Actor: supply, ReceiptID: first.ID})
	require.NoError(t, err)
	second := f.issue(t, "item-y", entity.UserCustodian(u2.ID))
	_, err = f.uc.Return(ctx, appcustody.ReturnCommand{Actor: supply, ReceiptID: second.ID})
	require.NoError(t, err)

	cands, err := f.uc.ListReissuable(ctx, supply)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, second.ID, cands[0].LastReturn.ID)
	assert.Equal(t, entity.UserCustodian(u2.ID), cands[0].PreviousOwner)

	_, err = f.uc.Reissue(ctx, appcustody.ReissueCommand{Actor: supply, ReceiptID: first.ID, Target: entity.UserCustodian(u1.ID)})
	assert.ErrorIs(t, err, domain.ErrConflict, "una devolución antigua no habilita reemisión")

	out, err := f.uc.Reissue(ctx, appcustody.ReissueCommand{Actor: supply, ReceiptID: second.ID, Target: entity.UserCustodian(u1.ID)})
	require.NoError(t, err)
	assert.Equal(t, second.ID, out.Opened.PreviousReceiptID)
	assert.Equal(t, entity.CustodyPointer{UserID: u1.ID}, f.item(t, "item-y").Custody)

	cands, err = f.uc.ListReissuable(ctx, supply)
	require.NoError(t, err)
	assert.Empty(t, cands)

	_, err = f.uc.Reissue(ctx, appcustody.ReissueCommand{Actor: supply, ReceiptID: second.ID, Target: entity.UserCustodian(u2.ID)})
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)
}

func TestEffectiveCustodyView_Permisos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.issue(t, "item-y", entity.UserCustodian(u1.ID))
	f.issue(t, "item-z", entity.UserCustodian(u2.ID))

	_, err := f.uc.EffectiveCustodyView(ctx, u1, nil)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	mine := entity.UserCustodian(u1.ID)
	view, err := f.uc.EffectiveCustodyView(ctx, u1, &mine)
	require.NoError(t, err)
	require.Len(t, view.Entries, 1)
	assert.Equal(t, "item-y", view.Entries[0].Item.ID)

	other := entity.UserCustodian(u2.ID)
	_, err = f.uc.EffectiveCustodyView(ctx, u1, &other)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestBackfill_SoloReparaLoDeterminado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repos := f.store.Repos()

	// item-y: recibo vigente sin puntero (reparable)
	f.issue(t, "item-y", entity.UserCustodian(u1.ID))
	it := f.item(t, "item-y")
	it.ClearCustody()
	require.NoError(t, repos.Items.Update(ctx, it))

	// item-z: puntero a quien ya devolvió (reparable)
	rz := f.issue(t, "item-z", entity.UserCustodian(u2.ID))
	_, err := f.uc.Return(ctx, appcustody.ReturnCommand{Actor: supply, ReceiptID: rz.ID})
	require.NoError(t, err)
	iz := f.item(t, "item-z")
	iz.Custody = entity.CustodyPointer{UserID: u2.ID}
	require.NoError(t, repos.Items.Update(ctx, iz))

	// item-w: puntero sin recibos (sólo se reporta)
	iw := f.item(t, "item-w")
	iw.Custody = entity.CustodyPointer{UserID: u1.ID}
	require.NoError(t, repos.Items.Update(ctx, iw))

	bf := appcustody.NewBackfillUseCase(f.store, repos.Items, repos.Receipts, f.clock, nil)

	dry, err := bf.Run(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 3, dry.Scanned)
	assert.Len(t, dry.Findings, 3)
	assert.Zero(t, dry.Repaired)
	assert.True(t, f.item(t, "item-y").Custody.IsEmpty(), "dry-run no escribe")

	applied, err := bf.Run(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 2, applied.Repaired)
	assert.Equal(t, entity.CustodyPointer{UserID: u1.ID}, f.item(t, "item-y").Custody)
	assert.True(t, f.item(t, "item-z").Custody.IsEmpty())
	assert.Equal(t, entity.CustodyPointer{UserID: u1.ID}, f.item(t, "item-w").Custody)

	again, err := bf.Run(ctx, false)
	require.NoError(t, err)
	assert.Len(t, again.Findings, 1)
}
