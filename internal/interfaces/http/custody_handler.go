package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/custody"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/dto"
	domcustody "github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/custody"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/pkg/logger"
)

// CustodyHandler recibos de custodia: emisión, devolución, incidentes,
// traspasos, reemisión, formalización y consultas.
type CustodyHandler struct {
	uc  *custody.UseCase
	log *logger.Logger
}

// NewCustodyHandler construye el handler.
func NewCustodyHandler(uc *custody.UseCase, log *logger.Logger) *CustodyHandler {
	return &CustodyHandler{uc: uc, log: log}
}

// Issue godoc
// @Summary      Emitir un ítem a un custodio
// @Tags         custody
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.IssueRequest  true  "item_id, custodian {kind, id}"
// @Success      201   {object}  custody.Outcome
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  TransitionErrorResponse
// @Router       /api/custody/issue [post]
func (h *CustodyHandler) Issue(c *fiber.Ctx) error {
	var in dto.IssueRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Issue(c.UserContext(), custody.IssueCommand{
		Actor:     actor(c),
		ItemID:    in.ItemID,
		Custodian: in.Custodian,
		Note:      in.Note,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetReceipt godoc
// @Summary      Obtener recibo
// @Tags         custody
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del recibo"
// @Success      200  {object}  entity.CustodyReceipt
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/custody/receipts/{id} [get]
func (h *CustodyHandler) GetReceipt(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), actor(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Return godoc
// @Summary      Devolver un recibo emitido
// @Tags         custody
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string           true   "ID del recibo"
// @Param        body  body  dto.NoteRequest  false  "Observación"
// @Success      200   {object}  custody.Outcome
// @Failure      409   {object}  TransitionErrorResponse
// @Router       /api/custody/receipts/{id}/return [post]
func (h *CustodyHandler) Return(c *fiber.Ctx) error {
	var in dto.NoteRequest
	if !optionalBody(c, &in) {
		return badBody(c)
	}
	return h.reply(c)(h.uc.Return(c.UserContext(), custody.ReturnCommand{
		Actor: actor(c), ReceiptID: c.Params("id"), Note: in.Note,
	}))
}

// Report godoc
// @Summary      Reportar pérdida o daño
// @Tags         custody
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID del recibo"
// @Param        body  body  dto.ReportIncidentRequest  true  "type LOST|DAMAGED, description"
// @Success      200   {object}  custody.Outcome
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  TransitionErrorResponse
// @Router       /api/custody/receipts/{id}/report [post]
func (h *CustodyHandler) Report(c *fiber.Ctx) error {
	var in dto.ReportIncidentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	return h.reply(c)(h.uc.ReportLostOrDamaged(c.UserContext(), custody.ReportCommand{
		Actor:              actor(c),
		ReceiptID:          c.Params("id"),
		Type:               in.Type,
		Description:        in.Description,
		IncidentDate:       timeOrZero(in.IncidentDate),
		EstimatedValueLoss: in.EstimatedValueLoss,
	}))
}

// Recover godoc
// @Summary      Recuperar un ítem perdido o dañado
// @Description  Cierra el incidente y reabre la custodia con el mismo custodio.
// @Tags         custody
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true   "ID del recibo"
// @Param        body  body  dto.RecoverRequest  false  "recovered_by, notes, recovery_date"
// @Success      200   {object}  custody.Outcome
// @Failure      409   {object}  TransitionErrorResponse
// @Router       /api/custody/receipts/{id}/recover [post]
func (h *CustodyHandler) Recover(c *fiber.Ctx) error {
	cmd, ok := h.recoverCommand(c)
	if !ok {
		return badBody(c)
	}
	return h.reply(c)(h.uc.Recover(c.UserContext(), cmd))
}

// ReturnFound godoc
// @Summary      Ítem perdido encontrado y devuelto a bodega
// @Tags         custody
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true   "ID del recibo"
// @Param        body  body  dto.RecoverRequest  false  "recovered_by, notes, recovery_date"
// @Success      200   {object}  custody.Outcome
// @Failure      409   {object}  TransitionErrorResponse
// @Router       /api/custody/receipts/{id}/return-found [post]
func (h *CustodyHandler) ReturnFound(c *fiber.Ctx) error {
	cmd, ok := h.recoverCommand(c)
	if !ok {
		return badBody(c)
	}
	return h.reply(c)(h.uc.ReturnFound(c.UserContext(), cmd))
}

// Reassign godoc
// @Summary      Traspasar a otro custodio
// @Tags         custody
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID del recibo"
// @Param        body  body  dto.TargetRequest  true  "target {kind, id}"
// @Success      200   {object}  custody.Outcome
// @Failure      409   {object}  TransitionErrorResponse
// @Router       /api/custody/receipts/{id}/reassign [post]
func (h *CustodyHandler) Reassign(c *fiber.Ctx) error {
	var in dto.TargetRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	return h.reply(c)(h.uc.Reassign(c.UserContext(), custody.ReassignCommand{
		Actor: actor(c), ReceiptID: c.Params("id"), Target: in.Target, Note: in.Note,
	}))
}

// Reissue godoc
// @Summary      Reemitir a partir de la última devolución
// @Tags         custody
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID del recibo devuelto"
// @Param        body  body  dto.TargetRequest  true  "target {kind, id}"
// @Success      200   {object}  custody.Outcome
// @Failure      409   {object}  TransitionErrorResponse
// @Router       /api/custody/receipts/{id}/reissue [post]
func (h *CustodyHandler) Reissue(c *fiber.Ctx) error {
	var in dto.TargetRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	return h.reply(c)(h.uc.Reissue(c.UserContext(), custody.ReissueCommand{
		Actor: actor(c), ReceiptID: c.Params("id"), Target: in.Target, Note: in.Note,
	}))
}

// Formalize godoc
// @Summary      Formalizar la custodia existente de un ítem
// @Description  Idempotente: si ya hay un recibo vigente coincidente se devuelve con created=false.
// @Tags         custody
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del ítem"
// @Success      200  {object}  dto.FormalizeResponse
// @Success      201  {object}  dto.FormalizeResponse
// @Failure      409  {object}  TransitionErrorResponse
// @Router       /api/custody/items/{id}/formalize [post]
func (h *CustodyHandler) Formalize(c *fiber.Ctx) error {
	rec, created, err := h.uc.Formalize(c.UserContext(), actor(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(dto.FormalizeResponse{Receipt: rec, Created: created})
}

// FormalizeCustodian godoc
// @Summary      Formalizar todos los ítems de un custodio
// @Tags         custody
// @Security     Bearer
// @Produce      json
// @Param        kind  path  string  true  "USER | LOCATION"
// @Param        id    path  string  true  "ID del custodio"
// @Success      200  {object}  custody.BulkSummary
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/custody/custodians/{kind}/{id}/formalize [post]
func (h *CustodyHandler) FormalizeCustodian(c *fiber.Ctx) error {
	cust := entity.Custodian{Kind: c.Params("kind"), ID: c.Params("id")}
	out, err := h.uc.FormalizeCustodian(c.UserContext(), actor(c), cust)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// BulkClear godoc
// @Summary      Liberación masiva de recibos
// @Description  Cada entrada es su propia unidad de trabajo; el resumen informa éxito o error por recibo.
// @Tags         custody
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BulkClearRequest  true  "custodian {kind, id} + entries [{receipt_id, action, target}]"
// @Success      200   {object}  custody.BulkSummary
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/custody/bulk-clear [post]
func (h *CustodyHandler) BulkClear(c *fiber.Ctx) error {
	var in dto.BulkClearRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	entries := make([]custody.BulkEntry, 0, len(in.Entries))
	for _, e := range in.Entries {
		entries = append(entries, custody.BulkEntry{ReceiptID: e.ReceiptID, Action: e.Action, Target: e.Target, Note: e.Note})
	}
	out, err := h.uc.BulkClear(c.UserContext(), custody.BulkClearCommand{
		Actor:       actor(c),
		Custodian:   in.Custodian,
		Entries:     entries,
		Description: in.Description,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// History godoc
// @Summary      Historial de recibos de un ítem
// @Tags         custody
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del ítem"
// @Success      200  {array}  entity.CustodyReceipt
// @Router       /api/custody/items/{id}/history [get]
func (h *CustodyHandler) History(c *fiber.Ctx) error {
	recs, err := h.uc.History(c.UserContext(), actor(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	if recs == nil {
		recs = []entity.CustodyReceipt{}
	}
	return c.JSON(recs)
}

// Reissuable godoc
// @Summary      Ítems disponibles para reemisión
// @Tags         custody
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  domcustody.ReissueCandidate
// @Router       /api/custody/reissuable [get]
func (h *CustodyHandler) Reissuable(c *fiber.Ctx) error {
	list, err := h.uc.ListReissuable(c.UserContext(), actor(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	if list == nil {
		list = []domcustody.ReissueCandidate{}
	}
	return c.JSON(list)
}

// View godoc
// @Summary      Vista efectiva de custodia
// @Description  Recibos vigentes más filas virtuales para custodia sin recibo. kind e id filtran por custodio.
// @Tags         custody
// @Security     Bearer
// @Produce      json
// @Param        kind  query  string  false  "USER | LOCATION"
// @Param        id    query  string  false  "ID del custodio"
// @Success      200  {object}  domcustody.View
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/custody/view [get]
func (h *CustodyHandler) View(c *fiber.Ctx) error {
	var filter *entity.Custodian
	if kind, id := c.Query("kind"), c.Query("id"); kind != "" || id != "" {
		filter = &entity.Custodian{Kind: kind, ID: id}
	}
	view, err := h.uc.EffectiveCustodyView(c.UserContext(), actor(c), filter)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(view)
}

func (h *CustodyHandler) recoverCommand(c *fiber.Ctx) (custody.RecoverCommand, bool) {
	var in dto.RecoverRequest
	if !optionalBody(c, &in) {
		return custody.RecoverCommand{}, false
	}
	return custody.RecoverCommand{
		Actor:        actor(c),
		ReceiptID:    c.Params("id"),
		RecoveredBy:  in.RecoveredBy,
		Notes:        in.Notes,
		RecoveryDate: timeOrZero(in.RecoveryDate),
	}, true
}

func (h *CustodyHandler) reply(c *fiber.Ctx) func(*custody.Outcome, error) error {
	return func(out *custody.Outcome, err error) error {
		if err != nil {
			return writeError(c, h.log, err)
		}
		return c.JSON(out)
	}
}

// optionalBody parsea el cuerpo sólo si viene; false si no es válido.
func optionalBody(c *fiber.Ctx, out any) bool {
	if len(c.Body()) == 0 {
		return true
	}
	return c.BodyParser(out) == nil
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
