package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/dto"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/requisition"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/repository"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/pkg/logger"
)

// RequisitionHandler ciclo de vida de las requisiciones de suministros.
type RequisitionHandler struct {
	uc  *requisition.UseCase
	log *logger.Logger
}

// NewRequisitionHandler construye el handler.
func NewRequisitionHandler(uc *requisition.UseCase, log *logger.Logger) *RequisitionHandler {
	return &RequisitionHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Crear requisición
// @Tags         requisitions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateRequisitionRequest  true  "Líneas, oficina destino, urgencia"
// @Success      201   {object}  entity.Requisition
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/requisitions [post]
func (h *RequisitionHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateRequisitionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	lines := make([]requisition.LineInput, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, requisition.LineInput{ItemID: l.ItemID, Quantity: l.Quantity})
	}
	out, err := h.uc.Create(c.UserContext(), requisition.CreateCommand{
		Actor:          actor(c),
		TargetOfficeID: in.TargetOfficeID,
		Urgency:        in.Urgency,
		Notes:          in.Notes,
		Lines:          lines,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar requisiciones
// @Description  Un solicitante sólo ve las propias.
// @Tags         requisitions
// @Security     Bearer
// @Produce      json
// @Param        status       query  string  false  "Estado"
// @Param        approver_id  query  string  false  "Aprobador asignado"
// @Param        office_id    query  string  false  "Oficina destino"
// @Param        limit        query  int     false  "Límite"
// @Param        offset       query  int     false  "Desplazamiento"
// @Success      200  {array}  entity.Requisition
// @Router       /api/requisitions [get]
func (h *RequisitionHandler) List(c *fiber.Ctx) error {
	page := pageParams(c)
	list, err := h.uc.List(c.UserContext(), actor(c), repository.RequisitionFilter{
		RequesterID: c.Query("requester_id"),
		Status:      c.Query("status"),
		ApproverID:  c.Query("approver_id"),
		OfficeID:    c.Query("office_id"),
		Limit:       page.Limit,
		Offset:      page.Offset,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	if list == nil {
		list = []*entity.Requisition{}
	}
	return c.JSON(list)
}

// GetByID godoc
// @Summary      Obtener requisición
// @Tags         requisitions
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la requisición"
// @Success      200  {object}  entity.Requisition
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/requisitions/{id} [get]
func (h *RequisitionHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), actor(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Receipt godoc
// @Summary      Comprobante PDF de la requisición aprobada
// @Tags         requisitions
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  string  true  "ID de la requisición"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/requisitions/{id}/receipt [get]
func (h *RequisitionHandler) Receipt(c *fiber.Ctx) error {
	pdf, r, err := h.uc.Receipt(c.UserContext(), actor(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return sendPDF(c, r.ReceiptRef, pdf)
}

// ── Transiciones ──────────────────────────────────────────────────────────────

// OfficeApprove godoc
// @Summary      Aprobación de la oficina de suministros
// @Tags         requisitions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string            true   "ID de la requisición"
// @Param        body  body  dto.NotesRequest  false  "Notas"
// @Success      200   {object}  entity.Requisition
// @Failure      409   {object}  TransitionErrorResponse
// @Router       /api/requisitions/{id}/office-approve [post]
func (h *RequisitionHandler) OfficeApprove(c *fiber.Ctx) error {
	var in dto.NotesRequest
	if !optionalBody(c, &in) {
		return badBody(c)
	}
	return h.reply(c)(h.uc.OfficeApprove(c.UserContext(), requisition.TransitionCommand{
		Actor: actor(c), RequisitionID: c.Params("id"), Notes: in.Notes,
	}))
}

// AssignApprover godoc
// @Summary      Delegar a un aprobador
// @Tags         requisitions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID de la requisición"
// @Param        body  body  dto.AssignApproverRequest  true  "approver_id"
// @Success      200   {object}  entity.Requisition
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  TransitionErrorResponse
// @Router       /api/requisitions/{id}/assign-approver [post]
func (h *RequisitionHandler) AssignApprover(c *fiber.Ctx) error {
	var in dto.AssignApproverRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	return h.reply(c)(h.uc.AssignApprover(c.UserContext(), requisition.AssignCommand{
		Actor: actor(c), RequisitionID: c.Params("id"), ApproverID: in.ApproverID,
	}))
}

// Approve godoc
// @Summary      Aprobación final
// @Description  Verifica stock de las líneas abiertas y genera el comprobante.
// @Tags         requisitions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string            true   "ID de la requisición"
// @Param        body  body  dto.NotesRequest  false  "Notas"
// @Success      200   {object}  entity.Requisition
// @Failure      409   {object}  StockErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/requisitions/{id}/approve [post]
func (h *RequisitionHandler) Approve(c *fiber.Ctx) error {
	var in dto.NotesRequest
	if !optionalBody(c, &in) {
		return badBody(c)
	}
	return h.reply(c)(h.uc.Approve(c.UserContext(), requisition.TransitionCommand{
		Actor: actor(c), RequisitionID: c.Params("id"), Notes: in.Notes,
	}))
}

// ReadyForPickup godoc
// @Summary      Marcar lista para retiro
// @Tags         requisitions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true   "ID de la requisición"
// @Param        body  body  dto.ReadyForPickupRequest  false  "pickup_at, notes"
// @Success      200   {object}  entity.Requisition
// @Failure      409   {object}  TransitionErrorResponse
// @Router       /api/requisitions/{id}/ready [post]
func (h *RequisitionHandler) ReadyForPickup(c *fiber.Ctx) error {
	var in dto.ReadyForPickupRequest
	if !optionalBody(c, &in) {
		return badBody(c)
	}
	return h.reply(c)(h.uc.MarkReadyForPickup(c.UserContext(), requisition.ReadyCommand{
		Actor: actor(c), RequisitionID: c.Params("id"), PickupAt: in.PickupAt, Notes: in.Notes,
	}))
}

// Fulfill godoc
// @Summary      Despachar (descuenta stock de las líneas abiertas)
// @Tags         requisitions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string            true   "ID de la requisición"
// @Param        body  body  dto.NotesRequest  false  "Notas"
// @Success      200   {object}  entity.Requisition
// @Failure      409   {object}  StockErrorResponse
// @Router       /api/requisitions/{id}/fulfill [post]
func (h *RequisitionHandler) Fulfill(c *fiber.Ctx) error {
	var in dto.NotesRequest
	if !optionalBody(c, &in) {
		return badBody(c)
	}
	return h.reply(c)(h.uc.Fulfill(c.UserContext(), requisition.TransitionCommand{
		Actor: actor(c), RequisitionID: c.Params("id"), Notes: in.Notes,
	}))
}

// Reject godoc
// @Summary      Rechazar requisición
// @Tags         requisitions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID de la requisición"
// @Param        body  body  dto.ReasonRequest  true  "Motivo"
// @Success      200   {object}  entity.Requisition
// @Failure      409   {object}  TransitionErrorResponse
// @Router       /api/requisitions/{id}/reject [post]
func (h *RequisitionHandler) Reject(c *fiber.Ctx) error {
	var in dto.ReasonRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	return h.reply(c)(h.uc.Reject(c.UserContext(), requisition.RejectCommand{
		Actor: actor(c), RequisitionID: c.Params("id"), Reason: in.Reason,
	}))
}

// Cancel godoc
// @Summary      Cancelar requisición propia
// @Tags         requisitions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true   "ID de la requisición"
// @Param        body  body  dto.ReasonRequest  false  "Motivo"
// @Success      200   {object}  entity.Requisition
// @Failure      409   {object}  TransitionErrorResponse
// @Router       /api/requisitions/{id}/cancel [post]
func (h *RequisitionHandler) Cancel(c *fiber.Ctx) error {
	var in dto.ReasonRequest
	if !optionalBody(c, &in) {
		return badBody(c)
	}
	return h.reply(c)(h.uc.Cancel(c.UserContext(), requisition.RejectCommand{
		Actor: actor(c), RequisitionID: c.Params("id"), Reason: in.Reason,
	}))
}

// RejectLine godoc
// @Summary      Rechazar una línea
// @Tags         requisitions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id       path  string             true  "ID de la requisición"
// @Param        line_id  path  string             true  "ID de la línea"
// @Param        body     body  dto.ReasonRequest  true  "Motivo"
// @Success      200   {object}  entity.Requisition
// @Failure      409   {object}  TransitionErrorResponse
// @Router       /api/requisitions/{id}/lines/{line_id}/reject [post]
func (h *RequisitionHandler) RejectLine(c *fiber.Ctx) error {
	var in dto.ReasonRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	return h.reply(c)(h.uc.RejectLine(c.UserContext(), requisition.LineCommand{
		Actor: actor(c), RequisitionID: c.Params("id"), LineID: c.Params("line_id"), Reason: in.Reason,
	}))
}

// RestoreLine godoc
// @Summary      Restaurar una línea rechazada
// @Tags         requisitions
// @Security     Bearer
// @Produce      json
// @Param        id       path  string  true  "ID de la requisición"
// @Param        line_id  path  string  true  "ID de la línea"
// @Success      200   {object}  entity.Requisition
// @Failure      409   {object}  TransitionErrorResponse
// @Router       /api/requisitions/{id}/lines/{line_id}/restore [post]
func (h *RequisitionHandler) RestoreLine(c *fiber.Ctx) error {
	return h.reply(c)(h.uc.RestoreLine(c.UserContext(), requisition.LineCommand{
		Actor: actor(c), RequisitionID: c.Params("id"), LineID: c.Params("line_id"),
	}))
}

func (h *RequisitionHandler) reply(c *fiber.Ctx) func(*entity.Requisition, error) error {
	return func(r *entity.Requisition, err error) error {
		if err != nil {
			return writeError(c, h.log, err)
		}
		return c.JSON(r)
	}
}
