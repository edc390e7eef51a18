package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/dto"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/inventory"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/usecase"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/pkg/logger"
)

// InventoryHandler stock de ítems, movimientos y consumo trimestral (protegido).
type InventoryHandler struct {
	ledger        *inventory.LedgerUseCase
	replenishment *inventory.ReplenishmentUseCase
	log           *logger.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.LedgerUseCase, replenishment *inventory.ReplenishmentUseCase, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, replenishment: replenishment, log: log}
}

// Deduct godoc
// @Summary      Descontar stock
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del ítem"
// @Param        body  body  dto.StockAdjustRequest  true  "amount, reason, reference"
// @Success      200   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  StockErrorResponse
// @Router       /api/items/{id}/stock/deduct [post]
func (h *InventoryHandler) Deduct(c *fiber.Ctx) error {
	var in dto.StockAdjustRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	item, err := h.ledger.Deduct(c.UserContext(), inventory.DeductCommand{
		Actor:     actor(c),
		ItemID:    c.Params("id"),
		Amount:    in.Amount,
		Reason:    in.Reason,
		Reference: in.Reference,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(usecase.ToItemResponse(item))
}

// Increase godoc
// @Summary      Reponer stock
// @Description  unit_value opcional recalcula el valor unitario promedio ponderado.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del ítem"
// @Param        body  body  dto.StockAdjustRequest  true  "amount, unit_value, reason, reference"
// @Success      200   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/items/{id}/stock/increase [post]
func (h *InventoryHandler) Increase(c *fiber.Ctx) error {
	var in dto.StockAdjustRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	item, err := h.ledger.Increase(c.UserContext(), inventory.IncreaseCommand{
		Actor:     actor(c),
		ItemID:    c.Params("id"),
		Amount:    in.Amount,
		UnitValue: in.UnitValue,
		Reason:    in.Reason,
		Reference: in.Reference,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(usecase.ToItemResponse(item))
}

// Movements godoc
// @Summary      Movimientos de un ítem (más recientes primero)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del ítem"
// @Param        limit   query  int     false  "Límite (default 50)"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {array}  entity.InventoryMovement
// @Router       /api/items/{id}/movements [get]
func (h *InventoryHandler) Movements(c *fiber.Ctx) error {
	list, err := h.replenishment.Movements(c.UserContext(), c.Params("id"), c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return writeError(c, h.log, err)
	}
	if list == nil {
		list = []*entity.InventoryMovement{}
	}
	return c.JSON(list)
}

// UsageHistory godoc
// @Summary      Consumo trimestral de un ítem
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del ítem"
// @Success      200  {array}  dto.UsageRecordDTO
// @Router       /api/items/{id}/usage [get]
func (h *InventoryHandler) UsageHistory(c *fiber.Ctx) error {
	recs, err := h.replenishment.UsageHistory(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toUsageDTOs(recs))
}

// Forecast godoc
// @Summary      Proyección de consumo del siguiente trimestre
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del ítem"
// @Success      200  {object}  inventory.Forecast
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id}/forecast [get]
func (h *InventoryHandler) Forecast(c *fiber.Ctx) error {
	f, err := h.replenishment.Forecast(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(f)
}

// UsageReport godoc
// @Summary      Acumulados de consumo de un trimestre
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        period  query  string  false  "Periodo \"Q1 2025\"; vacío = trimestre actual"
// @Success      200  {object}  dto.UsageReportResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/usage [get]
func (h *InventoryHandler) UsageReport(c *fiber.Ctx) error {
	period, recs, err := h.replenishment.UsageForPeriod(c.UserContext(), c.Query("period"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.UsageReportResponse{Period: period, Records: toUsageDTOs(recs)})
}

// GetReplenishmentList godoc
// @Summary      Lista de reposición
// @Description  Ítems bajo el umbral de stock con la reposición sugerida para el siguiente trimestre.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.ReplenishmentSuggestionDTO
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/inventory/replenishment-list [get]
func (h *InventoryHandler) GetReplenishmentList(c *fiber.Ctx) error {
	list, err := h.replenishment.GenerateReplenishmentList(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]dto.ReplenishmentSuggestionDTO, 0, len(list))
	for _, s := range list {
		out = append(out, dto.ReplenishmentSuggestionDTO{
			ItemID:         s.Item.ID,
			ItemName:       s.Item.Name,
			CurrentStock:   s.Item.Quantity,
			NextPeriod:     s.Forecast.Period,
			ExpectedUsage:  s.Forecast.ExpectedUsage,
			SuggestedOrder: s.Forecast.SuggestRestock,
			Samples:        s.Forecast.Samples,
			Priority:       s.Priority,
		})
	}
	return c.JSON(fiber.Map{
		"total":          len(out),
		"replenishments": out,
	})
}

func toUsageDTOs(recs []entity.UsagePeriodRecord) []dto.UsageRecordDTO {
	out := make([]dto.UsageRecordDTO, 0, len(recs))
	for _, r := range recs {
		out = append(out, dto.UsageRecordDTO{
			ItemID:     r.ItemID,
			Period:     r.Period,
			StockStart: r.StockStart,
			Usage:      r.Usage,
			Restock:    r.Restock,
			Restocked:  r.Restocked,
			StockEnd:   r.StockEnd,
		})
	}
	return out
}
