package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/dto"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/pkg/logger"
)

// StockErrorResponse cuerpo de 409 INSUFFICIENT_STOCK con el faltante.
type StockErrorResponse struct {
	dto.ErrorResponse
	ItemID    string `json:"item_id"`
	Needed    int    `json:"needed"`
	Available int    `json:"available"`
}

// TransitionErrorResponse cuerpo de los 409 de transición con el estado observado.
type TransitionErrorResponse struct {
	dto.ErrorResponse
	Entity    string `json:"entity,omitempty"`
	EntityID  string `json:"entity_id,omitempty"`
	Current   string `json:"current_status,omitempty"`
	Requested string `json:"requested,omitempty"`
}

// errorStatus traduce un error de dominio a status y código HTTP.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrAlreadyProcessed):
		return fiber.StatusConflict, "ALREADY_PROCESSED"
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, "STATE_CONFLICT"
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return fiber.StatusConflict, "EMAIL_EXISTS"
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, "DUPLICATE"
	case errors.Is(err, domain.ErrDependency):
		return fiber.StatusBadGateway, "DEPENDENCY"
	}
	return fiber.StatusInternalServerError, "INTERNAL"
}

// writeError responde el error con el cuerpo que corresponda. Los 500 no
// exponen el detalle interno.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	status, code := errorStatus(err)
	base := dto.ErrorResponse{Code: code, Message: err.Error()}
	if status == fiber.StatusInternalServerError {
		if log != nil {
			log.Error().Err(err).Str("path", c.Path()).Msg("error interno")
		}
		base.Message = "error interno"
		return c.Status(status).JSON(base)
	}

	var stock *domain.InsufficientStockError
	if errors.As(err, &stock) {
		return c.Status(status).JSON(StockErrorResponse{
			ErrorResponse: base,
			ItemID:        stock.ItemID,
			Needed:        stock.Needed,
			Available:     stock.Available,
		})
	}
	var te *domain.TransitionError
	if errors.As(err, &te) {
		return c.Status(status).JSON(TransitionErrorResponse{
			ErrorResponse: base,
			Entity:        te.Entity,
			EntityID:      te.EntityID,
			Current:       te.Current,
			Requested:     te.Requested,
		})
	}
	return c.Status(status).JSON(base)
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func notFound(c *fiber.Ctx, what string) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: what + " no encontrado"})
}
