package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Bodega-api/internal/application/dto"
	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/pkg/validator"
)

// Códigos de error devueltos en ErrorResponse.Code.
const (
	CodeInvalidBody         = "INVALID_BODY"
	CodeValidation          = "VALIDATION"
	CodeNotFound            = "NOT_FOUND"
	CodeInvalidQuantity     = "INVALID_QUANTITY"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeInsufficientStock   = "INSUFFICIENT_STOCK"
	CodeProductMismatch     = "PRODUCT_MISMATCH"
	CodeIdempotencyConflict = "IDEMPOTENCY_CONFLICT"
	CodeDuplicate           = "DUPLICATE"
	CodePersistence         = "PERSISTENCE_ERROR"
	CodeInternal            = "INTERNAL"
)

// errorStatus traduce errores de dominio a status HTTP y código.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, CodeNotFound
	case errors.Is(err, domain.ErrInvalidQuantity):
		return fiber.StatusBadRequest, CodeInvalidQuantity
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, CodeInvalidInput
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusBadRequest, CodeInsufficientStock
	case errors.Is(err, domain.ErrProductMismatch):
		return fiber.StatusBadRequest, CodeProductMismatch
	case errors.Is(err, domain.ErrIdempotencyConflict):
		return fiber.StatusConflict, CodeIdempotencyConflict
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, CodeDuplicate
	case errors.Is(err, domain.ErrPersistence):
		return fiber.StatusInternalServerError, CodePersistence
	default:
		return fiber.StatusInternalServerError, CodeInternal
	}
}

// respondError escribe el error de dominio. Los 5xx no exponen el detalle interno: se registran.
func respondError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	status, code := errorStatus(err)
	msg := err.Error()
	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("error interno")
		msg = "no se pudo completar la operación, intente de nuevo"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

// respondValidation responde 400 con los campos inválidos.
func respondValidation(c *fiber.Ctx, code string, errs []validator.FieldError) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: validator.Message(errs)})
}
