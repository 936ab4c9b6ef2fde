package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Bodega-api/internal/application/dto"
	"github.com/jhoicas/Bodega-api/internal/application/transfer"
	"github.com/jhoicas/Bodega-api/internal/application/usecase"
	"github.com/jhoicas/Bodega-api/pkg/validator"
)

// HeaderIdempotencyKey header opcional para reintentos seguros de POST /api/transfers.
const HeaderIdempotencyKey = "Idempotency-Key"

// TransferHandler maneja los traslados entre bodega e inventario (protegido).
type TransferHandler struct {
	execute *transfer.ExecuteTransferUseCase
	query   *usecase.TransferQueryUseCase
	log     zerolog.Logger
}

// NewTransferHandler construye el handler.
func NewTransferHandler(execute *transfer.ExecuteTransferUseCase, query *usecase.TransferQueryUseCase, log zerolog.Logger) *TransferHandler {
	return &TransferHandler{execute: execute, query: query, log: log}
}

// Create godoc
// @Summary      Trasladar stock de un artículo de bodega a uno de inventario
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                     false  "Clave para reintentos"
// @Param        body             body    dto.CreateTransferRequest  true   "sourceId, destinationId, quantity"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: CodeInvalidBody, Message: "cuerpo inválido"})
	}
	if errs := validator.ValidateStruct(in); errs != nil {
		return respondValidation(c, validationCode(errs), errs)
	}

	key := c.Get(HeaderIdempotencyKey)
	if len(key) > 200 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: CodeValidation, Message: "Idempotency-Key demasiado larga"})
	}

	t, err := h.execute.ExecuteTransfer(c.UserContext(), transfer.TransferInput{
		SourceID:       in.SourceID,
		DestinationID:  in.DestinationID,
		Quantity:       in.Quantity,
		ActorID:        GetUserID(c),
		IdempotencyKey: key,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.TransferToResponse(t))
}

// GetByID godoc
// @Summary      Obtener traslado por ID
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id} [get]
func (h *TransferHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.query.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: CodeNotFound, Message: "traslado no encontrado"})
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar traslados
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        source_id       query  string  false  "Artículo de bodega origen"
// @Param        destination_id  query  string  false  "Artículo de inventario destino"
// @Param        limit           query  int     false  "Límite"  default(20)
// @Param        offset          query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.TransferListResponse
// @Router       /api/transfers [get]
func (h *TransferHandler) List(c *fiber.Ctx) error {
	var in dto.TransferFilterRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: CodeValidation, Message: "parámetros inválidos"})
	}
	if errs := validator.ValidateStruct(in); errs != nil {
		return respondValidation(c, CodeValidation, errs)
	}
	out, err := h.query.List(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// validationCode INVALID_QUANTITY cuando solo fallan cantidad u origen=destino.
func validationCode(errs []validator.FieldError) string {
	for _, e := range errs {
		if e.Tag != "gt" && e.Tag != "nefield" {
			return CodeValidation
		}
	}
	return CodeInvalidQuantity
}
