package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Bodega-api/internal/application/dto"
	"github.com/jhoicas/Bodega-api/internal/application/usecase"
	"github.com/jhoicas/Bodega-api/pkg/validator"
)

// AuditHandler consulta del rastro de auditoría (solo admin).
type AuditHandler struct {
	uc  *usecase.AuditUseCase
	log zerolog.Logger
}

// NewAuditHandler construye el handler.
func NewAuditHandler(uc *usecase.AuditUseCase, log zerolog.Logger) *AuditHandler {
	return &AuditHandler{uc: uc, log: log}
}

// List godoc
// @Summary      Listar auditoría
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        entity_type  query  string  false  "transfer | warehouse_item | inventory_item"
// @Param        entity_id    query  string  false  "ID de la entidad"
// @Param        actor_id     query  string  false  "Usuario"
// @Param        limit        query  int     false  "Límite"  default(20)
// @Param        offset       query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.AuditLogListResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/audit-logs [get]
func (h *AuditHandler) List(c *fiber.Ctx) error {
	var in dto.AuditLogFilterRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: CodeValidation, Message: "parámetros inválidos"})
	}
	if errs := validator.ValidateStruct(in); errs != nil {
		return respondValidation(c, CodeValidation, errs)
	}
	out, err := h.uc.List(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}
