package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Bodega-api/internal/application/dto"
	"github.com/jhoicas/Bodega-api/internal/application/transfer"
	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
)

// StockUseCase alta y consulta de artículos de un tipo (bodega o inventario).
// Las cantidades solo cambian por traslados; aquí no hay Update.
type StockUseCase struct {
	repo       repository.StockRecordRepository
	entityType string
	audit      transfer.AuditSink
	log        zerolog.Logger
}

// NewWarehouseItemUseCase casos de uso para artículos de bodega.
func NewWarehouseItemUseCase(repo repository.StockRecordRepository, audit transfer.AuditSink, log zerolog.Logger) *StockUseCase {
	return &StockUseCase{repo: repo, entityType: entity.AuditEntityWarehouseItem, audit: audit, log: log}
}

// NewInventoryItemUseCase casos de uso para artículos de inventario.
func NewInventoryItemUseCase(repo repository.StockRecordRepository, audit transfer.AuditSink, log zerolog.Logger) *StockUseCase {
	return &StockUseCase{repo: repo, entityType: entity.AuditEntityInventoryItem, audit: audit, log: log}
}

// Create crea un registro con su cantidad inicial.
func (uc *StockUseCase) Create(ctx context.Context, actorID string, in dto.CreateStockRecordRequest) (*dto.StockRecordResponse, error) {
	if in.Quantity < 0 {
		return nil, fmt.Errorf("%w: la cantidad inicial no puede ser negativa", domain.ErrInvalidQuantity)
	}
	if in.UnitCost.IsNegative() {
		return nil, fmt.Errorf("%w: unitCost no puede ser negativo", domain.ErrInvalidInput)
	}
	now := time.Now().UTC()
	rec := &entity.StockRecord{
		ID:         uuid.New().String(),
		ProductRef: in.ProductRef,
		Name:       in.Name,
		Location:   in.Location,
		Quantity:   in.Quantity,
		UnitCost:   in.UnitCost,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.repo.Create(ctx, rec); err != nil {
		return nil, err
	}

	if uc.audit != nil {
		entry := &entity.AuditLog{
			ID:         uuid.New().String(),
			ActorID:    actorID,
			Action:     entity.AuditActionCreated,
			EntityType: uc.entityType,
			EntityID:   rec.ID,
			Details:    fmt.Sprintf("alta de %s (%s) con %d unidades", rec.Name, rec.ProductRef, rec.Quantity),
			CreatedAt:  now,
		}
		if err := uc.audit.Record(ctx, entry); err != nil {
			uc.log.Warn().Err(err).Str("entity_id", rec.ID).Msg("auditoría del alta no registrada")
		}
	}

	resp := dto.StockRecordToResponse(rec)
	return &resp, nil
}

// GetByID obtiene un registro por ID. nil, nil si no existe.
func (uc *StockUseCase) GetByID(ctx context.Context, id string) (*dto.StockRecordResponse, error) {
	rec, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	resp := dto.StockRecordToResponse(rec)
	return &resp, nil
}

// List lista registros con paginación.
func (uc *StockUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.StockRecordListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockRecordResponse, 0, len(list))
	for _, r := range list {
		items = append(items, dto.StockRecordToResponse(r))
	}
	return &dto.StockRecordListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}
