package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Bodega-api/internal/domain/entity"
)

// CreateStockRecordRequest entrada para crear un artículo de bodega o de inventario.
type CreateStockRecordRequest struct {
	ProductRef string          `json:"productRef" validate:"required,max=100"`
	Name       string          `json:"name" validate:"required,min=1,max=255"`
	Location   string          `json:"location" validate:"omitempty,max=255"`
	Quantity   int64           `json:"quantity" validate:"min=0"`
	UnitCost   decimal.Decimal `json:"unitCost"`
}

// StockRecordResponse salida de un registro de stock.
type StockRecordResponse struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	ProductRef string    `json:"productRef"`
	Name       string    `json:"name"`
	Location   string    `json:"location"`
	Quantity   int64     `json:"quantity"`
	UnitCost   string    `json:"unitCost"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// StockRecordListResponse lista paginada de registros.
type StockRecordListResponse struct {
	Items []StockRecordResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// StockRecordToResponse convierte la entidad en DTO.
func StockRecordToResponse(r *entity.StockRecord) StockRecordResponse {
	return StockRecordResponse{
		ID:         r.ID,
		Kind:       r.Kind,
		ProductRef: r.ProductRef,
		Name:       r.Name,
		Location:   r.Location,
		Quantity:   r.Quantity,
		UnitCost:   r.UnitCost.String(),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}
