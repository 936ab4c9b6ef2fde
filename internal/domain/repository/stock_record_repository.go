package repository

import (
	"context"

	"github.com/jhoicas/Bodega-api/internal/domain/entity"
)

// StockRecordRepository define el puerto de persistencia para artículos de bodega o de inventario (DIP).
// Hay una implementación por tabla; ambas cumplen el mismo contrato.
type StockRecordRepository interface {
	Create(ctx context.Context, record *entity.StockRecord) error
	// GetByID devuelve nil, nil si el registro no existe.
	GetByID(ctx context.Context, id string) (*entity.StockRecord, error)
	// GetForUpdate lee el registro y bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	// Devuelve nil, nil si no existe.
	GetForUpdate(ctx context.Context, id string) (*entity.StockRecord, error)
	// UpdateQuantity fija la cantidad disponible. Una cantidad negativa es rechazada por la DB.
	UpdateQuantity(ctx context.Context, id string, quantity int64) error
	List(ctx context.Context, limit, offset int) ([]*entity.StockRecord, error)
}
