package repository

import (
	"context"

	"github.com/jhoicas/Bodega-api/internal/domain/entity"
)

// TransferFilter filtros para listar traslados. Campos vacíos no filtran.
type TransferFilter struct {
	SourceID      string
	DestinationID string
	Limit         int
	Offset        int
}

// TransferRepository define el puerto de persistencia para traslados (solo inserción y lectura).
type TransferRepository interface {
	// Create inserta el traslado. Devuelve domain.ErrDuplicate si la clave de idempotencia ya existe.
	Create(ctx context.Context, transfer *entity.Transfer) error
	GetByID(ctx context.Context, id string) (*entity.Transfer, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*entity.Transfer, error)
	List(ctx context.Context, filter TransferFilter) ([]*entity.Transfer, error)
}
