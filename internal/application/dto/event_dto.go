package dto

import (
	"time"

	"github.com/jhoicas/Bodega-api/internal/domain/entity"
)

// Tipos de mensaje enviados por websocket y Kafka.
const (
	EventTypeStockUpdate = "stock_update"
	EventActionTransfer  = "transfer_completed"
)

// StockLevelDTO cantidad resultante de un registro después del traslado.
type StockLevelDTO struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	ProductRef string `json:"productRef"`
	Quantity   int64  `json:"quantity"`
}

// StockUpdateEvent mensaje emitido por cada traslado confirmado.
type StockUpdateEvent struct {
	Type        string           `json:"type"`
	Action      string           `json:"action"`
	Transfer    TransferResponse `json:"transfer"`
	Source      StockLevelDTO    `json:"source"`
	Destination StockLevelDTO    `json:"destination"`
	OccurredAt  time.Time        `json:"occurredAt"`
}

// NewStockUpdateEvent arma el evento a partir del traslado y los registros ya actualizados.
func NewStockUpdateEvent(t *entity.Transfer, source, destination *entity.StockRecord) StockUpdateEvent {
	return StockUpdateEvent{
		Type:        EventTypeStockUpdate,
		Action:      EventActionTransfer,
		Transfer:    TransferToResponse(t),
		Source:      stockLevel(source),
		Destination: stockLevel(destination),
		OccurredAt:  t.CreatedAt,
	}
}

func stockLevel(r *entity.StockRecord) StockLevelDTO {
	return StockLevelDTO{ID: r.ID, Kind: r.Kind, ProductRef: r.ProductRef, Quantity: r.Quantity}
}
