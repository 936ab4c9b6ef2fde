package ws

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/Bodega-api/internal/application/dto"
	"github.com/jhoicas/Bodega-api/internal/application/transfer"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
)

var _ transfer.Notifier = (*Notifier)(nil)

// Notifier difunde un stock_update por cada traslado confirmado.
type Notifier struct {
	hub *Hub
}

// NewNotifier construye el notificador sobre el hub.
func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub}
}

// TransferCompleted serializa el evento y lo encola en el hub.
func (n *Notifier) TransferCompleted(_ context.Context, t *entity.Transfer, source, destination *entity.StockRecord) error {
	msg, err := json.Marshal(dto.NewStockUpdateEvent(t, source, destination))
	if err != nil {
		return fmt.Errorf("serializar stock_update: %w", err)
	}
	if !n.hub.Broadcast(msg) {
		return fmt.Errorf("difusión websocket descartada para traslado %s", t.ID)
	}
	return nil
}
