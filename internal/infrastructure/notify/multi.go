// Package notify combina varios notificadores de traslados en uno.
package notify

import (
	"context"
	"errors"

	"github.com/jhoicas/Bodega-api/internal/application/transfer"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
)

var _ transfer.Notifier = Multi(nil)

// Multi avisa a todos los notificadores aunque alguno falle y devuelve los errores unidos.
type Multi []transfer.Notifier

// TransferCompleted implementa transfer.Notifier.
func (m Multi) TransferCompleted(ctx context.Context, t *entity.Transfer, source, destination *entity.StockRecord) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.TransferCompleted(ctx, t, source, destination); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
