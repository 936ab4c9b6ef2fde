package transfer

import (
	"context"
	"time"

	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn retorna error o el commit falla, ninguna escritura queda aplicada.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		warehouseItems repository.StockRecordRepository,
		inventoryItems repository.StockRecordRepository,
		transfers repository.TransferRepository,
	) error) error
}

// AuditSink recibe entradas de auditoría. Es best-effort: un error no revierte el traslado.
type AuditSink interface {
	Record(ctx context.Context, entry *entity.AuditLog) error
}

// IdempotencyStore reserva claves de idempotencia mientras una solicitud está en curso.
type IdempotencyStore interface {
	// Reserve devuelve true si la clave quedó reservada, false si ya estaba tomada.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// Notifier avisa a otros sistemas (websocket, Kafka) de un traslado confirmado.
type Notifier interface {
	TransferCompleted(ctx context.Context, t *entity.Transfer, source, destination *entity.StockRecord) error
}

// Metrics instrumentación del caso de uso.
type Metrics interface {
	ObserveTransfer(result string, quantity int64, elapsed time.Duration)
	AuditFailed()
}

type noopMetrics struct{}

func (noopMetrics) ObserveTransfer(string, int64, time.Duration) {}
func (noopMetrics) AuditFailed()                                {}
