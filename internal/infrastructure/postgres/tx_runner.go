package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Bodega-api/internal/application/transfer"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
)

// Ensure TxRunner implements transfer.TxRunner.
var _ transfer.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Si ctx vence antes del commit, pgx aborta la consulta en curso y la tx se revierte.
func (r *TxRunner) Run(ctx context.Context, fn func(
	warehouseItems repository.StockRecordRepository,
	inventoryItems repository.StockRecordRepository,
	transfers repository.TransferRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	// Rollback con contexto propio: ctx puede estar vencido justamente por el timeout
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	warehouseItems := NewWarehouseItemRepository(tx)
	inventoryItems := NewInventoryItemRepository(tx)
	transfers := NewTransferRepository(tx)

	if err := fn(warehouseItems, inventoryItems, transfers); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
