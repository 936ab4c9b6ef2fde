//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/Bodega-api/internal/application/transfer"
	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
	"github.com/jhoicas/Bodega-api/internal/infrastructure/audit"
	"github.com/jhoicas/Bodega-api/internal/infrastructure/migration"
	"github.com/jhoicas/Bodega-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Bodega-api/pkg/config"
)

const actorID = "00000000-0000-0000-0000-0000000000aa"

// newTestPool levanta PostgreSQL en un contenedor y aplica migrations/.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("bodega_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "no se pudo iniciar el contenedor PostgreSQL")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminar contenedor: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	m, err := migration.New(dsn, "../../../migrations", zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, m.Up())
	require.NoError(t, m.Close())

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn, MaxConns: 10})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func seedPair(t *testing.T, pool *pgxpool.Pool, srcQty, dstQty int64) (string, string) {
	t.Helper()
	ctx := context.Background()
	src := &entity.StockRecord{ProductRef: "SKU-1", Name: "Cemento", Quantity: srcQty, UnitCost: decimal.RequireFromString("2.5")}
	dst := &entity.StockRecord{ProductRef: "SKU-1", Name: "Cemento", Quantity: dstQty}
	require.NoError(t, postgres.NewWarehouseItemRepository(pool).Create(ctx, src))
	require.NoError(t, postgres.NewInventoryItemRepository(pool).Create(ctx, dst))
	return src.ID, dst.ID
}

func quantities(t *testing.T, pool *pgxpool.Pool, srcID, dstID string) (int64, int64) {
	t.Helper()
	ctx := context.Background()
	src, err := postgres.NewWarehouseItemRepository(pool).GetByID(ctx, srcID)
	require.NoError(t, err)
	dst, err := postgres.NewInventoryItemRepository(pool).GetByID(ctx, dstID)
	require.NoError(t, err)
	return src.Quantity, dst.Quantity
}

func newUseCase(pool *pgxpool.Pool, sink transfer.AuditSink) *transfer.ExecuteTransferUseCase {
	return transfer.NewExecuteTransferUseCase(
		postgres.NewTxRunner(pool),
		postgres.NewTransferRepository(pool),
		sink,
		transfer.Config{RequireSameProduct: true, TxTimeout: 5 * time.Second, IdempotencyTTL: time.Hour},
		zerolog.Nop(),
	)
}

func TestPostgres_ExecuteTransfer(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	auditRepo := postgres.NewAuditLogRepository(pool)
	dispatcher := audit.NewDispatcher(auditRepo, audit.Config{BufferSize: 16, Workers: 1, WriteTimeout: time.Second}, zerolog.Nop(), nil)
	uc := newUseCase(pool, dispatcher)

	t.Run("traslado completo persiste stock, traslado y auditoría", func(t *testing.T) {
		srcID, dstID := seedPair(t, pool, 10, 0)

		tr, err := uc.ExecuteTransfer(ctx, transfer.TransferInput{SourceID: srcID, DestinationID: dstID, Quantity: 4, ActorID: actorID})
		require.NoError(t, err)

		src, dst := quantities(t, pool, srcID, dstID)
		assert.Equal(t, int64(6), src)
		assert.Equal(t, int64(4), dst)

		stored, err := postgres.NewTransferRepository(pool).GetByID(ctx, tr.ID)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, int64(4), stored.Quantity)
		assert.True(t, decimal.NewFromInt(10).Equal(stored.TotalValue), "total = 4 x 2.5")

		require.NoError(t, dispatcher.Close(ctx))
		logs, err := auditRepo.List(ctx, repository.AuditLogFilter{EntityType: entity.AuditEntityTransfer, EntityID: tr.ID})
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, entity.AuditActionTransferred, logs[0].Action)
	})

	t.Run("stock insuficiente no modifica nada", func(t *testing.T) {
		srcID, dstID := seedPair(t, pool, 3, 1)
		for i := 0; i < 3; i++ {
			_, err := newUseCase(pool, nopSink{}).ExecuteTransfer(ctx, transfer.TransferInput{SourceID: srcID, DestinationID: dstID, Quantity: 5, ActorID: actorID})
			require.ErrorIs(t, err, domain.ErrInsufficientStock)
		}
		src, dst := quantities(t, pool, srcID, dstID)
		assert.Equal(t, int64(3), src)
		assert.Equal(t, int64(1), dst)
	})

	t.Run("id inexistente o no UUID es NotFound", func(t *testing.T) {
		_, dstID := seedPair(t, pool, 3, 0)
		_, err := newUseCase(pool, nopSink{}).ExecuteTransfer(ctx, transfer.TransferInput{SourceID: "no-existe", DestinationID: dstID, Quantity: 1, ActorID: actorID})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestPostgres_ConcurrentFullBalance(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	srcID, dstID := seedPair(t, pool, 7, 0)
	uc := newUseCase(pool, nopSink{})

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		failures  []error
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.ExecuteTransfer(ctx, transfer.TransferInput{SourceID: srcID, DestinationID: dstID, Quantity: 7, ActorID: actorID})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
				return
			}
			failures = append(failures, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes, "solo uno de los dos traslados del saldo completo puede confirmarse")
	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[0], domain.ErrInsufficientStock)

	src, dst := quantities(t, pool, srcID, dstID)
	assert.Equal(t, int64(0), src)
	assert.Equal(t, int64(7), dst)
}

func TestPostgres_ConcurrentConservation(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	srcID, dstID := seedPair(t, pool, 50, 0)
	uc := newUseCase(pool, nopSink{})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.ExecuteTransfer(ctx, transfer.TransferInput{SourceID: srcID, DestinationID: dstID, Quantity: 3, ActorID: actorID})
			if err != nil && !errors.Is(err, domain.ErrInsufficientStock) {
				t.Errorf("error inesperado: %v", err)
			}
		}()
	}
	wg.Wait()

	src, dst := quantities(t, pool, srcID, dstID)
	assert.GreaterOrEqual(t, src, int64(0))
	assert.Equal(t, int64(50), src+dst, "la suma origen + destino se conserva")
	assert.Equal(t, int64(48), dst, "16 traslados de 3 caben en 50")
}

func TestPostgres_IdempotencyKeyUnique(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	srcID, dstID := seedPair(t, pool, 10, 0)
	uc := newUseCase(pool, nopSink{})

	in := transfer.TransferInput{SourceID: srcID, DestinationID: dstID, Quantity: 2, ActorID: actorID, IdempotencyKey: "pedido-1"}
	first, err := uc.ExecuteTransfer(ctx, in)
	require.NoError(t, err)
	again, err := uc.ExecuteTransfer(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID, "la misma clave devuelve el traslado original")

	src, _ := quantities(t, pool, srcID, dstID)
	assert.Equal(t, int64(8), src)
}

type nopSink struct{}

func (nopSink) Record(context.Context, *entity.AuditLog) error { return nil }
