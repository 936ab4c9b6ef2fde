package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Bodega-api/internal/application/dto"
	"github.com/jhoicas/Bodega-api/internal/application/usecase"
	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
	"github.com/jhoicas/Bodega-api/internal/infrastructure/memory"
)

// repoSink escribe la auditoría directo en el repositorio (sin dispatcher).
type repoSink struct{ repo repository.AuditLogRepository }

func (s repoSink) Record(ctx context.Context, e *entity.AuditLog) error { return s.repo.Create(ctx, e) }

type failingSink struct{ calls int }

func (f *failingSink) Record(context.Context, *entity.AuditLog) error {
	f.calls++
	return errors.New("auditoría caída")
}

func TestStockUseCase_CreateAudits(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	uc := usecase.NewInventoryItemUseCase(store.InventoryItems(), repoSink{store.AuditLogs()}, zerolog.Nop())

	out, err := uc.Create(ctx, "user-1", dto.CreateStockRecordRequest{
		ProductRef: "SKU-3", Name: "Ladrillo", Quantity: 12, UnitCost: decimal.RequireFromString("0.75"),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.StockKindInventory, out.Kind)
	assert.Equal(t, int64(12), out.Quantity)

	logs, err := store.AuditLogs().List(ctx, repository.AuditLogFilter{EntityID: out.ID})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, entity.AuditActionCreated, logs[0].Action)
	assert.Equal(t, entity.AuditEntityInventoryItem, logs[0].EntityType)
	assert.Equal(t, "user-1", logs[0].ActorID)
}

func TestStockUseCase_AuditFailureDoesNotFailCreate(t *testing.T) {
	store := memory.NewStore()
	sink := &failingSink{}
	uc := usecase.NewWarehouseItemUseCase(store.WarehouseItems(), sink, zerolog.Nop())

	out, err := uc.Create(context.Background(), "user-1", dto.CreateStockRecordRequest{ProductRef: "SKU-1", Name: "Arena", Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, sink.calls)

	got, err := uc.GetByID(context.Background(), out.ID)
	require.NoError(t, err)
	require.NotNil(t, got, "el registro existe aunque la auditoría falle")
}

func TestStockUseCase_CreateRejectsInvalid(t *testing.T) {
	store := memory.NewStore()
	uc := usecase.NewWarehouseItemUseCase(store.WarehouseItems(), nil, zerolog.Nop())
	ctx := context.Background()

	_, err := uc.Create(ctx, "u", dto.CreateStockRecordRequest{ProductRef: "SKU-1", Name: "Arena", Quantity: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = uc.Create(ctx, "u", dto.CreateStockRecordRequest{ProductRef: "SKU-1", Name: "Arena", UnitCost: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStockUseCase_GetByIDAndList(t *testing.T) {
	store := memory.NewStore()
	uc := usecase.NewWarehouseItemUseCase(store.WarehouseItems(), nil, zerolog.Nop())
	ctx := context.Background()

	got, err := uc.GetByID(ctx, "no-existe")
	require.NoError(t, err)
	assert.Nil(t, got)

	for _, name := range []string{"A", "B", "C"} {
		_, err := uc.Create(ctx, "u", dto.CreateStockRecordRequest{ProductRef: "SKU-" + name, Name: name})
		require.NoError(t, err)
	}
	list, err := uc.List(ctx, dto.PageRequest{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, list.Items, 2)
	assert.Equal(t, 2, list.Page.Limit)
}

func TestTransferQueryUseCase(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Transfers().Create(ctx, &entity.Transfer{
		ID: "t-1", SourceRecordID: "w1", DestinationRecordID: "i1", Quantity: 2,
		UnitCost: decimal.NewFromInt(5), TotalValue: decimal.NewFromInt(10),
	}))
	uc := usecase.NewTransferQueryUseCase(store.Transfers())

	got, err := uc.GetByID(ctx, "t-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "10", got.TotalValue)

	missing, err := uc.GetByID(ctx, "t-2")
	require.NoError(t, err)
	assert.Nil(t, missing)

	list, err := uc.List(ctx, dto.TransferFilterRequest{DestinationID: "i1"})
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
}
