package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
)

var _ repository.StockRecordRepository = (*StockRecordRepo)(nil)

// StockRecordRepo implementación de StockRecordRepository sobre una tabla de stock
// (warehouse_items o inventory_items). Usable con pool o tx.
type StockRecordRepo struct {
	q     Querier
	table string
	kind  string
}

// NewWarehouseItemRepository adaptador para artículos de bodega. Pasar pool o tx (Querier).
func NewWarehouseItemRepository(q Querier) *StockRecordRepo {
	return &StockRecordRepo{q: q, table: "warehouse_items", kind: entity.StockKindWarehouse}
}

// NewInventoryItemRepository adaptador para artículos de inventario. Pasar pool o tx (Querier).
func NewInventoryItemRepository(q Querier) *StockRecordRepo {
	return &StockRecordRepo{q: q, table: "inventory_items", kind: entity.StockKindInventory}
}

const stockRecordColumns = `id, product_ref, name, location, quantity, unit_cost, created_at, updated_at`

// Create inserta un registro nuevo.
func (r *StockRecordRepo) Create(ctx context.Context, rec *entity.StockRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	rec.UpdatedAt = rec.CreatedAt
	rec.Kind = r.kind

	query := `INSERT INTO ` + r.table + ` (` + stockRecordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		rec.ID, rec.ProductRef, rec.Name, rec.Location, rec.Quantity, rec.UnitCost,
		rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isCheckViolation(err) {
			return fmt.Errorf("%w: quantity no puede ser negativa", domain.ErrInvalidQuantity)
		}
		return fmt.Errorf("insert %s: %w", r.table, err)
	}
	return nil
}

// GetByID obtiene un registro por ID. nil, nil si no existe.
func (r *StockRecordRepo) GetByID(ctx context.Context, id string) (*entity.StockRecord, error) {
	query := `SELECT ` + stockRecordColumns + ` FROM ` + r.table + ` WHERE id = $1`
	return r.getOne(ctx, query, id, "get")
}

// GetForUpdate obtiene el registro y bloquea la fila para update (SELECT FOR UPDATE).
func (r *StockRecordRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockRecord, error) {
	query := `SELECT ` + stockRecordColumns + ` FROM ` + r.table + ` WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, query, id, "get for update")
}

// UpdateQuantity fija la cantidad disponible.
func (r *StockRecordRepo) UpdateQuantity(ctx context.Context, id string, quantity int64) error {
	query := `UPDATE ` + r.table + ` SET quantity = $2, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, id, quantity)
	if err != nil {
		return fmt.Errorf("update %s quantity: %w", r.table, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update %s quantity: %w", r.table, pgx.ErrNoRows)
	}
	return nil
}

// List lista registros con paginación, más recientes primero.
func (r *StockRecordRepo) List(ctx context.Context, limit, offset int) ([]*entity.StockRecord, error) {
	limit, offset = pageArgs(limit, offset)
	query := `SELECT ` + stockRecordColumns + ` FROM ` + r.table + `
		ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.table, err)
	}
	defer rows.Close()
	list := make([]*entity.StockRecord, 0)
	for rows.Next() {
		rec, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.table, err)
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}

func (r *StockRecordRepo) getOne(ctx context.Context, query, id, op string) (*entity.StockRecord, error) {
	// Un id que no es UUID no puede existir en la tabla
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	rec, err := r.scan(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s %s: %w", op, r.table, err)
	}
	return rec, nil
}

func (r *StockRecordRepo) scan(row pgx.Row) (*entity.StockRecord, error) {
	rec := entity.StockRecord{Kind: r.kind}
	err := row.Scan(
		&rec.ID, &rec.ProductRef, &rec.Name, &rec.Location, &rec.Quantity, &rec.UnitCost,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
