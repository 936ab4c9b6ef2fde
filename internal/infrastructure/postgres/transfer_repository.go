package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo implementación de TransferRepository sobre PostgreSQL (usable con pool o tx).
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador de traslados. Pasar pool o tx (Querier).
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

const transferColumns = `id, source_record_id, destination_record_id, product_ref, quantity,
	unit_cost, total_value, initiated_by, COALESCE(idempotency_key, ''), status, created_at`

// Create inserta el traslado. La clave de idempotencia vacía se guarda como NULL (no participa del índice único).
func (r *TransferRepo) Create(ctx context.Context, t *entity.Transfer) error {
	query := `
		INSERT INTO transfers (id, source_record_id, destination_record_id, product_ref, quantity,
			unit_cost, total_value, initiated_by, idempotency_key, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), $10, $11)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.SourceRecordID, t.DestinationRecordID, t.ProductRef, t.Quantity,
		t.UnitCost, t.TotalValue, t.InitiatedBy, t.IdempotencyKey, t.Status, t.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: idempotency_key %s", domain.ErrDuplicate, t.IdempotencyKey)
		}
		return fmt.Errorf("insert transfer: %w", err)
	}
	return nil
}

// GetByID obtiene un traslado por ID.
func (r *TransferRepo) GetByID(ctx context.Context, id string) (*entity.Transfer, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByIdempotencyKey obtiene el traslado confirmado con esa clave.
func (r *TransferRepo) GetByIdempotencyKey(ctx context.Context, key string) (*entity.Transfer, error) {
	if key == "" {
		return nil, nil
	}
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE idempotency_key = $1`
	return r.getOne(ctx, query, key)
}

// List lista traslados con filtros opcionales por origen y destino.
func (r *TransferRepo) List(ctx context.Context, f repository.TransferFilter) ([]*entity.Transfer, error) {
	for _, id := range []string{f.SourceID, f.DestinationID} {
		if _, err := uuid.Parse(id); id != "" && err != nil {
			return []*entity.Transfer{}, nil
		}
	}
	var (
		conds []string
		args  []any
	)
	if f.SourceID != "" {
		args = append(args, f.SourceID)
		conds = append(conds, fmt.Sprintf("source_record_id = $%d", len(args)))
	}
	if f.DestinationID != "" {
		args = append(args, f.DestinationID)
		conds = append(conds, fmt.Sprintf("destination_record_id = $%d", len(args)))
	}
	query := `SELECT ` + transferColumns + ` FROM transfers`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	limit, offset := pageArgs(f.Limit, f.Offset)
	args = append(args, limit, offset)
	query += fmt.Sprintf(` ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Transfer, 0)
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func (r *TransferRepo) getOne(ctx context.Context, query string, arg string) (*entity.Transfer, error) {
	t, err := scanTransfer(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}
	return t, nil
}

func scanTransfer(row pgx.Row) (*entity.Transfer, error) {
	var t entity.Transfer
	err := row.Scan(
		&t.ID, &t.SourceRecordID, &t.DestinationRecordID, &t.ProductRef, &t.Quantity,
		&t.UnitCost, &t.TotalValue, &t.InitiatedBy, &t.IdempotencyKey, &t.Status, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
