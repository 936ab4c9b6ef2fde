package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
)

var (
	_ repository.StockRecordRepository = (*StockRepo)(nil)
	_ repository.TransferRepository    = (*TransferRepo)(nil)
	_ repository.AuditLogRepository    = (*AuditLogRepo)(nil)
	_ repository.UserRepository        = (*UserRepo)(nil)
)

var (
	errNegativeQuantity  = errors.New("check constraint: quantity >= 0")
	errDuplicateTransfer = fmt.Errorf("%w: idempotency_key", domain.ErrDuplicate)
)

// StockRepo registros de stock de un tipo (bodega o inventario). tx nil = autocommit.
type StockRepo struct {
	store *Store
	kind  string
	tx    *tx
}

// Create inserta un registro nuevo.
func (r *StockRepo) Create(_ context.Context, record *entity.StockRecord) error {
	if record.Quantity < 0 {
		return fmt.Errorf("insert stock record: %w", errNegativeQuantity)
	}
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	now := r.store.now()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = record.CreatedAt
	record.Kind = r.kind

	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.stock[r.kind][record.ID]; ok {
		return domain.ErrDuplicate
	}
	s.stock[r.kind][record.ID] = *record
	return nil
}

// GetByID lee el valor confirmado (o el pendiente de esta transacción).
func (r *StockRepo) GetByID(_ context.Context, id string) (*entity.StockRecord, error) {
	s := r.store
	s.mu.Lock()
	rec, ok := s.stock[r.kind][id]
	s.mu.Unlock()
	if !ok {
		return nil, nil
	}
	if r.tx != nil {
		if qty, staged := r.tx.stock[stockKey(r.kind, id)]; staged {
			rec.Quantity = qty
		}
	}
	return &rec, nil
}

// GetForUpdate bloquea la fila hasta el fin de la transacción y la lee.
func (r *StockRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockRecord, error) {
	if r.tx != nil {
		if err := r.tx.lock(ctx, stockKey(r.kind, id)); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

// UpdateQuantity fija la cantidad; dentro de una transacción queda pendiente hasta el commit.
func (r *StockRepo) UpdateQuantity(_ context.Context, id string, quantity int64) error {
	if quantity < 0 {
		return fmt.Errorf("update stock record: %w", errNegativeQuantity)
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.stock[r.kind][id]
	if !ok {
		return fmt.Errorf("update stock record %s: sin filas afectadas", id)
	}
	if r.tx != nil {
		r.tx.stock[stockKey(r.kind, id)] = quantity
		return nil
	}
	rec.Quantity = quantity
	rec.UpdatedAt = s.now()
	s.stock[r.kind][id] = rec
	return nil
}

// List devuelve registros ordenados por fecha de creación descendente.
func (r *StockRepo) List(_ context.Context, limit, offset int) ([]*entity.StockRecord, error) {
	s := r.store
	s.mu.Lock()
	list := make([]*entity.StockRecord, 0, len(s.stock[r.kind]))
	for _, rec := range s.stock[r.kind] {
		rec := rec
		list = append(list, &rec)
	}
	s.mu.Unlock()
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return page(list, limit, offset), nil
}

// TransferRepo traslados confirmados (y pendientes de la transacción, si tx != nil).
type TransferRepo struct {
	store *Store
	tx    *tx
}

// Create registra el traslado; dentro de una transacción se aplica en el commit.
func (r *TransferRepo) Create(_ context.Context, t *entity.Transfer) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasTransfer(*t) {
		return errDuplicateTransfer
	}
	if r.tx != nil {
		for _, staged := range r.tx.transfers {
			if t.IdempotencyKey != "" && staged.IdempotencyKey == t.IdempotencyKey {
				return errDuplicateTransfer
			}
		}
		r.tx.transfers = append(r.tx.transfers, *t)
		return nil
	}
	s.transfers = append(s.transfers, *t)
	return nil
}

// GetByID obtiene un traslado confirmado.
func (r *TransferRepo) GetByID(_ context.Context, id string) (*entity.Transfer, error) {
	return r.find(func(t entity.Transfer) bool { return t.ID == id }), nil
}

// GetByIdempotencyKey obtiene el traslado confirmado con esa clave.
func (r *TransferRepo) GetByIdempotencyKey(_ context.Context, key string) (*entity.Transfer, error) {
	if key == "" {
		return nil, nil
	}
	return r.find(func(t entity.Transfer) bool { return t.IdempotencyKey == key }), nil
}

// List traslados filtrados, más recientes primero.
func (r *TransferRepo) List(_ context.Context, f repository.TransferFilter) ([]*entity.Transfer, error) {
	s := r.store
	s.mu.Lock()
	var list []*entity.Transfer
	for i := len(s.transfers) - 1; i >= 0; i-- {
		t := s.transfers[i]
		if f.SourceID != "" && t.SourceRecordID != f.SourceID {
			continue
		}
		if f.DestinationID != "" && t.DestinationRecordID != f.DestinationID {
			continue
		}
		list = append(list, &t)
	}
	s.mu.Unlock()
	return page(list, f.Limit, f.Offset), nil
}

func (r *TransferRepo) find(match func(entity.Transfer) bool) *entity.Transfer {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.transfers {
		if match(t) {
			t := t
			return &t
		}
	}
	return nil
}

// hasTransfer requiere s.mu tomado.
func (s *Store) hasTransfer(t entity.Transfer) bool {
	for _, existing := range s.transfers {
		if existing.ID == t.ID {
			return true
		}
		if t.IdempotencyKey != "" && existing.IdempotencyKey == t.IdempotencyKey {
			return true
		}
	}
	return false
}

// AuditLogRepo rastro de auditoría append-only.
type AuditLogRepo struct {
	store *Store
}

// Create agrega una entrada.
func (r *AuditLogRepo) Create(_ context.Context, entry *entity.AuditLog) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	r.store.mu.Lock()
	r.store.audit = append(r.store.audit, *entry)
	r.store.mu.Unlock()
	return nil
}

// List entradas filtradas, más recientes primero.
func (r *AuditLogRepo) List(_ context.Context, f repository.AuditLogFilter) ([]*entity.AuditLog, error) {
	s := r.store
	s.mu.Lock()
	var list []*entity.AuditLog
	for i := len(s.audit) - 1; i >= 0; i-- {
		e := s.audit[i]
		if f.EntityType != "" && e.EntityType != f.EntityType {
			continue
		}
		if f.EntityID != "" && e.EntityID != f.EntityID {
			continue
		}
		if f.ActorID != "" && e.ActorID != f.ActorID {
			continue
		}
		list = append(list, &e)
	}
	s.mu.Unlock()
	return page(list, f.Limit, f.Offset), nil
}

// UserRepo usuarios en memoria.
type UserRepo struct {
	store *Store
}

// Create persiste un usuario; ErrEmailAlreadyExists si el email ya existe.
func (r *UserRepo) Create(_ context.Context, user *entity.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	s.users[user.ID] = *user
	return nil
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// GetByEmail obtiene un usuario por email.
func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
