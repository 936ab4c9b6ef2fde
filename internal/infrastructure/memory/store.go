// Package memory implementa los puertos de persistencia en memoria con el mismo contrato
// transaccional que PostgreSQL: bloqueo por fila hasta commit/rollback, escrituras diferidas
// hasta el commit y cantidades no negativas.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/Bodega-api/internal/application/transfer"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
)

var _ transfer.TxRunner = (*Store)(nil)

// Store datos confirmados y candados de fila.
type Store struct {
	mu        sync.Mutex
	stock     map[string]map[string]entity.StockRecord // kind -> id -> registro
	transfers []entity.Transfer
	audit     []entity.AuditLog
	users     map[string]entity.User
	locks     map[string]chan struct{}
	commitErr error
	now       func() time.Time
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		stock: map[string]map[string]entity.StockRecord{
			entity.StockKindWarehouse: {},
			entity.StockKindInventory: {},
		},
		users: map[string]entity.User{},
		locks: map[string]chan struct{}{},
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// FailNextCommit hace que el próximo commit falle con err (simula caída del almacenamiento).
func (s *Store) FailNextCommit(err error) {
	s.mu.Lock()
	s.commitErr = err
	s.mu.Unlock()
}

// WarehouseItems repositorio de artículos de bodega fuera de transacción.
func (s *Store) WarehouseItems() *StockRepo {
	return &StockRepo{store: s, kind: entity.StockKindWarehouse}
}

// InventoryItems repositorio de artículos de inventario fuera de transacción.
func (s *Store) InventoryItems() *StockRepo {
	return &StockRepo{store: s, kind: entity.StockKindInventory}
}

// Transfers repositorio de traslados fuera de transacción.
func (s *Store) Transfers() *TransferRepo {
	return &TransferRepo{store: s}
}

// AuditLogs repositorio de auditoría.
func (s *Store) AuditLogs() *AuditLogRepo {
	return &AuditLogRepo{store: s}
}

// Users repositorio de usuarios.
func (s *Store) Users() *UserRepo {
	return &UserRepo{store: s}
}

// Run ejecuta fn con repositorios atados a una transacción. Commit si fn no falla; si no, nada se aplica.
func (s *Store) Run(ctx context.Context, fn func(
	warehouseItems repository.StockRecordRepository,
	inventoryItems repository.StockRecordRepository,
	transfers repository.TransferRepository,
) error) error {
	t := &tx{store: s, held: map[string]bool{}, stock: map[string]int64{}}
	defer t.releaseAll()

	if err := fn(
		&StockRepo{store: s, kind: entity.StockKindWarehouse, tx: t},
		&StockRepo{store: s, kind: entity.StockKindInventory, tx: t},
		&TransferRepo{store: s, tx: t},
	); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	if err := t.commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Store) rowLock(key string) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[key] = ch
	}
	return ch
}

// tx escrituras pendientes y candados tomados por una transacción.
type tx struct {
	store     *Store
	held      map[string]bool
	stock     map[string]int64 // kind:id -> cantidad nueva
	transfers []entity.Transfer
}

func stockKey(kind, id string) string {
	return kind + ":" + id
}

// lock toma el candado de la fila; espera hasta que se libere o se cancele ctx.
func (t *tx) lock(ctx context.Context, key string) error {
	if t.held[key] {
		return nil
	}
	ch := t.store.rowLock(key)
	select {
	case ch <- struct{}{}:
		t.held[key] = true
		return nil
	case <-ctx.Done():
		return fmt.Errorf("lock %s: %w", key, ctx.Err())
	}
}

func (t *tx) releaseAll() {
	for key := range t.held {
		<-t.store.rowLock(key)
	}
	t.held = nil
}

func (t *tx) commit() error {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.commitErr; err != nil {
		s.commitErr = nil
		return err
	}
	for _, tr := range t.transfers {
		if s.hasTransfer(tr) {
			return fmt.Errorf("insert transfer: %w", errDuplicateTransfer)
		}
	}
	now := s.now()
	for key, qty := range t.stock {
		kind, id := splitKey(key)
		rec, ok := s.stock[kind][id]
		if !ok {
			return fmt.Errorf("update %s: registro desaparecido", key)
		}
		if qty < 0 {
			return fmt.Errorf("update %s: %w", key, errNegativeQuantity)
		}
		rec.Quantity = qty
		rec.UpdatedAt = now
		s.stock[kind][id] = rec
	}
	s.transfers = append(s.transfers, t.transfers...)
	return nil
}

func splitKey(key string) (kind, id string) {
	for i := 0; i < len(key); i++ {
		if key[i] == ':' {
			return key[:i], key[i+1:]
		}
	}
	return "", key
}
