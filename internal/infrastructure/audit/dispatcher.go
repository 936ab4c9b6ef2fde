// Package audit registra entradas de auditoría en segundo plano, fuera de la transacción del traslado.
package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Bodega-api/internal/application/transfer"
	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
)

var _ transfer.AuditSink = (*Dispatcher)(nil)

// Config tamaño de la cola y cantidad de workers.
type Config struct {
	BufferSize   int
	Workers      int
	WriteTimeout time.Duration
}

// FailureFunc se invoca cuando un worker no pudo escribir una entrada.
type FailureFunc func(entry *entity.AuditLog, err error)

// Dispatcher encola entradas y las escribe con N workers. Nunca bloquea al caller:
// con la cola llena devuelve ErrAuditLog.
type Dispatcher struct {
	repo      repository.AuditLogRepository
	queue     chan *entity.AuditLog
	cfg       Config
	log       zerolog.Logger
	onFailure FailureFunc

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher crea el dispatcher e inicia los workers.
func NewDispatcher(repo repository.AuditLogRepository, cfg Config, log zerolog.Logger, onFailure FailureFunc) *Dispatcher {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 256
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	d := &Dispatcher{
		repo:      repo,
		queue:     make(chan *entity.AuditLog, cfg.BufferSize),
		cfg:       cfg,
		log:       log.With().Str("component", "audit").Logger(),
		onFailure: onFailure,
	}
	for i := 0; i < cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// Record encola la entrada. El traslado ya está confirmado; un error aquí solo se registra.
func (d *Dispatcher) Record(_ context.Context, entry *entity.AuditLog) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return fmt.Errorf("%w: dispatcher cerrado", domain.ErrAuditLog)
	}
	select {
	case d.queue <- entry:
		return nil
	default:
		return fmt.Errorf("%w: cola de auditoría llena", domain.ErrAuditLog)
	}
}

// Close deja de aceptar entradas y espera a que se escriban las pendientes o venza ctx.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for entry := range d.queue {
		d.write(entry)
	}
}

func (d *Dispatcher) write(entry *entity.AuditLog) {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.WriteTimeout)
	defer cancel()
	if err := d.repo.Create(ctx, entry); err != nil {
		d.log.Warn().Err(err).
			Str("entity_type", entry.EntityType).
			Str("entity_id", entry.EntityID).
			Msg("no se pudo escribir la auditoría")
		if d.onFailure != nil {
			d.onFailure(entry, err)
		}
	}
}
