package transfer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
)

// Resultados reportados a Metrics.
const (
	ResultCompleted         = "completed"
	ResultReplayed          = "replayed"
	ResultInvalid           = "invalid"
	ResultNotFound          = "not_found"
	ResultInsufficientStock = "insufficient_stock"
	ResultProductMismatch   = "product_mismatch"
	ResultConflict          = "conflict"
	ResultPersistenceError  = "persistence_error"
)

// Config parámetros del caso de uso.
type Config struct {
	RequireSameProduct bool          // rechaza traslados entre productos distintos
	TxTimeout          time.Duration // 0 = sin límite propio
	IdempotencyTTL     time.Duration
}

// TransferInput entrada de ExecuteTransfer. ActorID viene ya autenticado.
type TransferInput struct {
	SourceID       string
	DestinationID  string
	Quantity       int64
	ActorID        string
	IdempotencyKey string
}

// Option configura colaboradores opcionales.
type Option func(*ExecuteTransferUseCase)

// WithIdempotencyStore activa la reserva de claves de idempotencia.
func WithIdempotencyStore(s IdempotencyStore) Option {
	return func(uc *ExecuteTransferUseCase) { uc.idem = s }
}

// WithNotifier agrega un notificador post-commit.
func WithNotifier(n Notifier) Option {
	return func(uc *ExecuteTransferUseCase) { uc.notifier = n }
}

// WithMetrics agrega instrumentación.
func WithMetrics(m Metrics) Option {
	return func(uc *ExecuteTransferUseCase) { uc.metrics = m }
}

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(uc *ExecuteTransferUseCase) { uc.now = now }
}

// ExecuteTransferUseCase traslada cantidad de un artículo de bodega a un artículo de inventario
// en una sola transacción con bloqueo de fila (SELECT FOR UPDATE), y registra la auditoría después del commit.
type ExecuteTransferUseCase struct {
	txRunner     TxRunner
	transferRepo repository.TransferRepository
	audit        AuditSink
	idem         IdempotencyStore
	notifier     Notifier
	metrics      Metrics
	cfg          Config
	log          zerolog.Logger
	now          func() time.Time
}

// NewExecuteTransferUseCase construye el caso de uso.
func NewExecuteTransferUseCase(
	txRunner TxRunner,
	transferRepo repository.TransferRepository,
	audit AuditSink,
	cfg Config,
	log zerolog.Logger,
	opts ...Option,
) *ExecuteTransferUseCase {
	uc := &ExecuteTransferUseCase{
		txRunner:     txRunner,
		transferRepo: transferRepo,
		audit:        audit,
		metrics:      noopMetrics{},
		cfg:          cfg,
		log:          log.With().Str("component", "transfer").Logger(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// ExecuteTransfer valida y ejecuta el traslado. Devuelve el registro creado (o el original si la
// clave de idempotencia ya fue usada con los mismos datos).
// Si retorna error, ninguna cantidad cambió y no existe registro de traslado para este intento.
func (uc *ExecuteTransferUseCase) ExecuteTransfer(ctx context.Context, in TransferInput) (*entity.Transfer, error) {
	start := time.Now()
	t, result, err := uc.execute(ctx, in)
	uc.metrics.ObserveTransfer(result, in.Quantity, time.Since(start))
	return t, err
}

func (uc *ExecuteTransferUseCase) execute(ctx context.Context, in TransferInput) (*entity.Transfer, string, error) {
	if err := validateInput(in); err != nil {
		return nil, ResultInvalid, err
	}

	key := scopedKey(in)
	if key != "" {
		existing, err := uc.claimKey(ctx, key, in)
		if err != nil {
			return nil, resultFor(err), err
		}
		if existing != nil {
			return existing, ResultReplayed, nil
		}
	}

	t, source, dest, err := uc.runTransaction(ctx, in, key)
	if err != nil {
		if key != "" {
			uc.releaseKey(key)
			if errors.Is(err, domain.ErrDuplicate) {
				// Otra réplica confirmó la misma clave; devolver ese traslado
				if existing, lookupErr := uc.replay(ctx, key, in); lookupErr == nil && existing != nil {
					return existing, ResultReplayed, nil
				}
				err = fmt.Errorf("%w: %w", domain.ErrIdempotencyConflict, err)
			}
		}
		return nil, resultFor(err), err
	}

	uc.afterCommit(ctx, t, source, dest)
	return t, ResultCompleted, nil
}

func validateInput(in TransferInput) error {
	if in.Quantity <= 0 {
		return fmt.Errorf("%w: la cantidad debe ser mayor que cero (recibido %d)", domain.ErrInvalidQuantity, in.Quantity)
	}
	if in.SourceID == "" || in.DestinationID == "" || in.ActorID == "" {
		return fmt.Errorf("%w: sourceId, destinationId y actor son obligatorios", domain.ErrInvalidInput)
	}
	if in.SourceID == in.DestinationID {
		return fmt.Errorf("%w: origen y destino son el mismo registro", domain.ErrInvalidQuantity)
	}
	return nil
}

// runTransaction pasos 1-8: lee y bloquea ambos registros, verifica suficiencia, aplica ambos
// cambios y crea el registro de traslado; todo o nada.
func (uc *ExecuteTransferUseCase) runTransaction(ctx context.Context, in TransferInput, key string) (*entity.Transfer, *entity.StockRecord, *entity.StockRecord, error) {
	if uc.cfg.TxTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.cfg.TxTimeout)
		defer cancel()
	}

	var (
		created     *entity.Transfer
		source      *entity.StockRecord
		destination *entity.StockRecord
	)
	err := uc.txRunner.Run(ctx, func(
		warehouseItems repository.StockRecordRepository,
		inventoryItems repository.StockRecordRepository,
		transfers repository.TransferRepository,
	) error {
		// Orden fijo de bloqueo: primero bodega, luego inventario
		src, err := warehouseItems.GetForUpdate(ctx, in.SourceID)
		if err != nil {
			return err
		}
		if src == nil {
			return fmt.Errorf("%w: artículo de bodega %s", domain.ErrNotFound, in.SourceID)
		}
		dst, err := inventoryItems.GetForUpdate(ctx, in.DestinationID)
		if err != nil {
			return err
		}
		if dst == nil {
			return fmt.Errorf("%w: artículo de inventario %s", domain.ErrNotFound, in.DestinationID)
		}
		if uc.cfg.RequireSameProduct && src.ProductRef != dst.ProductRef {
			return fmt.Errorf("%w: %s → %s", domain.ErrProductMismatch, src.ProductRef, dst.ProductRef)
		}
		if src.Quantity < in.Quantity {
			return fmt.Errorf("%w: disponible %d, solicitado %d", domain.ErrInsufficientStock, src.Quantity, in.Quantity)
		}
		if dst.Quantity > math.MaxInt64-in.Quantity {
			return fmt.Errorf("%w: el destino excedería el máximo representable", domain.ErrInvalidQuantity)
		}

		now := uc.now().UTC()
		if err := warehouseItems.UpdateQuantity(ctx, src.ID, src.Quantity-in.Quantity); err != nil {
			return err
		}
		if err := inventoryItems.UpdateQuantity(ctx, dst.ID, dst.Quantity+in.Quantity); err != nil {
			return err
		}

		t := &entity.Transfer{
			ID:                  uuid.New().String(),
			SourceRecordID:      src.ID,
			DestinationRecordID: dst.ID,
			ProductRef:          src.ProductRef,
			Quantity:            in.Quantity,
			UnitCost:            src.UnitCost,
			TotalValue:          src.UnitCost.Mul(decimal.NewFromInt(in.Quantity)),
			InitiatedBy:         in.ActorID,
			IdempotencyKey:      key,
			Status:              entity.TransferStatusCompleted,
			CreatedAt:           now,
		}
		if err := transfers.Create(ctx, t); err != nil {
			return err
		}

		src.Quantity -= in.Quantity
		dst.Quantity += in.Quantity
		src.UpdatedAt, dst.UpdatedAt = now, now
		created, source, destination = t, src, dst
		return nil
	})
	if err != nil {
		return nil, nil, nil, classify(err)
	}
	return created, source, destination, nil
}

// classify deja pasar errores de validación y envuelve el resto como ErrPersistence.
func classify(err error) error {
	if domain.IsValidation(err) || errors.Is(err, domain.ErrDuplicate) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
}

// afterCommit paso 9: auditoría y notificaciones, sin afectar el traslado ya confirmado.
func (uc *ExecuteTransferUseCase) afterCommit(ctx context.Context, t *entity.Transfer, source, dest *entity.StockRecord) {
	entry := &entity.AuditLog{
		ID:         uuid.New().String(),
		ActorID:    t.InitiatedBy,
		Action:     entity.AuditActionTransferred,
		EntityType: entity.AuditEntityTransfer,
		EntityID:   t.ID,
		Details: fmt.Sprintf("%d unidades de %s trasladadas de %s (queda %d) a %s (queda %d)",
			t.Quantity, t.ProductRef, source.ID, source.Quantity, dest.ID, dest.Quantity),
		CreatedAt: t.CreatedAt,
	}
	if uc.audit != nil {
		if err := uc.audit.Record(ctx, entry); err != nil {
			uc.metrics.AuditFailed()
			uc.log.Warn().Err(err).Str("transfer_id", t.ID).Msg("auditoría del traslado no registrada")
		}
	}

	if uc.notifier != nil {
		if err := uc.notifier.TransferCompleted(ctx, t, source, dest); err != nil {
			uc.log.Warn().Err(err).Str("transfer_id", t.ID).Msg("notificación del traslado fallida")
		}
	}

	uc.log.Info().
		Str("transfer_id", t.ID).
		Str("source_id", t.SourceRecordID).
		Str("destination_id", t.DestinationRecordID).
		Int64("quantity", t.Quantity).
		Str("actor_id", t.InitiatedBy).
		Msg("traslado completado")
}

// claimKey devuelve el traslado previo si la clave ya fue confirmada; si no, reserva la clave.
func (uc *ExecuteTransferUseCase) claimKey(ctx context.Context, key string, in TransferInput) (*entity.Transfer, error) {
	existing, err := uc.replay(ctx, key, in)
	if err != nil || existing != nil {
		return existing, err
	}
	if uc.idem == nil {
		return nil, nil
	}
	ok, err := uc.idem.Reserve(ctx, key, uc.cfg.IdempotencyTTL)
	if err != nil {
		// Sin almacén de idempotencia sigue protegiendo el índice único de la tabla
		uc.log.Warn().Err(err).Msg("no se pudo reservar la clave de idempotencia")
		return nil, nil
	}
	if !ok {
		// Puede haberse confirmado entre la consulta y la reserva
		if existing, err := uc.replay(ctx, key, in); err != nil || existing != nil {
			return existing, err
		}
		return nil, domain.ErrIdempotencyConflict
	}
	return nil, nil
}

// replay busca un traslado confirmado con la clave y comprueba que corresponda a la misma solicitud.
func (uc *ExecuteTransferUseCase) replay(ctx context.Context, key string, in TransferInput) (*entity.Transfer, error) {
	existing, err := uc.transferRepo.GetByIdempotencyKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	if existing == nil {
		return nil, nil
	}
	if existing.SourceRecordID != in.SourceID || existing.DestinationRecordID != in.DestinationID || existing.Quantity != in.Quantity {
		return nil, fmt.Errorf("%w: la clave ya se usó con otros datos", domain.ErrIdempotencyConflict)
	}
	return existing, nil
}

func (uc *ExecuteTransferUseCase) releaseKey(key string) {
	if uc.idem == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := uc.idem.Release(ctx, key); err != nil {
		uc.log.Warn().Err(err).Msg("no se pudo liberar la clave de idempotencia")
	}
}

// scopedKey limita la clave al actor para que dos usuarios no colisionen.
func scopedKey(in TransferInput) string {
	if in.IdempotencyKey == "" {
		return ""
	}
	return in.ActorID + ":" + in.IdempotencyKey
}

func resultFor(err error) string {
	switch {
	case errors.Is(err, domain.ErrIdempotencyConflict):
		return ResultConflict
	case errors.Is(err, domain.ErrNotFound):
		return ResultNotFound
	case errors.Is(err, domain.ErrInsufficientStock):
		return ResultInsufficientStock
	case errors.Is(err, domain.ErrProductMismatch):
		return ResultProductMismatch
	case errors.Is(err, domain.ErrInvalidQuantity), errors.Is(err, domain.ErrInvalidInput):
		return ResultInvalid
	default:
		return ResultPersistenceError
	}
}
