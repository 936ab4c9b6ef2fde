// Package messaging publica eventos de traslado en Kafka.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/Bodega-api/internal/application/dto"
	"github.com/jhoicas/Bodega-api/internal/application/transfer"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/pkg/config"
)

var _ transfer.Notifier = (*KafkaPublisher)(nil)

// ErrQueueFull la cola de publicación no tiene espacio; el evento se descarta.
var ErrQueueFull = errors.New("cola de eventos llena")

// ErrPublisherClosed el publicador ya no acepta eventos.
var ErrPublisherClosed = errors.New("publicador cerrado")

// MessageWriter lo que el publicador usa de *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// PublisherConfig tamaño de la cola y timeout de cada escritura.
type PublisherConfig struct {
	BufferSize   int
	WriteTimeout time.Duration
}

// KafkaPublisher publica un mensaje por traslado confirmado, con key = id del origen
// para que los eventos de un mismo artículo queden en la misma partición.
// La escritura ocurre en un worker: un broker caído no retrasa la respuesta HTTP.
type KafkaPublisher struct {
	writer MessageWriter
	queue  chan kafka.Message
	cfg    PublisherConfig
	log    zerolog.Logger

	mu         sync.RWMutex
	closed     bool
	done       chan struct{}
	writerOnce sync.Once
	writerErr  error
}

// NewKafkaWriter crea el writer de kafka-go para el tópico configurado.
func NewKafkaWriter(cfg config.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
		RequiredAcks: kafka.RequireOne,
	}
}

// NewKafkaPublisher construye el publicador e inicia su worker.
func NewKafkaPublisher(writer MessageWriter, cfg PublisherConfig, log zerolog.Logger) *KafkaPublisher {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 256
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	p := &KafkaPublisher{
		writer: writer,
		queue:  make(chan kafka.Message, cfg.BufferSize),
		cfg:    cfg,
		log:    log.With().Str("component", "kafka").Logger(),
		done:   make(chan struct{}),
	}
	go p.worker()
	return p
}

// TransferCompleted serializa el evento y lo encola. No espera al broker.
func (p *KafkaPublisher) TransferCompleted(_ context.Context, t *entity.Transfer, source, destination *entity.StockRecord) error {
	payload, err := json.Marshal(dto.NewStockUpdateEvent(t, source, destination))
	if err != nil {
		return fmt.Errorf("serializar evento de traslado: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(t.SourceRecordID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(dto.EventTypeStockUpdate)},
			{Key: "transfer_id", Value: []byte(t.ID)},
		},
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return fmt.Errorf("publicar traslado %s: %w", t.ID, ErrPublisherClosed)
	}
	select {
	case p.queue <- msg:
		return nil
	default:
		return fmt.Errorf("publicar traslado %s: %w", t.ID, ErrQueueFull)
	}
}

// Close deja de aceptar eventos, espera a que se escriban los encolados (o venza ctx) y cierra el writer.
func (p *KafkaPublisher) Close(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	select {
	case <-p.done:
		return p.closeWriter()
	case <-ctx.Done():
		_ = p.closeWriter()
		return ctx.Err()
	}
}

func (p *KafkaPublisher) closeWriter() error {
	p.writerOnce.Do(func() { p.writerErr = p.writer.Close() })
	return p.writerErr
}

// Un solo worker conserva el orden de los eventos de cada origen.
func (p *KafkaPublisher) worker() {
	defer close(p.done)
	for msg := range p.queue {
		p.write(msg)
	}
}

func (p *KafkaPublisher) write(msg kafka.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.WriteTimeout)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Warn().Err(err).Str("key", string(msg.Key)).Msg("no se pudo publicar el evento de traslado")
		return
	}
	p.log.Debug().Str("key", string(msg.Key)).Msg("evento de traslado publicado")
}
