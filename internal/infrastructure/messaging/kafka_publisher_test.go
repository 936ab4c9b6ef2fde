package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Bodega-api/internal/application/dto"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/pkg/config"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	block  chan struct{} // si no es nil, WriteMessages espera a que se cierre
	closed bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.block != nil {
		select {
		case <-w.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	return nil
}

func (w *fakeWriter) written() []kafka.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]kafka.Message(nil), w.msgs...)
}

func sampleTransfer() (*entity.Transfer, *entity.StockRecord, *entity.StockRecord) {
	tr := &entity.Transfer{
		ID: "t-9", SourceRecordID: "w-9", DestinationRecordID: "i-9", ProductRef: "SKU-9",
		Quantity: 4, UnitCost: decimal.RequireFromString("1.50"), TotalValue: decimal.RequireFromString("6.00"),
		InitiatedBy: "u-1", Status: entity.TransferStatusCompleted, CreatedAt: time.Now().UTC(),
	}
	src := &entity.StockRecord{ID: "w-9", Kind: entity.StockKindWarehouse, ProductRef: "SKU-9", Quantity: 6}
	dst := &entity.StockRecord{ID: "i-9", Kind: entity.StockKindInventory, ProductRef: "SKU-9", Quantity: 4}
	return tr, src, dst
}

func TestKafkaPublisher_TransferCompleted(t *testing.T) {
	w := &fakeWriter{}
	p := NewKafkaPublisher(w, PublisherConfig{}, zerolog.Nop())

	tr, src, dst := sampleTransfer()
	require.NoError(t, p.TransferCompleted(context.Background(), tr, src, dst))
	require.NoError(t, p.Close(context.Background()), "Close vacía la cola")

	msgs := w.written()
	require.Len(t, msgs, 1)
	msg := msgs[0]
	assert.Equal(t, "w-9", string(msg.Key), "key = id del origen")
	var ev dto.StockUpdateEvent
	require.NoError(t, json.Unmarshal(msg.Value, &ev))
	assert.Equal(t, "t-9", ev.Transfer.ID)
	assert.Equal(t, "6", ev.Transfer.TotalValue)
	assert.Equal(t, int64(6), ev.Source.Quantity)
	assert.True(t, w.closed)
}

func TestKafkaPublisher_BrokerDownDoesNotBlockCaller(t *testing.T) {
	w := &fakeWriter{block: make(chan struct{})}
	p := NewKafkaPublisher(w, PublisherConfig{BufferSize: 4, WriteTimeout: time.Minute}, zerolog.Nop())
	tr, src, dst := sampleTransfer()

	start := time.Now()
	require.NoError(t, p.TransferCompleted(context.Background(), tr, src, dst))
	assert.Less(t, time.Since(start), 100*time.Millisecond, "encolar no espera al broker")

	close(w.block)
	require.NoError(t, p.Close(context.Background()))
	assert.Len(t, w.written(), 1)
}

func TestKafkaPublisher_QueueFull(t *testing.T) {
	w := &fakeWriter{block: make(chan struct{})}
	defer close(w.block)
	p := NewKafkaPublisher(w, PublisherConfig{BufferSize: 1, WriteTimeout: time.Minute}, zerolog.Nop())
	tr, src, dst := sampleTransfer()

	// el worker toma uno y queda bloqueado; el siguiente llena la cola
	var err error
	for i := 0; i < 3 && err == nil; i++ {
		err = p.TransferCompleted(context.Background(), tr, src, dst)
	}
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestKafkaPublisher_WriteErrorIsLoggedNotReturned(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker caído")}
	p := NewKafkaPublisher(w, PublisherConfig{}, zerolog.Nop())
	tr, src, dst := sampleTransfer()

	assert.NoError(t, p.TransferCompleted(context.Background(), tr, src, dst))
	require.NoError(t, p.Close(context.Background()))
	assert.Empty(t, w.written())
}

func TestKafkaPublisher_Close(t *testing.T) {
	t.Run("después de cerrar rechaza eventos", func(t *testing.T) {
		p := NewKafkaPublisher(&fakeWriter{}, PublisherConfig{}, zerolog.Nop())
		require.NoError(t, p.Close(context.Background()))
		require.NoError(t, p.Close(context.Background()), "Close se puede repetir")

		tr, src, dst := sampleTransfer()
		assert.ErrorIs(t, p.TransferCompleted(context.Background(), tr, src, dst), ErrPublisherClosed)
	})

	t.Run("respeta el deadline si el broker no responde", func(t *testing.T) {
		w := &fakeWriter{block: make(chan struct{})}
		defer close(w.block)
		p := NewKafkaPublisher(w, PublisherConfig{WriteTimeout: time.Minute}, zerolog.Nop())
		tr, src, dst := sampleTransfer()
		require.NoError(t, p.TransferCompleted(context.Background(), tr, src, dst))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, p.Close(ctx), context.DeadlineExceeded)
	})
}

func TestNewKafkaWriter(t *testing.T) {
	w := NewKafkaWriter(config.KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "stock.transfers"})
	assert.Equal(t, "stock.transfers", w.Topic)
	assert.NoError(t, NewKafkaPublisher(w, PublisherConfig{}, zerolog.Nop()).Close(context.Background()))
}
