package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Bodega-api/internal/domain/entity"
)

type countingNotifier struct {
	calls int
	err   error
}

func (n *countingNotifier) TransferCompleted(context.Context, *entity.Transfer, *entity.StockRecord, *entity.StockRecord) error {
	n.calls++
	return n.err
}

func TestMulti_CallsAllEvenOnError(t *testing.T) {
	failing := &countingNotifier{err: errors.New("kafka caído")}
	ok := &countingNotifier{}

	err := Multi{failing, nil, ok}.TransferCompleted(context.Background(), &entity.Transfer{}, &entity.StockRecord{}, &entity.StockRecord{})

	assert.ErrorIs(t, err, failing.err)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, ok.calls, "un error no debe cortar la cadena")
}
