package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un traslado.
const (
	TransferStatusCompleted = "completed"
	TransferStatusFailed    = "failed"
)

// Transfer registro inmutable de un traslado confirmado entre un artículo de bodega y uno de inventario.
type Transfer struct {
	ID                  string
	SourceRecordID      string
	DestinationRecordID string
	ProductRef          string
	Quantity            int64
	UnitCost            decimal.Decimal // costo unitario del origen al momento del traslado
	TotalValue          decimal.Decimal // Quantity * UnitCost
	InitiatedBy         string
	IdempotencyKey      string // vacío si el cliente no envió Idempotency-Key
	Status              string
	CreatedAt           time.Time
}
