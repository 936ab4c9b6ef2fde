package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de registro de stock.
const (
	StockKindWarehouse = "warehouse" // artículo de bodega (origen de traslados)
	StockKindInventory = "inventory" // artículo de inventario (destino de traslados)
)

// StockRecord representa la cantidad disponible de un producto en una ubicación.
// Quantity nunca es negativa (CHECK en la tabla y validación en el traslado).
type StockRecord struct {
	ID         string
	Kind       string
	ProductRef string // SKU o referencia del producto
	Name       string
	Location   string
	Quantity   int64
	UnitCost   decimal.Decimal
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
