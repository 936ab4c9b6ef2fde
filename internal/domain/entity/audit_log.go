package entity

import "time"

// Acciones registradas en auditoría.
const (
	AuditActionTransferred = "transferred"
	AuditActionCreated     = "created"
)

// Tipos de entidad auditados.
const (
	AuditEntityTransfer      = "transfer"
	AuditEntityWarehouseItem = "warehouse_item"
	AuditEntityInventoryItem = "inventory_item"
)

// AuditLog entrada append-only del rastro de auditoría.
type AuditLog struct {
	ID         string
	ActorID    string
	Action     string
	EntityType string
	EntityID   string
	Details    string
	CreatedAt  time.Time
}
