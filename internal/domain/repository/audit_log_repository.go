package repository

import (
	"context"

	"github.com/jhoicas/Bodega-api/internal/domain/entity"
)

// AuditLogFilter filtros para consultar la auditoría.
type AuditLogFilter struct {
	EntityType string
	EntityID   string
	ActorID    string
	Limit      int
	Offset     int
}

// AuditLogRepository puerto append-only para el rastro de auditoría.
type AuditLogRepository interface {
	Create(ctx context.Context, entry *entity.AuditLog) error
	List(ctx context.Context, filter AuditLogFilter) ([]*entity.AuditLog, error)
}
