package dto

import "time"

// AuditLogFilterRequest query de GET /api/audit-logs.
type AuditLogFilterRequest struct {
	PageRequest
	EntityType string `query:"entity_type"`
	EntityID   string `query:"entity_id"`
	ActorID    string `query:"actor_id"`
}

// AuditLogResponse salida de una entrada de auditoría.
type AuditLogResponse struct {
	ID         string    `json:"id"`
	ActorID    string    `json:"actorId"`
	Action     string    `json:"action"`
	EntityType string    `json:"entityType"`
	EntityID   string    `json:"entityId"`
	Details    string    `json:"details"`
	Timestamp  time.Time `json:"timestamp"`
}

// AuditLogListResponse lista paginada.
type AuditLogListResponse struct {
	Items []AuditLogResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
