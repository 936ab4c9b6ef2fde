package dto

import (
	"time"

	"github.com/jhoicas/Bodega-api/internal/domain/entity"
)

// CreateTransferRequest cuerpo de POST /api/transfers.
type CreateTransferRequest struct {
	SourceID      string `json:"sourceId" validate:"required"`
	DestinationID string `json:"destinationId" validate:"required,nefield=SourceID"`
	Quantity      int64  `json:"quantity" validate:"gt=0"`
}

// TransferFilterRequest query de GET /api/transfers.
type TransferFilterRequest struct {
	PageRequest
	SourceID      string `query:"source_id"`
	DestinationID string `query:"destination_id"`
}

// TransferResponse salida de un traslado. unitCost y totalValue van como texto decimal exacto.
type TransferResponse struct {
	ID                  string    `json:"id"`
	SourceRecordID      string    `json:"sourceRecordId"`
	DestinationRecordID string    `json:"destinationRecordId"`
	ProductRef          string    `json:"productRef"`
	Quantity            int64     `json:"quantity"`
	UnitCost            string    `json:"unitCost"`
	TotalValue          string    `json:"totalValue"`
	InitiatedBy         string    `json:"initiatedBy"`
	Status              string    `json:"status"`
	Timestamp           time.Time `json:"timestamp"`
}

// TransferListResponse lista paginada de traslados.
type TransferListResponse struct {
	Items []TransferResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// TransferToResponse convierte la entidad en DTO.
func TransferToResponse(t *entity.Transfer) TransferResponse {
	return TransferResponse{
		ID:                  t.ID,
		SourceRecordID:      t.SourceRecordID,
		DestinationRecordID: t.DestinationRecordID,
		ProductRef:          t.ProductRef,
		Quantity:            t.Quantity,
		UnitCost:            t.UnitCost.String(),
		TotalValue:          t.TotalValue.String(),
		InitiatedBy:         t.InitiatedBy,
		Status:              t.Status,
		Timestamp:           t.CreatedAt,
	}
}
