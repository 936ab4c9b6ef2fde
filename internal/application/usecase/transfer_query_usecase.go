package usecase

import (
	"context"

	"github.com/jhoicas/Bodega-api/internal/application/dto"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
)

// TransferQueryUseCase historial de traslados (solo lectura).
type TransferQueryUseCase struct {
	repo repository.TransferRepository
}

// NewTransferQueryUseCase construye el caso de uso.
func NewTransferQueryUseCase(repo repository.TransferRepository) *TransferQueryUseCase {
	return &TransferQueryUseCase{repo: repo}
}

// GetByID obtiene un traslado. nil, nil si no existe.
func (uc *TransferQueryUseCase) GetByID(ctx context.Context, id string) (*dto.TransferResponse, error) {
	t, err := uc.repo.GetByID(ctx, id)
	if err != nil || t == nil {
		return nil, err
	}
	resp := dto.TransferToResponse(t)
	return &resp, nil
}

// List lista traslados filtrando por origen y/o destino.
func (uc *TransferQueryUseCase) List(ctx context.Context, in dto.TransferFilterRequest) (*dto.TransferListResponse, error) {
	in.DefaultPage()
	list, err := uc.repo.List(ctx, repository.TransferFilter{
		SourceID:      in.SourceID,
		DestinationID: in.DestinationID,
		Limit:         in.Limit,
		Offset:        in.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.TransferResponse, 0, len(list))
	for _, t := range list {
		items = append(items, dto.TransferToResponse(t))
	}
	return &dto.TransferListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset},
	}, nil
}
