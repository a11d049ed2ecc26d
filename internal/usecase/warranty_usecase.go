package usecase

import (
	"context"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type WarrantyUsecase struct {
	warrantyRepo repo.WarrantyRepository
}

func NewWarrantyUsecase(warrantyRepo repo.WarrantyRepository) *WarrantyUsecase {
	return &WarrantyUsecase{warrantyRepo: warrantyRepo}
}

// 自分の保証一覧
func (u *WarrantyUsecase) ListMine(ctx context.Context, userID int64) ([]model.Warranty, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	ws, err := u.warrantyRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return ws, nil
}

func (u *WarrantyUsecase) GetMine(ctx context.Context, userID int64, warrantyID int64) (model.Warranty, error) {
	if userID <= 0 {
		return model.Warranty{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if warrantyID <= 0 {
		return model.Warranty{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	w, err := u.warrantyRepo.FindByID(ctx, warrantyID)
	if err == repo.ErrNotFound {
		return model.Warranty{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Warranty{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if w.UserID != userID {
		return model.Warranty{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	return w, nil
}
