package usecase

import (
	"context"
	"net/http"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type ReviewUsecase struct {
	reviewRepo  repo.ReviewRepository
	productRepo repo.ProductRepository
}

func NewReviewUsecase(reviewRepo repo.ReviewRepository, productRepo repo.ProductRepository) *ReviewUsecase {
	return &ReviewUsecase{reviewRepo: reviewRepo, productRepo: productRepo}
}

type ReviewInput struct {
	Rating  int
	Comment string
}

type ReviewListOutput struct {
	Items []model.Review `json:"items"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

func (u *ReviewUsecase) ListByProduct(ctx context.Context, productID int64, page int, limit int) (ReviewListOutput, error) {
	if productID <= 0 {
		return ReviewListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	items, total, err := u.reviewRepo.ListByProductID(ctx, productID, page, limit)
	if err != nil {
		return ReviewListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return ReviewListOutput{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// レビュー投稿。同じ商品には1人1件。既存があれば上書き
func (u *ReviewUsecase) Upsert(ctx context.Context, userID int64, productID int64, in ReviewInput) (model.Review, error) {
	if userID <= 0 {
		return model.Review{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return model.Review{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if in.Rating < 1 || in.Rating > 5 {
		return model.Review{}, NewHTTPError(http.StatusBadRequest, "rating must be 1-5")
	}
	if len(in.Comment) > 2000 {
		return model.Review{}, NewHTTPError(http.StatusBadRequest, "comment too long")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound || (err == nil && !p.IsActive) {
		return model.Review{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Review{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	existing, err := u.reviewRepo.FindByUserAndProduct(ctx, userID, productID)
	if err != nil && err != repo.ErrNotFound {
		return model.Review{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err == nil {
		existing.Rating = in.Rating
		existing.Comment = strings.TrimSpace(in.Comment)
		if err := u.reviewRepo.Update(ctx, existing); err != nil {
			return model.Review{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return existing, nil
	}

	created, err := u.reviewRepo.Create(ctx, model.Review{
		UserID:    userID,
		ProductID: productID,
		Rating:    in.Rating,
		Comment:   strings.TrimSpace(in.Comment),
	})
	if err != nil {
		return model.Review{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return created, nil
}

func (u *ReviewUsecase) Delete(ctx context.Context, userID int64, productID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	existing, err := u.reviewRepo.FindByUserAndProduct(ctx, userID, productID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.reviewRepo.Delete(ctx, existing.ID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
