package repository

import (
	"context"

	"app/internal/domain/model"
)

type CouponRepository interface {
	//有効フラグが立っているものだけ。コードは正規化済み前提
	FindActiveByCode(ctx context.Context, code string) (model.Coupon, error)

	//有効かつ期間内のクーポン一覧
	ListActive(ctx context.Context) ([]model.Coupon, error)

	//使用回数を上限ガード付きで+1。上限到達ならfalse
	ConsumeUsage(ctx context.Context, couponID int64) (bool, error)

	Create(ctx context.Context, c model.Coupon) (model.Coupon, error)
	Update(ctx context.Context, c model.Coupon) error
	SoftDelete(ctx context.Context, id int64) error
}
