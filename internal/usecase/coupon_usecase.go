package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

type CouponUsecase struct {
	couponRepo repo.CouponRepository
}

func NewCouponUsecase(couponRepo repo.CouponRepository) *CouponUsecase {
	return &CouponUsecase{couponRepo: couponRepo}
}

// POST /coupons/apply の出力
type CouponEvalOutput struct {
	Code           string `json:"code"`
	DiscountAmount int64  `json:"discount_amount"`
	FinalAmount    int64  `json:"final_amount"`
}

// クーポン1枚を注文金額に当てたときの割引額を計算する純関数。
// used_countは触らない（消費は注文確定トランザクションの中だけ）。
//
// 判定順: 期間 → 最低金額 → 割引計算 → max_discountで頭打ち → 注文金額で頭打ち。
// percentは最近接整数に丸める。
func EvaluateCoupon(c model.Coupon, orderAmount int64, now time.Time) (int64, error) {
	if !c.IsActive {
		return 0, NewHTTPError(http.StatusNotFound, "coupon not found")
	}
	if c.StartDate != nil && now.Before(*c.StartDate) {
		return 0, NewHTTPError(http.StatusBadRequest, "coupon not started")
	}
	if c.EndDate != nil && now.After(*c.EndDate) {
		return 0, NewHTTPError(http.StatusBadRequest, "coupon expired")
	}
	if orderAmount < c.MinOrderAmount {
		return 0, NewHTTPError(http.StatusBadRequest, "order amount below coupon minimum")
	}

	var discount int64
	switch c.Type {
	case model.CouponTypePercent:
		//DivRoundは端数を四捨五入
		d := decimal.NewFromInt(orderAmount).
			Mul(decimal.NewFromInt(c.Value)).
			DivRound(decimal.NewFromInt(100), 0)
		discount = d.IntPart()
	case model.CouponTypeFixed:
		discount = c.Value
	default:
		return 0, NewHTTPError(http.StatusInternalServerError, "invalid coupon type")
	}

	if c.MaxDiscount > 0 && discount > c.MaxDiscount {
		discount = c.MaxDiscount
	}
	if discount > orderAmount {
		discount = orderAmount
	}
	if discount < 0 {
		discount = 0
	}
	return discount, nil
}

// コードの正規化。保存も照合も大文字で行う
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// 割引額の見積もり。状態は一切変えない
func (u *CouponUsecase) ApplyCoupon(ctx context.Context, code string, orderAmount int64) (CouponEvalOutput, error) {
	code = NormalizeCouponCode(code)
	if code == "" {
		return CouponEvalOutput{}, NewHTTPError(http.StatusBadRequest, "invalid code")
	}
	if orderAmount <= 0 {
		return CouponEvalOutput{}, NewHTTPError(http.StatusBadRequest, "invalid order_amount")
	}

	c, err := u.couponRepo.FindActiveByCode(ctx, code)
	if err == repo.ErrNotFound {
		return CouponEvalOutput{}, NewHTTPError(http.StatusNotFound, "coupon not found")
	}
	if err != nil {
		return CouponEvalOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	discount, err := EvaluateCoupon(c, orderAmount, time.Now())
	if err != nil {
		return CouponEvalOutput{}, err
	}

	final := orderAmount - discount
	if final < 0 {
		final = 0
	}

	return CouponEvalOutput{
		Code:           c.Code,
		DiscountAmount: discount,
		FinalAmount:    final,
	}, nil
}

// 注文金額で使えるクーポンの一覧（期間内・最低金額クリアのみ）。
func (u *CouponUsecase) ListAvailable(ctx context.Context, orderAmount int64) ([]model.Coupon, error) {
	if orderAmount < 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid order_amount")
	}

	coupons, err := u.couponRepo.ListActive(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	now := time.Now()
	out := make([]model.Coupon, 0, len(coupons))
	for _, c := range coupons {
		if c.StartDate != nil && now.Before(*c.StartDate) {
			continue
		}
		if c.EndDate != nil && now.After(*c.EndDate) {
			continue
		}
		if orderAmount < c.MinOrderAmount {
			continue
		}
		if c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

type CouponInput struct {
	Code           string
	Type           string
	Value          int64
	MinOrderAmount int64
	MaxDiscount    int64
	StartDate      *time.Time
	EndDate        *time.Time
	UsageLimit     int64
	IsActive       bool
}

func validateCouponInput(in CouponInput) error {
	if NormalizeCouponCode(in.Code) == "" || len(in.Code) > 50 {
		return NewHTTPError(http.StatusBadRequest, "invalid code")
	}
	switch model.CouponType(in.Type) {
	case model.CouponTypePercent:
		if in.Value < 1 || in.Value > 100 {
			return NewHTTPError(http.StatusBadRequest, "percent value must be 1-100")
		}
	case model.CouponTypeFixed:
		if in.Value <= 0 {
			return NewHTTPError(http.StatusBadRequest, "fixed value must be > 0")
		}
	default:
		return NewHTTPError(http.StatusBadRequest, "invalid type")
	}
	if in.MinOrderAmount < 0 || in.MaxDiscount < 0 || in.UsageLimit < 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid amount")
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return NewHTTPError(http.StatusBadRequest, "end_date before start_date")
	}
	return nil
}

func (u *CouponUsecase) CreateCoupon(ctx context.Context, in CouponInput) (model.Coupon, error) {
	if err := validateCouponInput(in); err != nil {
		return model.Coupon{}, err
	}

	created, err := u.couponRepo.Create(ctx, model.Coupon{
		Code:           NormalizeCouponCode(in.Code),
		Type:           model.CouponType(in.Type),
		Value:          in.Value,
		MinOrderAmount: in.MinOrderAmount,
		MaxDiscount:    in.MaxDiscount,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
		UsageLimit:     in.UsageLimit,
		IsActive:       in.IsActive,
	})
	if err != nil {
		//コード重複はだいたいここに落ちる
		return model.Coupon{}, NewHTTPError(http.StatusConflict, "coupon code already exists")
	}
	return created, nil
}

func (u *CouponUsecase) UpdateCoupon(ctx context.Context, couponID int64, in CouponInput) (model.Coupon, error) {
	if couponID <= 0 {
		return model.Coupon{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := validateCouponInput(in); err != nil {
		return model.Coupon{}, err
	}

	c := model.Coupon{
		ID:             couponID,
		Code:           NormalizeCouponCode(in.Code),
		Type:           model.CouponType(in.Type),
		Value:          in.Value,
		MinOrderAmount: in.MinOrderAmount,
		MaxDiscount:    in.MaxDiscount,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
		UsageLimit:     in.UsageLimit,
		IsActive:       in.IsActive,
	}
	if err := u.couponRepo.Update(ctx, c); err != nil {
		if err == repo.ErrNotFound {
			return model.Coupon{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return model.Coupon{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return c, nil
}

func (u *CouponUsecase) DeleteCoupon(ctx context.Context, couponID int64) error {
	if couponID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := u.couponRepo.SoftDelete(ctx, couponID); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
