package usecase

import (
	"context"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// 設定テーブルが空のときのフォールバック。
// min_spent昇順を維持すること。
var defaultLoyaltyConfigs = []model.LoyaltyConfig{
	{Tier: model.TierSilver, MinSpent: 10_000_000, DiscountPercent: 5},
	{Tier: model.TierGold, MinSpent: 50_000_000, DiscountPercent: 10},
	{Tier: model.TierDiamond, MinSpent: 100_000_000, DiscountPercent: 15},
}

// 1000通貨単位で1ポイント
const loyaltyPointUnit = 1000

func pointsForAmount(amount int64) int64 {
	if amount <= 0 {
		return 0
	}
	return amount / loyaltyPointUnit
}

// cfgsはmin_spent昇順前提。累計購入額から到達ランクを導く
func tierFromConfigs(cfgs []model.LoyaltyConfig, totalSpent int64) model.LoyaltyTier {
	tier := model.TierNone
	for _, c := range cfgs {
		if totalSpent >= c.MinSpent {
			tier = c.Tier
		}
	}
	return tier
}

func discountPercentFromConfigs(cfgs []model.LoyaltyConfig, tier model.LoyaltyTier) int64 {
	for _, c := range cfgs {
		if c.Tier == tier {
			return c.DiscountPercent
		}
	}
	return 0
}

// DBの設定を読み、空ならデフォルトに落とす
func loadLoyaltyConfigs(ctx context.Context, r repo.LoyaltyConfigRepository) []model.LoyaltyConfig {
	cfgs, err := r.ListOrdered(ctx)
	if err != nil || len(cfgs) == 0 {
		return defaultLoyaltyConfigs
	}
	return cfgs
}

type LoyaltyUsecase struct {
	loyaltyRepo repo.LoyaltyConfigRepository
	userRepo    repo.UserRepository
}

func NewLoyaltyUsecase(loyaltyRepo repo.LoyaltyConfigRepository, userRepo repo.UserRepository) *LoyaltyUsecase {
	return &LoyaltyUsecase{loyaltyRepo: loyaltyRepo, userRepo: userRepo}
}

type LoyaltyStatusOutput struct {
	TotalSpent      int64             `json:"total_spent"`
	LoyaltyPoints   int64             `json:"loyalty_points"`
	Tier            model.LoyaltyTier `json:"tier"`
	DiscountPercent int64             `json:"discount_percent"`

	//次のランクまでの残り。最上位なら0
	NextTier        model.LoyaltyTier `json:"next_tier,omitempty"`
	AmountToNext    int64             `json:"amount_to_next,omitempty"`
}

// GET /me/loyalty
func (u *LoyaltyUsecase) MyStatus(ctx context.Context, userID int64) (LoyaltyStatusOutput, error) {
	if userID <= 0 {
		return LoyaltyStatusOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	user, err := u.userRepo.FindByID(ctx, userID)
	if err == repo.ErrUserNotFound {
		return LoyaltyStatusOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return LoyaltyStatusOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	cfgs := loadLoyaltyConfigs(ctx, u.loyaltyRepo)
	tier := tierFromConfigs(cfgs, user.TotalSpent)

	out := LoyaltyStatusOutput{
		TotalSpent:      user.TotalSpent,
		LoyaltyPoints:   user.LoyaltyPoints,
		Tier:            tier,
		DiscountPercent: discountPercentFromConfigs(cfgs, tier),
	}

	for _, c := range cfgs {
		if user.TotalSpent < c.MinSpent {
			out.NextTier = c.Tier
			out.AmountToNext = c.MinSpent - user.TotalSpent
			break
		}
	}
	return out, nil
}

// GET /admin/loyalty-configs
func (u *LoyaltyUsecase) ListConfigs(ctx context.Context) ([]model.LoyaltyConfig, error) {
	cfgs, err := u.loyaltyRepo.ListOrdered(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if len(cfgs) == 0 {
		return defaultLoyaltyConfigs, nil
	}
	return cfgs, nil
}

type LoyaltyConfigInput struct {
	Tier            string
	MinSpent        int64
	DiscountPercent int64
}

// PUT /admin/loyalty-configs — tierをキーに作成または更新
func (u *LoyaltyUsecase) UpsertConfig(ctx context.Context, in LoyaltyConfigInput) error {
	switch model.LoyaltyTier(in.Tier) {
	case model.TierSilver, model.TierGold, model.TierDiamond:
	default:
		return NewHTTPError(http.StatusBadRequest, "invalid tier")
	}
	if in.MinSpent < 0 {
		return NewHTTPError(http.StatusBadRequest, "min_spent must be >= 0")
	}
	if in.DiscountPercent < 0 || in.DiscountPercent > 100 {
		return NewHTTPError(http.StatusBadRequest, "discount_percent must be 0-100")
	}

	if err := u.loyaltyRepo.Upsert(ctx, model.LoyaltyConfig{
		Tier:            model.LoyaltyTier(in.Tier),
		MinSpent:        in.MinSpent,
		DiscountPercent: in.DiscountPercent,
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
