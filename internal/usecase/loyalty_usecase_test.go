package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"app/internal/domain/model"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestLoyaltyMyStatus_GoldFromTotalSpent(t *testing.T) {
	loyaltyRepo := new(LoyaltyRepoMock)
	userRepo := new(UserRepoMock)
	uc := usecase.NewLoyaltyUsecase(loyaltyRepo, userRepo)

	//設定テーブルが空 → デフォルト閾値（silver 10M / gold 50M / diamond 100M）
	loyaltyRepo.On("ListOrdered", mock.Anything).Return([]model.LoyaltyConfig{}, nil)
	userRepo.On("FindByID", mock.Anything, int64(1)).Return(&model.User{
		ID:            1,
		TotalSpent:    60_000_000,
		LoyaltyPoints: 60_000,
	}, nil)

	out, err := uc.MyStatus(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, model.TierGold, out.Tier)
	assert.Equal(t, int64(10), out.DiscountPercent)
	assert.Equal(t, model.TierDiamond, out.NextTier)
	assert.Equal(t, int64(40_000_000), out.AmountToNext)
}

func TestLoyaltyMyStatus_NoTierYet(t *testing.T) {
	loyaltyRepo := new(LoyaltyRepoMock)
	userRepo := new(UserRepoMock)
	uc := usecase.NewLoyaltyUsecase(loyaltyRepo, userRepo)

	loyaltyRepo.On("ListOrdered", mock.Anything).Return([]model.LoyaltyConfig{}, nil)
	userRepo.On("FindByID", mock.Anything, int64(2)).Return(&model.User{
		ID:         2,
		TotalSpent: 5_000,
	}, nil)

	out, err := uc.MyStatus(context.Background(), 2)
	assert.NoError(t, err)
	assert.Equal(t, model.TierNone, out.Tier)
	assert.Equal(t, int64(0), out.DiscountPercent)
	assert.Equal(t, model.TierSilver, out.NextTier)
	assert.Equal(t, int64(9_995_000), out.AmountToNext)
}

func TestLoyaltyMyStatus_ExactThreshold(t *testing.T) {
	loyaltyRepo := new(LoyaltyRepoMock)
	userRepo := new(UserRepoMock)
	uc := usecase.NewLoyaltyUsecase(loyaltyRepo, userRepo)

	loyaltyRepo.On("ListOrdered", mock.Anything).Return([]model.LoyaltyConfig{}, nil)
	userRepo.On("FindByID", mock.Anything, int64(3)).Return(&model.User{
		ID:         3,
		TotalSpent: 100_000_000,
	}, nil)

	out, err := uc.MyStatus(context.Background(), 3)
	assert.NoError(t, err)
	assert.Equal(t, model.TierDiamond, out.Tier)
	//最上位なので次のランクなし
	assert.Equal(t, model.LoyaltyTier(""), out.NextTier)
	assert.Equal(t, int64(0), out.AmountToNext)
}

func TestLoyaltyMyStatus_CustomConfigsWin(t *testing.T) {
	loyaltyRepo := new(LoyaltyRepoMock)
	userRepo := new(UserRepoMock)
	uc := usecase.NewLoyaltyUsecase(loyaltyRepo, userRepo)

	//管理者が閾値を下げた場合はそちらが使われる
	loyaltyRepo.On("ListOrdered", mock.Anything).Return([]model.LoyaltyConfig{
		{Tier: model.TierSilver, MinSpent: 1_000, DiscountPercent: 3},
	}, nil)
	userRepo.On("FindByID", mock.Anything, int64(4)).Return(&model.User{
		ID:         4,
		TotalSpent: 2_000,
	}, nil)

	out, err := uc.MyStatus(context.Background(), 4)
	assert.NoError(t, err)
	assert.Equal(t, model.TierSilver, out.Tier)
	assert.Equal(t, int64(3), out.DiscountPercent)
}

func TestUpsertConfig_InvalidTier(t *testing.T) {
	uc := usecase.NewLoyaltyUsecase(new(LoyaltyRepoMock), new(UserRepoMock))

	err := uc.UpsertConfig(context.Background(), usecase.LoyaltyConfigInput{
		Tier:            "platinum",
		MinSpent:        1,
		DiscountPercent: 1,
	})
	assertHTTPStatus(t, err, http.StatusBadRequest)
}

func TestUpsertConfig_Success(t *testing.T) {
	loyaltyRepo := new(LoyaltyRepoMock)
	uc := usecase.NewLoyaltyUsecase(loyaltyRepo, new(UserRepoMock))

	loyaltyRepo.On("Upsert", mock.Anything, model.LoyaltyConfig{
		Tier:            model.TierGold,
		MinSpent:        40_000_000,
		DiscountPercent: 12,
	}).Return(nil)

	err := uc.UpsertConfig(context.Background(), usecase.LoyaltyConfigInput{
		Tier:            string(model.TierGold),
		MinSpent:        40_000_000,
		DiscountPercent: 12,
	})
	assert.NoError(t, err)
	loyaltyRepo.AssertExpectations(t)
}

func TestListConfigs_FallsBackToDefaults(t *testing.T) {
	loyaltyRepo := new(LoyaltyRepoMock)
	uc := usecase.NewLoyaltyUsecase(loyaltyRepo, new(UserRepoMock))

	loyaltyRepo.On("ListOrdered", mock.Anything).Return([]model.LoyaltyConfig{}, nil)

	cfgs, err := uc.ListConfigs(context.Background())
	assert.NoError(t, err)
	assert.Len(t, cfgs, 3)
	assert.Equal(t, model.TierSilver, cfgs[0].Tier)
	assert.Equal(t, model.TierDiamond, cfgs[2].Tier)
}
