package usecase_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestRevenue_SumsBuckets(t *testing.T) {
	orders := new(OrderRepoMock)
	uc := usecase.NewAdminStatsUsecase(orders)

	orders.On("RevenueBuckets", mock.Anything, repo.RevenueDaily, (*time.Time)(nil), (*time.Time)(nil)).
		Return([]repo.RevenueBucket{
			{Bucket: "2026-08-27", Revenue: 1_000_000, Orders: 2},
			{Bucket: "2026-08-28", Revenue: 2_500_000, Orders: 3},
		}, nil)

	out, err := uc.Revenue(context.Background(), usecase.RevenueInput{})
	assert.NoError(t, err)
	assert.Equal(t, "daily", out.Period)
	assert.Equal(t, int64(3_500_000), out.TotalRevenue)
	assert.Equal(t, int64(5), out.TotalOrders)
}

func TestRevenue_DefaultsToDaily(t *testing.T) {
	orders := new(OrderRepoMock)
	uc := usecase.NewAdminStatsUsecase(orders)

	orders.On("RevenueBuckets", mock.Anything, repo.RevenueDaily, mock.Anything, mock.Anything).
		Return([]repo.RevenueBucket{}, nil)

	out, err := uc.Revenue(context.Background(), usecase.RevenueInput{Period: ""})
	assert.NoError(t, err)
	assert.Equal(t, string(repo.RevenueDaily), out.Period)
}

func TestRevenue_InvalidPeriod(t *testing.T) {
	uc := usecase.NewAdminStatsUsecase(new(OrderRepoMock))

	_, err := uc.Revenue(context.Background(), usecase.RevenueInput{Period: "weekly"})
	assertHTTPStatus(t, err, http.StatusBadRequest)
}

func TestRevenue_ToBeforeFrom(t *testing.T) {
	uc := usecase.NewAdminStatsUsecase(new(OrderRepoMock))

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(-24 * time.Hour)

	_, err := uc.Revenue(context.Background(), usecase.RevenueInput{From: &from, To: &to})
	assertHTTPStatus(t, err, http.StatusBadRequest)
	assertErrContains(t, err, "to before from")
}

func TestRevenueCSV_AppendsTotalRow(t *testing.T) {
	orders := new(OrderRepoMock)
	uc := usecase.NewAdminStatsUsecase(orders)

	orders.On("RevenueBuckets", mock.Anything, repo.RevenueMonthly, mock.Anything, mock.Anything).
		Return([]repo.RevenueBucket{
			{Bucket: "2026-07", Revenue: 10_000_000, Orders: 12},
			{Bucket: "2026-08", Revenue: 5_000_000, Orders: 4},
		}, nil)

	data, err := uc.RevenueCSV(context.Background(), usecase.RevenueInput{Period: "monthly"})
	assert.NoError(t, err)

	want := "bucket,revenue,orders\n" +
		"2026-07,10000000,12\n" +
		"2026-08,5000000,4\n" +
		"total,15000000,16\n"
	assert.Equal(t, want, string(data))
}

func TestRevenueCSV_EmptyRangeStillHasTotal(t *testing.T) {
	orders := new(OrderRepoMock)
	uc := usecase.NewAdminStatsUsecase(orders)

	orders.On("RevenueBuckets", mock.Anything, repo.RevenueDaily, mock.Anything, mock.Anything).
		Return([]repo.RevenueBucket{}, nil)

	data, err := uc.RevenueCSV(context.Background(), usecase.RevenueInput{})
	assert.NoError(t, err)
	assert.Equal(t, "bucket,revenue,orders\ntotal,0,0\n", string(data))
}
