package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	repo "app/internal/repository"
)

type AdminStatsUsecase struct {
	orderRepo repo.OrderRepository
}

func NewAdminStatsUsecase(orderRepo repo.OrderRepository) *AdminStatsUsecase {
	return &AdminStatsUsecase{orderRepo: orderRepo}
}

type RevenueInput struct {
	Period string
	From   *time.Time
	To     *time.Time
}

type RevenueOutput struct {
	Period       string               `json:"period"`
	Buckets      []repo.RevenueBucket `json:"buckets"`
	TotalRevenue int64                `json:"total_revenue"`
	TotalOrders  int64                `json:"total_orders"`
}

func parseRevenuePeriod(s string) (repo.RevenuePeriod, error) {
	switch repo.RevenuePeriod(s) {
	case repo.RevenueDaily, repo.RevenueMonthly, repo.RevenueYearly:
		return repo.RevenuePeriod(s), nil
	case "":
		return repo.RevenueDaily, nil
	default:
		return "", NewHTTPError(http.StatusBadRequest, "invalid period")
	}
}

// 売上集計。対象は「支払い済みかつ非キャンセル」または「CODの配達完了」。
// 返金済みは常に除外（集計条件はリポジトリ側で固定）。
func (u *AdminStatsUsecase) Revenue(ctx context.Context, in RevenueInput) (RevenueOutput, error) {
	period, err := parseRevenuePeriod(in.Period)
	if err != nil {
		return RevenueOutput{}, err
	}
	if in.From != nil && in.To != nil && in.To.Before(*in.From) {
		return RevenueOutput{}, NewHTTPError(http.StatusBadRequest, "to before from")
	}

	buckets, err := u.orderRepo.RevenueBuckets(ctx, period, in.From, in.To)
	if err != nil {
		return RevenueOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out := RevenueOutput{
		Period:  string(period),
		Buckets: buckets,
	}
	for _, b := range buckets {
		out.TotalRevenue += b.Revenue
		out.TotalOrders += b.Orders
	}
	return out, nil
}

// 同じ集計のCSV。末尾に合計行を付ける
func (u *AdminStatsUsecase) RevenueCSV(ctx context.Context, in RevenueInput) ([]byte, error) {
	out, err := u.Revenue(ctx, in)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"bucket", "revenue", "orders"}); err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "csv error")
	}
	for _, b := range out.Buckets {
		if err := w.Write([]string{
			b.Bucket,
			strconv.FormatInt(b.Revenue, 10),
			strconv.FormatInt(b.Orders, 10),
		}); err != nil {
			return nil, NewHTTPError(http.StatusInternalServerError, "csv error")
		}
	}
	if err := w.Write([]string{
		"total",
		strconv.FormatInt(out.TotalRevenue, 10),
		strconv.FormatInt(out.TotalOrders, 10),
	}); err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "csv error")
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "csv error")
	}
	return buf.Bytes(), nil
}
