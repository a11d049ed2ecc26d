package repository

import (
	"context"
	"time"

	"app/internal/domain/model"
)

type AdminOrderListFilter struct {
	Page   int
	Limit  int
	Status string
	UserID *int64
	From   *time.Time
	To     *time.Time
}

// 売上集計の粒度
type RevenuePeriod string

const (
	RevenueDaily   RevenuePeriod = "daily"
	RevenueMonthly RevenuePeriod = "monthly"
	RevenueYearly  RevenuePeriod = "yearly"
)

type RevenueBucket struct {
	Bucket  string `json:"bucket"`
	Revenue int64  `json:"revenue"`
	Orders  int64  `json:"orders"`
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) (int64, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error

	//注文番号の連番用
	CountAll(ctx context.Context) (int64, error)

	//未払いのときだけPAIDにする（webhook再送対策の条件付き原子更新）。
	//更新できたらtrue。PENDINGならPROCESSINGへ進める。
	MarkPaidIfUnpaid(ctx context.Context, orderID int64, transactionID string) (bool, error)

	//支払い失敗。注文ステータスは触らない（再試行可能のまま）
	MarkPaymentFailed(ctx context.Context, orderID int64) error

	//返金。payment_statusとstatusの両方をREFUNDEDにする
	MarkRefunded(ctx context.Context, orderID int64) error

	//管理者用の注文一覧
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)

	//売上集計（支払済み かつ 非キャンセル、またはCODの配達完了。返金は除外）
	RevenueBuckets(ctx context.Context, period RevenuePeriod, from *time.Time, to *time.Time) ([]RevenueBucket, error)
}
