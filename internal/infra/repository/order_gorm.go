package repository

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Where("id = ?", orderID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return []model.Order{}, 0, err
	}

	var items []model.Order
	offset := (page - 1) * limit
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return []model.Order{}, 0, err
	}

	return items, total, nil
}

func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&order).Error; err != nil {
		return 0, err
	}
	return order.ID, nil
}

func (r *OrderGormRepository) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Update("status", status)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 注文番号の連番用。カウント＋整形方式（仕様どおり）。
// 同時書き込みの衝突はorder_numberのunique indexが検知する
func (r *OrderGormRepository) CountAll(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Order{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// 未払いのときだけPAIDにする条件付き原子更新。
// webhookは最低1回配送なので、2回目以降は0件更新でfalseになる
func (r *OrderGormRepository) MarkPaidIfUnpaid(ctx context.Context, orderID int64, transactionID string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND payment_status <> ?", orderID, model.PaymentStatusPaid).
		Updates(map[string]interface{}{
			"payment_status":         model.PaymentStatusPaid,
			"payment_transaction_id": transactionID,
			"status": gorm.Expr(
				"CASE WHEN status = ? THEN ? ELSE status END",
				model.OrderStatusPending, model.OrderStatusProcessing,
			),
		})

	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// 支払い失敗。statusは触らない（顧客が再試行できるように）
func (r *OrderGormRepository) MarkPaymentFailed(ctx context.Context, orderID int64) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND payment_status <> ?", orderID, model.PaymentStatusPaid).
		Update("payment_status", model.PaymentStatusFailed)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 返金
func (r *OrderGormRepository) MarkRefunded(ctx context.Context, orderID int64) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"payment_status": model.PaymentStatusRefunded,
			"status":         model.OrderStatusRefunded,
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *OrderGormRepository) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}

	q := r.db.WithContext(ctx).Model(&model.Order{})

	//status 絞り込み
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	//user_id 絞り込み
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}

	//期間絞り込み
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return []model.Order{}, 0, err
	}

	var items []model.Order
	offset := (f.Page - 1) * f.Limit
	if err := q.Order("id desc").Limit(f.Limit).Offset(offset).Find(&items).Error; err != nil {
		return []model.Order{}, 0, err
	}

	return items, total, nil
}

// 売上としてカウントする条件：
// 「支払済み かつ 非キャンセル」または「CODで配達完了」。返金は常に除外。
func (r *OrderGormRepository) RevenueBuckets(ctx context.Context, period repo.RevenuePeriod, from *time.Time, to *time.Time) ([]repo.RevenueBucket, error) {
	var format string
	switch period {
	case repo.RevenueDaily:
		format = "YYYY-MM-DD"
	case repo.RevenueMonthly:
		format = "YYYY-MM"
	case repo.RevenueYearly:
		format = "YYYY"
	default:
		return nil, errors.New("invalid revenue period")
	}

	q := r.db.WithContext(ctx).Model(&model.Order{}).
		Select("to_char(created_at, ?) AS bucket, COALESCE(SUM(total_amount), 0) AS revenue, COUNT(*) AS orders", format).
		Where("payment_status <> ? AND status <> ?", model.PaymentStatusRefunded, model.OrderStatusRefunded).
		Where(
			r.db.Where("payment_status = ? AND status <> ?", model.PaymentStatusPaid, model.OrderStatusCancelled).
				Or("payment_method = ? AND status = ?", model.PaymentMethodCOD, model.OrderStatusDelivered),
		)

	if from != nil {
		q = q.Where("created_at >= ?", *from)
	}
	if to != nil {
		q = q.Where("created_at <= ?", *to)
	}

	var rows []repo.RevenueBucket
	if err := q.Group("bucket").Order("bucket asc").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
