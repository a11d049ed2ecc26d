package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	"app/internal/notification"
	repo "app/internal/repository"
)

// 注文明細1件あたりの保証期間
const warrantyMonths = 12

type AdminOrderUsecase struct {
	tx        repo.TransactionManager
	auditRepo repo.AuditLogRepository
	sender    notification.Sender
}

func NewAdminOrderUsecase(tx repo.TransactionManager, auditRepo repo.AuditLogRepository, sender notification.Sender) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx, auditRepo: auditRepo, sender: sender}
}

type AdminUpdateOrderStatusInput struct {
	Status string
}

// 許可する遷移。REFUNDEDは返金エンドポイント経由のみ
var allowedTransitions = map[model.OrderStatus][]model.OrderStatus{
	model.OrderStatusPending:    {model.OrderStatusConfirmed, model.OrderStatusCancelled},
	model.OrderStatusConfirmed:  {model.OrderStatusProcessing, model.OrderStatusCancelled},
	model.OrderStatusProcessing: {model.OrderStatusShipped},
	model.OrderStatusShipped:    {model.OrderStatusDelivered},
}

func canTransition(from, to model.OrderStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type AdminOrderListOutput struct {
	Items []OrderOutput `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

func (u *AdminOrderUsecase) List(ctx context.Context, f repo.AdminOrderListFilter) (AdminOrderListOutput, error) {
	if f.Page < 1 {
		return AdminOrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return AdminOrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	var out AdminOrderListOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().ListAdmin(ctx, f)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out.Total = total
		out.Page = f.Page
		out.Limit = f.Limit
		out.Items = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			out.Items = append(out.Items, toOrderOutput(o, items))
		}
		return nil
	})

	if err != nil {
		return AdminOrderListOutput{}, err
	}
	return out, nil
}

// ステータス更新。
// CANCELLEDなら在庫戻し、DELIVEREDなら明細ごとに保証を開始する。
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actorAdminUserID int64, orderID int64, in AdminUpdateOrderStatusInput) error {
	if actorAdminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	newStatus := model.OrderStatus(strings.ToUpper(strings.TrimSpace(in.Status)))
	switch newStatus {
	case model.OrderStatusConfirmed, model.OrderStatusProcessing,
		model.OrderStatusShipped, model.OrderStatusDelivered, model.OrderStatusCancelled:
	default:
		return NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var notifyTo string
	var orderNumber string

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//すでに同じなら何もしない（200）
		if o.Status == newStatus {
			return nil
		}
		if !canTransition(o.Status, newStatus) {
			return NewHTTPError(http.StatusBadRequest, "invalid status transition")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//キャンセルは予約していた在庫を戻す
		if newStatus == model.OrderStatusCancelled {
			for _, it := range items {
				if it.VariantID != nil {
					if err := r.Inventory().IncreaseVariantStock(ctx, *it.VariantID, it.Quantity); err != nil {
						return NewHTTPError(http.StatusInternalServerError, "db error")
					}
				} else {
					if err := r.Inventory().IncreaseStock(ctx, it.ProductID, it.Quantity); err != nil {
						return NewHTTPError(http.StatusInternalServerError, "db error")
					}
				}
			}
		}

		if err := r.Orders().UpdateStatus(ctx, orderID, newStatus); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//配達完了で保証開始
		if newStatus == model.OrderStatusDelivered {
			now := time.Now()
			ws := make([]model.Warranty, 0, len(items))
			for _, it := range items {
				ws = append(ws, model.Warranty{
					OrderID:     orderID,
					OrderItemID: it.ID,
					UserID:      o.UserID,
					ProductID:   it.ProductID,
					Status:      model.WarrantyStatusActive,
					StartsAt:    now,
					ExpiresAt:   now.AddDate(0, warrantyMonths, 0),
					CreatedAt:   now,
				})
			}
			if err := r.Warranties().CreateBulk(ctx, ws); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		if err := u.auditRepo.Create(ctx, model.AuditLog{
			ActorUserID:  actorAdminUserID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   `{"status":"` + string(o.Status) + `"}`,
			AfterJSON:    `{"status":"` + string(newStatus) + `"}`,
			CreatedAt:    time.Now(),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if user, err := r.Users().FindByID(ctx, o.UserID); err == nil {
			notifyTo = user.Email
		}
		orderNumber = o.OrderNumber
		return nil
	})

	if err != nil {
		return err
	}

	if notifyTo != "" {
		go u.sender.SendOrderStatusUpdate(context.Background(), notification.OrderNotice{
			To:          notifyTo,
			OrderNumber: orderNumber,
			Status:      string(newStatus),
		})
	}
	return nil
}
