package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	"app/internal/notification"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

type OrderUsecase struct {
	tx          repo.TransactionManager
	addresses   repo.AddressRepository
	loyaltyRepo repo.LoyaltyConfigRepository
	sender      notification.Sender
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	addresses repo.AddressRepository,
	loyaltyRepo repo.LoyaltyConfigRepository,
	sender notification.Sender,
) *OrderUsecase {
	return &OrderUsecase{
		tx:          tx,
		addresses:   addresses,
		loyaltyRepo: loyaltyRepo,
		sender:      sender,
	}
}

type PlaceOrderInput struct {
	AddressID     int64
	PaymentMethod string
	CouponCode    string
}

type OrderItemOutput struct {
	ProductID int64  `json:"product_id"`
	VariantID *int64 `json:"variant_id,omitempty"`
	Name      string `json:"name"`
	SKU       string `json:"sku"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
}

type OrderOutput struct {
	ID             int64             `json:"id"`
	OrderNumber    string            `json:"order_number"`
	UserID         int64             `json:"user_id"`
	Status         string            `json:"status"`
	PaymentStatus  string            `json:"payment_status"`
	PaymentMethod  string            `json:"payment_method"`
	Subtotal       int64             `json:"subtotal"`
	DiscountAmount int64             `json:"discount_amount"`
	TaxAmount      int64             `json:"tax_amount"`
	ShippingFee    int64             `json:"shipping_fee"`
	TotalAmount    int64             `json:"total_amount"`
	CouponCode     string            `json:"coupon_code,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	Items          []OrderItemOutput `json:"items"`
}

// 割引率（%）を金額に適用して四捨五入
func percentOf(amount int64, percent int64) int64 {
	if percent <= 0 || amount <= 0 {
		return 0
	}
	return decimal.NewFromInt(amount).
		Mul(decimal.NewFromInt(percent)).
		DivRound(decimal.NewFromInt(100), 0).
		IntPart()
}

// ORD-{YY}{MM}-{連番} 形式
func buildOrderNumber(now time.Time, seq int64) string {
	return fmt.Sprintf("ORD-%s-%04d", now.Format("0601"), seq)
}

// 注文確定。カート明細 → 注文＋明細スナップショット → 在庫減算 → カート変換、
// を1トランザクションで行う。どれか1つでも失敗したら全部巻き戻す。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID int64, in PlaceOrderInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.AddressID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid address_id")
	}
	method := model.PaymentMethod(strings.ToUpper(strings.TrimSpace(in.PaymentMethod)))
	switch method {
	case model.PaymentMethodCOD, model.PaymentMethodStripe, model.PaymentMethodPayOS:
	default:
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid payment_method")
	}

	//住所の存在確認＋所有チェック
	addr, err := u.addresses.FindByID(ctx, in.AddressID)
	if err == repo.ErrNotFound {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if addr.UserID != userID {
		return OrderOutput{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}

	couponCode := NormalizeCouponCode(in.CouponCode)

	var out OrderOutput
	var notifyTo string

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().FindActiveByUserID(ctx, userID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusBadRequest, "cart empty")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		cartItems, err := r.CartItems().ListByCartID(ctx, cart.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if len(cartItems) == 0 {
			return NewHTTPError(http.StatusBadRequest, "cart empty")
		}

		now := time.Now()

		//小計はカートのキャッシュ価格ではなく現在のカタログ価格で再計算する。
		//在庫は「足りるときだけ減算」で同時に予約。
		orderItems := make([]model.OrderItem, 0, len(cartItems))
		var subtotal int64 = 0

		for _, ci := range cartItems {
			p, err := r.Products().FindByID(ctx, ci.ProductID)
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusBadRequest, "invalid")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !p.IsActive {
				return NewHTTPError(http.StatusBadRequest, "invalid")
			}

			unitPrice := p.Price
			sku := p.SKU

			if ci.VariantID != nil {
				v, err := r.Variants().FindByID(ctx, *ci.VariantID)
				if err == repo.ErrNotFound {
					return NewHTTPError(http.StatusBadRequest, "invalid")
				}
				if err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
				if v.ProductID != ci.ProductID {
					return NewHTTPError(http.StatusBadRequest, "invalid")
				}
				unitPrice = v.Price
				sku = v.SKU

				ok, err := r.Inventory().DecreaseVariantStockIfEnough(ctx, *ci.VariantID, ci.Quantity)
				if err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
				if !ok {
					return NewHTTPError(http.StatusBadRequest, "out of stock")
				}
			} else {
				ok, err := r.Inventory().DecreaseStockIfEnough(ctx, ci.ProductID, ci.Quantity)
				if err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
				if !ok {
					return NewHTTPError(http.StatusBadRequest, "out of stock")
				}
			}

			orderItems = append(orderItems, model.OrderItem{
				ProductID:           ci.ProductID,
				VariantID:           ci.VariantID,
				ProductNameSnapshot: p.Name,
				SKUSnapshot:         sku,
				UnitPriceSnapshot:   unitPrice,
				Quantity:            ci.Quantity,
				CreatedAt:           now,
			})

			subtotal += unitPrice * ci.Quantity
		}

		user, err := r.Users().FindByID(ctx, userID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		notifyTo = user.Email

		//割引。クーポン指定があればクーポンだけ（ランク割引とは併用しない）。
		//クーポンの使用回数カウントもこのトランザクション内で消費する。
		var discount int64 = 0
		appliedCoupon := ""

		if couponCode != "" {
			c, err := r.Coupons().FindActiveByCode(ctx, couponCode)
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "coupon not found")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			discount, err = EvaluateCoupon(c, subtotal, now)
			if err != nil {
				return err
			}

			consumed, err := r.Coupons().ConsumeUsage(ctx, c.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !consumed {
				return NewHTTPError(http.StatusBadRequest, "coupon usage limit reached")
			}
			appliedCoupon = c.Code
		} else {
			cfgs := loadLoyaltyConfigs(ctx, u.loyaltyRepo)
			percent := discountPercentFromConfigs(cfgs, user.LoyaltyTier)
			discount = percentOf(subtotal, percent)
		}

		var taxAmount int64 = 0
		var shippingFee int64 = 0

		total := subtotal + taxAmount + shippingFee - discount
		if total < 0 {
			total = 0
		}

		count, err := r.Orders().CountAll(ctx)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		shippingAddr := addr.Line1
		if addr.Line2 != "" {
			shippingAddr += ", " + addr.Line2
		}
		shippingAddr += ", " + addr.City + " " + addr.PostalCode

		order := model.Order{
			UserID:          userID,
			OrderNumber:     buildOrderNumber(now, count+1),
			Subtotal:        subtotal,
			DiscountAmount:  discount,
			TaxAmount:       taxAmount,
			ShippingFee:     shippingFee,
			TotalAmount:     total,
			CouponCode:      appliedCoupon,
			Status:          model.OrderStatusPending,
			PaymentStatus:   model.PaymentStatusPending,
			PaymentMethod:   method,
			ShippingName:    addr.Name,
			ShippingPhone:   addr.Phone,
			ShippingAddress: shippingAddr,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//カートはCONVERTEDにして明細をクリア（同じカートの再注文防止）
		if err := r.Carts().UpdateStatus(ctx, cart.ID, model.CartStatusConverted); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.Carts().Clear(ctx, cart.ID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		order.ID = orderID
		out = toOrderOutput(order, orderItems)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}

	//通知は確定後のベストエフォート。失敗しても注文は成立している
	go u.sender.SendOrderConfirmation(context.Background(), notification.OrderNotice{
		To:          notifyTo,
		OrderNumber: out.OrderNumber,
		TotalAmount: out.TotalAmount,
	})

	return out, nil
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64, page int, limit int) ([]OrderOutput, int64, error) {
	if userID <= 0 {
		return nil, 0, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var outs []OrderOutput
	var total int64

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, n, err := r.Orders().ListByUserID(ctx, userID, page, limit)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		total = n

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			outs = append(outs, toOrderOutput(o, items))
		}
		return nil
	})

	if err != nil {
		return nil, 0, err
	}
	return outs, total, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.UserID != userID {
			//他人の注文は「存在しない扱い」
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// 本人によるキャンセル。PENDING/CONFIRMEDのみ。在庫は明細ぶん戻す。
func (u *OrderUsecase) CancelMyOrder(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput
	var notifyTo string

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.UserID != userID {
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		switch o.Status {
		case model.OrderStatusPending, model.OrderStatusConfirmed:
		default:
			return NewHTTPError(http.StatusBadRequest, "order cannot be cancelled")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//予約していた在庫を戻す
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

		if err := r.Orders().UpdateStatus(ctx, orderID, model.OrderStatusCancelled); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		user, err := r.Users().FindByID(ctx, userID)
		if err == nil {
			notifyTo = user.Email
		}

		o.Status = model.OrderStatusCancelled
		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}

	go u.sender.SendOrderCancellation(context.Background(), notification.OrderNotice{
		To:          notifyTo,
		OrderNumber: out.OrderNumber,
		TotalAmount: out.TotalAmount,
	})

	return out, nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			Name:      it.ProductNameSnapshot,
			SKU:       it.SKUSnapshot,
			Price:     it.UnitPriceSnapshot,
			Quantity:  it.Quantity,
		})
	}

	return OrderOutput{
		ID:             o.ID,
		OrderNumber:    o.OrderNumber,
		UserID:         o.UserID,
		Status:         string(o.Status),
		PaymentStatus:  string(o.PaymentStatus),
		PaymentMethod:  string(o.PaymentMethod),
		Subtotal:       o.Subtotal,
		DiscountAmount: o.DiscountAmount,
		TaxAmount:      o.TaxAmount,
		ShippingFee:    o.ShippingFee,
		TotalAmount:    o.TotalAmount,
		CouponCode:     o.CouponCode,
		CreatedAt:      o.CreatedAt,
		Items:          outItems,
	}
}
