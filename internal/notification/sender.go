package notification

import "context"

// 注文関連の通知に使うスナップショット。
// 注文レコードが後から変わっても通知内容は変えない
type OrderNotice struct {
	To          string
	OrderNumber string
	TotalAmount int64
	Status      string
}

// 通知の送り口。失敗しても注文処理は止めない前提で呼ぶこと
type Sender interface {
	SendOrderConfirmation(ctx context.Context, n OrderNotice) error
	SendOrderStatusUpdate(ctx context.Context, n OrderNotice) error
	SendOrderCancellation(ctx context.Context, n OrderNotice) error
}
