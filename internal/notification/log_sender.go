package notification

import (
	"context"

	"github.com/labstack/gommon/log"
)

// メール基盤が未接続の環境向け。送信内容を構造化ログに落とすだけ
type logSender struct {
	logger *log.Logger
}

func NewLogSender(logger *log.Logger) Sender {
	return &logSender{logger: logger}
}

func (s *logSender) SendOrderConfirmation(ctx context.Context, n OrderNotice) error {
	s.logger.Infoj(log.JSON{
		"event":        "order_confirmation",
		"to":           n.To,
		"order_number": n.OrderNumber,
		"total_amount": n.TotalAmount,
	})
	return nil
}

func (s *logSender) SendOrderStatusUpdate(ctx context.Context, n OrderNotice) error {
	s.logger.Infoj(log.JSON{
		"event":        "order_status_update",
		"to":           n.To,
		"order_number": n.OrderNumber,
		"status":       n.Status,
	})
	return nil
}

func (s *logSender) SendOrderCancellation(ctx context.Context, n OrderNotice) error {
	s.logger.Infoj(log.JSON{
		"event":        "order_cancellation",
		"to":           n.To,
		"order_number": n.OrderNumber,
	})
	return nil
}
