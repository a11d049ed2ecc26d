package handler

import (
	"io"
	"net/http"

	"app/internal/config"
	"app/internal/repository"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 決済プロバイダからのwebhook受け口。
// 認証はJWTではなく署名検証で行うため、認証ミドルウェアは通さない。
type PaymentHandler struct {
	uc *usecase.PaymentUsecase
}

func NewPaymentHandler(uc *usecase.PaymentUsecase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

func (h *PaymentHandler) RegisterRoutes(e *echo.Echo, _ config.Config, _ repository.UserRepository) {
	g := e.Group("/webhooks")
	g.POST("/stripe", h.stripeWebhook)
	g.POST("/payos", h.payosWebhook)
}

func (h *PaymentHandler) stripeWebhook(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return respondFail(c, http.StatusBadRequest, "invalid body")
	}

	sig := c.Request().Header.Get("Stripe-Signature")
	if err := h.uc.HandleIntentWebhook(c.Request().Context(), payload, sig); err != nil {
		return writeError(c, err)
	}

	return respondOK(c, http.StatusOK, map[string]bool{"received": true})
}

func (h *PaymentHandler) payosWebhook(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return respondFail(c, http.StatusBadRequest, "invalid body")
	}

	if err := h.uc.HandleLinkWebhook(c.Request().Context(), payload); err != nil {
		return writeError(c, err)
	}

	return respondOK(c, http.StatusOK, map[string]bool{"received": true})
}
