package handler

import (
	"net/http"
	"strconv"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/middleware"
	"app/internal/repository"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 管理側の注文一覧・ステータス遷移・返金・売上集計
type AdminOrderHandler struct {
	uc        *usecase.AdminOrderUsecase
	paymentUC *usecase.PaymentUsecase
	statsUC   *usecase.AdminStatsUsecase
}

func NewAdminOrderHandler(uc *usecase.AdminOrderUsecase, paymentUC *usecase.PaymentUsecase, statsUC *usecase.AdminStatsUsecase) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc, paymentUC: paymentUC, statsUC: statsUC}
}

type AdminOrderStatusRequest struct {
	Status string `json:"status"`
}

func (h *AdminOrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/admin")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))
	g.Use(middleware.RoleGuard(string(model.RoleManager), string(model.RoleAdmin)))

	adminOnly := middleware.RoleGuard(string(model.RoleAdmin))

	g.GET("/orders", h.list)
	g.PATCH("/orders/:id/status", h.updateStatus, adminOnly)
	g.POST("/orders/:id/refund", h.refund, adminOnly)

	//期間はパスでもクエリでも指定できる（/stats/revenue/monthly と ?period=monthly は同じ）
	g.GET("/stats/revenue", h.revenue)
	g.GET("/stats/revenue/:period", h.revenue)
	g.GET("/stats/revenue/export", h.revenueCSV)
}

// from/toはRFC3339、日付のみも受ける
func parseTimeParam(s string) (*time.Time, bool) {
	if s == "" {
		return nil, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t, true
	}
	return nil, false
}

func (h *AdminOrderHandler) list(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	f := repository.AdminOrderListFilter{
		Page:   page,
		Limit:  limit,
		Status: c.QueryParam("status"),
	}

	if s := c.QueryParam("user_id"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id <= 0 {
			return respondFail(c, http.StatusBadRequest, "invalid user_id")
		}
		f.UserID = &id
	}

	from, ok := parseTimeParam(c.QueryParam("from"))
	if !ok {
		return respondFail(c, http.StatusBadRequest, "invalid from")
	}
	f.From = from

	to, ok := parseTimeParam(c.QueryParam("to"))
	if !ok {
		return respondFail(c, http.StatusBadRequest, "invalid to")
	}
	f.To = to

	out, err := h.uc.List(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return respondOK(c, http.StatusOK, out)
}

func (h *AdminOrderHandler) updateStatus(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return respondFail(c, http.StatusUnauthorized, "unauthorized")
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return respondFail(c, http.StatusBadRequest, "invalid id")
	}

	var req AdminOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return respondFail(c, http.StatusBadRequest, "invalid body")
	}

	if err := h.uc.UpdateStatus(c.Request().Context(), adminID, orderID, usecase.AdminUpdateOrderStatusInput{Status: req.Status}); err != nil {
		return writeError(c, err)
	}
	return respondOK(c, http.StatusOK, map[string]string{"message": "status updated"})
}

func (h *AdminOrderHandler) refund(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return respondFail(c, http.StatusUnauthorized, "unauthorized")
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return respondFail(c, http.StatusBadRequest, "invalid id")
	}

	if err := h.paymentUC.Refund(c.Request().Context(), adminID, orderID); err != nil {
		return writeError(c, err)
	}
	return respondOK(c, http.StatusOK, map[string]string{"message": "refunded"})
}

func (h *AdminOrderHandler) revenueInput(c echo.Context) (usecase.RevenueInput, bool) {
	period := c.Param("period")
	if period == "" {
		period = c.QueryParam("period")
	}
	in := usecase.RevenueInput{Period: period}

	from, ok := parseTimeParam(c.QueryParam("from"))
	if !ok {
		return in, false
	}
	in.From = from

	to, ok := parseTimeParam(c.QueryParam("to"))
	if !ok {
		return in, false
	}
	in.To = to

	return in, true
}

func (h *AdminOrderHandler) revenue(c echo.Context) error {
	in, ok := h.revenueInput(c)
	if !ok {
		return respondFail(c, http.StatusBadRequest, "invalid date range")
	}

	out, err := h.statsUC.Revenue(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return respondOK(c, http.StatusOK, out)
}

func (h *AdminOrderHandler) revenueCSV(c echo.Context) error {
	in, ok := h.revenueInput(c)
	if !ok {
		return respondFail(c, http.StatusBadRequest, "invalid date range")
	}

	data, err := h.statsUC.RevenueCSV(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="revenue.csv"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", data)
}
