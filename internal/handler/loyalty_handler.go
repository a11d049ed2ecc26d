package handler

import (
	"net/http"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/repository"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 会員ランク関連のHTTP
type LoyaltyHandler struct {
	uc *usecase.LoyaltyUsecase
}

func NewLoyaltyHandler(uc *usecase.LoyaltyUsecase) *LoyaltyHandler {
	return &LoyaltyHandler{uc: uc}
}

func (h *LoyaltyHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/me/loyalty")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))
	g.GET("", h.myStatus)
}

func (h *LoyaltyHandler) myStatus(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return respondFail(c, http.StatusUnauthorized, "unauthorized")
	}

	out, err := h.uc.MyStatus(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}

	return respondOK(c, http.StatusOK, out)
}
