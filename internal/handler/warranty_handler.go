package handler

import (
	"net/http"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/repository"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /warrantiesのHTTP（本人の保証のみ）
type WarrantyHandler struct {
	uc *usecase.WarrantyUsecase
}

func NewWarrantyHandler(uc *usecase.WarrantyUsecase) *WarrantyHandler {
	return &WarrantyHandler{uc: uc}
}

func (h *WarrantyHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/warranties")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))

	g.GET("", h.list)
	g.GET("/:id", h.get)
}

func (h *WarrantyHandler) list(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return respondFail(c, http.StatusUnauthorized, "unauthorized")
	}

	out, err := h.uc.ListMine(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return respondOK(c, http.StatusOK, out)
}

func (h *WarrantyHandler) get(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return respondFail(c, http.StatusUnauthorized, "unauthorized")
	}

	warrantyID, ok := parseIDParam(c, "id")
	if !ok {
		return respondFail(c, http.StatusBadRequest, "invalid id")
	}

	out, err := h.uc.GetMine(c.Request().Context(), userID, warrantyID)
	if err != nil {
		return writeError(c, err)
	}
	return respondOK(c, http.StatusOK, out)
}
