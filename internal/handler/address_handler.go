package handler

import (
	"net/http"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/repository"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /addressesのHTTP
type AddressHandler struct {
	uc *usecase.AddressUsecase
}

func NewAddressHandler(uc *usecase.AddressUsecase) *AddressHandler {
	return &AddressHandler{uc: uc}
}

type AddressRequest struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	IsDefault  bool   `json:"is_default"`
}

func (h *AddressHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/addresses")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))

	g.GET("", h.list)
	g.POST("", h.create)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
	g.POST("/:id/default", h.setDefault)
}

func (h *AddressHandler) list(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return respondFail(c, http.StatusUnauthorized, "unauthorized")
	}

	out, err := h.uc.List(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return respondOK(c, http.StatusOK, out)
}

func (h *AddressHandler) create(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return respondFail(c, http.StatusUnauthorized, "unauthorized")
	}

	var req AddressRequest
	if err := c.Bind(&req); err != nil {
		return respondFail(c, http.StatusBadRequest, "invalid body")
	}

	out, err := h.uc.Create(c.Request().Context(), userID, usecase.AddressInput(req))
	if err != nil {
		return writeError(c, err)
	}
	return respondOK(c, http.StatusCreated, out)
}

func (h *AddressHandler) update(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return respondFail(c, http.StatusUnauthorized, "unauthorized")
	}

	addressID, ok := parseIDParam(c, "id")
	if !ok {
		return respondFail(c, http.StatusBadRequest, "invalid id")
	}

	var req AddressRequest
	if err := c.Bind(&req); err != nil {
		return respondFail(c, http.StatusBadRequest, "invalid body")
	}

	out, err := h.uc.Update(c.Request().Context(), userID, addressID, usecase.AddressInput(req))
	if err != nil {
		return writeError(c, err)
	}
	return respondOK(c, http.StatusOK, out)
}

func (h *AddressHandler) delete(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return respondFail(c, http.StatusUnauthorized, "unauthorized")
	}

	addressID, ok := parseIDParam(c, "id")
	if !ok {
		return respondFail(c, http.StatusBadRequest, "invalid id")
	}

	if err := h.uc.Delete(c.Request().Context(), userID, addressID); err != nil {
		return writeError(c, err)
	}
	return respondOK(c, http.StatusOK, map[string]string{"message": "deleted"})
}

func (h *AddressHandler) setDefault(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return respondFail(c, http.StatusUnauthorized, "unauthorized")
	}

	addressID, ok := parseIDParam(c, "id")
	if !ok {
		return respondFail(c, http.StatusBadRequest, "invalid id")
	}

	if err := h.uc.SetDefault(c.Request().Context(), userID, addressID); err != nil {
		return writeError(c, err)
	}
	return respondOK(c, http.StatusOK, map[string]string{"message": "default updated"})
}
