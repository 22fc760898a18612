package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shinyyama/trace-green-backend/internal/service"
)

type PointHandler struct {
	svc service.PointService
}

func NewPointHandler(svc service.PointService) *PointHandler {
	return &PointHandler{svc: svc}
}

func (h *PointHandler) Get(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	total, balance, err := h.svc.Get(c.Request().Context(), uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"total":   total,
		"balance": balance,
	})
}
