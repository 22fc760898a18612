package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/shinyyama/trace-green-backend/internal/emission"
	"github.com/shinyyama/trace-green-backend/internal/middleware"
	"github.com/shinyyama/trace-green-backend/internal/service"
	"github.com/shinyyama/trace-green-backend/internal/storage"
)

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type ErrorResponse struct {
	Error errorPayload `json:"error"`
}

func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: errorPayload{
			Code:    code,
			Message: message,
		},
	}
}

type listResponse[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}

// respondError maps service errors onto status codes. Unknown errors become a
// 500 whose cause is left for the request logger.
func respondError(c echo.Context, err error) error {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		resp := NewErrorResponse("invalid_input", verr.Message)
		resp.Error.Field = verr.Field
		return c.JSON(http.StatusBadRequest, resp)
	case errors.Is(err, emission.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("invalid_input", err.Error()))
	case errors.Is(err, storage.ErrUnsupportedType):
		return c.JSON(http.StatusUnsupportedMediaType, NewErrorResponse("unsupported_media_type", err.Error()))
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "resource not found"))
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "not allowed"))
	case errors.Is(err, service.ErrInsufficientPoints):
		return c.JSON(http.StatusConflict, NewErrorResponse("insufficient_points", "not enough points"))
	case errors.Is(err, service.ErrOutOfStock):
		return c.JSON(http.StatusConflict, NewErrorResponse("out_of_stock", "reward is out of stock"))
	case errors.Is(err, service.ErrAlreadyJoined), errors.Is(err, service.ErrAlreadyMember):
		return c.JSON(http.StatusConflict, NewErrorResponse("already_joined", err.Error()))
	case errors.Is(err, service.ErrInactive):
		return c.JSON(http.StatusConflict, NewErrorResponse("inactive", "not available"))
	case errors.Is(err, service.ErrInvalidState):
		return c.JSON(http.StatusConflict, NewErrorResponse("invalid_state", err.Error()))
	case errors.Is(err, service.ErrConflict):
		return c.JSON(http.StatusConflict, NewErrorResponse("conflict", "already exists"))
	case errors.Is(err, storage.ErrDisabled):
		return c.JSON(http.StatusServiceUnavailable, NewErrorResponse("unavailable", err.Error()))
	}
	c.Set(middleware.ErrorKey, err)
	return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "internal error"))
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
}

func currentUID(c echo.Context) string {
	uid, _ := c.Get("uid").(string)
	return uid
}

func parseID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

func badID(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
}

// pageParams reads limit/offset; invalid values fall back to the service
// defaults.
func pageParams(c echo.Context) (int, int) {
	limit, offset := 0, 0
	if lStr := c.QueryParam("limit"); lStr != "" {
		if v, err := strconv.Atoi(lStr); err == nil && v > 0 {
			limit = v
		}
	}
	if oStr := c.QueryParam("offset"); oStr != "" {
		if v, err := strconv.Atoi(oStr); err == nil && v > 0 {
			offset = v
		}
	}
	return limit, offset
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}
