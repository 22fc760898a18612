package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shinyyama/trace-green-backend/internal/service"
)

type ProfileHandler struct {
	svc service.ProfileService
}

func NewProfileHandler(svc service.ProfileService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

type updateProfileRequest struct {
	DisplayName *string  `json:"displayName" validate:"omitempty,max=80"`
	AvatarURL   *string  `json:"avatarUrl" validate:"omitempty,max=512"`
	Bio         *string  `json:"bio" validate:"omitempty,max=2000"`
	Location    *string  `json:"location" validate:"omitempty,max=120"`
	DailyGoalKg *float64 `json:"dailyGoalKg" validate:"omitempty,gte=0"`
}

func (h *ProfileHandler) Get(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	p, err := h.svc.Get(c.Request().Context(), uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toProfileResponse(*p))
}

func (h *ProfileHandler) Update(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	var req updateProfileRequest
	if ok, err := bindRequest(c, &req); !ok {
		return err
	}
	p, err := h.svc.Update(c.Request().Context(), uid, service.ProfileInput{
		DisplayName: req.DisplayName,
		AvatarURL:   req.AvatarURL,
		Bio:         req.Bio,
		Location:    req.Location,
		DailyGoalKg: req.DailyGoalKg,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toProfileResponse(*p))
}
