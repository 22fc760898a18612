package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shinyyama/trace-green-backend/internal/model"
	"github.com/shinyyama/trace-green-backend/internal/service"
)

type RewardHandler struct {
	svc service.RewardService
}

func NewRewardHandler(svc service.RewardService) *RewardHandler {
	return &RewardHandler{svc: svc}
}

type rewardRequest struct {
	Name        string  `json:"name" validate:"required,max=120"`
	Description string  `json:"description" validate:"max=2000"`
	CostPoints  float64 `json:"costPoints" validate:"gt=0"`
	Stock       *int    `json:"stock" validate:"omitempty,gte=0"`
	ImageURL    *string `json:"imageUrl" validate:"omitempty,max=512"`
	Active      *bool   `json:"active"`
}

func (r rewardRequest) input() service.RewardInput {
	return service.RewardInput{
		Name:        r.Name,
		Description: r.Description,
		CostPoints:  r.CostPoints,
		Stock:       r.Stock,
		ImageURL:    r.ImageURL,
		Active:      r.Active,
	}
}

func (h *RewardHandler) ListActive(c echo.Context) error {
	list, err := h.svc.ListActive(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"rewards": mapSlice(list, toRewardResponse),
	})
}

func (h *RewardHandler) Redeem(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	id, err := parseID(c)
	if err != nil {
		return badID(c)
	}
	red, err := h.svc.Redeem(c.Request().Context(), uid, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toRedemptionResponse(*red))
}

func (h *RewardHandler) ListMine(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	list, err := h.svc.ListMine(c.Request().Context(), uid)
	if err != nil {
		return respondError(c, err)
	}
	resp := make([]RedemptionResponse, 0, len(list))
	for _, rw := range list {
		r := toRedemptionResponse(rw.Redemption)
		if rw.Reward != nil {
			reward := toRewardResponse(*rw.Reward)
			r.Reward = &reward
		}
		resp = append(resp, r)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"redemptions": resp})
}

func (h *RewardHandler) Cancel(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	id, err := parseID(c)
	if err != nil {
		return badID(c)
	}
	red, err := h.svc.Cancel(c.Request().Context(), uid, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toRedemptionResponse(*red))
}

func (h *RewardHandler) Fulfill(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badID(c)
	}
	red, err := h.svc.Fulfill(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toRedemptionResponse(*red))
}

func (h *RewardHandler) ListRedemptions(c echo.Context) error {
	limit, offset := pageParams(c)
	status := model.RedemptionStatus(c.QueryParam("status"))
	list, total, err := h.svc.ListRedemptions(c.Request().Context(), status, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, listResponse[RedemptionResponse]{Items: mapSlice(list, toRedemptionResponse), Total: total})
}

func (h *RewardHandler) List(c echo.Context) error {
	limit, offset := pageParams(c)
	list, total, err := h.svc.List(c.Request().Context(), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, listResponse[RewardResponse]{Items: mapSlice(list, toRewardResponse), Total: total})
}

func (h *RewardHandler) Create(c echo.Context) error {
	var req rewardRequest
	if ok, err := bindRequest(c, &req); !ok {
		return err
	}
	r, err := h.svc.Create(c.Request().Context(), req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toRewardResponse(*r))
}

func (h *RewardHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badID(c)
	}
	var req rewardRequest
	if ok, err := bindRequest(c, &req); !ok {
		return err
	}
	r, err := h.svc.Update(c.Request().Context(), id, req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toRewardResponse(*r))
}

func (h *RewardHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badID(c)
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
