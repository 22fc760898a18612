package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shinyyama/trace-green-backend/internal/model"
	"github.com/shinyyama/trace-green-backend/internal/service"
)

type BadgeHandler struct {
	svc service.BadgeService
}

func NewBadgeHandler(svc service.BadgeService) *BadgeHandler {
	return &BadgeHandler{svc: svc}
}

type badgeRequest struct {
	Name        string  `json:"name" validate:"required,max=120"`
	Description string  `json:"description" validate:"max=2000"`
	IconURL     *string `json:"iconUrl" validate:"omitempty,max=512"`
	Kind        string  `json:"kind" validate:"required,oneof=activity_count streak_days total_points carbon_logged_kg category_count"`
	Threshold   float64 `json:"threshold" validate:"gt=0"`
	Category    *string `json:"category" validate:"omitempty,oneof=transportation energy food waste"`
	Active      *bool   `json:"active"`
}

func (r badgeRequest) input() service.BadgeInput {
	return service.BadgeInput{
		Name:        r.Name,
		Description: r.Description,
		IconURL:     r.IconURL,
		Kind:        model.CriteriaKind(r.Kind),
		Threshold:   r.Threshold,
		Category:    r.Category,
		Active:      r.Active,
	}
}

// ListMine returns every active badge with the caller's unlock state.
func (h *BadgeHandler) ListMine(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	views, err := h.svc.ListForUser(c.Request().Context(), uid)
	if err != nil {
		return respondError(c, err)
	}
	resp := make([]BadgeResponse, 0, len(views))
	for _, v := range views {
		b := toBadgeResponse(v.Badge)
		unlocked := v.Unlocked
		b.Unlocked = &unlocked
		b.UnlockedAt = formatTimePtr(v.UnlockedAt)
		resp = append(resp, b)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"badges": resp})
}

func (h *BadgeHandler) List(c echo.Context) error {
	limit, offset := pageParams(c)
	list, total, err := h.svc.List(c.Request().Context(), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, listResponse[BadgeResponse]{Items: mapSlice(list, toBadgeResponse), Total: total})
}

func (h *BadgeHandler) Create(c echo.Context) error {
	var req badgeRequest
	if ok, err := bindRequest(c, &req); !ok {
		return err
	}
	b, err := h.svc.Create(c.Request().Context(), req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toBadgeResponse(*b))
}

func (h *BadgeHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badID(c)
	}
	var req badgeRequest
	if ok, err := bindRequest(c, &req); !ok {
		return err
	}
	b, err := h.svc.Update(c.Request().Context(), id, req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toBadgeResponse(*b))
}

func (h *BadgeHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badID(c)
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
