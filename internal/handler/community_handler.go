package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shinyyama/trace-green-backend/internal/model"
	"github.com/shinyyama/trace-green-backend/internal/service"
)

type CommunityHandler struct {
	svc service.CommunityService
}

func NewCommunityHandler(svc service.CommunityService) *CommunityHandler {
	return &CommunityHandler{svc: svc}
}

type communityRequest struct {
	Name        string  `json:"name" validate:"required,max=120"`
	Description string  `json:"description" validate:"max=2000"`
	ImageURL    *string `json:"imageUrl" validate:"omitempty,max=512"`
}

func (r communityRequest) input() service.CommunityInput {
	return service.CommunityInput{Name: r.Name, Description: r.Description, ImageURL: r.ImageURL}
}

func (h *CommunityHandler) List(c echo.Context) error {
	limit, offset := pageParams(c)
	list, total, err := h.svc.List(c.Request().Context(), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	resp := make([]CommunityResponse, 0, len(list))
	for _, v := range list {
		cr := toCommunityResponse(v.Community)
		count := v.MemberCount
		cr.MemberCount = &count
		resp = append(resp, cr)
	}
	return c.JSON(http.StatusOK, listResponse[CommunityResponse]{Items: resp, Total: total})
}

func (h *CommunityHandler) ListMembers(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badID(c)
	}
	limit, offset := pageParams(c)
	list, total, err := h.svc.ListMembers(c.Request().Context(), id, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	resp := mapSlice(list, func(m model.CommunityMember) MemberResponse {
		return MemberResponse{UserUID: m.UserUID, JoinedAt: formatTime(m.JoinedAt)}
	})
	return c.JSON(http.StatusOK, listResponse[MemberResponse]{Items: resp, Total: total})
}

func (h *CommunityHandler) ListJoined(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	list, err := h.svc.ListJoined(c.Request().Context(), uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"communities": mapSlice(list, toCommunityResponse),
	})
}

func (h *CommunityHandler) Join(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	id, err := parseID(c)
	if err != nil {
		return badID(c)
	}
	if err := h.svc.Join(c.Request().Context(), uid, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"status": "joined"})
}

func (h *CommunityHandler) Leave(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	id, err := parseID(c)
	if err != nil {
		return badID(c)
	}
	if err := h.svc.Leave(c.Request().Context(), uid, id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CommunityHandler) Create(c echo.Context) error {
	var req communityRequest
	if ok, err := bindRequest(c, &req); !ok {
		return err
	}
	cm, err := h.svc.Create(c.Request().Context(), currentUID(c), req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toCommunityResponse(*cm))
}

func (h *CommunityHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badID(c)
	}
	var req communityRequest
	if ok, err := bindRequest(c, &req); !ok {
		return err
	}
	cm, err := h.svc.Update(c.Request().Context(), id, req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toCommunityResponse(*cm))
}

func (h *CommunityHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badID(c)
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
