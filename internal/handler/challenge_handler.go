package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/shinyyama/trace-green-backend/internal/model"
	"github.com/shinyyama/trace-green-backend/internal/service"
)

type ChallengeHandler struct {
	svc service.ChallengeService
}

func NewChallengeHandler(svc service.ChallengeService) *ChallengeHandler {
	return &ChallengeHandler{svc: svc}
}

type challengeRequest struct {
	Title        string    `json:"title" validate:"required,max=120"`
	Description  string    `json:"description" validate:"max=2000"`
	Kind         string    `json:"kind" validate:"required,oneof=activity_count streak_days"`
	Category     *string   `json:"category" validate:"omitempty,oneof=transportation energy food waste"`
	Target       int       `json:"target" validate:"gt=0"`
	RewardPoints float64   `json:"rewardPoints" validate:"gte=0"`
	StartsAt     time.Time `json:"startsAt" validate:"required"`
	EndsAt       time.Time `json:"endsAt" validate:"required,gtfield=StartsAt"`
	Active       *bool     `json:"active"`
}

func (r challengeRequest) input() service.ChallengeInput {
	return service.ChallengeInput{
		Title:        r.Title,
		Description:  r.Description,
		Kind:         model.ChallengeRuleKind(r.Kind),
		Category:     r.Category,
		Target:       r.Target,
		RewardPoints: r.RewardPoints,
		StartsAt:     r.StartsAt,
		EndsAt:       r.EndsAt,
		Active:       r.Active,
	}
}

type challengeProgressResponse struct {
	Challenge   ChallengeResponse `json:"challenge"`
	Joined      bool              `json:"joined"`
	Current     int               `json:"current"`
	Target      int               `json:"target"`
	Percent     float64           `json:"percent"`
	CompletedAt *string           `json:"completedAt,omitempty"`
}

func (h *ChallengeHandler) ListOpen(c echo.Context) error {
	list, err := h.svc.ListOpen(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"challenges": mapSlice(list, toChallengeResponse),
	})
}

func (h *ChallengeHandler) Join(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	id, err := parseID(c)
	if err != nil {
		return badID(c)
	}
	p, err := h.svc.Join(c.Request().Context(), uid, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"challengeId": p.ChallengeID,
		"joinedAt":    formatTime(p.JoinedAt),
	})
}

func (h *ChallengeHandler) Progress(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	id, err := parseID(c)
	if err != nil {
		return badID(c)
	}
	p, err := h.svc.Progress(c.Request().Context(), uid, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, challengeProgressResponse{
		Challenge:   toChallengeResponse(p.Challenge),
		Joined:      p.Joined,
		Current:     p.Current,
		Target:      p.Target,
		Percent:     p.Percent,
		CompletedAt: formatTimePtr(p.CompletedAt),
	})
}

func (h *ChallengeHandler) List(c echo.Context) error {
	limit, offset := pageParams(c)
	list, total, err := h.svc.List(c.Request().Context(), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, listResponse[ChallengeResponse]{Items: mapSlice(list, toChallengeResponse), Total: total})
}

func (h *ChallengeHandler) Create(c echo.Context) error {
	var req challengeRequest
	if ok, err := bindRequest(c, &req); !ok {
		return err
	}
	ch, err := h.svc.Create(c.Request().Context(), req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toChallengeResponse(*ch))
}

func (h *ChallengeHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badID(c)
	}
	var req challengeRequest
	if ok, err := bindRequest(c, &req); !ok {
		return err
	}
	ch, err := h.svc.Update(c.Request().Context(), id, req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toChallengeResponse(*ch))
}

func (h *ChallengeHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badID(c)
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
