package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/shinyyama/trace-green-backend/internal/ai"
	"github.com/shinyyama/trace-green-backend/internal/footprint"
	"github.com/shinyyama/trace-green-backend/internal/service"
)

type ActivityHandler struct {
	svc  service.ActivityService
	tips ai.TipClient
}

func NewActivityHandler(svc service.ActivityService, tips ai.TipClient) *ActivityHandler {
	return &ActivityHandler{svc: svc, tips: tips}
}

type logActivityRequest struct {
	Category     string     `json:"category" validate:"required,oneof=transportation energy food waste"`
	ActivityType string     `json:"activityType" validate:"required,max=64"`
	Quantity     *float64   `json:"quantity" validate:"required,gte=0,lte=1000000000"`
	Note         *string    `json:"note" validate:"omitempty,max=1000"`
	LoggedAt     *time.Time `json:"loggedAt"`
}

type logActivityResponse struct {
	Activity            ActivityResponse    `json:"activity"`
	PointsAwarded       float64             `json:"pointsAwarded"`
	Streak              int                 `json:"streak"`
	BadgesUnlocked      []BadgeResponse     `json:"badgesUnlocked"`
	ChallengesCompleted []ChallengeResponse `json:"challengesCompleted"`
}

func (h *ActivityHandler) Log(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	var req logActivityRequest
	if ok, err := bindRequest(c, &req); !ok {
		return err
	}
	res, err := h.svc.Log(c.Request().Context(), uid, service.LogInput{
		Category:     req.Category,
		ActivityType: req.ActivityType,
		Quantity:     *req.Quantity,
		Note:         req.Note,
		LoggedAt:     req.LoggedAt,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, logActivityResponse{
		Activity:            toActivityResponse(res.Record),
		PointsAwarded:       res.PointsAwarded,
		Streak:              res.Streak,
		BadgesUnlocked:      mapSlice(res.Badges, toBadgeResponse),
		ChallengesCompleted: mapSlice(res.Challenges, toChallengeResponse),
	})
}

func (h *ActivityHandler) List(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	q := service.ListQuery{
		Window:   c.QueryParam("window"),
		Category: c.QueryParam("category"),
	}
	for name, dst := range map[string]*time.Time{"from": &q.From, "to": &q.To} {
		v := c.QueryParam(name)
		if v == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid "+name))
		}
		*dst = t
	}
	q.Limit, q.Offset = pageParams(c)
	list, total, err := h.svc.List(c.Request().Context(), uid, q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, listResponse[ActivityResponse]{
		Items: mapSlice(list, toActivityResponse),
		Total: total,
	})
}

func (h *ActivityHandler) Summary(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	view, err := h.svc.Summary(c.Request().Context(), uid, c.QueryParam("window"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *ActivityHandler) Dashboard(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	d, err := h.svc.Dashboard(c.Request().Context(), uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *ActivityHandler) Catalog(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"categories": h.svc.Catalog(),
	})
}

// Tip suggests one reduction based on the caller's footprint over the
// requested window (default week).
func (h *ActivityHandler) Tip(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	window := c.QueryParam("window")
	if window == "" {
		window = string(footprint.WindowWeek)
	}
	view, err := h.svc.Summary(c.Request().Context(), uid, window)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, h.tips.Suggest(c.Request().Context(), view.Summary))
}

func (h *ActivityHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badID(c)
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
