package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shinyyama/trace-green-backend/internal/service"
)

const maxUploadBytes = 5 << 20

type ContentHandler struct {
	svc service.ContentService
}

func NewContentHandler(svc service.ContentService) *ContentHandler {
	return &ContentHandler{svc: svc}
}

type articleRequest struct {
	Title     string  `json:"title" validate:"required,max=200"`
	Summary   string  `json:"summary" validate:"max=500"`
	Body      string  `json:"body" validate:"required"`
	Category  *string `json:"category" validate:"omitempty,oneof=transportation energy food waste"`
	ImageURL  *string `json:"imageUrl" validate:"omitempty,max=512"`
	Published bool    `json:"published"`
}

func (r articleRequest) input() service.ArticleInput {
	return service.ArticleInput{
		Title:     r.Title,
		Summary:   r.Summary,
		Body:      r.Body,
		Category:  r.Category,
		ImageURL:  r.ImageURL,
		Published: r.Published,
	}
}

// ListPublished omits article bodies.
func (h *ContentHandler) ListPublished(c echo.Context) error {
	limit, offset := pageParams(c)
	list, total, err := h.svc.ListPublished(c.Request().Context(), c.QueryParam("category"), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	resp := make([]ArticleResponse, 0, len(list))
	for _, a := range list {
		resp = append(resp, toArticleResponse(a, false))
	}
	return c.JSON(http.StatusOK, listResponse[ArticleResponse]{Items: resp, Total: total})
}

func (h *ContentHandler) GetPublished(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badID(c)
	}
	a, err := h.svc.GetPublished(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toArticleResponse(*a, true))
}

func (h *ContentHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badID(c)
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toArticleResponse(*a, true))
}

func (h *ContentHandler) List(c echo.Context) error {
	limit, offset := pageParams(c)
	list, total, err := h.svc.List(c.Request().Context(), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	resp := make([]ArticleResponse, 0, len(list))
	for _, a := range list {
		resp = append(resp, toArticleResponse(a, false))
	}
	return c.JSON(http.StatusOK, listResponse[ArticleResponse]{Items: resp, Total: total})
}

func (h *ContentHandler) Create(c echo.Context) error {
	var req articleRequest
	if ok, err := bindRequest(c, &req); !ok {
		return err
	}
	a, err := h.svc.Create(c.Request().Context(), req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toArticleResponse(*a, true))
}

func (h *ContentHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badID(c)
	}
	var req articleRequest
	if ok, err := bindRequest(c, &req); !ok {
		return err
	}
	a, err := h.svc.Update(c.Request().Context(), id, req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toArticleResponse(*a, true))
}

func (h *ContentHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badID(c)
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UploadImage accepts a multipart "file" plus a "kind" form value naming the
// object prefix.
func (h *ContentHandler) UploadImage(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "file is required"))
	}
	if fh.Size > maxUploadBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, NewErrorResponse("too_large", "file exceeds 5 MiB"))
	}
	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "unreadable file"))
	}
	defer f.Close()
	url, err := h.svc.UploadImage(c.Request().Context(), c.FormValue("kind"), fh.Header.Get("Content-Type"), f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"url": url})
}
