// Package handler exposes HTTP handlers for the catalog API.  This file
// defines the handlers shared by every resource: list, create, detail and
// favorite marking.  Each ResourceHandler serves one kind.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/starwars-catalog/internal/repository"
	"github.com/iliyamo/starwars-catalog/internal/service"
)

// ResourceHandler bundles the service and presenter for one resource.
type ResourceHandler struct {
	Service   *service.ResourceService
	Presenter Presenter
	BaseURL   string // absolute origin for list links; request origin when empty
	Logger    *zap.Logger
}

// NewResourceHandler constructs a handler and panics if the service is nil.
func NewResourceHandler(svc *service.ResourceService, p Presenter, baseURL string, logger *zap.Logger) *ResourceHandler {
	if svc == nil {
		panic("nil service passed to NewResourceHandler")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResourceHandler{Service: svc, Presenter: p, BaseURL: baseURL, Logger: logger}
}

// List handles GET /{resource}/ with an optional ?name= filter.
func (h *ResourceHandler) List(c echo.Context) error {
	recs, err := h.Service.List(c.Request().Context(), c.QueryParam("name"))
	if err != nil {
		return h.fail(c, err)
	}
	kind := h.Service.Kind()
	msg := kind.Title + " list fetched successfully."
	if len(recs) == 0 {
		msg = "Empty " + kind.Name + " list."
	}
	return c.JSON(http.StatusOK, echo.Map{
		"msg":       msg,
		kind.Plural: h.Presenter.List(recs, h.origin(c)),
	})
}

// Create handles POST /{resource}/.
func (h *ResourceHandler) Create(c echo.Context) error {
	var in service.CreateInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid request body"})
	}
	rec, err := h.Service.Create(c.Request().Context(), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"msg":     h.Service.Kind().Title + " created successfully.",
		"details": h.Presenter.Detail(rec),
	})
}

// Get handles GET /{resource}/:id/.
func (h *ResourceHandler) Get(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return notFound(c)
	}
	rec, err := h.Service.Get(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"msg":     h.Service.Kind().Title + " details fetched successfully.",
		"details": h.Presenter.Detail(rec),
	})
}

// Favorite handles POST /{resource}/:id/favorite/.  Both resources answer
// 201 on success.  An unknown id is a 404 whatever the body holds, so the
// record is looked up before the body is bound.
func (h *ResourceHandler) Favorite(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return notFound(c)
	}
	if _, err := h.Service.Get(c.Request().Context(), id); err != nil {
		return h.fail(c, err)
	}
	var in service.FavoriteInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid request body"})
	}
	rec, err := h.Service.MarkFavorite(c.Request().Context(), id, in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"msg":     "Favorite " + h.Service.Kind().Name + " added.",
		"details": h.Presenter.Favorite(rec),
	})
}

// origin returns the configured base URL or scheme://host of the request.
func (h *ResourceHandler) origin(c echo.Context) string {
	if h.BaseURL != "" {
		return h.BaseURL
	}
	return c.Scheme() + "://" + c.Request().Host
}

// fail maps service and repository errors onto HTTP responses.
func (h *ResourceHandler) fail(c echo.Context, err error) error {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, verr.Fields)
	case errors.Is(err, repository.ErrNotFound):
		return notFound(c)
	default:
		h.Logger.Error("request failed",
			zap.String("resource", h.Service.Kind().Name),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
}

func notFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, echo.Map{"detail": "Not found."})
}

// parseID reads the :id path parameter.  Non-numeric ids never match a
// record, so callers answer 404 rather than 400.
func parseID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
