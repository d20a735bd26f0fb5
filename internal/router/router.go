package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/starwars-catalog/internal/handler"
)

// RegisterRoutes registers the operational endpoints: a health probe for
// load balancers and the Prometheus scrape endpoint.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler) {
	e.GET("/healthz", h.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterResource mounts the public endpoints of one resource under
// /{plural}.  Every route answers with and without a trailing slash.  The
// middlewares wrap the whole group, so a cache passed here sees both the
// reads it serves and the writes that invalidate it.
//
//	GET  /{plural}/                list, optional ?name= filter
//	POST /{plural}/                create
//	GET  /{plural}/:id/            detail
//	POST /{plural}/:id/favorite/   mark favorite
func RegisterResource(e *echo.Echo, h *handler.ResourceHandler, mws ...echo.MiddlewareFunc) {
	g := e.Group("/"+h.Service.Kind().Plural, mws...)
	both(g, "GET", "", h.List)
	both(g, "POST", "", h.Create)
	both(g, "GET", "/:id", h.Get)
	both(g, "POST", "/:id/favorite", h.Favorite)
}

// RegisterAdmin mounts the read-only inspection listing at
// /admin/{plural}/.
func RegisterAdmin(e *echo.Echo, h *handler.ResourceHandler) {
	g := e.Group("/admin")
	both(g, "GET", "/"+h.Service.Kind().Plural, h.Admin)
}

// both registers path with and without the trailing slash.
func both(g *echo.Group, method, path string, fn echo.HandlerFunc) {
	g.Add(method, path, fn)
	g.Add(method, path+"/", fn)
}
