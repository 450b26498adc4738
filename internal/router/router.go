// Package router builds the echo instance: global middleware in order,
// system routes and the /users resource.
package router

import (
	"github.com/deppfellow/workshop/internal/handler"
	"github.com/deppfellow/workshop/internal/middleware"
	"github.com/deppfellow/workshop/internal/server"
	"github.com/labstack/echo/v4"
)

func NewRouter(s *server.Server, h *handler.Handlers, m *middleware.Middlewares) *echo.Echo {
	router := echo.New()
	router.HideBanner = true
	router.HidePort = true

	router.HTTPErrorHandler = m.Global.GlobalErrorHandler

	router.Use(
		middleware.RequestID(),
		m.Tracing.NewRelicMiddleware(),
		m.Tracing.EnhanceTracing(),
		m.ContextEnhancer.EnhanceContext(),
		m.Global.RequestLogger(),
		m.Global.Recover(),
		m.Global.Secure(),
		m.Global.CORS(),
	)

	registerSystemRoutes(router, h)
	registerUserRoutes(router, h, m)

	return router
}
