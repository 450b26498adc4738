package router

import (
	"net/http"

	"github.com/deppfellow/workshop/internal/handler"
	"github.com/deppfellow/workshop/internal/middleware"
	"github.com/labstack/echo/v4"
)

// registerUserRoutes mounts the user resource under /users. Mutating routes
// require a Clerk session when auth is enabled.
func registerUserRoutes(r *echo.Echo, h *handler.Handlers, m *middleware.Middlewares) {
	users := r.Group("/users", m.RateLimit.Limit())
	auth := m.Auth.Optional()
	uh := h.User

	users.GET("", handler.Handle(uh.Handler, uh.ListUsers, http.StatusOK))
	users.GET("/:id", handler.Handle(uh.Handler, uh.GetUser, http.StatusOK))
	users.GET("/:id/posts", handler.Handle(uh.Handler, uh.ListUserPosts, http.StatusOK))

	users.POST("", handler.HandleCreated(uh.Handler, uh.CreateUser), auth)
	users.PUT("/:id", handler.HandleNoContent(uh.Handler, uh.UpdateUser, http.StatusNoContent), auth)
	users.DELETE("/:id", handler.HandleNoContent(uh.Handler, uh.DeleteUser, http.StatusNoContent), auth)
}
