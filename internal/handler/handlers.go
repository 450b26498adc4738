// Package handler is the HTTP layer: it binds and validates requests, calls
// the services and writes responses through a shared typed pipeline.
package handler

import (
	"github.com/deppfellow/workshop/internal/server"
	"github.com/deppfellow/workshop/internal/service"
)

type Handlers struct {
	Health  *HealthHandler
	OpenAPI *OpenAPIHandler
	User    *UserHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(s),
		OpenAPI: NewOpenAPIHandler(s),
		User:    NewUserHandler(s, services.User),
	}
}
