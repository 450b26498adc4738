package middleware

import (
	"github.com/deppfellow/workshop/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrecho-v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// TracingMiddleware owns the New Relic echo integration. With a nil
// application every middleware it returns is a pass-through.
type TracingMiddleware struct {
	server *server.Server
	nrApp  *newrelic.Application
}

func NewTracingMiddleware(s *server.Server, nrApp *newrelic.Application) *TracingMiddleware {
	return &TracingMiddleware{
		server: s,
		nrApp:  nrApp,
	}
}

// NewRelicMiddleware starts a transaction per request.
func (tm *TracingMiddleware) NewRelicMiddleware() echo.MiddlewareFunc {
	if tm.nrApp == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}
	return nrecho.Middleware(tm.nrApp)
}

// EnhanceTracing adds request attributes to the transaction and notices
// returned errors. Must run after NewRelicMiddleware.
func (tm *TracingMiddleware) EnhanceTracing() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			txn := newrelic.FromContext(c.Request().Context())
			if txn == nil {
				return next(c)
			}

			for key, value := range transactionAttributes(c, tm.server.Config.Database.Driver) {
				txn.AddAttribute(key, value)
			}

			err := next(c)
			if err != nil {
				txn.NoticeError(nrpkgerrors.Wrap(err))
			}

			txn.AddAttribute("http.status_code", c.Response().Status)

			return err
		}
	}
}

// transactionAttributes collects the request attributes recorded on the New
// Relic transaction. users.id is the :id path parameter of the /users routes;
// user.id is the authenticated caller.
func transactionAttributes(c echo.Context, driver string) map[string]any {
	attrs := map[string]any{
		"http.real_ip":    c.RealIP(),
		"http.user_agent": c.Request().UserAgent(),
		"http.route":      c.Path(),
		"service.driver":  driver,
	}

	if requestID := GetRequestID(c); requestID != "" {
		attrs["request.id"] = requestID
	}

	if userID := GetUserID(c); userID != "" {
		attrs["user.id"] = userID
	}

	if targetID := c.Param("id"); targetID != "" {
		attrs["users.id"] = targetID
	}

	return attrs
}
