package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/deppfellow/workshop/internal/middleware"
	"github.com/deppfellow/workshop/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
)

// HealthHandler serves GET /status for load balancers and uptime monitors.
type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

type checkResult struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

type healthResponse struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Environment string                 `json:"environment"`
	Driver      string                 `json:"driver"`
	Checks      map[string]checkResult `json:"checks"`
}

// CheckHealth pings the user store and redis. A failing store answers 503;
// redis is reported but optional.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()
	obs := h.server.Config.Observability

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	response := healthResponse{
		Status:      statusHealthy,
		Timestamp:   time.Now().UTC(),
		Environment: h.server.Config.Primary.Env,
		Driver:      h.server.Config.Database.Driver,
		Checks:      make(map[string]checkResult),
	}

	if obs.ShouldCheck("database") {
		if ping := h.storePing(); ping != nil {
			result := h.runCheck(c.Request().Context(), &logger, "database", ping)
			response.Checks["database"] = result
			if result.Status != statusHealthy {
				response.Status = statusUnhealthy
			}
		}
	}

	if obs.ShouldCheck("redis") && h.server.Redis != nil {
		response.Checks["redis"] = h.runCheck(c.Request().Context(), &logger, "redis", func(ctx context.Context) error {
			return h.server.Redis.Ping(ctx).Err()
		})
	}

	if response.Status != statusHealthy {
		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")

		h.recordFailure(map[string]any{
			"check_type":        "overall",
			"error_type":        "overall_unhealthy",
			"total_duration_ms": time.Since(start).Milliseconds(),
		})

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Debug().
		Dur("total_duration", time.Since(start)).
		Msg("health check passed")

	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to write JSON response: %w", err)
	}

	return nil
}

// storePing returns the ping of the open store, or nil for the memory store.
func (h *HealthHandler) storePing() func(ctx context.Context) error {
	switch {
	case h.server.DB != nil:
		return h.server.DB.Ping
	case h.server.Mongo != nil:
		return h.server.Mongo.Ping
	default:
		return nil
	}
}

func (h *HealthHandler) runCheck(ctx context.Context, logger *zerolog.Logger, name string, ping func(ctx context.Context) error) checkResult {
	ctx, cancel := context.WithTimeout(ctx, h.server.Config.Observability.HealthChecks.Timeout)
	defer cancel()

	checkStart := time.Now()
	err := ping(ctx)
	elapsed := time.Since(checkStart)

	if err != nil {
		logger.Error().
			Err(err).
			Str("check", name).
			Dur("response_time", elapsed).
			Msg("health check failed")

		h.recordFailure(map[string]any{
			"check_type":       name,
			"error_type":       name + "_unhealthy",
			"response_time_ms": elapsed.Milliseconds(),
			"error_message":    err.Error(),
		})

		return checkResult{Status: statusUnhealthy, ResponseTime: elapsed.String(), Error: err.Error()}
	}

	return checkResult{Status: statusHealthy, ResponseTime: elapsed.String()}
}

func (h *HealthHandler) recordFailure(attrs map[string]any) {
	if app := h.server.LoggerService.GetApplication(); app != nil {
		attrs["operation"] = "health_check"
		app.RecordCustomEvent("HealthCheckError", attrs)
	}
}
