package http

import (
	"context"
	"net/http"

	"taskhub/internal/dto"
	"taskhub/internal/service"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type HttpAPIHandler struct {
	echo      *echo.Echo
	validator *goValidator.Validate
	service   *service.Service
}

func NewHttpAPIHandler(ctx context.Context, echo *echo.Echo, validator *goValidator.Validate, service *service.Service) *HttpAPIHandler {
	return &HttpAPIHandler{
		echo:      echo,
		validator: validator,
		service:   service,
	}
}

func (h *HttpAPIHandler) SetupRoutes() {
	h.echo.GET("/health", h.Health)

	base := h.echo.Group("/api")
	h.SetupTasks(base)
	h.SetupMessages(base)
	h.SetupDashboard(base)
	h.SetupAI(base)
}

func (h *HttpAPIHandler) Health(c echo.Context) error {
	aiStatus := h.service.Advisory.Status()
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("ok", map[string]interface{}{
		"scheduler_running": h.service.Scheduler.IsRunning(),
		"scheduled_jobs":    len(h.service.Scheduler.ScheduledJobs()),
		"ai_available":      aiStatus.Available,
	}))
}
