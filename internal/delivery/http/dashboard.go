package http

import (
	"net/http"

	"taskhub/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupDashboard(base *echo.Group) {
	v1 := base.Group("/v1/dashboard")
	{
		v1.GET("/stats", h.GetDashboardStats)
	}
}

func (h *HttpAPIHandler) GetDashboardStats(c echo.Context) error {
	stats, err := h.service.Dashboard.Stats(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Dashboard stats retrieved", stats))
}
