package http

import (
	"net/http"

	"taskhub/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupAI(base *echo.Group) {
	v1 := base.Group("/v1/ai")
	{
		v1.GET("/status", h.GetAIStatus)
		v1.POST("/natural-cron", h.NaturalCron)
		v1.POST("/analyze-error", h.AnalyzeError)
		v1.POST("/suggest-config", h.SuggestConfig)
		v1.POST("/generate-name", h.GenerateName)
		v1.POST("/chat", h.Chat)
	}
}

func (h *HttpAPIHandler) GetAIStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("AI status retrieved", h.service.Advisory.Status()))
}

func (h *HttpAPIHandler) NaturalCron(c echo.Context) error {
	var req dto.NaturalCronRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	resp, err := h.service.Advisory.NaturalToCron(c.Request().Context(), &req)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Expression generated", resp))
}

func (h *HttpAPIHandler) AnalyzeError(c echo.Context) error {
	var req dto.AnalyzeErrorRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	resp, err := h.service.Advisory.AnalyzeError(c.Request().Context(), &req)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Error analyzed", resp))
}

func (h *HttpAPIHandler) SuggestConfig(c echo.Context) error {
	var req dto.SuggestConfigRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	resp, err := h.service.Advisory.SuggestConfig(c.Request().Context(), &req)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Config suggested", resp))
}

func (h *HttpAPIHandler) Chat(c echo.Context) error {
	var req dto.ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	resp, err := h.service.Advisory.Chat(c.Request().Context(), &req)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Chat reply generated", resp))
}

func (h *HttpAPIHandler) GenerateName(c echo.Context) error {
	var req dto.GenerateNameRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	resp, err := h.service.Advisory.GenerateName(c.Request().Context(), &req)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Name generated", resp))
}
