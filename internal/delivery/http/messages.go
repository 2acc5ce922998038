package http

import (
	"net/http"
	"strconv"

	"taskhub/internal/dto"
	"taskhub/internal/model"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupMessages(base *echo.Group) {
	v1 := base.Group("/v1/messages")
	{
		v1.POST("", h.CreateMessage)
		v1.GET("", h.ListMessages)
		v1.GET("/:id", h.GetMessage)
		v1.PUT("/:id", h.UpdateMessage)
		v1.DELETE("/:id", h.DeleteMessage)
		v1.POST("/:id/create-task", h.CreateTaskFromMessage)
	}
}

func (h *HttpAPIHandler) CreateMessage(c echo.Context) error {
	var req dto.CreateMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	message, err := h.service.Message.Create(c.Request().Context(), &req)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}
	return c.JSON(http.StatusCreated, dto.NewBaseResponse(http.StatusCreated, "Message created", message))
}

func (h *HttpAPIHandler) ListMessages(c echo.Context) error {
	param := &model.GetMessagesParam{}
	if source := c.QueryParam("source"); source != "" {
		s := model.MessageSource(source)
		param.Source = &s
	}
	if processed := c.QueryParam("processed"); processed != "" {
		v := processed == "true"
		param.IsProcessed = &v
	}
	if limit, err := strconv.Atoi(c.QueryParam("limit")); err == nil && limit > 0 {
		param.Limit = &limit
	}
	if offset, err := strconv.Atoi(c.QueryParam("offset")); err == nil && offset > 0 {
		param.Offset = &offset
	}

	messages, err := h.service.Message.List(c.Request().Context(), param)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Messages retrieved", messages))
}

func (h *HttpAPIHandler) GetMessage(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid message id"))
	}

	message, err := h.service.Message.GetByID(c.Request().Context(), id)
	if err != nil {
		return taskError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Message retrieved", message))
}

func (h *HttpAPIHandler) UpdateMessage(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid message id"))
	}

	var req dto.UpdateMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}

	message, err := h.service.Message.Update(c.Request().Context(), id, &req)
	if err != nil {
		return taskError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Message updated", message))
}

func (h *HttpAPIHandler) DeleteMessage(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid message id"))
	}

	if err := h.service.Message.Delete(c.Request().Context(), id); err != nil {
		return taskError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Message deleted", nil))
}

func (h *HttpAPIHandler) CreateTaskFromMessage(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid message id"))
	}

	var req dto.CreateTaskFromMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	task, err := h.service.Task.CreateFromMessage(c.Request().Context(), id, &req)
	if err != nil {
		return taskError(c, err)
	}
	return c.JSON(http.StatusCreated, dto.NewBaseResponse(http.StatusCreated, "Task created from message", task))
}
