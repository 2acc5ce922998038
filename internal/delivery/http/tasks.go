package http

import (
	"errors"
	"net/http"
	"strconv"

	"taskhub/internal/dto"
	"taskhub/internal/model"
	"taskhub/internal/service"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupTasks(base *echo.Group) {
	v1 := base.Group("/v1/tasks")
	{
		v1.POST("", h.CreateTask)
		v1.GET("", h.ListTasks)
		v1.GET("/scheduled", h.ListScheduledJobs)
		v1.POST("/validate-cron", h.ValidateCron)
		v1.GET("/:id", h.GetTask)
		v1.PUT("/:id", h.UpdateTask)
		v1.DELETE("/:id", h.DeleteTask)
		v1.POST("/:id/toggle", h.ToggleTask)
		v1.POST("/:id/run", h.RunTask)
		v1.GET("/:id/logs", h.GetTaskLogs)
	}

	logs := base.Group("/v1/logs")
	{
		logs.GET("/recent", h.GetRecentLogs)
	}
}

func (h *HttpAPIHandler) CreateTask(c echo.Context) error {
	var req dto.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	task, err := h.service.Task.Create(c.Request().Context(), &req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}
	return c.JSON(http.StatusCreated, dto.NewBaseResponse(http.StatusCreated, "Task created", task))
}

func (h *HttpAPIHandler) ListTasks(c echo.Context) error {
	param := &model.GetTasksParam{}
	if c.QueryParam("active") == "true" {
		param.ActiveOnly = true
	}
	if limit, err := strconv.Atoi(c.QueryParam("limit")); err == nil && limit > 0 {
		param.Limit = &limit
	}
	if offset, err := strconv.Atoi(c.QueryParam("offset")); err == nil && offset > 0 {
		param.Offset = &offset
	}

	tasks, err := h.service.Task.List(c.Request().Context(), param)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Tasks retrieved", tasks))
}

func (h *HttpAPIHandler) GetTask(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid task id"))
	}

	task, err := h.service.Task.GetByID(c.Request().Context(), id)
	if err != nil {
		return taskError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Task retrieved", task))
}

func (h *HttpAPIHandler) UpdateTask(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid task id"))
	}

	var req dto.UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	task, err := h.service.Task.Update(c.Request().Context(), id, &req)
	if err != nil {
		return taskError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Task updated", task))
}

func (h *HttpAPIHandler) DeleteTask(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid task id"))
	}

	if err := h.service.Task.Delete(c.Request().Context(), id); err != nil {
		return taskError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Task deleted", nil))
}

func (h *HttpAPIHandler) ToggleTask(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid task id"))
	}

	task, err := h.service.Task.Toggle(c.Request().Context(), id)
	if err != nil {
		return taskError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Task toggled", task))
}

func (h *HttpAPIHandler) RunTask(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid task id"))
	}

	taskLog, err := h.service.Scheduler.RunTaskNow(c.Request().Context(), id, model.TriggerManual)
	if err != nil {
		return taskError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Task executed", taskLog))
}

func (h *HttpAPIHandler) GetTaskLogs(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid task id"))
	}

	param := &model.GetTaskLogsParam{TaskID: &id}
	if limit, err := strconv.Atoi(c.QueryParam("limit")); err == nil && limit > 0 {
		param.Limit = &limit
	}
	if offset, err := strconv.Atoi(c.QueryParam("offset")); err == nil && offset > 0 {
		param.Offset = &offset
	}
	if status := c.QueryParam("status"); status != "" {
		s := model.TaskLogStatus(status)
		param.Status = &s
	}

	logs, err := h.service.Task.Logs(c.Request().Context(), param)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Task logs retrieved", logs))
}

// GetRecentLogs returns the latest execution records across all tasks.
func (h *HttpAPIHandler) GetRecentLogs(c echo.Context) error {
	limit := 10
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 {
		limit = v
	}

	param := &model.GetTaskLogsParam{Limit: &limit}
	logs, err := h.service.Task.Logs(c.Request().Context(), param)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Recent logs retrieved", logs))
}

func (h *HttpAPIHandler) ValidateCron(c echo.Context) error {
	var req dto.CronValidateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	resp := h.service.Task.ValidateCron(c.Request().Context(), req.Expression)
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Expression validated", resp))
}

func (h *HttpAPIHandler) ListScheduledJobs(c echo.Context) error {
	jobs := h.service.Scheduler.ScheduledJobs()
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Scheduled jobs retrieved", jobs))
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func taskError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrTaskNotFound), errors.Is(err, service.ErrMessageNotFound):
		return c.JSON(http.StatusNotFound, dto.NewNotFoundResponse(err.Error()))
	case errors.Is(err, service.ErrTaskAlreadyRunning):
		return c.JSON(http.StatusConflict, dto.NewConflictResponse(err.Error()))
	case errors.Is(err, service.ErrInvalidCronExpression):
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	default:
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}
}
