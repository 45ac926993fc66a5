package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"todo-list/backend/internal/datetime"
	"todo-list/backend/internal/models"
	"todo-list/backend/internal/services"
)

// TaskManager is the operation surface the handlers expose over HTTP.
type TaskManager interface {
	GetView(filter services.FilterKey, keyword string, order services.SortOrder) []models.Task
	GetActiveCount() int
	GetDefaultDate() string
	GetDefaultTime() string
	Filters() []services.Option
	SortOrders() []services.Option
	Add(ctx context.Context, input models.TaskInput) (models.Task, error)
	Toggle(ctx context.Context, id string) (models.Task, error)
	Edit(ctx context.Context, id string, input models.TaskInput) (models.Task, error)
	Delete(ctx context.Context, id string) error
	ClearCompleted(ctx context.Context) int
}

// TaskResponse is a task as the UI renders it.
type TaskResponse struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	Completed   bool   `json:"completed"`
	CreatedAt   int64  `json:"createdAt"`
	DueDate     string `json:"dueDate"`
	DueTime     string `json:"dueTime"`
	DueAt       int64  `json:"dueAt"`
	DisplayDate string `json:"displayDate"`
	DisplayTime string `json:"displayTime"`
}

func NewTaskResponse(t models.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Text:        t.Text,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		DueDate:     t.DueDate,
		DueTime:     t.DueTime,
		DueAt:       t.DueAt,
		DisplayDate: datetime.FormatDate(t.DueDate),
		DisplayTime: datetime.FormatTime(t.DueTime),
	}
}

type TaskHandler struct {
	manager TaskManager
}

func NewTaskHandler(manager TaskManager) *TaskHandler {
	return &TaskHandler{manager: manager}
}

func (h *TaskHandler) GetTasks(c *gin.Context) {
	filter, err := services.ParseFilterKey(c.DefaultQuery("filter", string(services.FilterAll)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := services.ParseSortOrder(c.DefaultQuery("sort", string(services.SortAsc)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view := h.manager.GetView(filter, c.Query("keyword"), order)
	tasks := make([]TaskResponse, 0, len(view))
	for _, t := range view {
		tasks = append(tasks, NewTaskResponse(t))
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks":       tasks,
		"activeCount": h.manager.GetActiveCount(),
	})
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	var input models.TaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.manager.Add(c.Request.Context(), input)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewTaskResponse(task))
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	var input models.TaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.manager.Edit(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewTaskResponse(task))
}

func (h *TaskHandler) ToggleTask(c *gin.Context) {
	task, err := h.manager.Toggle(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewTaskResponse(task))
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	if err := h.manager.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleTaskError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TaskHandler) ClearCompleted(c *gin.Context) {
	removed := h.manager.ClearCompleted(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func (h *TaskHandler) GetSummary(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"activeCount": h.manager.GetActiveCount()})
}

func (h *TaskHandler) GetDefaults(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"date": h.manager.GetDefaultDate(),
		"time": h.manager.GetDefaultTime(),
	})
}

func (h *TaskHandler) GetOptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"filters":    h.manager.Filters(),
		"sortOrders": h.manager.SortOrders(),
	})
}

func handleTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process task request"})
	}
}
