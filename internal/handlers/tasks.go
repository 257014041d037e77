package handlers

import (
	"context"
	"net/http"

	"github.com/boardwalk-dev/boardwalk/internal/models"
	"github.com/boardwalk-dev/boardwalk/internal/store"
	"github.com/boardwalk-dev/boardwalk/internal/utils"
	"github.com/boardwalk-dev/boardwalk/pkg/apierrors"
	"github.com/gin-gonic/gin"
)

type TaskService interface {
	Create(ctx context.Context, ownerID, listID string, in store.TaskInput) (*models.Task, error)
	Get(ctx context.Context, id, ownerID string) (*models.Task, error)
	ListByList(ctx context.Context, listID, ownerID string) ([]models.Task, error)
	Update(ctx context.Context, id, ownerID string, in store.TaskUpdate) (*models.Task, error)
	Move(ctx context.Context, id, ownerID string, index int, listID, sourceID string) (*models.Task, []string, error)
	Delete(ctx context.Context, id, ownerID string) (string, error)
}

type TaskHandler struct {
	tasks  TaskService
	events Publisher
}

func NewTaskHandler(tasks TaskService, events Publisher) *TaskHandler {
	return &TaskHandler{tasks: tasks, events: events}
}

type CreateTaskRequest struct {
	Title       string  `json:"title" binding:"required,max=255"`
	Description *string `json:"description"`
	Priority    string  `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH"`
	ListID      string  `json:"listId" binding:"required,uuid"`
	AssignedID  *string `json:"assignedId" binding:"omitempty,uuid"`
}

// UpdateTaskRequest fields are optional; an empty assignedId unassigns.
type UpdateTaskRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	Priority    *string `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH"`
	AssignedID  *string `json:"assignedId" binding:"omitempty,uuid"`
}

type MoveTaskRequest struct {
	Position     *int   `json:"position" binding:"required,min=0"`
	ListID       string `json:"listId" binding:"required,uuid"`
	SourceListID string `json:"sourceListId" binding:"omitempty,uuid"`
}

func optionalUUID(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	return utils.ParseUUID(value)
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if !bind(c, &req) {
		return
	}
	listID, err := utils.ParseUUID(req.ListID)
	if err != nil {
		respondError(c, err)
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), userID, listID, store.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		AssignedID:  req.AssignedID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.events.Publish(c.Request.Context(), task.List.BoardID, "task.created")
	c.JSON(http.StatusCreated, toTaskResponse(task))
}

func (h *TaskHandler) GetTasks(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	raw := c.Query("listId")
	if raw == "" {
		respond(c, apierrors.CodeValidation, map[string]interface{}{"fields": map[string]interface{}{"listId": "required"}})
		return
	}
	listID, err := utils.ParseUUID(raw)
	if err != nil {
		respondError(c, err)
		return
	}

	tasks, err := h.tasks.ListByList(c.Request.Context(), listID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTaskResponses(tasks))
}

func (h *TaskHandler) GetTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), taskID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTaskResponse(task))
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if !bind(c, &req) {
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), taskID, userID, store.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		AssignedID:  req.AssignedID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.events.Publish(c.Request.Context(), task.List.BoardID, "task.updated")
	c.JSON(http.StatusOK, toTaskResponse(task))
}

// MoveTask places the task at position inside listId, which may be the
// task's current list. Positions beyond the end of the list are clamped to
// the tail.
func (h *TaskHandler) MoveTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req MoveTaskRequest
	if !bind(c, &req) {
		return
	}

	listID, err := utils.ParseUUID(req.ListID)
	if err != nil {
		respondError(c, err)
		return
	}
	sourceID, err := optionalUUID(req.SourceListID)
	if err != nil {
		respondError(c, err)
		return
	}

	task, boards, err := h.tasks.Move(c.Request.Context(), taskID, userID, *req.Position, listID, sourceID)
	if err != nil {
		respondError(c, err)
		return
	}

	for _, id := range boards {
		h.events.Publish(c.Request.Context(), id, "task.moved")
	}
	c.JSON(http.StatusOK, toTaskResponse(task))
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	boardID, err := h.tasks.Delete(c.Request.Context(), taskID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.events.Publish(c.Request.Context(), boardID, "task.deleted")
	c.Status(http.StatusNoContent)
}
