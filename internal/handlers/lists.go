package handlers

import (
	"context"
	"net/http"

	"github.com/boardwalk-dev/boardwalk/internal/models"
	"github.com/boardwalk-dev/boardwalk/internal/utils"
	"github.com/gin-gonic/gin"
)

type ListService interface {
	Create(ctx context.Context, ownerID, boardID, title string) (*models.List, error)
	Get(ctx context.Context, id, ownerID string) (*models.List, error)
	ListByBoard(ctx context.Context, boardID, ownerID string) ([]models.List, error)
	Update(ctx context.Context, id, ownerID, title string) (*models.List, error)
	Move(ctx context.Context, id, ownerID string, index int, boardID string) (*models.List, []string, error)
	Delete(ctx context.Context, id, ownerID string) (string, error)
}

type ListHandler struct {
	lists  ListService
	events Publisher
}

func NewListHandler(lists ListService, events Publisher) *ListHandler {
	return &ListHandler{lists: lists, events: events}
}

type CreateListRequest struct {
	Title   string `json:"title" binding:"required,max=255"`
	BoardID string `json:"boardId" binding:"required,uuid"`
}

type UpdateListRequest struct {
	Title string `json:"title" binding:"required,max=255"`
}

type MoveListRequest struct {
	Position *int   `json:"position" binding:"required,min=0"`
	BoardID  string `json:"boardId" binding:"omitempty,uuid"`
}

func (h *ListHandler) CreateList(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateListRequest
	if !bind(c, &req) {
		return
	}
	boardID, err := utils.ParseUUID(req.BoardID)
	if err != nil {
		respondError(c, err)
		return
	}

	list, err := h.lists.Create(c.Request.Context(), userID, boardID, req.Title)
	if err != nil {
		respondError(c, err)
		return
	}

	h.events.Publish(c.Request.Context(), list.BoardID, "list.created")
	c.JSON(http.StatusCreated, toListResponse(list))
}

func (h *ListHandler) GetListsByBoard(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "boardId")
	if !ok {
		return
	}

	lists, err := h.lists.ListByBoard(c.Request.Context(), boardID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toListResponses(lists))
}

func (h *ListHandler) GetList(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	listID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	list, err := h.lists.Get(c.Request.Context(), listID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toListResponse(list))
}

func (h *ListHandler) UpdateList(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	listID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req UpdateListRequest
	if !bind(c, &req) {
		return
	}

	list, err := h.lists.Update(c.Request.Context(), listID, userID, req.Title)
	if err != nil {
		respondError(c, err)
		return
	}

	h.events.Publish(c.Request.Context(), list.BoardID, "list.updated")
	c.JSON(http.StatusOK, toListResponse(list))
}

func (h *ListHandler) MoveList(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	listID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req MoveListRequest
	if !bind(c, &req) {
		return
	}

	boardID := ""
	if req.BoardID != "" {
		var err error
		if boardID, err = utils.ParseUUID(req.BoardID); err != nil {
			respondError(c, err)
			return
		}
	}

	list, boards, err := h.lists.Move(c.Request.Context(), listID, userID, *req.Position, boardID)
	if err != nil {
		respondError(c, err)
		return
	}

	for _, id := range boards {
		h.events.Publish(c.Request.Context(), id, "list.moved")
	}
	c.JSON(http.StatusOK, toListResponse(list))
}

func (h *ListHandler) DeleteList(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	listID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	boardID, err := h.lists.Delete(c.Request.Context(), listID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.events.Publish(c.Request.Context(), boardID, "list.deleted")
	c.Status(http.StatusNoContent)
}
