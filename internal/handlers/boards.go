package handlers

import (
	"context"
	"net/http"

	"github.com/boardwalk-dev/boardwalk/internal/models"
	"github.com/boardwalk-dev/boardwalk/internal/store"
	"github.com/gin-gonic/gin"
)

type BoardService interface {
	Create(ctx context.Context, ownerID string, in store.BoardInput) (*models.Board, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Board, error)
	Get(ctx context.Context, id, ownerID string) (*models.Board, error)
	Update(ctx context.Context, id, ownerID string, in store.BoardUpdate) (*models.Board, error)
	Delete(ctx context.Context, id, ownerID string) error
}

// Publisher notifies board subscribers after a committed change.
type Publisher interface {
	Publish(ctx context.Context, boardID, reason string)
}

type BoardHandler struct {
	boards BoardService
	events Publisher
}

func NewBoardHandler(boards BoardService, events Publisher) *BoardHandler {
	return &BoardHandler{boards: boards, events: events}
}

type CreateBoardRequest struct {
	Title       string  `json:"title" binding:"required,max=255"`
	Description *string `json:"description"`
}

type UpdateBoardRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
}

func (h *BoardHandler) CreateBoard(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateBoardRequest
	if !bind(c, &req) {
		return
	}

	board, err := h.boards.Create(c.Request.Context(), userID, store.BoardInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toBoardResponse(board))
}

func (h *BoardHandler) ListBoards(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	boards, err := h.boards.ListByOwner(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toBoardResponses(boards))
}

func (h *BoardHandler) GetBoard(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	board, err := h.boards.Get(c.Request.Context(), boardID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toBoardResponse(board))
}

func (h *BoardHandler) UpdateBoard(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req UpdateBoardRequest
	if !bind(c, &req) {
		return
	}

	board, err := h.boards.Update(c.Request.Context(), boardID, userID, store.BoardUpdate{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.events.Publish(c.Request.Context(), board.ID, "board.updated")
	c.JSON(http.StatusOK, toBoardResponse(board))
}

func (h *BoardHandler) DeleteBoard(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.boards.Delete(c.Request.Context(), boardID, userID); err != nil {
		respondError(c, err)
		return
	}

	h.events.Publish(c.Request.Context(), boardID, "board.deleted")
	c.Status(http.StatusNoContent)
}
