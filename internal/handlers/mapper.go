package handlers

import (
	"github.com/boardwalk-dev/boardwalk/internal/models"
	"github.com/boardwalk-dev/boardwalk/internal/types"
)

func toUserResponse(u *models.User) types.UserResponse {
	createdAt := u.CreatedAt
	return types.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: &createdAt,
	}
}

func toTaskResponse(t *models.Task) types.TaskResponse {
	resp := types.TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		Position:    t.Position,
		ListID:      t.ListID,
		AssignedID:  t.AssignedID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.AssignedTo != nil {
		resp.AssignedTo = &types.UserResponse{
			ID:    t.AssignedTo.ID,
			Email: t.AssignedTo.Email,
			Name:  t.AssignedTo.Name,
		}
	}
	return resp
}

func toTaskResponses(tasks []models.Task) []types.TaskResponse {
	out := make([]types.TaskResponse, len(tasks))
	for i := range tasks {
		out[i] = toTaskResponse(&tasks[i])
	}
	return out
}

func toListResponse(l *models.List) types.ListResponse {
	return types.ListResponse{
		ID:       l.ID,
		Title:    l.Title,
		Position: l.Position,
		BoardID:  l.BoardID,
		Tasks:    toTaskResponses(l.Tasks),
	}
}

func toListResponses(lists []models.List) []types.ListResponse {
	out := make([]types.ListResponse, len(lists))
	for i := range lists {
		out[i] = toListResponse(&lists[i])
	}
	return out
}

func toBoardResponse(b *models.Board) types.BoardResponse {
	return types.BoardResponse{
		ID:          b.ID,
		Title:       b.Title,
		Description: b.Description,
		OwnerID:     b.OwnerID,
		Lists:       toListResponses(b.Lists),
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func toBoardResponses(boards []models.Board) []types.BoardResponse {
	out := make([]types.BoardResponse, len(boards))
	for i := range boards {
		out[i] = toBoardResponse(&boards[i])
	}
	return out
}
