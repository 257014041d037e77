package types

import "time"

type UserResponse struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type BoardResponse struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description *string        `json:"description,omitempty"`
	OwnerID     string         `json:"ownerId"`
	Lists       []ListResponse `json:"lists"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

type ListResponse struct {
	ID       string         `json:"id"`
	Title    string         `json:"title"`
	Position int            `json:"position"`
	BoardID  string         `json:"boardId"`
	Tasks    []TaskResponse `json:"tasks"`
}

type TaskResponse struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description *string       `json:"description,omitempty"`
	Priority    string        `json:"priority"`
	Position    int           `json:"position"`
	ListID      string        `json:"listId"`
	AssignedID  *string       `json:"assignedId,omitempty"`
	AssignedTo  *UserResponse `json:"assignedTo,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// ListLayout is the order of one list and its tasks as pushed to board
// subscribers.
type ListLayout struct {
	ID       string   `json:"id"`
	Position int      `json:"position"`
	TaskIDs  []string `json:"taskIds"`
}

type BoardEvent struct {
	Type    string       `json:"type"`
	BoardID string       `json:"boardId"`
	Reason  string       `json:"reason"`
	Lists   []ListLayout `json:"lists"`
}
