package models

import "github.com/boardwalk-dev/boardwalk/internal/types"

type Task struct {
	BaseModel

	Title       string `gorm:"not null"`
	Description *string
	Priority    string  `gorm:"type:varchar(8);not null;default:MEDIUM"`
	Position    int     `gorm:"not null;default:0;index:idx_tasks_list_position,priority:2"`
	ListID      string  `gorm:"type:varchar(36);not null;index:idx_tasks_list_position,priority:1"`
	AssignedID  *string `gorm:"type:varchar(36);index"`

	// Relationships
	List       List  `gorm:"foreignKey:ListID"`
	AssignedTo *User `gorm:"foreignKey:AssignedID"`
}

func ValidPriority(p string) bool {
	switch p {
	case types.PriorityLow, types.PriorityMedium, types.PriorityHigh:
		return true
	}
	return false
}
