package models

type List struct {
	BaseModel

	Title    string `gorm:"not null"`
	Position int    `gorm:"not null;default:0;index:idx_lists_board_position,priority:2"`
	BoardID  string `gorm:"type:varchar(36);not null;index:idx_lists_board_position,priority:1"`

	// Relationships
	Board Board  `gorm:"foreignKey:BoardID"`
	Tasks []Task `gorm:"foreignKey:ListID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
