package models

type User struct {
	BaseModel

	Name         string `gorm:"not null"`
	Email        string `gorm:"type:varchar(320);uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`

	// Relationships
	Boards        []Board `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	AssignedTasks []Task  `gorm:"foreignKey:AssignedID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}
