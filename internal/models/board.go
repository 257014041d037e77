package models

type Board struct {
	BaseModel

	Title       string `gorm:"not null"`
	Description *string
	OwnerID     string `gorm:"type:varchar(36);not null;index"`

	// Relationships
	Owner User   `gorm:"foreignKey:OwnerID"`
	Lists []List `gorm:"foreignKey:BoardID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
