package models

import (
	"time"

	"github.com/google/uuid"
)

// Library is a purchase record. The primary key is a composite of (UserID, GameID),
// so a user can own a given game at most once.
type Library struct {
	UserID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	GameID      uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	PurchasedAt time.Time `gorm:"not null"`

	Game Game `gorm:"foreignKey:GameID"`
}

// TableName keeps the table name singular, matching the resource path.
func (Library) TableName() string {
	return "library"
}
