package types

import (
	"time"

	"github.com/google/uuid"
)

// User is a surrogate identity resolved from the dashboard user's email.
type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserIdentifier string    `gorm:"column:user_identifier;not null;uniqueIndex" json:"user_identifier"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
}

func (User) TableName() string { return "usuarios" }
