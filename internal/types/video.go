package types

import (
	"time"

	"github.com/google/uuid"
)

// Video is a surrogate identity resolved from the platform video id.
type Video struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Plataforma string    `gorm:"column:plataforma;not null" json:"plataforma"`
	VideoID    string    `gorm:"column:video_id;not null;uniqueIndex" json:"video_id"`
	URL        string    `gorm:"column:url" json:"url"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

func (Video) TableName() string { return "videos" }
