package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AnalysisEvent is one completed pipeline run. Rows are created once and
// never updated or deleted through the API.
type AnalysisEvent struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UsuarioID     uuid.UUID      `gorm:"type:uuid;column:usuario_id;not null;index" json:"usuario_id"`
	Usuario       *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UsuarioID;references:ID" json:"usuario,omitempty"`
	VideoID       uuid.UUID      `gorm:"type:uuid;column:video_id;not null;index" json:"video_id"`
	Video         *Video         `gorm:"constraint:OnDelete:CASCADE;foreignKey:VideoID;references:ID" json:"video,omitempty"`
	Resultado     datatypes.JSON `gorm:"column:resultado;type:jsonb" json:"resultado"`
	FechaAnalisis time.Time      `gorm:"column:fecha_analisis;not null" json:"fecha_analisis"`
}

func (AnalysisEvent) TableName() string { return "analisis_eventos" }
