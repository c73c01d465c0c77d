package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/neo-astro/tiktok-sentiment-backend/internal/logger"
	"github.com/neo-astro/tiktok-sentiment-backend/internal/types"
)

type AnalysisEventRepo interface {
	Create(ctx context.Context, tx *gorm.DB, event *types.AnalysisEvent) (*types.AnalysisEvent, error)
	ListByUsuario(ctx context.Context, tx *gorm.DB, usuarioID uuid.UUID) ([]*types.AnalysisEvent, error)
	GetByID(ctx context.Context, tx *gorm.DB, eventID uuid.UUID) (*types.AnalysisEvent, error)
}

type analysisEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnalysisEventRepo(db *gorm.DB, baseLog *logger.Logger) AnalysisEventRepo {
	repoLog := baseLog.With("repo", "AnalysisEventRepo")
	return &analysisEventRepo{db: db, log: repoLog}
}

func (ar *analysisEventRepo) Create(ctx context.Context, tx *gorm.DB, event *types.AnalysisEvent) (*types.AnalysisEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.FechaAnalisis.IsZero() {
		event.FechaAnalisis = time.Now().UTC()
	}

	if err := transaction.WithContext(ctx).Create(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

func (ar *analysisEventRepo) ListByUsuario(ctx context.Context, tx *gorm.DB, usuarioID uuid.UUID) ([]*types.AnalysisEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var results []*types.AnalysisEvent
	if err := transaction.WithContext(ctx).
		Where("usuario_id = ?", usuarioID).
		Order("fecha_analisis DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ar *analysisEventRepo) GetByID(ctx context.Context, tx *gorm.DB, eventID uuid.UUID) (*types.AnalysisEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var result types.AnalysisEvent
	if err := transaction.WithContext(ctx).
		Where("id = ?", eventID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}
