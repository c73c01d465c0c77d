package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/neo-astro/tiktok-sentiment-backend/internal/logger"
	"github.com/neo-astro/tiktok-sentiment-backend/internal/types"
)

const plataformaTikTok = "tiktok"

type VideoRepo interface {
	GetOrCreate(ctx context.Context, tx *gorm.DB, videoID string, videoURL string) (*types.Video, error)
}

type videoRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVideoRepo(db *gorm.DB, baseLog *logger.Logger) VideoRepo {
	repoLog := baseLog.With("repo", "VideoRepo")
	return &videoRepo{db: db, log: repoLog}
}

// GetOrCreate resolves the surrogate key for a platform video id, inserting
// the row on first sight. Lookup is by video_id only; the URL is stored as
// seen at creation time and never updated.
func (vr *videoRepo) GetOrCreate(ctx context.Context, tx *gorm.DB, videoID string, videoURL string) (*types.Video, error) {
	transaction := tx
	if transaction == nil {
		transaction = vr.db
	}

	var existing types.Video
	err := transaction.WithContext(ctx).
		Where("video_id = ?", videoID).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := types.Video{
		ID:         uuid.New(),
		Plataforma: plataformaTikTok,
		VideoID:    videoID,
		URL:        videoURL,
	}
	result := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "video_id"}}, DoNothing: true}).
		Create(&created)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected > 0 {
		vr.log.Debug("Video creado", "video_id", videoID, "id", created.ID)
		return &created, nil
	}

	if err := transaction.WithContext(ctx).
		Where("video_id = ?", videoID).
		First(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}
