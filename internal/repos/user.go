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

type UserRepo interface {
	GetOrCreate(ctx context.Context, tx *gorm.DB, userIdentifier string) (*types.User, error)
	GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.User, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	repoLog := baseLog.With("repo", "UserRepo")
	return &userRepo{db: db, log: repoLog}
}

// GetOrCreate resolves the surrogate key for an email, inserting the row on
// first sight. The unique index on user_identifier plus ON CONFLICT DO
// NOTHING keeps concurrent first-time resolutions from duplicating rows.
func (ur *userRepo) GetOrCreate(ctx context.Context, tx *gorm.DB, userIdentifier string) (*types.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	var existing types.User
	err := transaction.WithContext(ctx).
		Where("user_identifier = ?", userIdentifier).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := types.User{ID: uuid.New(), UserIdentifier: userIdentifier}
	result := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_identifier"}}, DoNothing: true}).
		Create(&created)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected > 0 {
		ur.log.Debug("Usuario creado", "user_identifier", userIdentifier, "id", created.ID)
		return &created, nil
	}

	// Lost the insert race, the row exists now.
	if err := transaction.WithContext(ctx).
		Where("user_identifier = ?", userIdentifier).
		First(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

func (ur *userRepo) GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	var result types.User
	if err := transaction.WithContext(ctx).
		Where("id = ?", userID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}
