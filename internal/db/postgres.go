package db

import (
	"fmt"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/neo-astro/tiktok-sentiment-backend/internal/logger"
	"github.com/neo-astro/tiktok-sentiment-backend/internal/types"
	"github.com/neo-astro/tiktok-sentiment-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	dsn, err := buildDSN(log)
	if err != nil {
		serviceLog.Error("Store configuration missing", "error", err)
		return nil, err
	}

	serviceLog.Info("Connecting to Postgres...")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		serviceLog.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	return &PostgresService{db: db, log: serviceLog}, nil
}

// buildDSN resolves the connection string from DATABASE_URL, or from the
// discrete POSTGRES_* variables. Every discrete variable except the port is
// required so a misconfigured deployment fails at startup instead of dialing
// an unintended database.
func buildDSN(log *logger.Logger) (string, error) {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn, nil
	}
	required := map[string]string{}
	for _, key := range []string{"POSTGRES_HOST", "POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_NAME"} {
		value := os.Getenv(key)
		if value == "" {
			return "", fmt.Errorf("missing required environment variable: %s (set it or provide DATABASE_URL)", key)
		}
		required[key] = value
	}
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		required["POSTGRES_USER"], required["POSTGRES_PASSWORD"],
		required["POSTGRES_HOST"], postgresPort, required["POSTGRES_NAME"]), nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.User{},
		&types.Video{},
		&types.AnalysisEvent{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}
	s.log.Info("Configuring foreign key relationships for postgres tables...")
	if err := s.db.Exec(`
    ALTER TABLE "analisis_eventos"
    ADD CONSTRAINT "fk_analisis_eventos_usuario_id"
    FOREIGN KEY ("usuario_id")
    REFERENCES "usuarios"("id")
    ON DELETE CASCADE
  `).Error; err != nil {
		return fmt.Errorf("failed to add fk_analisis_eventos_usuario_id: %w", err)
	}
	if err := s.db.Exec(`
    ALTER TABLE "analisis_eventos"
    ADD CONSTRAINT "fk_analisis_eventos_video_id"
    FOREIGN KEY ("video_id")
    REFERENCES "videos"("id")
    ON DELETE CASCADE
  `).Error; err != nil {
		return fmt.Errorf("failed to add fk_analisis_eventos_video_id: %w", err)
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
