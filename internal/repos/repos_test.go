package repos

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/neo-astro/tiktok-sentiment-backend/internal/logger"
	"github.com/neo-astro/tiktok-sentiment-backend/internal/types"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&types.User{}, &types.Video{}, &types.AnalysisEvent{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func TestUserGetOrCreateIdempotent(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepo(db, testLogger(t))
	ctx := context.Background()

	first, err := repo.GetOrCreate(ctx, nil, "ana@example.com")
	if err != nil {
		t.Fatalf("first GetOrCreate: %v", err)
	}
	second, err := repo.GetOrCreate(ctx, nil, "ana@example.com")
	if err != nil {
		t.Fatalf("second GetOrCreate: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("same email must resolve to the same surrogate key: %s vs %s", first.ID, second.ID)
	}

	var count int64
	if err := db.Model(&types.User{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("one row per email, got %d", count)
	}

	other, err := repo.GetOrCreate(ctx, nil, "otro@example.com")
	if err != nil {
		t.Fatalf("GetOrCreate other: %v", err)
	}
	if other.ID == first.ID {
		t.Fatalf("distinct emails must not share a surrogate key")
	}
}

func TestVideoGetOrCreateIdempotent(t *testing.T) {
	db := testDB(t)
	repo := NewVideoRepo(db, testLogger(t))
	ctx := context.Background()

	first, err := repo.GetOrCreate(ctx, nil, "7234", "https://www.tiktok.com/@u/video/7234")
	if err != nil {
		t.Fatalf("first GetOrCreate: %v", err)
	}
	second, err := repo.GetOrCreate(ctx, nil, "7234", "https://other.url/ignored")
	if err != nil {
		t.Fatalf("second GetOrCreate: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("same video_id must resolve to the same surrogate key")
	}
	if second.URL != "https://www.tiktok.com/@u/video/7234" {
		t.Fatalf("URL is stored at creation time only, got %q", second.URL)
	}
	if second.Plataforma != "tiktok" {
		t.Fatalf("plataforma=%q, want tiktok", second.Plataforma)
	}
}

func TestAnalysisEventCreateAndGet(t *testing.T) {
	db := testDB(t)
	log := testLogger(t)
	ctx := context.Background()

	user, err := NewUserRepo(db, log).GetOrCreate(ctx, nil, "ana@example.com")
	if err != nil {
		t.Fatalf("GetOrCreate user: %v", err)
	}
	video, err := NewVideoRepo(db, log).GetOrCreate(ctx, nil, "1", "https://www.tiktok.com/@u/video/1")
	if err != nil {
		t.Fatalf("GetOrCreate video: %v", err)
	}

	repo := NewAnalysisEventRepo(db, log)
	blob := []byte(`{"nombreanalisis":"demo","resumen_final":{"positivos":1,"negativos":0,"neutros":0}}`)
	created, err := repo.Create(ctx, nil, &types.AnalysisEvent{
		UsuarioID: user.ID,
		VideoID:   video.ID,
		Resultado: blob,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.FechaAnalisis.IsZero() {
		t.Fatalf("fecha_analisis must be set on insert")
	}

	fetched, err := repo.GetByID(ctx, nil, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if string(fetched.Resultado) != string(blob) {
		t.Fatalf("resultado must round-trip unmodified:\n got %s\nwant %s", fetched.Resultado, blob)
	}

	listed, err := repo.ListByUsuario(ctx, nil, user.ID)
	if err != nil {
		t.Fatalf("ListByUsuario: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Fatalf("unexpected listing: %+v", listed)
	}
}

func TestAnalysisEventListNewestFirst(t *testing.T) {
	db := testDB(t)
	log := testLogger(t)
	ctx := context.Background()

	user, err := NewUserRepo(db, log).GetOrCreate(ctx, nil, "ana@example.com")
	if err != nil {
		t.Fatalf("GetOrCreate user: %v", err)
	}
	video, err := NewVideoRepo(db, log).GetOrCreate(ctx, nil, "1", "https://www.tiktok.com/@u/video/1")
	if err != nil {
		t.Fatalf("GetOrCreate video: %v", err)
	}

	repo := NewAnalysisEventRepo(db, log)
	older, err := repo.Create(ctx, nil, &types.AnalysisEvent{
		UsuarioID:     user.ID,
		VideoID:       video.ID,
		Resultado:     []byte(`{"nombreanalisis":"primero"}`),
		FechaAnalisis: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Create older: %v", err)
	}
	newer, err := repo.Create(ctx, nil, &types.AnalysisEvent{
		UsuarioID:     user.ID,
		VideoID:       video.ID,
		Resultado:     []byte(`{"nombreanalisis":"segundo"}`),
		FechaAnalisis: time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Create newer: %v", err)
	}

	listed, err := repo.ListByUsuario(ctx, nil, user.ID)
	if err != nil {
		t.Fatalf("ListByUsuario: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("len(listed) = %d, want 2", len(listed))
	}
	if listed[0].ID != newer.ID || listed[1].ID != older.ID {
		t.Fatalf("listing is not newest-first: got [%s, %s], want [%s, %s]",
			listed[0].ID, listed[1].ID, newer.ID, older.ID)
	}
}
