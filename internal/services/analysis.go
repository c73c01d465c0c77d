package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/neo-astro/tiktok-sentiment-backend/internal/logger"
	"github.com/neo-astro/tiktok-sentiment-backend/internal/repos"
	"github.com/neo-astro/tiktok-sentiment-backend/internal/types"
)

// SaveAnalisisInput carries one completed classification run into the store.
// Payload is the classifier response pass-through; Resultado, when present,
// is the preferred summary source.
type SaveAnalisisInput struct {
	UserEmail      string
	NombreAnalisis string
	VideoID        string
	VideoURL       string
	Payload        json.RawMessage
	Resultado      *types.ResumenFinal
}

type AnalysisService interface {
	Save(ctx context.Context, input SaveAnalisisInput) (*types.AnalysisEvent, error)
	ListByEmail(ctx context.Context, email string) ([]types.AnalisisResumen, error)
	GetByID(ctx context.Context, eventID uuid.UUID) (*types.AnalysisEvent, error)
}

type analysisService struct {
	db        *gorm.DB
	log       *logger.Logger
	userRepo  repos.UserRepo
	videoRepo repos.VideoRepo
	eventRepo repos.AnalysisEventRepo
}

func NewAnalysisService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, videoRepo repos.VideoRepo, eventRepo repos.AnalysisEventRepo) AnalysisService {
	serviceLog := log.With("service", "AnalysisService")
	return &analysisService{
		db:        db,
		log:       serviceLog,
		userRepo:  userRepo,
		videoRepo: videoRepo,
		eventRepo: eventRepo,
	}
}

// Save resolves both surrogate identities and inserts the immutable analysis
// row in a single transaction, so a failed insert leaves no orphaned
// first-time user or video rows behind.
func (as *analysisService) Save(ctx context.Context, input SaveAnalisisInput) (*types.AnalysisEvent, error) {
	if input.UserEmail == "" {
		return nil, fmt.Errorf("userId es obligatorio")
	}
	if input.VideoID == "" {
		return nil, fmt.Errorf("videoId es obligatorio")
	}

	resumen := input.Resultado
	if resumen == nil {
		derived, err := deriveResumen(input.Payload)
		if err != nil {
			return nil, err
		}
		resumen = &derived
	}

	blob, err := buildResultadoBlob(input, *resumen)
	if err != nil {
		return nil, err
	}

	var event *types.AnalysisEvent
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := as.userRepo.GetOrCreate(ctx, tx, input.UserEmail)
		if err != nil {
			return fmt.Errorf("resolver usuario: %w", err)
		}
		video, err := as.videoRepo.GetOrCreate(ctx, tx, input.VideoID, input.VideoURL)
		if err != nil {
			return fmt.Errorf("resolver video: %w", err)
		}

		event, err = as.eventRepo.Create(ctx, tx, &types.AnalysisEvent{
			UsuarioID: user.ID,
			VideoID:   video.ID,
			Resultado: blob,
		})
		if err != nil {
			return fmt.Errorf("guardar analisis: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	as.log.Info("Analisis guardado", "id", event.ID, "usuario_id", event.UsuarioID, "video_id", event.VideoID)
	return event, nil
}

// ListByEmail resolves the email the same way the write path does, so listing
// for a never-seen email creates the user row. The original system behaves
// this way and the dashboard relies on it returning an empty list.
func (as *analysisService) ListByEmail(ctx context.Context, email string) ([]types.AnalisisResumen, error) {
	if email == "" {
		return nil, fmt.Errorf("userId es obligatorio")
	}

	user, err := as.userRepo.GetOrCreate(ctx, nil, email)
	if err != nil {
		return nil, fmt.Errorf("resolver usuario: %w", err)
	}

	events, err := as.eventRepo.ListByUsuario(ctx, nil, user.ID)
	if err != nil {
		return nil, err
	}

	resumenes := make([]types.AnalisisResumen, 0, len(events))
	for _, event := range events {
		var resultado types.Resultado
		if err := json.Unmarshal(event.Resultado, &resultado); err != nil {
			as.log.Warn("Resultado blob could not be decoded, skipping projection fields", "id", event.ID, "error", err)
		}

		var counts types.ResumenFinal
		if resultado.ResumenFinal != nil {
			counts = *resultado.ResumenFinal
		}

		resumenes = append(resumenes, types.AnalisisResumen{
			ID:                      event.ID,
			NombreAnalisis:          resultado.NombreAnalisis,
			Fecha:                   event.FechaAnalisis,
			TotalComentarios:        resultado.TotalComentarios,
			SentimientoPredominante: PredominantSentiment(counts),
			DominioPrincipal:        PrincipalDomain(resultado.ResultadosDetallados),
		})
	}
	return resumenes, nil
}

// GetByID returns the stored row as-is. There is deliberately no identity
// resolution here and no ownership check; see DESIGN.md.
func (as *analysisService) GetByID(ctx context.Context, eventID uuid.UUID) (*types.AnalysisEvent, error) {
	return as.eventRepo.GetByID(ctx, nil, eventID)
}

func deriveResumen(payload json.RawMessage) (types.ResumenFinal, error) {
	if len(payload) == 0 {
		return types.ResumenFinal{}, nil
	}
	var partial struct {
		ResultadosDetallados []types.DetalleComentario `json:"resultados_detallados"`
	}
	if err := json.Unmarshal(payload, &partial); err != nil {
		return types.ResumenFinal{}, fmt.Errorf("decode payload: %w", err)
	}
	return ResumenFromDetalles(partial.ResultadosDetallados), nil
}

// buildResultadoBlob merges the classifier payload with the run metadata and
// the synthetic resumen_final, mirroring the stored document shape the
// dashboard reads back.
func buildResultadoBlob(input SaveAnalisisInput, resumen types.ResumenFinal) (datatypes.JSON, error) {
	blob := map[string]any{}
	if len(input.Payload) > 0 {
		if err := json.Unmarshal(input.Payload, &blob); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
	}
	// A literal null payload unmarshals to a nil map.
	if blob == nil {
		blob = map[string]any{}
	}
	blob["nombreanalisis"] = input.NombreAnalisis
	if input.VideoURL != "" {
		blob["videoUrl"] = input.VideoURL
	}
	blob["resumen_final"] = resumen

	raw, err := json.Marshal(blob)
	if err != nil {
		return nil, fmt.Errorf("marshal resultado: %w", err)
	}
	return datatypes.JSON(raw), nil
}
