package services

import (
	"context"
	"fmt"
	neturl "net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/neo-astro/tiktok-sentiment-backend/internal/logger"
	"github.com/neo-astro/tiktok-sentiment-backend/internal/types"
)

var (
	tiktokURLPattern = regexp.MustCompile(`(?i)^https?://(www\.)?tiktok\.com/(@[A-Za-z0-9_.-]+/video/\d+|v/\d+|.+/video/\d+)`)
	videoIDPattern   = regexp.MustCompile(`(?i)/video/(\d+)(?:[/?#]|$)`)
)

// RunAnalisisInput is one user-initiated full pipeline run.
type RunAnalisisInput struct {
	UserEmail       string
	NombreAnalisis  string
	VideoURL        string
	CommentsPerPost int
}

// Orchestrator chains Fetcher -> Classifier -> Store for one action. The
// first failing stage aborts the rest: a classifier failure writes nothing,
// a store failure discards the classification already done.
type Orchestrator interface {
	Run(ctx context.Context, input RunAnalisisInput) (*types.AnalysisEvent, error)
}

type orchestrator struct {
	log      *logger.Logger
	fetcher  CommentFetcher
	analyzer AnalyzerClient
	analysis AnalysisService
}

func NewOrchestrator(log *logger.Logger, fetcher CommentFetcher, analyzer AnalyzerClient, analysis AnalysisService) Orchestrator {
	return &orchestrator{
		log:      log.With("service", "Orchestrator"),
		fetcher:  fetcher,
		analyzer: analyzer,
		analysis: analysis,
	}
}

func (o *orchestrator) Run(ctx context.Context, input RunAnalisisInput) (*types.AnalysisEvent, error) {
	if input.UserEmail == "" {
		return nil, fmt.Errorf("userEmail es obligatorio")
	}
	if input.VideoURL == "" {
		return nil, fmt.Errorf("la URL del video es obligatoria")
	}
	if !IsValidTikTokURL(input.VideoURL) {
		return nil, fmt.Errorf("la URL no es un video de TikTok valido")
	}

	videoID := ExtractVideoID(input.VideoURL)
	o.log.Info("Starting full analysis", "user", input.UserEmail, "video_id", videoID)

	batch, err := o.fetcher.Fetch(ctx, input.VideoURL, input.CommentsPerPost)
	if err != nil {
		return nil, fmt.Errorf("obtener comentarios: %w", err)
	}

	result, err := o.analyzer.Analizar(ctx, batch.Total, batch.Comentarios)
	if err != nil {
		return nil, fmt.Errorf("analizar comentarios: %w", err)
	}

	var resumen types.ResumenFinal
	if len(result.ResumenSentimientos) > 0 {
		resumen = ResumenFromSentimientos(result.ResumenSentimientos)
	} else {
		resumen = ResumenFromDetalles(result.ResultadosDetallados)
	}

	event, err := o.analysis.Save(ctx, SaveAnalisisInput{
		UserEmail:      input.UserEmail,
		NombreAnalisis: input.NombreAnalisis,
		VideoID:        videoID,
		VideoURL:       input.VideoURL,
		Payload:        result.Raw,
		Resultado:      &resumen,
	})
	if err != nil {
		return nil, err
	}

	o.log.Info("Full analysis completed", "id", event.ID, "total", batch.Total)
	return event, nil
}

// IsValidTikTokURL reports whether a URL points at a TikTok video. Callers
// can reject bad input before any network call happens.
func IsValidTikTokURL(videoURL string) bool {
	return tiktokURLPattern.MatchString(videoURL)
}

// ExtractVideoID derives a platform video id from a TikTok URL: the numeric
// /video/ segment, then a ?v= query parameter, then a base-36 hash of the
// URL, then a random token when the URL does not parse at all.
func ExtractVideoID(videoURL string) string {
	if m := videoIDPattern.FindStringSubmatch(videoURL); m != nil {
		return m[1]
	}

	parsed, err := neturl.Parse(videoURL)
	if err != nil {
		return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	}
	if v := parsed.Query().Get("v"); v != "" {
		return v
	}

	var h int32
	for _, r := range videoURL {
		h = h*31 + int32(r)
	}
	if h < 0 {
		h = -h
	}
	token := strconv.FormatInt(int64(h), 36)
	if len(token) > 8 {
		token = token[:8]
	}
	return token
}
