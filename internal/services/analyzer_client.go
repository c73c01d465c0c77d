package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/neo-astro/tiktok-sentiment-backend/internal/logger"
	"github.com/neo-astro/tiktok-sentiment-backend/internal/types"
	"github.com/neo-astro/tiktok-sentiment-backend/internal/utils"
)

// AnalisisResult is the classifier response. Raw keeps the undecoded body so
// the store receives the payload exactly as the classifier produced it.
type AnalisisResult struct {
	TotalComentarios     int                       `json:"total_comentarios"`
	ResumenSentimientos  map[string]int            `json:"resumen_sentimientos"`
	ResumenDominios      map[string]int            `json:"resumen_dominios"`
	Polarizacion         float64                   `json:"polarizacion"`
	Riesgo               string                    `json:"riesgo"`
	ResultadosDetallados []types.DetalleComentario `json:"resultados_detallados"`

	Raw json.RawMessage `json:"-"`
}

type AnalyzerClient interface {
	Analizar(ctx context.Context, total int, comentarios []string) (*AnalisisResult, error)
}

type analyzerClient struct {
	log        *logger.Logger
	baseURL    string
	httpClient *http.Client
}

func NewAnalyzerClient(log *logger.Logger) AnalyzerClient {
	baseURL := utils.GetEnv("ANALYZER_URL", "http://localhost:8000", log)
	timeoutSec := utils.GetEnvAsInt("ANALYZER_TIMEOUT_SECONDS", 60, log)
	return &analyzerClient{
		log:        log.With("service", "AnalyzerClient"),
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
	}
}

type analyzerHTTPError struct {
	StatusCode int
	Body       string
}

func (e *analyzerHTTPError) Error() string {
	return fmt.Sprintf("analyzer http %d: %s", e.StatusCode, e.Body)
}

func (ac *analyzerClient) Analizar(ctx context.Context, total int, comentarios []string) (*AnalisisResult, error) {
	reqBody, err := json.Marshal(map[string]any{
		"total":       total,
		"comentarios": comentarios,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal analizar request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ac.baseURL+"/api/analizar", bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	ac.log.Info("Sending comments to analyzer", "total", total)
	resp, err := ac.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &analyzerHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var result AnalisisResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode analizar response: %w", err)
	}
	result.Raw = raw
	ac.log.Info("Analyzer response received", "total_comentarios", result.TotalComentarios)
	return &result, nil
}
