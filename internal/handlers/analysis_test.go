package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/neo-astro/tiktok-sentiment-backend/internal/repos"
	"github.com/neo-astro/tiktok-sentiment-backend/internal/services"
	"github.com/neo-astro/tiktok-sentiment-backend/internal/types"
)

func testAnalysisService(t *testing.T) services.AnalysisService {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&types.User{}, &types.Video{}, &types.AnalysisEvent{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	log := testLogger(t)
	return services.NewAnalysisService(db, log,
		repos.NewUserRepo(db, log),
		repos.NewVideoRepo(db, log),
		repos.NewAnalysisEventRepo(db, log),
	)
}

type fakeOrchestrator struct {
	event *types.AnalysisEvent
	err   error
	calls int
}

func (f *fakeOrchestrator) Run(ctx context.Context, input services.RunAnalisisInput) (*types.AnalysisEvent, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.event, nil
}

func postJSON(t *testing.T, router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestCrearDatosAndReadBack(t *testing.T) {
	analysis := testAnalysisService(t)
	router := testRouter(t, &fakeFetcher{}, analysis, &fakeOrchestrator{})

	body := `{
    "userId": "ana@example.com",
    "nombreanalisis": "demo",
    "videoId": "123",
    "videoUrl": "https://www.tiktok.com/@u/video/123",
    "payload": {"total_comentarios":3,"resultados_detallados":[
      {"comentario":"bien","sentimiento_final":"positivo","scores_por_dominio":{"deporte":0.9}},
      {"comentario":"top","sentimiento_final":"positivo","scores_por_dominio":{"deporte":0.8}},
      {"comentario":"mal","sentimiento_final":"negativo","scores_por_dominio":{}}
    ]},
    "resultado": {"positivos":2,"negativos":1,"neutros":0}
  }`
	rr := postJSON(t, router, "/api/datos", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}

	var created struct {
		Success   bool `json:"success"`
		Documento struct {
			ID        string          `json:"id"`
			Resultado json.RawMessage `json:"resultado"`
		} `json:"documento"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !created.Success || created.Documento.ID == "" {
		t.Fatalf("unexpected create response: %s", rr.Body.String())
	}

	// Round-trip: the detail view returns the stored blob untouched.
	req := httptest.NewRequest(http.MethodGet, "/api/analisisResult/"+created.Documento.ID, nil)
	rr2 := httptest.NewRecorder()
	router.ServeHTTP(rr2, req)
	if rr2.Code != http.StatusOK {
		t.Fatalf("detail status=%d body=%s", rr2.Code, rr2.Body.String())
	}
	var fetched struct {
		Documento struct {
			Resultado json.RawMessage `json:"resultado"`
		} `json:"documento"`
	}
	if err := json.NewDecoder(rr2.Body).Decode(&fetched); err != nil {
		t.Fatalf("decode detail: %v", err)
	}
	if string(fetched.Documento.Resultado) != string(created.Documento.Resultado) {
		t.Fatalf("resultado changed between write and read:\n got %s\nwant %s",
			fetched.Documento.Resultado, created.Documento.Resultado)
	}

	// List view projects predominant sentiment and domain.
	req = httptest.NewRequest(http.MethodGet, "/api/datos/ana@example.com", nil)
	rr3 := httptest.NewRecorder()
	router.ServeHTTP(rr3, req)
	if rr3.Code != http.StatusOK {
		t.Fatalf("list status=%d body=%s", rr3.Code, rr3.Body.String())
	}
	var listed struct {
		Success bool                    `json:"success"`
		Data    []types.AnalisisResumen `json:"data"`
	}
	if err := json.NewDecoder(rr3.Body).Decode(&listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed.Data) != 1 {
		t.Fatalf("expected 1 entry, got %+v", listed.Data)
	}
	if listed.Data[0].SentimientoPredominante != "positivo" {
		t.Fatalf("sentimiento_predominante=%q, want positivo", listed.Data[0].SentimientoPredominante)
	}
	if listed.Data[0].DominioPrincipal != "deporte" {
		t.Fatalf("dominio_principal=%q, want deporte", listed.Data[0].DominioPrincipal)
	}
}

func TestCrearDatosNullPayload(t *testing.T) {
	router := testRouter(t, &fakeFetcher{}, testAnalysisService(t), &fakeOrchestrator{})

	rr := postJSON(t, router, "/api/datos", `{"userId":"ana@example.com","nombreanalisis":"demo","videoId":"1","payload":null}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	var out struct {
		Success   bool `json:"success"`
		Documento struct {
			ID string `json:"id"`
		} `json:"documento"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.Success || out.Documento.ID == "" {
		t.Fatalf("null payload must still persist with the success envelope: %s", rr.Body.String())
	}
}

func TestCrearDatosValidation(t *testing.T) {
	router := testRouter(t, &fakeFetcher{}, testAnalysisService(t), &fakeOrchestrator{})

	rr := postJSON(t, router, "/api/datos", `{"nombreanalisis":"x","videoId":"1"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("missing userId: status=%d, want 400", rr.Code)
	}

	rr = postJSON(t, router, "/api/datos", `{"userId":"a@b.c","nombreanalisis":"x"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("missing videoId: status=%d, want 400", rr.Code)
	}
}

func TestObtenerResultadoInvalidID(t *testing.T) {
	router := testRouter(t, &fakeFetcher{}, testAnalysisService(t), &fakeOrchestrator{})

	req := httptest.NewRequest(http.MethodGet, "/api/analisisResult/not-a-uuid", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", rr.Code)
	}
}

func TestRunAnalisisPipelineFailure(t *testing.T) {
	orch := &fakeOrchestrator{err: errors.New("analizar comentarios: context deadline exceeded")}
	router := testRouter(t, &fakeFetcher{}, testAnalysisService(t), orch)

	body := `{"userEmail":"ana@example.com","nombreAnalisis":"demo","videoUrl":"https://www.tiktok.com/@u/video/1"}`
	rr := postJSON(t, router, "/api/analisis", body)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d, want 500", rr.Code)
	}
	var out struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Success || !strings.Contains(out.Message, "context deadline exceeded") {
		t.Fatalf("failure message must carry the reason: %+v", out)
	}
}

func TestRunAnalisisValidation(t *testing.T) {
	router := testRouter(t, &fakeFetcher{}, testAnalysisService(t), &fakeOrchestrator{})

	rr := postJSON(t, router, "/api/analisis", `{"nombreAnalisis":"demo"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", rr.Code)
	}
}

func TestRunAnalisisRejectsNonTikTokURLBeforePipeline(t *testing.T) {
	orch := &fakeOrchestrator{}
	router := testRouter(t, &fakeFetcher{}, testAnalysisService(t), orch)

	body := `{"userEmail":"ana@example.com","nombreAnalisis":"demo","videoUrl":"https://example.com/watch?v=1"}`
	rr := postJSON(t, router, "/api/analisis", body)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", rr.Code)
	}
	if orch.calls != 0 {
		t.Fatalf("pipeline must not run for an invalid video URL")
	}
	var out struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Success || out.Message == "" {
		t.Fatalf("unexpected response: %s", rr.Body.String())
	}
}

func TestRunAnalisisSuccess(t *testing.T) {
	event := &types.AnalysisEvent{Resultado: []byte(`{"nombreanalisis":"demo"}`)}
	router := testRouter(t, &fakeFetcher{}, testAnalysisService(t), &fakeOrchestrator{event: event})

	body := `{"userEmail":"ana@example.com","nombreAnalisis":"demo","videoUrl":"https://www.tiktok.com/@u/video/1","commentsPerPost":5}`
	rr := postJSON(t, router, "/api/analisis", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	var out struct {
		Success bool `json:"success"`
		Data    struct {
			Resultado json.RawMessage `json:"resultado"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.Success || string(out.Data.Resultado) != `{"nombreanalisis":"demo"}` {
		t.Fatalf("unexpected response: %s", rr.Body.String())
	}
}
