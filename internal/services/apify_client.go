package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/neo-astro/tiktok-sentiment-backend/internal/logger"
	"github.com/neo-astro/tiktok-sentiment-backend/internal/utils"
)

// ActorRun is the subset of the Apify run object the fetcher needs.
type ActorRun struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	DefaultDatasetID string `json:"defaultDatasetId"`
}

const actorRunStatusSucceeded = "SUCCEEDED"

type ApifyClient interface {
	// RunActorSync starts an actor run and blocks until it reaches a
	// terminal state. Every call triggers a billable run, there is no
	// dedup and no retry.
	RunActorSync(ctx context.Context, actorID string, input any) (*ActorRun, error)
	DatasetItems(ctx context.Context, datasetID string) ([]map[string]any, error)
}

type apifyClient struct {
	log        *logger.Logger
	baseURL    string
	token      string
	waitSecs   int
	httpClient *http.Client
}

func NewApifyClient(log *logger.Logger) (ApifyClient, error) {
	token := os.Getenv("APIFY_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("missing APIFY_TOKEN")
	}

	baseURL := os.Getenv("APIFY_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.apify.com"
	}

	timeoutSec := utils.GetEnvAsInt("APIFY_TIMEOUT_SECONDS", 120, nil)
	waitSecs := utils.GetEnvAsInt("APIFY_WAIT_FOR_FINISH_SECONDS", 120, nil)

	return &apifyClient{
		log:        log.With("service", "ApifyClient"),
		baseURL:    baseURL,
		token:      token,
		waitSecs:   waitSecs,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
	}, nil
}

type apifyHTTPError struct {
	StatusCode int
	Body       string
}

func (e *apifyHTTPError) Error() string {
	return fmt.Sprintf("apify http %d: %s", e.StatusCode, e.Body)
}

func (ac *apifyClient) RunActorSync(ctx context.Context, actorID string, input any) (*ActorRun, error) {
	endpoint := fmt.Sprintf("%s/v2/acts/%s/runs?token=%s&waitForFinish=%d",
		ac.baseURL, url.PathEscape(actorID), url.QueryEscape(ac.token), ac.waitSecs)

	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("marshal actor input: %w", err)
	}

	ac.log.Info("Starting actor run", "actor_id", actorID)
	raw, err := ac.do(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data ActorRun `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode actor run: %w", err)
	}
	run := envelope.Data
	if run.Status != actorRunStatusSucceeded {
		return nil, fmt.Errorf("apify run %s finished with status %s", run.ID, run.Status)
	}
	ac.log.Info("Actor run succeeded", "run_id", run.ID, "dataset_id", run.DefaultDatasetID)
	return &run, nil
}

func (ac *apifyClient) DatasetItems(ctx context.Context, datasetID string) ([]map[string]any, error) {
	endpoint := fmt.Sprintf("%s/v2/datasets/%s/items?token=%s&clean=true",
		ac.baseURL, url.PathEscape(datasetID), url.QueryEscape(ac.token))

	raw, err := ac.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var items []map[string]any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode dataset items: %w", err)
	}
	return items, nil
}

func (ac *apifyClient) do(ctx context.Context, method, endpoint string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

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
		return nil, &apifyHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return raw, nil
}
