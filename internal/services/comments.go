package services

import (
	"context"
	"fmt"

	"github.com/neo-astro/tiktok-sentiment-backend/internal/logger"
	"github.com/neo-astro/tiktok-sentiment-backend/internal/utils"
)

const defaultCommentsPerPost = 5

// CommentBatch is the flat comment list produced by one scraping run.
type CommentBatch struct {
	Total       int
	Comentarios []string
}

type CommentFetcher interface {
	Fetch(ctx context.Context, videoURL string, commentsPerPost int) (*CommentBatch, error)
}

type commentFetcher struct {
	log     *logger.Logger
	apify   ApifyClient
	actorID string
}

func NewCommentFetcher(log *logger.Logger, apify ApifyClient) CommentFetcher {
	actorID := utils.GetEnv("APIFY_ACTOR_ID", "BDec00yAmCm1QbMEI", log)
	return &commentFetcher{
		log:     log.With("service", "CommentFetcher"),
		apify:   apify,
		actorID: actorID,
	}
}

// Fetch runs the scraping actor for one video URL and extracts each produced
// item's text field. commentsPerPost falls back to 5 when non-positive.
func (cf *commentFetcher) Fetch(ctx context.Context, videoURL string, commentsPerPost int) (*CommentBatch, error) {
	if videoURL == "" {
		return nil, fmt.Errorf("la URL del video es obligatoria")
	}
	if commentsPerPost <= 0 {
		commentsPerPost = defaultCommentsPerPost
	}

	input := map[string]any{
		"postURLs":             []string{videoURL},
		"commentsPerPost":      commentsPerPost,
		"maxRepliesPerComment": 0,
	}

	run, err := cf.apify.RunActorSync(ctx, cf.actorID, input)
	if err != nil {
		return nil, err
	}

	items, err := cf.apify.DatasetItems(ctx, run.DefaultDatasetID)
	if err != nil {
		return nil, err
	}

	comentarios := make([]string, 0, len(items))
	for _, item := range items {
		text, _ := item["text"].(string)
		comentarios = append(comentarios, text)
	}

	cf.log.Info("Comments scraped", "url", videoURL, "total", len(comentarios))
	return &CommentBatch{Total: len(comentarios), Comentarios: comentarios}, nil
}
