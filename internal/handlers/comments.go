package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/neo-astro/tiktok-sentiment-backend/internal/logger"
	"github.com/neo-astro/tiktok-sentiment-backend/internal/services"
)

type CommentsHandler struct {
	log     *logger.Logger
	fetcher services.CommentFetcher
}

func NewCommentsHandler(log *logger.Logger, fetcher services.CommentFetcher) *CommentsHandler {
	handlerLog := log.With("handler", "CommentsHandler")
	return &CommentsHandler{log: handlerLog, fetcher: fetcher}
}

type tiktokCommentsRequest struct {
	URL             string `json:"url"`
	CommentsPerPost int    `json:"commentsPerPost"`
}

// TikTokComments validates the URL before any network call; a scraping
// failure surfaces the raw error with no retry.
func (ch *CommentsHandler) TikTokComments(c *gin.Context) {
	var req tiktokCommentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.URL == "" {
		RespondError(c, http.StatusBadRequest, errors.New("La URL del video es obligatoria"))
		return
	}

	batch, err := ch.fetcher.Fetch(c.Request.Context(), req.URL, req.CommentsPerPost)
	if err != nil {
		ch.log.Error("Comment fetch failed", "url", req.URL, "error", err)
		RespondError(c, http.StatusInternalServerError, err)
		return
	}

	RespondOK(c, gin.H{
		"total":       batch.Total,
		"comentarios": batch.Comentarios,
	})
}
