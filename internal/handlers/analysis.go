package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/neo-astro/tiktok-sentiment-backend/internal/logger"
	"github.com/neo-astro/tiktok-sentiment-backend/internal/services"
	"github.com/neo-astro/tiktok-sentiment-backend/internal/types"
)

type AnalysisHandler struct {
	log          *logger.Logger
	analysis     services.AnalysisService
	orchestrator services.Orchestrator
}

func NewAnalysisHandler(log *logger.Logger, analysis services.AnalysisService, orchestrator services.Orchestrator) *AnalysisHandler {
	handlerLog := log.With("handler", "AnalysisHandler")
	return &AnalysisHandler{log: handlerLog, analysis: analysis, orchestrator: orchestrator}
}

type crearDatosRequest struct {
	UserID         string              `json:"userId"`
	NombreAnalisis string              `json:"nombreanalisis"`
	VideoID        string              `json:"videoId"`
	VideoURL       string              `json:"videoUrl"`
	Payload        json.RawMessage     `json:"payload"`
	Resultado      *types.ResumenFinal `json:"resultado"`
}

// CrearDatos persists one classification run. userId carries the email; the
// summary falls back to scanning the payload when resultado is absent.
func (ah *AnalysisHandler) CrearDatos(c *gin.Context) {
	var req crearDatosRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.UserID == "" {
		RespondError(c, http.StatusBadRequest, errors.New("userId es obligatorio"))
		return
	}
	if req.VideoID == "" {
		RespondError(c, http.StatusBadRequest, errors.New("videoId es obligatorio"))
		return
	}

	documento, err := ah.analysis.Save(c.Request.Context(), services.SaveAnalisisInput{
		UserEmail:      req.UserID,
		NombreAnalisis: req.NombreAnalisis,
		VideoID:        req.VideoID,
		VideoURL:       req.VideoURL,
		Payload:        req.Payload,
		Resultado:      req.Resultado,
	})
	if err != nil {
		ah.log.Error("Error guardando analisis", "error", err)
		RespondError(c, http.StatusInternalServerError, err)
		return
	}

	RespondOK(c, gin.H{"documento": documento})
}

// ListarDatos returns the lightweight summaries for one email.
func (ah *AnalysisHandler) ListarDatos(c *gin.Context) {
	userID := c.Param("userId")

	resumenes, err := ah.analysis.ListByEmail(c.Request.Context(), userID)
	if err != nil {
		ah.log.Error("Error listando analisis", "userId", userID, "error", err)
		RespondError(c, http.StatusInternalServerError, err)
		return
	}

	RespondOK(c, gin.H{"data": resumenes})
}

// ObtenerResultado returns the full record by store id with no ownership
// check against the requester.
func (ah *AnalysisHandler) ObtenerResultado(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, err)
		return
	}

	documento, err := ah.analysis.GetByID(c.Request.Context(), id)
	if err != nil {
		ah.log.Error("Error obteniendo analisis", "id", id, "error", err)
		RespondError(c, http.StatusInternalServerError, err)
		return
	}

	RespondOK(c, gin.H{"documento": documento})
}

type runAnalisisRequest struct {
	UserEmail       string `json:"userEmail"`
	NombreAnalisis  string `json:"nombreAnalisis"`
	VideoURL        string `json:"videoUrl"`
	CommentsPerPost int    `json:"commentsPerPost"`
}

// RunAnalisis executes the full scrape -> classify -> persist pipeline for
// one user action. Failures carry the first failing stage's message.
func (ah *AnalysisHandler) RunAnalisis(c *gin.Context) {
	var req runAnalisisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	if req.UserEmail == "" || req.VideoURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "userEmail y videoUrl son obligatorios"})
		return
	}
	if !services.IsValidTikTokURL(req.VideoURL) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "la URL no es un video de TikTok valido"})
		return
	}

	documento, err := ah.orchestrator.Run(c.Request.Context(), services.RunAnalisisInput{
		UserEmail:       req.UserEmail,
		NombreAnalisis:  req.NombreAnalisis,
		VideoURL:        req.VideoURL,
		CommentsPerPost: req.CommentsPerPost,
	})
	if err != nil {
		ah.log.Error("Full analysis failed", "userEmail", req.UserEmail, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	RespondOK(c, gin.H{"data": documento})
}
