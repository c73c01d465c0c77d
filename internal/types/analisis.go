package types

import (
	"time"

	"github.com/google/uuid"
)

// Sentiment labels emitted by the classifier. sentimiento_final is always one
// of these three values.
const (
	SentimientoPositivo = "positivo"
	SentimientoNegativo = "negativo"
	SentimientoNeutral  = "neutral"
)

// DominioGeneral is reported when a stored result carries no per-domain scores.
const DominioGeneral = "general"

// ResumenFinal holds the summary counts embedded in the stored resultado blob.
type ResumenFinal struct {
	Positivos int `json:"positivos"`
	Negativos int `json:"negativos"`
	Neutros   int `json:"neutros"`
}

// DetalleComentario is one per-comment classification from the classifier's
// resultados_detallados list.
type DetalleComentario struct {
	Comentario        string             `json:"comentario"`
	SentimientoModelo string             `json:"sentimiento_modelo"`
	ScoreModelo       float64            `json:"score_modelo"`
	ScoresPorDominio  map[string]float64 `json:"scores_por_dominio"`
	Afiliacion        []string           `json:"afiliacion"`
	SentimientoFinal  string             `json:"sentimiento_final"`
}

// Resultado is the subset of the stored blob the read paths need. The blob
// itself is persisted as the classifier payload pass-through plus the
// synthetic resumen_final, so decoding ignores any extra fields.
type Resultado struct {
	NombreAnalisis       string              `json:"nombreanalisis"`
	VideoURL             string              `json:"videoUrl"`
	TotalComentarios     int                 `json:"total_comentarios"`
	ResumenFinal         *ResumenFinal       `json:"resumen_final"`
	ResultadosDetallados []DetalleComentario `json:"resultados_detallados"`
}

// AnalisisResumen is the lightweight list-view projection of one stored run.
type AnalisisResumen struct {
	ID                      uuid.UUID `json:"id"`
	NombreAnalisis          string    `json:"nombreAnalisis"`
	Fecha                   time.Time `json:"fecha"`
	TotalComentarios        int       `json:"total_comentarios"`
	SentimientoPredominante string    `json:"sentimiento_predominante"`
	DominioPrincipal        string    `json:"dominio_principal"`
}
