package services

import (
	"github.com/neo-astro/tiktok-sentiment-backend/internal/types"
)

// ResumenFromDetalles derives summary counts by scanning each final sentiment
// label. Anything that is neither positivo nor negativo counts as neutral.
func ResumenFromDetalles(detalles []types.DetalleComentario) types.ResumenFinal {
	var resumen types.ResumenFinal
	for _, d := range detalles {
		switch d.SentimientoFinal {
		case types.SentimientoPositivo:
			resumen.Positivos++
		case types.SentimientoNegativo:
			resumen.Negativos++
		default:
			resumen.Neutros++
		}
	}
	return resumen
}

// ResumenFromSentimientos maps the classifier's resumen_sentimientos object
// onto summary counts. Callers must check the map is non-empty first; the
// per-comment scan is the fallback source.
func ResumenFromSentimientos(sentimientos map[string]int) types.ResumenFinal {
	return types.ResumenFinal{
		Positivos: sentimientos[types.SentimientoPositivo],
		Negativos: sentimientos[types.SentimientoNegativo],
		Neutros:   sentimientos[types.SentimientoNeutral],
	}
}

// PredominantSentiment reports neutral unless one of the polar counts
// strictly exceeds the other. Equal counts, including all zeros, stay
// neutral; the same rule applies at write and read time.
func PredominantSentiment(resumen types.ResumenFinal) string {
	switch {
	case resumen.Positivos > resumen.Negativos:
		return types.SentimientoPositivo
	case resumen.Negativos > resumen.Positivos:
		return types.SentimientoNegativo
	default:
		return types.SentimientoNeutral
	}
}

// PrincipalDomain picks the highest-scoring domain from the first detailed
// result, matching the dashboard's list view. Ties break toward the
// lexicographically smaller name so the projection is deterministic.
func PrincipalDomain(detalles []types.DetalleComentario) string {
	if len(detalles) == 0 {
		return types.DominioGeneral
	}
	scores := detalles[0].ScoresPorDominio
	if len(scores) == 0 {
		return types.DominioGeneral
	}

	best := ""
	bestScore := 0.0
	for dominio, score := range scores {
		if best == "" || score > bestScore || (score == bestScore && dominio < best) {
			best = dominio
			bestScore = score
		}
	}
	return best
}
