package service

import (
	"math"

	"github.com/hcc-raf-server/internal/domain"
)

// scorePrecision is the number of decimal places scores are reported with
const scorePrecision = 3

// NormalizeScore rounds the raw score for display and rescales it by the model
// year's normalization factor
func NormalizeScore(riskScore, normFactor float64) domain.ScoreSummary {
	return domain.ScoreSummary{
		RiskScore:           roundTo(riskScore, scorePrecision),
		RiskScoreNormalized: roundTo(riskScore/normFactor, scorePrecision),
	}
}

func roundTo(value float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(value*scale) / scale
}
