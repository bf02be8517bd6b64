package policy

import (
	"strings"

	"surface-inspector/internal/domain/entity"
)

// DecisionConfig пороги прохождения инспекции.
type DecisionConfig struct {
	PassScoreMin  float64
	PassDefectMax int
}

// DefaultDecisionConfig возвращает пороги 90 и 5.
func DefaultDecisionConfig() DecisionConfig {
	return DecisionConfig{PassScoreMin: 90, PassDefectMax: 5}
}

// Decide выносит PASS, если оценка не ниже минимума и дефектов не больше максимума.
func Decide(score float64, defects int, cfg DecisionConfig) entity.InspectionResult {
	s, d := score, defects
	result := entity.InspectionResult{
		Status:      entity.StatusPass,
		HealthScore: &s,
		DefectCount: &d,
		Reason:      entity.ReasonWithinLimits,
	}

	var reasons []string
	if score < cfg.PassScoreMin {
		reasons = append(reasons, entity.ReasonLowScore)
	}
	if defects > cfg.PassDefectMax {
		reasons = append(reasons, entity.ReasonTooManyDefect)
	}
	if len(reasons) > 0 {
		result.Status = entity.StatusFail
		result.Reason = strings.Join(reasons, "; ")
	}
	return result
}
