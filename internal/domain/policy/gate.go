package policy

import (
	"math"

	"surface-inspector/internal/domain/entity"
)

// GateConfig порог гейткипера и ширина пограничной зоны.
type GateConfig struct {
	AcceptThreshold float64
	// UncertainMargin > 0 включает статус UNCERTAIN для |confidence - AcceptThreshold| <= UncertainMargin.
	UncertainMargin float64
}

// DefaultGateConfig порог 0.5 без пограничной зоны.
func DefaultGateConfig() GateConfig {
	return GateConfig{AcceptThreshold: 0.5}
}

// Judge переводит уверенность классификатора в вердикт.
func Judge(confidence float64, cfg GateConfig) entity.GatekeeperVerdict {
	confidence = math.Min(1, math.Max(0, confidence))
	v := entity.GatekeeperVerdict{
		Confidence: confidence,
		IsMetal:    confidence >= cfg.AcceptThreshold,
	}
	if cfg.UncertainMargin > 0 && math.Abs(confidence-cfg.AcceptThreshold) <= cfg.UncertainMargin {
		v.Uncertain = true
	}
	return v
}
