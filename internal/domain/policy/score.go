package policy

import (
	"math"

	"surface-inspector/internal/domain/entity"
)

// ScoreConfig параметры перевода доли границ в оценку здоровья поверхности.
// Значения по умолчанию подобраны эмпирически и требуют перекалибровки на размеченных данных.
type ScoreConfig struct {
	ScaleFactor float64
	Min         float64
	Max         float64
}

// DefaultScoreConfig возвращает масштаб 2 и границы [10, 99].
func DefaultScoreConfig() ScoreConfig {
	return ScoreConfig{ScaleFactor: 2, Min: 10, Max: 99}
}

// Score считает raw = 100 - ratio*100*scale и зажимает результат в [Min, Max].
func Score(m entity.EdgeMetrics, cfg ScoreConfig) float64 {
	raw := 100 - m.EdgePixelRatio*100*cfg.ScaleFactor
	return math.Min(cfg.Max, math.Max(cfg.Min, raw))
}
