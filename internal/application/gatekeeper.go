package app

import (
	"context"

	"surface-inspector/internal/domain/entity"
	"surface-inspector/internal/domain/policy"
	"surface-inspector/internal/domain/port"
)

// Gatekeeper отсеивает изображения, не похожие на металлическую поверхность.
type Gatekeeper struct {
	classifier port.SurfaceClassifier
	cfg        policy.GateConfig
}

// NewGatekeeper создаёт гейткипер. Без классификатора сервис не стартует.
func NewGatekeeper(classifier port.SurfaceClassifier, cfg policy.GateConfig) (*Gatekeeper, error) {
	if classifier == nil {
		return nil, entity.NewError(entity.KindModelUnavailable, "gatekeeper.init", "surface classifier is not loaded")
	}
	return &Gatekeeper{classifier: classifier, cfg: cfg}, nil
}

// Classify возвращает вердикт по изображению.
func (g *Gatekeeper) Classify(ctx context.Context, img *entity.AnalysisImage) (entity.GatekeeperVerdict, error) {
	confidence, err := g.classifier.Score(ctx, img)
	if err != nil {
		return entity.GatekeeperVerdict{}, entity.Wrap(entity.KindInference, "gatekeeper.classify", "surface classification failed", err)
	}
	return policy.Judge(confidence, g.cfg), nil
}

// ModelVersion версия модели классификатора.
func (g *Gatekeeper) ModelVersion() string {
	return g.classifier.ModelVersion()
}
