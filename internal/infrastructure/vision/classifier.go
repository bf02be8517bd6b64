package vision

import (
	"context"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"surface-inspector/internal/domain/entity"
)

// FeatureWeight вклад одного признака в логит.
type FeatureWeight struct {
	Name   string  `yaml:"name"`
	Center float64 `yaml:"center"`
	Scale  float64 `yaml:"scale"`
	Weight float64 `yaml:"weight"`
}

// SurfaceModel логистическая модель металл / не металл поверх признаков поверхности.
type SurfaceModel struct {
	Version  string          `yaml:"version"`
	Bias     float64         `yaml:"bias"`
	Features []FeatureWeight `yaml:"features"`
}

// LoadSurfaceModel читает модель из YAML файла.
func LoadSurfaceModel(path string) (*SurfaceModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, entity.Wrap(entity.KindModelUnavailable, "vision.model.load", "failed to read gatekeeper model", err)
	}
	return ParseSurfaceModel(data)
}

// ParseSurfaceModel разбирает и проверяет модель.
func ParseSurfaceModel(data []byte) (*SurfaceModel, error) {
	var m SurfaceModel
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, entity.Wrap(entity.KindModelUnavailable, "vision.model.parse", "invalid gatekeeper model", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *SurfaceModel) validate() error {
	if len(m.Features) == 0 {
		return entity.NewError(entity.KindModelUnavailable, "vision.model.validate", "model has no features")
	}
	known := map[string]bool{
		FeatureMean: true, FeatureStdDev: true, FeatureEntropy: true, FeatureEdgeDensity: true,
		FeatureCoherence: true, FeatureBright: true, FeatureDark: true,
	}
	for _, f := range m.Features {
		if !known[f.Name] {
			return entity.NewError(entity.KindModelUnavailable, "vision.model.validate", fmt.Sprintf("unknown feature %q", f.Name))
		}
		if f.Scale <= 0 {
			return entity.NewError(entity.KindModelUnavailable, "vision.model.validate", fmt.Sprintf("feature %q has non-positive scale", f.Name))
		}
	}
	if m.Version == "" {
		m.Version = "unversioned"
	}
	return nil
}

// Probability возвращает вероятность металла для набора признаков.
func (m *SurfaceModel) Probability(f SurfaceFeatures) float64 {
	z := m.Bias
	for _, fw := range m.Features {
		z += fw.Weight * (f[fw.Name] - fw.Center) / fw.Scale
	}
	return 1 / (1 + math.Exp(-z))
}

// SurfaceClassifier классификатор на чистом Go. Модель только читается,
// поэтому один экземпляр безопасно использовать из разных горутин.
type SurfaceClassifier struct {
	model *SurfaceModel
}

// NewSurfaceClassifier создаёт классификатор. nil модель означает ошибку инициализации.
func NewSurfaceClassifier(model *SurfaceModel) (*SurfaceClassifier, error) {
	if model == nil {
		return nil, entity.NewError(entity.KindModelUnavailable, "vision.classifier", "gatekeeper model is not loaded")
	}
	return &SurfaceClassifier{model: model}, nil
}

// Score возвращает уверенность в том, что на изображении металл.
func (c *SurfaceClassifier) Score(ctx context.Context, img *entity.AnalysisImage) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, entity.Wrap(entity.KindTimeout, "vision.classifier", "inspection cancelled", err)
	}
	if img == nil || img.Gray == nil {
		return 0, entity.NewError(entity.KindInternal, "vision.classifier", "analysis image is nil")
	}
	return c.model.Probability(ExtractFeatures(img.Gray)), nil
}

// ModelVersion версия загруженной модели.
func (c *SurfaceClassifier) ModelVersion() string {
	return c.model.Version
}
