//go:build !gocv
// +build !gocv

package vision

import (
	"surface-inspector/internal/domain/entity"
)

// GoCVEnabled сообщает, собран ли бинарник с OpenCV.
const GoCVEnabled = false

// GoCVPipeline заглушка конвейера OpenCV для сборки без тега gocv.
type GoCVPipeline struct{}

// NewGoCVPipeline создаёт конвейер-заглушку (без OpenCV).
func NewGoCVPipeline(prep PreprocessOptions, edge EdgeOptions) *GoCVPipeline {
	_ = prep
	_ = edge
	return &GoCVPipeline{}
}

// Preprocess возвращает ошибку, если сборка без тега gocv.
func (p *GoCVPipeline) Preprocess(imageData []byte) (*entity.AnalysisImage, error) {
	_ = imageData
	return nil, errGoCVDisabled()
}

// Detect возвращает ошибку, если сборка без тега gocv.
func (p *GoCVPipeline) Detect(img *entity.AnalysisImage) (entity.EdgeMetrics, error) {
	_ = img
	return entity.EdgeMetrics{}, errGoCVDisabled()
}

func errGoCVDisabled() error {
	return entity.NewError(entity.KindConfiguration, "vision.gocv", "gocv build tag is not enabled")
}
