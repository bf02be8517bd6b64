package port

import (
	"context"

	"surface-inspector/internal/domain/entity"
)

// Preprocessor приводит закодированное изображение к виду для анализа.
type Preprocessor interface {
	// Preprocess декодирует, уменьшает, переводит в серый и выравнивает контраст
	Preprocess(imageData []byte) (*entity.AnalysisImage, error)
}

// SurfaceClassifier предобученный классификатор металл / не металл.
// Реализации загружаются один раз и разделяются между запросами.
type SurfaceClassifier interface {
	// Score возвращает вероятность того, что на изображении металлическая поверхность
	Score(ctx context.Context, img *entity.AnalysisImage) (float64, error)

	// ModelVersion версия загруженной модели
	ModelVersion() string
}

// EdgeDetector строит карту границ и считает дефекты
type EdgeDetector interface {
	// Detect вычисляет долю границ и связные области
	Detect(img *entity.AnalysisImage) (entity.EdgeMetrics, error)
}

// DefectHighlighter рисует найденные дефекты поверх исходного фото
type DefectHighlighter interface {
	// HighlightDefects создаёт изображение с подсветкой дефектов
	HighlightDefects(imageData []byte, result *entity.InspectionResult) ([]byte, error)
}
