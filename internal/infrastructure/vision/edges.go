package vision

import "surface-inspector/internal/domain/entity"

// EdgeOptions параметры детектора границ.
type EdgeOptions struct {
	MinComponentArea int // минимальная площадь дефекта в пикселях
}

// DefaultEdgeOptions возвращает минимальную площадь 10 пикселей.
func DefaultEdgeOptions() EdgeOptions {
	return EdgeOptions{MinComponentArea: 10}
}

// EdgeDetector считает метрики границ на чистом Go.
type EdgeDetector struct {
	opts EdgeOptions
}

// NewEdgeDetector создаёт детектор границ.
func NewEdgeDetector(opts EdgeOptions) *EdgeDetector {
	if opts.MinComponentArea < 1 {
		opts.MinComponentArea = 1
	}
	return &EdgeDetector{opts: opts}
}

// Detect выполняет Собель, нормировку, порог Оцу и разметку областей.
func (d *EdgeDetector) Detect(img *entity.AnalysisImage) (entity.EdgeMetrics, error) {
	if img == nil || img.Gray == nil {
		return entity.EdgeMetrics{}, entity.NewError(entity.KindInternal, "vision.detect", "analysis image is nil")
	}
	w, h := img.Width(), img.Height()
	if w == 0 || h == 0 {
		return entity.EdgeMetrics{}, nil
	}

	mag, peak := SobelMagnitude(img.Gray)
	// Плоское изображение: границ нет.
	if peak == 0 {
		return entity.EdgeMetrics{}, nil
	}

	norm := Quantize(mag, peak)
	t, ok := OtsuThreshold(norm)
	if !ok {
		return entity.EdgeMetrics{}, nil
	}

	mask := Binarize(norm, t)
	fg := 0
	for _, on := range mask {
		if on {
			fg++
		}
	}

	regions := FindComponents(mask, w, h, d.opts.MinComponentArea)
	return entity.EdgeMetrics{
		EdgePixelRatio: float64(fg) / float64(w*h),
		DefectCount:    len(regions),
		Threshold:      t,
		Regions:        regions,
	}, nil
}
