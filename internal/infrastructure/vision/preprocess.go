package vision

import (
	"image"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"

	"surface-inspector/internal/domain/entity"
)

// PreprocessOptions параметры подготовки изображения.
type PreprocessOptions struct {
	MaxDimension int     // максимальная длина большей стороны после уменьшения
	ClipLimit    float64 // предел обрезки гистограммы CLAHE
	TileGrid     int     // число тайлов CLAHE по каждой оси
	MaxPixels    int     // предел пикселей исходного изображения, 0 без ограничения
}

// DefaultPreprocessOptions возвращает сторону 1024, CLAHE 2.0 на сетке 8x8 и предел 40 Мп.
func DefaultPreprocessOptions() PreprocessOptions {
	return PreprocessOptions{MaxDimension: 1024, ClipLimit: 2.0, TileGrid: 8, MaxPixels: DefaultMaxDecodePixels}
}

// Preprocessor подготавливает изображение на чистом Go.
type Preprocessor struct {
	opts PreprocessOptions
}

// NewPreprocessor создаёт препроцессор.
func NewPreprocessor(opts PreprocessOptions) *Preprocessor {
	return &Preprocessor{opts: opts}
}

// Preprocess декодирует, уменьшает, переводит в серый и выравнивает контраст.
func (p *Preprocessor) Preprocess(imageData []byte) (*entity.AnalysisImage, error) {
	img, err := decodeImage(imageData, p.opts.MaxPixels)
	if err != nil {
		return nil, err
	}
	src := img.Bounds()

	// Уменьшаем только большие изображения, чтобы ограничить стоимость запроса.
	w, h := FitWithin(src.Dx(), src.Dy(), p.opts.MaxDimension)
	if w != src.Dx() || h != src.Dy() {
		img = imaging.Resize(img, w, h, imaging.Box)
	}

	gray := toGray(img)
	return &entity.AnalysisImage{
		Gray:         EqualizeAdaptive(gray, p.opts.ClipLimit, p.opts.TileGrid),
		SourceWidth:  src.Dx(),
		SourceHeight: src.Dy(),
	}, nil
}

// FitWithin возвращает размеры, при которых большая сторона не превышает maxSide.
// Пропорции сохраняются, увеличение не выполняется.
func FitWithin(w, h, maxSide int) (int, int) {
	if maxSide <= 0 || (w <= maxSide && h <= maxSide) {
		return w, h
	}
	scale := float64(maxSide) / float64(maxInt(w, h))
	nw := maxInt(1, int(math.Round(float64(w)*scale)))
	nh := maxInt(1, int(math.Round(float64(h)*scale)))
	return minInt(nw, maxSide), minInt(nh, maxSide)
}

// toGray переводит изображение в яркость с началом координат в нуле.
func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	return gray
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
