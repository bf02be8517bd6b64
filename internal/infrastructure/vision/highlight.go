package vision

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"

	"surface-inspector/internal/domain/entity"
)

// Highlighter рисует рамки дефектов на исходном изображении.
type Highlighter struct {
	Color     color.RGBA
	Thickness int
	Quality   int
	MaxPixels int // предел пикселей исходного изображения
}

// NewHighlighter создаёт отрисовщик с зелёной рамкой толщиной 2 и JPEG качеством 90.
func NewHighlighter() *Highlighter {
	return &Highlighter{Color: color.RGBA{G: 255, A: 255}, Thickness: 2, Quality: 90, MaxPixels: DefaultMaxDecodePixels}
}

// HighlightDefects рисует прямоугольники вокруг дефектов и возвращает новую картинку.
func (h *Highlighter) HighlightDefects(imageData []byte, result *entity.InspectionResult) ([]byte, error) {
	src, err := decodeImage(imageData, h.MaxPixels)
	if err != nil {
		return nil, err
	}
	b := src.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(canvas, canvas.Bounds(), src, b.Min, draw.Src)

	if result != nil {
		sx, sy := regionScale(result, b.Dx(), b.Dy())
		fill := image.NewUniform(h.Color)
		for _, d := range result.Defects {
			drawFrame(canvas, d.Scale(sx, sy), h.Thickness, fill)
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: h.Quality}); err != nil {
		return nil, entity.Wrap(entity.KindInternal, "vision.highlight", "failed to encode image", err)
	}
	return buf.Bytes(), nil
}

// regionScale переводит координаты изображения для анализа в координаты исходного.
func regionScale(result *entity.InspectionResult, w, h int) (float64, float64) {
	if result.ImageWidth <= 0 || result.ImageHeight <= 0 {
		return 1, 1
	}
	return float64(w) / float64(result.ImageWidth), float64(h) / float64(result.ImageHeight)
}

func drawFrame(dst draw.Image, d entity.DefectArea, thickness int, fill image.Image) {
	if thickness < 1 {
		thickness = 1
	}
	r := image.Rect(d.X, d.Y, d.X+d.Width, d.Y+d.Height)
	sides := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+thickness),
		image.Rect(r.Min.X, r.Max.Y-thickness, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+thickness, r.Max.Y),
		image.Rect(r.Max.X-thickness, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, s := range sides {
		draw.Draw(dst, s.Intersect(dst.Bounds()), fill, image.Point{}, draw.Src)
	}
}
