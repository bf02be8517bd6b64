package vision

import (
	"image"
	"math"
)

// reflect101 отражает индекс за границей без повтора крайнего пикселя.
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*n - 2 - i
		}
	}
	return i
}

// SobelMagnitude считает sqrt(Gx²+Gy²) ядром 3x3 и пиковое значение магнитуды.
func SobelMagnitude(g *image.Gray) ([]float64, float64) {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	mag := make([]float64, w*h)
	at := func(x, y int) float64 {
		x, y = reflect101(x, w), reflect101(y, h)
		return float64(g.Pix[(y+b.Min.Y-g.Rect.Min.Y)*g.Stride+x+b.Min.X-g.Rect.Min.X])
	}

	peak := 0.0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gx := at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x-1, y) - at(x-1, y+1)
			gy := at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1)
			m := math.Sqrt(gx*gx + gy*gy)
			mag[y*w+x] = m
			if m > peak {
				peak = m
			}
		}
	}
	return mag, peak
}

// Quantize нормирует магнитуду к 0..255 по пиковому значению.
func Quantize(mag []float64, peak float64) []uint8 {
	out := make([]uint8, len(mag))
	if peak <= 0 {
		return out
	}
	for i, m := range mag {
		out[i] = uint8(math.Min(255, math.Round(m/peak*255)))
	}
	return out
}
