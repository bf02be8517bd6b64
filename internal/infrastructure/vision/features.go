package vision

import (
	"image"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Признаки поверхности, которые понимает модель гейткипера.
const (
	FeatureMean        = "mean"
	FeatureStdDev      = "stddev"
	FeatureEntropy     = "entropy"
	FeatureEdgeDensity = "edge_density"
	FeatureCoherence   = "coherence"
	FeatureBright      = "bright_fraction"
	FeatureDark        = "dark_fraction"
)

const (
	brightLevel   = 240
	darkLevel     = 15
	edgeMagnitude = 100.0
)

// SurfaceFeatures признаки серого изображения, каждый нормирован к [0,1].
type SurfaceFeatures map[string]float64

// ExtractFeatures считает признаки яркости, текстуры и ориентации градиента.
func ExtractFeatures(g *image.Gray) SurfaceFeatures {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	n := w * h
	if n == 0 {
		return SurfaceFeatures{}
	}

	values := make([]float64, 0, n)
	hist := make([]float64, histBins)
	bright, dark := 0, 0
	for y := 0; y < h; y++ {
		row := (y+b.Min.Y-g.Rect.Min.Y)*g.Stride + b.Min.X - g.Rect.Min.X
		for x := 0; x < w; x++ {
			v := g.Pix[row+x]
			values = append(values, float64(v))
			hist[v]++
			if v >= brightLevel {
				bright++
			}
			if v <= darkLevel {
				dark++
			}
		}
	}
	for i := range hist {
		hist[i] /= float64(n)
	}

	mean, std := stat.MeanStdDev(values, nil)
	if math.IsNaN(std) {
		std = 0
	}

	return SurfaceFeatures{
		FeatureMean:        mean / 255,
		FeatureStdDev:      math.Min(1, std/127.5),
		FeatureEntropy:     stat.Entropy(hist) / math.Log(histBins),
		FeatureEdgeDensity: edgeDensity(g),
		FeatureCoherence:   gradientCoherence(g),
		FeatureBright:      float64(bright) / float64(n),
		FeatureDark:        float64(dark) / float64(n),
	}
}

func edgeDensity(g *image.Gray) float64 {
	mag, _ := SobelMagnitude(g)
	if len(mag) == 0 {
		return 0
	}
	strong := 0
	for _, m := range mag {
		if m > edgeMagnitude {
			strong++
		}
	}
	return float64(strong) / float64(len(mag))
}

// gradientCoherence оценивает преобладание одного направления градиента
// по собственным числам структурного тензора. 0 у изотропной текстуры, 1 у параллельных штрихов.
func gradientCoherence(g *image.Gray) float64 {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	at := func(x, y int) float64 {
		x, y = reflect101(x, w), reflect101(y, h)
		return float64(g.Pix[(y+b.Min.Y-g.Rect.Min.Y)*g.Stride+x+b.Min.X-g.Rect.Min.X])
	}

	var jxx, jyy, jxy float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gx := (at(x+1, y) - at(x-1, y)) / 2
			gy := (at(x, y+1) - at(x, y-1)) / 2
			jxx += gx * gx
			jyy += gy * gy
			jxy += gx * gy
		}
	}
	trace := jxx + jyy
	if trace == 0 {
		return 0
	}
	return math.Sqrt((jxx-jyy)*(jxx-jyy)+4*jxy*jxy) / trace
}
