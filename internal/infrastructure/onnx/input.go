package onnx

import (
	"image"

	"github.com/disintegration/imaging"
)

// Размер входа классификатора.
const (
	InputWidth  = 224
	InputHeight = 224
)

// FillInput масштабирует серое изображение до входа модели и раскладывает
// его в NCHW, повторяя яркость во всех трёх каналах. Значения в [0,1].
func FillInput(g *image.Gray, dst []float32) {
	resized := imaging.Resize(g, InputWidth, InputHeight, imaging.Box)
	channel := InputWidth * InputHeight
	for y := 0; y < InputHeight; y++ {
		row := y * resized.Stride
		for x := 0; x < InputWidth; x++ {
			// NRGBA от серого источника: R == G == B.
			v := float32(resized.Pix[row+x*4]) / 255
			i := y*InputWidth + x
			dst[i] = v
			dst[channel+i] = v
			dst[2*channel+i] = v
		}
	}
}
