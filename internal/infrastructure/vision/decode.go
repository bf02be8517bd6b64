package vision

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"surface-inspector/internal/domain/entity"
)

// DefaultMaxDecodePixels предел числа пикселей декодируемого изображения.
const DefaultMaxDecodePixels = 40_000_000

// checkPixelBudget читает только заголовок и отклоняет изображения больше maxPixels.
// maxPixels <= 0 снимает ограничение.
func checkPixelBudget(imageData []byte, maxPixels int) error {
	if len(imageData) == 0 {
		return entity.NewError(entity.KindDecode, "vision.decode", "empty image payload")
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(imageData))
	if err != nil {
		return entity.Wrap(entity.KindDecode, "vision.decode", "failed to read image header", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return entity.NewError(entity.KindDecode, "vision.decode", "zero-size image")
	}
	if maxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return entity.NewError(entity.KindDecode, "vision.decode",
			fmt.Sprintf("image %dx%d exceeds %d pixel limit", cfg.Width, cfg.Height, maxPixels))
	}
	return nil
}

// decodeImage превращает байты изображения в image.Image после проверки размера.
func decodeImage(imageData []byte, maxPixels int) (image.Image, error) {
	if err := checkPixelBudget(imageData, maxPixels); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, entity.Wrap(entity.KindDecode, "vision.decode", "failed to decode image", err)
	}

	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, entity.NewError(entity.KindDecode, "vision.decode", "zero-size image")
	}
	return img, nil
}
