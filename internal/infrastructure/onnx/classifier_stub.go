//go:build !onnx
// +build !onnx

package onnx

import (
	"context"

	"surface-inspector/internal/domain/entity"
)

// Options параметры ONNX классификатора.
type Options struct {
	ModelPath   string
	LibraryPath string
	PoolSize    int
}

// Classifier заглушка для сборки без тега onnx.
type Classifier struct{}

// NewClassifier возвращает ошибку, если сборка без тега onnx.
func NewClassifier(opts Options) (*Classifier, error) {
	_ = opts
	return nil, entity.NewError(entity.KindModelUnavailable, "onnx.init", "onnx build tag is not enabled")
}

// Score возвращает ошибку, если сборка без тега onnx.
func (c *Classifier) Score(ctx context.Context, img *entity.AnalysisImage) (float64, error) {
	_ = img
	return 0, entity.NewError(entity.KindModelUnavailable, "onnx.score", "onnx build tag is not enabled")
}

// ModelVersion пустая строка у заглушки.
func (c *Classifier) ModelVersion() string {
	return ""
}

// Close ничего не делает у заглушки.
func (c *Classifier) Close() error {
	return nil
}
