//go:build onnx
// +build onnx

package onnx

import (
	"context"
	"math"
	"path/filepath"
	"strings"

	ort "github.com/yalue/onnxruntime_go"

	"surface-inspector/internal/domain/entity"
)

// Options параметры ONNX классификатора.
type Options struct {
	ModelPath   string
	LibraryPath string
	PoolSize    int
}

// Classifier гейткипер на ONNX Runtime. Модель выдаёт вероятность металла [1,1].
type Classifier struct {
	pool    *sessionPool
	version string
}

// NewClassifier инициализирует окружение ONNX Runtime и пул сессий.
func NewClassifier(opts Options) (*Classifier, error) {
	if opts.LibraryPath != "" {
		ort.SetSharedLibraryPath(opts.LibraryPath)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, entity.Wrap(entity.KindModelUnavailable, "onnx.init", "failed to initialize onnxruntime", err)
		}
	}

	pool, err := newSessionPool(opts.ModelPath, opts.PoolSize)
	if err != nil {
		return nil, err
	}

	base := filepath.Base(opts.ModelPath)
	return &Classifier{
		pool:    pool,
		version: strings.TrimSuffix(base, filepath.Ext(base)),
	}, nil
}

// Score берёт сессию из пула и возвращает вероятность металла.
func (c *Classifier) Score(ctx context.Context, img *entity.AnalysisImage) (float64, error) {
	if img == nil || img.Gray == nil {
		return 0, entity.NewError(entity.KindInternal, "onnx.score", "analysis image is nil")
	}

	s, err := c.pool.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer c.pool.release(s)

	FillInput(img.Gray, s.input.GetData())
	if err := s.run.Run(); err != nil {
		return 0, entity.Wrap(entity.KindInference, "onnx.score", "inference failed", err)
	}

	p := float64(s.output.GetData()[0])
	if math.IsNaN(p) {
		return 0, entity.NewError(entity.KindInference, "onnx.score", "model returned NaN")
	}
	return math.Min(1, math.Max(0, p)), nil
}

// ModelVersion имя файла модели без расширения.
func (c *Classifier) ModelVersion() string {
	return c.version
}

// Close освобождает сессии и окружение.
func (c *Classifier) Close() error {
	c.pool.destroy()
	return ort.DestroyEnvironment()
}
