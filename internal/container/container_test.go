package container

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"surface-inspector/config"
	"surface-inspector/internal/domain/entity"
	"surface-inspector/internal/infrastructure/vision"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.DatabasePath = filepath.Join(dir, "inspections.db")
	cfg.ReportsDir = filepath.Join(dir, "reports")
	cfg.GatekeeperModelPath = filepath.Join("..", "..", "models", "surface_gatekeeper.yaml")
	return cfg
}

func uniformPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for i := range img.Pix {
		img.Pix[i] = 128
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNew_NativeBackends(t *testing.T) {
	cfg := testConfig(t)
	c, err := New(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, c.Close()) })

	require.Equal(t, 1, c.Dispatcher.Subscribers())
	require.Equal(t, "surface-logreg-2024.1", c.InspectionService.ModelVersions()["surface_gatekeeper"])
	require.Equal(t, 40_000_000, cfg.Pipeline.MaxDecodePixels)

	ctx := context.Background()
	require.True(t, c.InspectionService.Health(ctx).Ready())

	// Базовая модель отклоняет поверхность без текстуры.
	out, err := c.InspectionService.Inspect(ctx, uniformPNG(t), entity.Subject{})
	require.NoError(t, err)
	require.Equal(t, entity.StatusRejected, out.Record.Result.Status)
	require.Nil(t, out.Record.Result.HealthScore)

	report, err := c.InspectionService.GetReport(ctx, out.Record.ID)
	require.NoError(t, err)
	require.Equal(t, out.Record.ID, report.ID)

	recent, err := c.InspectionService.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
}

func TestNew_MissingModel(t *testing.T) {
	cfg := testConfig(t)
	cfg.GatekeeperModelPath = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := New(cfg, nil)
	require.ErrorIs(t, err, entity.ErrModelUnavailable)
}

func TestNew_ONNXMissingModel(t *testing.T) {
	cfg := testConfig(t)
	cfg.GatekeeperBackend = config.BackendONNX
	cfg.GatekeeperModelPath = filepath.Join(t.TempDir(), "missing.onnx")

	_, err := New(cfg, nil)
	require.ErrorIs(t, err, entity.ErrModelUnavailable)
}

func TestNew_GoCVWithoutBuildTag(t *testing.T) {
	if vision.GoCVEnabled {
		t.Skip("built with gocv")
	}
	cfg := testConfig(t)
	cfg.VisionBackend = config.BackendGoCV

	_, err := New(cfg, nil)
	require.ErrorIs(t, err, entity.ErrConfiguration)
}

func TestStageConfig(t *testing.T) {
	p := config.Default().Pipeline
	p.UncertainMargin = 0.05
	p.PassDefectMax = 3

	got := StageConfig(p)
	require.Equal(t, 0.5, got.Gate.AcceptThreshold)
	require.Equal(t, 0.05, got.Gate.UncertainMargin)
	require.Equal(t, 2.0, got.Score.ScaleFactor)
	require.Equal(t, 10.0, got.Score.Min)
	require.Equal(t, 99.0, got.Score.Max)
	require.Equal(t, 90.0, got.Decision.PassScoreMin)
	require.Equal(t, 3, got.Decision.PassDefectMax)
}
