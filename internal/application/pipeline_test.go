package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"surface-inspector/internal/domain/entity"
	"surface-inspector/internal/domain/policy"
	"surface-inspector/internal/infrastructure/vision"
)

func TestPipeline_RejectedSkipsEdgeAnalysis(t *testing.T) {
	classifier := confidentClassifier(0.2)
	edges := &edgeDetectorMock{}

	gate, err := NewGatekeeper(classifier, policy.DefaultGateConfig())
	require.NoError(t, err)
	p := NewPipeline(vision.NewPreprocessor(vision.DefaultPreprocessOptions()), gate, edges, DefaultPipelineConfig())

	result, err := p.Run(context.Background(), uniformPhoto(t))
	require.NoError(t, err)
	require.Equal(t, entity.StatusRejected, result.Status)
	require.Equal(t, entity.ReasonNonMetal, result.Reason)
	require.Nil(t, result.HealthScore)
	require.Nil(t, result.DefectCount)
	require.InDelta(t, 0.2, result.Confidence, 1e-9)
	edges.AssertNotCalled(t, "Detect", mock.Anything)
}

func TestPipeline_ThresholdIsInclusive(t *testing.T) {
	p := newTestPipeline(t, confidentClassifier(0.5), DefaultPipelineConfig())
	result, err := p.Run(context.Background(), uniformPhoto(t))
	require.NoError(t, err)
	require.Equal(t, entity.StatusPass, result.Status)
}

func TestPipeline_UniformGrayScoresMaximum(t *testing.T) {
	p := newTestPipeline(t, confidentClassifier(0.9), DefaultPipelineConfig())

	result, err := p.Run(context.Background(), uniformPhoto(t))
	require.NoError(t, err)
	require.Equal(t, entity.StatusPass, result.Status)

	score, ok := result.Score()
	require.True(t, ok)
	require.Equal(t, 99.0, score)
	defects, ok := result.DefectTotal()
	require.True(t, ok)
	require.Zero(t, defects)
	require.Zero(t, result.EdgePixelRatio)
	require.Equal(t, 64, result.ImageWidth)
	require.Equal(t, 64, result.SourceHeight)
}

func TestPipeline_DenseEdgesClampToMinimum(t *testing.T) {
	p := newTestPipeline(t, confidentClassifier(0.9), DefaultPipelineConfig())

	result, err := p.Run(context.Background(), stripedPhoto(t))
	require.NoError(t, err)
	require.Equal(t, entity.StatusFail, result.Status)
	require.Equal(t, entity.ReasonLowScore, result.Reason)

	score, _ := result.Score()
	require.Equal(t, 10.0, score)
	require.True(t, result.HasDefects())
}

func TestPipeline_Idempotent(t *testing.T) {
	p := newTestPipeline(t, confidentClassifier(0.9), DefaultPipelineConfig())
	photo := stripedPhoto(t)

	first, err := p.Run(context.Background(), photo)
	require.NoError(t, err)
	second, err := p.Run(context.Background(), photo)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestPipeline_DecodeError(t *testing.T) {
	classifier := &classifierMock{}
	p := newTestPipeline(t, classifier, DefaultPipelineConfig())

	_, err := p.Run(context.Background(), []byte("plain text"))
	require.ErrorIs(t, err, entity.ErrDecode)
	classifier.AssertNotCalled(t, "Score", mock.Anything, mock.Anything)
}

func TestPipeline_UncertainBand(t *testing.T) {
	cfg := DefaultPipelineConfig()
	cfg.Gate.UncertainMargin = 0.05
	edges := &edgeDetectorMock{}

	gate, err := NewGatekeeper(confidentClassifier(0.53), cfg.Gate)
	require.NoError(t, err)
	p := NewPipeline(vision.NewPreprocessor(vision.DefaultPreprocessOptions()), gate, edges, cfg)

	result, err := p.Run(context.Background(), uniformPhoto(t))
	require.NoError(t, err)
	require.Equal(t, entity.StatusUncertain, result.Status)
	require.Equal(t, entity.ReasonUncertain, result.Reason)
	require.Nil(t, result.HealthScore)
	edges.AssertNotCalled(t, "Detect", mock.Anything)
}

func TestPipeline_ClassifierFailure(t *testing.T) {
	classifier := &classifierMock{}
	classifier.On("Score", mock.Anything, mock.Anything).Return(0.0, errors.New("session lost"))
	p := newTestPipeline(t, classifier, DefaultPipelineConfig())

	_, err := p.Run(context.Background(), uniformPhoto(t))
	require.True(t, entity.IsKind(err, entity.KindInference))
}

func TestPipeline_UsesDetectorMetrics(t *testing.T) {
	edges := &edgeDetectorMock{}
	edges.On("Detect", mock.Anything).Return(entity.EdgeMetrics{
		EdgePixelRatio: 0.03,
		DefectCount:    6,
		Regions:        make([]entity.DefectArea, 6),
	}, nil)

	gate, err := NewGatekeeper(confidentClassifier(0.95), policy.DefaultGateConfig())
	require.NoError(t, err)
	p := NewPipeline(vision.NewPreprocessor(vision.DefaultPreprocessOptions()), gate, edges, DefaultPipelineConfig())

	result, err := p.Run(context.Background(), uniformPhoto(t))
	require.NoError(t, err)
	// 100 - 0.03*200 = 94, но дефектов больше пяти.
	require.Equal(t, entity.StatusFail, result.Status)
	require.Equal(t, entity.ReasonTooManyDefect, result.Reason)
	score, _ := result.Score()
	require.InDelta(t, 94.0, score, 1e-9)
	edges.AssertNumberOfCalls(t, "Detect", 1)
}

func TestNewGatekeeper_RequiresClassifier(t *testing.T) {
	_, err := NewGatekeeper(nil, policy.DefaultGateConfig())
	require.ErrorIs(t, err, entity.ErrModelUnavailable)
}
