package vision

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"surface-inspector/internal/domain/entity"
)

const testModel = `
version: test-1
bias: 0.5
features:
  - name: coherence
    center: 0.0
    scale: 1.0
    weight: 2.0
`

func TestParseSurfaceModel(t *testing.T) {
	m, err := ParseSurfaceModel([]byte(testModel))
	require.NoError(t, err)
	require.Equal(t, "test-1", m.Version)
	require.Len(t, m.Features, 1)
}

func TestParseSurfaceModel_Invalid(t *testing.T) {
	cases := map[string]string{
		"unknown feature": "features:\n  - {name: colour, scale: 1, weight: 1}\n",
		"zero scale":      "features:\n  - {name: mean, scale: 0, weight: 1}\n",
		"no features":     "version: x\n",
		"broken yaml":     "features: [",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseSurfaceModel([]byte(data))
			require.ErrorIs(t, err, entity.ErrModelUnavailable)
		})
	}
}

func TestLoadSurfaceModel_Missing(t *testing.T) {
	_, err := LoadSurfaceModel("testdata/does-not-exist.yaml")
	require.ErrorIs(t, err, entity.ErrModelUnavailable)
}

func TestLoadSurfaceModel_Bundled(t *testing.T) {
	m, err := LoadSurfaceModel("../../../models/surface_gatekeeper.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, m.Version)

	c, err := NewSurfaceClassifier(m)
	require.NoError(t, err)

	img := &entity.AnalysisImage{Gray: stripes(64, 64)}
	a, err := c.Score(context.Background(), img)
	require.NoError(t, err)
	b, err := c.Score(context.Background(), img)
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.GreaterOrEqual(t, a, 0.0)
	require.LessOrEqual(t, a, 1.0)
}

func TestSurfaceClassifier_Probability(t *testing.T) {
	m, err := ParseSurfaceModel([]byte(testModel))
	require.NoError(t, err)
	c, err := NewSurfaceClassifier(m)
	require.NoError(t, err)

	// У полос все градиенты горизонтальны: когерентность 1, логит 2.5.
	p, err := c.Score(context.Background(), &entity.AnalysisImage{Gray: stripes(32, 32)})
	require.NoError(t, err)
	require.InDelta(t, 0.924, p, 0.001)

	// Однородное изображение: когерентность 0, логит 0.5.
	p, err = c.Score(context.Background(), &entity.AnalysisImage{Gray: uniformGray(32, 32, 80)})
	require.NoError(t, err)
	require.InDelta(t, 0.622, p, 0.001)
}

func TestLoadSurfaceModel_BundledRejectsFeaturelessSurface(t *testing.T) {
	m, err := LoadSurfaceModel("../../../models/surface_gatekeeper.yaml")
	require.NoError(t, err)
	c, err := NewSurfaceClassifier(m)
	require.NoError(t, err)

	p, err := c.Score(context.Background(), &entity.AnalysisImage{Gray: uniformGray(64, 64, 128)})
	require.NoError(t, err)
	require.InDelta(t, 0.114, p, 0.001)
}

func TestSurfaceClassifier_NilModel(t *testing.T) {
	_, err := NewSurfaceClassifier(nil)
	require.ErrorIs(t, err, entity.ErrModelUnavailable)
}

func TestSurfaceClassifier_CancelledContext(t *testing.T) {
	m, err := ParseSurfaceModel([]byte(testModel))
	require.NoError(t, err)
	c, err := NewSurfaceClassifier(m)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Score(ctx, &entity.AnalysisImage{Gray: uniformGray(8, 8, 1)})
	require.True(t, entity.IsKind(err, entity.KindTimeout))
}

func TestExtractFeatures_Uniform(t *testing.T) {
	f := ExtractFeatures(uniformGray(16, 16, 255))
	require.InDelta(t, 1.0, f[FeatureMean], 1e-9)
	require.Zero(t, f[FeatureStdDev])
	require.Zero(t, f[FeatureEntropy])
	require.Zero(t, f[FeatureCoherence])
	require.InDelta(t, 1.0, f[FeatureBright], 1e-9)
	require.Zero(t, f[FeatureDark])
}
