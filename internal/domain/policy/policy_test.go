package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surface-inspector/internal/domain/entity"
)

func TestScore_UniformSurfaceHitsUpperClamp(t *testing.T) {
	require.Equal(t, 99.0, Score(entity.EdgeMetrics{}, DefaultScoreConfig()))
}

func TestScore_LowerClamp(t *testing.T) {
	got := Score(entity.EdgeMetrics{EdgePixelRatio: 0.8}, DefaultScoreConfig())
	require.Equal(t, 10.0, got)
}

func TestScore_LinearRange(t *testing.T) {
	got := Score(entity.EdgeMetrics{EdgePixelRatio: 0.1}, DefaultScoreConfig())
	require.InDelta(t, 80.0, got, 1e-9)
}

func TestScore_ClampAppliedAfterTransform(t *testing.T) {
	// ratio 0.004 даёт raw 99.2, который срезается до 99, а не до 100-0.4.
	got := Score(entity.EdgeMetrics{EdgePixelRatio: 0.004}, DefaultScoreConfig())
	require.Equal(t, 99.0, got)

	got = Score(entity.EdgeMetrics{EdgePixelRatio: 0.006}, DefaultScoreConfig())
	require.InDelta(t, 98.8, got, 1e-9)
}

func TestScore_CustomScale(t *testing.T) {
	cfg := ScoreConfig{ScaleFactor: 1, Min: 10, Max: 99}
	require.InDelta(t, 70.0, Score(entity.EdgeMetrics{EdgePixelRatio: 0.3}, cfg), 1e-9)
}

func TestDecide_Boundaries(t *testing.T) {
	cfg := DefaultDecisionConfig()

	cases := []struct {
		name    string
		score   float64
		defects int
		want    entity.Status
	}{
		{"exact thresholds pass", 90, 5, entity.StatusPass},
		{"score just below", 89.9, 5, entity.StatusFail},
		{"too many defects", 95, 6, entity.StatusFail},
		{"clean surface", 99, 0, entity.StatusPass},
		{"both violated", 40, 12, entity.StatusFail},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := Decide(tc.score, tc.defects, cfg)
			assert.Equal(t, tc.want, r.Status)
			require.NotNil(t, r.HealthScore)
			require.NotNil(t, r.DefectCount)
			assert.Equal(t, tc.score, *r.HealthScore)
			assert.Equal(t, tc.defects, *r.DefectCount)
		})
	}
}

func TestDecide_Reasons(t *testing.T) {
	cfg := DefaultDecisionConfig()
	assert.Equal(t, entity.ReasonWithinLimits, Decide(95, 1, cfg).Reason)
	assert.Equal(t, entity.ReasonLowScore, Decide(50, 1, cfg).Reason)
	assert.Equal(t, entity.ReasonTooManyDefect, Decide(95, 9, cfg).Reason)
	assert.Equal(t, entity.ReasonLowScore+"; "+entity.ReasonTooManyDefect, Decide(50, 9, cfg).Reason)
}

func TestDecide_ConfigurableThresholds(t *testing.T) {
	cfg := DecisionConfig{PassScoreMin: 70, PassDefectMax: 20}
	assert.Equal(t, entity.StatusPass, Decide(75, 15, cfg).Status)
}

func TestJudge(t *testing.T) {
	cfg := DefaultGateConfig()

	v := Judge(0.5, cfg)
	assert.True(t, v.IsMetal)
	assert.False(t, v.Uncertain)

	v = Judge(0.49, cfg)
	assert.False(t, v.IsMetal)

	v = Judge(1.7, cfg)
	assert.Equal(t, 1.0, v.Confidence)
}

func TestJudge_UncertainBand(t *testing.T) {
	cfg := GateConfig{AcceptThreshold: 0.5, UncertainMargin: 0.05}

	assert.True(t, Judge(0.46, cfg).Uncertain)
	assert.True(t, Judge(0.54, cfg).Uncertain)
	assert.False(t, Judge(0.40, cfg).Uncertain)
	assert.False(t, Judge(0.60, cfg).Uncertain)
}
