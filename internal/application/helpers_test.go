package app

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"surface-inspector/internal/domain/entity"
	"surface-inspector/internal/infrastructure/vision"
)

type classifierMock struct {
	mock.Mock
}

func (m *classifierMock) Score(ctx context.Context, img *entity.AnalysisImage) (float64, error) {
	args := m.Called(ctx, img)
	return args.Get(0).(float64), args.Error(1)
}

func (m *classifierMock) ModelVersion() string {
	return "test-model"
}

type edgeDetectorMock struct {
	mock.Mock
}

func (m *edgeDetectorMock) Detect(img *entity.AnalysisImage) (entity.EdgeMetrics, error) {
	args := m.Called(img)
	return args.Get(0).(entity.EdgeMetrics), args.Error(1)
}

type recordingNotifier struct {
	mu      sync.Mutex
	records []*entity.InspectionRecord
}

func (n *recordingNotifier) NotifyFailure(ctx context.Context, record *entity.InspectionRecord) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.records = append(n.records, record)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.records)
}

func confidentClassifier(confidence float64) *classifierMock {
	c := &classifierMock{}
	c.On("Score", mock.Anything, mock.Anything).Return(confidence, nil)
	return c
}

func newTestPipeline(t *testing.T, classifier *classifierMock, cfg PipelineConfig) *Pipeline {
	t.Helper()
	gate, err := NewGatekeeper(classifier, cfg.Gate)
	require.NoError(t, err)
	return NewPipeline(
		vision.NewPreprocessor(vision.DefaultPreprocessOptions()),
		gate,
		vision.NewEdgeDetector(vision.DefaultEdgeOptions()),
		cfg,
	)
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func uniformPhoto(t *testing.T) []byte {
	g := image.NewGray(image.Rect(0, 0, 64, 64))
	for i := range g.Pix {
		g.Pix[i] = 128
	}
	return pngBytes(t, g)
}

// stripedPhoto вертикальные полосы через две колонки: границы почти везде.
func stripedPhoto(t *testing.T) []byte {
	g := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			if x%4 >= 2 {
				g.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return pngBytes(t, g)
}
