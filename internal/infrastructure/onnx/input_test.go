package onnx

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"surface-inspector/internal/domain/entity"
)

func TestFillInput_ReplicatesGrayAcrossChannels(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 448, 448))
	for i := range g.Pix {
		g.Pix[i] = 51
	}

	dst := make([]float32, 3*InputWidth*InputHeight)
	FillInput(g, dst)

	channel := InputWidth * InputHeight
	for _, i := range []int{0, 1000, channel - 1} {
		require.InDelta(t, 0.2, dst[i], 1e-6)
		require.Equal(t, dst[i], dst[channel+i])
		require.Equal(t, dst[i], dst[2*channel+i])
	}
}

func TestNewClassifier_MissingModel(t *testing.T) {
	_, err := NewClassifier(Options{ModelPath: "missing.onnx"})
	require.ErrorIs(t, err, entity.ErrModelUnavailable)
}
