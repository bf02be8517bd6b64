package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefectAreaCenter(t *testing.T) {
	d := DefectArea{X: 10, Y: 20, Width: 8, Height: 6}
	x, y := d.Center()
	require.Equal(t, 14, x)
	require.Equal(t, 23, y)
}

func TestDefectAreaScale(t *testing.T) {
	d := DefectArea{X: 10, Y: 20, Width: 8, Height: 6, Area: 30}
	s := d.Scale(2, 2)
	require.Equal(t, DefectArea{X: 20, Y: 40, Width: 16, Height: 12, Area: 120}, s)
}

func TestDefectAreaScale_KeepsMinimumSize(t *testing.T) {
	d := DefectArea{X: 3, Y: 3, Width: 1, Height: 1, Area: 1}
	s := d.Scale(0.1, 0.1)
	require.Equal(t, 1, s.Width)
	require.Equal(t, 1, s.Height)
}
