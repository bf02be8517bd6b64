//go:build onnx
// +build onnx

package onnx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"surface-inspector/internal/domain/entity"
)

func TestSessionPool_AcquireAfterDestroy(t *testing.T) {
	p := &sessionPool{sessions: make(chan *session, 1)}
	p.destroy()

	s, err := p.acquire(context.Background())
	require.Nil(t, s)
	require.ErrorIs(t, err, entity.ErrModelUnavailable)
}

func TestSessionPool_AcquireFromClosedChannel(t *testing.T) {
	// Пул закрыли между проверкой флага и чтением из канала.
	p := &sessionPool{sessions: make(chan *session, 1)}
	close(p.sessions)

	s, err := p.acquire(context.Background())
	require.Nil(t, s)
	require.ErrorIs(t, err, entity.ErrModelUnavailable)
}

func TestSessionPool_ReleaseAfterDestroy(t *testing.T) {
	p := &sessionPool{sessions: make(chan *session, 1)}
	p.sessions <- &session{}

	s, err := p.acquire(context.Background())
	require.NoError(t, err)
	p.destroy()

	require.NotPanics(t, func() { p.release(s) })
}

func TestSessionPool_CancelledContext(t *testing.T) {
	p := &sessionPool{sessions: make(chan *session, 1)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.acquire(ctx)
	require.True(t, entity.IsKind(err, entity.KindTimeout))
}
