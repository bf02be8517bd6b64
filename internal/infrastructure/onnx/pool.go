//go:build onnx
// +build onnx

package onnx

import (
	"context"
	"sync"
	"time"

	ort "github.com/yalue/onnxruntime_go"

	"surface-inspector/internal/domain/entity"
)

const (
	DefaultPoolSize = 2
	AcquireTimeout  = 5 * time.Second
)

// session одна сессия ONNX Runtime со своими тензорами.
type session struct {
	run    *ort.AdvancedSession
	input  *ort.Tensor[float32]
	output *ort.Tensor[float32]
}

func (s *session) destroy() {
	if s.run != nil {
		s.run.Destroy()
	}
	if s.input != nil {
		s.input.Destroy()
	}
	if s.output != nil {
		s.output.Destroy()
	}
}

// sessionPool ограниченный пул сессий: сессия не реентерабельна,
// каждый вызов берёт свою.
type sessionPool struct {
	sessions chan *session
	mu       sync.Mutex
	closed   bool
}

func newSessionPool(modelPath string, size int) (*sessionPool, error) {
	if size <= 0 {
		size = DefaultPoolSize
	}
	p := &sessionPool{sessions: make(chan *session, size)}
	for i := 0; i < size; i++ {
		s, err := newSession(modelPath)
		if err != nil {
			p.destroy()
			return nil, err
		}
		p.sessions <- s
	}
	return p, nil
}

func newSession(modelPath string) (*session, error) {
	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, entity.Wrap(entity.KindModelUnavailable, "onnx.session", "error creating session options", err)
	}
	defer options.Destroy()

	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 3, InputHeight, InputWidth))
	if err != nil {
		return nil, entity.Wrap(entity.KindModelUnavailable, "onnx.session", "error creating input tensor", err)
	}
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1))
	if err != nil {
		input.Destroy()
		return nil, entity.Wrap(entity.KindModelUnavailable, "onnx.session", "error creating output tensor", err)
	}

	run, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"input"},
		[]string{"output"},
		[]ort.ArbitraryTensor{input},
		[]ort.ArbitraryTensor{output},
		options,
	)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, entity.Wrap(entity.KindModelUnavailable, "onnx.session", "error creating session", err)
	}
	return &session{run: run, input: input, output: output}, nil
}

func (p *sessionPool) acquire(ctx context.Context) (*session, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil, entity.NewError(entity.KindModelUnavailable, "onnx.pool", "pool is closed")
	}

	timer := time.NewTimer(AcquireTimeout)
	defer timer.Stop()

	select {
	case s, ok := <-p.sessions:
		if !ok {
			return nil, entity.NewError(entity.KindModelUnavailable, "onnx.pool", "pool is closed")
		}
		return s, nil
	case <-timer.C:
		return nil, entity.NewError(entity.KindTimeout, "onnx.pool", "timeout waiting for available session")
	case <-ctx.Done():
		return nil, entity.Wrap(entity.KindTimeout, "onnx.pool", "inspection cancelled", ctx.Err())
	}
}

func (p *sessionPool) release(s *session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		s.destroy()
		return
	}
	p.sessions <- s
}

func (p *sessionPool) destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.sessions)
	for s := range p.sessions {
		s.destroy()
	}
}
