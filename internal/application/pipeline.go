package app

import (
	"context"

	"surface-inspector/internal/domain/entity"
	"surface-inspector/internal/domain/policy"
	"surface-inspector/internal/domain/port"
)

// PipelineConfig пороги всех стадий в одном месте.
type PipelineConfig struct {
	Gate     policy.GateConfig
	Score    policy.ScoreConfig
	Decision policy.DecisionConfig
}

// DefaultPipelineConfig значения по умолчанию для всех стадий.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Gate:     policy.DefaultGateConfig(),
		Score:    policy.DefaultScoreConfig(),
		Decision: policy.DefaultDecisionConfig(),
	}
}

// Pipeline двухступенчатый конвейер: гейткипер, затем анализ границ.
type Pipeline struct {
	prep   port.Preprocessor
	gate   *Gatekeeper
	edges  port.EdgeDetector
	cfg    PipelineConfig
	stages []stage
}

// run состояние одного прохода конвейера.
type run struct {
	data    []byte
	img     *entity.AnalysisImage
	verdict entity.GatekeeperVerdict
	metrics entity.EdgeMetrics
	result  entity.InspectionResult
	done    bool
}

type stage func(ctx context.Context, r *run) error

// NewPipeline собирает конвейер.
func NewPipeline(prep port.Preprocessor, gate *Gatekeeper, edges port.EdgeDetector, cfg PipelineConfig) *Pipeline {
	p := &Pipeline{prep: prep, gate: gate, edges: edges, cfg: cfg}
	p.stages = []stage{p.preprocess, p.admit, p.detect, p.decide}
	return p
}

// Run прогоняет изображение через все стадии. Отказ гейткипера это результат, а не ошибка.
func (p *Pipeline) Run(ctx context.Context, imageData []byte) (entity.InspectionResult, error) {
	r := &run{data: imageData}
	for _, s := range p.stages {
		if err := s(ctx, r); err != nil {
			return entity.InspectionResult{}, err
		}
		if r.done {
			break
		}
	}
	if r.img != nil {
		r.result.ImageWidth = r.img.Width()
		r.result.ImageHeight = r.img.Height()
		r.result.SourceWidth = r.img.SourceWidth
		r.result.SourceHeight = r.img.SourceHeight
	}
	r.result.Confidence = r.verdict.Confidence
	return r.result, nil
}

// ModelVersion версия модели гейткипера.
func (p *Pipeline) ModelVersion() string {
	return p.gate.ModelVersion()
}

func (p *Pipeline) preprocess(_ context.Context, r *run) error {
	img, err := p.prep.Preprocess(r.data)
	if err != nil {
		return entity.Wrap(entity.KindDecode, "pipeline.preprocess", "failed to prepare image", err)
	}
	r.img = img
	return nil
}

func (p *Pipeline) admit(ctx context.Context, r *run) error {
	verdict, err := p.gate.Classify(ctx, r.img)
	if err != nil {
		return err
	}
	r.verdict = verdict

	// Пограничная зона проверяется раньше порога.
	switch {
	case verdict.Uncertain:
		r.result = entity.InspectionResult{Status: entity.StatusUncertain, Reason: entity.ReasonUncertain}
		r.done = true
	case !verdict.IsMetal:
		r.result = entity.InspectionResult{Status: entity.StatusRejected, Reason: entity.ReasonNonMetal}
		r.done = true
	}
	return nil
}

func (p *Pipeline) detect(_ context.Context, r *run) error {
	metrics, err := p.edges.Detect(r.img)
	if err != nil {
		return entity.Wrap(entity.KindInternal, "pipeline.detect", "edge analysis failed", err)
	}
	r.metrics = metrics
	return nil
}

func (p *Pipeline) decide(_ context.Context, r *run) error {
	score := policy.Score(r.metrics, p.cfg.Score)
	r.result = policy.Decide(score, r.metrics.DefectCount, p.cfg.Decision)
	r.result.EdgePixelRatio = r.metrics.EdgePixelRatio
	r.result.Defects = r.metrics.Regions
	return nil
}
