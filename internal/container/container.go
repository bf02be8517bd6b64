package container

import (
	"errors"

	"surface-inspector/config"
	app "surface-inspector/internal/application"
	"surface-inspector/internal/domain/entity"
	"surface-inspector/internal/domain/policy"
	"surface-inspector/internal/domain/port"
	"surface-inspector/internal/infrastructure/notify"
	"surface-inspector/internal/infrastructure/onnx"
	"surface-inspector/internal/infrastructure/storage"
	"surface-inspector/internal/infrastructure/vision"
	"surface-inspector/internal/logger"
)

// Container держит собранные сервисы приложения.
type Container struct {
	UserService       *app.UserService
	InspectionService *app.InspectionService
	Dispatcher        *notify.Dispatcher

	closers []func() error
}

// New собирает сервисы приложения по конфигурации. sender нужен только для
// оповещений в Telegram и может быть nil.
func New(cfg *config.Config, sender notify.Sender) (*Container, error) {
	c := &Container{}

	classifier, err := c.newClassifier(cfg)
	if err != nil {
		c.Close()
		return nil, err
	}

	prep, edges, err := newVision(cfg)
	if err != nil {
		c.Close()
		return nil, err
	}

	pipelineCfg := StageConfig(cfg.Pipeline)
	gate, err := app.NewGatekeeper(classifier, pipelineCfg.Gate)
	if err != nil {
		c.Close()
		return nil, err
	}
	pipeline := app.NewPipeline(prep, gate, edges, pipelineCfg)

	db, err := storage.OpenSQLite(cfg.DatabasePath)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.closers = append(c.closers, func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})

	reports, err := storage.NewFileReportStore(cfg.ReportsDir)
	if err != nil {
		c.Close()
		return nil, err
	}

	dispatcher, err := notify.NewDispatcher(notify.NewLogNotifier(nil))
	if err != nil {
		c.Close()
		return nil, err
	}
	if sender != nil && cfg.TelegramAlertChatID != 0 {
		if err := dispatcher.Subscribe(notify.NewTelegramNotifier(sender, cfg.TelegramAlertChatID)); err != nil {
			c.Close()
			return nil, err
		}
	}
	c.Dispatcher = dispatcher
	c.closers = append(c.closers, func() error {
		dispatcher.Wait()
		return nil
	})

	highlighter := vision.NewHighlighter()
	highlighter.MaxPixels = cfg.Pipeline.MaxDecodePixels

	c.UserService = app.NewUserService(storage.NewMemoryUserRepository())
	c.InspectionService = app.NewInspectionService(
		pipeline,
		highlighter,
		storage.NewInspectionRepository(db),
		reports,
		dispatcher,
		map[string]string{
			"edge_detector":      "sobel-otsu",
			"vision_backend":     cfg.VisionBackend,
			"gatekeeper_backend": cfg.GatekeeperBackend,
		},
	)

	logger.WithField("gatekeeper_model", classifier.ModelVersion()).
		WithField("gatekeeper_backend", cfg.GatekeeperBackend).
		WithField("vision_backend", cfg.VisionBackend).
		Info("inspection pipeline ready")

	return c, nil
}

// StageConfig переводит пороги конфигурации в параметры стадий.
func StageConfig(p config.PipelineConfig) app.PipelineConfig {
	return app.PipelineConfig{
		Gate: policy.GateConfig{
			AcceptThreshold: p.AcceptThreshold,
			UncertainMargin: p.UncertainMargin,
		},
		Score: policy.ScoreConfig{
			ScaleFactor: p.ScaleFactor,
			Min:         p.ScoreMin,
			Max:         p.ScoreMax,
		},
		Decision: policy.DecisionConfig{
			PassScoreMin:  p.PassScoreMin,
			PassDefectMax: p.PassDefectMax,
		},
	}
}

func (c *Container) newClassifier(cfg *config.Config) (port.SurfaceClassifier, error) {
	switch cfg.GatekeeperBackend {
	case config.BackendONNX:
		cl, err := onnx.NewClassifier(onnx.Options{
			ModelPath:   cfg.GatekeeperModelPath,
			LibraryPath: cfg.ONNXLibraryPath,
			PoolSize:    cfg.ONNXPoolSize,
		})
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, cl.Close)
		return cl, nil
	default:
		model, err := vision.LoadSurfaceModel(cfg.GatekeeperModelPath)
		if err != nil {
			return nil, err
		}
		return vision.NewSurfaceClassifier(model)
	}
}

func newVision(cfg *config.Config) (port.Preprocessor, port.EdgeDetector, error) {
	prepOpts := vision.PreprocessOptions{
		MaxDimension: cfg.Pipeline.ResizeMaxDimension,
		ClipLimit:    cfg.Pipeline.ClaheClipLimit,
		TileGrid:     cfg.Pipeline.ClaheTiles,
		MaxPixels:    cfg.Pipeline.MaxDecodePixels,
	}
	edgeOpts := vision.EdgeOptions{MinComponentArea: cfg.Pipeline.MinComponentArea}

	if cfg.VisionBackend == config.BackendGoCV {
		if !vision.GoCVEnabled {
			return nil, nil, entity.NewError(entity.KindConfiguration, "container.vision", "VISION_BACKEND=gocv requires the gocv build tag")
		}
		p := vision.NewGoCVPipeline(prepOpts, edgeOpts)
		return p, p, nil
	}
	return vision.NewPreprocessor(prepOpts), vision.NewEdgeDetector(edgeOpts), nil
}

// Close освобождает ресурсы в обратном порядке.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
