package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"surface-inspector/internal/domain/entity"
	"surface-inspector/internal/domain/port"
	"surface-inspector/internal/logger"
)

// Ключ версии модели гейткипера в отчёте.
const ModelKeyGatekeeper = "surface_gatekeeper"

type InspectionService struct {
	pipeline    *Pipeline
	highlighter port.DefectHighlighter
	repo        port.InspectionRepository
	reports     port.ReportStore
	notifier    port.Notifier
	versions    map[string]string

	now   func() time.Time
	newID func() string
}

// InspectionOutput содержит запись инспекции, отчёт и картинку с подсветкой.
type InspectionOutput struct {
	Record      *entity.InspectionRecord
	Report      *entity.Report
	Highlighted []byte
}

// NewInspectionService создаёт сервис инспекции. Хранилища и оповещение необязательны.
func NewInspectionService(
	pipeline *Pipeline,
	highlighter port.DefectHighlighter,
	repo port.InspectionRepository,
	reports port.ReportStore,
	notifier port.Notifier,
	versions map[string]string,
) *InspectionService {
	all := map[string]string{ModelKeyGatekeeper: pipeline.ModelVersion()}
	for k, v := range versions {
		all[k] = v
	}
	return &InspectionService{
		pipeline:    pipeline,
		highlighter: highlighter,
		repo:        repo,
		reports:     reports,
		notifier:    notifier,
		versions:    all,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// Inspect прогоняет фото через конвейер и передаёт итог хранилищам и оповещению.
// Сбой хранилищ или оповещения логируется и не меняет результат.
func (s *InspectionService) Inspect(ctx context.Context, photo []byte, subject entity.Subject) (*InspectionOutput, error) {
	started := time.Now()
	result, err := s.pipeline.Run(ctx, photo)
	if err != nil {
		logger.WithError(err).WithField("bytes", len(photo)).Warn("inspection aborted")
		return nil, err
	}

	record := &entity.InspectionRecord{
		ID:        s.newID(),
		Subject:   subject.WithDefaults(),
		CreatedAt: s.now(),
		Result:    result,
	}
	log := logger.WithFields(inspectionFields(record, time.Since(started)))
	log.Info("inspection completed")

	out := &InspectionOutput{Record: record, Report: BuildReport(record, s.versions)}

	if s.repo != nil {
		if err := s.repo.Save(ctx, record); err != nil {
			log.WithError(err).Error("failed to save inspection")
		}
	}
	if s.reports != nil {
		if err := s.reports.SaveReport(ctx, out.Report); err != nil {
			log.WithError(err).Error("failed to save report")
		}
	}
	if s.notifier != nil && result.Status == entity.StatusFail {
		if err := s.notifier.NotifyFailure(ctx, record); err != nil {
			log.WithError(err).Warn("failed to publish failure notification")
		}
	}
	if s.highlighter != nil && result.HasDefects() {
		highlighted, err := s.highlighter.HighlightDefects(photo, &record.Result)
		if err != nil {
			log.WithError(err).Warn("failed to highlight defects")
		} else {
			out.Highlighted = highlighted
		}
	}

	return out, nil
}

// GetReport возвращает сохранённый отчёт. Если файла нет, отчёт собирается из записи.
func (s *InspectionService) GetReport(ctx context.Context, id string) (*entity.Report, error) {
	if s.reports != nil {
		report, err := s.reports.LoadReport(ctx, id)
		if err == nil {
			return report, nil
		}
		if !entity.IsKind(err, entity.KindNotFound) {
			return nil, err
		}
	}
	if s.repo == nil {
		return nil, entity.NewError(entity.KindNotFound, "inspection.report", "report not found")
	}
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return BuildReport(record, s.versions), nil
}

// Recent возвращает последние записи.
func (s *InspectionService) Recent(ctx context.Context, limit int) ([]*entity.InspectionRecord, error) {
	if s.repo == nil {
		return nil, nil
	}
	return s.repo.ListRecent(ctx, limit)
}

// Stats считает записи по статусам.
func (s *InspectionService) Stats(ctx context.Context) (entity.InspectionStats, error) {
	if s.repo == nil {
		return entity.InspectionStats{}, nil
	}
	return s.repo.Stats(ctx)
}

// Health состояние зависимостей сервиса инспекции.
type Health struct {
	GatekeeperLoaded bool
	Storage          error // nil, если хранилище отвечает или не подключено
}

// Ready сообщает, что сервис может принимать инспекции.
func (h Health) Ready() bool {
	return h.GatekeeperLoaded && h.Storage == nil
}

// Health проверяет гейткипер и доступность хранилища.
func (s *InspectionService) Health(ctx context.Context) Health {
	h := Health{GatekeeperLoaded: s.pipeline != nil && s.pipeline.gate != nil}
	if s.repo != nil {
		h.Storage = s.repo.Ping(ctx)
	}
	return h
}

// ModelVersions версии используемых моделей.
func (s *InspectionService) ModelVersions() map[string]string {
	out := make(map[string]string, len(s.versions))
	for k, v := range s.versions {
		out[k] = v
	}
	return out
}

func inspectionFields(r *entity.InspectionRecord, took time.Duration) logrus.Fields {
	fields := logrus.Fields{
		"inspection_id": r.ID,
		"status":        r.Result.Status,
		"confidence":    r.Result.Confidence,
		"batch":         r.Subject.Batch,
		"duration_ms":   took.Milliseconds(),
	}
	if score, ok := r.Result.Score(); ok {
		fields["health_score"] = score
	}
	if defects, ok := r.Result.DefectTotal(); ok {
		fields["defect_count"] = defects
	}
	return fields
}
