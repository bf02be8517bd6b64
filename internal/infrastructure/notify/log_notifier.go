package notify

import (
	"context"

	"github.com/sirupsen/logrus"

	"surface-inspector/internal/domain/entity"
	"surface-inspector/internal/logger"
)

// LogNotifier пишет оповещение о браке в лог.
type LogNotifier struct {
	log *logrus.Logger
}

// NewLogNotifier создаёт получателя; nil означает общий логгер.
func NewLogNotifier(l *logrus.Logger) *LogNotifier {
	if l == nil {
		l = logger.Logger
	}
	return &LogNotifier{log: l}
}

// NotifyFailure логирует забракованную инспекцию.
func (n *LogNotifier) NotifyFailure(ctx context.Context, record *entity.InspectionRecord) error {
	fields := logrus.Fields{
		"inspection_id": record.ID,
		"inspector":     record.Subject.Inspector,
		"batch":         record.Subject.Batch,
		"status":        record.Result.Status,
		"reason":        record.Result.Reason,
	}
	if score, ok := record.Result.Score(); ok {
		fields["health_score"] = score
	}
	if defects, ok := record.Result.DefectTotal(); ok {
		fields["defect_count"] = defects
	}
	n.log.WithFields(fields).Warn("inspection failed")
	return nil
}
