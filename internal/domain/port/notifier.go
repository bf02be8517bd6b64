package port

import (
	"context"

	"surface-inspector/internal/domain/entity"
)

// Notifier оповещает ответственных о непройденной инспекции
type Notifier interface {
	NotifyFailure(ctx context.Context, record *entity.InspectionRecord) error
}
