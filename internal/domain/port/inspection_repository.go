package port

import (
	"context"

	"surface-inspector/internal/domain/entity"
)

// InspectionRepository хранилище записей инспекций
type InspectionRepository interface {
	// Save сохраняет запись
	Save(ctx context.Context, record *entity.InspectionRecord) error

	// FindByID возвращает запись или ошибку KindNotFound
	FindByID(ctx context.Context, id string) (*entity.InspectionRecord, error)

	// ListRecent возвращает последние записи, новые первыми
	ListRecent(ctx context.Context, limit int) ([]*entity.InspectionRecord, error)

	// Stats считает записи по статусам
	Stats(ctx context.Context) (entity.InspectionStats, error)

	// Ping проверяет, что хранилище отвечает
	Ping(ctx context.Context) error
}

// ReportStore хранилище двуязычных отчётов
type ReportStore interface {
	SaveReport(ctx context.Context, report *entity.Report) error
	LoadReport(ctx context.Context, id string) (*entity.Report, error)
}
