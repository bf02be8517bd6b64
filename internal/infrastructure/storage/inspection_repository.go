package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"surface-inspector/internal/domain/entity"
	"surface-inspector/internal/domain/port"
)

const maxListLimit = 500

// InspectionRepository хранилище инспекций в SQLite через gorm.
type InspectionRepository struct {
	db *gorm.DB
}

// NewInspectionRepository создаёт репозиторий.
func NewInspectionRepository(db *gorm.DB) *InspectionRepository {
	return &InspectionRepository{db: db}
}

// Save сохраняет запись.
func (r *InspectionRepository) Save(ctx context.Context, record *entity.InspectionRecord) error {
	if record == nil || record.ID == "" {
		return entity.NewError(entity.KindStorage, "inspection.save", "record without id")
	}
	if err := r.db.WithContext(ctx).Create(toModel(record)).Error; err != nil {
		return entity.Wrap(entity.KindStorage, "inspection.save", "failed to save inspection", err)
	}
	return nil
}

// FindByID ищет запись по ID.
func (r *InspectionRepository) FindByID(ctx context.Context, id string) (*entity.InspectionRecord, error) {
	var model Inspection
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.NewError(entity.KindNotFound, "inspection.find_by_id", "inspection not found")
		}
		return nil, entity.Wrap(entity.KindStorage, "inspection.find_by_id", "failed to find inspection", err)
	}
	return fromModel(&model), nil
}

// ListRecent возвращает последние записи, новые первыми.
func (r *InspectionRepository) ListRecent(ctx context.Context, limit int) ([]*entity.InspectionRecord, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	var models []Inspection
	if err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&models).Error; err != nil {
		return nil, entity.Wrap(entity.KindStorage, "inspection.list_recent", "failed to list inspections", err)
	}

	records := make([]*entity.InspectionRecord, len(models))
	for i := range models {
		records[i] = fromModel(&models[i])
	}
	return records, nil
}

// Stats считает записи по статусам.
func (r *InspectionRepository) Stats(ctx context.Context) (entity.InspectionStats, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&Inspection{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return entity.InspectionStats{}, entity.Wrap(entity.KindStorage, "inspection.stats", "failed to count inspections", err)
	}

	var stats entity.InspectionStats
	for _, row := range rows {
		stats.Total += row.Count
		switch entity.Status(row.Status) {
		case entity.StatusPass:
			stats.Passed = row.Count
		case entity.StatusFail:
			stats.Failed = row.Count
		case entity.StatusRejected:
			stats.Rejected = row.Count
		case entity.StatusUncertain:
			stats.Uncertain = row.Count
		}
	}
	return stats, nil
}

var _ port.InspectionRepository = (*InspectionRepository)(nil)

// Ping проверяет соединение с базой.
func (r *InspectionRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return entity.Wrap(entity.KindStorage, "inspection.ping", "failed to get connection pool", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return entity.Wrap(entity.KindStorage, "inspection.ping", "database is unreachable", err)
	}
	return nil
}
