package storage

import (
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"surface-inspector/internal/domain/entity"
)

// OpenSQLite открывает базу инспекций и применяет схему.
// Путь ":memory:" и DSN вида "file:..." передаются драйверу как есть.
func OpenSQLite(path string) (*gorm.DB, error) {
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, entity.Wrap(entity.KindStorage, "storage.open", "failed to create data directory", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, entity.Wrap(entity.KindStorage, "storage.open", "failed to open database", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate создаёт или обновляет таблицы.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Inspection{}); err != nil {
		return entity.Wrap(entity.KindStorage, "storage.migrate", "failed to migrate database", err)
	}
	return nil
}
