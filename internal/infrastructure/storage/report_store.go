package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"surface-inspector/internal/domain/entity"
	"surface-inspector/internal/domain/port"
)

// FileReportStore хранит отчёты как <dir>/<id>.json.
type FileReportStore struct {
	dir string
}

// NewFileReportStore создаёт хранилище и каталог отчётов.
func NewFileReportStore(dir string) (*FileReportStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, entity.Wrap(entity.KindStorage, "report.init", "failed to create reports directory", err)
	}
	return &FileReportStore{dir: dir}, nil
}

// SaveReport пишет отчёт через временный файл, чтобы читатель не увидел его наполовину.
func (s *FileReportStore) SaveReport(ctx context.Context, report *entity.Report) error {
	if report == nil {
		return entity.NewError(entity.KindStorage, "report.save", "report is nil")
	}
	path, err := s.path(report.ID)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return entity.Wrap(entity.KindInternal, "report.save", "failed to encode report", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".report-*.tmp")
	if err != nil {
		return entity.Wrap(entity.KindStorage, "report.save", "failed to create report file", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return entity.Wrap(entity.KindStorage, "report.save", "failed to write report", err)
	}
	if err := tmp.Close(); err != nil {
		return entity.Wrap(entity.KindStorage, "report.save", "failed to write report", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return entity.Wrap(entity.KindStorage, "report.save", "failed to store report", err)
	}
	return nil
}

// LoadReport читает отчёт по ID.
func (s *FileReportStore) LoadReport(ctx context.Context, id string) (*entity.Report, error) {
	path, err := s.path(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, entity.NewError(entity.KindNotFound, "report.load", "report not found")
		}
		return nil, entity.Wrap(entity.KindStorage, "report.load", "failed to read report", err)
	}

	var report entity.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, entity.Wrap(entity.KindStorage, "report.load", "corrupted report", err)
	}
	return &report, nil
}

// path строит путь только для корректного UUID, чтобы ID не выходил за каталог.
func (s *FileReportStore) path(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", entity.NewError(entity.KindNotFound, "report.path", "invalid report id")
	}
	return filepath.Join(s.dir, parsed.String()+".json"), nil
}

var _ port.ReportStore = (*FileReportStore)(nil)
