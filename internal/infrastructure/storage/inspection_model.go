package storage

import (
	"time"

	"surface-inspector/internal/domain/entity"
)

// Inspection строка таблицы inspections.
type Inspection struct {
	ID           string    `gorm:"primaryKey;size:36"`
	CreatedAt    time.Time `gorm:"index"`
	Inspector    string    `gorm:"size:128"`
	Batch        string    `gorm:"size:128;index"`
	Product      string    `gorm:"size:256"`
	Status       string    `gorm:"size:16;index"`
	Score        *float64
	Defects      *int
	Confidence   float64
	EdgeRatio    float64
	Reason       string `gorm:"size:256"`
	ImageWidth   int
	ImageHeight  int
	SourceWidth  int
	SourceHeight int
}

// TableName имя таблицы.
func (Inspection) TableName() string {
	return "inspections"
}

func toModel(r *entity.InspectionRecord) *Inspection {
	return &Inspection{
		ID:           r.ID,
		CreatedAt:    r.CreatedAt.UTC(),
		Inspector:    r.Subject.Inspector,
		Batch:        r.Subject.Batch,
		Product:      r.Subject.Product,
		Status:       string(r.Result.Status),
		Score:        r.Result.HealthScore,
		Defects:      r.Result.DefectCount,
		Confidence:   r.Result.Confidence,
		EdgeRatio:    r.Result.EdgePixelRatio,
		Reason:       r.Result.Reason,
		ImageWidth:   r.Result.ImageWidth,
		ImageHeight:  r.Result.ImageHeight,
		SourceWidth:  r.Result.SourceWidth,
		SourceHeight: r.Result.SourceHeight,
	}
}

// fromModel восстанавливает запись. Области дефектов не хранятся.
func fromModel(m *Inspection) *entity.InspectionRecord {
	return &entity.InspectionRecord{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		Subject: entity.Subject{
			Inspector: m.Inspector,
			Batch:     m.Batch,
			Product:   m.Product,
		},
		Result: entity.InspectionResult{
			Status:         entity.Status(m.Status),
			HealthScore:    m.Score,
			DefectCount:    m.Defects,
			Reason:         m.Reason,
			Confidence:     m.Confidence,
			EdgePixelRatio: m.EdgeRatio,
			ImageWidth:     m.ImageWidth,
			ImageHeight:    m.ImageHeight,
			SourceWidth:    m.SourceWidth,
			SourceHeight:   m.SourceHeight,
		},
	}
}
