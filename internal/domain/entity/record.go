package entity

import "time"

// Значения по умолчанию для записей без идентификаторов.
const (
	DefaultInspector = "Edge Inspector"
	DefaultBatch     = "BATCH-001"
	DefaultProduct   = "Metal Surface Inspection"
)

// Subject идентификаторы, переданные вызывающей стороной.
type Subject struct {
	Inspector string
	Batch     string
	Product   string
}

// WithDefaults заполняет пустые поля значениями по умолчанию.
func (s Subject) WithDefaults() Subject {
	if s.Inspector == "" {
		s.Inspector = DefaultInspector
	}
	if s.Batch == "" {
		s.Batch = DefaultBatch
	}
	if s.Product == "" {
		s.Product = DefaultProduct
	}
	return s
}

// InspectionRecord одна сохранённая инспекция.
type InspectionRecord struct {
	ID        string
	Subject   Subject
	CreatedAt time.Time
	Result    InspectionResult
}

// InspectionStats агрегаты по сохранённым инспекциям.
type InspectionStats struct {
	Total     int64 `json:"total"`
	Passed    int64 `json:"passed"`
	Failed    int64 `json:"failed"`
	Rejected  int64 `json:"rejected"`
	Uncertain int64 `json:"uncertain"`
}
