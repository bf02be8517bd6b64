package entity

import "image"

// Status итоговый статус инспекции.
type Status string

const (
	StatusPass      Status = "PASS"      // поверхность в пределах допусков
	StatusFail      Status = "FAIL"      // превышены допуски по оценке или числу дефектов
	StatusRejected  Status = "REJECTED"  // изображение не похоже на металлическую поверхность
	StatusUncertain Status = "UNCERTAIN" // уверенность гейткипера в пограничной зоне
)

// Причины, которые попадают в InspectionResult.Reason.
const (
	ReasonNonMetal      = "non-metal surface"
	ReasonUncertain     = "surface unclear, retake image"
	ReasonWithinLimits  = "within thresholds"
	ReasonLowScore      = "health score below minimum"
	ReasonTooManyDefect = "defect count above maximum"
)

// AnalysisImage одноканальное изображение фиксированного масштаба после выравнивания контраста.
type AnalysisImage struct {
	Gray         *image.Gray
	SourceWidth  int // ширина исходного изображения до уменьшения
	SourceHeight int // высота исходного изображения до уменьшения
}

// Width ширина изображения для анализа.
func (a *AnalysisImage) Width() int {
	return a.Gray.Bounds().Dx()
}

// Height высота изображения для анализа.
func (a *AnalysisImage) Height() int {
	return a.Gray.Bounds().Dy()
}

// GatekeeperVerdict решение классификатора металл / не металл.
type GatekeeperVerdict struct {
	IsMetal    bool
	Uncertain  bool
	Confidence float64 // вероятность металла в [0,1]
}

// EdgeMetrics метрики карты границ.
type EdgeMetrics struct {
	EdgePixelRatio float64      // доля пикселей переднего плана
	DefectCount    int          // число связных областей после фильтра площади
	Threshold      uint8        // порог Оцу на нормированной магнитуде
	Regions        []DefectArea // области в координатах AnalysisImage
}

// InspectionResult хранит итог анализа изображения.
type InspectionResult struct {
	Status         Status
	HealthScore    *float64 // nil, если гейткипер остановил конвейер
	DefectCount    *int     // nil, если гейткипер остановил конвейер
	Reason         string
	Confidence     float64      // уверенность гейткипера
	EdgePixelRatio float64      // доля границ
	Defects        []DefectArea // найденные дефекты
	ImageWidth     int          // ширина изображения для анализа
	ImageHeight    int          // высота изображения для анализа
	SourceWidth    int          // ширина исходного изображения
	SourceHeight   int          // высота исходного изображения
}

// HasDefects флаг наличия дефектов.
func (r InspectionResult) HasDefects() bool {
	return len(r.Defects) > 0
}

// Score возвращает оценку и признак её наличия.
func (r InspectionResult) Score() (float64, bool) {
	if r.HealthScore == nil {
		return 0, false
	}
	return *r.HealthScore, true
}

// DefectTotal возвращает число дефектов и признак его наличия.
func (r InspectionResult) DefectTotal() (int, bool) {
	if r.DefectCount == nil {
		return 0, false
	}
	return *r.DefectCount, true
}
