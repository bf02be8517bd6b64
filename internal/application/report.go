package app

import (
	"math"

	"surface-inspector/internal/domain/entity"
)

const (
	reportTitle    = "ZENKENSA 検査報告書"
	reportSubtitle = "（Industrial Surface Inspection Report）"
	reportVersion  = "1.0"
	disclaimerJA   = "※ 本解析結果はAIによる参考指標です。最終判断は検査担当者の責任において行ってください。"
	disclaimerEN   = "This result is an AI-based reference indicator. Final judgment must be made by the responsible inspector."
	footerJA       = "※ 本レポートは品質管理支援を目的としています。"
	footerEN       = "This report is intended for quality management support."
)

// BuildReport собирает двуязычный отчёт по записи инспекции.
func BuildReport(record *entity.InspectionRecord, versions map[string]string) *entity.Report {
	res := record.Result
	result := entity.ReportResult{
		Status:   res.Status,
		StatusJA: res.Status.JapaneseLabel(),
		Reason:   res.Reason,
	}
	if score, ok := res.Score(); ok {
		rounded := round(score, 1)
		result.HealthScore = &rounded
	}
	if defects, ok := res.DefectTotal(); ok {
		result.DefectCount = &defects
	}

	copied := make(map[string]string, len(versions))
	for k, v := range versions {
		copied[k] = v
	}

	return &entity.Report{
		ID:           record.ID,
		Title:        reportTitle,
		Subtitle:     reportSubtitle,
		DateTime:     record.CreatedAt.Format("2006-01-02 15:04"),
		TimestampISO: record.CreatedAt.Format("2006-01-02T15:04:05.000Z07:00"),
		Information: entity.ReportInfo{
			Inspector: record.Subject.Inspector,
			Batch:     record.Subject.Batch,
			Product:   record.Subject.Product,
		},
		Result: result,
		Analysis: entity.ReportAnalysis{
			MetalConfidence: round(res.Confidence, 4),
			EdgePixelRatio:  round(res.EdgePixelRatio, 4),
			DisclaimerJA:    disclaimerJA,
			DisclaimerEN:    disclaimerEN,
		},
		Explanation:   entity.ExplanationFor(res.Status),
		ModelVersions: copied,
		FooterJA:      footerJA,
		FooterEN:      footerEN,
		Version:       reportVersion,
	}
}

func round(v float64, digits int) float64 {
	p := math.Pow(10, float64(digits))
	return math.Round(v*p) / p
}
