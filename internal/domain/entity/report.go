package entity

// Report двуязычный отчёт об инспекции, сохраняемый в JSON.
type Report struct {
	ID            string            `json:"inspection_id"`
	Title         string            `json:"report_title"`
	Subtitle      string            `json:"report_subtitle"`
	DateTime      string            `json:"inspection_datetime"`
	TimestampISO  string            `json:"timestamp_iso"`
	Information   ReportInfo        `json:"inspection_information"`
	Result        ReportResult      `json:"inspection_result"`
	Analysis      ReportAnalysis    `json:"ai_analysis"`
	Explanation   Explanation       `json:"decision_explanation"`
	ModelVersions map[string]string `json:"model_versions"`
	FooterJA      string            `json:"footer_note"`
	FooterEN      string            `json:"footer_note_en"`
	Version       string            `json:"report_version"`
}

// ReportInfo сведения об инспекции.
type ReportInfo struct {
	Inspector string `json:"inspector_name"`
	Batch     string `json:"batch_id"`
	Product   string `json:"product_description"`
}

// ReportResult итог инспекции.
type ReportResult struct {
	Status      Status   `json:"status"`
	StatusJA    string   `json:"status_ja"`
	Reason      string   `json:"reason"`
	HealthScore *float64 `json:"surface_health_score"`
	DefectCount *int     `json:"defect_count"`
}

// ReportAnalysis справочные показатели модели.
type ReportAnalysis struct {
	MetalConfidence float64 `json:"metal_surface_validation_score"`
	EdgePixelRatio  float64 `json:"edge_pixel_ratio"`
	DisclaimerJA    string  `json:"disclaimer"`
	DisclaimerEN    string  `json:"disclaimer_en"`
}
