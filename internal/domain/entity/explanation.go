package entity

// Explanation пояснение к статусу на японском и английском.
type Explanation struct {
	Japanese string `json:"japanese"`
	English  string `json:"english"`
}

var explanations = map[Status]Explanation{
	StatusPass: {
		Japanese: "表面に重大な欠陥は確認されておらず、基準内の状態であると判断されました。",
		English:  "No significant surface defects were detected.",
	},
	StatusFail: {
		Japanese: "許容基準を超える欠陥傾向が検出されました。品質基準を満たしていません。",
		English:  "Defect patterns exceed acceptable limits.",
	},
	StatusUncertain: {
		Japanese: "画像状態が不明瞭なため、再撮影または担当者確認を推奨します。",
		English:  "Image clarity insufficient. Retake recommended.",
	},
	StatusRejected: {
		Japanese: "産業用金属表面の検査可能な画像ではありません。",
		English:  "Image does not resemble an inspectable industrial metal surface.",
	},
}

var japaneseLabels = map[Status]string{
	StatusPass:      "合格",
	StatusFail:      "不合格",
	StatusUncertain: "判定保留",
	StatusRejected:  "無効",
}

// ExplanationFor возвращает пояснение к статусу.
func ExplanationFor(s Status) Explanation {
	if e, ok := explanations[s]; ok {
		return e
	}
	return Explanation{Japanese: "検査が完了しました。", English: "Inspection completed."}
}

// JapaneseLabel короткая японская метка статуса.
func (s Status) JapaneseLabel() string {
	if l, ok := japaneseLabels[s]; ok {
		return l
	}
	return string(s)
}
