package models

// PreviewColumn はプレビューテーブルの列定義です。
type PreviewColumn struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// Preview はデータセット先頭N行のテーブル表示用ビューです。
type Preview struct {
	Columns   []PreviewColumn          `json:"columns"`
	Rows      []map[string]interface{} `json:"rows"`
	TotalRows int                      `json:"total_rows"`
	Limit     int                      `json:"limit"`
}

// ColumnClassification は数値列と非数値列の分類結果です（元の列順を保持）。
type ColumnClassification struct {
	Numeric    []string `json:"numeric"`
	NonNumeric []string `json:"non_numeric"`
}

// UploadRequest はdata-URI形式のアップロードリクエストです。
type UploadRequest struct {
	Contents string `json:"contents" binding:"required"`
	Filename string `json:"filename,omitempty"`
}

// DatasetSummary は現在のデータセットの概要です。
type DatasetSummary struct {
	ID         string   `json:"id"`
	Name       string   `json:"name,omitempty"`
	Columns    []string `json:"columns"`
	RowCount   int      `json:"row_count"`
	UploadedAt string   `json:"uploaded_at"`
}

// UploadResult はアップロード処理の結果です。
type UploadResult struct {
	Dataset        DatasetSummary       `json:"dataset"`
	Preview        Preview              `json:"preview"`
	Classification ColumnClassification `json:"classification"`
	// Superseded is true when a later upload committed first; the store kept the newer dataset.
	Superseded bool `json:"superseded"`
}
