package services

import "csv-chart-api/pkg/models"

// PreviewService はデータセットの先頭N行をテーブル表示用に切り出します。
type PreviewService struct {
	defaultLimit int
}

// NewPreviewService は新しいPreviewServiceを生成します。
func NewPreviewService(defaultLimit int) *PreviewService {
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	return &PreviewService{defaultLimit: defaultLimit}
}

// BuildPreview returns the first limit rows (all rows if fewer) and the full column list.
// A nil dataset yields an empty preview.
func (s *PreviewService) BuildPreview(ds *Dataset, limit int) models.Preview {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	preview := models.Preview{
		Columns: []models.PreviewColumn{},
		Rows:    []map[string]interface{}{},
		Limit:   limit,
	}
	if ds == nil {
		return preview
	}

	for _, name := range ds.Columns() {
		preview.Columns = append(preview.Columns, models.PreviewColumn{Name: name, ID: name})
	}
	total := ds.NRows()
	n := min(limit, total)
	for row := 0; row < n; row++ {
		preview.Rows = append(preview.Rows, ds.Row(row))
	}
	preview.TotalRows = total
	return preview
}
