package services

import (
	"fmt"
	"log"

	"csv-chart-api/pkg/models"
)

// VisualizerService はUIイベント（アップロード、選択変更）ごとに派生ビューを再計算します。
// 各メソッドはストアの現在値から純粋関数的に結果を求めるだけで、キャッシュは持ちません。
type VisualizerService struct {
	decoder    *DecoderService
	store      *DatasetStore
	previewer  *PreviewService
	classifier *ClassifierService
	charts     *ChartService
}

// NewVisualizerService は新しいVisualizerServiceを生成します。
func NewVisualizerService(decoder *DecoderService, store *DatasetStore, previewer *PreviewService, classifier *ClassifierService, charts *ChartService) *VisualizerService {
	return &VisualizerService{
		decoder:    decoder,
		store:      store,
		previewer:  previewer,
		classifier: classifier,
		charts:     charts,
	}
}

// NewDefaultVisualizerService wires every component with its default collaborators.
func NewDefaultVisualizerService(maxUploadBytes int64, previewRows int) *VisualizerService {
	classifier := NewClassifierService()
	return NewVisualizerService(
		NewDecoderService(maxUploadBytes),
		NewDatasetStore(),
		NewPreviewService(previewRows),
		classifier,
		NewChartService(classifier),
	)
}

// Upload decodes a data-URI payload and stores the result. On failure the store keeps its previous value.
func (v *VisualizerService) Upload(payload, filename string) (*models.UploadResult, error) {
	ticket := v.store.Begin()
	ds, err := v.decoder.Decode(payload, filename)
	if err != nil {
		log.Printf("❌ [upload] デコードに失敗しました: %v", err)
		return nil, err
	}
	return v.commit(ticket, ds), nil
}

// UploadFile stores a file received as raw bytes (multipart upload or CLI).
func (v *VisualizerService) UploadFile(filename string, data []byte) (*models.UploadResult, error) {
	ticket := v.store.Begin()
	ds, err := v.decoder.DecodeBytes("", filename, data)
	if err != nil {
		log.Printf("❌ [upload] ファイル %q の読み込みに失敗しました: %v", filename, err)
		return nil, err
	}
	return v.commit(ticket, ds), nil
}

func (v *VisualizerService) commit(ticket Ticket, ds *Dataset) *models.UploadResult {
	stored := v.store.Commit(ticket, ds)
	if stored {
		log.Printf("✅ [upload] データセット %s を保存しました（%d行）", ds.ID, ds.NRows())
	}
	return &models.UploadResult{
		Dataset:        ds.Summary(),
		Preview:        v.previewer.BuildPreview(ds, 0),
		Classification: v.classifier.Classify(ds),
		Superseded:     !stored,
	}
}

// Current returns the stored dataset, if any.
func (v *VisualizerService) Current() (*Dataset, bool) {
	return v.store.Get()
}

// Reset clears the stored dataset (end of session).
func (v *VisualizerService) Reset() {
	v.store.Clear()
	log.Printf("🧹 [store] データセットをクリアしました")
}

// Preview builds the table preview of the current dataset; limit <= 0 uses the default.
func (v *VisualizerService) Preview(limit int) models.Preview {
	ds, _ := v.store.Get()
	return v.previewer.BuildPreview(ds, limit)
}

// Classification classifies the columns of the current dataset.
func (v *VisualizerService) Classification() models.ColumnClassification {
	ds, _ := v.store.Get()
	return v.classifier.Classify(ds)
}

// ColumnOptions は列セレクタ用の選択肢を返します。データがなければ空です。
func (v *VisualizerService) ColumnOptions() []models.Option {
	options := []models.Option{}
	ds, ok := v.store.Get()
	if !ok {
		return options
	}
	for _, name := range ds.Columns() {
		options = append(options, models.Option{Label: name, Value: name})
	}
	return options
}

// PlotTypeOptions はグラフ種類セレクタ用の選択肢を返します。
func (v *VisualizerService) PlotTypeOptions() []models.Option {
	options := make([]models.Option, 0, len(models.PlotKinds))
	for _, k := range models.PlotKinds {
		options = append(options, models.Option{Label: k.Label(), Value: string(k)})
	}
	return options
}

// Chart builds the chart for an explicit selection against the current dataset.
func (v *VisualizerService) Chart(req models.ChartRequest) (models.ChartSpec, error) {
	ds, _ := v.store.Get()
	return v.charts.BuildChart(ds, req)
}

// AutoCharts builds the automatic chart set for the current dataset.
func (v *VisualizerService) AutoCharts() []models.ChartSpec {
	ds, _ := v.store.Get()
	return v.charts.BuildAllCharts(ds)
}

// AutoChart returns the i-th automatic chart.
func (v *VisualizerService) AutoChart(index int) (models.ChartSpec, error) {
	ds, ok := v.store.Get()
	if !ok {
		return models.ChartSpec{}, ErrNoDataset
	}
	specs := v.charts.BuildAllCharts(ds)
	if index < 0 || index >= len(specs) {
		return models.ChartSpec{}, &RequestError{Field: "index", Value: fmt.Sprint(index), Err: fmt.Errorf("dataset has %d automatic charts", len(specs))}
	}
	return specs[index], nil
}
