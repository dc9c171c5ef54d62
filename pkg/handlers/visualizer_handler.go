package handlers

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"csv-chart-api/pkg/export"
	"csv-chart-api/pkg/models"
	"csv-chart-api/pkg/render"
	"csv-chart-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// VisualizerHandler はCSVアップロードとグラフ生成APIのハンドラです。
type VisualizerHandler struct {
	service        *services.VisualizerService
	maxUploadBytes int64
	chartWidth     int
	chartHeight    int
}

// NewVisualizerHandler は新しいVisualizerHandlerを生成します。
func NewVisualizerHandler(service *services.VisualizerService, maxUploadBytes int64, chartWidth, chartHeight int) *VisualizerHandler {
	return &VisualizerHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		chartWidth:     chartWidth,
		chartHeight:    chartHeight,
	}
}

// GetVisualizerService は内部のVisualizerServiceを返します。
func (h *VisualizerHandler) GetVisualizerService() *services.VisualizerService {
	return h.service
}

// Upload はdata-URI形式のCSV/Excelを受け取り、現在のデータセットとして保存します。
func (h *VisualizerHandler) Upload(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		// base64は約4/3倍に膨らむため、JSONの余白分も含めて上限を設定
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes*4/3+4096)
	}

	var req models.UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if status := statusFor(err); status == http.StatusRequestEntityTooLarge {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "contents フィールドが必要です", "kind": "invalid_request"})
		return
	}

	result, err := h.service.Upload(req.Contents, req.Filename)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

// UploadFile はmultipart形式（file フィールド）のアップロードを受け付けます。
func (h *VisualizerHandler) UploadFile(c *gin.Context) {
	file, fileHeader, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "ファイルの取得に失敗しました。", "kind": "invalid_request"})
		return
	}
	defer file.Close()

	var r io.Reader = file
	if h.maxUploadBytes > 0 {
		r = io.LimitReader(file, h.maxUploadBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		respondError(c, fmt.Errorf("read upload: %w", err))
		return
	}

	result, err := h.service.UploadFile(fileHeader.Filename, data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

// GetDataset は現在のデータセットの概要を返します。未アップロードの場合は null です。
func (h *VisualizerHandler) GetDataset(c *gin.Context) {
	ds, ok := h.service.Current()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"success": true, "dataset": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "dataset": ds.Summary()})
}

// DeleteDataset はセッション終了時にデータセットを破棄します。
func (h *VisualizerHandler) DeleteDataset(c *gin.Context) {
	h.service.Reset()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetPreview はテーブル表示用のプレビューを返します。
func (h *VisualizerHandler) GetPreview(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Preview(queryInt(c, "limit", 0)))
}

// GetColumns は列セレクタの選択肢を返します。
func (h *VisualizerHandler) GetColumns(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.ColumnOptions())
}

// GetPlotTypes はグラフ種類セレクタの選択肢を返します。
func (h *VisualizerHandler) GetPlotTypes(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.PlotTypeOptions())
}

// GetClassification は数値列・非数値列の分類を返します。
func (h *VisualizerHandler) GetClassification(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Classification())
}

// BuildChart は選択内容からグラフ定義を返します。未選択の場合は空オブジェクトです。
func (h *VisualizerHandler) BuildChart(c *gin.Context) {
	var req models.ChartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "リクエストの形式が不正です", "kind": "invalid_request"})
		return
	}
	spec, err := h.service.Chart(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, spec)
}

// RenderChart は選択内容のグラフを画像で返します。未選択の場合は 204 です。
func (h *VisualizerHandler) RenderChart(c *gin.Context) {
	var req models.ChartRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "クエリの形式が不正です", "kind": "invalid_request"})
		return
	}
	spec, err := h.service.Chart(req)
	if err != nil {
		respondError(c, err)
		return
	}
	if spec.IsEmpty() {
		c.Status(http.StatusNoContent)
		return
	}
	h.writeImage(c, spec)
}

// GetAutoCharts は数値列から自動生成したグラフ定義の一覧を返します。
func (h *VisualizerHandler) GetAutoCharts(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.AutoCharts())
}

// RenderAutoChart は自動生成グラフのうち index 番目を画像で返します。
func (h *VisualizerHandler) RenderAutoChart(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "index は整数で指定してください", "kind": "invalid_request"})
		return
	}
	spec, err := h.service.AutoChart(index)
	if err != nil {
		respondError(c, err)
		return
	}
	h.writeImage(c, spec)
}

// ExportAutoCharts は自動生成グラフの定義をJSON/YAMLでダウンロードさせます。
func (h *VisualizerHandler) ExportAutoCharts(c *gin.Context) {
	exporter, err := export.NewExporter(c.DefaultQuery("format", "json"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error(), "kind": "unsupported_format"})
		return
	}
	if _, ok := h.service.Current(); !ok {
		respondError(c, services.ErrNoDataset)
		return
	}

	var buf bytes.Buffer
	if err := exporter.Export(h.service.AutoCharts(), &buf); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="charts.%s"`, exporter.Extension()))
	c.Data(http.StatusOK, exporter.ContentType(), buf.Bytes())
}

func (h *VisualizerHandler) writeImage(c *gin.Context, spec models.ChartSpec) {
	format, err := render.ParseFormat(c.Query("format"))
	if err != nil {
		respondError(c, err)
		return
	}
	opts := render.Options{
		Format: format,
		Width:  queryInt(c, "width", h.chartWidth),
		Height: queryInt(c, "height", h.chartHeight),
	}

	var buf bytes.Buffer
	if err := render.Render(spec, opts, &buf); err != nil {
		log.Printf("⚠️ [render] %q の描画に失敗しました: %v", spec.Title, err)
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
