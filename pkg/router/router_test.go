package router

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	config "csv-chart-api/configs"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = "x,y,city\n1,2,Tokyo\n3,4,Osaka\n5,6,Tokyo\n"

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		Port:             "8080",
		Environment:      "test",
		AdminUsername:    "admin",
		AdminPassword:    "secret",
		PreviewRows:      10,
		MaxUploadMB:      1,
		ChartWidth:       400,
		ChartHeight:      300,
		CORSAllowOrigins: []string{"*"},
	}
}

func dataURI(body string) string {
	return "data:text/csv;base64," + base64.StdEncoding.EncodeToString([]byte(body))
}

func do(t *testing.T, r http.Handler, method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func upload(t *testing.T, r http.Handler, csv string) *httptest.ResponseRecorder {
	t.Helper()
	return do(t, r, http.MethodPost, "/api/v1/upload", gin.H{"contents": dataURI(csv), "filename": "sample.csv"})
}

func TestHealthAndIndex(t *testing.T) {
	r := NewRouter(testConfig())

	w := do(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])

	w = do(t, r, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "CSV Data Visualizer")
}

func TestEmptySession(t *testing.T) {
	r := NewRouter(testConfig())

	w := do(t, r, http.MethodGet, "/api/v1/dataset", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Nil(t, body["dataset"])

	w = do(t, r, http.MethodGet, "/api/v1/preview", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["rows"])

	w = do(t, r, http.MethodGet, "/api/v1/columns", nil)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = do(t, r, http.MethodGet, "/api/v1/chart/render?kind=histogram&column=x", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/charts/auto/0/render", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "no_dataset", decode(t, w)["kind"])

	w = do(t, r, http.MethodGet, "/api/v1/charts/auto/export", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlotTypes(t *testing.T) {
	r := NewRouter(testConfig())

	w := do(t, r, http.MethodGet, "/api/v1/plot-types", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var options []map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &options))
	require.Len(t, options, 6)
	assert.Equal(t, "histogram", options[0]["value"])
}

func TestUploadAndChartFlow(t *testing.T) {
	r := NewRouter(testConfig())

	w := upload(t, r, sampleCSV)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]interface{})
	assert.EqualValues(t, 3, data["dataset"].(map[string]interface{})["row_count"])
	assert.Len(t, data["preview"].(map[string]interface{})["rows"], 3)

	w = do(t, r, http.MethodGet, "/api/v1/classification", nil)
	assert.JSONEq(t, `{"numeric":["x","y"],"non_numeric":["city"]}`, w.Body.String())

	w = do(t, r, http.MethodGet, "/api/v1/preview?limit=2", nil)
	assert.Len(t, decode(t, w)["rows"], 2)

	w = do(t, r, http.MethodPost, "/api/v1/chart", gin.H{"kind": "scatter", "column": "x"})
	require.Equal(t, http.StatusOK, w.Code)
	spec := decode(t, w)
	assert.Equal(t, "Scatter Plot: x vs y", spec["title"])
	assert.Len(t, spec["points"], 3)

	w = do(t, r, http.MethodPost, "/api/v1/chart", gin.H{})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{}`, w.Body.String())

	w = do(t, r, http.MethodPost, "/api/v1/chart", gin.H{"kind": "donut", "column": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_request", decode(t, w)["kind"])

	w = do(t, r, http.MethodGet, "/api/v1/chart/render?kind=histogram&column=x", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))

	w = do(t, r, http.MethodGet, "/api/v1/chart/render?kind=pie&column=city&format=svg", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "<svg")

	w = do(t, r, http.MethodGet, "/api/v1/chart/render?kind=histogram&column=x&format=gif", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "unsupported_format", decode(t, w)["kind"])
}

func TestAutoCharts(t *testing.T) {
	r := NewRouter(testConfig())
	require.Equal(t, http.StatusOK, upload(t, r, sampleCSV).Code)

	w := do(t, r, http.MethodGet, "/api/v1/charts/auto", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var specs []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &specs))
	require.NotEmpty(t, specs)
	assert.Equal(t, "Distribution of x", specs[0]["title"])

	w = do(t, r, http.MethodGet, "/api/v1/charts/auto/0/render", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))

	w = do(t, r, http.MethodGet, "/api/v1/charts/auto/99/render", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/charts/auto/abc/render", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/charts/auto/export?format=yaml", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="charts.yaml"`, w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Body.String(), "charts:")

	w = do(t, r, http.MethodGet, "/api/v1/charts/auto/export?format=xml", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadErrors(t *testing.T) {
	r := NewRouter(testConfig())

	w := do(t, r, http.MethodPost, "/api/v1/upload", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_request", decode(t, w)["kind"])

	w = do(t, r, http.MethodPost, "/api/v1/upload", gin.H{"contents": "not-a-data-uri"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "malformed_payload", decode(t, w)["kind"])

	w = upload(t, r, "a,b\n1,2,3\n")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "parse_error", decode(t, w)["kind"])

	// 失敗したアップロードはセッションに影響しない
	w = do(t, r, http.MethodGet, "/api/v1/dataset", nil)
	assert.Nil(t, decode(t, w)["dataset"])

	big := strings.Repeat("1234567,", 200_000)
	w = upload(t, r, big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "too_large", decode(t, w)["kind"])
}

func TestMultipartUpload(t *testing.T) {
	r := NewRouter(testConfig())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "sample.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(sampleCSV))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload/file", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, r, http.MethodGet, "/api/v1/dataset", nil)
	dataset := decode(t, w)["dataset"].(map[string]interface{})
	assert.Equal(t, "sample.csv", dataset["name"])

	w = do(t, r, http.MethodDelete, "/api/v1/dataset", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(t, r, http.MethodGet, "/api/v1/dataset", nil)
	assert.Nil(t, decode(t, w)["dataset"])

	w = do(t, r, http.MethodPost, "/api/v1/upload/file", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPIKey(t *testing.T) {
	cfg := testConfig()
	cfg.APIKey = "k3y"
	r := NewRouter(cfg)

	w := do(t, r, http.MethodGet, "/api/v1/columns", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/columns", nil, "X-API-KEY", "k3y")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMaintenanceMode(t *testing.T) {
	r := NewRouter(testConfig())
	creds := gin.H{"username": "admin", "password": "secret"}

	w := do(t, r, http.MethodPost, "/api/v1/admin/maintenance/start", gin.H{"username": "admin", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/admin/maintenance/start", creds)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	w = do(t, r, http.MethodGet, "/api/v1/columns", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	w = do(t, r, http.MethodGet, "/api/v1/admin/health-status", nil)
	assert.Equal(t, true, decode(t, w)["isMaintenanceMode"])

	w = do(t, r, http.MethodPost, "/api/v1/admin/maintenance/stop", creds)
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMonitoringLogs(t *testing.T) {
	r := NewRouter(testConfig())
	upload(t, r, sampleCSV)
	do(t, r, http.MethodGet, "/api/v1/charts/auto", nil)

	w := do(t, r, http.MethodGet, "/api/v1/monitoring/logs?period=1h", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "1h", body["period"])
	assert.NotNil(t, body["data"])
}

func TestCORSPreflight(t *testing.T) {
	r := NewRouter(testConfig())

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/upload", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
