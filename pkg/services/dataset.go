package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"csv-chart-api/pkg/models"

	"github.com/google/uuid"
	dataframe "github.com/rocketlaunchr/dataframe-go"
)

// missingTokens はセルを欠損値として扱う文字列です（前後の空白除去後に比較）。
var missingTokens = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"n/a":  true,
	"NaN":  true,
	"nan":  true,
	"-NaN": true,
	"null": true,
	"NULL": true,
	"None": true,
	"#N/A": true,
	"<NA>": true,
}

// Dataset は1回のアップロードから得られたインメモリの表データです。
// 数値列は SeriesFloat64、それ以外は SeriesString として保持します。
type Dataset struct {
	ID         string
	Name       string
	UploadedAt time.Time

	frame   *dataframe.DataFrame
	columns []string
}

// NewDataset builds a Dataset from a header and raw string records.
// Header names must already be unique; records shorter than the header are padded with missing cells.
func NewDataset(name string, header []string, records [][]string) (*Dataset, error) {
	if len(header) == 0 {
		return nil, fmt.Errorf("dataset needs at least one column")
	}
	seen := make(map[string]bool, len(header))
	for _, h := range header {
		if seen[h] {
			return nil, fmt.Errorf("duplicate column name %q", h)
		}
		seen[h] = true
	}

	series := make([]dataframe.Series, len(header))
	for col, colName := range header {
		cells := make([]*string, len(records))
		for row, record := range records {
			if col < len(record) {
				cells[row] = normalizeCell(record[col])
			}
		}
		series[col] = buildSeries(colName, cells)
	}

	return &Dataset{
		ID:         uuid.NewString(),
		Name:       name,
		UploadedAt: time.Now(),
		frame:      dataframe.NewDataFrame(series...),
		columns:    append([]string(nil), header...),
	}, nil
}

// normalizeCell trims the raw value and maps missing tokens to nil.
func normalizeCell(raw string) *string {
	v := strings.TrimSpace(raw)
	if missingTokens[v] {
		return nil
	}
	return &v
}

func buildSeries(name string, cells []*string) dataframe.Series {
	if cellsAreNumeric(cells) {
		vals := make([]interface{}, len(cells))
		for i, c := range cells {
			if c == nil {
				vals[i] = nil
				continue
			}
			f, _ := parseNumber(*c)
			vals[i] = f
		}
		return dataframe.NewSeriesFloat64(name, nil, vals...)
	}
	vals := make([]interface{}, len(cells))
	for i, c := range cells {
		if c == nil {
			vals[i] = nil
			continue
		}
		vals[i] = *c
	}
	return dataframe.NewSeriesString(name, nil, vals...)
}

// cellsAreNumeric: at least one present value, and every present value is a number.
func cellsAreNumeric(cells []*string) bool {
	present := 0
	for _, c := range cells {
		if c == nil {
			continue
		}
		if _, ok := parseNumber(*c); !ok {
			return false
		}
		present++
	}
	return present > 0
}

// parseNumber accepts integer and decimal literals (with optional exponent).
// Hex, underscore separated, infinite and NaN forms are treated as text.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "xX_") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// Columns returns the column names in source order.
func (d *Dataset) Columns() []string {
	return append([]string(nil), d.columns...)
}

// NRows returns the number of data rows.
func (d *Dataset) NRows() int {
	if len(d.frame.Series) == 0 {
		return 0
	}
	return d.frame.NRows()
}

// ColumnIndex returns the position of name, or -1.
func (d *Dataset) ColumnIndex(name string) int {
	for i, c := range d.columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Value returns the cell at (row, col): float64, string or nil when missing.
func (d *Dataset) Value(row, col int) interface{} {
	return d.frame.Series[col].Value(row)
}

// Row returns one row keyed by column name.
func (d *Dataset) Row(row int) map[string]interface{} {
	out := make(map[string]interface{}, len(d.columns))
	for col, name := range d.columns {
		out[name] = d.Value(row, col)
	}
	return out
}

// ColumnValues returns every cell of a column in row order, missing cells included as nil.
func (d *Dataset) ColumnValues(col int) []interface{} {
	n := d.NRows()
	out := make([]interface{}, n)
	for row := 0; row < n; row++ {
		out[row] = d.Value(row, col)
	}
	return out
}

// NumericValues returns the present values of a numeric column in row order.
// It returns false when the column holds text.
func (d *Dataset) NumericValues(col int) ([]float64, bool) {
	s, ok := d.frame.Series[col].(*dataframe.SeriesFloat64)
	if !ok {
		return nil, false
	}
	out := make([]float64, 0, len(s.Values))
	for _, v := range s.Values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out, true
}

// Summary は一覧表示やAPIレスポンス用の概要を返します。
func (d *Dataset) Summary() models.DatasetSummary {
	return models.DatasetSummary{
		ID:         d.ID,
		Name:       d.Name,
		Columns:    d.Columns(),
		RowCount:   d.NRows(),
		UploadedAt: d.UploadedAt.Format(time.RFC3339),
	}
}

// formatCell renders a cell as a label; numbers use their shortest decimal form.
func formatCell(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
