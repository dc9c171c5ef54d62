package services

import (
	"errors"
	"testing"

	"csv-chart-api/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVisualizerUploadFlow(t *testing.T) {
	v := NewDefaultVisualizerService(0, 10)

	// アップロード前はすべて空の結果になる
	assert.Empty(t, v.Preview(0).Rows)
	assert.Empty(t, v.ColumnOptions())
	assert.Empty(t, v.AutoCharts())
	spec, err := v.Chart(models.ChartRequest{Kind: models.PlotHistogram, Column: "x"})
	require.NoError(t, err)
	assert.True(t, spec.IsEmpty())

	result, err := v.Upload(csvPayload("x,y\n1,2\n3,4\n5,6\n"), "xy.csv")
	require.NoError(t, err)
	assert.False(t, result.Superseded)
	assert.Equal(t, []string{"x", "y"}, result.Dataset.Columns)
	assert.Equal(t, 3, result.Dataset.RowCount)
	assert.Len(t, result.Preview.Rows, 3)
	assert.Equal(t, []string{"x", "y"}, result.Classification.Numeric)

	assert.Equal(t, []models.Option{{Label: "x", Value: "x"}, {Label: "y", Value: "y"}}, v.ColumnOptions())

	spec, err = v.Chart(models.ChartRequest{Kind: models.PlotScatter, Column: "x"})
	require.NoError(t, err)
	assert.Equal(t, "y", spec.Y)
	assert.Len(t, v.AutoCharts(), 4)
}

func TestVisualizerFailedUploadKeepsPreviousDataset(t *testing.T) {
	v := NewDefaultVisualizerService(0, 10)

	_, err := v.Upload("no-comma-here", "")
	assert.True(t, errors.Is(err, ErrMalformedPayload))
	_, ok := v.Current()
	assert.False(t, ok)

	_, err = v.Upload(csvPayload("a\n1\n"), "a.csv")
	require.NoError(t, err)
	before, _ := v.Current()

	_, err = v.Upload("data:text/csv;base64,%%%", "")
	assert.True(t, errors.Is(err, ErrMalformedPayload))
	_, err = v.Upload(csvPayload("a,b\n1,2,3\n"), "")
	assert.True(t, errors.Is(err, ErrParse))

	after, ok := v.Current()
	require.True(t, ok)
	assert.Equal(t, before.ID, after.ID)
}

func TestVisualizerUploadFile(t *testing.T) {
	v := NewDefaultVisualizerService(0, 5)

	result, err := v.UploadFile("data.csv", []byte("n\n1\n2\n3\n4\n5\n6\n7\n"))
	require.NoError(t, err)
	assert.Len(t, result.Preview.Rows, 5)
	assert.Equal(t, 7, result.Preview.TotalRows)
}

func TestVisualizerResetAndAutoChartIndex(t *testing.T) {
	v := NewDefaultVisualizerService(0, 10)

	_, err := v.AutoChart(0)
	assert.True(t, errors.Is(err, ErrNoDataset))

	_, err = v.Upload(csvPayload("a,b\n1,2\n2,3\n"), "")
	require.NoError(t, err)

	spec, err := v.AutoChart(2)
	require.NoError(t, err)
	assert.Equal(t, models.PlotScatter, spec.Kind)

	_, err = v.AutoChart(4)
	assert.True(t, errors.Is(err, ErrInvalidRequest))

	v.Reset()
	_, ok := v.Current()
	assert.False(t, ok)
	assert.Empty(t, v.Preview(10).Columns)
}

func TestVisualizerPlotTypeOptions(t *testing.T) {
	options := NewDefaultVisualizerService(0, 10).PlotTypeOptions()

	require.Len(t, options, 6)
	assert.Equal(t, models.Option{Label: "Histogram", Value: "histogram"}, options[0])
	assert.Equal(t, models.Option{Label: "Box Plot", Value: "box"}, options[5])
}
