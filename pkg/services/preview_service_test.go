package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPreviewLimits(t *testing.T) {
	decoder := NewDecoderService(0)
	previewer := NewPreviewService(10)

	for _, rowCount := range []int{1, 3, 10, 25} {
		text := "id,value\n"
		for i := 0; i < rowCount; i++ {
			text += fmt.Sprintf("%d,v%d\n", i, i)
		}
		ds, err := decoder.DecodeBytes("text/csv", "", []byte(text))
		require.NoError(t, err)

		for _, limit := range []int{5, 10} {
			t.Run(fmt.Sprintf("rows=%d limit=%d", rowCount, limit), func(t *testing.T) {
				preview := previewer.BuildPreview(ds, limit)

				assert.Len(t, preview.Rows, min(limit, rowCount))
				assert.Equal(t, rowCount, preview.TotalRows)
				require.Len(t, preview.Columns, 2)
				assert.Equal(t, "id", preview.Columns[0].Name)
				assert.Equal(t, "value", preview.Columns[1].ID)
				for i, row := range preview.Rows {
					assert.Equal(t, float64(i), row["id"])
				}
			})
		}
	}
}

func TestBuildPreviewDefaultLimit(t *testing.T) {
	ds := mustDataset(t, []string{"n"},
		[]string{"1"}, []string{"2"}, []string{"3"}, []string{"4"}, []string{"5"}, []string{"6"}, []string{"7"})

	preview := NewPreviewService(5).BuildPreview(ds, 0)

	assert.Len(t, preview.Rows, 5)
	assert.Equal(t, 5, preview.Limit)
}

func TestBuildPreviewNilDataset(t *testing.T) {
	preview := NewPreviewService(10).BuildPreview(nil, 10)

	assert.NotNil(t, preview.Columns)
	assert.NotNil(t, preview.Rows)
	assert.Empty(t, preview.Columns)
	assert.Empty(t, preview.Rows)
	assert.Equal(t, 0, preview.TotalRows)
}

func TestBuildPreviewKeepsColumnsWithoutRows(t *testing.T) {
	ds := mustDataset(t, []string{"a", "b", "c"})

	preview := NewPreviewService(10).BuildPreview(ds, 10)

	assert.Len(t, preview.Columns, 3)
	assert.Empty(t, preview.Rows)
}
