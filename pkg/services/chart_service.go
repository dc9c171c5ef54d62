package services

import (
	"errors"
	"fmt"

	"csv-chart-api/pkg/models"
)

// ChartService はデータセットとユーザーの選択からグラフ定義を組み立てます。
type ChartService struct {
	classifier *ClassifierService
}

// NewChartService は新しいChartServiceを生成します。
func NewChartService(classifier *ClassifierService) *ChartService {
	return &ChartService{classifier: classifier}
}

// BuildChart builds one chart for an explicit selection.
// A missing dataset, column or kind is the "nothing selected yet" state and yields an empty spec without error.
func (s *ChartService) BuildChart(ds *Dataset, req models.ChartRequest) (models.ChartSpec, error) {
	if ds == nil || req.Column == "" || req.Kind == "" {
		return models.ChartSpec{}, nil
	}
	if !req.Kind.Valid() {
		return models.ChartSpec{}, &RequestError{Field: "kind", Value: string(req.Kind), Err: errors.New("unknown plot kind")}
	}
	x := ds.ColumnIndex(req.Column)
	if x < 0 {
		return models.ChartSpec{}, &RequestError{Field: "column", Value: req.Column, Err: errors.New("column not in dataset")}
	}

	switch req.Kind {
	case models.PlotHistogram:
		return s.histogram(ds, x, "Histogram of "+req.Column), nil
	case models.PlotPie:
		return s.pie(ds, x), nil
	case models.PlotBox:
		spec, ok := s.box(ds, x, "Box Plot of "+req.Column)
		if !ok {
			return models.ChartSpec{}, &RequestError{Field: "column", Value: req.Column, Err: errors.New("box plot needs a numeric column")}
		}
		return spec, nil
	}

	y, err := secondColumn(ds, req)
	if err != nil {
		return models.ChartSpec{}, err
	}
	xName, yName := ds.columns[x], ds.columns[y]
	var title string
	switch req.Kind {
	case models.PlotScatter:
		title = fmt.Sprintf("Scatter Plot: %s vs %s", xName, yName)
	case models.PlotBar:
		title = fmt.Sprintf("Bar Chart: %s vs %s", xName, yName)
	default:
		title = fmt.Sprintf("Line Chart: %s vs %s", xName, yName)
	}
	return s.xy(ds, req.Kind, x, y, title), nil
}

// secondColumn resolves the y axis. Without an explicit y the dataset's second column
// (by position) is used so a single column dropdown is enough.
func secondColumn(ds *Dataset, req models.ChartRequest) (int, error) {
	if req.Y != "" {
		y := ds.ColumnIndex(req.Y)
		if y < 0 {
			return -1, &RequestError{Field: "y", Value: req.Y, Err: errors.New("column not in dataset")}
		}
		return y, nil
	}
	if len(ds.columns) < 2 {
		return -1, &RequestError{Field: "y", Value: "", Err: errors.New("dataset has fewer than two columns")}
	}
	return 1, nil
}

// BuildAllCharts produces one histogram per numeric column, plus a scatter of the
// first two numeric columns and a box plot of the first when at least two exist.
func (s *ChartService) BuildAllCharts(ds *Dataset) []models.ChartSpec {
	specs := []models.ChartSpec{}
	if ds == nil {
		return specs
	}
	numeric := s.classifier.Classify(ds).Numeric
	for _, name := range numeric {
		specs = append(specs, s.histogram(ds, ds.ColumnIndex(name), "Distribution of "+name))
	}
	if len(numeric) >= 2 {
		a, b := ds.ColumnIndex(numeric[0]), ds.ColumnIndex(numeric[1])
		specs = append(specs, s.xy(ds, models.PlotScatter, a, b, fmt.Sprintf("Scatter Plot: %s vs %s", numeric[0], numeric[1])))
		if box, ok := s.box(ds, a, "Box Plot of "+numeric[0]); ok {
			specs = append(specs, box)
		}
	}
	return specs
}

func (s *ChartService) histogram(ds *Dataset, col int, title string) models.ChartSpec {
	name := ds.columns[col]
	spec := models.ChartSpec{
		Kind:      models.PlotHistogram,
		Title:     title,
		DatasetID: ds.ID,
		X:         name,
		XLabel:    name,
		YLabel:    "count",
	}
	if values, ok := ds.NumericValues(col); ok {
		spec.Bins = histogramBins(values)
	} else {
		spec.Categories = categoryCounts(ds.ColumnValues(col))
	}
	return spec
}

func (s *ChartService) pie(ds *Dataset, col int) models.ChartSpec {
	name := ds.columns[col]
	return models.ChartSpec{
		Kind:       models.PlotPie,
		Title:      "Pie Chart of " + name,
		DatasetID:  ds.ID,
		Names:      name,
		Categories: categoryCounts(ds.ColumnValues(col)),
	}
}

func (s *ChartService) box(ds *Dataset, col int, title string) (models.ChartSpec, bool) {
	values, ok := ds.NumericValues(col)
	if !ok {
		return models.ChartSpec{}, false
	}
	name := ds.columns[col]
	return models.ChartSpec{
		Kind:      models.PlotBox,
		Title:     title,
		DatasetID: ds.ID,
		Y:         name,
		YLabel:    name,
		Box:       boxStats(values),
	}, true
}

// xy pairs two columns row by row, dropping rows where either side is missing.
func (s *ChartService) xy(ds *Dataset, kind models.PlotKind, x, y int, title string) models.ChartSpec {
	spec := models.ChartSpec{
		Kind:      kind,
		Title:     title,
		DatasetID: ds.ID,
		X:         ds.columns[x],
		Y:         ds.columns[y],
		XLabel:    ds.columns[x],
		YLabel:    ds.columns[y],
	}
	for row := 0; row < ds.NRows(); row++ {
		xv, yv := ds.Value(row, x), ds.Value(row, y)
		if xv == nil || yv == nil {
			continue
		}
		spec.Points = append(spec.Points, models.Point{X: xv, Y: yv})
	}
	return spec
}
