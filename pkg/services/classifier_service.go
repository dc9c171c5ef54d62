package services

import "csv-chart-api/pkg/models"

// ClassifierService は列を数値列と非数値列に分類します。
type ClassifierService struct{}

// NewClassifierService は新しいClassifierServiceを生成します。
func NewClassifierService() *ClassifierService {
	return &ClassifierService{}
}

// Classify partitions the columns of ds, preserving column order.
// A column with no present values is non-numeric.
func (s *ClassifierService) Classify(ds *Dataset) models.ColumnClassification {
	result := models.ColumnClassification{
		Numeric:    []string{},
		NonNumeric: []string{},
	}
	if ds == nil {
		return result
	}
	for col, name := range ds.Columns() {
		if s.IsNumeric(ds, col) {
			result.Numeric = append(result.Numeric, name)
		} else {
			result.NonNumeric = append(result.NonNumeric, name)
		}
	}
	return result
}

// IsNumeric reports whether every present value of column col is a number.
func (s *ClassifierService) IsNumeric(ds *Dataset, col int) bool {
	present := 0
	for _, v := range ds.ColumnValues(col) {
		switch t := v.(type) {
		case nil:
			continue
		case float64:
		case string:
			if _, ok := parseNumber(t); !ok {
				return false
			}
		default:
			return false
		}
		present++
	}
	return present > 0
}
