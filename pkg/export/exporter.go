// Package export writes chart definitions as JSON or YAML documents.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"csv-chart-api/pkg/models"

	"gopkg.in/yaml.v3"
)

// Exporter writes a set of chart specs in one format.
type Exporter interface {
	Export(specs []models.ChartSpec, w io.Writer) error
	Extension() string
	ContentType() string
}

// NewExporter returns the exporter for "json" or "yaml" ("yml" is accepted too).
func NewExporter(format string) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		return &JSONExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	}
	return nil, fmt.Errorf("unsupported export format: %s", format)
}

// document is the exported envelope.
type document struct {
	Charts []models.ChartSpec `json:"charts" yaml:"charts"`
}

// JSONExporter exports chart specs as indented JSON.
type JSONExporter struct{}

// Export writes specs as JSON.
func (e *JSONExporter) Export(specs []models.ChartSpec, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(document{Charts: nonNil(specs)})
}

// Extension returns the file extension for this format.
func (e *JSONExporter) Extension() string { return "json" }

// ContentType returns the MIME type for this format.
func (e *JSONExporter) ContentType() string { return "application/json" }

// YAMLExporter exports chart specs as YAML.
type YAMLExporter struct{}

// Export writes specs as YAML.
func (e *YAMLExporter) Export(specs []models.ChartSpec, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(document{Charts: nonNil(specs)}); err != nil {
		_ = enc.Close()
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// Extension returns the file extension for this format.
func (e *YAMLExporter) Extension() string { return "yaml" }

// ContentType returns the MIME type for this format.
func (e *YAMLExporter) ContentType() string { return "application/yaml" }

func nonNil(specs []models.ChartSpec) []models.ChartSpec {
	if specs == nil {
		return []models.ChartSpec{}
	}
	return specs
}
