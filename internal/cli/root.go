// Package cli implements the csvviz command line tool, which runs the same
// decode, classify and chart pipeline as the HTTP API against local files.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	config "csv-chart-api/configs"
	"csv-chart-api/pkg/services"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "unknown"
)

// NewRootCmd builds the csvviz command tree.
func NewRootCmd() *cobra.Command {
	var verbose bool
	cfg := config.LoadConfig()

	root := &cobra.Command{
		Use:   "csvviz",
		Short: "Preview, classify and chart CSV or Excel files",
		Long: `csvviz loads a CSV or .xlsx file and renders the same previews and charts
as the web API.

Quick Start:
  csvviz preview data.csv                       # First rows as a table
  csvviz classify data.csv                      # Numeric and non-numeric columns
  csvviz chart data.csv --kind scatter --column x --y y
  csvviz charts data.csv --out-dir charts       # Automatic charts as images
  csvviz export data.csv --format yaml          # Automatic chart specs`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			SetVerbose(verbose)
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	root.AddCommand(
		newPreviewCmd(cfg),
		newClassifyCmd(),
		newChartCmd(cfg),
		newChartsCmd(cfg),
		newExportCmd(),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

// loadFile reads path into a fresh single-dataset session.
func loadFile(path string, previewRows int) (*services.VisualizerService, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	svc := services.NewDefaultVisualizerService(0, previewRows)
	result, err := svc.UploadFile(filepath.Base(path), data)
	if err != nil {
		return nil, err
	}
	LogInfo("Loaded %s: %d columns, %d rows", path, len(result.Dataset.Columns), result.Dataset.RowCount)
	return svc, nil
}
