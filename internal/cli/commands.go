package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	config "csv-chart-api/configs"
	"csv-chart-api/pkg/export"
	"csv-chart-api/pkg/models"
	"csv-chart-api/pkg/render"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
)

func newPreviewCmd(cfg *config.Config) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "preview <file>",
		Short: "Show the first rows of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadFile(args[0], cfg.PreviewRows)
			if err != nil {
				return err
			}
			p := svc.Preview(limit)
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, titleStyle.Render(filepath.Base(args[0])))
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			names := make([]string, len(p.Columns))
			for i, c := range p.Columns {
				names[i] = headerStyle.Render(c.Name)
			}
			fmt.Fprintln(w, strings.Join(names, "\t"))
			for _, row := range p.Rows {
				cells := make([]string, len(p.Columns))
				for i, c := range p.Columns {
					cells[i] = cellText(row[c.ID])
				}
				fmt.Fprintln(w, strings.Join(cells, "\t"))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("showing %d of %d rows", len(p.Rows), p.TotalRows)))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Number of rows to show (default from PREVIEW_ROWS)")
	return cmd
}

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <file>",
		Short: "List numeric and non-numeric columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadFile(args[0], 0)
			if err != nil {
				return err
			}
			cls := svc.Classification()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", titleStyle.Render("Numeric:"), countStyle.Render(strconv.Itoa(len(cls.Numeric))))
			for _, name := range cls.Numeric {
				fmt.Fprintf(out, "  %s\n", name)
			}
			fmt.Fprintf(out, "%s %s\n", titleStyle.Render("Non-numeric:"), countStyle.Render(strconv.Itoa(len(cls.NonNumeric))))
			for _, name := range cls.NonNumeric {
				fmt.Fprintf(out, "  %s\n", name)
			}
			return nil
		},
	}
}

type imageFlags struct {
	format string
	width  int
	height int
}

func (f *imageFlags) register(cmd *cobra.Command, cfg *config.Config) {
	cmd.Flags().StringVarP(&f.format, "format", "f", "png", "Image format: png or svg")
	cmd.Flags().IntVar(&f.width, "width", cfg.ChartWidth, "Image width in pixels")
	cmd.Flags().IntVar(&f.height, "height", cfg.ChartHeight, "Image height in pixels")
}

func (f *imageFlags) options() (render.Options, error) {
	format, err := render.ParseFormat(f.format)
	if err != nil {
		return render.Options{}, err
	}
	return render.Options{Format: format, Width: f.width, Height: f.height}, nil
}

func newChartCmd(cfg *config.Config) *cobra.Command {
	var (
		kind, column, y, outPath string
		img                      imageFlags
	)
	cmd := &cobra.Command{
		Use:   "chart <file>",
		Short: "Render one chart for a plot kind and column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := img.options()
			if err != nil {
				return err
			}
			svc, err := loadFile(args[0], cfg.PreviewRows)
			if err != nil {
				return err
			}
			spec, err := svc.Chart(models.ChartRequest{Kind: models.PlotKind(kind), Column: column, Y: y})
			if err != nil {
				return err
			}
			if outPath == "" {
				outPath = fmt.Sprintf("%s_%s.%s", kind, safeName(column), opts.Format)
			}
			if err := writeImage(outPath, spec, opts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", titleStyle.Render(spec.Title), dimStyle.Render("→ "+outPath))
			return nil
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", "", "Plot kind: histogram, scatter, bar, pie, line or box")
	cmd.Flags().StringVarP(&column, "column", "c", "", "Column to plot")
	cmd.Flags().StringVar(&y, "y", "", "Y column for scatter, bar and line (default: second column)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output path (default: <kind>_<column>.<format>)")
	img.register(cmd, cfg)
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("column")
	return cmd
}

func newChartsCmd(cfg *config.Config) *cobra.Command {
	var (
		outDir string
		img    imageFlags
	)
	cmd := &cobra.Command{
		Use:   "charts <file>",
		Short: "Render the automatic charts for every numeric column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := img.options()
			if err != nil {
				return err
			}
			svc, err := loadFile(args[0], cfg.PreviewRows)
			if err != nil {
				return err
			}
			specs := svc.AutoCharts()
			if len(specs) == 0 {
				LogWarn("No numeric columns in %s; nothing to render", args[0])
				fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render("no charts"))
				return nil
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("failed to create %s: %w", outDir, err)
			}
			for i, spec := range specs {
				path := filepath.Join(outDir, fmt.Sprintf("chart_%02d_%s.%s", i, spec.Kind, opts.Format))
				if err := writeImage(path, spec, opts); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", titleStyle.Render(spec.Title), dimStyle.Render("→ "+path))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s charts written\n", countStyle.Render(strconv.Itoa(len(specs))))
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out-dir", ".", "Directory for the rendered images")
	img.register(cmd, cfg)
	return cmd
}

func newExportCmd() *cobra.Command {
	var format, outPath string
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export the automatic chart specs as JSON or YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exporter, err := export.NewExporter(format)
			if err != nil {
				return err
			}
			svc, err := loadFile(args[0], 0)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", outPath, err)
				}
				defer f.Close()
				w = f
			}
			if err := exporter.Export(svc.AutoCharts(), w); err != nil {
				return fmt.Errorf("failed to export: %w", err)
			}
			LogDebug("Exported charts as %s", exporter.Extension())
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Export format: json or yaml")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default: stdout)")
	return cmd
}

func writeImage(path string, spec models.ChartSpec, opts render.Options) error {
	var buf bytes.Buffer
	if err := render.Render(spec, opts, &buf); err != nil {
		return fmt.Errorf("failed to render %q: %w", spec.Title, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	LogDebug("Wrote %s (%d bytes)", path, buf.Len())
	return nil
}

func cellText(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

func safeName(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ' ' {
			return '_'
		}
		return r
	}, s)
}
