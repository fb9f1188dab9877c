package outwriter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/huangsam/planbench/schema"
)

// WriteDashboards renders one interactive HTML page per report with the trajectories
// of successful planners and a comparison of their path length and planning time.
func WriteDashboards(reports []*schema.EvaluationReport, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create plot directory: %w", err)
	}

	files := make([]string, 0, len(reports))
	for _, report := range reports {
		file := filepath.Join(dir, plotBaseName(report)+"_dashboard.html")
		if err := writeDashboard(report, file); err != nil {
			return files, err
		}
		files = append(files, file)
	}
	return files, nil
}

// writeDashboard renders the page of one report.
func writeDashboard(report *schema.EvaluationReport, file string) error {
	subtitle := fmt.Sprintf("steering=%s run=%d", report.Steering, report.Iteration+1)

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "planbench " + report.Scenario, Width: "900px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: report.Scenario + " trajectories", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Y (m)", NameLocation: "middle", NameGap: 30}),
	)

	var names []string
	var lengths, times []opts.BarData
	for _, entry := range report.Entries() {
		names = append(names, entry.Planner)
		lengths = append(lengths, opts.BarData{Value: entry.Stats.PathLength})
		times = append(times, opts.BarData{Value: entry.Stats.PlanningTime})
		if !entry.Succeeded() {
			continue
		}
		pts := make([]opts.ScatterData, 0, len(entry.Trajectory))
		for _, p := range entry.Trajectory {
			pts = append(pts, opts.ScatterData{Value: []any{p.X, p.Y}})
		}
		scatter.AddSeries(entry.Planner, pts, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: "Path length and planning time", Subtitle: "-1 marks a metric that was not computed"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10"}),
	)
	bar.SetXAxis(names).
		AddSeries("path length (m)", lengths).
		AddSeries("planning time (s)", times)

	page := components.NewPage()
	page.PageTitle = "planbench " + report.Scenario
	page.AddCharts(scatter, bar)

	f, err := os.Create(file)
	if err != nil {
		return fmt.Errorf("failed to create dashboard %s: %w", file, err)
	}
	defer func() { _ = f.Close() }()
	if err := page.Render(f); err != nil {
		return fmt.Errorf("failed to render dashboard %s: %w", file, err)
	}
	return nil
}
