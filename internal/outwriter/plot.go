package outwriter

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/planbench/schema"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// WritePlots renders a trajectory plot and, when intermediary solutions exist,
// a convergence plot for every report. It returns the paths of the files written.
func WritePlots(reports []*schema.EvaluationReport, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create plot directory: %w", err)
	}

	var files []string
	for _, report := range reports {
		base := plotBaseName(report)

		pathsFile := filepath.Join(dir, base+"_paths.png")
		if err := plotTrajectories(report, pathsFile); err != nil {
			return files, err
		}
		files = append(files, pathsFile)

		convergenceFile := filepath.Join(dir, base+"_convergence.png")
		written, err := plotConvergence(report, convergenceFile)
		if err != nil {
			return files, err
		}
		if written {
			files = append(files, convergenceFile)
		}
	}
	return files, nil
}

// plotBaseName builds a file system friendly name for a report.
func plotBaseName(report *schema.EvaluationReport) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, report.Scenario)
	if name == "" {
		name = "scenario"
	}
	return fmt.Sprintf("%s_%s_%d", name, report.Steering, report.Iteration+1)
}

// trajectoryXYs converts poses into plot points.
func trajectoryXYs(t schema.Trajectory) plotter.XYs {
	pts := make(plotter.XYs, 0, len(t))
	for _, p := range t {
		pts = append(pts, plotter.XY{X: p.X, Y: p.Y})
	}
	return pts
}

// newLegendPlot creates a plot with the legend in the top right corner.
func newLegendPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p
}

// plotTrajectories draws the interpolated path of every planner that found one.
func plotTrajectories(report *schema.EvaluationReport, file string) error {
	p := newLegendPlot(
		fmt.Sprintf("%s (%s) - iteration %d", report.Scenario, report.Steering, report.Iteration+1),
		"X (m)", "Y (m)",
	)

	var found []*schema.PlanEntry
	for _, entry := range report.Entries() {
		if entry.Succeeded() && len(entry.Path) > 0 {
			found = append(found, entry)
		}
	}

	colors := generateColors(len(found))
	for i, entry := range found {
		line, err := plotter.NewLine(trajectoryXYs(entry.Path))
		if err != nil {
			return fmt.Errorf("failed to create line for %s: %w", entry.Planner, err)
		}
		line.Color = colors[i]
		line.Width = vg.Points(1)
		if entry.Stats.PathCollides {
			line.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		}
		p.Add(line)
		p.Legend.Add(entry.Planner, line)
	}

	if err := p.Save(14*vg.Inch, 6*vg.Inch, file); err != nil {
		return fmt.Errorf("failed to save trajectory plot: %w", err)
	}
	return nil
}

// plotConvergence draws cost over time for intermediary and anytime solutions.
// It reports false without writing anything when no entry has such solutions.
func plotConvergence(report *schema.EvaluationReport, file string) (bool, error) {
	p := newLegendPlot(
		fmt.Sprintf("%s (%s) - cost convergence", report.Scenario, report.Steering),
		"Time (s)", "Cost",
	)

	type series struct {
		name string
		pts  plotter.XYs
	}
	var all []series
	for _, entry := range report.Entries() {
		pts := make(plotter.XYs, 0, len(entry.Intermediary))
		for _, rec := range entry.Intermediary {
			if rec.Cost == schema.EmptyMetric || !rec.Stats.PathFound {
				continue
			}
			x := rec.Time
			if rec.Budget > 0 {
				x = rec.Budget
			}
			pts = append(pts, plotter.XY{X: x, Y: rec.Cost})
		}
		if len(pts) > 0 {
			all = append(all, series{name: entry.Planner, pts: pts})
		}
	}
	if len(all) == 0 {
		return false, nil
	}

	colors := generateColors(len(all))
	for i, s := range all {
		line, points, err := plotter.NewLinePoints(s.pts)
		if err != nil {
			return false, fmt.Errorf("failed to create line for %s: %w", s.name, err)
		}
		line.Color = colors[i]
		line.Width = vg.Points(1)
		points.Color = colors[i]
		p.Add(line, points)
		p.Legend.Add(s.name, line, points)
	}

	if err := p.Save(14*vg.Inch, 6*vg.Inch, file); err != nil {
		return false, fmt.Errorf("failed to save convergence plot: %w", err)
	}
	return true, nil
}

// generateColors creates a palette of distinct colors for planner lines
func generateColors(n int) []color.Color {
	if n <= 0 {
		return nil
	}

	colors := make([]color.Color, n)
	for i := range n {
		hue := float64(i) / float64(n)
		r, g, b := hslToRGB(hue, 0.7, 0.45)
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

// hslToRGB converts HSL to RGB (0-255 range)
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	if s == 0 {
		v := uint8(l * 255)
		return v, v, v
	}
	q := l + s - l*s
	if l < 0.5 {
		q = l * (1 + s)
	}
	p := 2*l - q
	return uint8(hueToRGB(p, q, h+1.0/3.0) * 255),
		uint8(hueToRGB(p, q, h) * 255),
		uint8(hueToRGB(p, q, h-1.0/3.0) * 255)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
