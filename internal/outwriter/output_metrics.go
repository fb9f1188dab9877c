package outwriter

import (
	"fmt"
	"io"

	"github.com/huangsam/planbench/internal/contract"
	"github.com/huangsam/planbench/schema"
)

// MetricDefinitions returns the definitions of every reported metric.
func MetricDefinitions() []schema.MetricDefinition {
	return []schema.MetricDefinition{
		{Name: "planning_time", Unit: "s", Formula: "wall clock of the planner run", Purpose: "Speed of the planner"},
		{Name: "collision_time", Unit: "s", Formula: "sum of timed collision queries", Purpose: "Share of planning spent on collision checks"},
		{Name: "steering_time", Unit: "s", Formula: "sum of timed steering calls", Purpose: "Share of planning spent on steering"},
		{Name: "path_length", Unit: "m", Formula: "sum |p(i+1) - p(i)|", Purpose: "Distance travelled"},
		{Name: "total_cost", Unit: "-", Formula: "objective cost of the interpolated path", Purpose: "Optimization objective value"},
		{Name: "max_curvature", Unit: "1/m", Formula: "max Menger curvature 4*area/(|ab|*|bc|*|ca|)", Purpose: "Sharpest turn"},
		{Name: "normalized_curvature", Unit: "-", Formula: "sum k(i)*(|ab|+|bc|)/2 / length", Purpose: "Total turning per unit length"},
		{Name: "aol", Unit: "rad/m", Formula: "sum |delta slope| / length", Purpose: "Angle over length"},
		{Name: "smoothness", Unit: "-", Formula: "sum (2*(pi - angle(i))/(|ab|+|bc|))^2", Purpose: "Local path smoothness (lower is smoother)"},
		{Name: "clearing_distance", Unit: "m", Formula: "mean/median/min/max obstacle distance over poses", Purpose: "Safety margin"},
		{Name: "cusps", Unit: "count", Formula: "consecutive heading changes above the cusp threshold", Purpose: "Direction reversals"},
		{Name: "exact_goal_path", Unit: "bool", Formula: "|last pose - goal| <= exact goal radius", Purpose: "Whether the path reaches the goal"},
	}
}

// PrintMetricsDefinitions displays the definitions of all reported metrics.
// This is a static display that does not require a benchmark run.
func PrintMetricsDefinitions(cfg *contract.Config) error {
	defs := MetricDefinitions()
	rows := metricRows(defs)
	return writeOutput(cfg, renderers{
		json:  defs,
		csv:   func(w io.Writer) error { return writeCSV(w, metricHeader, rows) },
		table: func(w io.Writer) error { return printMetricsText(w, metricHeader, rows) },
	})
}

var metricHeader = []string{"Metric", "Unit", "Formula", "Purpose"}

func metricRows(defs []schema.MetricDefinition) [][]string {
	rows := make([][]string, 0, len(defs))
	for _, d := range defs {
		rows = append(rows, []string{d.Name, d.Unit, d.Formula, d.Purpose})
	}
	return rows
}

// printMetricsText displays metrics in a human-readable table.
func printMetricsText(w io.Writer, header []string, rows [][]string) error {
	if _, err := fmt.Fprintf(w, "📐 Path Metrics\n==============\n\n"); err != nil {
		return err
	}
	if err := renderTable(newTable(w, header), rows); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Metrics that could not be computed are reported as %v (shown as -).\n", schema.EmptyMetric)
	return err
}
