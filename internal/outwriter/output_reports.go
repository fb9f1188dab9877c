package outwriter

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/huangsam/planbench/internal/contract"
	"github.com/huangsam/planbench/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteReports outputs evaluation reports in the configured output mode.
func WriteReports(reports []*schema.EvaluationReport, cfg *contract.Config, duration time.Duration) error {
	return writeOutput(cfg, renderers{
		json:    reports,
		csv:     func(w io.Writer) error { return writeReportsCSV(w, reports, cfg.Precision) },
		parquet: func(w io.Writer) error { return writeReportsParquet(w, reports) },
		table:   func(w io.Writer) error { return writeReportsText(w, reports, cfg, duration) },
	})
}

// writeReportsText renders one block of tables per report and a summary line.
func writeReportsText(w io.Writer, reports []*schema.EvaluationReport, cfg *contract.Config, duration time.Duration) error {
	plans := 0
	for _, report := range reports {
		if _, err := fmt.Fprintf(w, "Scenario %s | steering %s | iteration %d | run %s\n",
			report.Scenario, report.Steering, report.Iteration+1, report.RunID); err != nil {
			return err
		}
		if err := writePlanTable(w, report, cfg); err != nil {
			return err
		}
		if err := writeAnytimeTable(w, report, cfg); err != nil {
			return err
		}
		if err := writeSmoothingTable(w, report, cfg); err != nil {
			return err
		}
		plans += len(report.Plans)
	}
	backend := cfg.StoreBackend
	if backend == "" {
		backend = schema.NoneBackend
	}
	_, err := fmt.Fprintf(w, "Evaluated %d plans in %v with %d workers. Store backend: %s\n",
		plans, duration.Round(time.Millisecond), cfg.Workers, backend)
	return err
}

// newTable returns a right-aligned table with the given header.
func newTable(w io.Writer, headers []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	return table
}

// renderTable fills and renders a table.
func renderTable(table *tablewriter.Table, data [][]string) error {
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writePlanTable writes the main metric table of a report.
func writePlanTable(w io.Writer, report *schema.EvaluationReport, cfg *contract.Config) error {
	f := cellFormat{precision: cfg.Precision}
	nameWidth := nameColumnWidth(cfg, 11)

	table := newTable(w, []string{
		"Planner", "Result", "Time", "Length", "Cost", "Max Curv", "Norm Curv",
		"AOL", "Smooth", "Clearing", "Cusps", "Exact",
	})
	var data [][]string
	for _, entry := range report.Entries() {
		s := entry.Stats
		data = append(data, []string{
			contract.TruncateName(entry.Planner, nameWidth),
			contract.GetColorLabel(entry.Outcome, s),
			f.metric(s.PlanningTime),
			f.metric(s.PathLength),
			f.metric(s.TotalCost),
			f.metric(s.MaxCurvature),
			f.metric(s.NormalizedCurvature),
			f.metric(s.AOL),
			f.metric(s.Smoothness),
			f.metric(s.MeanClearingDistance),
			fmt.Sprintf("%d", s.CuspCount()),
			f.flag(s.ExactGoalPath),
		})
	}
	return renderTable(table, data)
}

// writeAnytimeTable lists the per-budget results of anytime runs, if any.
func writeAnytimeTable(w io.Writer, report *schema.EvaluationReport, cfg *contract.Config) error {
	f := cellFormat{precision: cfg.Precision}
	nameWidth := nameColumnWidth(cfg, 5)

	var data [][]string
	for _, entry := range report.Entries() {
		for _, rec := range entry.Intermediary {
			if rec.Budget <= 0 {
				continue
			}
			data = append(data, []string{
				contract.TruncateName(entry.Planner, nameWidth),
				f.num(rec.Budget),
				contract.GetColorLabel(rec.Outcome, rec.Stats),
				f.metric(rec.Time),
				f.metric(rec.Cost),
				f.metric(rec.Stats.PathLength),
			})
		}
	}
	if len(data) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Anytime budgets"); err != nil {
		return err
	}
	return renderTable(newTable(w, []string{"Planner", "Budget", "Result", "Time", "Cost", "Length"}), data)
}

// writeSmoothingTable lists the smoother results of every planner, if any.
func writeSmoothingTable(w io.Writer, report *schema.EvaluationReport, cfg *contract.Config) error {
	f := cellFormat{precision: cfg.Precision}
	nameWidth := nameColumnWidth(cfg, 6)

	var data [][]string
	for _, entry := range report.Entries() {
		for _, name := range slices.Sorted(maps.Keys(entry.Smoothing)) {
			sm := entry.Smoothing[name]
			data = append(data, []string{
				contract.TruncateName(entry.Planner+"+"+name, nameWidth),
				contract.GetColorLabel(schema.OutcomeOK, sm.Stats),
				f.metric(sm.Time),
				f.metric(sm.Stats.PathLength),
				f.metric(sm.Cost),
				f.metric(sm.Stats.Smoothness),
				fmt.Sprintf("%d", sm.Stats.CuspCount()),
			})
		}
	}
	if len(data) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Smoothing"); err != nil {
		return err
	}
	return renderTable(newTable(w, []string{"Entry", "Result", "Time", "Length", "Cost", "Smooth", "Cusps"}), data)
}
