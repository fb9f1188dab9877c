// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/planbench/internal/contract"
	"github.com/huangsam/planbench/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the commands.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteReports prints evaluation reports using the configured output format.
func (ow *OutWriter) WriteReports(reports []*schema.EvaluationReport, cfg *contract.Config, duration time.Duration) error {
	return WriteReports(reports, cfg, duration)
}

// WriteMetrics prints the metric definitions using the configured output format.
func (ow *OutWriter) WriteMetrics(cfg *contract.Config) error {
	return PrintMetricsDefinitions(cfg)
}

// WriteRuns prints stored runs using the configured output format.
func (ow *OutWriter) WriteRuns(runs []schema.RunRecord, cfg *contract.Config) error {
	return WriteRunRecords(runs, cfg)
}

// WritePlanStats prints stored plan statistics using the configured output format.
func (ow *OutWriter) WritePlanStats(stats []schema.PlanStatsRecord, cfg *contract.Config) error {
	return WritePlanStatsRecords(stats, cfg)
}

// WritePlots renders PNG plots and HTML dashboards into cfg.PlotDir.
// It does nothing when no plot directory is configured.
func (ow *OutWriter) WritePlots(reports []*schema.EvaluationReport, cfg *contract.Config) ([]string, error) {
	if cfg.PlotDir == "" {
		return nil, nil
	}
	files, err := WritePlots(reports, cfg.PlotDir)
	if err != nil {
		return files, err
	}
	dashboards, err := WriteDashboards(reports, cfg.PlotDir)
	return append(files, dashboards...), err
}
