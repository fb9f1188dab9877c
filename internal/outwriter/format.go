package outwriter

import (
	"os"
	"strconv"

	"github.com/huangsam/planbench/internal/contract"
	"github.com/huangsam/planbench/schema"
	"golang.org/x/term"
)

// Bounds of the name column of report tables.
const (
	minNameWidth      = 12
	maxNameWidth      = 40
	fallbackTermWidth = 80
)

// cellFormat renders report values at a fixed precision.
type cellFormat struct {
	precision int
}

// num renders a value as is, including EmptyMetric.
func (f cellFormat) num(v float64) string {
	return strconv.FormatFloat(v, 'f', f.precision, 64)
}

// metric renders "-" for metrics that were not computed.
func (f cellFormat) metric(v float64) string {
	if v == schema.EmptyMetric {
		return "-"
	}
	return f.num(v)
}

func (f cellFormat) flag(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// terminalWidth returns the width override, the width of stdout or a narrow default.
func terminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return fallbackTermWidth
}

// nameColumnWidth fits the name column of a table beside its value columns.
// A value column holds a number at the configured precision plus its borders.
func nameColumnWidth(cfg *contract.Config, valueColumns int) int {
	reserved := valueColumns*(cfg.Precision+8) + 4
	return min(max(terminalWidth(cfg)-reserved, minNameWidth), maxNameWidth)
}
