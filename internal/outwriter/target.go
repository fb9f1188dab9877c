package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/huangsam/planbench/internal/contract"
	"github.com/huangsam/planbench/schema"
)

// renderers holds one rendering of a result set per output mode.
// Without a parquet renderer the parquet mode prints the table.
type renderers struct {
	json    any
	csv     func(io.Writer) error
	parquet func(io.Writer) error
	table   func(io.Writer) error
}

// pick returns the renderer for the mode and the label used in messages.
func (r renderers) pick(mode schema.OutputMode) (func(io.Writer) error, string) {
	switch mode {
	case schema.JSONOut:
		return func(w io.Writer) error { return encodeJSON(w, r.json) }, "JSON"
	case schema.CSVOut:
		return r.csv, "CSV"
	case schema.ParquetOut:
		if r.parquet != nil {
			return r.parquet, "Parquet"
		}
	}
	return r.table, "table"
}

// writeOutput renders a result set in the configured mode to the output file or stdout.
func writeOutput(cfg *contract.Config, r renderers) error {
	render, label := r.pick(cfg.Output)
	file, err := contract.SelectOutputFile(cfg.OutputFile)
	if err != nil {
		return err
	}
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := render(file); err != nil {
		return fmt.Errorf("error writing %s output: %w", label, err)
	}
	if file != os.Stdout {
		_, _ = fmt.Fprintf(os.Stderr, "💾 Wrote %s to %s\n", label, cfg.OutputFile)
	}
	return nil
}

func encodeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSV writes the header and rows and reports any buffered write error.
func writeCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}
