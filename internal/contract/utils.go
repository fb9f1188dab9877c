package contract

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/planbench/schema"
)

// DateTimeFormat is the timestamp layout used in tables and CSV output.
const DateTimeFormat = "2006-01-02 15:04:05"

// Outcome label constants.
const (
	SolvedValue    = "Solved"    // Path found and collision free
	CollidesValue  = "Collides"  // Path found but rejected by validation
	NoPathValue    = "No path"   // Planner ran but did not solve
	FaultValue     = "Fault"     // Planner raised or panicked
	ConstructValue = "Construct" // Planner could not be built
)

// Color variables for console output.
var (
	SolvedColor    = color.New(color.FgGreen, color.Bold)   // SolvedColor represents a usable result.
	CollidesColor  = color.New(color.FgMagenta, color.Bold) // CollidesColor represents a rejected path.
	NoPathColor    = color.New(color.FgYellow)              // NoPathColor represents an ordinary failure.
	FaultColor     = color.New(color.FgRed, color.Bold)     // FaultColor represents an exceptional failure.
	ConstructColor = color.New(color.FgCyan)                // ConstructColor represents a setup problem.
)

// GetPlainLabel returns a plain text label describing how an entry ended.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(outcome schema.Outcome, stats schema.PathStatistics) string {
	switch outcome {
	case schema.OutcomeConstructionFailure:
		return ConstructValue
	case schema.OutcomePlanningFault:
		return FaultValue
	case schema.OutcomeValidationFault:
		return CollidesValue
	}
	switch {
	case !stats.PathFound:
		return NoPathValue
	case stats.PathCollides:
		return CollidesValue
	default:
		return SolvedValue
	}
}

// GetColorLabel returns a colored text label for console output (table).
// It uses GetPlainLabel to determine the string, and then applies the appropriate color.
func GetColorLabel(outcome schema.Outcome, stats schema.PathStatistics) string {
	text := GetPlainLabel(outcome, stats)

	switch text {
	case SolvedValue:
		return SolvedColor.Sprint(text)
	case CollidesValue:
		return CollidesColor.Sprint(text)
	case FaultValue:
		return FaultColor.Sprint(text)
	case ConstructValue:
		return ConstructColor.Sprint(text)
	default:
		return NoPathColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It uses os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// NewLogger returns a text logger writing to w at the given level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// GetRunsDBFilePath returns the path to the SQLite DB file for run storage.
func GetRunsDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".planbench_runs.db"
	}
	return filepath.Join(homeDir, ".planbench_runs.db")
}

// TruncateName truncates a name to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so the ellipsis never eats the whole name.
func TruncateName(name string, maxWidth int) string {
	runes := []rune(name)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return name
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
