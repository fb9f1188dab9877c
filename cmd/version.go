package cmd

import (
	"maps"
	"runtime"
	"slices"
	"strings"

	"github.com/huangsam/planbench/internal/scenario"
	"github.com/huangsam/planbench/schema"
	"github.com/spf13/cobra"
)

// sortedKeys joins the keys of a validation set for display.
func sortedKeys[K ~string](set map[K]struct{}) string {
	keys := slices.Sorted(maps.Keys(set))
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

// versionCmd shows the build details and the capabilities compiled into the binary.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and capabilities of planbench.",
	Long: `Display version information and what this build supports.

Shows:
- Release version, commit and build timestamp
- Go runtime version
- Steering modes, smoothers and run store backends

Include the output when reporting bugs.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("planbench %s (commit %s, built %s, %s)\n", version, commit, date, runtime.Version())
		cmd.Printf("  Steering:  %s\n", sortedKeys(schema.ValidSteeringModes))
		cmd.Printf("  Smoothers: %s\n", strings.Join(scenario.SmootherNames(), ", "))
		cmd.Printf("  Backends:  %s\n", sortedKeys(schema.ValidDatabaseBackends))
	},
}
