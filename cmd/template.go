package cmd

import (
	"os"

	"github.com/huangsam/planbench/internal/contract"
	"github.com/huangsam/planbench/internal/scenario"
	"github.com/spf13/cobra"
)

// templateCmd prints an annotated scenario to start from.
var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Print an example scenario file",
	Long: `Print an annotated scenario with a grid, start and goal poses, a robot shape
and one planner of each kind.

Examples:
  # Start a new scenario
  planbench template > my-scenario.yaml

  # Write it straight to a file
  planbench template --output-file my-scenario.yaml`,
	Run: func(cmd *cobra.Command, _ []string) {
		outputFile, _ := cmd.Flags().GetString("output-file")
		file, err := contract.SelectOutputFile(outputFile)
		if err != nil {
			contract.LogFatal("Cannot write template", err)
		}
		if file != os.Stdout {
			defer func() { _ = file.Close() }()
		}
		if _, err := file.WriteString(scenario.Template()); err != nil {
			contract.LogFatal("Cannot write template", err)
		}
	},
}
