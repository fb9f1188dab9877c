// main is the entry point for the planbench CLI.
package main

import (
	"os"

	"github.com/huangsam/planbench/cmd"
	"github.com/huangsam/planbench/internal/contract"
	"github.com/huangsam/planbench/internal/runstore"
)

// main wires the global run store into the commands and executes the root command.
func main() {
	cmd.SetStoreManager(runstore.Manager)
	defer runstore.CloseStores()

	err := cmd.Execute()
	if perr := cmd.StopProfiling(); perr != nil {
		contract.LogWarn("Failed to stop profiling", perr)
	}
	if terr := cmd.StopTelemetry(); terr != nil {
		contract.LogWarn("Failed to flush telemetry", terr)
	}
	if err != nil {
		runstore.CloseStores()
		contract.LogWarn("Command failed", err)
		os.Exit(1)
	}
}
