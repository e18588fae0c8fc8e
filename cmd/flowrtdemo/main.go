// Command flowrtdemo exercises the fiber scheduler, thread scheduler and
// typed channel of the flowrt core against a handful of concrete scenarios.
// Structured as a cobra root command with one subcommand per scenario group.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/thanhhungg97/flowrt/config"
)

var (
	debugLog   bool
	configPath string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "flowrtdemo",
		Short: "flowrtdemo runs the flowrt concurrency-substrate scenarios",
		Long: `flowrtdemo drives the fiber scheduler, thread scheduler and typed
channel of the flowrt core through a handful of representative scenarios:
fiber ping-pong, rendezvous self-deadlock and its unraveling, single-fiber
capacity-1 round trips, and close-wakes-waiters.`,
	}
	rootCmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "use a development (human-readable) logger")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML scheduler/channel config file")

	rootCmd.AddCommand(newPingPongCommand())
	rootCmd.AddCommand(newRendezvousCommand())
	rootCmd.AddCommand(newCapacity1Command())
	rootCmd.AddCommand(newCloseWakesCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.LoadFile(configPath)
}
