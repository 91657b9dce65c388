package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcptest/mcptest/pkg/config"
)

var (
	flagLogFile string
	flagDebug   bool
)

var rootCmd = &cobra.Command{
	Use:   "mcptest",
	Short: "Declarative test harness for MCP stdio servers",
	Long: `mcptest drives an MCP server over stdio (or an attached Docker
container) through the handshake, tools/list, and tools/call operations,
asserting on responses and stderr output with a small pattern DSL.`,
	Version: config.FrameworkVersion,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "tee structured logs to this rotating file")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug-level logging")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(sendCmd)
}

// Execute runs the root command, exiting non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
