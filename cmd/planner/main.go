// Command planner runs one production-planning invocation: connect to
// the relational store, resolve the planning inputs (interactively or
// from flags), solve every configured machine group, and persist the
// resulting plan.
package main

import (
	"fmt"
	"os"

	"github.com/metaldraw/planner/pkg/log"
	"github.com/spf13/cobra"
)

var debug bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "planner",
	Short: "Short-horizon production planner for the metal drawing floor",
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "switch log level to debug")
	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(runCmd)
}

func initLogging() {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}
	log.Init(log.Config{Level: level})
}
