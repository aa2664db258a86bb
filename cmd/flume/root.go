package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "flume",
	Short: "Flume is a state engine for Sankey diagram editors",
	Long:  `Flume manages Sankey diagram state: a plain-text flow notation, balance checking, undo history, and persistence behind HTTP and MCP servers.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "flume.yaml", "Path to the configuration file")
}
