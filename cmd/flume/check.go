package main

import (
	"fmt"
	"os"

	"github.com/aretw0/flume/internal/cli"
	"github.com/aretw0/flume/pkg/balance"
	"github.com/aretw0/flume/pkg/dsl"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check FILE",
	Short: "Check flow conservation in a diagram file",
	Long: `Parses a diagram file and reports every intermediate node whose inflow
and outflow differ beyond tolerance, with suggested corrections.
Exits non-zero when the diagram is imbalanced.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		data, diags := dsl.Parse(string(raw))
		for _, d := range diags {
			fmt.Fprintf(os.Stderr, "%s: %s\n", path, d)
		}

		report := balance.Analyze(data)
		if err := cli.RenderMarkdown(os.Stdout, cli.BalanceMarkdown(path, report)); err != nil {
			return err
		}
		fmt.Println(cli.StatusLine(os.Stdout, report.Balanced()))

		if !report.Balanced() {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
