package main

import (
	"fmt"
	"os"

	"github.com/aretw0/flume/internal/presentation/graph"
	"github.com/aretw0/flume/pkg/dsl"
	"github.com/aretw0/flume/pkg/tabular"
	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert FILE",
	Short: "Convert a diagram file to CSV rows or Mermaid syntax",
	Long:  `Parses a diagram file and prints its flows in another format: CSV rows suitable for spreadsheet import, or a Mermaid sankey-beta block for embedding in documentation.`,
	Args:  cobra.ExactArgs(1),
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

		format, _ := cmd.Flags().GetString("format")
		switch format {
		case "csv":
			csv, err := tabular.WriteCSV(data)
			if err != nil {
				return fmt.Errorf("failed to build CSV: %w", err)
			}
			fmt.Print(csv)
		case "mermaid":
			fmt.Print(graph.GenerateMermaid(data))
		default:
			return fmt.Errorf("unknown format %q", format)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringP("format", "f", "csv", "Output format: csv or mermaid")
}
