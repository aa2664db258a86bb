package main

import (
	"fmt"
	"os"

	"github.com/aretw0/flume/pkg/dsl"
	"github.com/spf13/cobra"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt FILE",
	Short: "Normalize a diagram file",
	Long: `Parses a diagram file and writes it back in canonical form: one flow
per line, normalized colors, declarations for styled nodes. Comments
and unparseable lines are preserved in place.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		write, _ := cmd.Flags().GetBool("write")

		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		data, diags := dsl.Parse(string(raw))
		for _, d := range diags {
			fmt.Fprintf(os.Stderr, "%s: %s\n", path, d)
		}

		out := dsl.Serialize(data)
		if !write {
			fmt.Print(out)
			return nil
		}

		if err := os.WriteFile(path, []byte(out), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fmtCmd)
	fmtCmd.Flags().BoolP("write", "w", false, "Write the result back to the file instead of stdout")
}
