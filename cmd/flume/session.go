package main

import (
	"fmt"
	"os"

	"github.com/aretw0/flume/internal/cli"
	"github.com/aretw0/flume/internal/config"
	"github.com/aretw0/flume/pkg/session"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage stored diagrams",
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored diagram IDs",
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, closeStore, err := managerFromFlags(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		ids, err := manager.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list diagrams: %w", err)
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Print the textual source of a stored diagram",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, closeStore, err := managerFromFlags(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		state, err := manager.Load(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to load diagram: %w", err)
		}
		fmt.Print(state.DSLText)
		return nil
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Delete a stored diagram and its auxiliary entries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, closeStore, err := managerFromFlags(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		if err := manager.Reset(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to delete diagram: %w", err)
		}
		fmt.Fprintf(os.Stderr, "deleted %s\n", args[0])
		return nil
	},
}

func managerFromFlags(cmd *cobra.Command) (*session.Manager, func() error, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	return cli.NewManager(cfg, cli.NewLogger(cfg))
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionRmCmd)
}
