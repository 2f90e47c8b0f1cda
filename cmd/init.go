/*
Copyright © 2025 Hooksmith Authors
*/
package cmd

import (
	"fmt"

	"github.com/hooksmith/hooksmith/internal/ops"
	"github.com/hooksmith/hooksmith/pkg/config"
	"github.com/hooksmith/hooksmith/pkg/hooks"
	"github.com/spf13/cobra"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init [store-path]",
	Short: "Create an empty hook configuration store",
	Long: `Init writes an empty configuration document to the store path
(the configured default when no path is given). It refuses to overwrite
an existing store unless --force is set.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().Bool("force", false, "Overwrite an existing store")

	if err := ops.RegisterCommand("init", ops.GroupWorkflow, initCmd, initCmd.Short); err != nil {
		panic(fmt.Sprintf("Failed to register init command: %v", err))
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")

	storePath := ""
	if len(args) == 1 {
		storePath = args[0]
	} else {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		storePath = cfg.Store.Path
	}
	if err := config.EnsureStoreDir(storePath); err != nil {
		return err
	}

	if err := hooks.NewStore(storePath).Init(force); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "initialized empty store at %s\n", storePath)
	return nil
}
