/*
Copyright © 2025 Hooksmith Authors
*/
package cmd

import (
	"fmt"

	"github.com/hooksmith/hooksmith/internal/ops"
	"github.com/hooksmith/hooksmith/pkg/hooks"
	"github.com/spf13/cobra"
)

// templatesCmd represents the templates command
var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List built-in generation templates",
	RunE:  runTemplates,
}

func init() {
	if err := ops.RegisterCommand("templates", ops.GroupWorkflow, templatesCmd, templatesCmd.Short); err != nil {
		panic(fmt.Sprintf("Failed to register templates command: %v", err))
	}
}

func runTemplates(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	for _, tmpl := range hooks.Templates() {
		fmt.Fprintf(out, "%-16s %s\n", tmpl.Name, tmpl.Summary)
		fmt.Fprintf(out, "%-16s event %s", "", tmpl.Input.Event)
		if tmpl.Input.Matcher != "" {
			fmt.Fprintf(out, ", matcher %q", tmpl.Input.Matcher)
		}
		fmt.Fprintln(out)
	}
	return nil
}
