/*
Copyright © 2025 Hooksmith Authors
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/hooksmith/hooksmith/internal/ops"
	"github.com/hooksmith/hooksmith/pkg/config"
	"github.com/hooksmith/hooksmith/pkg/hooks"
	"github.com/hooksmith/hooksmith/pkg/logger"
	"github.com/spf13/cobra"
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a hook entry from typed inputs or a template",
	Long: `Generate builds one well-formed hook entry and emits it as a
single-entry configuration document, ready to be validated and merged.

Examples:
  hooksmith generate --event after-tool-use --matcher "Write|Edit" --command ./scripts/fmt.sh --description "format changed files"
  hooksmith generate --template secret-detector
  hooksmith generate --event user-prompt-submit --prompt "Review this prompt" --output new-hooks.json`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().String("event", "", "Hook event name (one of the recognized events)")
	generateCmd.Flags().String("matcher", "", "Matcher pattern (required for matcher-capable events)")
	generateCmd.Flags().String("command", "", "Command payload (command-kind action)")
	generateCmd.Flags().String("prompt", "", "Prompt payload (prompt-kind action)")
	generateCmd.Flags().String("description", "", "Entry description")
	generateCmd.Flags().Int("priority", 0, "Entry priority (lower executes first; 0 means default)")
	generateCmd.Flags().Int("timeout", 0, "Action timeout in seconds (0 means default)")
	generateCmd.Flags().Bool("disabled", false, "Generate the entry disabled")
	generateCmd.Flags().String("template", "", "Use a named built-in template instead of typed inputs")
	generateCmd.Flags().StringP("output", "o", "", "Write the document to a file instead of stdout")

	if err := ops.RegisterCommand("generate", ops.GroupPipeline, generateCmd, generateCmd.Short); err != nil {
		panic(fmt.Sprintf("Failed to register generate command: %v", err))
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	template, _ := cmd.Flags().GetString("template")
	output, _ := cmd.Flags().GetString("output")

	var entry *hooks.Entry
	var err error
	if template != "" {
		entry, err = hooks.GenerateFromTemplate(template)
	} else {
		entry, err = generateFromFlags(cmd)
	}
	if err != nil {
		return err
	}

	// Fail fast: the raw generator output is validated before it leaves
	// the command, the merger re-validates later anyway.
	if report := hooks.ValidateEntry(*entry, hooks.ValidateOptions{}); !report.Valid() {
		return fmt.Errorf("generated entry failed validation: %s", report.Errors[0])
	}

	doc := hooks.NewDocument()
	doc.Add(*entry)
	data, err := doc.Marshal()
	if err != nil {
		return err
	}

	if output == "" || output == "-" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	logger.Info("wrote generated hook document",
		logger.String("path", output), logger.String("event", entry.Event.String()))
	return nil
}

func generateFromFlags(cmd *cobra.Command) (*hooks.Entry, error) {
	event, _ := cmd.Flags().GetString("event")
	matcher, _ := cmd.Flags().GetString("matcher")
	command, _ := cmd.Flags().GetString("command")
	prompt, _ := cmd.Flags().GetString("prompt")
	description, _ := cmd.Flags().GetString("description")
	priority, _ := cmd.Flags().GetInt("priority")
	timeout, _ := cmd.Flags().GetInt("timeout")
	disabled, _ := cmd.Flags().GetBool("disabled")

	if command != "" && prompt != "" {
		return nil, fmt.Errorf("--command and --prompt are mutually exclusive")
	}

	in := hooks.GenerateInput{
		Event:       hooks.Event(event),
		Matcher:     matcher,
		Description: description,
		Priority:    priority,
		Timeout:     timeout,
		Disabled:    disabled,
	}
	if prompt != "" {
		in.Kind = hooks.ActionPrompt
		in.Payload = prompt
	} else {
		in.Kind = hooks.ActionCommand
		in.Payload = command
	}

	if in.Priority == 0 {
		cfg, err := config.LoadConfig()
		if err != nil {
			return nil, err
		}
		in.Priority = cfg.Generate.DefaultPriority
		if in.Timeout == 0 && in.Kind == hooks.ActionCommand {
			in.Timeout = cfg.Generate.CommandTimeout
		}
	}

	return hooks.Generate(in)
}
