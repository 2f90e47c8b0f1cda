/*
Copyright © 2025 Hooksmith Authors
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/hooksmith/hooksmith/internal/ops"
	"github.com/hooksmith/hooksmith/pkg/config"
	"github.com/hooksmith/hooksmith/pkg/hooks"
	"github.com/spf13/cobra"
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect [store-path]",
	Short: "Inspect the persisted store's contents and health",
	Long: `Inspect displays the current state of the persisted store: entry
counts per event, disabled entries, and the validation report. Supports
both human-readable and JSON output formats.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInspect,
}

// inspectReport is the JSON output shape of the inspect command.
type inspectReport struct {
	Path     string         `json:"path"`
	Exists   bool           `json:"exists"`
	Valid    bool           `json:"valid"`
	Entries  int            `json:"entries"`
	Disabled int            `json:"disabled"`
	ByEvent  map[string]int `json:"byEvent,omitempty"`
	Errors   []hooks.Issue  `json:"errors,omitempty"`
	Warnings []hooks.Issue  `json:"warnings,omitempty"`
	Corrupt  string         `json:"corrupt,omitempty"`
}

func init() {
	inspectCmd.Flags().Bool("json", false, "Output the report as JSON")

	if err := ops.RegisterCommand("inspect", ops.GroupWorkflow, inspectCmd, inspectCmd.Short); err != nil {
		panic(fmt.Sprintf("Failed to register inspect command: %v", err))
	}
}

func runInspect(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	out := cmd.OutOrStdout()

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

	report := inspectReport{Path: storePath, ByEvent: map[string]int{}}
	if _, err := os.Stat(storePath); err == nil {
		report.Exists = true
	}

	if report.Exists {
		doc, err := hooks.NewStore(storePath).Load()
		if err != nil {
			report.Corrupt = err.Error()
		} else {
			pathExists := func(p string) bool {
				_, statErr := os.Stat(p)
				return statErr == nil
			}
			vr := hooks.Validate(doc, hooks.ValidateOptions{PathExists: pathExists})
			report.Valid = vr.Valid()
			report.Errors = vr.Errors
			report.Warnings = vr.Warnings
			report.Entries = doc.EntryCount()
			for _, event := range doc.Events() {
				report.ByEvent[event.String()] = len(doc[event])
				for _, entry := range doc[event] {
					if !entry.Enabled {
						report.Disabled++
					}
				}
			}
		}
	}

	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Fprintf(out, "store: %s\n", report.Path)
	switch {
	case !report.Exists:
		fmt.Fprintln(out, "status: not initialized (run 'hooksmith init')")
	case report.Corrupt != "":
		fmt.Fprintf(out, "status: corrupt (%s)\n", report.Corrupt)
	case report.Valid:
		fmt.Fprintf(out, "status: valid, %d entr(ies), %d disabled\n", report.Entries, report.Disabled)
	default:
		fmt.Fprintf(out, "status: invalid, %d error(s)\n", len(report.Errors))
	}
	for _, event := range hooks.AllEvents() {
		if n := report.ByEvent[event.String()]; n > 0 {
			fmt.Fprintf(out, "  %-20s %d\n", event, n)
		}
	}
	for _, issue := range report.Errors {
		fmt.Fprintf(out, "  error: %s\n", issue)
	}
	for _, issue := range report.Warnings {
		fmt.Fprintf(out, "  warning: %s\n", issue)
	}
	return nil
}
