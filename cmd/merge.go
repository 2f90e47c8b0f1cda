/*
Copyright © 2025 Hooksmith Authors
*/
package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hooksmith/hooksmith/internal/ops"
	"github.com/hooksmith/hooksmith/pkg/config"
	"github.com/hooksmith/hooksmith/pkg/exitcode"
	"github.com/hooksmith/hooksmith/pkg/hooks"
	"github.com/hooksmith/hooksmith/pkg/logger"
	"github.com/spf13/cobra"
)

// mergeCmd represents the merge command
var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge an incoming document into the persisted store",
	Long: `Merge folds a newly produced hook document into the persisted store.
Collisions on (event, matcher, description) are resolved by policy:

  keep-existing  drop colliding incoming entries
  replace        incoming replaces the colliding existing entry
  keep-both      append incoming as a distinct entry
  interactive    list conflicts and prompt for a per-conflict decision

A timestamped backup of the prior store is written before every commit,
and the commit itself is an atomic swap.`,
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().StringP("incoming", "i", "", "Path of the incoming document (required)")
	mergeCmd.Flags().String("store", "", "Path of the persisted store (defaults to the configured store)")
	mergeCmd.Flags().String("policy", "", "Merge policy: keep-existing|replace|keep-both|interactive")
	mergeCmd.Flags().Bool("start-fresh", false, "When the store is corrupt, proceed from the incoming document only")
	mergeCmd.Flags().Bool("dry-run", false, "Analyze and report without committing")
	_ = mergeCmd.MarkFlagRequired("incoming")

	if err := ops.RegisterCommand("merge", ops.GroupPipeline, mergeCmd, mergeCmd.Short); err != nil {
		panic(fmt.Sprintf("Failed to register merge command: %v", err))
	}
}

func runMerge(cmd *cobra.Command, args []string) error {
	incomingPath, _ := cmd.Flags().GetString("incoming")
	storePath, _ := cmd.Flags().GetString("store")
	policyStr, _ := cmd.Flags().GetString("policy")
	startFresh, _ := cmd.Flags().GetBool("start-fresh")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	out := cmd.OutOrStdout()

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if storePath == "" {
		storePath = cfg.Store.Path
		if err := config.EnsureStoreDir(storePath); err != nil {
			return err
		}
	}
	if policyStr == "" {
		policyStr = cfg.Merge.DefaultPolicy
	}
	policy, err := hooks.ParsePolicy(policyStr)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(incomingPath)
	if err != nil {
		return fmt.Errorf("reading incoming document: %w", err)
	}
	incoming, err := hooks.DecodeDocument(data)
	if err != nil {
		return fmt.Errorf("parsing incoming document: %w", err)
	}

	// Fail fast on the incoming document before touching the store.
	if report := hooks.Validate(incoming, hooks.ValidateOptions{}); !report.Valid() {
		for _, issue := range report.Errors {
			fmt.Fprintf(out, "error: %s\n", issue)
		}
		return fmt.Errorf("incoming document is invalid, refusing to merge")
	}

	store := hooks.NewStore(storePath)
	opts := hooks.ApplyOptions{
		MergeOptions: hooks.MergeOptions{Policy: policy},
		StartFresh:   startFresh,
	}

	if dryRun {
		return mergeDryRun(cmd, store, incoming, opts)
	}

	result, err := store.Apply(incoming, opts)
	if err != nil {
		return describeMergeError(out, err)
	}

	if len(result.Conflicts) > 0 {
		// Interactive phase two: collect a decision per conflict, then
		// re-apply with the decision map.
		decisions, derr := promptDecisions(cmd, result.Conflicts)
		if derr != nil {
			fmt.Fprintln(out, "merge aborted, store unchanged")
			os.Exit(exitcode.MergeAborted)
		}
		opts.Decisions = decisions
		result, err = store.Apply(incoming, opts)
		if err != nil {
			return describeMergeError(out, err)
		}
	}

	for _, applied := range result.Applied {
		fmt.Fprintf(out, "resolved %s via %s\n", applied.Conflict.Key(), applied.Policy)
	}
	if result.BackupPath != "" {
		fmt.Fprintf(out, "backup: %s\n", result.BackupPath)
	}
	fmt.Fprintf(out, "merged %d event(s), %d entr(ies) into %s\n",
		len(result.Document.Events()), result.Document.EntryCount(), storePath)
	logger.Info("merge committed",
		logger.String("store", storePath), logger.Int("entries", result.Document.EntryCount()))
	return nil
}

// mergeDryRun reports conflicts and the would-be result without writing.
func mergeDryRun(cmd *cobra.Command, store *hooks.Store, incoming hooks.Document, opts hooks.ApplyOptions) error {
	out := cmd.OutOrStdout()
	existing, err := store.Load()
	if err != nil {
		return describeMergeError(out, err)
	}
	result, err := hooks.Merge(existing, incoming, opts.MergeOptions)
	if err != nil {
		return err
	}
	if len(result.Conflicts) > 0 {
		fmt.Fprintf(out, "%d conflict(s):\n", len(result.Conflicts))
		for _, c := range result.Conflicts {
			printConflict(out, c)
		}
		return nil
	}
	fmt.Fprintf(out, "no unresolved conflicts; result would have %d entr(ies)\n", result.Document.EntryCount())
	return nil
}

// promptDecisions asks the user to resolve each conflict on the terminal.
func promptDecisions(cmd *cobra.Command, conflicts []hooks.Conflict) (map[string]hooks.Policy, error) {
	out := cmd.OutOrStdout()
	reader := bufio.NewReader(cmd.InOrStdin())
	decisions := make(map[string]hooks.Policy, len(conflicts))

	fmt.Fprintf(out, "%d conflict(s) need resolution\n", len(conflicts))
	for _, c := range conflicts {
		printConflict(out, c)
		for {
			fmt.Fprint(out, "  resolve [k]eep-existing / [r]eplace / [b]oth / [a]bort: ")
			line, err := reader.ReadString('\n')
			if err != nil {
				return nil, fmt.Errorf("reading decision: %w", err)
			}
			switch strings.ToLower(strings.TrimSpace(line)) {
			case "k", "keep-existing":
				decisions[c.Key()] = hooks.PolicyKeepExisting
			case "r", "replace":
				decisions[c.Key()] = hooks.PolicyReplace
			case "b", "both", "keep-both":
				decisions[c.Key()] = hooks.PolicyKeepBoth
			case "a", "abort":
				return nil, fmt.Errorf("aborted by user")
			default:
				continue
			}
			break
		}
	}
	return decisions, nil
}

func printConflict(out io.Writer, c hooks.Conflict) {
	fmt.Fprintf(out, "- %s (matcher %q, description %q)\n", c.Event, c.Incoming.Matcher, c.Incoming.Description)
	fmt.Fprintf(out, "    existing: priority %d, %d action(s)\n", c.Existing.Priority, len(c.Existing.Actions))
	fmt.Fprintf(out, "    incoming: priority %d, %d action(s)\n", c.Incoming.Priority, len(c.Incoming.Actions))
}

// describeMergeError maps the typed merge errors onto actionable output
// before returning them up to Execute.
func describeMergeError(out io.Writer, err error) error {
	switch e := err.(type) {
	case *hooks.CorruptDocumentError:
		fmt.Fprintf(out, "store is corrupt: %v\n", e.Err)
		if e.BackupPath != "" {
			fmt.Fprintf(out, "raw bytes preserved at %s\n", e.BackupPath)
		}
		fmt.Fprintln(out, "re-run with --start-fresh to merge from the incoming document only")
	case *hooks.PostMergeValidationError:
		fmt.Fprintln(out, "merged result failed validation; store unchanged:")
		for _, issue := range e.Report.Errors {
			fmt.Fprintf(out, "    error: %s\n", issue)
		}
	case *hooks.CommitError:
		fmt.Fprintln(out, "commit failed during the atomic swap; store unchanged, retry the merge")
	}
	return err
}
