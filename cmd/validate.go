/*
Copyright © 2025 Hooksmith Authors
*/
package cmd

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/hooksmith/hooksmith/internal/ops"
	"github.com/hooksmith/hooksmith/pkg/hooks"
	"github.com/hooksmith/hooksmith/pkg/safeio"
	"github.com/hooksmith/hooksmith/pkg/schema"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate <document> [<document>...]",
	Short: "Validate hook configuration documents",
	Long: `Validate checks one or more configuration documents against the hook
schema and the cross-field rules (matcher applicability, payload
non-emptiness, script path existence). Errors make the document invalid;
warnings are surfaced but do not block.

Exit code is 0 when every document is valid, 1 otherwise.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().Bool("no-script-check", false, "Skip script path existence checks")
	validateCmd.Flags().Int("concurrency", 4, "Maximum documents validated in parallel")

	if err := ops.RegisterCommand("validate", ops.GroupPipeline, validateCmd, validateCmd.Short); err != nil {
		panic(fmt.Sprintf("Failed to register validate command: %v", err))
	}
}

// fileReport pairs a document path with its validation findings.
type fileReport struct {
	path      string
	report    *hooks.Report
	schemaErr []schema.ValidationError
	loadErr   error
}

func runValidate(cmd *cobra.Command, args []string) error {
	noScriptCheck, _ := cmd.Flags().GetBool("no-script-check")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	if concurrency < 1 {
		concurrency = 1
	}

	var pathExists hooks.PathExistsFunc
	if !noScriptCheck {
		pathExists = func(p string) bool {
			_, err := os.Stat(p)
			return err == nil
		}
	}

	var mu sync.Mutex
	reports := make([]fileReport, 0, len(args))

	var g errgroup.Group
	g.SetLimit(concurrency)
	for _, path := range args {
		path := path
		g.Go(func() error {
			fr := validateFile(path, pathExists)
			mu.Lock()
			reports = append(reports, fr)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(reports, func(i, j int) bool { return reports[i].path < reports[j].path })

	out := cmd.OutOrStdout()
	invalid := 0
	for _, fr := range reports {
		switch {
		case fr.loadErr != nil:
			invalid++
			fmt.Fprintf(out, "✗ %s: %v\n", fr.path, fr.loadErr)
		case len(fr.schemaErr) > 0:
			invalid++
			fmt.Fprintf(out, "✗ %s: schema violations\n", fr.path)
			for _, e := range fr.schemaErr {
				fmt.Fprintf(out, "    %s: %s\n", e.Path, e.Message)
			}
		case !fr.report.Valid():
			invalid++
			fmt.Fprintf(out, "✗ %s: %d error(s), %d warning(s)\n", fr.path, len(fr.report.Errors), len(fr.report.Warnings))
			for _, issue := range fr.report.Errors {
				fmt.Fprintf(out, "    error: %s\n", issue)
			}
			for _, issue := range fr.report.Warnings {
				fmt.Fprintf(out, "    warning: %s\n", issue)
			}
		default:
			fmt.Fprintf(out, "✓ %s: valid (%d warning(s))\n", fr.path, len(fr.report.Warnings))
			for _, issue := range fr.report.Warnings {
				fmt.Fprintf(out, "    warning: %s\n", issue)
			}
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d document(s) invalid", invalid, len(reports))
	}
	return nil
}

// validateFile runs the schema check and the structural validator over
// one document file.
func validateFile(path string, pathExists hooks.PathExistsFunc) fileReport {
	fr := fileReport{path: path}

	clean, err := safeio.CleanUserPath(path)
	if err != nil {
		fr.loadErr = err
		return fr
	}
	data, err := os.ReadFile(clean)
	if err != nil {
		fr.loadErr = err
		return fr
	}

	res, err := schema.ValidateHookConfig(data)
	if err != nil {
		fr.loadErr = err
		return fr
	}
	if !res.Valid {
		fr.schemaErr = res.Errors
		return fr
	}

	doc, err := hooks.DecodeDocument(data)
	if err != nil {
		fr.loadErr = err
		return fr
	}
	fr.report = hooks.Validate(doc, hooks.ValidateOptions{PathExists: pathExists})
	return fr
}
