/*
Copyright © 2025 Hooksmith Authors
*/
package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hooksmith/hooksmith/pkg/hooks"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// executeCommand runs the production command tree with the given args and
// captures combined output. Flag state is reset afterwards so executions
// stay independent.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	resetFlags(rootCmd)
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	cmd.Flags().Visit(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// isolateConfig points HOME and the working directory at empty temp dirs
// so the user's real configuration cannot leak into the test.
func isolateConfig(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	chdir(t, t.TempDir())
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}

func TestGenerateCommand(t *testing.T) {
	isolateConfig(t)

	output, err := executeCommand(t, "generate",
		"--event", "after-tool-use",
		"--matcher", "Write|Edit",
		"--command", "make fmt",
		"--description", "format changed files")
	if err != nil {
		t.Fatalf("generate failed: %v\n%s", err, output)
	}

	doc, err := hooks.DecodeDocument([]byte(output))
	if err != nil {
		t.Fatalf("generate output is not a document: %v\n%s", err, output)
	}
	entries := doc[hooks.EventAfterToolUse]
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	if entries[0].Matcher != "Write|Edit" || entries[0].Actions[0].Payload != "make fmt" {
		t.Errorf("unexpected entry: %+v", entries[0])
	}
}

func TestGenerateCommandFromTemplate(t *testing.T) {
	isolateConfig(t)

	output, err := executeCommand(t, "generate", "--template", "prompt-guard")
	if err != nil {
		t.Fatalf("generate --template failed: %v\n%s", err, output)
	}
	if !strings.Contains(output, "user-prompt-submit") {
		t.Errorf("prompt-guard output missing its event:\n%s", output)
	}
}

func TestGenerateCommandRejectsBadInput(t *testing.T) {
	isolateConfig(t)

	if _, err := executeCommand(t, "generate",
		"--event", "after-tool-use", "--matcher", "Write",
		"--command", "x", "--prompt", "y"); err == nil {
		t.Error("expected error for --command with --prompt")
	}

	if _, err := executeCommand(t, "generate",
		"--event", "stop", "--matcher", "Write", "--command", "x"); err == nil {
		t.Error("expected error for a matcher on a matcher-less event")
	}

	if _, err := executeCommand(t, "generate", "--template", "no-such"); err == nil {
		t.Error("expected error for unknown template")
	}
}

func TestGenerateCommandWritesFile(t *testing.T) {
	isolateConfig(t)
	outPath := filepath.Join(t.TempDir(), "generated.json")

	output, err := executeCommand(t, "generate",
		"--event", "stop", "--command", "cleanup", "--description", "tidy",
		"--output", outPath)
	if err != nil {
		t.Fatalf("generate --output failed: %v\n%s", err, output)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("output file not written: %v", err)
	}
	if _, err := hooks.DecodeDocument(data); err != nil {
		t.Errorf("written file is not a document: %v", err)
	}
}

func TestValidateCommand(t *testing.T) {
	isolateConfig(t)
	dir := t.TempDir()

	valid := filepath.Join(dir, "valid.json")
	validDoc := `{"stop": [{"description": "tidy", "hooks": [{"type": "command", "command": "cleanup"}]}]}`
	if err := os.WriteFile(valid, []byte(validDoc), 0o644); err != nil {
		t.Fatal(err)
	}

	invalid := filepath.Join(dir, "invalid.json")
	invalidDoc := `{"stop": [{"description": "broken", "hooks": []}]}`
	if err := os.WriteFile(invalid, []byte(invalidDoc), 0o644); err != nil {
		t.Fatal(err)
	}

	output, err := executeCommand(t, "validate", valid)
	if err != nil {
		t.Fatalf("validate of valid document failed: %v\n%s", err, output)
	}
	if !strings.Contains(output, "✓") {
		t.Errorf("missing valid marker:\n%s", output)
	}

	output, err = executeCommand(t, "validate", valid, invalid)
	if err == nil {
		t.Fatalf("validate should fail when any document is invalid:\n%s", output)
	}
	if !strings.Contains(output, "✗") || !strings.Contains(output, "✓") {
		t.Errorf("mixed batch should report both outcomes:\n%s", output)
	}
}

func TestInitCommand(t *testing.T) {
	isolateConfig(t)
	storePath := filepath.Join(t.TempDir(), "hooks.json")

	output, err := executeCommand(t, "init", storePath)
	if err != nil {
		t.Fatalf("init failed: %v\n%s", err, output)
	}
	if _, err := os.Stat(storePath); err != nil {
		t.Fatalf("store not created: %v", err)
	}

	if _, err := executeCommand(t, "init", storePath); err == nil {
		t.Error("re-init without --force should fail")
	}
	if _, err := executeCommand(t, "init", "--force", storePath); err != nil {
		t.Errorf("init --force failed: %v", err)
	}
}

func TestMergeCommand(t *testing.T) {
	isolateConfig(t)
	dir := t.TempDir()
	storePath := filepath.Join(dir, "hooks.json")

	incoming := filepath.Join(dir, "incoming.json")
	doc := `{"after-tool-use": [{"matcher": "Write", "description": "format", "hooks": [{"type": "command", "command": "make fmt"}]}]}`
	if err := os.WriteFile(incoming, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	output, err := executeCommand(t, "merge",
		"--incoming", incoming, "--store", storePath, "--policy", "keep-existing")
	if err != nil {
		t.Fatalf("merge failed: %v\n%s", err, output)
	}
	if !strings.Contains(output, "merged") {
		t.Errorf("missing merge confirmation:\n%s", output)
	}

	stored, err := hooks.NewStore(storePath).Load()
	if err != nil {
		t.Fatalf("loading store after merge: %v", err)
	}
	if stored.EntryCount() != 1 {
		t.Errorf("store has %d entries, expected 1", stored.EntryCount())
	}

	// Conflicting second merge under replace rewrites the entry and
	// leaves a backup behind
	conflicting := filepath.Join(dir, "conflicting.json")
	doc = `{"after-tool-use": [{"matcher": "Write", "description": "format", "priority": 10, "hooks": [{"type": "command", "command": "gofmt -w ."}]}]}`
	if err := os.WriteFile(conflicting, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	output, err = executeCommand(t, "merge",
		"--incoming", conflicting, "--store", storePath, "--policy", "replace")
	if err != nil {
		t.Fatalf("conflicting merge failed: %v\n%s", err, output)
	}
	if !strings.Contains(output, "backup:") {
		t.Errorf("expected a backup path in output:\n%s", output)
	}

	stored, err = hooks.NewStore(storePath).Load()
	if err != nil {
		t.Fatal(err)
	}
	entry := stored[hooks.EventAfterToolUse][0]
	if entry.Priority != 10 || entry.Actions[0].Payload != "gofmt -w ." {
		t.Errorf("replace did not rewrite the entry: %+v", entry)
	}
}

func TestMergeCommandDryRun(t *testing.T) {
	isolateConfig(t)
	dir := t.TempDir()
	storePath := filepath.Join(dir, "hooks.json")

	incoming := filepath.Join(dir, "incoming.json")
	doc := `{"stop": [{"description": "tidy", "hooks": [{"type": "command", "command": "cleanup"}]}]}`
	if err := os.WriteFile(incoming, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	output, err := executeCommand(t, "merge",
		"--incoming", incoming, "--store", storePath, "--policy", "keep-existing", "--dry-run")
	if err != nil {
		t.Fatalf("dry run failed: %v\n%s", err, output)
	}
	if _, statErr := os.Stat(storePath); !os.IsNotExist(statErr) {
		t.Error("dry run must not create the store")
	}
	if !strings.Contains(output, "would have 1 entr(ies)") {
		t.Errorf("unexpected dry-run output:\n%s", output)
	}
}

func TestMergeCommandRejectsInvalidIncoming(t *testing.T) {
	isolateConfig(t)
	dir := t.TempDir()
	storePath := filepath.Join(dir, "hooks.json")

	incoming := filepath.Join(dir, "incoming.json")
	doc := `{"stop": [{"description": "broken", "hooks": []}]}`
	if err := os.WriteFile(incoming, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	output, err := executeCommand(t, "merge",
		"--incoming", incoming, "--store", storePath, "--policy", "replace")
	if err == nil {
		t.Fatalf("invalid incoming document must refuse to merge:\n%s", output)
	}
	if _, statErr := os.Stat(storePath); !os.IsNotExist(statErr) {
		t.Error("failed merge must not create the store")
	}
}

func TestInspectCommand(t *testing.T) {
	isolateConfig(t)
	dir := t.TempDir()
	storePath := filepath.Join(dir, "hooks.json")
	doc := `{"stop": [{"description": "tidy", "enabled": false, "hooks": [{"type": "command", "command": "cleanup"}]}]}`
	if err := os.WriteFile(storePath, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	output, err := executeCommand(t, "inspect", "--json", storePath)
	if err != nil {
		t.Fatalf("inspect failed: %v\n%s", err, output)
	}

	var report inspectReport
	if err := json.Unmarshal([]byte(output), &report); err != nil {
		t.Fatalf("inspect --json output unparsable: %v\n%s", err, output)
	}
	if !report.Exists || !report.Valid {
		t.Errorf("report = %+v, expected existing valid store", report)
	}
	if report.Entries != 1 || report.Disabled != 1 {
		t.Errorf("report counts = %+v", report)
	}
}

func TestInspectCommandMissingStore(t *testing.T) {
	isolateConfig(t)
	output, err := executeCommand(t, "inspect", filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("inspect of missing store failed: %v", err)
	}
	if !strings.Contains(output, "not initialized") {
		t.Errorf("unexpected output:\n%s", output)
	}
}

func TestTemplatesCommand(t *testing.T) {
	isolateConfig(t)
	output, err := executeCommand(t, "templates")
	if err != nil {
		t.Fatalf("templates failed: %v", err)
	}
	for _, name := range []string{"auto-formatter", "secret-detector", "session-logger", "prompt-guard"} {
		if !strings.Contains(output, name) {
			t.Errorf("templates output missing %s:\n%s", name, output)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	isolateConfig(t)
	output, err := executeCommand(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(output, "hooksmith") {
		t.Errorf("unexpected version output: %s", output)
	}

	output, err = executeCommand(t, "version", "--json")
	if err != nil {
		t.Fatalf("version --json failed: %v", err)
	}
	var info map[string]string
	if err := json.Unmarshal([]byte(output), &info); err != nil {
		t.Fatalf("version --json output unparsable: %v\n%s", err, output)
	}
	if info["version"] == "" || info["platform"] == "" {
		t.Errorf("version info incomplete: %v", info)
	}
}
