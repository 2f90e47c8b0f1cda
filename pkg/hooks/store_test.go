package hooks

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "hooks.json"))
	store.now = func() time.Time {
		return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	}
	return store
}

// seedStore writes a valid persisted document containing the given
// entries directly to the store path.
func seedStore(t *testing.T, store *Store, entries ...Entry) []byte {
	t.Helper()
	doc := NewDocument()
	for _, entry := range entries {
		doc.Add(entry)
	}
	data, err := doc.Marshal()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(store.Path, data, 0o644))
	return data
}

func readStore(t *testing.T, store *Store) []byte {
	t.Helper()
	data, err := os.ReadFile(store.Path)
	require.NoError(t, err)
	return data
}

func TestStoreInit(t *testing.T) {
	store := testStore(t)
	require.NoError(t, store.Init(false))

	doc, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 0, doc.EntryCount())

	// A second init refuses to clobber the store
	err = store.Init(false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	require.NoError(t, store.Init(true))
}

func TestStoreLoadMissingFileIsEmpty(t *testing.T) {
	store := testStore(t)
	doc, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 0, doc.EntryCount())
}

func TestStoreApplyCreatesStore(t *testing.T) {
	store := testStore(t)
	incoming := singleEntryDoc(mustGenerate(t, GenerateInput{
		Event: EventStop, Kind: ActionCommand, Payload: "cleanup", Description: "tidy",
	}))

	result, err := store.Apply(incoming, ApplyOptions{MergeOptions: MergeOptions{Policy: PolicyKeepExisting}})
	require.NoError(t, err)
	assert.Empty(t, result.BackupPath, "no backup when there was nothing to back up")

	doc, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, doc.EntryCount())
	assert.Equal(t, "cleanup", doc[EventStop][0].Actions[0].Payload)
}

func TestStoreApplyBacksUpBeforeCommit(t *testing.T) {
	store := testStore(t)
	before := seedStore(t, store, mustGenerate(t, GenerateInput{
		Event: EventStop, Kind: ActionCommand, Payload: "cleanup", Description: "tidy",
	}))

	incoming := singleEntryDoc(mustGenerate(t, GenerateInput{
		Event: EventAfterToolUse, Matcher: "Write", Kind: ActionCommand, Payload: "make fmt", Description: "format",
	}))
	result, err := store.Apply(incoming, ApplyOptions{MergeOptions: MergeOptions{Policy: PolicyKeepExisting}})
	require.NoError(t, err)

	require.NotEmpty(t, result.BackupPath)
	backup, err := os.ReadFile(result.BackupPath)
	require.NoError(t, err)
	assert.Equal(t, before, backup, "backup must hold the pre-merge bytes")

	doc, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 2, doc.EntryCount())
}

func TestStoreApplyCorruptStoreRefusesToMerge(t *testing.T) {
	store := testStore(t)
	raw := []byte(`{definitely not json`)
	require.NoError(t, os.WriteFile(store.Path, raw, 0o644))

	incoming := singleEntryDoc(mustGenerate(t, GenerateInput{
		Event: EventStop, Kind: ActionCommand, Payload: "cleanup", Description: "tidy",
	}))
	_, err := store.Apply(incoming, ApplyOptions{MergeOptions: MergeOptions{Policy: PolicyReplace}})

	var corrupt *CorruptDocumentError
	require.ErrorAs(t, err, &corrupt)
	require.NotEmpty(t, corrupt.BackupPath, "corrupt bytes must be preserved for forensics")

	backup, readErr := os.ReadFile(corrupt.BackupPath)
	require.NoError(t, readErr)
	assert.Equal(t, raw, backup)

	// The store itself is untouched
	assert.Equal(t, raw, readStore(t, store))
}

func TestStoreApplySchemaViolationIsCorrupt(t *testing.T) {
	store := testStore(t)
	// Parseable JSON, but an event the schema does not know
	raw := []byte(`{"on-vacation": []}`)
	require.NoError(t, os.WriteFile(store.Path, raw, 0o644))

	_, err := store.Load()
	var corrupt *CorruptDocumentError
	require.ErrorAs(t, err, &corrupt)
	assert.Empty(t, corrupt.BackupPath, "Load never takes backups")
}

func TestStoreApplyStartFresh(t *testing.T) {
	store := testStore(t)
	raw := []byte(`{definitely not json`)
	require.NoError(t, os.WriteFile(store.Path, raw, 0o644))

	incoming := singleEntryDoc(mustGenerate(t, GenerateInput{
		Event: EventStop, Kind: ActionCommand, Payload: "cleanup", Description: "tidy",
	}))
	result, err := store.Apply(incoming, ApplyOptions{
		MergeOptions: MergeOptions{Policy: PolicyKeepExisting},
		StartFresh:   true,
	})
	require.NoError(t, err)

	require.NotEmpty(t, result.BackupPath)
	backup, readErr := os.ReadFile(result.BackupPath)
	require.NoError(t, readErr)
	assert.Equal(t, raw, backup, "forensic backup holds the corrupt bytes")

	doc, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, doc.EntryCount(), "fresh store holds only the incoming entries")
}

func TestStoreApplyFailedCommitLeavesStoreUnchanged(t *testing.T) {
	store := testStore(t)
	before := seedStore(t, store, mustGenerate(t, GenerateInput{
		Event: EventStop, Kind: ActionCommand, Payload: "cleanup", Description: "tidy",
	}))

	store.writeFile = func(path string, data []byte, perm os.FileMode) error {
		return errors.New("disk full during swap")
	}

	incoming := singleEntryDoc(mustGenerate(t, GenerateInput{
		Event: EventAfterToolUse, Matcher: "Write", Kind: ActionCommand, Payload: "make fmt", Description: "format",
	}))
	_, err := store.Apply(incoming, ApplyOptions{MergeOptions: MergeOptions{Policy: PolicyReplace}})

	var commit *CommitError
	require.ErrorAs(t, err, &commit)
	assert.Equal(t, before, readStore(t, store), "failed commit must leave the store byte-for-byte unchanged")
}

func TestStoreApplyPostMergeValidation(t *testing.T) {
	store := testStore(t)
	incoming := singleEntryDoc(mustGenerate(t, GenerateInput{
		Event: EventAfterToolUse, Matcher: "Write", Kind: ActionCommand,
		Payload: "./scripts/format.sh", Description: "format",
	}))

	_, err := store.Apply(incoming, ApplyOptions{
		MergeOptions: MergeOptions{Policy: PolicyKeepExisting},
		PathExists:   func(string) bool { return false },
	})

	var postMerge *PostMergeValidationError
	require.ErrorAs(t, err, &postMerge)
	require.NotEmpty(t, postMerge.Report.Errors)
	assert.Equal(t, ScriptNotFound, postMerge.Report.Errors[0].Kind)

	_, statErr := os.Stat(store.Path)
	assert.True(t, os.IsNotExist(statErr), "nothing may be written when validation fails")
}

func TestStoreApplyInteractiveCommitsNothing(t *testing.T) {
	store := testStore(t)
	before := seedStore(t, store, mustGenerate(t, GenerateInput{
		Event: EventAfterToolUse, Matcher: "Write", Kind: ActionCommand,
		Payload: "gofmt -w .", Description: "format",
	}))

	incoming := singleEntryDoc(mustGenerate(t, GenerateInput{
		Event: EventAfterToolUse, Matcher: "Write", Kind: ActionCommand,
		Payload: "make fmt", Description: "format",
	}))
	result, err := store.Apply(incoming, ApplyOptions{MergeOptions: MergeOptions{Policy: PolicyInteractive}})
	require.NoError(t, err)
	require.Len(t, result.Conflicts, 1)
	assert.Nil(t, result.Document)
	assert.Empty(t, result.BackupPath)
	assert.Equal(t, before, readStore(t, store), "phase one commits nothing")

	// Phase two with decisions commits
	decisions := map[string]Policy{result.Conflicts[0].Key(): PolicyKeepBoth}
	result, err = store.Apply(incoming, ApplyOptions{
		MergeOptions: MergeOptions{Policy: PolicyInteractive, Decisions: decisions},
	})
	require.NoError(t, err)
	require.NotNil(t, result.Document)
	assert.NotEmpty(t, result.BackupPath)

	doc, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 2, doc.EntryCount())
}

func TestStoreApplyRoundTrip(t *testing.T) {
	store := testStore(t)
	incoming := NewDocument()
	incoming.Add(mustGenerate(t, GenerateInput{
		Event: EventBeforeToolUse, Matcher: "Bash", Kind: ActionCommand,
		Payload: "audit-command", Description: "audit", Priority: 10,
	}))
	incoming.Add(mustGenerate(t, GenerateInput{
		Event: EventUserPromptSubmit, Kind: ActionPrompt,
		Payload: "review the prompt", Description: "policy review",
	}))

	_, err := store.Apply(incoming, ApplyOptions{MergeOptions: MergeOptions{Policy: PolicyKeepExisting}})
	require.NoError(t, err)

	doc, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, 2, doc.EntryCount())
	assert.Equal(t, 10, doc[EventBeforeToolUse][0].Priority)
	prompt := doc[EventUserPromptSubmit][0].Actions[0]
	assert.Equal(t, ActionPrompt, prompt.Kind)
	assert.Equal(t, PromptTimeout, prompt.TimeoutSeconds)
}
