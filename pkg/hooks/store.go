package hooks

import (
	"fmt"
	"os"
	"time"

	"github.com/hooksmith/hooksmith/pkg/logger"
	"github.com/hooksmith/hooksmith/pkg/safeio"
	"github.com/hooksmith/hooksmith/pkg/schema"
)

// Store owns the read-modify-write transaction against one persisted
// configuration file. It is not internally synchronized: at most one
// Store must act on a given path at a time, callers needing concurrent
// safety serialize externally.
type Store struct {
	Path string

	// writeFile is the atomic commit primitive; tests inject failures to
	// simulate a crash during the swap.
	writeFile func(path string, data []byte, perm os.FileMode) error
	now       func() time.Time
}

// NewStore returns a store bound to path.
func NewStore(path string) *Store {
	return &Store{
		Path:      path,
		writeFile: safeio.WriteFileAtomic,
		now:       time.Now,
	}
}

// ApplyOptions extends merge resolution with store-level choices.
type ApplyOptions struct {
	MergeOptions

	// StartFresh proceeds from an empty existing document when the
	// persisted store is corrupt. Without it a corrupt store refuses to
	// merge.
	StartFresh bool

	// PathExists backs the post-merge validation's script checks. Defaults
	// to an os.Stat lookup.
	PathExists PathExistsFunc
}

// Init writes an empty document to the store path. It refuses to
// overwrite an existing store unless force is set.
func (s *Store) Init(force bool) error {
	if _, err := os.Stat(s.Path); err == nil && !force {
		return fmt.Errorf("store %s already exists (use force to overwrite)", s.Path)
	}
	data, err := NewDocument().Marshal()
	if err != nil {
		return err
	}
	if err := s.writeFile(s.Path, data, 0o644); err != nil {
		return &CommitError{Path: s.Path, Err: err}
	}
	return nil
}

// Load reads and parses the persisted document. A missing file yields an
// empty document. A file that fails to parse or fails schema validation
// yields a CorruptDocumentError (without a backup; only Apply takes
// backups).
func (s *Store) Load() (Document, error) {
	doc, _, err := s.load()
	return doc, err
}

// load returns the parsed document together with the raw bytes as read.
// The raw bytes are nil when the file does not exist.
func (s *Store) load() (Document, []byte, error) {
	raw, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return NewDocument(), nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading store %s: %w", s.Path, err)
	}
	res, err := schema.ValidateHookConfig(raw)
	if err != nil {
		return nil, raw, &CorruptDocumentError{Path: s.Path, Err: err}
	}
	if !res.Valid {
		return nil, raw, &CorruptDocumentError{Path: s.Path, Err: fmt.Errorf("schema violation: %s", res.Errors[0].Message)}
	}
	doc, err := ParseDocument(raw)
	if err != nil {
		return nil, raw, &CorruptDocumentError{Path: s.Path, Err: err}
	}
	return doc, raw, nil
}

// Apply merges incoming into the persisted document and commits the
// result atomically. The sequence is: read, backup, merge, re-validate,
// swap. Any failure before the swap leaves the store byte-for-byte
// unchanged; a failed swap also leaves it unchanged because the new
// document is materialized in a temporary file first.
func (s *Store) Apply(incoming Document, opts ApplyOptions) (*MergeResult, error) {
	var preBackup string
	existing, raw, err := s.load()
	if err != nil {
		corrupt, ok := err.(*CorruptDocumentError)
		if !ok || raw == nil {
			return nil, err
		}
		// Preserve the raw unparsable bytes for forensic recovery.
		preBackup, err = safeio.WriteBackup(s.Path, raw, s.now())
		if err != nil {
			return nil, fmt.Errorf("backing up corrupt store: %w", err)
		}
		corrupt.BackupPath = preBackup
		if !opts.StartFresh {
			return nil, corrupt
		}
		logger.Warn("store is corrupt, starting fresh from incoming",
			logger.String("path", s.Path), logger.String("backup", preBackup))
		existing = NewDocument()
	}

	result, err := Merge(existing, incoming, opts.MergeOptions)
	if err != nil {
		return nil, err
	}
	if len(result.Conflicts) > 0 {
		// Interactive phase one: surface conflicts, commit nothing.
		return result, nil
	}

	pathExists := opts.PathExists
	if pathExists == nil {
		pathExists = func(p string) bool {
			_, statErr := os.Stat(p)
			return statErr == nil
		}
	}
	if report := Validate(result.Document, ValidateOptions{PathExists: pathExists}); !report.Valid() {
		return nil, &PostMergeValidationError{Report: report}
	}

	if preBackup != "" {
		result.BackupPath = preBackup
	} else if raw != nil {
		backupPath, backupErr := safeio.WriteBackup(s.Path, raw, s.now())
		if backupErr != nil {
			return nil, fmt.Errorf("backing up store before commit: %w", backupErr)
		}
		result.BackupPath = backupPath
		logger.Debug("wrote pre-commit backup", logger.String("backup", backupPath))
	}

	data, err := result.Document.Marshal()
	if err != nil {
		return nil, err
	}
	if err := s.writeFile(s.Path, data, 0o644); err != nil {
		return nil, &CommitError{Path: s.Path, Err: err}
	}
	return result, nil
}
