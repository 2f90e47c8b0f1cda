package hooks

import "fmt"

// ErrorKind classifies pipeline failures. Generator and validator kinds
// are reported as values; merger kinds wrap the store-level failures.
type ErrorKind string

const (
	// Generator kinds.
	InvalidEvent      ErrorKind = "invalid-event"
	MatcherRequired   ErrorKind = "matcher-required"
	MatcherNotAllowed ErrorKind = "matcher-not-allowed"
	EmptyPayload      ErrorKind = "empty-payload"
	UnknownTemplate   ErrorKind = "unknown-template"

	// Validator kinds.
	EmptyActions          ErrorKind = "empty-actions"
	InvalidMatcherPattern ErrorKind = "invalid-matcher-pattern"
	InvalidActionKind     ErrorKind = "invalid-action-kind"
	InvalidTimeout        ErrorKind = "invalid-timeout"
	ScriptNotFound        ErrorKind = "script-not-found"
	DuplicateEntry        ErrorKind = "duplicate-entry" // warning, never an error

	// Merger kinds.
	CorruptExistingDocument   ErrorKind = "corrupt-existing-document"
	PostMergeValidationFailed ErrorKind = "post-merge-validation-failed"
	CommitIOFailure           ErrorKind = "commit-io-failure"
)

// GenerateError is returned by the generator for any rejected input.
type GenerateError struct {
	Kind   ErrorKind
	Detail string
}

func (e *GenerateError) Error() string {
	return fmt.Sprintf("generate: %s: %s", e.Kind, e.Detail)
}

// CorruptDocumentError reports a persisted store that failed to parse or
// failed schema validation. The raw bytes are backed up for forensic
// recovery before this error is returned; the store itself is untouched.
type CorruptDocumentError struct {
	Path       string
	BackupPath string
	Err        error
}

func (e *CorruptDocumentError) Error() string {
	return fmt.Sprintf("%s: existing document at %s is corrupt: %v", CorruptExistingDocument, e.Path, e.Err)
}

func (e *CorruptDocumentError) Unwrap() error { return e.Err }

// PostMergeValidationError reports that the merged document failed
// validation; no write occurred.
type PostMergeValidationError struct {
	Report *Report
}

func (e *PostMergeValidationError) Error() string {
	return fmt.Sprintf("%s: merged document has %d validation error(s)", PostMergeValidationFailed, len(e.Report.Errors))
}

// CommitError reports a failure of the atomic swap; the persisted store
// is unchanged and the merge must be retried.
type CommitError struct {
	Path string
	Err  error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("%s: committing %s: %v", CommitIOFailure, e.Path, e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }
