// Package errors provides standardized error types and helpers for the gitabase pipeline.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the pipeline's error classes
var (
	// ErrParse indicates markup that could not be interpreted (non-fatal)
	ErrParse = errors.New("parse warning")
	// ErrExtraction indicates a verse that could not be finalized
	ErrExtraction = errors.New("extraction failure")
	// ErrDuplicate indicates a repeated content fingerprint within a run
	ErrDuplicate = errors.New("duplicate record")
	// ErrIntegrity indicates a mismatch against the canonical count table
	ErrIntegrity = errors.New("integrity check failed")
	// ErrConflict indicates a fingerprint collision on a different payload
	ErrConflict = errors.New("store conflict")
	// ErrConfiguration indicates unusable run configuration
	ErrConfiguration = errors.New("configuration error")
	// ErrNotFound indicates a record or resource that does not exist
	ErrNotFound = errors.New("not found")
	// ErrInternal indicates an internal system error
	ErrInternal = errors.New("internal error")
)

// ParseWarning records markup the extractor recognized structurally but could
// not interpret, such as a chapter header with an unknown payload. It never
// stops a run.
type ParseWarning struct {
	Fragment string // Fragment identifier the markup came from
	Text     string // The offending text, normalized
	Err      error  // Underlying error, if any
}

func (e *ParseWarning) Error() string {
	if e.Fragment != "" {
		return fmt.Sprintf("unrecognized markup in %s: %q", e.Fragment, e.Text)
	}
	return fmt.Sprintf("unrecognized markup: %q", e.Text)
}

func (e *ParseWarning) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrParse
}

// ExtractionFailure records a verse-in-progress that was dropped instead of
// finalized, with enough context to locate it in the source.
type ExtractionFailure struct {
	Fragment   string // Fragment identifier
	Chapter    int    // Chapter at verse-open time, 0 if unresolved
	Designator string // Verse designator, if one was seen
	Reason     string // Why the verse could not be finalized
	Err        error  // Underlying error, if any
}

func (e *ExtractionFailure) Error() string {
	where := e.Fragment
	if e.Designator != "" {
		where = fmt.Sprintf("%s (chapter %d, verse %s)", e.Fragment, e.Chapter, e.Designator)
	}
	return fmt.Sprintf("verse dropped in %s: %s", where, e.Reason)
}

func (e *ExtractionFailure) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrExtraction
}

// DuplicateError records a second occurrence of a content fingerprint within
// one run. The first occurrence stays in the batch; the duplicate is dropped.
type DuplicateError struct {
	Fingerprint string // The repeated fingerprint
	Fragment    string // Fragment the duplicate came from, if known
	Err         error  // Underlying error, if any
}

func (e *DuplicateError) Error() string {
	if e.Fragment != "" {
		return fmt.Sprintf("duplicate fingerprint %s in %s", e.Fingerprint, e.Fragment)
	}
	return fmt.Sprintf("duplicate fingerprint %s", e.Fingerprint)
}

func (e *DuplicateError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrDuplicate
}

// IntegrityError summarizes a failed verification. The full per-chapter delta
// lives in the verification report; this error carries the headline numbers.
type IntegrityError struct {
	Book       string // Book code that was verified
	Mismatches int    // Number of chapters whose counts disagree
	Duplicates int    // Number of duplicate fingerprints found
	Err        error  // Underlying error, if any
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity check failed for %s: %d chapter mismatches, %d duplicates",
		e.Book, e.Mismatches, e.Duplicates)
}

func (e *IntegrityError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrIntegrity
}

// ConflictError records a fingerprint that already exists in the store with a
// different payload. The write for that record is rejected; the batch proceeds.
type ConflictError struct {
	Fingerprint string // The colliding fingerprint
	Book        string // Book code of the incoming record
	Chapter     int    // Chapter of the incoming record
	Designator  string // Verse designator of the incoming record
	Err         error  // Underlying error, if any
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("store conflict for %s %d.%s: fingerprint %s exists with different content",
		e.Book, e.Chapter, e.Designator, e.Fingerprint)
}

func (e *ConflictError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrConflict
}

// ConfigurationError indicates run configuration that makes processing
// impossible, such as an empty corpus or an absent file map.
type ConfigurationError struct {
	Setting string // Which configuration input is unusable
	Reason  string // Why it is unusable
	Err     error  // Underlying error, if any
}

func (e *ConfigurationError) Error() string {
	if e.Setting != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Setting, e.Reason)
	}
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrConfiguration
}

// NotFoundError represents a missing record or resource with context
type NotFoundError struct {
	Resource string // Type of resource (e.g., "verse", "run", "fragment")
	ID       string // Identifier of the resource
	Err      error  // Underlying error, if any
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNotFound
}

// Helper functions for creating common errors

// NewParseWarning creates a ParseWarning
func NewParseWarning(fragment, text string) *ParseWarning {
	return &ParseWarning{
		Fragment: fragment,
		Text:     text,
	}
}

// NewExtractionFailure creates an ExtractionFailure
func NewExtractionFailure(fragment string, chapter int, designator, reason string) *ExtractionFailure {
	return &ExtractionFailure{
		Fragment:   fragment,
		Chapter:    chapter,
		Designator: designator,
		Reason:     reason,
	}
}

// NewDuplicate creates a DuplicateError
func NewDuplicate(fingerprint, fragment string) *DuplicateError {
	return &DuplicateError{
		Fingerprint: fingerprint,
		Fragment:    fragment,
	}
}

// NewIntegrity creates an IntegrityError
func NewIntegrity(book string, mismatches, duplicates int) *IntegrityError {
	return &IntegrityError{
		Book:       book,
		Mismatches: mismatches,
		Duplicates: duplicates,
	}
}

// NewConflict creates a ConflictError
func NewConflict(fingerprint, book string, chapter int, designator string) *ConflictError {
	return &ConflictError{
		Fingerprint: fingerprint,
		Book:        book,
		Chapter:     chapter,
		Designator:  designator,
	}
}

// NewConfiguration creates a ConfigurationError
func NewConfiguration(setting, reason string) *ConfigurationError {
	return &ConfigurationError{
		Setting: setting,
		Reason:  reason,
	}
}

// NewNotFound creates a NotFoundError
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
	}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
