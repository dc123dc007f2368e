package xlate

import (
	"fmt"
	"strings"
)

// MalformedDocumentError indicates the input document could not be parsed.
type MalformedDocumentError struct {
	Message string
	Cause   error
}

func (e *MalformedDocumentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed document: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("malformed document: %s", e.Message)
}

func (e *MalformedDocumentError) Unwrap() error {
	return e.Cause
}

// UnsupportedVersionError indicates a recognized but unhandled format version.
type UnsupportedVersionError struct {
	Version string
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported document version %q", e.Version)
}

// MissingAttributeError indicates a required document attribute was absent.
type MissingAttributeError struct {
	Attribute string
	Element   string
}

func (e *MissingAttributeError) Error() string {
	if e.Element != "" {
		return fmt.Sprintf("missing required attribute %q on <%s>", e.Attribute, e.Element)
	}
	return fmt.Sprintf("missing required attribute %q", e.Attribute)
}

// ProviderError indicates a translation provider failure (API error, rate limit, etc.).
type ProviderError struct {
	Message   string
	Cause     error
	Retryable bool // Whether the operation can be retried
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("provider error: %s", e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// TranslationUnavailableError indicates a unit exhausted its retry budget
// against the provider. The unit stays untranslated; the batch continues.
type TranslationUnavailableError struct {
	UnitID   string
	Attempts int
	Cause    error
}

func (e *TranslationUnavailableError) Error() string {
	return fmt.Sprintf("translation unavailable for unit %q after %d attempts: %v",
		e.UnitID, e.Attempts, e.Cause)
}

func (e *TranslationUnavailableError) Unwrap() error {
	return e.Cause
}

// StructuralIntegrityError indicates the translated text dropped, duplicated,
// or reordered inline markers relative to the source.
type StructuralIntegrityError struct {
	UnitID string
	Issues []string
}

func (e *StructuralIntegrityError) Error() string {
	return fmt.Sprintf("structural integrity failure in unit %q: %s",
		e.UnitID, strings.Join(e.Issues, "; "))
}

// MemoryError indicates a translation-memory operation failure.
type MemoryError struct {
	Message string
	Cause   error
}

func (e *MemoryError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("memory error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("memory error: %s", e.Message)
}

func (e *MemoryError) Unwrap() error {
	return e.Cause
}

// GroupConflictError indicates a language slot in a translation group is
// already occupied by a different content-item reference.
type GroupConflictError struct {
	GroupID  string
	Language string
	Existing ContentRef
	Incoming ContentRef
}

func (e *GroupConflictError) Error() string {
	return fmt.Sprintf("group %s already maps language %q to %s (got %s)",
		e.GroupID, e.Language, e.Existing.Key(), e.Incoming.Key())
}

// IncompleteTranslationError indicates a rebuild was requested while some
// units are still untranslated or flagged and partial mode is off.
type IncompleteTranslationError struct {
	Pending []string // unit IDs not in a shippable state
}

func (e *IncompleteTranslationError) Error() string {
	return fmt.Sprintf("document incomplete: %d unit(s) not translated: %s",
		len(e.Pending), strings.Join(e.Pending, ", "))
}
