// Package errors provides structured error handling for the provision
// search engine.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: Parse/segmentation errors
//   - 3XX: Acquisition (network/source) errors
//   - 4XX: Query/validation errors
//   - 5XX: Store/internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryParse indicates document parse and segmentation errors.
	CategoryParse Category = "PARSE"
	// CategoryAcquisition indicates document acquisition errors.
	CategoryAcquisition Category = "ACQUISITION"
	// CategoryQuery indicates query validation errors.
	CategoryQuery Category = "QUERY"
	// CategoryStore indicates persistence-layer errors.
	CategoryStore Category = "STORE"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but the run can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"
	ErrCodeCatalogInvalid = "ERR_103_CATALOG_INVALID"

	// Parse errors (200-299): per-unit, never fatal to a run
	ErrCodeUnparsableText = "ERR_201_UNPARSABLE_TEXT"
	ErrCodeEmptyContent   = "ERR_202_EMPTY_CONTENT"

	// Acquisition errors (300-399): per-unit, retried via a later full run
	ErrCodeFetchFailed      = "ERR_301_FETCH_FAILED"
	ErrCodeFetchStatus      = "ERR_302_FETCH_STATUS"
	ErrCodeSourceUnreadable = "ERR_303_SOURCE_UNREADABLE"

	// Query errors (400-499): expected for citizen input, never surfaced
	ErrCodeMalformedQuery = "ERR_401_MALFORMED_QUERY"
	ErrCodeInvalidInput   = "ERR_402_INVALID_INPUT"

	// Store errors (500-599)
	ErrCodeStoreCorrupt = "ERR_501_STORE_CORRUPT"
	ErrCodeIndexDesync  = "ERR_502_INDEX_DESYNC"
	ErrCodeNotFound     = "ERR_503_NOT_FOUND"
	ErrCodeInternal     = "ERR_504_INTERNAL"
)

// categoryFromCode derives the category from a code's number range.
func categoryFromCode(code string) Category {
	if len(code) < 5 {
		return CategoryStore
	}
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryParse
	case '3':
		return CategoryAcquisition
	case '4':
		return CategoryQuery
	default:
		return CategoryStore
	}
}

// severityFromCode derives severity. Store corruption and desync are
// fatal: correctness of ranked results depends on index/record sync.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeStoreCorrupt, ErrCodeIndexDesync:
		return SeverityFatal
	case ErrCodeUnparsableText, ErrCodeMalformedQuery:
		return SeverityWarning
	default:
		return SeverityError
	}
}

// isRetryableCode reports whether a later full run may succeed.
// Acquisition failures are the retryable class; a failed unit is simply
// skipped and stays eligible because its ingest record is never written.
func isRetryableCode(code string) bool {
	return categoryFromCode(code) == CategoryAcquisition
}
