package apperrors

import "errors"

var (
	// ErrNoSQLFound indicates no executable SQL could be located in an
	// agent transcript. Distinct from an empty result set.
	ErrNoSQLFound = errors.New("no SQL statement found in agent response")

	// ErrQueryBlocked indicates a statement failed the safety validator
	// and was never executed.
	ErrQueryBlocked = errors.New("query blocked for safety")

	// ErrEmptyQuery indicates the caller submitted an empty question.
	ErrEmptyQuery = errors.New("query cannot be empty")
)

// Error categories tag failed results so callers can classify failures
// without string-matching messages. Stored in
// QueryResult.Metadata["error_category"].
const (
	CategoryValidation      = "validation"
	CategoryAgent           = "agent"
	CategoryDatabase        = "database"
	CategoryQueryProcessing = "query_processing"
)
