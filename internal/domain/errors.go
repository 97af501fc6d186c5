package domain

import "errors"

var (
	// Ingestion errors
	ErrNoData              = errors.New("file is empty or has an invalid format")
	ErrUnsupportedFormat   = errors.New("file type not allowed")
	ErrDatabaseUnavailable = errors.New("database unavailable")
	ErrSchemaUnavailable   = errors.New("could not create or verify tables")

	// Rule set errors
	ErrInvalidRuleSet = errors.New("invalid rule set")

	// Analyst errors
	ErrEmptyQuestion = errors.New("question not provided")
	ErrModelFailure  = errors.New("language model request failed")
)
