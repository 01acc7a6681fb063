package tabular

import "errors"

// Common parse errors
var (
	// ErrEmptyPayload is returned when the payload has no content
	ErrEmptyPayload = errors.New("payload is empty")

	// ErrNoRows is returned when the payload yields no data rows
	ErrNoRows = errors.New("payload contains no data rows")

	// ErrInvalidEncoding is returned when the payload is not valid UTF-8
	ErrInvalidEncoding = errors.New("invalid payload encoding")
)
