package domain

import "errors"

var (
	ErrBatchNotFound    = errors.New("bronze batch not found")
	ErrEventNotFound    = errors.New("staged event not found")
	ErrEmptyBatch       = errors.New("batch has no records")
	ErrSourceRequired   = errors.New("source name required")
	ErrMissingIdentity  = errors.New("missing identity field")
	ErrInvalidEventDate = errors.New("invalid event date")
	ErrInvalidStartTime = errors.New("invalid start time")
	ErrInvalidBatchSize = errors.New("invalid batch size")
	ErrInvalidCount     = errors.New("invalid event count")
	ErrPersonaNotFound  = errors.New("persona not found")
	ErrColorCount       = errors.New("exactly three hex colors required")
	ErrInvalidHexColor  = errors.New("invalid hex color format")
	ErrPersonaSchema    = errors.New("persona document missing required sections")
	ErrSessionConflict  = errors.New("persona session already exists")
)
