package domain

import (
	"encoding/json"
	"time"
)

// Persona is a generated digital identity stored for session restore.
// It lives beside the pipeline but shares nothing with it.
type Persona struct {
	ID        int64
	SessionID string
	HexColors []string
	Document  json.RawMessage
	ImageData string
	CreatedAt time.Time
}
