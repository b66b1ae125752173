package model

import (
	"time"

	"github.com/google/uuid"
)

type ImportStatus string

const (
	ImportPending   ImportStatus = "pending"
	ImportRunning   ImportStatus = "running"
	ImportCompleted ImportStatus = "completed"
	ImportFailed    ImportStatus = "failed"
)

// ImportJob is a request to pull tasks from a remote URL and bulk-create them.
type ImportJob struct {
	ID        uuid.UUID    `json:"id"`
	URL       string       `json:"url"`
	Status    ImportStatus `json:"status"`
	Imported  int          `json:"imported"`
	Error     string       `json:"error,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}
