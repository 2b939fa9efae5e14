package model

import "time"

// RunStatus represents the current state of a resolution run.
type RunStatus string

const (
	RunStatusQueued    RunStatus = "queued"
	RunStatusResolving RunStatus = "resolving"
	RunStatusEnriching RunStatus = "enriching"
	RunStatusComplete  RunStatus = "complete"
	RunStatusFailed    RunStatus = "failed"
	RunStatusNotFound  RunStatus = "not_found"
)

// Run represents a single resolution run for a handle.
type Run struct {
	ID        string           `json:"id"`
	Handle    string           `json:"handle"`
	Status    RunStatus        `json:"status"`
	Result    *ResolvedProfile `json:"result,omitempty"`
	Error     string           `json:"error,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}
