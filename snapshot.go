package honeybadger

import "time"

// RunStatus is progress of an aggregation run as seen by consumers
type RunStatus string

const (
	RunPartial  RunStatus = "partial"
	RunComplete RunStatus = "complete"
	RunFailed   RunStatus = "failed"
)

// Snapshot is the collection state published after every stage. When Status is RunFailed, Error
// is set and Entities holds what the stages before the failure produced.
type Snapshot struct {
	RunID       string     `json:"run_id"`
	Stage       string     `json:"stage"`
	Status      RunStatus  `json:"status"`
	PublishedAt int64      `json:"published_at"`
	Entities    Collection `json:"entities"`
	Error       string     `json:"error,omitempty"`
}

// NewSnapshot is constructor of Snapshot
func NewSnapshot(runID, stage string, status RunStatus, entities Collection, now time.Time) *Snapshot {
	return &Snapshot{
		RunID:       runID,
		Stage:       stage,
		Status:      status,
		PublishedAt: now.Unix(),
		Entities:    entities,
	}
}
