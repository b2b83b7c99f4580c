package ingest

import "time"

// Stage identifies a phase of the ingestion pipeline. The stages form a
// strict linear state machine with StageError reachable from any
// non-terminal stage.
type Stage string

// Pipeline stages.
const (
	StageUploading  Stage = "uploading"
	StageProcessing Stage = "processing"
	StageConverting Stage = "converting"
	StageComplete   Stage = "complete"
	StageError      Stage = "error"
)

// Stage percentage boundaries.
const (
	percentUploading  = 0
	percentProcessing = 10
	percentConverting = 30
	percentComplete   = 100
)

// ProgressEvent reports pipeline progress. Percentages are non-decreasing
// across the event sequence of a single ingest run.
type ProgressEvent struct {
	Stage       Stage     `json:"stage"`
	Percent     int       `json:"percent"`
	Message     string    `json:"message"`
	CurrentPage int       `json:"current_page,omitempty"`
	TotalPages  int       `json:"total_pages,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// convertingPercent maps a completed page to its overall progress percentage.
func convertingPercent(page, total int) int {
	if total < 1 {
		return percentConverting
	}
	return percentConverting + (percentComplete-percentConverting)*page/total
}
