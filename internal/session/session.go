package session

import (
	"time"

	"github.com/fakeyudi/please/internal/history"
)

// Status is the lifecycle state of a build session.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// BuildSession records a script being built from shell history.
type BuildSession struct {
	ID         string    `json:"id"`
	ScriptName string    `json:"script_name"`
	StartedAt  time.Time `json:"started_at"`
	Status     Status    `json:"status"`
	// Marker is the history position at open time. Only commands appended
	// after it end up in the script.
	Marker history.Marker `json:"marker"`
	// HistoryPath and Ignored are the log and the self-filter prefixes in
	// effect at open. Every later operation on the build uses them.
	HistoryPath string     `json:"history_path"`
	Ignored     []string   `json:"ignored,omitempty"`
	Asks        []AskEntry `json:"asks"`
	// Overwrite allows the closed script to replace one that exists at close.
	Overwrite bool `json:"overwrite,omitempty"`
}

// AskEntry is a template recorded by `please ask`.
type AskEntry struct {
	// Index is the number of captured commands that preceded the ask.
	Index      int       `json:"index"`
	Lines      []string  `json:"lines"`
	RecordedAt time.Time `json:"recorded_at"`
}
