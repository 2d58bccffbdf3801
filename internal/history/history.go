// Package history reads the interactive shell's persisted history log.
//
// The log is treated as append-only: a Snapshot taken now can later be asked
// for everything appended after an earlier Marker.
package history

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrMissing means the history file does not exist yet. Log.Snapshot
	// recovers from it by returning an empty snapshot.
	ErrMissing = errors.New("history log missing")
	// ErrUnreadable is returned when the history file exists but cannot be read.
	ErrUnreadable = errors.New("history log unreadable")
	// ErrTruncated is returned when the log is shorter than a marker taken earlier.
	ErrTruncated = errors.New("history log truncated")
)

// Record is one logical command from the history log.
type Record struct {
	Timestamp time.Time     // zero when the entry carries no timestamp
	Elapsed   time.Duration // zsh extended history only
	Text      string
}

// Parser parses a history log into records, preserving append order.
type Parser func(r io.Reader) ([]Record, error)

// Marker is a position in the history log. Everything at or before it is
// excluded by Snapshot.Since.
type Marker struct {
	Records int   `json:"records"`
	Size    int64 `json:"size"`
}

// Snapshot is the content of the history log at one point in time.
type Snapshot struct {
	Records []Record
	Size    int64
}

// Marker returns the position at the end of the snapshot.
func (s *Snapshot) Marker() Marker {
	return Marker{Records: len(s.Records), Size: s.Size}
}

// Since returns the records appended after m, in log order.
func (s *Snapshot) Since(m Marker) ([]Record, error) {
	if m.Records < 0 || m.Records > len(s.Records) {
		return nil, fmt.Errorf("%w: marker at record %d, log has %d", ErrTruncated, m.Records, len(s.Records))
	}
	if s.Size < m.Size {
		return nil, fmt.Errorf("%w: marker at byte %d, log has %d", ErrTruncated, m.Size, s.Size)
	}
	out := make([]Record, len(s.Records)-m.Records)
	copy(out, s.Records[m.Records:])
	return out, nil
}

// Log is a history file on disk.
type Log struct {
	Path   string
	Parse  Parser // defaults to ParseZsh
	Logger *zap.Logger
}

// Snapshot reads the whole log. A missing file yields an empty snapshot.
func (l *Log) Snapshot() (*Snapshot, error) {
	log := l.Logger
	if log == nil {
		log = zap.NewNop()
	}
	parse := l.Parse
	if parse == nil {
		parse = ParseZsh
	}

	f, err := os.Open(l.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Debug("history log not found, treating as empty",
				zap.String("path", l.Path), zap.NamedError("reason", ErrMissing))
			return &Snapshot{}, nil
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, l.Path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, l.Path, err)
	}

	// Only parse the bytes that existed at stat time; the live shell may
	// append while we read.
	size := info.Size()
	records, err := parse(io.LimitReader(f, size))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, l.Path, err)
	}

	log.Debug("history snapshot",
		zap.String("path", l.Path),
		zap.Int("records", len(records)),
		zap.Int64("size", size))
	return &Snapshot{Records: records, Size: size}, nil
}

// DefaultPath resolves the history file: the override if set, then $HISTFILE,
// then ~/.zsh_history.
func DefaultPath(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if p := os.Getenv("HISTFILE"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".zsh_history"), nil
}
