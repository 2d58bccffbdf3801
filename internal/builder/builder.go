// Package builder drives a build session: it marks the history log when a
// build opens, records asks while it is open, and slices the log into a
// script when it closes.
package builder

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fakeyudi/please/internal/history"
	"github.com/fakeyudi/please/internal/script"
	"github.com/fakeyudi/please/internal/session"
)

// Scripts is the script store a closed build is written to.
type Scripts interface {
	Exists(name string) bool
	Save(name, body string) error
}

// Builder owns the build session state for the lifetime of one invocation.
type Builder struct {
	Sessions session.Store
	// History is the log new builds are opened against. An open build keeps
	// reading the log it was opened against.
	History *history.Log
	Scripts Scripts
	// Filter applies to new builds; Ignored is pinned on the session at open.
	Filter SelfFilter
	Logger   *zap.Logger
	Now      func() time.Time
}

// Open starts a build for name. It fails with session.ErrAlreadyOpen while
// another build is open and with script.ErrExists when the script exists and
// overwrite is false.
func (b *Builder) Open(name string, overwrite bool) (*session.BuildSession, error) {
	name, err := script.CleanName(name)
	if err != nil {
		return nil, err
	}

	existing, err := b.Sessions.Load()
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: building %q since %s", session.ErrAlreadyOpen,
			existing.ScriptName, existing.StartedAt.Format(time.RFC3339))
	case !errors.Is(err, session.ErrNoSession):
		return nil, err
	}

	if !overwrite && b.Scripts.Exists(name) {
		return nil, fmt.Errorf("%w: %s (use --force to replace it)", script.ErrExists, name)
	}

	snap, err := b.History.Snapshot()
	if err != nil {
		return nil, err
	}

	s := &session.BuildSession{
		ID:          uuid.New().String(),
		ScriptName:  name,
		StartedAt:   b.now(),
		Status:      session.StatusOpen,
		Marker:      snap.Marker(),
		HistoryPath: b.History.Path,
		Ignored:     append([]string(nil), b.Filter.Ignored...),
		Asks:        []session.AskEntry{},
		Overwrite:   overwrite,
	}
	if err := b.Sessions.Save(s); err != nil {
		return nil, err
	}

	b.logger().Info("build opened",
		zap.String("session", s.ID),
		zap.String("script", name),
		zap.Int("marker_records", s.Marker.Records),
		zap.Int64("marker_size", s.Marker.Size))
	return s, nil
}

// Current returns the open build or session.ErrNoSession.
func (b *Builder) Current() (*session.BuildSession, error) {
	return b.Sessions.Load()
}

// RecordAsk appends an ask template to the open build at the current
// position in the captured command sequence.
func (b *Builder) RecordAsk(lines []string) error {
	s, err := b.Sessions.Load()
	if err != nil {
		return err
	}
	snap, err := b.historyFor(s).Snapshot()
	if err != nil {
		return err
	}
	commands, err := commandsSince(snap, s.Marker, b.filterFor(s))
	if err != nil {
		return err
	}

	entry := session.AskEntry{
		Index:      len(commands),
		Lines:      append([]string(nil), lines...),
		RecordedAt: b.now(),
	}
	s.Asks = append(s.Asks, entry)
	if err := b.Sessions.Save(s); err != nil {
		return err
	}

	b.logger().Info("ask recorded",
		zap.String("session", s.ID),
		zap.Int("index", entry.Index),
		zap.Int("lines", len(entry.Lines)))
	return nil
}

// Preview returns the draft the open build would produce right now.
func (b *Builder) Preview() (*Draft, error) {
	s, err := b.Sessions.Load()
	if err != nil {
		return nil, err
	}
	return b.draft(s)
}

// Close finalizes the open build: the draft is saved to the script store
// and the build state is removed. If the history log cannot be read the
// build stays open so the user can retry. A script with the same name that
// appeared after open is only replaced when the build was opened with
// overwrite or force is set; otherwise Close fails with script.ErrExists and
// the build stays open. Once the draft exists the build state is removed
// even if saving the script fails; the draft is returned alongside that
// error.
func (b *Builder) Close(force bool) (*Draft, error) {
	s, err := b.Sessions.Load()
	if err != nil {
		return nil, err
	}
	if !s.Overwrite && !force && b.Scripts.Exists(s.ScriptName) {
		return nil, fmt.Errorf("%w: %s was created while this build was open", script.ErrExists, s.ScriptName)
	}
	d, err := b.draft(s)
	if err != nil {
		return nil, err
	}

	saveErr := b.Scripts.Save(s.ScriptName, d.Body())
	if err := b.Sessions.Delete(); err != nil {
		return d, errors.Join(saveErr, err)
	}
	if saveErr != nil {
		return d, saveErr
	}

	b.logger().Info("build closed",
		zap.String("session", s.ID),
		zap.String("script", s.ScriptName),
		zap.Int("commands", d.Commands()),
		zap.Int("ask_lines", d.Asks()))
	return d, nil
}

// Reset discards the open build without writing a script.
func (b *Builder) Reset() (*session.BuildSession, error) {
	s, err := b.Sessions.Load()
	if err != nil {
		return nil, err
	}
	if err := b.Sessions.Delete(); err != nil {
		return nil, err
	}
	b.logger().Info("build reset", zap.String("session", s.ID), zap.String("script", s.ScriptName))
	return s, nil
}

func (b *Builder) draft(s *session.BuildSession) (*Draft, error) {
	snap, err := b.historyFor(s).Snapshot()
	if err != nil {
		return nil, err
	}
	lines, err := Extract(snap, s.Marker, s.Asks, b.filterFor(s))
	if err != nil {
		return nil, err
	}
	return &Draft{Name: s.ScriptName, Lines: lines}, nil
}

// historyFor returns the log s was opened against.
func (b *Builder) historyFor(s *session.BuildSession) *history.Log {
	if s.HistoryPath == "" || s.HistoryPath == b.History.Path {
		return b.History
	}
	l := *b.History
	l.Path = s.HistoryPath
	return &l
}

// filterFor returns the self-filter in effect when s was opened.
func (b *Builder) filterFor(s *session.BuildSession) SelfFilter {
	return SelfFilter{ToolName: b.Filter.ToolName, Ignored: s.Ignored}
}

func (b *Builder) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

func (b *Builder) logger() *zap.Logger {
	if b.Logger == nil {
		return zap.NewNop()
	}
	return b.Logger
}
