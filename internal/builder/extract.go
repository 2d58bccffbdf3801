package builder

import (
	"math"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fakeyudi/please/internal/history"
	"github.com/fakeyudi/please/internal/session"
)

// Line is one line of a script draft.
type Line struct {
	Text string
	Ask  bool // true for lines contributed by `please ask`
}

// Draft is the script produced from a build session.
type Draft struct {
	Name  string
	Lines []Line
}

// Body returns the script text, one command per line, newline terminated.
func (d *Draft) Body() string {
	if len(d.Lines) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, l := range d.Lines {
		sb.WriteString(l.Text)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Commands returns the number of lines captured from history.
func (d *Draft) Commands() int {
	n := 0
	for _, l := range d.Lines {
		if !l.Ask {
			n++
		}
	}
	return n
}

// Asks returns the number of lines contributed by asks.
func (d *Draft) Asks() int {
	return len(d.Lines) - d.Commands()
}

// SelfFilter reports whether a history line is an invocation of the tool
// itself (or of one of the extra ignored prefixes).
type SelfFilter struct {
	ToolName string
	Ignored  []string
}

// Match reports whether text should be left out of the script.
func (f SelfFilter) Match(text string) bool {
	trimmed := strings.TrimSpace(text)
	if fields := strings.Fields(trimmed); len(fields) > 0 && f.ToolName != "" {
		if filepath.Base(fields[0]) == f.ToolName {
			return true
		}
	}
	for _, prefix := range f.Ignored {
		if prefix != "" && strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}

// commandsSince returns the non-self records appended after m.
func commandsSince(snap *history.Snapshot, m history.Marker, filter SelfFilter) ([]history.Record, error) {
	records, err := snap.Since(m)
	if err != nil {
		return nil, err
	}
	kept := records[:0]
	for _, r := range records {
		if filter.Match(r.Text) {
			continue
		}
		kept = append(kept, r)
	}
	return kept, nil
}

// Extract turns the history appended after m into script lines and splices
// in the recorded asks.
//
// An ask with Index i goes after the i-th captured command. Asks sharing an
// index keep their recording order. An index past the end of the captured
// commands appends the ask at the end.
func Extract(snap *history.Snapshot, m history.Marker, asks []session.AskEntry, filter SelfFilter) ([]Line, error) {
	commands, err := commandsSince(snap, m, filter)
	if err != nil {
		return nil, err
	}

	ordered := make([]session.AskEntry, len(asks))
	copy(ordered, asks)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	lines := make([]Line, 0, len(commands)+2*len(ordered))
	next := 0
	emitAsksAt := func(pos int) {
		for next < len(ordered) && ordered[next].Index <= pos {
			for _, l := range ordered[next].Lines {
				lines = append(lines, Line{Text: l, Ask: true})
			}
			next++
		}
	}

	for i, c := range commands {
		emitAsksAt(i)
		lines = append(lines, Line{Text: c.Text})
	}
	// Whatever is left was recorded at or beyond the end.
	emitAsksAt(math.MaxInt)
	return lines, nil
}
